package auth

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestGenerateAndValidate(t *testing.T) {
	svc := NewJWTService("secret")
	token, err := svc.Generate(12, time.Hour)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	claims, err := svc.Validate(token)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if claims.UserID != 12 {
		t.Fatalf("expected user 12, got %d", claims.UserID)
	}
}

func TestValidateRejects(t *testing.T) {
	svc := NewJWTService("secret")

	other, _ := NewJWTService("other").Generate(12, time.Hour)
	expired, _ := svc.Generate(12, -time.Minute)
	noUser, _ := svc.Generate(0, time.Hour)

	for name, token := range map[string]string{
		"wrong secret": other,
		"expired":      expired,
		"no user":      noUser,
		"garbage":      "not.a.token",
	} {
		t.Run(name, func(t *testing.T) {
			if _, err := svc.Validate(token); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestOptionalMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := NewJWTService("secret")

	router := gin.New()
	router.Use(Optional(svc))
	router.GET("/whoami", func(c *gin.Context) {
		id, ok := UserID(c)
		if !ok {
			c.String(http.StatusOK, "anonymous")
			return
		}
		c.String(http.StatusOK, strconv.FormatInt(id, 10))
	})

	token, _ := svc.Generate(7, time.Hour)
	cases := []struct {
		name   string
		header string
		want   string
	}{
		{"no header", "", "anonymous"},
		{"valid token", "Bearer " + token, "7"},
		{"bad token", "Bearer nope", "anonymous"},
		{"wrong scheme", "Basic " + token, "anonymous"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req, _ := http.NewRequest("GET", "/whoami", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			router.ServeHTTP(w, req)
			if w.Code != http.StatusOK || w.Body.String() != tc.want {
				t.Fatalf("expected %q, got %d %q", tc.want, w.Code, w.Body.String())
			}
		})
	}
}

func TestOptionalDisabled(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Optional(nil))
	router.GET("/", func(c *gin.Context) {
		if _, ok := UserID(c); ok {
			t.Fatal("no identity expected")
		}
		c.Status(http.StatusNoContent)
	})

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/", nil)
	req.Header.Set("Authorization", "Bearer whatever")
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
}
