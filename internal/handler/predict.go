package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/GoSymptom/internal/auth"
	"github.com/Skufu/GoSymptom/internal/prediction"
	"github.com/Skufu/GoSymptom/internal/scoring"
)

var errInvalidUserID = errors.New("invalid user_id")

// symptomField accepts a comma separated string or a list of strings.
type symptomField []string

func (s *symptomField) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	var one string
	if err := json.Unmarshal(data, &one); err == nil {
		*s = symptomField{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return errors.New("symptoms must be a string or a list of strings")
	}
	*s = many
	return nil
}

func (s symptomField) join(sep string) string {
	return strings.Join(s, sep)
}

// userIDField accepts a JSON number or a numeric string. Zero, null and the empty
// string mean no user.
type userIDField struct {
	id  int64
	set bool
}

func (u *userIDField) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
	}
	if raw == "" {
		return nil
	}
	id, err := parseUserID(raw)
	if err != nil {
		return err
	}
	if id > 0 {
		u.id, u.set = id, true
	}
	return nil
}

func parseUserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		return 0, errInvalidUserID
	}
	return id, nil
}

type predictRequest struct {
	Symptoms         symptomField `json:"symptoms"`
	SelectedSymptoms symptomField `json:"selected_symptoms"`
	TextSymptoms     symptomField `json:"text_symptoms"`
	UserID           userIDField  `json:"user_id"`
	GetDiseaseInfo   string       `json:"get_disease_info"`
	GetPrecautions   string       `json:"get_precautions"`
}

// Predict handles POST /predict. Similarity deployments also answer the
// get_disease_info and get_precautions lookups from the same route.
func (h *Handler) Predict(c *gin.Context) {
	var req predictRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		if errors.Is(err, errInvalidUserID) {
			h.clientError(c, errInvalidUserID.Error())
			return
		}
		h.clientError(c, "invalid payload")
		return
	}

	similarity := h.svc.Scorer() == scoring.NameSimilarity
	if similarity && req.GetDiseaseInfo != "" {
		c.JSON(http.StatusOK, lookupResponse(h.svc.DiseaseInfo(req.GetDiseaseInfo), true))
		return
	}
	if similarity && req.GetPrecautions != "" {
		c.JSON(http.StatusOK, lookupResponse(h.svc.DiseaseInfo(req.GetPrecautions), false))
		return
	}

	in := prediction.Request{}
	if similarity {
		in.Selected = req.SelectedSymptoms.join(",")
		in.Text = req.TextSymptoms.join(" ")
	} else {
		in.Selected = req.Symptoms.join(",")
	}

	if req.UserID.set {
		id := req.UserID.id
		in.UserID = &id
	} else if id, ok := auth.UserID(c); ok {
		in.UserID = &id
	}

	resp, err := h.svc.Predict(c.Request.Context(), in)
	if err != nil {
		h.fail(c, err, "prediction failed")
		return
	}
	c.JSON(http.StatusOK, resp)
}

func lookupResponse(info prediction.DiseaseInfo, withDescription bool) gin.H {
	body := gin.H{
		"success":     true,
		"disease":     info.Disease,
		"precautions": info.Precautions,
	}
	if withDescription {
		body["description"] = info.Description
	}
	return body
}

// History handles GET /history?user_id=.
func (h *Handler) History(c *gin.Context) {
	var userID int64
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		id, err := parseUserID(raw)
		if err != nil || id == 0 {
			h.clientError(c, errInvalidUserID.Error())
			return
		}
		userID = id
	} else if id, ok := auth.UserID(c); ok {
		userID = id
	} else {
		h.clientError(c, "user_id is required")
		return
	}

	entries, err := h.svc.History(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, err, "history failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "history": entries})
}
