// Package handler exposes the prediction service over HTTP.
package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Skufu/GoSymptom/internal/logging"
	"github.com/Skufu/GoSymptom/internal/prediction"
	"github.com/Skufu/GoSymptom/internal/scoring"
)

type Handler struct {
	svc           *prediction.Service
	exposeDetails bool
	probes        []Probe
}

type Options struct {
	// ExposeErrorDetails adds the raw cause of internal failures to 500 responses.
	ExposeErrorDetails bool
	Probes             []Probe
}

func New(svc *prediction.Service, opts Options) *Handler {
	return &Handler{
		svc:           svc,
		exposeDetails: opts.ExposeErrorDetails,
		probes:        opts.Probes,
	}
}

// Register mounts every route. History is only served by similarity deployments.
func (h *Handler) Register(router gin.IRouter) {
	router.GET("/healthz", h.Healthz)
	router.GET("/readyz", h.Readyz)

	router.POST("/predict", h.Predict)
	router.POST("/api/predict", h.Predict)

	if h.svc.Scorer() == scoring.NameSimilarity {
		router.GET("/history", h.History)
	}
}

func (h *Handler) clientError(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": msg})
}

// fail maps err onto a response. Internal causes are always logged and only
// returned to the caller when details are enabled.
func (h *Handler) fail(c *gin.Context, err error, fallback string) {
	if prediction.KindOf(err) == prediction.KindClient {
		h.clientError(c, err.Error())
		return
	}

	logging.FromContext(c).WithError(err).Error(fallback)

	body := gin.H{"success": false, "error": fallback}
	if h.exposeDetails {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}
