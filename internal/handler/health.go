package handler

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Probe is one dependency checked by /readyz. A nil Check reports it as disabled.
type Probe struct {
	Name  string
	Check HealthChecker
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "scorer": h.svc.Scorer()})
}

// Readyz pings every configured dependency concurrently.
func (h *Handler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	statuses := make([]string, len(h.probes))
	var g errgroup.Group
	for i, p := range h.probes {
		if p.Check == nil {
			statuses[i] = "disabled"
			continue
		}
		g.Go(func() error {
			if err := p.Check.Ping(ctx); err != nil {
				statuses[i] = fmt.Sprintf("unhealthy: %v", err)
				return err
			}
			statuses[i] = "ok"
			return nil
		})
	}
	err := g.Wait()

	body := gin.H{"status": "ok"}
	for i, p := range h.probes {
		body[p.Name] = statuses[i]
	}
	if err != nil {
		body["status"] = "degraded"
		c.JSON(http.StatusServiceUnavailable, body)
		return
	}
	c.JSON(http.StatusOK, body)
}
