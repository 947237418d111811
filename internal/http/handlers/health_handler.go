package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtxml/declarations/internal/storage/qdrant"
)

// componentCheck reports whether a dependency is reachable.
type componentCheck struct {
	name string
	ping func(ctx context.Context) error
}

// HealthHandler serves GET /health and GET /health/healthz: overall status
// is "healthy" if every component check succeeds, else "degraded".
type HealthHandler struct {
	vectorIndex qdrant.Index
	pingMeta    func(ctx context.Context) error
}

func NewHealthHandler(vectorIndex qdrant.Index, pingMeta func(ctx context.Context) error) *HealthHandler {
	return &HealthHandler{vectorIndex: vectorIndex, pingMeta: pingMeta}
}

func (h *HealthHandler) checks() []componentCheck {
	var checks []componentCheck
	if h.vectorIndex != nil {
		checks = append(checks, componentCheck{
			name: "vector_index",
			ping: func(ctx context.Context) error {
				_, err := h.vectorIndex.CollectionInfo(ctx)
				return err
			},
		})
	}
	if h.pingMeta != nil {
		checks = append(checks, componentCheck{name: "metadata_store", ping: h.pingMeta})
	}
	return checks
}

// Health serves both GET /health and GET /health/healthz.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx := c.Request.Context()
	components := make(map[string]string)
	status := "healthy"

	for _, check := range h.checks() {
		if err := check.ping(ctx); err != nil {
			components[check.name] = "unreachable: " + err.Error()
			status = "degraded"
		} else {
			components[check.name] = "ok"
		}
	}

	code := http.StatusOK
	if status == "degraded" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, gin.H{"status": status, "components": components})
}
