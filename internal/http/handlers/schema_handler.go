package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtxml/declarations/internal/http/middleware"
	"github.com/dtxml/declarations/internal/schema"
)

// SchemaHandler serves the tenant schema CRUD surface.
type SchemaHandler struct {
	registry *schema.Registry
}

func NewSchemaHandler(registry *schema.Registry) *SchemaHandler {
	return &SchemaHandler{registry: registry}
}

// Register serves POST /schema/register.
func (h *SchemaHandler) Register(c *gin.Context) {
	var s schema.TenantSchema
	if err := c.ShouldBindJSON(&s); err != nil {
		c.Error(&middleware.ErrBadRequest{Err: err})
		return
	}
	if s.TenantID == "" {
		c.Error(&middleware.ErrBadRequest{Err: errors.New("tenant_id is required")})
		return
	}
	if err := h.registry.Save(&s); err != nil {
		c.Error(&middleware.ErrStorageUnavailable{Err: err})
		return
	}
	c.JSON(http.StatusOK, s)
}

// Get serves GET /schema/{tenant_id}.
func (h *SchemaHandler) Get(c *gin.Context) {
	tenantID := c.Param("tenant_id")
	s, err := h.registry.GetExact(tenantID)
	if err != nil {
		c.Error(&middleware.ErrNotFound{Err: err})
		return
	}
	c.JSON(http.StatusOK, s)
}

// List serves GET /schema/.
func (h *SchemaHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"tenants": h.registry.ListTenants()})
}
