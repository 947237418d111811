package handlers_test

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dtxml/declarations/internal/http/handlers"
	"github.com/dtxml/declarations/internal/http/middleware"
	"github.com/dtxml/declarations/internal/schema"
)

func newTestSchemaRouter(t *testing.T) (*gin.Engine, *schema.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	registry, err := schema.NewRegistry(t.TempDir())
	require.NoError(t, err)

	h := handlers.NewSchemaHandler(registry)
	router := gin.New()
	router.Use(middleware.ErrorHandler())
	router.POST("/schema/register", h.Register)
	router.GET("/schema/:tenant_id", h.Get)
	router.GET("/schema/", h.List)
	return router, registry
}

func TestSchemaRegisterThenGetRoundTrips(t *testing.T) {
	router, _ := newTestSchemaRouter(t)

	body := bytes.NewBufferString(`{"tenant_id":"acme","field_mapping":{"manufacturer":["mfg"]}}`)
	req := httptest.NewRequest(http.MethodPost, "/schema/register", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/schema/acme", nil))
	assert.Equal(t, http.StatusOK, w2.Code)
	assert.Contains(t, w2.Body.String(), "acme")
}

func TestSchemaGetUnknownTenantReturns404(t *testing.T) {
	router, _ := newTestSchemaRouter(t)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schema/nope", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestSchemaRegisterMissingTenantIDReturns400(t *testing.T) {
	router, _ := newTestSchemaRouter(t)

	body := bytes.NewBufferString(`{"field_mapping":{}}`)
	req := httptest.NewRequest(http.MethodPost, "/schema/register", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSchemaListReturnsRegisteredTenants(t *testing.T) {
	router, registry := newTestSchemaRouter(t)
	require.NoError(t, registry.Register(&schema.TenantSchema{TenantID: "acme"}))
	require.NoError(t, registry.Register(&schema.TenantSchema{TenantID: "globex"}))

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/schema/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "acme")
	assert.Contains(t, w.Body.String(), "globex")
}
