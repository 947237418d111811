package handlers

import (
	"encoding/xml"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dtxml/declarations/internal/http/middleware"
	"github.com/dtxml/declarations/internal/ingest"
)

// IndexRequest is the POST /index body. Exactly one of XMLContent, JSONData,
// OCRText must be set.
type IndexRequest struct {
	DeclarationID string         `json:"declaration_id"`
	TenantID      string         `json:"tenant_id"`
	XMLContent    string         `json:"xml_content"`
	JSONData      map[string]any `json:"json_data"`
	OCRText       string         `json:"ocr_text"`
}

// IndexResponse is the POST /index success body.
type IndexResponse struct {
	DeclarationID string `json:"declaration_id"`
	ChunksCount   int    `json:"chunks_count"`
	IndexedAt     string `json:"indexed_at"`
	Status        string `json:"status"`
}

// IndexHandler serves POST /index.
type IndexHandler struct {
	pipeline *ingest.Pipeline
}

func NewIndexHandler(pipeline *ingest.Pipeline) *IndexHandler {
	return &IndexHandler{pipeline: pipeline}
}

func (h *IndexHandler) Index(c *gin.Context) {
	var req IndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(&middleware.ErrBadRequest{Err: err})
		return
	}

	tenantID := req.TenantID
	if tenantID == "" {
		tenantID = "default"
	}

	result, err := h.pipeline.Ingest(c.Request.Context(), ingest.Request{
		DeclarationID: req.DeclarationID,
		TenantID:      tenantID,
		XMLContent:    []byte(req.XMLContent),
		JSONData:      req.JSONData,
		OCRText:       req.OCRText,
	})
	if err != nil {
		var syntaxErr *xml.SyntaxError
		if errors.Is(err, ingest.ErrNoContentProvided) || errors.Is(err, ingest.ErrMultipleContentProvided) || errors.As(err, &syntaxErr) {
			c.Error(&middleware.ErrBadRequest{Err: err})
			return
		}
		c.Error(&middleware.ErrStorageUnavailable{Err: err})
		return
	}

	c.JSON(http.StatusOK, IndexResponse{
		DeclarationID: result.DeclarationID,
		ChunksCount:   result.ChunksCount,
		IndexedAt:     result.IndexedAt.Format("2006-01-02T15:04:05Z07:00"),
		Status:        result.Status,
	})
}
