package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/energee/energee-site/internal/editor"
	"github.com/energee/energee-site/internal/models"
	"github.com/gin-gonic/gin"
)

// ContentHandler exposes the section content editor.
type ContentHandler struct {
	editor *editor.Editor // Validating section store.
}

// NewContentHandler constructs a content handler.
func NewContentHandler(ed *editor.Editor) *ContentHandler {
	return &ContentHandler{editor: ed}
}

// Catalog lists the editable sections and their field schemas.
func (h *ContentHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sections": editor.Catalog()})
}

// List returns every stored section.
func (h *ContentHandler) List(c *gin.Context) {
	rows, errList := h.editor.List(c.Request.Context())
	if errList != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list sections failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatSection(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"sections": out})
}

// Get returns one section with its schema.
func (h *ContentHandler) Get(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	row, errGet := h.editor.Get(c.Request.Context(), key)
	if errGet != nil {
		writeEditorError(c, errGet)
		return
	}
	out := formatSection(&row)
	out["schema"] = editor.Schema(row.SectionKey)
	c.JSON(http.StatusOK, out)
}

// saveSectionRequest captures a section save.
type saveSectionRequest struct {
	Content     json.RawMessage `json:"content"`     // Full section content object.
	Title       *string         `json:"title"`       // Optional admin title.
	Description *string         `json:"description"` // Optional admin description.
	Images      json.RawMessage `json:"images"`      // Optional image references.
	Version     *int64          `json:"version"`     // Expected stored version; 0 means create only.
}

// Save writes the section content and returns the stored row.
func (h *ContentHandler) Save(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	var body saveSectionRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	row, errSave := h.editor.Save(c.Request.Context(), key, editor.SaveInput{
		Content:         body.Content,
		Title:           body.Title,
		Description:     body.Description,
		Images:          body.Images,
		ExpectedVersion: body.Version,
	})
	if errSave != nil {
		writeEditorError(c, errSave)
		return
	}
	c.JSON(http.StatusOK, formatSection(&row))
}

// Delete removes a stored section so the page falls back to defaults.
func (h *ContentHandler) Delete(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if errDelete := h.editor.Delete(c.Request.Context(), key); errDelete != nil {
		writeEditorError(c, errDelete)
		return
	}
	c.Status(http.StatusNoContent)
}

// writeEditorError maps editor errors to HTTP responses.
func writeEditorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, editor.ErrInvalidSectionKey):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid section key"})
	case errors.Is(err, editor.ErrInvalidContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, editor.ErrSectionNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, editor.ErrVersionConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "section was changed by someone else"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save section failed"})
	}
}

// formatSection converts a section row into a response payload.
func formatSection(s *models.ContentSection) gin.H {
	return gin.H{
		"id":          s.ID,
		"section_key": s.SectionKey,
		"title":       s.Title,
		"description": s.Description,
		"content":     s.Content,
		"images":      s.Images,
		"version":     s.Version,
		"created_at":  s.CreatedAt,
		"updated_at":  s.UpdatedAt,
	}
}
