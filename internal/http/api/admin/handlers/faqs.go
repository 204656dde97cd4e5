package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/energee/energee-site/internal/editor"
	"github.com/energee/energee-site/internal/models"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// FAQHandler manages admin CRUD endpoints for FAQ entries.
type FAQHandler struct {
	db       *gorm.DB              // Database handle for FAQ records.
	notifier editor.ChangeNotifier // Refreshes the public snapshot after writes.
}

// NewFAQHandler constructs an FAQ handler.
func NewFAQHandler(db *gorm.DB, notifier editor.ChangeNotifier) *FAQHandler {
	return &FAQHandler{db: db, notifier: notifier}
}

// createFAQRequest captures the payload for creating an FAQ entry.
type createFAQRequest struct {
	Question     string `json:"question"`      // Question text.
	Answer       string `json:"answer"`        // Answer text.
	DisplayOrder *int   `json:"display_order"` // Optional display order.
	Active       *bool  `json:"active"`        // Optional active flag.
}

// Create validates input and inserts a new FAQ entry at the end of the list.
func (h *FAQHandler) Create(c *gin.Context) {
	var body createFAQRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	question := strings.TrimSpace(body.Question)
	answer := strings.TrimSpace(body.Answer)
	if question == "" || answer == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "question and answer are required"})
		return
	}

	ctx := c.Request.Context()
	active := true
	if body.Active != nil {
		active = *body.Active
	}
	displayOrder := 0
	if body.DisplayOrder != nil {
		displayOrder = *body.DisplayOrder
	} else {
		var count int64
		if errCount := h.db.WithContext(ctx).Model(&models.FAQ{}).Count(&count).Error; errCount != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		displayOrder = int(count)
	}

	now := time.Now().UTC()
	faq := models.FAQ{
		Question:     question,
		Answer:       answer,
		Active:       active,
		DisplayOrder: displayOrder,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&faq).Error; errCreate != nil {
			return errCreate
		}
		if !active {
			return tx.Model(&faq).Update("active", false).Error
		}
		return nil
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create faq failed"})
		return
	}
	h.changed(c)
	c.JSON(http.StatusCreated, formatFAQ(&faq))
}

// List returns every FAQ entry in display order.
func (h *FAQHandler) List(c *gin.Context) {
	activeQ := strings.TrimSpace(c.Query("active"))
	q := h.db.WithContext(c.Request.Context()).Model(&models.FAQ{})
	if activeQ == "true" || activeQ == "1" {
		q = q.Where("active = ?", true)
	} else if activeQ == "false" || activeQ == "0" {
		q = q.Where("active = ?", false)
	}
	var rows []models.FAQ
	if errFind := q.Order("display_order ASC, id ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list faqs failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatFAQ(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"faqs": out})
}

// Get fetches an FAQ entry by ID.
func (h *FAQHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var faq models.FAQ
	if errFind := h.db.WithContext(c.Request.Context()).First(&faq, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, formatFAQ(&faq))
}

// updateFAQRequest captures optional fields for FAQ updates.
type updateFAQRequest struct {
	Question     *string `json:"question"`      // Optional question text.
	Answer       *string `json:"answer"`        // Optional answer text.
	DisplayOrder *int    `json:"display_order"` // Optional display order.
	Active       *bool   `json:"active"`        // Optional active flag.
}

// Update applies partial FAQ updates.
func (h *FAQHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateFAQRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.Question != nil {
		q := strings.TrimSpace(*body.Question)
		if q == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "question cannot be empty"})
			return
		}
		updates["question"] = q
	}
	if body.Answer != nil {
		a := strings.TrimSpace(*body.Answer)
		if a == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "answer cannot be empty"})
			return
		}
		updates["answer"] = a
	}
	if body.DisplayOrder != nil {
		updates["display_order"] = *body.DisplayOrder
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.FAQ{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.changed(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes an FAQ entry by ID.
func (h *FAQHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.FAQ{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.changed(c)
	c.Status(http.StatusNoContent)
}

// Enable marks an FAQ entry as public.
func (h *FAQHandler) Enable(c *gin.Context) {
	h.setActive(c, true)
}

// Disable hides an FAQ entry.
func (h *FAQHandler) Disable(c *gin.Context) {
	h.setActive(c, false)
}

func (h *FAQHandler) setActive(c *gin.Context, active bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.FAQ{}).Where("id = ?", id).
		Updates(map[string]any{"active": active, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.changed(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// reorderFAQRequest lists FAQ ids in their new display order.
type reorderFAQRequest struct {
	IDs []uint64 `json:"ids"` // FAQ ids, first shown first.
}

// Reorder assigns display_order by position in the submitted id list.
func (h *FAQHandler) Reorder(c *gin.Context) {
	var body reorderFAQRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.IDs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ids are required"})
		return
	}
	seen := make(map[uint64]struct{}, len(body.IDs))
	for _, id := range body.IDs {
		if _, ok := seen[id]; ok || id == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ids must be unique"})
			return
		}
		seen[id] = struct{}{}
	}

	var errMissing = errors.New("faq not found")
	now := time.Now().UTC()
	errTx := h.db.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		for idx, id := range body.IDs {
			res := tx.Model(&models.FAQ{}).Where("id = ?", id).
				Updates(map[string]any{"display_order": idx, "updated_at": now})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return errMissing
			}
		}
		return nil
	})
	if errTx != nil {
		if errors.Is(errTx, errMissing) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "reorder failed"})
		return
	}
	h.changed(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *FAQHandler) changed(c *gin.Context) {
	if h.notifier != nil {
		h.notifier.Changed(c.Request.Context())
	}
}

// formatFAQ converts an FAQ model into a response payload.
func formatFAQ(f *models.FAQ) gin.H {
	return gin.H{
		"id":            f.ID,
		"question":      f.Question,
		"answer":        f.Answer,
		"active":        f.Active,
		"display_order": f.DisplayOrder,
		"created_at":    f.CreatedAt,
		"updated_at":    f.UpdatedAt,
	}
}
