package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/energee/energee-site/internal/editor"
	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/sections"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// PlanHandler manages admin CRUD endpoints for plans.
type PlanHandler struct {
	db       *gorm.DB              // Database handle for plan records.
	notifier editor.ChangeNotifier // Refreshes the public snapshot after writes.
}

// NewPlanHandler constructs a plan handler.
func NewPlanHandler(db *gorm.DB, notifier editor.ChangeNotifier) *PlanHandler {
	return &PlanHandler{db: db, notifier: notifier}
}

var errInvalidFeatures = errors.New("invalid features")

// normalizePlanFeatures validates the features payload as a list of strings,
// dropping blank entries.
func normalizePlanFeatures(raw json.RawMessage) (datatypes.JSON, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return datatypes.JSON([]byte("[]")), nil
	}
	var features []string
	if errUnmarshal := json.Unmarshal(raw, &features); errUnmarshal != nil {
		return nil, errInvalidFeatures
	}
	cleaned := make([]string, 0, len(features))
	for _, feature := range features {
		if trimmed := strings.TrimSpace(feature); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	rawFeatures, errMarshal := json.Marshal(cleaned)
	if errMarshal != nil {
		return nil, errMarshal
	}
	return datatypes.JSON(rawFeatures), nil
}

// createPlanRequest captures the payload for creating a plan.
type createPlanRequest struct {
	Name             string          `json:"name"`              // Plan name.
	Subtitle         string          `json:"subtitle"`          // Short tagline.
	Percentage       string          `json:"percentage"`        // Savings percentage text.
	ConsumptionRange string          `json:"consumption_range"` // Consumption band.
	EstimatedSavings string          `json:"estimated_savings"` // Savings text.
	Features         json.RawMessage `json:"features"`          // Feature strings.
	ButtonText       string          `json:"button_text"`       // Call-to-action label.
	ButtonVariant    string          `json:"button_variant"`    // Button style.
	Popular          bool            `json:"popular"`           // Highlight flag.
	DisplayOrder     *int            `json:"display_order"`     // Optional display order.
	Active           *bool           `json:"active"`            // Optional active flag.
}

// Create validates input and inserts a new plan.
func (h *PlanHandler) Create(c *gin.Context) {
	var body createPlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	if strings.TrimSpace(body.Name) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name is required"})
		return
	}

	features, errFeatures := normalizePlanFeatures(body.Features)
	if errFeatures != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid features"})
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
		if errCount := h.db.WithContext(ctx).Model(&models.Plan{}).Count(&count).Error; errCount != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
			return
		}
		displayOrder = int(count)
	}
	buttonText := strings.TrimSpace(body.ButtonText)
	if buttonText == "" {
		buttonText = sections.DefaultPlanButtonText
	}
	buttonVariant := strings.TrimSpace(body.ButtonVariant)
	if buttonVariant == "" {
		buttonVariant = "outline"
	}

	now := time.Now().UTC()
	plan := models.Plan{
		Name:             strings.TrimSpace(body.Name),
		Subtitle:         strings.TrimSpace(body.Subtitle),
		Percentage:       strings.TrimSpace(body.Percentage),
		ConsumptionRange: strings.TrimSpace(body.ConsumptionRange),
		EstimatedSavings: strings.TrimSpace(body.EstimatedSavings),
		Features:         features,
		ButtonText:       buttonText,
		ButtonVariant:    buttonVariant,
		Active:           active,
		Popular:          body.Popular,
		DisplayOrder:     displayOrder,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	errTx := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if errCreate := tx.Create(&plan).Error; errCreate != nil {
			return errCreate
		}
		// A false active flag is skipped on insert because the column has a default.
		if !active {
			return tx.Model(&plan).Update("active", false).Error
		}
		return nil
	})
	if errTx != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create plan failed"})
		return
	}
	h.changed(c)
	c.JSON(http.StatusCreated, h.formatPlan(&plan))
}

// List returns all plans, optionally filtered by the active flag.
func (h *PlanHandler) List(c *gin.Context) {
	activeQ := strings.TrimSpace(c.Query("active"))

	q := h.db.WithContext(c.Request.Context()).Model(&models.Plan{})
	if activeQ != "" {
		if activeQ == "true" || activeQ == "1" {
			q = q.Where("active = ?", true)
		} else if activeQ == "false" || activeQ == "0" {
			q = q.Where("active = ?", false)
		}
	}

	var rows []models.Plan
	if errFind := q.Order("display_order ASC, id ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list plans failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		out = append(out, h.formatPlan(&row))
	}
	c.JSON(http.StatusOK, gin.H{"plans": out})
}

// Get fetches a plan by ID.
func (h *PlanHandler) Get(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var plan models.Plan
	if errFind := h.db.WithContext(c.Request.Context()).First(&plan, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, h.formatPlan(&plan))
}

// updatePlanRequest captures optional fields for plan updates.
type updatePlanRequest struct {
	Name             *string          `json:"name"`              // Optional name update.
	Subtitle         *string          `json:"subtitle"`          // Optional tagline.
	Percentage       *string          `json:"percentage"`        // Optional savings percentage.
	ConsumptionRange *string          `json:"consumption_range"` // Optional consumption band.
	EstimatedSavings *string          `json:"estimated_savings"` // Optional savings text.
	Features         *json.RawMessage `json:"features"`          // Optional feature strings.
	ButtonText       *string          `json:"button_text"`       // Optional call-to-action label.
	ButtonVariant    *string          `json:"button_variant"`    // Optional button style.
	Popular          *bool            `json:"popular"`           // Optional highlight flag.
	DisplayOrder     *int             `json:"display_order"`     // Optional display order.
	Active           *bool            `json:"active"`            // Optional active flag.
}

// Update validates and applies plan field updates.
func (h *PlanHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updatePlanRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	var existing models.Plan
	if errFind := h.db.WithContext(c.Request.Context()).First(&existing, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}

	updates := map[string]any{
		"updated_at": time.Now().UTC(),
	}

	if body.Name != nil {
		n := strings.TrimSpace(*body.Name)
		if n == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "name cannot be empty"})
			return
		}
		updates["name"] = n
	}
	if body.Subtitle != nil {
		updates["subtitle"] = strings.TrimSpace(*body.Subtitle)
	}
	if body.Percentage != nil {
		updates["percentage"] = strings.TrimSpace(*body.Percentage)
	}
	if body.ConsumptionRange != nil {
		updates["consumption_range"] = strings.TrimSpace(*body.ConsumptionRange)
	}
	if body.EstimatedSavings != nil {
		updates["estimated_savings"] = strings.TrimSpace(*body.EstimatedSavings)
	}
	if body.Features != nil {
		features, errFeatures := normalizePlanFeatures(*body.Features)
		if errFeatures != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid features"})
			return
		}
		updates["features"] = features
	}
	if body.ButtonText != nil {
		text := strings.TrimSpace(*body.ButtonText)
		if text == "" {
			text = sections.DefaultPlanButtonText
		}
		updates["button_text"] = text
	}
	if body.ButtonVariant != nil {
		variant := strings.TrimSpace(*body.ButtonVariant)
		if variant == "" {
			variant = "outline"
		}
		updates["button_variant"] = variant
	}
	if body.Popular != nil {
		updates["popular"] = *body.Popular
	}
	if body.DisplayOrder != nil {
		updates["display_order"] = *body.DisplayOrder
	}
	if body.Active != nil {
		updates["active"] = *body.Active
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Plan{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.changed(c)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes a plan by ID.
func (h *PlanHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Plan{}, id)
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

// Enable marks a plan as active.
func (h *PlanHandler) Enable(c *gin.Context) {
	h.setActive(c, true)
}

// Disable hides a plan from the public page.
func (h *PlanHandler) Disable(c *gin.Context) {
	h.setActive(c, false)
}

// setActive toggles the active state for a plan.
func (h *PlanHandler) setActive(c *gin.Context, active bool) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	now := time.Now().UTC()
	res := h.db.WithContext(c.Request.Context()).Model(&models.Plan{}).Where("id = ?", id).
		Updates(map[string]any{"active": active, "updated_at": now})
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

func (h *PlanHandler) changed(c *gin.Context) {
	if h.notifier != nil {
		h.notifier.Changed(c.Request.Context())
	}
}

// formatPlan converts a plan model into a response payload.
func (h *PlanHandler) formatPlan(p *models.Plan) gin.H {
	return gin.H{
		"id":                p.ID,
		"name":              p.Name,
		"subtitle":          p.Subtitle,
		"percentage":        p.Percentage,
		"consumption_range": p.ConsumptionRange,
		"estimated_savings": p.EstimatedSavings,
		"features":          p.Features,
		"button_text":       p.ButtonText,
		"button_variant":    p.ButtonVariant,
		"popular":           p.Popular,
		"active":            p.Active,
		"display_order":     p.DisplayOrder,
		"created_at":        p.CreatedAt,
		"updated_at":        p.UpdatedAt,
	}
}
