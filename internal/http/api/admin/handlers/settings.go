package handlers

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/energee/energee-site/internal/editor"
	"github.com/energee/energee-site/internal/models"
	internalsettings "github.com/energee/energee-site/internal/settings"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingHandler manages admin CRUD for site settings.
type SettingHandler struct {
	db       *gorm.DB              // Database handle for settings.
	notifier editor.ChangeNotifier // Refreshes the public snapshot after writes.
}

// NewSettingHandler constructs a settings handler.
func NewSettingHandler(db *gorm.DB, notifier editor.ChangeNotifier) *SettingHandler {
	return &SettingHandler{db: db, notifier: notifier}
}

// secretMask replaces secret values in listings. Submitting it back leaves the value unchanged.
const secretMask = "********"

// Catalog returns the known setting definitions.
func (h *SettingHandler) Catalog(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"definitions": internalsettings.Definitions()})
}

// List returns stored settings sorted by key with secrets masked.
func (h *SettingHandler) List(c *gin.Context) {
	var rows []models.SiteSetting
	if errFind := h.db.WithContext(c.Request.Context()).Order("setting_key ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list settings failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, h.formatSetting(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"settings": out})
}

// bulkSettingsRequest carries several key/value pairs.
type bulkSettingsRequest struct {
	Settings map[string]string `json:"settings"` // Key to new value.
}

// BulkUpdate upserts every submitted pair in one transaction.
func (h *SettingHandler) BulkUpdate(c *gin.Context) {
	var body bulkSettingsRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.Settings) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "settings are required"})
		return
	}

	keys := make([]string, 0, len(body.Settings))
	for key := range body.Settings {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	now := time.Now().UTC()
	rows := make([]models.SiteSetting, 0, len(keys))
	for _, rawKey := range keys {
		key := strings.TrimSpace(rawKey)
		value := body.Settings[rawKey]
		if isMaskedSecret(key, value) {
			continue
		}
		normalized, errNormalize := internalsettings.NormalizeValue(key, value)
		if errNormalize != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errNormalize.Error()})
			return
		}
		rows = append(rows, models.SiteSetting{SettingKey: key, SettingValue: normalized, UpdatedAt: now})
	}
	if len(rows) == 0 {
		c.JSON(http.StatusOK, gin.H{"ok": true, "updated": 0})
		return
	}

	if errUpsert := h.upsert(c.Request.Context(), rows); errUpsert != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.changed(c.Request.Context(), keys)
	c.JSON(http.StatusOK, gin.H{"ok": true, "updated": len(rows)})
}

// updateSettingRequest captures the payload for updating a setting.
type updateSettingRequest struct {
	Value string `json:"value"` // New value.
}

// Update upserts a single setting.
func (h *SettingHandler) Update(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
		return
	}
	var body updateSettingRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if isMaskedSecret(key, body.Value) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
		return
	}
	normalized, errNormalize := internalsettings.NormalizeValue(key, body.Value)
	if errNormalize != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errNormalize.Error()})
		return
	}

	row := models.SiteSetting{SettingKey: key, SettingValue: normalized, UpdatedAt: time.Now().UTC()}
	if errUpsert := h.upsert(c.Request.Context(), []models.SiteSetting{row}); errUpsert != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	h.changed(c.Request.Context(), []string{key})
	c.JSON(http.StatusOK, h.formatSetting(&row))
}

// Delete removes a setting so consumers fall back to their defaults.
func (h *SettingHandler) Delete(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid key"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Where("setting_key = ?", key).Delete(&models.SiteSetting{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	h.changed(c.Request.Context(), []string{key})
	c.Status(http.StatusNoContent)
}

// upsert writes rows, replacing the value of existing keys.
func (h *SettingHandler) upsert(ctx context.Context, rows []models.SiteSetting) error {
	if len(rows) == 0 {
		return errors.New("no settings")
	}
	return h.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "setting_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"setting_value", "updated_at"}),
	}).Create(&rows).Error
}

func (h *SettingHandler) changed(ctx context.Context, keys []string) {
	log.WithField("keys", keys).Info("site settings updated")
	if h.notifier != nil {
		h.notifier.Changed(ctx)
	}
}

// isMaskedSecret reports whether value is the listing mask echoed back for a secret key.
func isMaskedSecret(key, value string) bool {
	def, ok := internalsettings.Lookup(strings.TrimSpace(key))
	return ok && def.Secret && value == secretMask
}

// formatSetting formats a setting row into response JSON.
func (h *SettingHandler) formatSetting(s *models.SiteSetting) gin.H {
	value := s.SettingValue
	out := gin.H{
		"key":        s.SettingKey,
		"updated_at": s.UpdatedAt,
	}
	if def, ok := internalsettings.Lookup(s.SettingKey); ok {
		out["label"] = def.Label
		out["group"] = def.Group
		out["kind"] = def.Kind
		if def.Secret && value != "" {
			value = secretMask
		}
	}
	out["value"] = value
	return out
}
