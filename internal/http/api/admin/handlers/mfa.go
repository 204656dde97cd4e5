package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/security"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// MFAHandler manages the authenticated admin's TOTP second factor.
type MFAHandler struct {
	db    *gorm.DB         // Database handle for admin records.
	nowFn func() time.Time // Clock, replaceable in tests.
}

// NewMFAHandler constructs an MFA handler.
func NewMFAHandler(db *gorm.DB) *MFAHandler {
	return &MFAHandler{db: db, nowFn: time.Now}
}

// totpCodeRequest carries a one-time code.
type totpCodeRequest struct {
	Code string `json:"code"` // Six digit TOTP code.
}

// Status reports whether TOTP is enabled for the current admin.
func (h *MFAHandler) Status(c *gin.Context) {
	admin, ok := loadCurrentAdmin(c, h.db)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"totp_enabled": admin.TOTPSecret != nil && strings.TrimSpace(*admin.TOTPSecret) != "",
		"totp_pending": admin.PendingTOTP != nil && strings.TrimSpace(*admin.PendingTOTP) != "",
	})
}

// PrepareTOTP generates a pending secret the admin must confirm with a code.
func (h *MFAHandler) PrepareTOTP(c *gin.Context) {
	admin, ok := loadCurrentAdmin(c, h.db)
	if !ok {
		return
	}
	secret, otpURL, errGenerate := security.GenerateTOTPSecret(admin.Username)
	if errGenerate != nil {
		log.WithError(errGenerate).Error("mfa: generate totp secret")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "generate secret failed"})
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).Where("id = ?", admin.ID).
		Updates(map[string]any{"pending_totp": secret, "updated_at": h.nowFn().UTC()}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"secret": secret, "otpauth_url": otpURL})
}

// ConfirmTOTP activates the pending secret when the code matches.
func (h *MFAHandler) ConfirmTOTP(c *gin.Context) {
	var body totpCodeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	admin, ok := loadCurrentAdmin(c, h.db)
	if !ok {
		return
	}
	if admin.PendingTOTP == nil || strings.TrimSpace(*admin.PendingTOTP) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no pending totp setup"})
		return
	}
	now := h.nowFn().UTC()
	if !security.ValidateTOTP(*admin.PendingTOTP, strings.TrimSpace(body.Code), now) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid totp code"})
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).Where("id = ?", admin.ID).
		Updates(map[string]any{"totp_secret": *admin.PendingTOTP, "pending_totp": nil, "updated_at": now}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	log.WithField("admin", admin.Username).Info("mfa: totp enabled")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// DisableTOTP removes the second factor after checking a current code.
func (h *MFAHandler) DisableTOTP(c *gin.Context) {
	var body totpCodeRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	admin, ok := loadCurrentAdmin(c, h.db)
	if !ok {
		return
	}
	if admin.TOTPSecret == nil || strings.TrimSpace(*admin.TOTPSecret) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totp not enabled"})
		return
	}
	now := h.nowFn().UTC()
	if !security.ValidateTOTP(*admin.TOTPSecret, strings.TrimSpace(body.Code), now) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid totp code"})
		return
	}
	if errUpdate := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).Where("id = ?", admin.ID).
		Updates(map[string]any{"totp_secret": nil, "pending_totp": nil, "updated_at": now}).Error; errUpdate != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	log.WithField("admin", admin.Username).Info("mfa: totp disabled")
	c.JSON(http.StatusOK, gin.H{"ok": true})
}
