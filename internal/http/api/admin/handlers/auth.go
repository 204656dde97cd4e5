package handlers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/energee/energee-site/internal/config"
	"github.com/energee/energee-site/internal/http/api/admin/permissions"
	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/security"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// AuthHandler issues admin session tokens.
type AuthHandler struct {
	db     *gorm.DB         // Database handle for admin records.
	jwtCfg config.JWTConfig // Signing secret and token lifetime.
	nowFn  func() time.Time // Clock, replaceable in tests.
}

// NewAuthHandler constructs an auth handler.
func NewAuthHandler(db *gorm.DB, jwtCfg config.JWTConfig) *AuthHandler {
	return &AuthHandler{db: db, jwtCfg: jwtCfg, nowFn: time.Now}
}

// loginRequest captures admin credentials.
type loginRequest struct {
	Username string `json:"username"`  // Admin username.
	Password string `json:"password"`  // Plain password.
	TOTPCode string `json:"totp_code"` // Required when the admin has TOTP enabled.
}

// Login verifies credentials and returns a signed token.
func (h *AuthHandler) Login(c *gin.Context) {
	var body loginRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" || body.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username and password are required"})
		return
	}

	ctx := c.Request.Context()
	var admin models.Admin
	if errFind := h.db.WithContext(ctx).Where("username = ?", username).First(&admin).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	if !security.CheckPassword(admin.Password, body.Password) {
		log.WithField("username", username).Warn("admin login: bad password")
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
		return
	}
	if !admin.Active {
		c.JSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
		return
	}

	now := h.nowFn().UTC()
	if admin.TOTPSecret != nil && strings.TrimSpace(*admin.TOTPSecret) != "" {
		code := strings.TrimSpace(body.TOTPCode)
		if code == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "totp code required", "totp_required": true})
			return
		}
		if !security.ValidateTOTP(*admin.TOTPSecret, code, now) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid totp code", "totp_required": true})
			return
		}
	}

	token, expiresAt, errIssue := security.IssueAdminToken(h.jwtCfg.Secret, admin.ID, admin.Username, h.jwtCfg.Expiry, now)
	if errIssue != nil {
		log.WithError(errIssue).Error("admin login: issue token")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "issue token failed"})
		return
	}

	if errUpdate := h.db.WithContext(ctx).Model(&models.Admin{}).Where("id = ?", admin.ID).
		Updates(map[string]any{"last_login_at": now, "updated_at": now}).Error; errUpdate != nil {
		log.WithError(errUpdate).Warn("admin login: update last login")
	}
	admin.LastLoginAt = &now

	c.JSON(http.StatusOK, gin.H{
		"token":      token,
		"expires_at": expiresAt,
		"admin":      formatAdmin(&admin),
	})
}

// Me returns the authenticated admin.
func (h *AuthHandler) Me(c *gin.Context) {
	admin, ok := loadCurrentAdmin(c, h.db)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, formatAdmin(admin))
}

// loadCurrentAdmin fetches the admin set by the auth middleware and writes the error response on failure.
func loadCurrentAdmin(c *gin.Context, db *gorm.DB) (*models.Admin, bool) {
	adminID, ok := c.Get("adminID")
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	id, okID := adminID.(uint64)
	if !okID {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return nil, false
	}
	var admin models.Admin
	if errFind := db.WithContext(c.Request.Context()).First(&admin, id).Error; errFind != nil {
		if errors.Is(errFind, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return nil, false
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return nil, false
	}
	return &admin, true
}

// formatAdmin converts an admin model into a response payload without secrets.
func formatAdmin(a *models.Admin) gin.H {
	return gin.H{
		"id":             a.ID,
		"username":       a.Username,
		"active":         a.Active,
		"is_super_admin": a.IsSuperAdmin,
		"permissions":    permissions.ParsePermissions(a.Permissions),
		"totp_enabled":   a.TOTPSecret != nil && strings.TrimSpace(*a.TOTPSecret) != "",
		"last_login_at":  a.LastLoginAt,
		"created_at":     a.CreatedAt,
		"updated_at":     a.UpdatedAt,
	}
}
