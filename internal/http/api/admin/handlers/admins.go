package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	dbutil "github.com/energee/energee-site/internal/db"
	"github.com/energee/energee-site/internal/http/api/admin/permissions"
	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminHandler manages operator accounts.
type AdminHandler struct {
	db *gorm.DB // Database handle for admin records.
}

// NewAdminHandler constructs an admin account handler.
func NewAdminHandler(db *gorm.DB) *AdminHandler {
	return &AdminHandler{db: db}
}

// minAdminPasswordLength is the shortest accepted admin password.
const minAdminPasswordLength = 8

// createAdminRequest captures the payload for creating an admin.
type createAdminRequest struct {
	Username     string   `json:"username"`       // Login name.
	Password     string   `json:"password"`       // Plain password.
	IsSuperAdmin bool     `json:"is_super_admin"` // Grants every permission.
	Permissions  []string `json:"permissions"`    // Granted permission keys.
}

// Create inserts a new admin account.
func (h *AdminHandler) Create(c *gin.Context) {
	var body createAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	username := strings.TrimSpace(body.Username)
	if username == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "username is required"})
		return
	}
	if len(body.Password) < minAdminPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}
	if errValidate := permissions.ValidatePermissions(body.Permissions); errValidate != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": errValidate.Error()})
		return
	}
	perms, errMarshal := permissions.MarshalPermissions(body.Permissions)
	if errMarshal != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid permissions"})
		return
	}
	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}

	now := time.Now().UTC()
	admin := models.Admin{
		Username:     username,
		Password:     hash,
		Active:       true,
		IsSuperAdmin: body.IsSuperAdmin,
		Permissions:  datatypes.JSON(perms),
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if errCreate := h.db.WithContext(c.Request.Context()).Create(&admin).Error; errCreate != nil {
		if dbutil.IsUniqueViolation(errCreate) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "create admin failed"})
		return
	}
	c.JSON(http.StatusCreated, formatAdmin(&admin))
}

// List returns admins with an optional username search.
func (h *AdminHandler) List(c *gin.Context) {
	q := h.db.WithContext(c.Request.Context()).Model(&models.Admin{})
	if searchQ := strings.TrimSpace(c.Query("search")); searchQ != "" {
		q = q.Where(dbutil.CaseInsensitiveLikeExpr(h.db, "username"), dbutil.ContainsPattern(h.db, searchQ))
	}
	var rows []models.Admin
	if errFind := q.Order("id ASC").Find(&rows).Error; errFind != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list admins failed"})
		return
	}
	out := make([]gin.H, 0, len(rows))
	for i := range rows {
		out = append(out, formatAdmin(&rows[i]))
	}
	c.JSON(http.StatusOK, gin.H{"admins": out})
}

// updateAdminRequest captures optional admin updates.
type updateAdminRequest struct {
	Username     *string   `json:"username"`       // Optional login name.
	Active       *bool     `json:"active"`         // Optional active flag.
	IsSuperAdmin *bool     `json:"is_super_admin"` // Optional super admin flag.
	Permissions  *[]string `json:"permissions"`    // Optional permission list.
}

// Update applies partial admin updates. Admins cannot disable or demote themselves.
func (h *AdminHandler) Update(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body updateAdminRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	self := currentAdminID(c) == id

	updates := map[string]any{"updated_at": time.Now().UTC()}
	if body.Username != nil {
		username := strings.TrimSpace(*body.Username)
		if username == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "username cannot be empty"})
			return
		}
		updates["username"] = username
	}
	if body.Active != nil {
		if self && !*body.Active {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot disable yourself"})
			return
		}
		updates["active"] = *body.Active
	}
	if body.IsSuperAdmin != nil {
		if self && !*body.IsSuperAdmin {
			c.JSON(http.StatusBadRequest, gin.H{"error": "cannot remove your own super admin flag"})
			return
		}
		updates["is_super_admin"] = *body.IsSuperAdmin
	}
	if body.Permissions != nil {
		if errValidate := permissions.ValidatePermissions(*body.Permissions); errValidate != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": errValidate.Error()})
			return
		}
		perms, errMarshal := permissions.MarshalPermissions(*body.Permissions)
		if errMarshal != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid permissions"})
			return
		}
		updates["permissions"] = datatypes.JSON(perms)
	}

	res := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		if dbutil.IsUniqueViolation(res.Error) {
			c.JSON(http.StatusConflict, gin.H{"error": "username already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// Delete removes an admin. The caller cannot delete their own account.
func (h *AdminHandler) Delete(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if currentAdminID(c) == id {
		c.JSON(http.StatusBadRequest, gin.H{"error": "cannot delete yourself"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Delete(&models.Admin{}, id)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "delete failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// changePasswordRequest captures a new password.
type changePasswordRequest struct {
	Password string `json:"password"` // New plain password.
}

// ChangePassword replaces an admin password.
func (h *AdminHandler) ChangePassword(c *gin.Context) {
	id, errParse := strconv.ParseUint(strings.TrimSpace(c.Param("id")), 10, 64)
	if errParse != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	var body changePasswordRequest
	if errBind := c.ShouldBindJSON(&body); errBind != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	if len(body.Password) < minAdminPasswordLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "password must be at least 8 characters"})
		return
	}
	hash, errHash := security.HashPassword(body.Password)
	if errHash != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "hash password failed"})
		return
	}
	res := h.db.WithContext(c.Request.Context()).Model(&models.Admin{}).Where("id = ?", id).
		Updates(map[string]any{"password": hash, "updated_at": time.Now().UTC()})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "update failed"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// currentAdminID returns the authenticated admin id, or zero.
func currentAdminID(c *gin.Context) uint64 {
	value, ok := c.Get("adminID")
	if !ok {
		return 0
	}
	id, _ := value.(uint64)
	return id
}
