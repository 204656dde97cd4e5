package admin

import (
	"net/http"
	"strings"

	"github.com/energee/energee-site/internal/analytics"
	"github.com/energee/energee-site/internal/config"
	"github.com/energee/energee-site/internal/editor"
	handlers "github.com/energee/energee-site/internal/http/api/admin/handlers"
	"github.com/energee/energee-site/internal/http/api/admin/permissions"
	"github.com/energee/energee-site/internal/models"
	"github.com/energee/energee-site/internal/security"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Deps bundles what the admin routes need.
type Deps struct {
	DB        *gorm.DB              // Primary database.
	JWT       config.JWTConfig      // Token signing settings.
	Editor    *editor.Editor        // Section content editor.
	Notifier  editor.ChangeNotifier // Snapshot refresh after plan, FAQ and setting writes.
	Analytics *analytics.Recorder   // Event summaries for the dashboard.
}

// RegisterAdminRoutes registers admin routes, middleware, and handlers.
func RegisterAdminRoutes(r *gin.Engine, deps Deps) {
	if r == nil || deps.DB == nil {
		return
	}
	db := deps.DB

	healthHandler := handlers.NewHealthHandler(db)
	r.GET("/healthz", healthHandler.Healthz)

	adminGroup := r.Group("/v0/admin")

	authHandler := handlers.NewAuthHandler(db, deps.JWT)
	adminGroup.POST("/login", authHandler.Login)

	selfAuthed := adminGroup.Group("")
	selfAuthed.Use(adminAuthMiddleware(db, deps.JWT))
	selfAuthed.GET("/me", authHandler.Me)

	mfaHandler := handlers.NewMFAHandler(db)
	selfAuthed.GET("/mfa/status", mfaHandler.Status)
	selfAuthed.POST("/mfa/totp/prepare", mfaHandler.PrepareTOTP)
	selfAuthed.POST("/mfa/totp/confirm", mfaHandler.ConfirmTOTP)
	selfAuthed.POST("/mfa/totp/disable", mfaHandler.DisableTOTP)

	authed := adminGroup.Group("")
	authed.Use(adminAuthMiddleware(db, deps.JWT))
	authed.Use(adminPermissionMiddleware())

	dashboardHandler := handlers.NewDashboardHandler(db, deps.Analytics)
	authed.GET("/dashboard", dashboardHandler.Overview)

	if deps.Editor != nil {
		contentHandler := handlers.NewContentHandler(deps.Editor)
		authed.GET("/content/catalog", contentHandler.Catalog)
		authed.GET("/content", contentHandler.List)
		authed.GET("/content/:key", contentHandler.Get)
		authed.PUT("/content/:key", contentHandler.Save)
		authed.DELETE("/content/:key", contentHandler.Delete)
	}

	planHandler := handlers.NewPlanHandler(db, deps.Notifier)
	authed.POST("/plans", planHandler.Create)
	authed.GET("/plans", planHandler.List)
	authed.GET("/plans/:id", planHandler.Get)
	authed.PUT("/plans/:id", planHandler.Update)
	authed.DELETE("/plans/:id", planHandler.Delete)
	authed.POST("/plans/:id/enable", planHandler.Enable)
	authed.POST("/plans/:id/disable", planHandler.Disable)

	faqHandler := handlers.NewFAQHandler(db, deps.Notifier)
	authed.POST("/faqs", faqHandler.Create)
	authed.GET("/faqs", faqHandler.List)
	authed.PUT("/faqs/order", faqHandler.Reorder)
	authed.GET("/faqs/:id", faqHandler.Get)
	authed.PUT("/faqs/:id", faqHandler.Update)
	authed.DELETE("/faqs/:id", faqHandler.Delete)
	authed.POST("/faqs/:id/enable", faqHandler.Enable)
	authed.POST("/faqs/:id/disable", faqHandler.Disable)

	formHandler := handlers.NewFormHandler(db)
	authed.GET("/forms", formHandler.List)
	authed.GET("/forms/export", formHandler.Export)
	authed.GET("/forms/:id", formHandler.Get)
	authed.DELETE("/forms/:id", formHandler.Delete)

	settingHandler := handlers.NewSettingHandler(db, deps.Notifier)
	authed.GET("/settings", settingHandler.List)
	authed.GET("/settings/catalog", settingHandler.Catalog)
	authed.PUT("/settings", settingHandler.BulkUpdate)
	authed.PUT("/settings/:key", settingHandler.Update)
	authed.DELETE("/settings/:key", settingHandler.Delete)

	crmJobHandler := handlers.NewCRMJobHandler(db)
	authed.GET("/crm-jobs", crmJobHandler.List)
	authed.POST("/crm-jobs/:id/retry", crmJobHandler.Retry)

	adminHandler := handlers.NewAdminHandler(db)
	authed.POST("/admins", adminHandler.Create)
	authed.GET("/admins", adminHandler.List)
	authed.PUT("/admins/:id", adminHandler.Update)
	authed.DELETE("/admins/:id", adminHandler.Delete)
	authed.PUT("/admins/:id/password", adminHandler.ChangePassword)

	permissionHandler := handlers.NewPermissionHandler()
	authed.GET("/permissions", permissionHandler.List)
}

// adminAuthMiddleware validates admin JWTs and loads admin context.
func adminAuthMiddleware(db *gorm.DB, jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing authorization header"})
			return
		}

		token := strings.TrimPrefix(authHeader, "Bearer ")
		if token == authHeader {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization format"})
			return
		}
		token = strings.TrimSpace(token)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "empty token"})
			return
		}

		claims, errJWT := security.ParseAdminToken(jwtCfg.Secret, token)
		if errJWT != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		var admin models.Admin
		if errFind := db.WithContext(c.Request.Context()).First(&admin, claims.AdminID).Error; errFind != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "admin not found"})
			return
		}
		if !admin.Active {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin disabled"})
			return
		}

		adminPermissions := permissions.ParsePermissions(admin.Permissions)
		c.Set("adminID", admin.ID)
		c.Set("adminUsername", admin.Username)
		c.Set("adminPermissions", adminPermissions)
		c.Set("adminIsSuperAdmin", admin.IsSuperAdmin)
		c.Next()
	}
}

// adminPermissionMiddleware checks the route against the admin's granted permissions.
func adminPermissionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetBool("adminIsSuperAdmin") {
			c.Next()
			return
		}
		key := permissions.Key(c.Request.Method, c.FullPath())
		granted, _ := c.Get("adminPermissions")
		perms, _ := granted.([]string)
		if !permissions.HasPermission(perms, key) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
