package handlers

import (
	"net/http"

	"github.com/energee/energee-site/internal/http/api/admin/permissions"
	"github.com/gin-gonic/gin"
)

// PermissionHandler lists grantable admin permissions.
type PermissionHandler struct{}

// NewPermissionHandler constructs a permission handler.
func NewPermissionHandler() *PermissionHandler {
	return &PermissionHandler{}
}

// List returns every route permission and the module grants.
func (h *PermissionHandler) List(c *gin.Context) {
	modules := permissions.Modules()
	grants := make([]gin.H, 0, len(modules))
	for _, module := range modules {
		grants = append(grants, gin.H{"key": permissions.ModuleGrant(module), "module": module})
	}
	c.JSON(http.StatusOK, gin.H{"permissions": permissions.Definitions(), "modules": grants})
}
