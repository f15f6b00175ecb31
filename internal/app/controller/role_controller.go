package controller

import (
	"github.com/gin-gonic/gin"
	"github.com/sellaro/sellaro-backend/internal/app/model"
	"github.com/sellaro/sellaro-backend/internal/middleware"
	"github.com/sellaro/sellaro-backend/internal/rest"
	"gorm.io/gorm"
)

// RoleController exposes the role catalogue. Reading requires a login,
// writing requires the admin role, and deletion is never allowed since
// role rows are referenced from the permission checks themselves.
type RoleController struct {
	resource *rest.Resource[model.Role]
}

type roleRequest struct {
	Name string `json:"name" binding:"required"`
}

func NewRoleController(db *gorm.DB) *RoleController {
	ctrl := &RoleController{}

	ctrl.resource = &rest.Resource[model.Role]{
		Name:    "Role",
		Backend: rest.NewGormBackend[model.Role](db),
		Bind: func(c *gin.Context, role *model.Role) error {
			var req roleRequest
			if err := c.ShouldBindJSON(&req); err != nil {
				return err
			}
			role.Name = req.Name
			return nil
		},
		Guards: map[string][]gin.HandlerFunc{
			rest.VerbGet:  {middleware.LoginRequired()},
			rest.VerbPost: {middleware.RequireRole(model.RoleAdmin)},
			rest.VerbPut:  {middleware.RequireRole(model.RoleAdmin)},
		},
		Disabled: map[string]bool{
			rest.VerbDelete: true,
		},
	}
	return ctrl
}

// Mount registers the role routes on the group.
func (ctrl *RoleController) Mount(rg *gin.RouterGroup) {
	ctrl.resource.Mount(rg)
}
