package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sellaro/sellaro-backend/internal/app/controller"
	"github.com/sellaro/sellaro-backend/internal/middleware"
)

// Controllers bundles everything the router mounts.
type Controllers struct {
	Session     *controller.SessionController
	Profile     *controller.ProfileController
	Address     *controller.AddressController
	Role        *controller.RoleController
	BankAccount *controller.BankAccountController
	Customer    *controller.CustomerController
	Catalog     *controller.CatalogController
}

// Setup wires middleware and routes onto a gin engine.
func Setup(sessionMiddleware *middleware.SessionMiddleware, ctrls Controllers) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.LoggingMiddleware())
	r.Use(sessionMiddleware.Load())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api/v1")
	{
		sessions := api.Group("/sessions")
		{
			sessions.GET("", ctrls.Session.Get)
			sessions.GET("/:id", ctrls.Session.Get)
			sessions.POST("", ctrls.Session.Register)
			sessions.PUT("/:id", ctrls.Session.Authenticate)
			sessions.DELETE("/:id", ctrls.Session.Logout)
		}

		profiles := api.Group("/profiles")
		{
			profiles.GET("", middleware.LoginRequired(), ctrls.Profile.List)
			profiles.GET("/:id", ctrls.Profile.Retrieve)
			profiles.POST("", ctrls.Profile.Create)
			profiles.PUT("/:id", middleware.LoginRequired(), ctrls.Profile.Update)
		}

		ctrls.Address.Mount(api.Group("/addresses"))
		ctrls.Role.Mount(api.Group("/roles"))
		ctrls.BankAccount.Mount(api.Group("/bank_accounts"))
		ctrls.Customer.Mount(api.Group("/customers"))
		ctrls.Catalog.Mount(api.Group("/products"))
	}

	return r
}
