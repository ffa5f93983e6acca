package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/handlers"
	"github.com/sidharth07/verbiforge-sub000/internal/middlewares"
)

type UserRoutes struct {
	userHandler  *handlers.UserHandler
	authenticate gin.HandlerFunc
}

func NewUserRoutes(userHandler *handlers.UserHandler, authenticate gin.HandlerFunc) *UserRoutes {
	return &UserRoutes{userHandler: userHandler, authenticate: authenticate}
}

func (r *UserRoutes) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	users.Use(r.authenticate) // All user routes require authentication
	{
		users.GET("/me", r.userHandler.GetMe)

		// Admin-only routes
		admin := users.Group("", middlewares.RequireAdmin())
		admin.GET("", r.userHandler.ListUsers)
		admin.POST("", r.userHandler.CreateUser)
		admin.GET("/:human_id", r.userHandler.GetUser)
		admin.DELETE("/:human_id", r.userHandler.DeleteUser)
		admin.PATCH("/:human_id/license", r.userHandler.SetLicense)

		users.PATCH("/:human_id/role", middlewares.RequireSuperAdmin(), r.userHandler.SetRole)
	}
}
