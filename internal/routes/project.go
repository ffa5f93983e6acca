package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/handlers"
	"github.com/sidharth07/verbiforge-sub000/internal/middlewares"
)

type ProjectRoutes struct {
	handler      *handlers.ProjectHandler
	authenticate gin.HandlerFunc
}

func NewProjectRoutes(handler *handlers.ProjectHandler, authenticate gin.HandlerFunc) *ProjectRoutes {
	return &ProjectRoutes{handler: handler, authenticate: authenticate}
}

func (r *ProjectRoutes) RegisterRoutes(router *gin.RouterGroup) {
	projects := router.Group("/projects")
	projects.Use(r.authenticate) // All project routes require authentication
	{
		projects.POST("", r.handler.CreateProject)
		projects.GET("", r.handler.ListProjects)
		projects.GET("/:id", r.handler.GetProject)
		projects.DELETE("/:id", r.handler.DeleteProject)
		projects.POST("/:id/submit", r.handler.SubmitProject)
		projects.GET("/:id/source", r.handler.DownloadSource)
		projects.GET("/:id/translation", r.handler.DownloadTranslation)

		admin := projects.Group("", middlewares.RequireAdmin())
		admin.PATCH("/:id/eta", r.handler.SetETA)
		admin.PATCH("/:id/status", r.handler.SetStatus)
		admin.POST("/:id/translation", r.handler.AttachTranslation)
	}
}
