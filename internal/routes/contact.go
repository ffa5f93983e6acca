package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/handlers"
	"github.com/sidharth07/verbiforge-sub000/internal/middlewares"
)

type ContactRoutes struct {
	handler      *handlers.ContactHandler
	authenticate gin.HandlerFunc
}

func NewContactRoutes(handler *handlers.ContactHandler, authenticate gin.HandlerFunc) *ContactRoutes {
	return &ContactRoutes{handler: handler, authenticate: authenticate}
}

func (r *ContactRoutes) RegisterRoutes(router *gin.RouterGroup) {
	contact := router.Group("/contact")
	{
		contact.POST("", r.handler.Submit)
		contact.GET("", r.authenticate, middlewares.RequireAdmin(), r.handler.Recent)
	}
}
