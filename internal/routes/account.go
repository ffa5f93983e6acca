package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/handlers"
	"github.com/sidharth07/verbiforge-sub000/internal/middlewares"
)

type AccountRoutes struct {
	handler      *handlers.AccountHandler
	authenticate gin.HandlerFunc
}

func NewAccountRoutes(handler *handlers.AccountHandler, authenticate gin.HandlerFunc) *AccountRoutes {
	return &AccountRoutes{handler: handler, authenticate: authenticate}
}

func (r *AccountRoutes) RegisterRoutes(router *gin.RouterGroup) {
	subs := router.Group("/accounts/:human_id/sub-accounts", r.authenticate, middlewares.RequireAdmin())
	{
		subs.GET("", r.handler.ListSubAccounts)
		subs.POST("", r.handler.AttachSubAccount)
		subs.POST("/new", r.handler.CreateSubAccount)
		subs.DELETE("/:sub_human_id", r.handler.DetachSubAccount)
	}
}
