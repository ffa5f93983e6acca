package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/handlers"
)

type QuoteRoutes struct {
	handler      *handlers.QuoteHandler
	authenticate gin.HandlerFunc
}

func NewQuoteRoutes(handler *handlers.QuoteHandler, authenticate gin.HandlerFunc) *QuoteRoutes {
	return &QuoteRoutes{handler: handler, authenticate: authenticate}
}

func (r *QuoteRoutes) RegisterRoutes(router *gin.RouterGroup) {
	quotes := router.Group("/quotes", r.authenticate)
	quotes.POST("/analyze", r.handler.Analyze)
}
