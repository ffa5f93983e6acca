package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/handlers"
	"github.com/sidharth07/verbiforge-sub000/internal/middlewares"
)

type RateRoutes struct {
	handler              *handlers.RateHandler
	authenticate         gin.HandlerFunc
	optionalAuthenticate gin.HandlerFunc
}

func NewRateRoutes(handler *handlers.RateHandler, authenticate, optionalAuthenticate gin.HandlerFunc) *RateRoutes {
	return &RateRoutes{handler: handler, authenticate: authenticate, optionalAuthenticate: optionalAuthenticate}
}

func (r *RateRoutes) RegisterRoutes(router *gin.RouterGroup) {
	rates := router.Group("/rates")
	{
		// bootstrap: allowed anonymously until a table exists
		rates.POST("/reset", r.optionalAuthenticate, r.handler.ResetRates)

		rates.GET("", r.authenticate, r.handler.GetRates)

		admin := rates.Group("", r.authenticate, middlewares.RequireAdmin())
		admin.PUT("", r.handler.ReplaceRates)
		admin.POST("/languages", r.handler.SetLanguage)
		admin.DELETE("/languages/:language", r.handler.RemoveLanguage)
		admin.PUT("/settings", r.handler.UpdateSettings)
	}
}
