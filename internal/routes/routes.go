package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/sidharth07/verbiforge-sub000/internal/handlers"
)

// Handlers groups everything the router needs.
type Handlers struct {
	Auth    *handlers.AuthHandler
	User    *handlers.UserHandler
	Quote   *handlers.QuoteHandler
	Project *handlers.ProjectHandler
	Rate    *handlers.RateHandler
	Account *handlers.AccountHandler
	Contact *handlers.ContactHandler

	// Authenticate rejects anonymous requests; OptionalAuthenticate lets them through.
	Authenticate         gin.HandlerFunc
	OptionalAuthenticate gin.HandlerFunc
}

func RegisterRoutes(router *gin.Engine, h Handlers, gatherer prometheus.Gatherer) {
	api := router.Group("/api/v1")

	NewAuthRoutes(h.Auth, h.Authenticate).RegisterRoutes(api)
	NewUserRoutes(h.User, h.Authenticate).RegisterRoutes(api)
	NewQuoteRoutes(h.Quote, h.Authenticate).RegisterRoutes(api)
	NewProjectRoutes(h.Project, h.Authenticate).RegisterRoutes(api)
	NewRateRoutes(h.Rate, h.Authenticate, h.OptionalAuthenticate).RegisterRoutes(api)
	NewAccountRoutes(h.Account, h.Authenticate).RegisterRoutes(api)
	NewContactRoutes(h.Contact, h.Authenticate).RegisterRoutes(api)

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	router.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status": "ok",
		})
	})
}
