package middlewares

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/responses"
)

// RequireAdmin checks if the authenticated user is an admin or super admin.
// It must run after Authenticate.
func RequireAdmin() gin.HandlerFunc {
	return requireActor(models.Actor.IsAdmin, "Access denied. Admin privileges required.")
}

// RequireSuperAdmin must run after Authenticate.
func RequireSuperAdmin() gin.HandlerFunc {
	return requireActor(models.Actor.IsSuperAdmin, "Access denied. Super admin privileges required.")
}

func requireActor(allowed func(models.Actor) bool, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFrom(c)
		if !ok {
			responses.Fail(c, http.StatusUnauthorized, errors.New("not authenticated"), "Unauthorized")
			return
		}
		if !allowed(actor) {
			responses.Fail(c, http.StatusForbidden, errors.New("forbidden"), message)
			return
		}
		c.Next()
	}
}
