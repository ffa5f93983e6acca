package middlewares

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/sidharth07/verbiforge-sub000/internal/models"
	"github.com/sidharth07/verbiforge-sub000/internal/responses"
)

const (
	actorKey       = "actor"
	userIDKey      = "userId"
	accessTokenKey = "accessToken"
)

// Authenticator resolves a bearer token. *services.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (models.Actor, error)
}

// Authenticate rejects requests without a valid bearer token and stores the
// resolved actor for handlers.
func Authenticate(auth Authenticator, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c)
		if err != nil {
			responses.Fail(c, http.StatusUnauthorized, err, "Unauthorized")
			return
		}
		actor, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			responses.Error(c, log, err, "Unauthorized")
			return
		}
		setActor(c, actor, token)
		c.Next()
	}
}

// OptionalAuthenticate resolves the actor when a token is present and lets
// anonymous requests through. An invalid token is still rejected.
func OptionalAuthenticate(auth Authenticator, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" {
			c.Next()
			return
		}
		Authenticate(auth, log)(c)
	}
}

// ActorFrom returns the actor stored by Authenticate.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(actorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}

// AccessTokenFrom returns the bearer token of an authenticated request.
func AccessTokenFrom(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}

func setActor(c *gin.Context, actor models.Actor, token string) {
	c.Set(actorKey, actor)
	c.Set(userIDKey, actor.UserID)
	c.Set(accessTokenKey, token)
}

// Expected format: "Bearer <token>"
func bearerToken(c *gin.Context) (string, error) {
	header := c.GetHeader("Authorization")
	if header == "" {
		return "", errors.New("missing Authorization header")
	}
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
		return "", errors.New("invalid Authorization format")
	}
	return strings.TrimSpace(token), nil
}
