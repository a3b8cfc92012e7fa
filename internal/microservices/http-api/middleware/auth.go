package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"yamdb/internal/microservices/http-api/access"
	"yamdb/internal/microservices/http-api/models"
	"yamdb/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
)

// context keys set by Authenticate and RequestLogger
const (
	actorKey     = "actor"
	userIDKey    = "userID"
	requestIDKey = "request_id"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, tokenString string) (*models.User, error)
}

// Authenticate resolves the caller of every request. No Authorization header
// means an anonymous actor; a header that does not carry a valid bearer token
// is rejected with 401 even on public endpoints.
func Authenticate(authenticator Authenticator, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.Set(actorKey, access.AnonymousActor)
			c.Next()
			return
		}

		// Extract token (format: "Bearer <token>")
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid authorization header format"})
			return
		}

		user, err := authenticator.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, service.ErrExpiredToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has expired"})
			case errors.Is(err, service.ErrInvalidToken):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			default:
				logger.Error("authenticate_failed", "request_id", RequestID(c), "error", err)
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
			}
			return
		}

		c.Set(actorKey, access.ActorFor(user))
		c.Set(userIDKey, user.ID)
		c.Next()
	}
}

// ActorFrom returns the actor stored by Authenticate, anonymous when absent.
func ActorFrom(c *gin.Context) access.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(access.Actor); ok {
			return actor
		}
	}
	return access.AnonymousActor
}

// RequireAuth rejects anonymous callers.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !ActorFrom(c).Authenticated() {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": access.ErrUnauthenticated.Error()})
			return
		}
		c.Next()
	}
}

// Authorize guards a route with access.Can for resources that have no owner,
// such as categories, genres, titles and users.
func Authorize(action access.Action, res access.Resource) gin.HandlerFunc {
	return func(c *gin.Context) {
		err := access.Authorize(ActorFrom(c), action, res, 0)
		switch {
		case errors.Is(err, access.ErrUnauthenticated):
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		case err != nil:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": err.Error()})
			return
		}
		c.Next()
	}
}
