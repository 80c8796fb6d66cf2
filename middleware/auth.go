package middleware

import (
	"context"
	"log"
	"net/http"

	"github.com/diaryhub/api-go/models"
	"github.com/diaryhub/api-go/services"
	"github.com/diaryhub/api-go/utils"
	"github.com/gin-gonic/gin"
)

// TokenResolver maps a bearer token to its user.
type TokenResolver interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

// AuthMiddleware rejects requests without a valid bearer token.
func AuthMiddleware(identity TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := utils.BearerToken(c)
		if token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Not authorized, no token provided",
			})
			return
		}

		user, err := identity.Resolve(c.Request.Context(), token)
		if err != nil {
			status := http.StatusUnauthorized
			message := err.Error()
			if services.KindOf(err) != services.KindUnauthenticated {
				log.Printf("Resolve token: %v", err)
				status = http.StatusInternalServerError
				message = "Internal server error"
			}
			c.AbortWithStatusJSON(status, gin.H{"success": false, "message": message})
			return
		}

		utils.SetActor(c, services.Authenticated(user))
		c.Next()
	}
}

// OptionalAuth resolves a bearer token when one is present. A missing or
// invalid token leaves the request to proceed as a guest.
func OptionalAuth(identity TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor := services.Guest()
		if token := utils.BearerToken(c); token != "" {
			if user, err := identity.Resolve(c.Request.Context(), token); err == nil {
				actor = services.Authenticated(user)
			}
		}
		utils.SetActor(c, actor)
		c.Next()
	}
}
