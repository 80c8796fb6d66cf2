package utils

import (
	"github.com/diaryhub/api-go/services"
	"github.com/gin-gonic/gin"
)

type contextKey string

const ActorContextKey contextKey = "actor"

func SetActor(c *gin.Context, actor services.Actor) {
	c.Set(string(ActorContextKey), actor)
}

// GetActor returns the request's actor, a guest when no middleware set one.
func GetActor(c *gin.Context) services.Actor {
	value, exists := c.Get(string(ActorContextKey))
	if !exists {
		return services.Guest()
	}
	if actor, ok := value.(services.Actor); ok {
		return actor
	}
	return services.Guest()
}
