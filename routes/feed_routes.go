package routes

import (
	"github.com/diaryhub/api-go/controllers"
	"github.com/gin-gonic/gin"
)

// SetupFeedRoutes registers the public listings. A token is optional and
// only fills in the caller's own reactions.
func SetupFeedRoutes(diaries *gin.RouterGroup, optionalAuth gin.HandlerFunc, feedController *controllers.FeedController) {
	diaries.GET("/public", optionalAuth, feedController.GetPublicFeed)
	diaries.GET("/user/:userId", optionalAuth, feedController.GetUserDiaries)
}
