package routes

import (
	"github.com/diaryhub/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupInteractionRoutes(diaries *gin.RouterGroup, requireAuth gin.HandlerFunc, interactionController *controllers.InteractionController) {
	diaries.POST("/:id/react", requireAuth, interactionController.ReactToDiary)
	diaries.POST("/:id/comments/:commentId/react", requireAuth, interactionController.ReactToComment)
}
