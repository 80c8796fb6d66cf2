package routes

import (
	"github.com/diaryhub/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupCommentRoutes(diaries *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc, commentController *controllers.CommentController) {
	comments := diaries.Group("/:id/comments")
	{
		comments.GET("", optionalAuth, commentController.GetComments)
		comments.POST("", requireAuth, commentController.AddComment)
		comments.PUT("/:commentId", requireAuth, commentController.UpdateComment)
		comments.DELETE("/:commentId", requireAuth, commentController.DeleteComment)
	}
}
