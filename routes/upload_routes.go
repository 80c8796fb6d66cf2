package routes

import (
	"github.com/diaryhub/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupUploadRoutes(r *gin.RouterGroup, requireAuth gin.HandlerFunc, uploadController *controllers.UploadController) {
	avatar := r.Group("/avatar", requireAuth)
	{
		avatar.POST("/upload-url", uploadController.GetAvatarUploadURL)
		avatar.DELETE("/temp", uploadController.CleanupTempAvatar)
	}
}
