package routes

import (
	"github.com/diaryhub/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupUserRoutes(r *gin.RouterGroup, userController *controllers.UserController) {
	users := r.Group("/users")
	{
		users.GET("/:userId", userController.GetUserProfile)
	}
}
