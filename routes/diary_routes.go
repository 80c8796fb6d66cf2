package routes

import (
	"github.com/diaryhub/api-go/controllers"
	"github.com/gin-gonic/gin"
)

func SetupDiaryRoutes(diaries *gin.RouterGroup, requireAuth, optionalAuth gin.HandlerFunc, diaryController *controllers.DiaryController) {
	diaries.POST("", requireAuth, diaryController.CreateDiary)
	diaries.GET("/my", requireAuth, diaryController.GetMyDiaries)
	diaries.GET("/:id", optionalAuth, diaryController.GetDiary)
	diaries.PUT("/:id", requireAuth, diaryController.UpdateDiary)
	diaries.DELETE("/:id", requireAuth, diaryController.DeleteDiary)
	diaries.PATCH("/:id/toggle-visibility", requireAuth, diaryController.ToggleVisibility)
}
