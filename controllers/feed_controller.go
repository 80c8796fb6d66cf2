package controllers

import (
	"net/http"

	"github.com/diaryhub/api-go/services"
	"github.com/diaryhub/api-go/utils"
	"github.com/gin-gonic/gin"
)

// FeedController serves the public listings of diaries.
type FeedController struct {
	Diaries *services.DiaryService
}

func NewFeedController(diaries *services.DiaryService) *FeedController {
	return &FeedController{Diaries: diaries}
}

// GetPublicFeed godoc
// @Summary List public diaries
// @Description Newest first, each with its comment count across both thread levels
// @Tags feed
// @Produce json
// @Param page query integer false "Page number (default: 1)"
// @Param limit query integer false "Items per page (default: 10, max: 100)"
// @Param search query string false "Title contains"
// @Success 200 {array} services.DiaryView
// @Router /diaries/public [get]
func (fc *FeedController) GetPublicFeed(c *gin.Context) {
	var q DiaryListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	diaries, meta, err := fc.Diaries.ListPublic(c.Request.Context(), utils.GetActor(c), services.DiaryFilter{
		PageQuery: q.PageQuery,
		Search:    q.Search,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       diaries,
		Pagination: &meta,
	})
}

// GetUserDiaries godoc
// @Summary List a user's public diaries
// @Tags feed
// @Produce json
// @Param userId path integer true "User ID"
// @Param page query integer false "Page number (default: 1)"
// @Param limit query integer false "Items per page (default: 10, max: 100)"
// @Success 200 {array} services.DiaryView
// @Router /diaries/user/{userId} [get]
func (fc *FeedController) GetUserDiaries(c *gin.Context) {
	userID, ok := utils.ParseIDParam(c, "userId")
	if !ok {
		badRequest(c, "Invalid user ID")
		return
	}
	var q DiaryListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	diaries, meta, err := fc.Diaries.ListByAuthor(c.Request.Context(), utils.GetActor(c), userID, q.PageQuery)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       diaries,
		Pagination: &meta,
	})
}
