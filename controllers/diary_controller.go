package controllers

import (
	"net/http"

	"github.com/diaryhub/api-go/services"
	"github.com/diaryhub/api-go/types"
	"github.com/diaryhub/api-go/utils"
	"github.com/gin-gonic/gin"
)

type DiaryController struct {
	Diaries *services.DiaryService
}

type CreateDiaryRequest struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	IsPublic bool     `json:"isPublic"`
	Tags     []string `json:"tags"`
}

type UpdateDiaryRequest struct {
	Title    *string   `json:"title"`
	Content  *string   `json:"content"`
	IsPublic *bool     `json:"isPublic"`
	Tags     *[]string `json:"tags"`
}

type DiaryListQuery struct {
	types.PageQuery
	Search string `form:"search"`
}

func NewDiaryController(diaries *services.DiaryService) *DiaryController {
	return &DiaryController{Diaries: diaries}
}

func diaryID(c *gin.Context) (uint, bool) {
	id, ok := utils.ParseIDParam(c, "id")
	if !ok {
		badRequest(c, "Invalid diary ID")
	}
	return id, ok
}

// CreateDiary godoc
// @Summary Create a diary entry
// @Tags diaries
// @Accept json
// @Produce json
// @Param diary body CreateDiaryRequest true "Diary"
// @Success 201 {object} services.DiaryView
// @Router /diaries [post]
func (dc *DiaryController) CreateDiary(c *gin.Context) {
	var req CreateDiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	diary, err := dc.Diaries.Create(c.Request.Context(), utils.GetActor(c), services.CreateDiaryInput{
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: req.IsPublic,
		Tags:     req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    diary,
		Message: "Diary created successfully",
	})
}

// GetDiary godoc
// @Summary Get a diary entry
// @Description Public entries are visible to everyone, private ones only to their owner
// @Tags diaries
// @Produce json
// @Param id path integer true "Diary ID"
// @Success 200 {object} services.DiaryView
// @Router /diaries/{id} [get]
func (dc *DiaryController) GetDiary(c *gin.Context) {
	id, ok := diaryID(c)
	if !ok {
		return
	}

	diary, err := dc.Diaries.Get(c.Request.Context(), utils.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: diary})
}

// UpdateDiary godoc
// @Summary Update a diary entry
// @Tags diaries
// @Accept json
// @Produce json
// @Param id path integer true "Diary ID"
// @Param diary body UpdateDiaryRequest true "Fields to change"
// @Success 200 {object} services.DiaryView
// @Router /diaries/{id} [put]
func (dc *DiaryController) UpdateDiary(c *gin.Context) {
	id, ok := diaryID(c)
	if !ok {
		return
	}
	var req UpdateDiaryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	diary, err := dc.Diaries.Update(c.Request.Context(), utils.GetActor(c), id, services.UpdateDiaryInput{
		Title:    req.Title,
		Content:  req.Content,
		IsPublic: req.IsPublic,
		Tags:     req.Tags,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    diary,
		Message: "Diary updated successfully",
	})
}

// DeleteDiary godoc
// @Summary Delete a diary entry with its comments
// @Tags diaries
// @Param id path integer true "Diary ID"
// @Success 200 {object} StandardResponse
// @Router /diaries/{id} [delete]
func (dc *DiaryController) DeleteDiary(c *gin.Context) {
	id, ok := diaryID(c)
	if !ok {
		return
	}

	if err := dc.Diaries.Delete(c.Request.Context(), utils.GetActor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Diary deleted successfully",
	})
}

// ToggleVisibility godoc
// @Summary Flip a diary between public and private
// @Tags diaries
// @Param id path integer true "Diary ID"
// @Success 200 {object} services.DiaryView
// @Router /diaries/{id}/toggle-visibility [patch]
func (dc *DiaryController) ToggleVisibility(c *gin.Context) {
	id, ok := diaryID(c)
	if !ok {
		return
	}

	diary, err := dc.Diaries.ToggleVisibility(c.Request.Context(), utils.GetActor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}

	state := "private"
	if diary.IsPublic {
		state = "public"
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    diary,
		Message: "Diary is now " + state,
	})
}

// GetMyDiaries godoc
// @Summary List the caller's own diaries
// @Tags diaries
// @Produce json
// @Param page query integer false "Page number (default: 1)"
// @Param limit query integer false "Items per page (default: 10, max: 100)"
// @Param search query string false "Title contains"
// @Param isPublic query boolean false "Filter by visibility"
// @Success 200 {array} services.DiaryView
// @Router /diaries/my [get]
func (dc *DiaryController) GetMyDiaries(c *gin.Context) {
	var q DiaryListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		badRequest(c, err.Error())
		return
	}

	diaries, meta, err := dc.Diaries.ListOwned(c.Request.Context(), utils.GetActor(c), services.DiaryFilter{
		PageQuery: q.PageQuery,
		Search:    q.Search,
		IsPublic:  utils.OptionalBool(c, "isPublic"),
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
