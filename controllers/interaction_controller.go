package controllers

import (
	"net/http"

	"github.com/diaryhub/api-go/services"
	"github.com/diaryhub/api-go/types"
	"github.com/diaryhub/api-go/utils"
	"github.com/gin-gonic/gin"
)

// InteractionController toggles emoji reactions on diaries and comments.
type InteractionController struct {
	Diaries  *services.DiaryService
	Comments *services.CommentService
}

func NewInteractionController(diaries *services.DiaryService, comments *services.CommentService) *InteractionController {
	return &InteractionController{Diaries: diaries, Comments: comments}
}

// ReactToDiary godoc
// @Summary Toggle a reaction on a diary
// @Description Sending the emoji you already hold removes it, any other emoji replaces it
// @Tags interactions
// @Accept json
// @Produce json
// @Param id path integer true "Diary ID"
// @Param reaction body types.ReactRequest true "Emoji"
// @Success 200 {object} services.ReactionView
// @Router /diaries/{id}/react [post]
func (ic *InteractionController) ReactToDiary(c *gin.Context) {
	id, ok := diaryID(c)
	if !ok {
		return
	}
	var req types.ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	view, err := ic.Diaries.React(c.Request.Context(), utils.GetActor(c), id, req.Emoji)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: view})
}

// ReactToComment godoc
// @Summary Toggle a reaction on a comment
// @Tags interactions
// @Accept json
// @Produce json
// @Param id path integer true "Diary ID"
// @Param commentId path integer true "Comment ID"
// @Param reaction body types.ReactRequest true "Emoji"
// @Success 200 {object} services.ReactionView
// @Router /diaries/{id}/comments/{commentId}/react [post]
func (ic *InteractionController) ReactToComment(c *gin.Context) {
	id, ok := diaryID(c)
	if !ok {
		return
	}
	cid, ok := commentID(c)
	if !ok {
		return
	}
	var req types.ReactRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	view, err := ic.Comments.React(c.Request.Context(), utils.GetActor(c), id, cid, req.Emoji)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: view})
}
