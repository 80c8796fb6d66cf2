package controllers

import (
	"net/http"

	"github.com/diaryhub/api-go/services"
	"github.com/diaryhub/api-go/types"
	"github.com/diaryhub/api-go/utils"
	"github.com/gin-gonic/gin"
)

type CommentController struct {
	Comments *services.CommentService
}

type AddCommentRequest struct {
	Content       string `json:"content"`
	ParentComment *uint  `json:"parentComment"`
}

type UpdateCommentRequest struct {
	Content string `json:"content"`
}

func NewCommentController(comments *services.CommentService) *CommentController {
	return &CommentController{Comments: comments}
}

func commentID(c *gin.Context) (uint, bool) {
	id, ok := utils.ParseIDParam(c, "commentId")
	if !ok {
		badRequest(c, "Invalid comment ID")
	}
	return id, ok
}

// GetComments godoc
// @Summary List comments on a diary
// @Description Top-level comments newest first, each with all of its replies oldest first
// @Tags comments
// @Produce json
// @Param id path integer true "Diary ID"
// @Param page query integer false "Page number (default: 1)"
// @Param limit query integer false "Items per page (default: 20, max: 100)"
// @Success 200 {array} services.ThreadView
// @Router /diaries/{id}/comments [get]
func (cc *CommentController) GetComments(c *gin.Context) {
	id, ok := diaryID(c)
	if !ok {
		return
	}
	var page types.PageQuery
	if err := c.ShouldBindQuery(&page); err != nil {
		badRequest(c, err.Error())
		return
	}

	threads, meta, err := cc.Comments.List(c.Request.Context(), utils.GetActor(c), id, page)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success:    true,
		Data:       threads,
		Pagination: &meta,
	})
}

// AddComment godoc
// @Summary Comment on a public diary, or reply to a top-level comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path integer true "Diary ID"
// @Param comment body AddCommentRequest true "Comment"
// @Success 201 {object} services.CommentView
// @Router /diaries/{id}/comments [post]
func (cc *CommentController) AddComment(c *gin.Context) {
	id, ok := diaryID(c)
	if !ok {
		return
	}
	var req AddCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	comment, err := cc.Comments.Add(c.Request.Context(), utils.GetActor(c), id, req.Content, req.ParentComment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    comment,
		Message: "Comment added successfully",
	})
}

// UpdateComment godoc
// @Summary Edit your own comment
// @Tags comments
// @Accept json
// @Produce json
// @Param id path integer true "Diary ID"
// @Param commentId path integer true "Comment ID"
// @Param comment body UpdateCommentRequest true "New content"
// @Success 200 {object} services.CommentView
// @Router /diaries/{id}/comments/{commentId} [put]
func (cc *CommentController) UpdateComment(c *gin.Context) {
	id, ok := diaryID(c)
	if !ok {
		return
	}
	cid, ok := commentID(c)
	if !ok {
		return
	}
	var req UpdateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	comment, err := cc.Comments.Update(c.Request.Context(), utils.GetActor(c), id, cid, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    comment,
		Message: "Comment updated successfully",
	})
}

// DeleteComment godoc
// @Summary Delete a comment
// @Description Allowed for the comment author and the diary owner. Replies go with their top-level comment.
// @Tags comments
// @Param id path integer true "Diary ID"
// @Param commentId path integer true "Comment ID"
// @Success 200 {object} StandardResponse
// @Router /diaries/{id}/comments/{commentId} [delete]
func (cc *CommentController) DeleteComment(c *gin.Context) {
	id, ok := diaryID(c)
	if !ok {
		return
	}
	cid, ok := commentID(c)
	if !ok {
		return
	}

	if err := cc.Comments.Delete(c.Request.Context(), utils.GetActor(c), id, cid); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Comment deleted successfully",
	})
}
