package controllers

import (
	"net/http"

	"github.com/diaryhub/api-go/services"
	"github.com/diaryhub/api-go/utils"
	"github.com/gin-gonic/gin"
)

// UploadController hands out direct-to-bucket avatar uploads.
type UploadController struct {
	Identity *services.IdentityService
}

func NewUploadController(identity *services.IdentityService) *UploadController {
	return &UploadController{Identity: identity}
}

// GetAvatarUploadURL godoc
// @Summary Get a presigned URL for uploading an avatar
// @Description Upload the file with PUT, then send the returned tempKey to PUT /auth/profile
// @Tags upload
// @Accept json
// @Produce json
// @Param file body services.AvatarUploadRequest true "File description"
// @Success 200 {object} services.AvatarUploadTicket
// @Router /auth/avatar/upload-url [post]
func (uc *UploadController) GetAvatarUploadURL(c *gin.Context) {
	var req services.AvatarUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	ticket, err := uc.Identity.RequestAvatarUpload(c.Request.Context(), utils.GetActor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    ticket,
		Message: "Temporary avatar upload URL generated successfully",
	})
}

func (uc *UploadController) CleanupTempAvatar(c *gin.Context) {
	tempKey := c.Query("key")
	if tempKey == "" {
		badRequest(c, "Temp key is required")
		return
	}

	if err := uc.Identity.DiscardAvatarUpload(c.Request.Context(), utils.GetActor(c), tempKey); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Temporary avatar cleaned up successfully",
	})
}
