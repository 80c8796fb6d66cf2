package controllers

import (
	"net/http"

	"github.com/diaryhub/api-go/services"
	"github.com/diaryhub/api-go/utils"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	Identity *services.IdentityService
}

func NewUserController(identity *services.IdentityService) *UserController {
	return &UserController{Identity: identity}
}

// GetUserProfile godoc
// @Summary Get a user's public profile
// @Tags users
// @Produce json
// @Param userId path integer true "User ID"
// @Success 200 {object} services.PublicProfile
// @Router /auth/users/{userId} [get]
func (uc *UserController) GetUserProfile(c *gin.Context) {
	userID, ok := utils.ParseIDParam(c, "userId")
	if !ok {
		badRequest(c, "Invalid user ID")
		return
	}

	profile, err := uc.Identity.PublicProfile(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: profile})
}
