package controllers

import (
	"net/http"

	"github.com/diaryhub/api-go/services"
	"github.com/gin-gonic/gin"
)

type ValidationController struct {
	Identity *services.IdentityService
}

func NewValidationController(identity *services.IdentityService) *ValidationController {
	return &ValidationController{Identity: identity}
}

func (vc *ValidationController) ValidateUsername(c *gin.Context) {
	available, err := vc.Identity.UsernameAvailable(c.Request.Context(), c.Param("username"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "exists": !available, "available": available})
}

func (vc *ValidationController) ValidateEmail(c *gin.Context) {
	available, err := vc.Identity.EmailAvailable(c.Request.Context(), c.Param("email"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "exists": !available, "available": available})
}
