package controllers

import (
	"errors"
	"log"
	"net/http"

	"github.com/diaryhub/api-go/config"
	"github.com/diaryhub/api-go/services"
	"github.com/diaryhub/api-go/utils"
	"github.com/gin-gonic/gin"
)

type AuthController struct {
	Identity     *services.IdentityService
	GoogleConfig *config.GoogleConfig
}

type RegisterRequest struct {
	Username      string `json:"username" binding:"required"`
	Email         string `json:"email" binding:"required,email"`
	Password      string `json:"password" binding:"required,min=6"`
	DisplayName   string `json:"displayName"`
	AvatarTempKey string `json:"avatarTempKey"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type UpdateProfileRequest struct {
	DisplayName   *string `json:"displayName"`
	AvatarTempKey *string `json:"avatarTempKey"`
}

func NewAuthController(identity *services.IdentityService, google *config.GoogleConfig) *AuthController {
	return &AuthController{
		Identity:     identity,
		GoogleConfig: google,
	}
}

// Register godoc
// @Summary Create an account
// @Tags auth
// @Accept json
// @Produce json
// @Param user body RegisterRequest true "Account"
// @Success 201 {object} services.AuthResult
// @Router /auth/register [post]
func (ac *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := ac.Identity.Register(c.Request.Context(), services.RegisterInput{
		Username:      req.Username,
		Email:         req.Email,
		Password:      req.Password,
		DisplayName:   req.DisplayName,
		AvatarTempKey: req.AvatarTempKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, StandardResponse{
		Success: true,
		Data:    result,
		Message: "User registered successfully",
	})
}

// Login godoc
// @Summary Sign in with email and password
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body LoginRequest true "Credentials"
// @Success 200 {object} services.AuthResult
// @Router /auth/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := ac.Identity.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: result})
}

// GoogleLogin godoc
// @Summary Sign in with Google
// @Description Accepts an authorization code, an ID token or an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body config.GoogleLoginRequest true "Google credential"
// @Success 200 {object} services.AuthResult
// @Router /auth/google [post]
func (ac *AuthController) GoogleLogin(c *gin.Context) {
	var req config.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	info, err := ac.GoogleConfig.Identify(c.Request.Context(), req)
	if err != nil {
		if !errors.Is(err, config.ErrInvalidGoogleToken) {
			log.Printf("Google sign-in: %v", err)
		}
		c.JSON(http.StatusUnauthorized, StandardResponse{
			Success: false,
			Message: "Google authentication failed",
		})
		return
	}

	result, err := ac.Identity.LoginWithGoogle(c.Request.Context(), services.GoogleAccount{
		Subject: info.Subject(),
		Email:   info.Email,
		Name:    info.Name,
		Picture: info.Picture,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: result})
}

// RefreshToken godoc
// @Summary Exchange a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param token body RefreshTokenRequest true "Refresh token"
// @Success 200 {object} services.AuthResult
// @Router /auth/refresh-token [post]
func (ac *AuthController) RefreshToken(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	result, err := ac.Identity.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: result})
}

func (ac *AuthController) Logout(c *gin.Context) {
	var req RefreshTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	if err := ac.Identity.Logout(c.Request.Context(), utils.GetActor(c), req.RefreshToken); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Message: "Successfully logged out",
	})
}

func (ac *AuthController) GetProfile(c *gin.Context) {
	user, err := ac.Identity.Me(utils.GetActor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{Success: true, Data: user})
}

// UpdateProfile godoc
// @Summary Update display name or avatar
// @Description avatarTempKey is the key returned by the avatar upload URL endpoint
// @Tags auth
// @Accept json
// @Produce json
// @Param profile body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} models.User
// @Router /auth/profile [put]
func (ac *AuthController) UpdateProfile(c *gin.Context) {
	var req UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	user, err := ac.Identity.UpdateProfile(c.Request.Context(), utils.GetActor(c), services.UpdateProfileInput{
		DisplayName:   req.DisplayName,
		AvatarTempKey: req.AvatarTempKey,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, StandardResponse{
		Success: true,
		Data:    user,
		Message: "Profile updated successfully",
	})
}
