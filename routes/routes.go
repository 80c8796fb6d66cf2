package routes

import (
	"log"
	"net/http"

	"github.com/diaryhub/api-go/config"
	"github.com/diaryhub/api-go/controllers"
	"github.com/diaryhub/api-go/middleware"
	"github.com/diaryhub/api-go/services"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// Services is everything the HTTP layer is wired to.
type Services struct {
	Identity *services.IdentityService
	Diaries  *services.DiaryService
	Comments *services.CommentService
	Google   *config.GoogleConfig
}

func NewServices(db *gorm.DB, cfg *config.Config) (*Services, error) {
	profiles, err := services.NewProfileCache(cfg.ProfileCacheSize, cfg.ProfileCacheTTL)
	if err != nil {
		return nil, err
	}

	var avatars services.AvatarStore
	if cfg.R2.Enabled() {
		avatars = services.NewS3AvatarStore(config.NewR2Client(cfg.R2), cfg.R2.BucketName, cfg.R2.PublicURL)
	} else {
		log.Println("R2 storage not configured, avatar uploads disabled")
	}

	google := config.NewGoogleConfig(cfg.Google)
	if google == nil {
		log.Println("Google OAuth not configured, Google sign-in disabled")
	}

	ledger := services.NewReactionLedger(db)
	diaries := services.NewDiaryService(db, ledger)
	return &Services{
		Identity: services.NewIdentityService(
			db,
			services.NewTokenIssuer(cfg.JWTSecret, cfg.JWTExpiresIn),
			cfg.RefreshTokenTTL,
			avatars,
			profiles,
		),
		Diaries:  diaries,
		Comments: services.NewCommentService(db, diaries, ledger),
		Google:   google,
	}, nil
}

func SetupRoutes(r *gin.Engine, svc *Services) {
	// Initialize controllers
	authController := controllers.NewAuthController(svc.Identity, svc.Google)
	uploadController := controllers.NewUploadController(svc.Identity)
	userController := controllers.NewUserController(svc.Identity)
	validationController := controllers.NewValidationController(svc.Identity)
	diaryController := controllers.NewDiaryController(svc.Diaries)
	feedController := controllers.NewFeedController(svc.Diaries)
	commentController := controllers.NewCommentController(svc.Comments)
	interactionController := controllers.NewInteractionController(svc.Diaries, svc.Comments)

	requireAuth := middleware.AuthMiddleware(svc.Identity)
	optionalAuth := middleware.OptionalAuth(svc.Identity)

	api := r.Group("/api")
	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, controllers.StandardResponse{
			Success: true,
			Message: "API is running",
		})
	})

	// Auth routes
	auth := api.Group("/auth")
	{
		auth.POST("/register", authController.Register)
		auth.POST("/login", authController.Login)
		auth.POST("/refresh-token", authController.RefreshToken)
		if svc.Google != nil {
			auth.POST("/google", authController.GoogleLogin)
		}

		auth.POST("/logout", requireAuth, authController.Logout)
		auth.GET("/me", requireAuth, authController.GetProfile)
		auth.PUT("/profile", requireAuth, authController.UpdateProfile)

		SetupUploadRoutes(auth, requireAuth, uploadController)
		SetupUserRoutes(auth, userController)
		SetupValidationRoutes(auth, validationController)
	}

	diaries := api.Group("/diaries")
	SetupFeedRoutes(diaries, optionalAuth, feedController)
	SetupDiaryRoutes(diaries, requireAuth, optionalAuth, diaryController)
	SetupCommentRoutes(diaries, requireAuth, optionalAuth, commentController)
	SetupInteractionRoutes(diaries, requireAuth, interactionController)
}
