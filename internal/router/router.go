package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/iheartbourbon/bourbon/internal/handlers"
	"github.com/iheartbourbon/bourbon/internal/middleware"
	"github.com/iheartbourbon/bourbon/internal/types"
	"go.uber.org/zap"
)

func NewRouter(logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(logger))

	r.Use(cors.New(cors.Config{
		AllowOrigins:     types.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Browser redirects for provider logins live outside /api.
	oauth := r.Group("/auth")
	{
		oauth.GET("/:provider", handlers.OAuthLogin)
		oauth.GET("/:provider/callback", handlers.OAuthCallback)
		oauth.POST("/:provider/callback", handlers.OAuthCallback)
	}

	api := r.Group("/api")
	{
		api.GET("/health", handlers.HealthCheck)
		api.GET("/ws/feed", middleware.AuthMiddleware(), handlers.FeedSocket)

		auth := api.Group("/auth")
		{
			auth.POST("/register", handlers.CreateUser)
			auth.POST("/login", handlers.LoginUser)
			auth.POST("/logout", handlers.LogoutUser)
			auth.GET("/me", middleware.AuthMiddleware(), handlers.Me)
		}

		users := api.Group("/users/me", middleware.AuthMiddleware())
		{
			users.PUT("/profile", handlers.UpdateProfile)
			users.PUT("/password", handlers.ChangePassword)
			users.GET("/entries", handlers.MyEntries)
		}

		bourbons := api.Group("/bourbons", middleware.AuthMiddleware())
		{
			bourbons.GET("", handlers.ListBourbons)
			bourbons.POST("", handlers.CreateBourbon)
			bourbons.GET("/:id", handlers.GetBourbon)
			bourbons.PUT("/:id", handlers.UpdateBourbon)
			bourbons.DELETE("/:id", handlers.DeleteBourbon)
			bourbons.GET("/:id/entries", handlers.GetBourbonEntries)
			bourbons.POST("/:id/image", handlers.UploadBourbonImage)
		}

		entries := api.Group("/entries", middleware.AuthMiddleware())
		{
			entries.POST("", handlers.CreateEntry)
			entries.PUT("/:id", handlers.UpdateEntry)
			entries.DELETE("/:id", handlers.DeleteEntry)
		}

		api.GET("/feed", middleware.AuthMiddleware(), handlers.GetFeed)

		groups := api.Group("/groups", middleware.AuthMiddleware())
		{
			groups.GET("", handlers.ListGroups)
			groups.POST("", handlers.CreateGroup)
			groups.POST("/join", handlers.JoinGroup)
			groups.GET("/slug/:slug", handlers.GetGroupBySlug)
			groups.GET("/:id", handlers.GetGroup)
		}
	}

	return r
}
