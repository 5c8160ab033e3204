package routes

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/hvostov/inkline/config"
	"github.com/hvostov/inkline/controllers"
	"github.com/hvostov/inkline/middleware"
	"github.com/hvostov/inkline/utils"
)

// SetupRouter wires middleware and the API routes.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()

	gin.SetMode(cfg.GinMode)
	r := gin.New()

	accessLogger, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel,
		cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(accessLogger, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(accessLogger, true))
	} else {
		r.Use(gin.Logger(), gin.Recovery())
	}

	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "Authorization")
	r.Use(cors.New(corsConfig))

	r.Use(middleware.PageViewRecorder(db))

	r.Static("/media", cfg.MediaRoot)

	r.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	feedCtrl := controllers.NewFeedController(db)
	postCtrl := controllers.NewPostController(db)
	followCtrl := controllers.NewFollowController(db)
	groupCtrl := controllers.NewGroupController(db)
	authCtrl := controllers.NewAuthController(db)
	statsCtrl := controllers.NewStatsController(db)

	api := r.Group("/api/v1")
	{
		// Public reads. OptionalAuth lets profiles report the follow flag for
		// logged-in viewers.
		api.GET("/posts", feedCtrl.ListGlobal)
		api.GET("/posts/:id", feedCtrl.PostDetail)
		api.GET("/posts/:id/stats", statsCtrl.GetPostStats)
		api.GET("/groups", feedCtrl.ListGroups)
		api.GET("/groups/:slug", feedCtrl.GroupFeed)
		api.GET("/users/:username", middleware.OptionalAuth(), feedCtrl.Profile)
		api.GET("/stats", statsCtrl.GetStats)

		auth := api.Group("/auth")
		auth.Use(middleware.RateLimitMiddleware())
		{
			auth.POST("/register", authCtrl.Register)
			auth.POST("/login", authCtrl.Login)
			auth.GET("/oauth/github", authCtrl.OAuthRedirect)
			auth.GET("/oauth/github/callback", authCtrl.OAuthCallback)
		}

		protected := api.Group("")
		protected.Use(middleware.AuthRequired(), middleware.RateLimitMiddleware())
		{
			protected.GET("/feed", feedCtrl.FollowFeed)
			protected.POST("/posts", postCtrl.CreatePost)
			protected.PUT("/posts/:id", postCtrl.UpdatePost)
			protected.POST("/posts/:id/comments", postCtrl.CreateComment)
			protected.POST("/users/:username/follow", followCtrl.Follow)
			protected.DELETE("/users/:username/follow", followCtrl.Unfollow)
			protected.POST("/upload", postCtrl.UploadImage)
			protected.POST("/groups", groupCtrl.CreateGroup)
			protected.POST("/auth/logout", authCtrl.Logout)
			protected.GET("/auth/me", authCtrl.Me)
			protected.PUT("/auth/me", authCtrl.UpdateProfile)
		}
	}

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
