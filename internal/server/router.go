package server

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/aoinlabs/reels-backend/internal/handlers"
	"github.com/aoinlabs/reels-backend/internal/middleware"
)

type RouterConfig struct {
	AuthMiddleware     *middleware.AuthMiddleware
	FeedHandler        *handlers.FeedHandler
	ReelHandler        *handlers.ReelHandler
	InteractionHandler *handlers.InteractionHandler
	AllowedOrigins     []string
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.Default()

	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "PATCH", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type", "X-Requested-With"},
		AllowCredentials: true,
	}))

	router.GET("/healthcheck", handlers.HealthCheck)

	api := router.Group("/api")

	// Public, with optional auth for per-user flags.
	public := api.Group("/")
	public.Use(cfg.AuthMiddleware.OptionalAuth())
	{
		public.GET("/feed/trending", cfg.FeedHandler.GetTrending)
		public.GET("/reels", cfg.ReelHandler.List)
		public.GET("/reels/:id", cfg.ReelHandler.Get)
	}

	protected := api.Group("/")
	protected.Use(cfg.AuthMiddleware.RequireAuth())
	{
		// Feeds
		protected.GET("/feed", cfg.FeedHandler.GetRecommended)
		protected.GET("/feed/following", cfg.FeedHandler.GetFollowing)
		// Reel lifecycle
		protected.POST("/reels", cfg.ReelHandler.Create)
		protected.PATCH("/reels/:id", cfg.ReelHandler.Update)
		protected.DELETE("/reels/:id", cfg.ReelHandler.Delete)
		protected.GET("/merchants/me/reels", cfg.ReelHandler.ListMine)
		// Engagement
		protected.POST("/reels/:id/like", cfg.InteractionHandler.Like)
		protected.DELETE("/reels/:id/like", cfg.InteractionHandler.Unlike)
		protected.POST("/reels/:id/view", cfg.InteractionHandler.View)
		protected.POST("/reels/:id/share", cfg.InteractionHandler.Share)
		protected.POST("/merchants/:id/follow", cfg.InteractionHandler.Follow)
		protected.DELETE("/merchants/:id/follow", cfg.InteractionHandler.Unfollow)
		// Commerce signal
		protected.POST("/signals/order", cfg.InteractionHandler.OrderSignal)
	}

	return router
}
