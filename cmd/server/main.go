package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/aoinlabs/reels-backend/internal/clients/redis"
	"github.com/aoinlabs/reels-backend/internal/data/db"
	"github.com/aoinlabs/reels-backend/internal/data/repos/catalog"
	"github.com/aoinlabs/reels-backend/internal/data/repos/interactions"
	"github.com/aoinlabs/reels-backend/internal/data/repos/reels"
	"github.com/aoinlabs/reels-backend/internal/data/repos/users"
	"github.com/aoinlabs/reels-backend/internal/handlers"
	"github.com/aoinlabs/reels-backend/internal/middleware"
	"github.com/aoinlabs/reels-backend/internal/platform/envutil"
	"github.com/aoinlabs/reels-backend/internal/platform/logger"
	"github.com/aoinlabs/reels-backend/internal/server"
	"github.com/aoinlabs/reels-backend/internal/services"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := envutil.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	allowedOrigins := strings.Split(envutil.GetEnv("CORS_ALLOWED_ORIGINS", "http://localhost:3000", log), ",")

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Warn("Postgres auto migration failed", "error", err)
	}
	thePG := postgresService.DB()

	// Feed cache; a missing REDIS_ADDR degrades to recompute-on-every-read.
	var feedCache redis.FeedCache
	feedCache, err = redis.NewFeedCache(log)
	if err != nil {
		log.Warn("Redis init failed, running without feed cache", "error", err)
		feedCache = redis.NoopFeedCache{}
	}
	defer feedCache.Close()

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := users.NewUserRepo(thePG, log)
	reelRepo := reels.NewReelRepo(thePG, log)
	likeRepo := interactions.NewLikeRepo(thePG, log)
	viewRepo := interactions.NewViewRepo(thePG, log)
	shareRepo := interactions.NewShareRepo(thePG, log)
	followRepo := interactions.NewFollowRepo(thePG, log)
	prefRepo := interactions.NewPreferenceRepo(thePG, log)
	productCatalog := catalog.NewProductFactsRepo(thePG, log)

	// Services
	log.Info("Setting up services from main...")
	prefTracker := services.NewPreferenceTracker(log, prefRepo)
	retriever := services.NewCandidateRetriever(log, reelRepo, likeRepo, followRepo, prefTracker, productCatalog)
	recomputer := services.NewPreferenceRecomputer(log, reelRepo, likeRepo, viewRepo, prefRepo, productCatalog)
	go recomputer.Run(context.Background())

	feedService := services.NewFeedService(log, retriever, userRepo, reelRepo, likeRepo, viewRepo, followRepo, prefTracker, feedCache)
	reelService := services.NewReelService(log, reelRepo, likeRepo, productCatalog, feedCache)
	interactionService := services.NewInteractionService(
		log,
		postgresService,
		reelRepo,
		likeRepo,
		viewRepo,
		shareRepo,
		followRepo,
		prefTracker,
		productCatalog,
		feedCache,
		recomputer,
	)

	// Handlers
	log.Info("Setting up handlers from main...")
	feedHandler := handlers.NewFeedHandler(log, feedService)
	reelHandler := handlers.NewReelHandler(log, reelService)
	interactionHandler := handlers.NewInteractionHandler(log, interactionService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, jwtSecretKey)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		AuthMiddleware:     authMiddleware,
		FeedHandler:        feedHandler,
		ReelHandler:        reelHandler,
		InteractionHandler: interactionHandler,
		AllowedOrigins:     allowedOrigins,
	})

	port := envutil.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
	}
}
