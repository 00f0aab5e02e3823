package main

import (
	"context"
	"fmt"
	"time"

	"github.com/annazecevic/profile-service/config"
	"github.com/annazecevic/profile-service/handler"
	"github.com/annazecevic/profile-service/logger"
	"github.com/annazecevic/profile-service/middleware"
	"github.com/annazecevic/profile-service/repository"
	"github.com/annazecevic/profile-service/service"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func main() {

	cfg := config.LoadConfig()

	logger.Init(logger.Config{
		ServiceName: "profile-service",
		Environment: cfg.Environment,
		LogFilePath: cfg.LogFilePath,
		HMACKey:     cfg.LogHMACKey,
		MaxSizeMB:   cfg.LogMaxSizeMB,
		MaxBackups:  cfg.LogMaxBackups,
		MaxAgeDays:  cfg.LogMaxAgeDays,
	})

	logger.Info(logger.EventServiceStartup, "Profile service starting", logger.Fields(
		"port", cfg.ServerPort,
		"environment", cfg.Environment,
	))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(cfg.MongoURI)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		logger.Fatal(logger.EventDBError, "Failed to connect to MongoDB", logger.Fields("error", err.Error()))
	}

	if err := client.Ping(ctx, nil); err != nil {
		logger.Fatal(logger.EventDBError, "Failed to ping MongoDB", logger.Fields("error", err.Error()))
	}

	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			logger.Error(logger.EventDBError, "Error disconnecting from MongoDB", logger.Fields("error", err.Error()))
		}
	}()

	logger.Info(logger.EventDBConnection, "Connected to MongoDB successfully", logger.Fields(
		"database", cfg.MongoDatabase,
	))

	db := client.Database(cfg.MongoDatabase)

	reviewRepo := repository.NewReviewRepository(db)
	profileRepo := repository.NewProfileRepository(db)

	ratingService := service.NewRatingService(reviewRepo, profileRepo, cfg.CounterRetryAttempts, cfg.CounterRetryBackoff)
	profileService := service.NewProfileService(profileRepo)

	reviewHandler := handler.NewReviewHandler(ratingService)
	profileHandler := handler.NewProfileHandler(profileService, ratingService)

	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()
	router.RedirectTrailingSlash = false

	router.Use(middleware.SecurityHeaders())

	rateLimiter := middleware.NewRateLimiter(cfg.RateLimitPerSecond, cfg.RateLimitBurst)
	router.Use(rateLimiter.Middleware())

	profileHandler.RegisterRoutes(router, reviewHandler)

	addr := fmt.Sprintf(":%s", cfg.ServerPort)
	logger.Info(logger.EventServiceStartup, "Server starting", logger.Fields("address", addr))
	if err := router.Run(addr); err != nil {
		logger.Fatal(logger.EventGeneral, "Failed to start server", logger.Fields("error", err.Error()))
	}
}
