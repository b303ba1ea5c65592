package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"hyderabadinfra/server/config"
	"hyderabadinfra/server/internal/api"
	"hyderabadinfra/server/internal/cache"
	"hyderabadinfra/server/internal/database"
	"hyderabadinfra/server/internal/eventbus"
	"hyderabadinfra/server/internal/history"
	"hyderabadinfra/server/internal/notify"
	"hyderabadinfra/server/internal/projector"
	"hyderabadinfra/server/internal/property"
	"hyderabadinfra/server/internal/search"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0755); err != nil {
		logger.WithError(err).Fatal("Failed to create database directory")
	}
	logger.Infof("Using database at: %s", cfg.DatabasePath)

	// Read-model store (raw SQL side)
	db, err := database.NewDatabase(cfg.DatabasePath)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Authoritative property store (gorm side, same database file)
	gormDB, err := gorm.Open(sqlite.Open(cfg.DatabasePath), &gorm.Config{})
	if err != nil {
		logger.WithError(err).Fatal("Failed to open property database")
	}
	propertyStore := property.NewStore(gormDB)
	if err := propertyStore.Migrate(); err != nil {
		logger.WithError(err).Fatal("Failed to migrate property table")
	}

	// Event channel and the projection builder feeding the read model
	bus := eventbus.NewBus(cfg.Bus.BufferSize, logger)
	defer bus.Close()
	projector.New(db, logger).Attach(bus)

	// Command side
	notifier := notify.NewClient(cfg.UserService.BaseURL,
		time.Duration(cfg.UserService.TimeoutSeconds)*time.Second, logger)
	commands := property.NewCommandHandler(propertyStore, bus, notifier, logger)

	// Query side
	responseCache := cache.New(time.Duration(cfg.Cache.TTLMinutes) * time.Minute)
	defer responseCache.Close()
	queries := history.NewQueryHandler(db, responseCache, logger)

	// Search side
	listings := search.NewClient(cfg.Listings.BaseURL,
		time.Duration(cfg.Listings.TimeoutSeconds)*time.Second, logger)
	engine := search.NewEngine(listings, db, bus, logger)

	handler := api.NewHandler(commands, queries, engine, logger)

	router := gin.New()
	router.Use(gin.Recovery())
	api.SetupRoutes(router, handler)

	logger.Infof("Starting server on port %s", cfg.ServerPort)
	if err := router.Run(":" + cfg.ServerPort); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
