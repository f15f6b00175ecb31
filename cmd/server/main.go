package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sellaro/sellaro-backend/config"
	"github.com/sellaro/sellaro-backend/internal/app/controller"
	"github.com/sellaro/sellaro-backend/internal/app/repository"
	"github.com/sellaro/sellaro-backend/internal/app/service"
	"github.com/sellaro/sellaro-backend/internal/db"
	"github.com/sellaro/sellaro-backend/internal/docstore"
	"github.com/sellaro/sellaro-backend/internal/middleware"
	"github.com/sellaro/sellaro-backend/internal/router"
	"github.com/sellaro/sellaro-backend/internal/scheduler"
	"github.com/sellaro/sellaro-backend/internal/session"
	"github.com/sellaro/sellaro-backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	logFormat := "json"
	if cfg.Server.Environment == "development" {
		logFormat = "console"
	}
	logger.Initialize(logger.Config{
		Level:       "debug",
		Format:      logFormat,
		EnableColor: cfg.Server.Environment == "development",
	})

	logger.Info("Starting sellaro backend", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
	})

	gin.SetMode(cfg.Server.GinMode)

	if err := db.Initialize(&cfg.Database); err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	if err := docstore.Init(&cfg.Mongo); err != nil {
		logger.Fatal("Failed to initialize document store", err)
	}
	defer docstore.Close()

	store, err := session.NewRedisStore(&cfg.Redis, cfg.Session.TTL)
	if err != nil {
		logger.Fatal("Failed to initialize session store", err)
	}
	defer store.Close()

	database := db.GetDB()

	// Repositories
	userRepo := repository.NewUserRepository(database)
	roleRepo := repository.NewRoleRepository(database)
	customerRepo := repository.NewCustomerRepository(database)
	cartRepo := repository.NewCartRepository(database)

	// Services
	authService := service.NewAuthService(userRepo, customerRepo, &cfg.Session)
	profileService := service.NewProfileService(userRepo, roleRepo)
	cartService := service.NewCartService(cartRepo, cfg.Scheduler.CartTTL)

	// Controllers
	ctrls := router.Controllers{
		Session:     controller.NewSessionController(authService, store),
		Profile:     controller.NewProfileController(userRepo, profileService, authService, store),
		Address:     controller.NewAddressController(database, customerRepo),
		Role:        controller.NewRoleController(database),
		BankAccount: controller.NewBankAccountController(database),
		Customer:    controller.NewCustomerController(database, customerRepo, store),
		Catalog:     controller.NewCatalogController(docstore.Collection("catalog")),
	}

	sessionMiddleware := middleware.NewSessionMiddleware(store, userRepo, cfg.Session.CookieName, cfg.Session.TTL)
	r := router.Setup(sessionMiddleware, ctrls)

	cartScheduler := scheduler.NewCartExpiryScheduler(cartService, cfg.Scheduler.CartExpirySpec)
	if err := cartScheduler.Start(); err != nil {
		logger.Fatal("Failed to start scheduler", err)
	}
	defer cartScheduler.Stop()

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		logger.Info("HTTP server listening", map[string]interface{}{
			"addr": srv.Addr,
		})
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server failed", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server", nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("Forced shutdown", err)
	}

	logger.Info("Server stopped", nil)
}
