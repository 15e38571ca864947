package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/GabKongroo/NothingSpecial/internal/handlers"
	"github.com/GabKongroo/NothingSpecial/internal/logger"
	"github.com/GabKongroo/NothingSpecial/internal/middleware"
	"github.com/GabKongroo/NothingSpecial/internal/models"
	"github.com/GabKongroo/NothingSpecial/internal/repository"
	"github.com/GabKongroo/NothingSpecial/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the admin HTTP API",
	Run: func(cmd *cobra.Command, args []string) {
		runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() {
	db, err := models.InitDB(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", logger.ErrorField(err))
	}
	if err := models.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", logger.ErrorField(err))
	}

	redisClient := models.InitRedis(cfg)
	defer redisClient.Close()

	publisher := newEventPublisher(cfg)
	defer publisher.Close()

	r2Service, err := services.NewR2Service(cfg)
	if err != nil {
		logger.Fatal("failed to init R2 service", logger.ErrorField(err))
	}

	beatRepo := repository.NewGormBeatRepository(db)
	bundleRepo := repository.NewGormBundleRepository(db)

	auditService := services.NewAuditService(db)
	authService, err := services.NewAuthService(redisClient, cfg)
	if err != nil {
		logger.Fatal("failed to init auth service", logger.ErrorField(err))
	}
	catalogService := services.NewCatalogService(beatRepo, publisher, auditService, cfg.R2PublicURL)
	bundleService := services.NewBundleService(bundleRepo, beatRepo, r2Service, r2Service.PublicBucket(), auditService)
	statsService := services.NewStatsService(repository.NewGormStatsRepository(db))

	var migrationHandler *handlers.MigrationHandler
	if source, rootID, err := newDriveSource(context.Background(), cfg); err != nil {
		logger.Warn("drive source unavailable, migrations disabled", logger.ErrorField(err))
	} else {
		progressStore := services.NewProgressStore(redisClient, cfg.MigrationProgressTTL)
		migrationService := services.NewMigrationService(migrationDeps(cfg, source, rootID, r2Service, beatRepo), progressStore, publisher, auditService)
		migrationHandler = handlers.NewMigrationHandler(migrationService)
	}

	// Release expired exclusive holds
	go func() {
		for {
			released, err := catalogService.ReleaseExpiredReservations(context.Background())
			if err != nil {
				logger.Error("reservation sweep failed", logger.ErrorField(err))
			} else if released > 0 {
				logger.Info("reservation sweep released beats", logger.Int64("released", released))
			}
			time.Sleep(cfg.ReservationSweepInterval)
		}
	}()

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(middleware.RequestLogger())
	router.Use(gin.Recovery())
	router.Use(middleware.CORS(cfg))
	router.Use(middleware.RateLimiter(redisClient, cfg))

	authHandler := handlers.NewAuthHandler(authService, auditService)
	catalogHandler := handlers.NewCatalogHandler(catalogService, statsService)
	bundleHandler := handlers.NewBundleHandler(bundleService, cfg.R2PublicURL)
	auditHandler := handlers.NewAuditHandler(auditService)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	api := router.Group("/api/v1")
	{
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "healthy"})
		})

		api.OPTIONS("/*path", func(c *gin.Context) {
			c.Status(http.StatusNoContent)
		})

		auth := api.Group("/auth")
		{
			auth.POST("/login", middleware.LoginRateLimit(cfg.LoginAttemptsPerMin), authHandler.Login)
			auth.POST("/logout", middleware.Auth(authService), authHandler.Logout)
		}

		admin := api.Group("/admin")
		admin.Use(middleware.Auth(authService))
		{
			admin.GET("/stats", catalogHandler.GetStats)
			admin.GET("/beats", catalogHandler.ListBeats)
			admin.PUT("/beats", catalogHandler.UpdateBeats)

			admin.GET("/bundles", bundleHandler.ListBundles)
			admin.POST("/bundles", bundleHandler.CreateBundle)
			admin.GET("/bundles/:id", bundleHandler.GetBundle)
			admin.PUT("/bundles/:id", bundleHandler.UpdateBundle)
			admin.DELETE("/bundles/:id", bundleHandler.DeleteBundle)
			admin.POST("/bundles/:id/image", middleware.UploadRateLimit(redisClient, cfg), bundleHandler.UploadImage)

			admin.GET("/audit/logs", auditHandler.GetAuditLogs)

			if migrationHandler != nil {
				admin.POST("/migrations", migrationHandler.RunMigration)
				admin.GET("/migrations/:run_id", migrationHandler.GetProgress)
			}
		}
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  2 * time.Minute,
		WriteTimeout: cfg.ServerTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("starting server", logger.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", logger.ErrorField(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", logger.ErrorField(err))
	}

	logger.Info("server exited")
}
