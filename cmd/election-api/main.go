package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/meremyd/campus-election-api/api/swagger"
	"github.com/meremyd/campus-election-api/internal/handler"
	"github.com/meremyd/campus-election-api/internal/middleware"
	"github.com/meremyd/campus-election-api/internal/models"
	"github.com/meremyd/campus-election-api/internal/repository"
	"github.com/meremyd/campus-election-api/internal/service"
	"github.com/meremyd/campus-election-api/pkg/cache"
	"github.com/meremyd/campus-election-api/pkg/config"
	"github.com/meremyd/campus-election-api/pkg/database"
	"github.com/meremyd/campus-election-api/pkg/logger"
	corsmiddleware "github.com/meremyd/campus-election-api/pkg/middleware/cors"
	reqidmiddleware "github.com/meremyd/campus-election-api/pkg/middleware/requestid"
)

// @title Campus Election API
// @version 1.0.0
// @description Ballot casting and results tallying engine
// @BasePath /
// @schemes http

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	metricsSvc := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if cfg.Results.CacheEnabled {
		redisClient, err := cache.NewRedis(cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, results cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			cacheRepo = repository.NewCacheRepository(redisClient, logr)
		}
	}
	cacheSvc := service.NewCacheService(cacheRepo, metricsSvc, cfg.Results.CacheTTL, logr, cfg.Results.CacheEnabled && cacheRepo != nil)

	electionRepo := repository.NewElectionRepository(db)
	ballotRepo := repository.NewBallotRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	directoryRepo := repository.NewDirectoryRepository(db)

	electionSvc := service.NewElectionService(electionRepo, cacheSvc, nil, logr)
	participationSvc := service.NewParticipationService(participationRepo, electionRepo, directoryRepo, logr)
	ballotSvc := service.NewBallotService(ballotRepo, electionRepo, directoryRepo, nil, metricsSvc, logr)
	resultsSvc := service.NewResultsService(ballotRepo, electionRepo, cacheSvc, metricsSvc, logr)
	turnoutSvc := service.NewTurnoutService(participationRepo, ballotRepo, directoryRepo, electionRepo, logr)
	exportSvc := service.NewExportService(resultsSvc, turnoutSvc, logr)

	electionHandler := handler.NewElectionHandler(electionSvc)
	ballotHandler := handler.NewBallotHandler(ballotSvc, participationSvc, electionSvc)
	resultsHandler := handler.NewResultsHandler(resultsSvc, turnoutSvc)
	exportHandler := handler.NewExportHandler(exportSvc)
	metricsHandler := handler.NewMetricsHandler(metricsSvc)

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metricsSvc))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if err := db.Ping(); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})

	r.GET("/metrics", metricsHandler.Scrape)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	api := r.Group(cfg.APIPrefix)
	api.Use(middleware.JWT(cfg.Auth.TokenSecret))
	{
		admin := middleware.RequireRoles(models.RoleAdmin)
		voter := middleware.RequireRoles(models.RoleAdmin, models.RoleVoter)

		api.POST("/elections", admin, electionHandler.Create)
		api.GET("/elections", voter, electionHandler.List)
		api.GET("/elections/:id", voter, electionHandler.Get)
		api.POST("/elections/:id/transition", admin, electionHandler.Transition)
		api.POST("/elections/:id/release", admin, electionHandler.Release)

		api.POST("/elections/:id/participation", voter, ballotHandler.Confirm)
		api.POST("/elections/:id/ballots", voter, ballotHandler.Cast)
		api.GET("/elections/:id/ballot-status", voter, ballotHandler.Status)

		api.GET("/elections/:id/results", voter, resultsHandler.Election)
		api.GET("/elections/:id/positions/:positionId/results", voter, resultsHandler.Position)
		api.GET("/elections/:id/turnout", voter, resultsHandler.Turnout)

		if cfg.Exports.Enabled {
			api.GET("/elections/:id/results/export", admin, exportHandler.Results)
			api.GET("/elections/:id/turnout/export", admin, exportHandler.Turnout)
		}
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
