package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sylmap/internal/config"
	cronrunner "sylmap/internal/cron"
	"sylmap/internal/db"
	"sylmap/internal/forum"
	"sylmap/internal/geocode"
	"sylmap/internal/handler"
	"sylmap/internal/logger"
	"sylmap/internal/mapdata"
	gormrepository "sylmap/internal/repository/gorm"
	"sylmap/internal/service"
)

func main() {
	cfgPath := os.Getenv("SYLMAP_CONFIG")
	if cfgPath == "" {
		cfgPath = "config/config.yaml"
	}

	envOnly := false
	if envOnlyRaw := os.Getenv("SYLMAP_ENV_ONLY"); envOnlyRaw != "" {
		envOnly = strings.EqualFold(envOnlyRaw, "true") || envOnlyRaw == "1"
	}

	cfg, err := config.Load(cfgPath, envOnly)
	if err != nil {
		panic(err)
	}

	logger, err := logger.New(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	dbConn, err := db.Open(cfg.DB)
	if err != nil {
		logger.Fatal("db open failed", zap.Error(err))
	}
	defer db.Close(dbConn)

	if err := db.SetTimezone(dbConn, cfg.DB.Timezone); err != nil {
		logger.Warn("failed to set timezone", zap.Error(err))
	}
	if err := db.AutoMigrate(dbConn); err != nil {
		logger.Fatal("auto-migrate failed", zap.Error(err))
	}

	store := gormrepository.New(dbConn.Gorm)
	forumSvc := forum.NewGormService(dbConn.Gorm)

	markerSvc := &service.MarkerService{Repo: store, Logger: logger, Cfg: cfg.Map}
	threadSvc := &service.ThreadSyncService{Repo: store, Forum: forumSvc, Logger: logger, Cfg: cfg.Threads}
	suggestionSvc := &service.SuggestionService{
		Repo:    store,
		Threads: threadSvc,
		Logger:  logger,
	}
	importer := &mapdata.Importer{Repo: store, Logger: logger}
	geocoder := geocode.NewClient(cfg.Geocode)

	if strings.EqualFold(cfg.App.Env, "dev") {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(corsMiddleware())
	engine.Use(handler.Identity())

	healthHandler := &handler.HealthHandler{DB: dbConn.Gorm}
	healthHandler.Register(engine)
	markerHandler := &handler.MarkerHandler{Markers: markerSvc, Threads: threadSvc}
	markerHandler.Register(engine)
	suggestionHandler := &handler.SuggestionHandler{Suggestions: suggestionSvc, Cfg: cfg.Map}
	suggestionHandler.Register(engine)
	dataHandler := &handler.ImportExportHandler{Repo: store, Importer: importer}
	dataHandler.Register(engine)
	geocodeHandler := &handler.GeocodeHandler{Client: geocoder}
	geocodeHandler.Register(engine)

	srv := &http.Server{
		Addr:    cfg.Server.HTTPAddr,
		Handler: engine,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.Cron.Enabled {
		cronRunner := cronrunner.New(logger, ctx)
		_, err = cronRunner.Add(cfg.Cron.Cleanup, func(ctx context.Context) {
			if n, err := markerSvc.CleanupPastEvents(ctx); err != nil {
				logger.Warn("cron event cleanup failed", zap.Error(err))
			} else if n > 0 {
				logger.Info("cron event cleanup ok", zap.Int("deactivated", n))
			}
			if n, err := suggestionSvc.CleanupOld(ctx, cfg.Suggestions.RetentionDays); err != nil {
				logger.Warn("cron suggestion cleanup failed", zap.Error(err))
			} else if n > 0 {
				logger.Info("cron suggestion cleanup ok", zap.Int("deleted", n))
			}
		})
		if err != nil {
			logger.Warn("cron register cleanup failed", zap.Error(err))
		}
		cronRunner.Start()
		defer cronRunner.Stop()
	}

	errCh := make(chan error, 1)

	go func() {
		logger.Info("http server starting", zap.String("addr", cfg.Server.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown requested")
	case err := <-errCh:
		logger.Error("server error", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type,Authorization,X-User-ID,X-Can-Manage")
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
