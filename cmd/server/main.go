package main

import (
	"log"
	"os"
	"path/filepath"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/chandlershortlidge/baby-timer-app/internal"
	"github.com/chandlershortlidge/baby-timer-app/internal/api"
	"github.com/chandlershortlidge/baby-timer-app/internal/config"
	"github.com/chandlershortlidge/baby-timer-app/internal/service"
	"github.com/chandlershortlidge/baby-timer-app/internal/storage"
)

type app struct {
	logger    internal.Logger
	scheduler *service.Scheduler
}

func (a *app) Logger() internal.Logger       { return a.logger }
func (a *app) Scheduler() *service.Scheduler { return a.scheduler }

func newLogger(cfg *config.Config) (internal.Logger, func(), error) {
	var zl *zap.Logger
	var err error
	if cfg.Env == "production" {
		zl, err = zap.NewProduction()
	} else {
		zl, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, nil, err
	}
	sync := func() { _ = zl.Sync() }
	return internal.NewZapLogger(zl.Sugar()), sync, nil
}

func main() {
	cfg := config.Load()

	logger, flush, err := newLogger(cfg)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer flush()

	if cfg.DBType == "file" {
		if err := os.MkdirAll(filepath.Dir(cfg.ScheduleFile), 0755); err != nil {
			logger.Fatalf("failed to create data dir: %v", err)
		}
	}

	store, err := storage.NewStore(cfg, logger)
	if err != nil {
		logger.Fatalf("failed to init storage: %v", err)
	}
	defer store.Close()

	scheduler := service.NewScheduler(store, cfg.Defaults, logger)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.Default()
	api.RegisterRoutes(r, &app{logger: logger, scheduler: scheduler})

	logger.Infof("Server running on %s", cfg.ListenAddr)
	if err := r.Run(cfg.ListenAddr); err != nil {
		logger.Fatalf("failed to start server: %v", err)
	}
}
