package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"gorm.io/gorm"

	"github.com/adverto/adboard-backend/internal/db"
	httpx "github.com/adverto/adboard-backend/internal/http"
	"github.com/adverto/adboard-backend/internal/platform/logger"
	"github.com/adverto/adboard-backend/internal/realtime"
)

type App struct {
	Log      *logger.Logger
	DB       *gorm.DB
	Cfg      Config
	Repos    Repos
	Services Services
	SSEHub   *realtime.SSEHub
	Server   *httpx.Server

	cancel context.CancelFunc
}

func New() (*App, error) {
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	cfg := LoadConfig(log)

	pg, err := db.NewPostgresService(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("init postgres: %w", err)
	}
	if err := pg.AutoMigrateAll(); err != nil {
		log.Sync()
		return nil, fmt.Errorf("postgres automigrate: %w", err)
	}
	theDB := pg.DB()

	hub := realtime.NewSSEHub(log)
	reposet := wireRepos(theDB, log)
	serviceset := wireServices(theDB, log, cfg, reposet, hub)
	server := httpx.NewServer(wireRouterConfig(log, serviceset, hub))

	return &App{
		Log:      log,
		DB:       theDB,
		Cfg:      cfg,
		Repos:    reposet,
		Services: serviceset,
		SSEHub:   hub,
		Server:   server,
	}, nil
}

// Start launches the background loops: the bus forwarder when Redis is
// configured and the ad expiry sweeper.
func (a *App) Start() {
	if a == nil || a.cancel != nil {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel

	if a.Services.Bus != nil {
		if err := a.Services.Bus.StartForwarder(ctx, a.SSEHub.Broadcast); err != nil {
			a.Log.Error("start bus forwarder failed", "error", err)
		}
	}

	go a.runExpirySweeper(ctx)
}

func (a *App) runExpirySweeper(ctx context.Context) {
	interval := a.Cfg.ExpirySweepInterval
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := a.Services.Advertisement.ExpireDueAds(ctx); err != nil {
				a.Log.Error("expiry sweep failed", "error", err)
			}
		}
	}
}

func (a *App) Run(addr string) error {
	return a.Server.Run(addr)
}

func (a *App) Shutdown(ctx context.Context) error {
	if a.cancel != nil {
		a.cancel()
		a.cancel = nil
	}
	if a.Services.Bus != nil {
		if err := a.Services.Bus.Close(); err != nil {
			a.Log.Warn("close bus failed", "error", err)
		}
	}
	err := a.Server.Shutdown(ctx)
	a.Log.Sync()
	return err
}
