// Package app wires configuration, storage, clients and services into a
// running application core shared by cmd/foregone-server.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/foregonehq/foregone/internal/clients/yahoo"
	"github.com/foregonehq/foregone/internal/common"
	"github.com/foregonehq/foregone/internal/interfaces"
	"github.com/foregonehq/foregone/internal/services/market"
	"github.com/foregonehq/foregone/internal/services/simulation"
	"github.com/foregonehq/foregone/internal/storage"
)

// App holds all initialized services, clients and storage.
type App struct {
	Config            *common.Config
	Logger            *common.Logger
	Storage           interfaces.StorageManager
	YahooClient       *yahoo.Client
	MarketService     interfaces.MarketService
	SimulationService interfaces.SimulationService
	StartupTime       time.Time

	scheduler       *refreshScheduler
	warmCacheCancel context.CancelFunc
}

// getBinaryDir returns the directory containing the executable.
func getBinaryDir() string {
	exe, err := os.Executable()
	if err != nil {
		return "."
	}
	return filepath.Dir(exe)
}

// NewApp initializes configuration, storage, clients and services.
// configPath may be empty, in which case the default resolution logic is used.
func NewApp(configPath string) (*App, error) {
	startupStart := time.Now()

	binDir := getBinaryDir()

	// Config resolution: explicit path, FOREGONE_CONFIG, binary dir, then
	// the development fallback.
	if configPath == "" {
		configPath = os.Getenv("FOREGONE_CONFIG")
	}
	if configPath == "" {
		configPath = filepath.Join(binDir, "foregone.toml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			configPath = "config/foregone.toml"
		}
	}

	config, err := common.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	// Resolve relative paths to the binary directory so the server is
	// self-contained wherever it is installed.
	if config.Storage.Path != "" && !filepath.IsAbs(config.Storage.Path) {
		config.Storage.Path = filepath.Join(binDir, config.Storage.Path)
	}
	if config.Logging.FilePath != "" && !filepath.IsAbs(config.Logging.FilePath) {
		config.Logging.FilePath = filepath.Join(binDir, config.Logging.FilePath)
	}

	logger := common.NewLoggerFromConfig(config.Logging)

	storageManager, err := storage.NewStorageManager(logger, config)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}

	yahooClient := yahoo.NewClient(
		yahoo.WithLogger(logger),
		yahoo.WithChartURL(config.Clients.Yahoo.ChartURL),
		yahoo.WithSearchURL(config.Clients.Yahoo.SearchURL),
		yahoo.WithRateLimit(config.Clients.Yahoo.RateLimit),
		yahoo.WithTimeout(config.Clients.Yahoo.GetTimeout()),
	)

	marketService := market.NewService(storageManager.MarketStore(), yahooClient, logger)
	simulationService := simulation.NewService(marketService, storageManager.ResultStore(), logger, config.Simulation)

	a := &App{
		Config:            config,
		Logger:            logger,
		Storage:           storageManager,
		YahooClient:       yahooClient,
		MarketService:     marketService,
		SimulationService: simulationService,
		StartupTime:       startupStart,
	}

	logger.Info().Dur("startup", time.Since(startupStart)).Msg("App initialized")

	return a, nil
}

// Close releases all resources held by the App.
// Shutdown order: stop scheduler, cancel warm cache, close storage.
func (a *App) Close() {
	if a.scheduler != nil {
		a.scheduler.Stop()
		a.scheduler = nil
	}
	if a.warmCacheCancel != nil {
		a.warmCacheCancel()
		a.warmCacheCancel = nil
	}
	if a.Storage != nil {
		a.Storage.Close()
		a.Storage = nil
	}
}

// StartWarmCache launches the background cache warming goroutine.
func (a *App) StartWarmCache() {
	warmCtx, warmCancel := context.WithTimeout(context.Background(), 5*time.Minute)
	a.warmCacheCancel = warmCancel
	go func() {
		defer warmCancel()
		warmCache(warmCtx, a.MarketService, a.Config.Simulation.WarmTickers, a.Logger)
	}()
}

// StartRefreshScheduler launches the nightly market data refresh.
func (a *App) StartRefreshScheduler() error {
	sched, err := newRefreshScheduler(a.MarketService, a.Config.Simulation.RefreshSchedule, a.Logger)
	if err != nil {
		return err
	}
	a.scheduler = sched
	sched.Start()
	return nil
}
