package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"crypto_dashboard/internal/app/port"
	"crypto_dashboard/internal/app/service"
	"crypto_dashboard/internal/infrastructure/configloader"
	"crypto_dashboard/internal/infrastructure/httpclient"
	"crypto_dashboard/internal/infrastructure/kvstore"
	"crypto_dashboard/internal/pkg/logger"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

var (
	configPath string
	jsonOut    bool
)

// runtimeDeps are the components every command shares.
type runtimeDeps struct {
	cfg       *configloader.Config
	zap       *zap.Logger
	appLogger port.Logger
	client    port.MarketDataClient
	registry  *service.PollerRegistry
	markets   *service.MarketServiceImpl
	portfolio *service.PortfolioServiceImpl
	closers   []func() error
}

func (d *runtimeDeps) Close() {
	d.registry.Close()
	for _, closer := range d.closers {
		if err := closer(); err != nil {
			d.appLogger.Warn("Error while closing resource", "error", err)
		}
	}
	logger.Sync()
}

// bootstrap loads the configuration and wires the services.
func bootstrap(ctx context.Context) (*runtimeDeps, error) {
	cfg, err := configloader.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	zapLogger, err := logger.Init(cfg.Logging.Level, cfg.Logging.Development)
	if err != nil {
		return nil, err
	}
	appLogger := logger.NewSlogAdapter()
	appLogger.Debug("Configuration loaded", "path", configPath, "storeBackend", cfg.Store.Backend)

	store, closeStore, err := openStore(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}

	client := httpclient.NewCoinGeckoClient(cfg.CoinGecko, zapLogger)
	registry := service.NewPollerRegistry(ctx, client, service.RegistryConfig{
		ListInterval:     time.Duration(cfg.Market.ListIntervalSeconds) * time.Second,
		OverviewInterval: time.Duration(cfg.Market.OverviewIntervalSeconds) * time.Second,
		IdleTimeout:      time.Duration(cfg.Market.IdleTimeoutSeconds) * time.Second,
		FeaturedCount:    cfg.Market.FeaturedCount,
		VsCurrency:       cfg.CoinGecko.VsCurrency,
	}, appLogger)

	deps := &runtimeDeps{
		cfg:       cfg,
		zap:       zapLogger,
		appLogger: appLogger,
		client:    client,
		registry:  registry,
		markets:   service.NewMarketService(client, registry, cfg.CoinGecko.VsCurrency, appLogger),
		portfolio: service.NewPortfolioService(store, appLogger, service.WithStorageKey(cfg.Store.Key)),
	}
	if closeStore != nil {
		deps.closers = append(deps.closers, closeStore)
	}
	return deps, nil
}

// openStore creates the configured persistent store and, when it holds resources, its closer.
func openStore(ctx context.Context, cfg configloader.StoreConfig) (port.KeyValueStore, func() error, error) {
	switch cfg.Backend {
	case configloader.StoreBackendMemory:
		logger.Warn("Using in-memory store, the portfolio will not survive a restart")
		return kvstore.NewMemoryStore(), nil, nil
	case configloader.StoreBackendRedis:
		connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		store, err := kvstore.NewRedisStore(connectCtx, cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Redis store", "addr", cfg.RedisAddr, "db", cfg.RedisDB)
		return store, store.Close, nil
	default:
		logger.Info("Using file store", "path", cfg.Path)
		return kvstore.NewFileStore(cfg.Path), nil, nil
	}
}

// withDeps wraps a command action with bootstrap and teardown.
func withDeps(action func(c *cli.Context, deps *runtimeDeps) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		deps, err := bootstrap(c.Context)
		if err != nil {
			return err
		}
		defer deps.Close()
		return action(c, deps)
	}
}

func main() {
	app := cli.NewApp()
	app.Name = "cryptodash"
	app.Usage = "cryptocurrency market dashboard with a local portfolio"
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Value:       configloader.DefaultPath,
			Usage:       "path to the YAML configuration file",
			EnvVars:     []string{"CONFIG_PATH"},
			Destination: &configPath,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print command output as JSON",
			Destination: &jsonOut,
		},
	}
	app.Commands = []*cli.Command{
		serveCommand,
		marketsCommand,
		overviewCommand,
		coinCommand,
		portfolioCommand,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "cryptodash: %v\n", err)
		stop()
		os.Exit(1)
	}
}
