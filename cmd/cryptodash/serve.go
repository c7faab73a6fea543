package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"time"

	"crypto_dashboard/internal/app/service"
	"crypto_dashboard/internal/domain/entity"
	"crypto_dashboard/internal/infrastructure/metrics"
	"crypto_dashboard/internal/infrastructure/restapi"
	"crypto_dashboard/internal/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/urfave/cli/v2"
	"go.uber.org/zap"
)

const swaggerSpecPath = "docs/swagger.yaml"

var serveCommand = &cli.Command{
	Name:   "serve",
	Usage:  "run the HTTP API for a local dashboard front end",
	Action: withDeps(serve),
}

func serve(c *cli.Context, deps *runtimeDeps) error {
	if !deps.cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	metrics.MustRegister(prometheus.DefaultRegisterer)

	specPath := swaggerSpecPath
	if _, err := os.Stat(specPath); err != nil {
		logger.Warn("Swagger spec not found, Swagger UI disabled", "path", specPath)
		specPath = ""
	}

	defaultRange, err := entity.ParseTimeRange(deps.cfg.Market.DefaultTimeRange)
	if err != nil {
		return fmt.Errorf("market.defaultTimeRange: %w", err)
	}

	tracker := service.NewDetailTracker(deps.markets, deps.appLogger)
	router := restapi.SetupRouter(
		restapi.RouterConfig{
			SwaggerSpecPath: specPath,
			MetricsHandler:  promhttp.Handler(),
			EnablePprof:     deps.cfg.Server.EnablePprof,
		},
		restapi.NewPortfolioHandler(deps.portfolio, deps.markets, deps.appLogger),
		restapi.NewMarketHandler(deps.markets, tracker, deps.markets.DefaultQuery(), restapi.WithDefaultRange(defaultRange)),
		deps.zap.Named("http"),
	)

	srv := &http.Server{
		Addr:         net.JoinHostPort("", deps.cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  time.Duration(deps.cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(deps.cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(deps.cfg.Server.IdleTimeout) * time.Second,
	}

	// Warm the pollers the home and list views read first.
	deps.registry.Overview()
	deps.registry.Markets(deps.markets.DefaultQuery())

	serveErr := make(chan error, 1)
	go func() {
		deps.zap.Info("HTTP server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return err
		}
	case <-c.Context.Done():
		deps.zap.Info("Shutting down HTTP server")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		deps.zap.Error("Server forced to shutdown", zap.Error(err))
		return err
	}
	deps.zap.Info("HTTP server stopped")
	return nil
}
