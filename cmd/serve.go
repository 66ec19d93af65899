package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/teemow/calbridge/internal/calendar"
	"github.com/teemow/calbridge/internal/config"
	"github.com/teemow/calbridge/internal/google"
	"github.com/teemow/calbridge/internal/instrumentation"
	"github.com/teemow/calbridge/internal/logging"
	"github.com/teemow/calbridge/internal/server"
	"github.com/teemow/calbridge/internal/store"
)

func newServeCmd() *cobra.Command {
	var (
		httpAddr       string
		dbPath         string
		frontendURL    string
		metricsEnabled bool
		metricsAddr    string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		Long: `Start the HTTP API server.

Configuration is read from a .env file in the working directory and
from environment variables (GOOGLE_CLIENT_ID, GOOGLE_CLIENT_SECRET,
GOOGLE_REDIRECT_URL, FRONTEND_URL, HTTP_ADDR, DB_PATH, METRICS_ENABLED,
METRICS_ADDR). Flags take precedence over both.

Without Google OAuth credentials the server still starts, but the auth
endpoints answer with a configuration error and expired tokens cannot
be refreshed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			if cmd.Flags().Changed("http-addr") {
				cfg.HTTPAddr = httpAddr
			}
			if cmd.Flags().Changed("db-path") {
				cfg.DBPath = dbPath
			}
			if cmd.Flags().Changed("frontend-url") {
				cfg.FrontendURL = frontendURL
			}
			if cmd.Flags().Changed("metrics-enabled") {
				cfg.MetricsEnabled = metricsEnabled
			}
			if cmd.Flags().Changed("metrics-addr") {
				cfg.MetricsAddr = metricsAddr
			}

			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&httpAddr, "http-addr", ":5000", "Address for the API server")
	cmd.Flags().StringVar(&dbPath, "db-path", "calbridge.db", "Path to the SQLite database file")
	cmd.Flags().StringVar(&frontendURL, "frontend-url", "http://localhost:3000", "Base URL of the frontend for OAuth redirects and CORS")
	cmd.Flags().BoolVar(&metricsEnabled, "metrics-enabled", true, "Enable the Prometheus metrics server")
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", server.DefaultMetricsAddr, "Address for the metrics server")

	return cmd
}

func runServe(cfg config.Config) error {
	shutdownCtx, cancel := signal.NotifyContext(context.Background(),
		os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version

	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		if err := provider.Shutdown(shutdownCtx); err != nil {
			logger.Error("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	var metricsServer *server.MetricsServer
	if cfg.MetricsEnabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    cfg.MetricsAddr,
			InstrumentationProvider: provider,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}

		// Use ready channel to confirm metrics server started successfully
		metricsReady := make(chan struct{})
		metricsErr := make(chan error, 1)
		go func() {
			if err := metricsServer.StartWithReadySignal(metricsReady); err != nil && !errors.Is(err, http.ErrServerClosed) {
				metricsErr <- err
			}
			close(metricsErr)
		}()

		select {
		case <-metricsReady:
			logger.Info("metrics server started", "addr", metricsServer.Addr())
		case err := <-metricsErr:
			return fmt.Errorf("metrics server failed to start: %w", err)
		case <-time.After(5 * time.Second):
			return fmt.Errorf("metrics server startup timed out")
		}
	}

	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open credential store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			logger.Error("error closing credential store", logging.Err(err))
		}
	}()
	if err := st.Init(shutdownCtx); err != nil {
		return fmt.Errorf("failed to initialize credential store: %w", err)
	}

	// The server runs without OAuth credentials, but the auth endpoints
	// are disabled and expired tokens cannot be refreshed.
	var flow *google.Flow
	if err := cfg.ValidateOAuth(); err != nil {
		logger.Warn("Google OAuth configuration is incomplete; auth endpoints disabled", logging.Err(err))
	} else {
		flow, err = google.NewFlow(cfg)
		if err != nil {
			return fmt.Errorf("failed to build OAuth flow: %w", err)
		}
	}

	var (
		oauthFlow server.OAuthFlow
		refresher calendar.TokenRefresher
	)
	if flow != nil {
		oauthFlow = flow
		refresher = flow
	}

	events := calendar.NewService(st, refresher, logger, provider.Metrics())
	srv := server.New(server.Config{
		Addr:        cfg.HTTPAddr,
		FrontendURL: cfg.FrontendURL,
	}, oauthFlow, events, st, logger, provider.Metrics())

	serveErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("api server failed: %w", err)
		}
	case <-shutdownCtx.Done():
		logger.Info("shutdown signal received")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
	defer stopCancel()

	if err := srv.Shutdown(stopCtx); err != nil {
		logger.Error("error during api server shutdown", logging.Err(err))
	}
	if metricsServer != nil {
		if err := metricsServer.Shutdown(stopCtx); err != nil {
			logger.Error("error during metrics server shutdown", logging.Err(err))
		}
	}

	return nil
}
