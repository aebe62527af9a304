// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Donelist Contributors

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/donelist/donelist/internal/authn"
	authnpg "github.com/donelist/donelist/internal/authn/postgres"
	"github.com/donelist/donelist/internal/config"
	"github.com/donelist/donelist/internal/httpd"
	"github.com/donelist/donelist/internal/logging"
	"github.com/donelist/donelist/internal/mailer"
	"github.com/donelist/donelist/internal/store"
	todopg "github.com/donelist/donelist/internal/todo/postgres"
	"github.com/donelist/donelist/internal/user"
	userpg "github.com/donelist/donelist/internal/user/postgres"
)

// Default values for serve command flags.
const (
	defaultServerAddr    = "127.0.0.1:8080"
	defaultMetricsAddr   = "127.0.0.1:9100"
	defaultSessionCookie = "donelist_session"
	defaultLogFormat     = "json"

	shutdownTimeout = 5 * time.Second

	// sessionSweepInterval bounds how long an expired session row can
	// linger before the background sweep removes it.
	sessionSweepInterval = time.Hour
)

// NewServeCmd creates the serve subcommand.
func NewServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Start the HTTP server, which exposes the browser routes and
the /api/v1 token-authenticated routes.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile, cmd.Flags())
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg)
		},
	}

	// Flag names use dots so they overlay the matching config file keys.
	cmd.Flags().String("server.addr", defaultServerAddr, "HTTP listen address")
	cmd.Flags().String("server.metrics_addr", defaultMetricsAddr, "metrics HTTP address (empty = disabled)")
	cmd.Flags().String("server.session_cookie", defaultSessionCookie, "session cookie name")
	cmd.Flags().Bool("server.secure_cookies", false, "mark session cookies Secure (requires HTTPS)")
	cmd.Flags().String("database.url", os.Getenv("DATABASE_URL"), "PostgreSQL connection URL")
	cmd.Flags().String("log.format", defaultLogFormat, "log format (json or text)")

	return cmd
}

// runServe wires storage, authentication, and the HTTP edge together
// and blocks until a shutdown signal arrives.
func runServe(ctx context.Context, cfg *config.Config) error {
	logging.SetDefault("donelist", version, cfg.Log.Format)
	logger := slog.Default()

	logger.Info("starting server",
		"addr", cfg.Server.Addr,
		"log_format", cfg.Log.Format,
	)

	pool, err := store.Connect(ctx, cfg.Database.URL)
	if err != nil {
		return oops.Code("SERVE_STARTUP_FAILED").Wrap(err)
	}
	defer pool.Close()

	logger.Info("connected to database")

	users := userpg.NewUserRepository(pool)
	todos := todopg.NewTodoRepository(pool)
	sessions := authnpg.NewSessionRepository(pool)
	hasher := user.NewArgon2idHasher()

	serializer, err := authn.NewSerializer(sessions, users)
	if err != nil {
		return oops.Code("SERVE_STARTUP_FAILED").Wrap(err)
	}

	registry := authn.NewRegistry()
	if err := registry.Register(&authn.Scope{
		Name:     authn.ScopeUser,
		Store:    true,
		Fallback: authn.FallbackWebSignIn,
		Strategies: []authn.Strategy{
			authn.PasswordStrategy{Users: users, Hasher: hasher},
		},
	}); err != nil {
		return oops.Code("SERVE_STARTUP_FAILED").Wrap(err)
	}
	if err := registry.Register(&authn.Scope{
		Name:     authn.ScopeAPI,
		Store:    false,
		Fallback: authn.FallbackAPIUnauthorized,
		Strategies: []authn.Strategy{
			authn.APITokenStrategy{Users: users},
		},
	}); err != nil {
		return oops.Code("SERVE_STARTUP_FAILED").Wrap(err)
	}

	manager, err := authn.NewManager(registry, serializer, logger)
	if err != nil {
		return oops.Code("SERVE_STARTUP_FAILED").Wrap(err)
	}

	resetMailer := mailer.NewQueue(mailer.LogSender{Logger: logger}, logger)
	defer resetMailer.Close()

	srv, err := httpd.NewServer(
		httpd.Options{
			Addr:          cfg.Server.Addr,
			SessionCookie: cfg.Server.SessionCookie,
			SecureCookies: cfg.Server.SecureCookies,
		},
		manager, todos, users, hasher, resetMailer, logger,
	)
	if err != nil {
		return oops.Code("SERVE_STARTUP_FAILED").Wrap(err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Metrics listener
	var metricsSrv *http.Server
	if cfg.Server.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		if err := authn.RegisterMetrics(reg); err != nil {
			return oops.Code("SERVE_STARTUP_FAILED").Wrap(err)
		}

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsSrv = &http.Server{
			Addr:              cfg.Server.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("metrics server error, shutting down", "error", err)
				cancel()
			}
		}()
		logger.Info("metrics server started", "addr", cfg.Server.MetricsAddr)
	}

	// Periodic expired-session sweep
	go sweepSessions(ctx, sessions, logger)

	errChan := make(chan error, 1)
	go func() {
		if serveErr := srv.Start(); serveErr != nil && serveErr != http.ErrServerClosed {
			errChan <- serveErr
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	logger.Info("server ready", "addr", cfg.Server.Addr)

	select {
	case sig := <-sigChan:
		logger.Info("received shutdown signal", "signal", sig.String())
	case err := <-errChan:
		return oops.Code("SERVE_FAILED").Wrap(err)
	case <-ctx.Done():
		logger.Info("context cancelled, shutting down")
	}

	logger.Info("shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("error stopping HTTP server", "error", err)
	}
	if metricsSrv != nil {
		if err := metricsSrv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("error stopping metrics server", "error", err)
		}
	}

	logger.Info("shutdown complete")
	return nil
}

// sweepSessions deletes expired session rows on a fixed interval until
// the context is cancelled.
func sweepSessions(ctx context.Context, sessions authn.SessionRepository, logger *slog.Logger) {
	ticker := time.NewTicker(sessionSweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := sessions.DeleteExpired(ctx)
			if err != nil {
				logger.Warn("session sweep failed", "error", err)
				continue
			}
			if removed > 0 {
				logger.Info("swept expired sessions", "count", removed)
			}
		}
	}
}
