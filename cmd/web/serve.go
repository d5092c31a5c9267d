package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/gorilla/securecookie"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/accounts"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/backend"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/cart"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/catalog"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/checkout"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/config"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/httpserver"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/observability"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/reviews"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/session"
	"github.com/Mujtaba-Syed/QnH-Enterprises/internal/status"
	"github.com/Mujtaba-Syed/QnH-Enterprises/public"
)

const contentProbeFile = "en/about-us.md"

func newServeCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the storefront HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts)
		},
	}
}

func loadConfig(ctx context.Context, opts *rootOptions) (config.Config, error) {
	cfg, err := config.Load(ctx, config.WithEnvFile(opts.envFile))
	if err != nil {
		var verr *config.ValidationError
		if errors.As(err, &verr) {
			return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
		}
		return config.Config{}, fmt.Errorf("load configuration: %w", err)
	}
	return cfg, nil
}

func runServe(ctx context.Context, opts *rootOptions) error {
	cfg, err := loadConfig(ctx, opts)
	if err != nil {
		return err
	}

	logger, err := observability.NewLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	serverCfg, err := buildServerConfig(cfg, logger)
	if err != nil {
		logger.Error("build server", zap.Error(err))
		return err
	}
	srv, err := httpserver.New(serverCfg)
	if err != nil {
		logger.Error("init server", zap.Error(err))
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Environment),
			zap.String("backend", cfg.Backend.BaseURL),
			zap.Bool("dev", cfg.Dev),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("server stopped", zap.Error(err))
		return err
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
		return err
	}
	return nil
}

// buildServerConfig wires the API-backed services, session store and health probes.
func buildServerConfig(cfg config.Config, logger *zap.Logger) (httpserver.Config, error) {
	api, err := backend.NewClient(cfg.Backend.BaseURL, &http.Client{Timeout: cfg.Backend.Timeout})
	if err != nil {
		return httpserver.Config{}, err
	}

	hashKey, blockKey := sessionKeys(cfg.Session, logger)
	sessions, err := session.NewManager(session.Config{
		CookieName:   cfg.Session.CookieName,
		HashKey:      hashKey,
		BlockKey:     blockKey,
		CookieSecure: cfg.Session.Secure,
		Lifetime:     cfg.Session.Lifetime,
		IdleTimeout:  cfg.Session.IdleTimeout,
	})
	if err != nil {
		return httpserver.Config{}, fmt.Errorf("session manager: %w", err)
	}

	products := catalog.NewHTTPService(api)
	return httpserver.Config{
		Address:           cfg.Server.Addr(),
		Dev:               cfg.Dev,
		RequestTimeout:    cfg.Server.RequestTimeout,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.IdleTimeout,
		Storefront:        cfg.Storefront,
		Assets:            cfg.Assets,
		Logger:            logger,
		Sessions:          sessions,
		Cart:              cart.NewHTTPService(api),
		Orders:            checkout.NewClient(api),
		Accounts:          accounts.NewHTTPService(api),
		Catalog:           products,
		Blog:              products,
		Reviews:           reviews.NewHTTPService(api),
		Health:            newHealthChecker(products),
	}, nil
}

// sessionKeys falls back to per-process random keys outside production. Sessions then do not
// survive a restart.
func sessionKeys(cfg config.SessionConfig, logger *zap.Logger) ([]byte, []byte) {
	if len(cfg.HashKey) > 0 {
		return cfg.HashKey, cfg.BlockKey
	}
	logger.Warn("QNH_WEB_SESSION_HASH_KEY unset; generating ephemeral session keys")
	blockKey := cfg.BlockKey
	if len(blockKey) == 0 {
		blockKey = securecookie.GenerateRandomKey(32)
	}
	return securecookie.GenerateRandomKey(64), blockKey
}

func newHealthChecker(products catalog.Service) *status.Checker {
	return status.NewChecker(map[string]status.Probe{
		"backend": func(ctx context.Context) error {
			_, err := products.TypeCounts(ctx)
			return err
		},
		"content": func(context.Context) error {
			content, err := public.ContentFS()
			if err != nil {
				return err
			}
			_, err = fs.Stat(content, contentProbeFile)
			return err
		},
	})
}
