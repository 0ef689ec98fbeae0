package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/star/tlehist/internal/api"
	"github.com/star/tlehist/internal/auth"
	"github.com/star/tlehist/internal/config"
)

// Serve runs the HTTP API until ctx is cancelled or SIGINT/SIGTERM arrives.
func (a *App) Serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	engine, err := a.newEngine(ctx)
	if err != nil {
		return err
	}

	srvCfg := a.Config.Server
	srv := api.NewServer(api.Options{
		Addr:               srvCfg.Addr,
		TrustProxy:         srvCfg.TrustProxy,
		MaxConcurrentPerIP: srvCfg.MaxConcurrentPerIP,
		RequestTimeout:     srvCfg.RequestTimeout,
		Auth:               auth.Config{Enabled: a.Config.Auth.Enabled, Token: a.Config.Auth.Token},
		Ready:              a.readiness(),
	}, engine, a.Logger)

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("starting server",
			"component", "app",
			"addr", srvCfg.Addr,
			"auth_enabled", a.Config.Auth.Enabled,
			"source", a.Config.Source.Kind,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}
	a.Logger.Info("shutting down server...", "component", "app")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), srvCfg.ShutdownTimeout)
	defer cancel()

	if err := srv.HTTPServer().Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	a.Logger.Info("server stopped", "component", "app")
	return nil
}

// readiness returns a check for sources that can be verified locally.
func (a *App) readiness() func() error {
	if a.Config.Source.Kind != config.SourceDir {
		return nil
	}
	root := a.Config.Source.Root
	return func() error {
		info, err := os.Stat(root)
		if err != nil {
			return fmt.Errorf("snapshot root: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("snapshot root %s is not a directory", root)
		}
		return nil
	}
}
