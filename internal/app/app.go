package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"https-examples/internal/config"
)

type App struct {
	httpServer *http.Server
	cleanup    func() error
}

// New loads the certificate and builds the router of example. Nothing is
// served if either fails.
func New(ctx context.Context, example config.Example, cfg config.Config) (*App, error) {
	tlsConfig, err := loadTLSConfig(cfg.TLSCertFile, cfg.TLSKeyFile)
	if err != nil {
		return nil, err
	}

	router, cleanup, err := setupHTTP(ctx, example, cfg)
	if err != nil {
		return nil, err
	}

	port := cfg.AppPort
	if port == "" {
		port = example.DefaultPort()
	}

	server := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		TLSConfig:         tlsConfig,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return &App{
		httpServer: server,
		cleanup:    cleanup,
	}, nil
}

// Addr is the address the server listens on.
func (a *App) Addr() string {
	return a.httpServer.Addr
}

// Run serves HTTPS until Shutdown is called.
func (a *App) Run() error {
	err := a.httpServer.ListenAndServeTLS("", "")
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (a *App) Shutdown(ctx context.Context) error {
	if err := a.httpServer.Shutdown(ctx); err != nil {
		return err
	}
	if a.cleanup != nil {
		return a.cleanup()
	}
	return nil
}
