package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"https-examples/internal/app"
	"https-examples/internal/config"
	"https-examples/internal/logger"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		logger.Fatal("server exited", map[string]any{
			"error": err.Error(),
		})
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "https-examples",
		Usage: "HTTPS example servers",
		Commands: []*cli.Command{
			exampleCommand(config.ExampleHelmet, "hardened Hello World server"),
			exampleCommand(config.ExampleOAuth, "Google login with a process-wide identity"),
			exampleCommand(config.ExampleSession, "Google login with a signed cookie session"),
		},
	}
}

func exampleCommand(example config.Example, usage string) *cli.Command {
	return &cli.Command{
		Name:  string(example),
		Usage: usage,
		Flags: serverFlags(example),
		Action: func(c *cli.Context) error {
			return serve(c, example)
		},
	}
}

func serverFlags(example config.Example) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "port",
			Usage: "listen port (default " + example.DefaultPort() + ", or $PORT)",
		},
		&cli.StringFlag{
			Name:  "cert",
			Usage: "TLS certificate file (overrides $TLS_CERT_FILE)",
		},
		&cli.StringFlag{
			Name:  "key",
			Usage: "TLS key file (overrides $TLS_KEY_FILE)",
		},
	}
}

// applyFlags lets explicitly set flags win over the environment.
func applyFlags(c *cli.Context, cfg *config.Config) {
	if c.IsSet("port") {
		cfg.AppPort = c.String("port")
	}
	if c.IsSet("cert") {
		cfg.TLSCertFile = c.String("cert")
	}
	if c.IsSet("key") {
		cfg.TLSKeyFile = c.String("key")
	}
}

func serve(c *cli.Context, example config.Example) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger.Init(cfg.LogFormat, cfg.LogLevel)
	applyFlags(c, &cfg)

	if err := cfg.Validate(example); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(
		c.Context,
		os.Interrupt,
		syscall.SIGTERM,
	)
	defer stop()

	application, err := app.New(ctx, example, cfg)
	if err != nil {
		return err
	}

	runErr := make(chan error, 1)
	go func() {
		runErr <- application.Run()
	}()

	logger.Info("example started", map[string]any{
		"example": example,
		"addr":    application.Addr(),
	})

	select {
	case err := <-runErr:
		if err != nil {
			return err
		}
	case <-ctx.Done():
		logger.Info("shutdown signal received", nil)
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.Background(),
		10*time.Second,
	)
	defer cancel()

	if err := application.Shutdown(shutdownCtx); err != nil {
		return err
	}

	logger.Info("example stopped cleanly", map[string]any{
		"example": example,
	})
	return nil
}
