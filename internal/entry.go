// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/starford/fontfix/internal/fontfix"
	"github.com/starford/fontfix/internal/mcpserver"
	"github.com/starford/fontfix/internal/storage"
	"github.com/starford/fontfix/internal/watcher"
)

// newApplication applies opts and checks the config with validate.
func newApplication(opts []Option, validate func(*Config) error) (*application, error) {
	app := &application{stdout: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if err := validate(app.config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return app, nil
}

// setup installs the structured logger and opens the package. Logs go to
// stderr: stdout carries the font listings and, in MCP mode, the protocol.
func (a *application) setup() (*slog.Logger, *storage.FS, error) {
	cfg := a.config

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.App.LogLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("package_root", cfg.Package.Root),
		slog.Any("passes", cfg.Run.Passes),
		slog.String("major_font", cfg.Fonts.Major),
		slog.String("minor_font", cfg.Fonts.Minor),
		slog.Bool("continue_on_error", cfg.Run.ContinueOnError),
		slog.Int("workers", cfg.Run.Workers),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Package.Root)
	if err != nil {
		return nil, nil, fmt.Errorf("open package: %w", err)
	}
	return logger, store, nil
}

func (a *application) rewriter(store *storage.FS, logger *slog.Logger) *fontfix.Rewriter {
	out := a.stdout
	if a.config.Run.Quiet {
		out = io.Discard
	}
	return fontfix.New(store, fontfix.Options{
		Logger:          logger,
		Out:             out,
		ContinueOnError: a.config.Run.ContinueOnError,
		Workers:         a.config.Run.Workers,
	})
}

// Run applies the configured passes to the package once.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, (*Config).Validate)
	if err != nil {
		return err
	}
	logger, store, err := app.setup()
	if err != nil {
		return err
	}

	report, err := app.rewriter(store, logger).Run(ctx, app.config.Plan())
	if report != nil {
		logger.Info("Rewrite finished",
			slog.Int("parts", len(report.Parts)),
			slog.Int("changed", report.Changed()),
			slog.Int("failed", report.Failed()))
	}
	if err != nil {
		return fmt.Errorf("rewrite: %w", err)
	}
	return nil
}

// Inspect prints the font scheme of every theme without changing anything.
func Inspect(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, func(c *Config) error { return c.Package.Validate() })
	if err != nil {
		return err
	}
	logger, store, err := app.setup()
	if err != nil {
		return err
	}
	return app.rewriter(store, logger).InspectThemes(ctx, app.stdout)
}

// Watch applies the configured passes once, then keeps re-applying them to
// parts that change until ctx is cancelled or a shutdown signal arrives.
func Watch(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts, (*Config).Validate)
	if err != nil {
		return err
	}
	logger, store, err := app.setup()
	if err != nil {
		return err
	}
	rw := app.rewriter(store, logger)
	plan := app.config.Plan()

	if _, err := rw.Run(ctx, plan); err != nil {
		logger.Warn("initial rewrite failed", slog.String("error", err.Error()))
	}

	g, gCtx := errgroup.WithContext(ctx)
	watchCtx, stop := context.WithCancel(gCtx)
	defer stop()

	g.Go(func() error {
		return watcher.Watch(watchCtx, store.Root(), fontfix.WatchDirs(), watcher.DefaultDebounce, logger,
			func(ctx context.Context, part string) {
				res, err := rw.RunPart(ctx, plan, part)
				switch {
				case err != nil:
					logger.Warn("watch: rewrite failed", slog.String("part", part), slog.String("error", err.Error()))
				case res != nil && res.Changed:
					logger.Info("watch: part rewritten", slog.String("part", part), slog.String("pass", res.Pass))
				}
			})
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-watchCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}
		stop()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Watcher stopped successfully")
	return nil
}

// ServeMCP serves the font passes as MCP tools on stdin/stdout. Font
// settings from the config are defaults that tool arguments override, so
// only the package and run sections must be valid here.
func ServeMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts, func(c *Config) error {
		if err := c.Package.Validate(); err != nil {
			return err
		}
		return c.Run.Validate()
	})
	if err != nil {
		return err
	}
	logger, store, err := app.setup()
	if err != nil {
		return err
	}
	srv := mcpserver.New(logger, mcpserver.Defaults{
		Root:            store.Root(),
		Plan:            app.config.Plan(),
		ContinueOnError: app.config.Run.ContinueOnError,
		Workers:         app.config.Run.Workers,
	})
	logger.Info("MCP server starting on stdio")
	return srv.ServeStdio()
}
