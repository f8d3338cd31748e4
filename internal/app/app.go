package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/vk/nodefacade/host"
	"github.com/vk/nodefacade/hosts/hclhost"
	"github.com/vk/nodefacade/hosts/luahost"
	"github.com/vk/nodefacade/internal/ctxlog"
)

// App encapsulates the tool's dependencies, configuration, and lifecycle.
type App struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewApp is the constructor for the main application. It returns a fully
// initialized App instance with its own isolated logger.
func NewApp(outW io.Writer, cfg *Config) *App {
	logger := newLogger(cfg.LogLevel, cfg.LogFormat, outW)
	logger.Debug("Logger configured successfully.")

	return &App{
		outW:   outW,
		logger: logger,
		config: cfg,
	}
}

// openSession loads the configured scene into a host session.
func (a *App) openSession(ctx context.Context) (host.Session, error) {
	if a.config.LuaScenePath != "" {
		sess, err := luahost.LoadFile(ctx, a.config.LuaScenePath)
		if err != nil {
			return nil, fmt.Errorf("failed to load lua scene: %w", err)
		}
		return sess, nil
	}
	sess, err := hclhost.Load(ctx, a.config.ScenePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load scene: %w", err)
	}
	return sess, nil
}

// Run executes the configured command against the scene.
func (a *App) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.", "command", a.config.Command)

	sess, err := a.openSession(ctx)
	if err != nil {
		return err
	}

	if err := a.runCommand(ctx, sess); err != nil {
		return err
	}

	a.logger.Debug("App.Run method finished.")
	return nil
}
