// Package commands implements the etradectl commands.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/casualjim/etrade"
	"github.com/casualjim/etrade/internal/config"
	"github.com/casualjim/etrade/internal/output"
	"github.com/casualjim/etrade/secrets"
	"github.com/casualjim/etrade/session"
)

// GlobalFlags are the persistent flags shared by every command.
type GlobalFlags struct {
	Mode    string
	DataDir string
	JSON    bool
	Verbose int
}

// App carries the resolved configuration and the authenticated session into
// each command.
type App struct {
	Config  *config.Config
	Session *session.Session
	Out     *output.Writer
	Log     *slog.Logger

	// Callback drives the interactive authorize step. Overridable in tests.
	Callback session.CallbackProvider
}

type appKey struct{}

// WithApp stores the app in a context.
func WithApp(ctx context.Context, app *App) context.Context {
	return context.WithValue(ctx, appKey{}, app)
}

// FromContext retrieves the app stored by the root command.
func FromContext(ctx context.Context) *App {
	app, _ := ctx.Value(appKey{}).(*App)
	return app
}

func app(cmd *cobra.Command) (*App, error) {
	a := FromContext(cmd.Context())
	if a == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	return a, nil
}

// NewApp resolves configuration and builds the session stack.
func NewApp(flags GlobalFlags) (*App, error) {
	cfg, err := config.Load(config.FlagOverrides{
		Mode:    flags.Mode,
		DataDir: flags.DataDir,
	})
	if err != nil {
		return nil, err
	}

	mode, err := etrade.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}

	level := slog.LevelWarn
	switch {
	case flags.Verbose >= 2:
		level = slog.LevelDebug
	case flags.Verbose == 1:
		level = slog.LevelInfo
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	store := secrets.Open(cfg.DataDir)
	sess := session.New(mode, store, session.WithLogger(log))

	jsonOut := flags.JSON || cfg.Format == "json"
	return &App{
		Config:   cfg,
		Session:  sess,
		Out:      &output.Writer{Out: os.Stdout, JSON: jsonOut},
		Log:      log,
		Callback: session.OOB{},
	}, nil
}
