package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/rootcmd/internal/audit"
	"github.com/satococoa/rootcmd/internal/command"
	"github.com/satococoa/rootcmd/internal/config"
	"github.com/satococoa/rootcmd/internal/errors"
)

// Variable to allow mocking in tests
var newLauncher = command.NewSuLauncher

// appEnv is the per-invocation wiring shared by the subcommands
type appEnv struct {
	cfg     *config.Config
	logger  *slog.Logger
	history *audit.Store
}

func loadEnv(cmd *cli.Command) (*appEnv, error) {
	path, err := resolveConfigPath(cmd)
	if err != nil {
		return nil, err
	}

	cfg, err := config.LoadConfig(path)
	if err != nil {
		return nil, errors.ConfigLoadFailed(path, err)
	}

	return &appEnv{
		cfg:    cfg,
		logger: newLogger(errWriter(cmd), cmd.Bool("verbose")),
	}, nil
}

func resolveConfigPath(cmd *cli.Command) (string, error) {
	if path := cmd.String("config"); path != "" {
		return path, nil
	}
	return config.DefaultPath()
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// openHistory opens the audit store when history is enabled. Failure is
// logged and leaves history off; it never blocks command execution.
func (e *appEnv) openHistory() {
	if !e.cfg.HistoryEnabled() {
		return
	}

	path, err := e.cfg.ResolveHistoryPath()
	if err == nil {
		e.history, err = audit.Open(path)
	}
	if err != nil {
		e.logger.Warn("command history unavailable", "path", path, "error", err)
	}
}

// recordExecution is the executor observer writing to the audit store
func (e *appEnv) recordExecution(ctx context.Context) command.Observer {
	return func(cmd string, result command.Result, started time.Time, elapsed time.Duration) {
		if e.history == nil {
			return
		}
		entry := audit.FromResult(cmd, result, started, elapsed)
		// Record even when the run itself was canceled
		id, err := e.history.Record(context.WithoutCancel(ctx), entry)
		if err != nil {
			e.logger.Warn("failed to record command history", "command", cmd, "error", err)
			return
		}
		e.logger.Debug("recorded command history", "id", id, "command", cmd)
	}
}

func (e *appEnv) newExecutor(ctx context.Context) *command.Executor {
	return command.NewExecutor(
		newLauncher(e.cfg.Shell.Path, e.cfg.Shell.Args...),
		command.WithTimeout(e.cfg.Execution.Timeout),
		command.WithClassification(command.Classification(e.cfg.Execution.Classify)),
		command.WithLogger(e.logger),
		command.WithObserver(e.recordExecution(ctx)),
	)
}

func (e *appEnv) Close() {
	if e.history != nil {
		if err := e.history.Close(); err != nil {
			e.logger.Warn("failed to close command history", "error", err)
		}
	}
}

func outWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().Writer; w != nil {
		return w
	}
	return os.Stdout
}

func errWriter(cmd *cli.Command) io.Writer {
	if w := cmd.Root().ErrWriter; w != nil {
		return w
	}
	return os.Stderr
}

func describeTimeout(d time.Duration) string {
	if d <= 0 {
		return "none"
	}
	return fmt.Sprint(d)
}
