package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/rootcmd/internal/command"
	"github.com/satococoa/rootcmd/internal/config"
	"github.com/satococoa/rootcmd/internal/errors"
	"github.com/satococoa/rootcmd/internal/lock"
)

// commandRunner is the part of command.Executor used by run, for mocking
type commandRunner interface {
	Execute(ctx context.Context, command string) command.Result
	ExecuteAll(ctx context.Context, commands []string, stopOnFailure bool) *command.BatchResult
}

type runOptions struct {
	JSON          bool
	Batch         bool
	StopOnFailure bool
}

// NewRunCommand creates the run command definition
func NewRunCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a command in an elevated shell",
		UsageText: "rootcmd run [options] [--] <command...>\n   rootcmd run [options] --file <script>",
		Description: "Writes the command to a fresh elevated shell followed by 'exit', waits for it and " +
			"prints its output. Any stderr output counts as failure unless '--classify exit-code' is used.\n\n" +
			"With --file, every non-blank line that does not start with '#' runs as its own command.",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:    "timeout",
				Aliases: []string{"t"},
				Usage:   "Kill the elevated shell after this duration (overrides execution.timeout)",
			},
			&cli.StringFlag{
				Name:  "classify",
				Usage: "Result classification: stderr or exit-code (overrides execution.classify)",
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print the result as JSON",
			},
			&cli.BoolFlag{
				Name:    "exclusive",
				Aliases: []string{"x"},
				Usage:   "Hold an exclusive lock so concurrent rootcmd runs are serialized",
			},
			&cli.StringFlag{
				Name:    "file",
				Aliases: []string{"f"},
				Usage:   "Read commands from a file, one per line",
			},
			&cli.BoolFlag{
				Name:  "stop-on-failure",
				Usage: "Stop a --file batch at the first failing command",
			},
		},
		Action: runCommand,
	}
}

func runCommand(ctx context.Context, cmd *cli.Command) error {
	commands, batch, err := parseRunInput(cmd.Args().Slice(), cmd.String("file"))
	if err != nil {
		return err
	}

	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	if err := applyRunOverrides(cmd, env.cfg); err != nil {
		return err
	}

	if cmd.Bool("exclusive") {
		release, err := acquireRunLock(ctx, env)
		if err != nil {
			return err
		}
		defer release()
	}

	env.openHistory()
	executor := env.newExecutor(ctx)

	opts := runOptions{
		JSON:          cmd.Bool("json"),
		Batch:         batch,
		StopOnFailure: cmd.Bool("stop-on-failure"),
	}
	return executeAndReport(ctx, outWriter(cmd), errWriter(cmd), executor, commands, opts)
}

// parseRunInput turns the positional arguments or the --file script into the
// commands to run. The second return value reports batch mode.
func parseRunInput(args []string, file string) ([]string, bool, error) {
	if file != "" {
		if len(args) > 0 {
			return nil, false, errors.CommandAndFileConflict()
		}
		commands, err := readCommandFile(file)
		if err != nil {
			return nil, false, err
		}
		if len(commands) == 0 {
			return nil, false, errors.CommandRequired()
		}
		return commands, true, nil
	}

	if len(args) == 0 {
		return nil, false, errors.CommandRequired()
	}
	return []string{strings.Join(args, " ")}, false, nil
}

func readCommandFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.FileAccessFailed("open", path, err)
	}
	defer f.Close()

	var commands []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		commands = append(commands, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.FileAccessFailed("read", path, err)
	}
	return commands, nil
}

func applyRunOverrides(cmd *cli.Command, cfg *config.Config) error {
	if cmd.IsSet("timeout") {
		timeout := cmd.Duration("timeout")
		if timeout < 0 {
			return fmt.Errorf("--timeout must not be negative, got %s", timeout)
		}
		cfg.Execution.Timeout = timeout
	}

	if cmd.IsSet("classify") {
		classify := cmd.String("classify")
		supported := config.SupportedClassifications()
		if !slices.Contains(supported, classify) {
			return errors.InvalidClassification(classify, supported)
		}
		cfg.Execution.Classify = classify
	}
	return nil
}

// acquireRunLock takes the exclusive lock. When another run holds it, the
// wait is bounded by the execution timeout if one is configured.
func acquireRunLock(ctx context.Context, env *appEnv) (func(), error) {
	fileLock := lock.New(env.cfg.ResolveLockPath())

	locked, err := fileLock.TryAcquire()
	if err != nil {
		return nil, errors.LockUnavailable(fileLock.Path(), err)
	}

	if !locked {
		lockCtx := ctx
		if timeout := env.cfg.Execution.Timeout; timeout > 0 {
			var cancel context.CancelFunc
			lockCtx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		env.logger.Info("waiting for exclusive lock held by another run", "path", fileLock.Path())
		if err := fileLock.Acquire(lockCtx); err != nil {
			return nil, errors.LockUnavailable(fileLock.Path(), err)
		}
	}
	env.logger.Debug("acquired exclusive lock", "path", fileLock.Path())

	return func() {
		if err := fileLock.Release(); err != nil {
			env.logger.Warn("failed to release exclusive lock", "path", fileLock.Path(), "error", err)
		}
	}, nil
}

func executeAndReport(
	ctx context.Context, w, errW io.Writer, runner commandRunner, commands []string, opts runOptions,
) error {
	if !opts.Batch {
		result := runner.Execute(ctx, commands[0])
		if opts.JSON {
			if err := writeJSON(w, result); err != nil {
				return err
			}
		} else if result.OK() {
			if err := printResult(w, errW, result); err != nil {
				return err
			}
		}

		if !result.OK() {
			return errors.CommandFailed(commands[0], string(result.Kind), result.Message)
		}
		return nil
	}

	batch := runner.ExecuteAll(ctx, commands, opts.StopOnFailure)
	var err error
	if opts.JSON {
		err = writeBatchJSON(w, batch)
	} else {
		err = printBatch(w, batch)
	}
	if err != nil {
		return err
	}

	if failed := countFailed(batch); failed > 0 {
		return errors.BatchFailed(failed, len(commands))
	}
	return nil
}
