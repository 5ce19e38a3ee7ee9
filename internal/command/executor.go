package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	iox "github.com/satococoa/rootcmd/internal/io"
)

// exitInstruction ends the elevated shell once the command has run
const exitInstruction = "exit"

// Executor runs command strings through elevated shells started by a Launcher.
// Each call owns its process and buffers; an Executor is safe for concurrent use.
type Executor struct {
	launcher Launcher
	classify Classification
	timeout  time.Duration
	logger   *slog.Logger
	observer Observer
}

// Observer is called once per execution with its final result
type Observer func(command string, result Result, started time.Time, elapsed time.Duration)

// Option configures an Executor
type Option func(*Executor)

// WithTimeout bounds every execution. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(e *Executor) {
		e.timeout = d
	}
}

// WithClassification selects the success/failure policy
func WithClassification(c Classification) Option {
	return func(e *Executor) {
		if c != "" {
			e.classify = c
		}
	}
}

// WithLogger sets the logger used for debug events
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithObserver registers a callback for every finished execution
func WithObserver(o Observer) Option {
	return func(e *Executor) {
		e.observer = o
	}
}

// NewExecutor creates an executor that launches shells with launcher
func NewExecutor(launcher Launcher, opts ...Option) *Executor {
	e := &Executor{
		launcher: launcher,
		classify: ClassifyStderr,
		logger:   slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

var _ PrivilegedExecutor = (*Executor)(nil)

// Execute runs command in a fresh elevated shell and returns its single result.
// No failure escapes as an error or panic; all of them become a failed Result.
func (e *Executor) Execute(ctx context.Context, command string) Result {
	started := time.Now()
	result := e.execute(ctx, command, started)
	if e.observer != nil {
		e.observer(command, result, started, time.Since(started))
	}
	return result
}

func (e *Executor) execute(ctx context.Context, command string, started time.Time) Result {
	if e.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.timeout)
		defer cancel()
	}
	log := e.logger.With("command", command)

	proc, err := e.launcher.Launch(ctx)
	if err != nil {
		if r, ok := contextFailure(ctx); ok {
			return r
		}
		log.Debug("elevated shell did not start", "error", err)
		return Failure(KindEscalation, fmt.Sprintf("failed to start elevated shell: %v", err))
	}

	stdoutR, stderrR := proc.Stdout(), proc.Stderr()
	defer func() {
		_ = stdoutR.Close()
		_ = stderrR.Close()
	}()
	stop := context.AfterFunc(ctx, func() {
		log.Debug("context done, aborting stream reads", "error", ctx.Err())
		_ = stdoutR.Close()
		_ = stderrR.Close()
	})
	defer stop()

	// Both streams are drained concurrently so a full stderr pipe can never
	// stall the shell while stdout is still being read.
	var stdout, stderr string
	var g errgroup.Group
	g.Go(func() error {
		var readErr error
		stdout, readErr = iox.CollectLines(stdoutR)
		if readErr != nil {
			return fmt.Errorf("read stdout: %w", readErr)
		}
		return nil
	})
	g.Go(func() error {
		var readErr error
		stderr, readErr = iox.CollectLines(stderrR)
		if readErr != nil {
			return fmt.Errorf("read stderr: %w", readErr)
		}
		return nil
	})

	writeErr := writeScript(proc.Stdin(), command)
	readErr := g.Wait()
	exitCode, waitErr := proc.Wait()

	log = log.With("exit_code", exitCode, "elapsed", time.Since(started))

	if r, ok := contextFailure(ctx); ok {
		log.Debug("execution aborted", "kind", r.Kind)
		r.ExitCode = exitCode
		return r
	}

	var result Result
	switch {
	case writeErr != nil:
		result = Failure(KindStreamIO, withStderr(writeErr.Error(), stderr))
	case readErr != nil:
		result = Failure(KindStreamIO, withStderr(readErr.Error(), stderr))
	case waitErr != nil:
		result = Failure(KindWait, withStderr(fmt.Sprintf("wait for elevated shell: %v", waitErr), stderr))
	default:
		result = e.classifyOutput(stdout, stderr, exitCode)
	}
	result.ExitCode = exitCode

	log.Debug("command finished", "status", result.Status, "kind", result.Kind)
	return result
}

// ExecuteAll runs commands in sequence, each in its own elevated shell.
// With stopOnFailure the batch ends at the first failed result.
func (e *Executor) ExecuteAll(ctx context.Context, commands []string, stopOnFailure bool) *BatchResult {
	batch := &BatchResult{
		Commands: make([]string, 0, len(commands)),
		Results:  make([]Result, 0, len(commands)),
	}

	for _, cmd := range commands {
		result := e.Execute(ctx, cmd)

		batch.Commands = append(batch.Commands, cmd)
		batch.Results = append(batch.Results, result)

		if !result.OK() && stopOnFailure {
			break
		}
	}

	return batch
}

// CheckRoot reports whether the elevated shell runs as uid 0
func (e *Executor) CheckRoot(ctx context.Context) (bool, Result) {
	result := e.Execute(ctx, "id -u")
	return result.OK() && strings.TrimSpace(result.Output) == "0", result
}

func (e *Executor) classifyOutput(stdout, stderr string, exitCode int) Result {
	if e.classify == ClassifyExitCode {
		var r Result
		if exitCode == 0 {
			r = Success(stdout)
		} else {
			msg := stderr
			if msg == "" {
				msg = fmt.Sprintf("elevated shell exited with status %d", exitCode)
			}
			r = Failure(KindExitStatus, msg)
		}
		r.Stderr = stderr
		return r
	}

	if stderr != "" {
		return Failure(KindStderr, stderr)
	}
	return Success(stdout)
}

// writeScript feeds the command and the exit instruction, then closes stdin
func writeScript(stdin io.WriteCloser, command string) error {
	_, err := io.WriteString(stdin, command+"\n"+exitInstruction+"\n")
	closeErr := stdin.Close()
	if err != nil {
		return fmt.Errorf("write command: %w", err)
	}
	if closeErr != nil {
		return fmt.Errorf("close stdin: %w", closeErr)
	}
	return nil
}

func contextFailure(ctx context.Context) (Result, bool) {
	err := ctx.Err()
	switch {
	case err == nil:
		return Result{}, false
	case errors.Is(err, context.DeadlineExceeded):
		return Failure(KindTimeout, "command timed out; elevated shell was killed"), true
	default:
		return Failure(KindCanceled, "command was canceled; elevated shell was killed"), true
	}
}

func withStderr(msg, stderr string) string {
	if stderr == "" {
		return msg
	}
	return msg + "\n" + stderr
}
