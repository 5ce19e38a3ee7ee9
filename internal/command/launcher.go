package command

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"
)

// DefaultShellPath is the escalation binary used when none is configured
const DefaultShellPath = "su"

// waitDelay bounds how long Wait may block on I/O after the shell is killed
const waitDelay = 2 * time.Second

// suLauncher implements Launcher using os/exec
type suLauncher struct {
	path string
	args []string
}

// NewSuLauncher creates a launcher that starts path with args as the elevated shell
func NewSuLauncher(path string, args ...string) Launcher {
	if path == "" {
		path = DefaultShellPath
	}
	return &suLauncher{
		path: path,
		args: args,
	}
}

// Launch starts the elevated shell with all three standard streams piped.
// Cancelling ctx kills the shell.
//
// stdout and stderr are plain os.Pipe pairs rather than exec's StdoutPipe:
// exec closes its own pipes inside Wait, which would race with the readers,
// and an os.File read end can be closed to abort a read held open by a
// grandchild of the shell.
func (l *suLauncher) Launch(ctx context.Context) (Process, error) {
	// #nosec G204 - the escalation binary comes from the user's own configuration
	cmd := exec.CommandContext(ctx, l.path, l.args...)
	cmd.WaitDelay = waitDelay

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("open stdin pipe: %w", err)
	}

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		_ = stdin.Close()
		return nil, fmt.Errorf("open stdout pipe: %w", err)
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		_ = stdin.Close()
		closeAll(stdoutR, stdoutW)
		return nil, fmt.Errorf("open stderr pipe: %w", err)
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	startErr := cmd.Start()
	// The child holds its own copies of the write ends
	closeAll(stdoutW, stderrW)
	if startErr != nil {
		closeAll(stdoutR, stderrR)
		return nil, fmt.Errorf("start %s: %w", l.path, startErr)
	}

	return &shellProcess{
		cmd:    cmd,
		stdin:  stdin,
		stdout: stdoutR,
		stderr: stderrR,
	}, nil
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// shellProcess is a started exec.Cmd
type shellProcess struct {
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	stdout *os.File
	stderr *os.File
}

func (p *shellProcess) Stdin() io.WriteCloser { return p.stdin }
func (p *shellProcess) Stdout() io.ReadCloser { return p.stdout }
func (p *shellProcess) Stderr() io.ReadCloser { return p.stderr }

func (p *shellProcess) Wait() (int, error) {
	err := p.cmd.Wait()
	if err == nil {
		return 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		// Killed by a signal: ExitCode reports -1
		return exitErr.ExitCode(), nil
	}
	return UnknownExitCode, err
}
