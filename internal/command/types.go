package command

import (
	"context"
	"encoding/json"
	"io"
)

// Status is the outcome tag of a Result
type Status string

const (
	StatusSuccess Status = "success"
	StatusError   Status = "error"
)

// Kind classifies why an execution failed
type Kind string

const (
	KindEscalation Kind = "escalation"  // elevated shell could not be started
	KindStreamIO   Kind = "stream_io"   // writing the command or reading a stream failed
	KindWait       Kind = "wait"        // waiting for the shell to terminate failed
	KindStderr     Kind = "stderr"      // the command wrote to its error stream
	KindExitStatus Kind = "exit_status" // the shell exited non-zero (exit-code policy only)
	KindTimeout    Kind = "timeout"
	KindCanceled   Kind = "canceled"
)

// Classification selects how a finished process is turned into a Result
type Classification string

const (
	// ClassifyStderr treats any stderr text as failure, regardless of exit code
	ClassifyStderr Classification = "stderr"
	// ClassifyExitCode keys the outcome off the exit code and keeps stderr as auxiliary text
	ClassifyExitCode Classification = "exit-code"
)

// UnknownExitCode is reported when the shell never produced an exit code
const UnknownExitCode = -1

// Result is the single outcome of one privileged command.
// Exactly one of Output (success) or Message (error) carries the payload.
type Result struct {
	Status   Status
	Output   string
	Message  string
	Kind     Kind
	ExitCode int
	Stderr   string
}

// ResultJSON is the wire form of a Result. A success always carries
// "output" and a failure always carries "message", even when empty.
type ResultJSON struct {
	Status   Status  `json:"status"`
	Output   *string `json:"output,omitempty"`
	Message  *string `json:"message,omitempty"`
	Kind     Kind    `json:"kind,omitempty"`
	ExitCode int     `json:"exit_code"`
	Stderr   string  `json:"stderr,omitempty"`
}

// JSON returns the wire form of r
func (r Result) JSON() ResultJSON {
	w := ResultJSON{Status: r.Status, Kind: r.Kind, ExitCode: r.ExitCode, Stderr: r.Stderr}
	if r.OK() {
		w.Output = &r.Output
	} else {
		w.Message = &r.Message
	}
	return w
}

// MarshalJSON encodes r in its wire form
func (r Result) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.JSON())
}

// Success builds a successful Result
func Success(output string) Result {
	return Result{Status: StatusSuccess, Output: output, ExitCode: UnknownExitCode}
}

// Failure builds a failed Result
func Failure(kind Kind, message string) Result {
	return Result{Status: StatusError, Message: message, Kind: kind, ExitCode: UnknownExitCode}
}

// OK reports whether the result is a success
func (r Result) OK() bool {
	return r.Status == StatusSuccess
}

// Text returns the populated payload: Output on success, Message on error
func (r Result) Text() string {
	if r.OK() {
		return r.Output
	}
	return r.Message
}

// BatchResult holds the results of commands executed in sequence
type BatchResult struct {
	Commands []string
	Results  []Result
}

// OK reports whether every executed command succeeded
func (b *BatchResult) OK() bool {
	for _, r := range b.Results {
		if !r.OK() {
			return false
		}
	}
	return true
}

// Process is a running elevated shell
type Process interface {
	Stdin() io.WriteCloser
	// Stdout and Stderr are drained to EOF by the executor. Closing them
	// unblocks a pending read; the executor does so when its context ends.
	Stdout() io.ReadCloser
	Stderr() io.ReadCloser
	// Wait blocks until the shell exits. A non-zero exit is reported through
	// exitCode, not err; err is reserved for failures of the wait itself.
	Wait() (exitCode int, err error)
}

// Launcher starts elevated shells. It abstracts the actual process spawning.
type Launcher interface {
	Launch(ctx context.Context) (Process, error)
}

// PrivilegedExecutor runs one command string through an elevated shell
type PrivilegedExecutor interface {
	Execute(ctx context.Context, command string) Result
}
