package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/satococoa/rootcmd/internal/command"
)

// palette holds the colours used for human-readable output.
// Green: success, Red: failure, Yellow: auxiliary stderr, Cyan: commands
type palette struct {
	success *color.Color
	fail    *color.Color
	warn    *color.Color
	label   *color.Color
}

func newPalette(w io.Writer) *palette {
	p := &palette{
		success: color.New(color.FgGreen),
		fail:    color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		label:   color.New(color.FgCyan),
	}
	if !isTerminal(w) {
		for _, c := range []*color.Color{p.success, p.fail, p.warn, p.label} {
			c.DisableColor()
		}
	}
	return p
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// printResult writes a successful command's output verbatim. Stderr kept as
// auxiliary text (exit-code policy) goes to errW.
func printResult(w, errW io.Writer, result command.Result) error {
	if result.Stderr != "" && result.OK() {
		p := newPalette(errW)
		if _, err := p.warn.Fprint(errW, result.Stderr); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, result.Output)
	return err
}

// printBatch writes each command with its output or failure message
func printBatch(w io.Writer, batch *command.BatchResult) error {
	p := newPalette(w)

	for i, result := range batch.Results {
		if _, err := p.label.Fprintf(w, "▶ %s\n", batch.Commands[i]); err != nil {
			return err
		}

		if result.OK() {
			if _, err := io.WriteString(w, result.Output); err != nil {
				return err
			}
			continue
		}

		msg := strings.TrimRight(result.Message, "\n")
		if _, err := p.fail.Fprintf(w, "✗ %s: %s\n", result.Kind, msg); err != nil {
			return err
		}
	}

	failed := countFailed(batch)
	summary := p.success
	if failed > 0 {
		summary = p.fail
	}
	_, err := summary.Fprintf(w, "%d succeeded, %d failed\n", len(batch.Results)-failed, failed)
	return err
}

func countFailed(batch *command.BatchResult) int {
	failed := 0
	for _, r := range batch.Results {
		if !r.OK() {
			failed++
		}
	}
	return failed
}

type batchEntryJSON struct {
	Command string `json:"command"`
	command.ResultJSON
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

func writeBatchJSON(w io.Writer, batch *command.BatchResult) error {
	entries := make([]batchEntryJSON, len(batch.Results))
	for i, r := range batch.Results {
		entries[i] = batchEntryJSON{Command: batch.Commands[i], ResultJSON: r.JSON()}
	}
	return writeJSON(w, entries)
}
