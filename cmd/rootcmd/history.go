package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"
	"golang.org/x/term"

	"github.com/satococoa/rootcmd/internal/audit"
	"github.com/satococoa/rootcmd/internal/errors"
)

const (
	defaultHistoryLimit = 20
	historyTimeLayout   = "2006-01-02 15:04:05"
	minCommandWidth     = 12
)

// Variable to allow mocking in tests
var historyTerminalWidth = func() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 //nolint:mnd // Default terminal width
	}
	return width
}

// NewHistoryCommand creates the history command definition
func NewHistoryCommand() *cli.Command {
	return &cli.Command{
		Name:        "history",
		Usage:       "Show recently executed privileged commands",
		Description: "Lists entries from the command history database, newest first.",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of entries to show",
				Value:   defaultHistoryLimit,
			},
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print entries as JSON",
			},
		},
		Action: historyCommand,
	}
}

func historyCommand(ctx context.Context, cmd *cli.Command) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	path, err := env.cfg.ResolveHistoryPath()
	if err != nil {
		return errors.HistoryUnavailable(path, err)
	}
	if !env.cfg.HistoryEnabled() {
		return errors.HistoryUnavailable(path, fmt.Errorf("history is disabled in the configuration"))
	}

	store, err := audit.Open(path)
	if err != nil {
		return errors.HistoryUnavailable(path, err)
	}
	defer store.Close()

	entries, err := store.Recent(ctx, int(cmd.Int("limit")))
	if err != nil {
		return errors.HistoryUnavailable(path, err)
	}

	w := outWriter(cmd)
	if cmd.Bool("json") {
		return writeHistoryJSON(w, entries)
	}
	return displayHistory(w, entries, historyTerminalWidth())
}

type historyEntryJSON struct {
	ID         string    `json:"id"`
	Command    string    `json:"command"`
	Status     string    `json:"status"`
	Kind       string    `json:"kind,omitempty"`
	ExitCode   int       `json:"exit_code"`
	Output     string    `json:"output,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

func writeHistoryJSON(w io.Writer, entries []audit.Entry) error {
	out := make([]historyEntryJSON, len(entries))
	for i, e := range entries {
		out[i] = historyEntryJSON{
			ID:         e.ID,
			Command:    e.Command,
			Status:     e.Status,
			Kind:       e.Kind,
			ExitCode:   e.ExitCode,
			Output:     e.Output,
			StartedAt:  e.StartedAt,
			DurationMs: e.Duration.Milliseconds(),
		}
	}
	return writeJSON(w, out)
}

func displayHistory(w io.Writer, entries []audit.Entry, termWidth int) error {
	if len(entries) == 0 {
		_, err := fmt.Fprintln(w, "No commands recorded")
		return err
	}

	p := newPalette(w)
	const statusWidth = 7
	const durationWidth = 9
	fixed := len(historyTimeLayout) + statusWidth + durationWidth + 6 //nolint:mnd // column gaps
	commandWidth := max(termWidth-fixed, minCommandWidth)

	if _, err := fmt.Fprintf(w, "%-*s  %-*s  %*s  %s\n",
		len(historyTimeLayout), "STARTED", statusWidth, "STATUS", durationWidth, "DURATION", "COMMAND"); err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "%s  %s  %s  %s\n",
		strings.Repeat("-", len(historyTimeLayout)), strings.Repeat("-", statusWidth),
		strings.Repeat("-", durationWidth), strings.Repeat("-", len("COMMAND"))); err != nil {
		return err
	}

	for _, e := range entries {
		status := p.success.Sprintf("%-*s", statusWidth, e.Status)
		if e.Status != "success" {
			status = p.fail.Sprintf("%-*s", statusWidth, e.Status)
		}
		if _, err := fmt.Fprintf(w, "%s  %s  %*s  %s\n",
			e.StartedAt.Local().Format(historyTimeLayout),
			status,
			durationWidth, e.Duration.Round(time.Millisecond),
			truncateCommand(e.Command, commandWidth)); err != nil {
			return err
		}
	}
	return nil
}

// truncateCommand shortens a command to width runes, marking the cut with "…"
func truncateCommand(command string, width int) string {
	command = strings.ReplaceAll(command, "\n", " ")
	runes := []rune(command)
	if len(runes) <= width {
		return command
	}
	return string(runes[:width-1]) + "…"
}
