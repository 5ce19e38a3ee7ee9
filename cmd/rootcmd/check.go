package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/rootcmd/internal/command"
	"github.com/satococoa/rootcmd/internal/config"
	"github.com/satococoa/rootcmd/internal/errors"
)

// NewCheckCommand creates the check command definition
func NewCheckCommand() *cli.Command {
	return &cli.Command{
		Name:        "check",
		Usage:       "Check that the elevated shell runs as root",
		Description: "Runs 'id -u' through the configured elevated shell and reports whether it yields uid 0.",
		Action:      checkCommand,
	}
}

func checkCommand(ctx context.Context, cmd *cli.Command) error {
	env, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer env.Close()

	isRoot, result := env.newExecutor(ctx).CheckRoot(ctx)
	return reportRootCheck(outWriter(cmd), env.cfg, isRoot, result)
}

func reportRootCheck(w io.Writer, cfg *config.Config, isRoot bool, result command.Result) error {
	if !result.OK() {
		return errors.RootUnavailable(result.Message)
	}
	if !isRoot {
		return errors.RootUnavailable(fmt.Sprintf("elevated shell reported uid %s", strings.TrimSpace(result.Output)))
	}

	p := newPalette(w)
	if _, err := p.success.Fprintln(w, "✓ Root access available"); err != nil {
		return err
	}
	shell := strings.TrimSpace(strings.Join(append([]string{cfg.Shell.Path}, cfg.Shell.Args...), " "))
	_, err := fmt.Fprintf(w, "  Shell:    %s\n  Timeout:  %s\n  Classify: %s\n",
		shell, describeTimeout(cfg.Execution.Timeout), cfg.Execution.Classify)
	return err
}
