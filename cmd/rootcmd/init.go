package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"

	"github.com/satococoa/rootcmd/internal/config"
	"github.com/satococoa/rootcmd/internal/errors"
)

const (
	configFileMode = 0o600
	configDirMode  = 0o755
)

// NewInitCommand creates the init command definition
func NewInitCommand() *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize configuration file",
		Description: "Creates the rootcmd configuration file (or the one given with --config) " +
			"with the default shell, execution and history settings.",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Overwrite an existing configuration file",
			},
			&cli.BoolFlag{
				Name:  "minimal",
				Usage: "Write plain defaults without explanatory comments",
			},
		},
		Action: initCommand,
	}
}

func initCommand(_ context.Context, cmd *cli.Command) error {
	configPath, err := resolveConfigPath(cmd)
	if err != nil {
		return err
	}

	if _, err := os.Stat(configPath); err == nil && !cmd.Bool("force") {
		return errors.ConfigAlreadyExists(configPath)
	}

	if cmd.Bool("minimal") {
		if err := config.SaveConfig(configPath, config.DefaultConfig()); err != nil {
			return errors.FileAccessFailed("write", configPath, err)
		}
	} else {
		if err := os.MkdirAll(filepath.Dir(configPath), configDirMode); err != nil {
			return errors.FileAccessFailed("create directory for", configPath, err)
		}
		if err := os.WriteFile(configPath, []byte(config.Template()), configFileMode); err != nil {
			return errors.FileAccessFailed("write", configPath, err)
		}
	}

	w := outWriter(cmd)
	fmt.Fprintf(w, "Configuration file created: %s\n", configPath)
	fmt.Fprintln(w, "Edit this file to choose the escalation binary, timeout and classification.")
	return nil
}
