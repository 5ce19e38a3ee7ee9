package main

import "github.com/urfave/cli/v3"

func newApp() *cli.Command {
	return &cli.Command{
		Name:  "rootcmd",
		Usage: "Run shell commands through an elevated shell",
		Description: "rootcmd writes a command to an elevated shell (su by default), collects its " +
			"stdout and stderr in full and reports a single success or failure.",
		Version: version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "config",
				Usage: "Path to the configuration file (default: <user config dir>/rootcmd/config.yml)",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Log execution details to stderr",
			},
		},
		Commands: []*cli.Command{
			NewRunCommand(),
			NewCheckCommand(),
			NewHistoryCommand(),
			NewInitCommand(),
		},
	}
}
