// submodule cmd contains command definitions
package main

import (
	"strings"

	"github.com/desertthunder/spotify-sync/internal/formatter"
	"github.com/urfave/cli/v3"
)

func formatUsage() string {
	names := make([]string, len(formatter.Formats))
	for i, f := range formatter.Formats {
		names[i] = string(f)
	}
	return "Output format (" + strings.Join(names, ", ") + ")"
}

// loginCommand authorizes an account and stores its tokens
func loginCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "login",
		Usage:     "Authorize a Spotify account and store its tokens under a name",
		ArgsUsage: "<name>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "name",
			},
		},
		Action: r.Login,
	}
}

// listCommand shows stored accounts
func listCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List stored accounts",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   formatUsage(),
				Value:   string(formatter.FormatText),
			},
		},
		Action: r.List,
	}
}

// previewCommand shows library stats for one account
func previewCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "preview",
		Usage:     "Show liked song and playlist counts for an account",
		ArgsUsage: "<source>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "source",
			},
		},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   formatUsage(),
				Value:   string(formatter.FormatText),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.Preview,
	}
}

// transferCommand copies a library between accounts
func transferCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "transfer",
		Usage:     "Copy liked songs and playlists from one account to another",
		ArgsUsage: "<source> <target>",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "source",
			},
			&cli.StringArg{
				Name: "target",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "tui",
				Usage: "Show an interactive progress view",
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Skip the confirmation prompt in the TUI",
			},
			&cli.BoolFlag{
				Name:  "no-history",
				Usage: "Do not record the run in the transfer journal",
			},
		},
		Action: r.Transfer,
	}
}

// historyCommand lists past transfer runs
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "List recorded transfer runs",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "id",
			},
		},
		ArgsUsage: "[run id]",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"n"},
				Usage:   "Maximum number of runs to show, 0 for all",
				Value:   20,
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   formatUsage(),
				Value:   string(formatter.FormatText),
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout",
			},
		},
		Action: r.History,
	}
}

// setupCommand writes the config file and prepares the journal
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the transfer journal",
		Action: r.Setup,
	}
}
