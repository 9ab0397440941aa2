package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/tahp/LinkManager/internal/app"
	lmcli "github.com/tahp/LinkManager/internal/cli"
	"github.com/tahp/LinkManager/internal/config"
	"github.com/tahp/LinkManager/internal/httpserver"
	"github.com/tahp/LinkManager/internal/httpserver/deps"
	"github.com/tahp/LinkManager/internal/logger"
	"github.com/tahp/LinkManager/internal/model"
	"github.com/tahp/LinkManager/internal/query"
	"github.com/tahp/LinkManager/internal/settings"
	"github.com/tahp/LinkManager/internal/tui"
)

var version = "dev"

// Exit codes.
const (
	exitOK         = 0
	exitError      = 1
	exitValidation = 2
	exitNotFound   = 3
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: .env not loaded: %v\n", err)
	}

	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, model.ErrValidation):
		return exitValidation
	case errors.Is(err, model.ErrNotFound):
		return exitNotFound
	default:
		return exitError
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:            "lm",
		Usage:           "personal link manager",
		Version:         version,
		HideHelpCommand: true,
		Commands: []*cli.Command{
			addCommand(),
			listCommand(),
			showCommand(),
			editCommand(),
			removeCommand(),
			visitCommand(),
			exportCommand(),
			importCommand(),
			settingsCommand(),
			tuiCommand(),
			serveCommand(),
		},
	}
}

// withServices loads configuration, opens storage and runs fn. level is the
// log level used when LM_LOG_LEVEL is unset.
func withServices(c *cli.Context, level string, fn func(*app.Services) error) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.New(cfg.Log.LevelOr(level), cfg.Log.Pretty)

	svc, err := app.Open(c.Context, cfg, log)
	if err != nil {
		return fmt.Errorf("failed to initialize storage: %w", err)
	}
	defer svc.Close()

	return fn(svc)
}

func withCommands(c *cli.Context, fn func(*lmcli.Commands) error) error {
	return withServices(c, "warn", func(svc *app.Services) error {
		return fn(lmcli.NewCommands(svc.Links, svc.Settings, os.Stdout))
	})
}

func requireArgs(c *cli.Context, n int) error {
	if c.NArg() < n {
		return model.NewValidationError("args", fmt.Sprintf("usage: lm %s %s", c.Command.Name, c.Command.ArgsUsage))
	}
	return nil
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Add a link",
		ArgsUsage: "<url>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "title", Usage: "title for the link"},
			&cli.StringFlag{Name: "notes", Usage: "notes for the link"},
			&cli.BoolFlag{Name: "default", Usage: "mark as a default link"},
			&cli.StringFlag{Name: "remind", Usage: "reminder time today (HH:MM)"},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			return withCommands(c, func(cmds *lmcli.Commands) error {
				return cmds.Add(c.Context, lmcli.AddInput{
					URL:     c.Args().First(),
					Title:   c.String("title"),
					Notes:   c.String("notes"),
					Default: c.Bool("default"),
					Remind:  c.String("remind"),
				})
			})
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:    "list",
		Aliases: []string{"ls"},
		Usage:   "List links",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "search", Aliases: []string{"s"}, Usage: "substring to match in title, URL or notes"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "field:value filters (title, url, notes, is:default)"},
			&cli.StringFlag{Name: "sort", Value: string(query.DefaultSort), Usage: "title, created, last_visited, visit_count or reminder_time"},
			&cli.StringFlag{Name: "order", Value: string(query.Asc), Usage: "asc or desc"},
			&cli.IntFlag{Name: "page", Value: 1, Usage: "page number"},
		},
		Action: func(c *cli.Context) error {
			return withCommands(c, func(cmds *lmcli.Commands) error {
				return cmds.List(c.Context, lmcli.ListOptions{
					Search: c.String("search"),
					Query:  c.String("query"),
					Sort:   c.String("sort"),
					Order:  c.String("order"),
					Page:   c.Int("page"),
				})
			})
		},
	}
}

func showCommand() *cli.Command {
	return &cli.Command{
		Name:      "show",
		Usage:     "Show one link",
		ArgsUsage: "<id>",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			return withCommands(c, func(cmds *lmcli.Commands) error {
				return cmds.Show(c.Context, c.Args().First())
			})
		},
	}
}

func editCommand() *cli.Command {
	return &cli.Command{
		Name:      "edit",
		Usage:     "Edit a link",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Usage: "new URL"},
			&cli.StringFlag{Name: "title", Usage: "new title"},
			&cli.StringFlag{Name: "notes", Usage: "new notes"},
			&cli.BoolFlag{Name: "default", Usage: "default flag (--default=false to clear)"},
			&cli.StringFlag{Name: "remind", Usage: "reminder time (HH:MM), empty to clear"},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			var in lmcli.EditInput
			if c.IsSet("url") {
				in.URL = ptr(c.String("url"))
			}
			if c.IsSet("title") {
				in.Title = ptr(c.String("title"))
			}
			if c.IsSet("notes") {
				in.Notes = ptr(c.String("notes"))
			}
			if c.IsSet("default") {
				in.Default = ptr(c.Bool("default"))
			}
			if c.IsSet("remind") {
				in.Remind = ptr(c.String("remind"))
			}
			return withCommands(c, func(cmds *lmcli.Commands) error {
				return cmds.Edit(c.Context, c.Args().First(), in)
			})
		},
	}
}

func removeCommand() *cli.Command {
	return &cli.Command{
		Name:      "rm",
		Usage:     "Delete one or more links",
		ArgsUsage: "<id> [id...]",
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			return withCommands(c, func(cmds *lmcli.Commands) error {
				return cmds.Remove(c.Context, c.Args().Slice()...)
			})
		},
	}
}

func visitCommand() *cli.Command {
	return &cli.Command{
		Name:      "visit",
		Aliases:   []string{"open"},
		Usage:     "Record a visit and open the link in the browser",
		ArgsUsage: "<id>",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "no-open", Usage: "record the visit without opening a browser"},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			return withCommands(c, func(cmds *lmcli.Commands) error {
				return cmds.Visit(c.Context, c.Args().First(), !c.Bool("no-open"))
			})
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:      "export",
		Usage:     "Export all links (- writes to stdout)",
		ArgsUsage: "[path]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json or yaml (default: from file extension)"},
		},
		Action: func(c *cli.Context) error {
			return withCommands(c, func(cmds *lmcli.Commands) error {
				if c.Args().First() == "-" {
					return cmds.Export(c.Context, os.Stdout, c.String("format"))
				}
				return cmds.ExportFile(c.Context, c.Args().First(), c.String("format"))
			})
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "Import links from a JSON or YAML file",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "format", Aliases: []string{"f"}, Usage: "json or yaml (default: from file extension)"},
		},
		Action: func(c *cli.Context) error {
			if err := requireArgs(c, 1); err != nil {
				return err
			}
			return withCommands(c, func(cmds *lmcli.Commands) error {
				return cmds.Import(c.Context, c.Args().First(), c.String("format"))
			})
		},
	}
}

func settingsCommand() *cli.Command {
	return &cli.Command{
		Name:  "settings",
		Usage: "Show or change settings",
		Action: func(c *cli.Context) error {
			return withCommands(c, func(cmds *lmcli.Commands) error {
				cmds.ShowSettings()
				return nil
			})
		},
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Show the current settings",
				Action: func(c *cli.Context) error {
					return withCommands(c, func(cmds *lmcli.Commands) error {
						cmds.ShowSettings()
						return nil
					})
				},
			},
			{
				Name:  "set",
				Usage: "Change settings",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "page-size", Usage: "links per page (1-100)"},
					&cli.StringFlag{Name: "date-format", Usage: "date format preset key"},
					&cli.StringFlag{Name: "export-path", Usage: "default export directory or file"},
				},
				Action: func(c *cli.Context) error {
					var u settings.Update
					if c.IsSet("page-size") {
						u.PageSize = ptr(c.Int("page-size"))
					}
					if c.IsSet("date-format") {
						u.DateFormatChoice = ptr(c.String("date-format"))
					}
					if c.IsSet("export-path") {
						u.DefaultExportPath = ptr(c.String("export-path"))
					}
					return withCommands(c, func(cmds *lmcli.Commands) error {
						return cmds.SetSettings(c.Context, u)
					})
				},
			},
		},
	}
}

func tuiCommand() *cli.Command {
	return &cli.Command{
		Name:  "tui",
		Usage: "Browse links interactively",
		Action: func(c *cli.Context) error {
			return withServices(c, "warn", func(svc *app.Services) error {
				return tui.Run(svc.Links, svc.Settings, lmcli.OpenBrowser)
			})
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the JSON API",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "addr", Usage: "listen address (overrides LM_LISTEN_ADDR)"},
		},
		Action: func(c *cli.Context) error {
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if c.IsSet("addr") {
				cfg.Server.ListenAddr = c.String("addr")
			}
			log := logger.New(cfg.Log.LevelOr("info"), cfg.Log.Pretty)

			svc, err := app.Open(ctx, cfg, log)
			if err != nil {
				return fmt.Errorf("failed to initialize storage: %w", err)
			}
			defer svc.Close()

			srv := httpserver.New(cfg.Server, deps.Deps{
				Logger:    log,
				StartTime: time.Now(),
				Links:     svc.Links,
				Settings:  svc.Settings,
				Backend:   svc.Backend.Name(),
			})

			errCh := make(chan error, 1)
			go func() { errCh <- srv.Start() }()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			if err := srv.Stop(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return <-errCh
		},
	}
}

func ptr[T any](v T) *T { return &v }
