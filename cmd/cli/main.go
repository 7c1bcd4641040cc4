package main

import (
	"context"
	"errors"
	"os"

	"github.com/bookshelf/bookshelf-go/internal/client/api"
	"github.com/charmbracelet/log"
	"github.com/urfave/cli/v3"
)

func main() {
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	app := &App{logger: logger, out: os.Stdout}

	if err := newRootCommand(app).Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, api.ErrUnauthenticated) {
			logger.Error(err.Error())
		} else {
			logger.Error("command failed", "error", err)
		}
		os.Exit(1)
	}
}

func newRootCommand(app *App) *cli.Command {
	return &cli.Command{
		Name:    "bookshelf",
		Usage:   "Search books and keep a personal saved list",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to configuration file",
				Value:   "bookshelf.toml",
			},
		},
		Before:   app.Setup,
		After:    app.Teardown,
		Commands: app.commands(),
	}
}
