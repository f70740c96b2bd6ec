package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"ronlotto/cmd"
	"ronlotto/database"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "ronlotto",
		Usage: "Lottery rounds and prize payouts on the Ronin chain",
		Commands: []*cli.Command{
			{
				Name:     "serve",
				Usage:    "Start the HTTP entrypoints and the optional round poller",
				Category: "Lottery",
				Action: func(cctx *cli.Context) error {
					return cmd.Run(cctx.Context)
				},
			},
			{
				Name:     "advance",
				Usage:    "Advance the round lifecycle by at most one transition",
				Category: "Lottery",
				Action: func(cctx *cli.Context) error {
					return cmd.AdvanceOnce(cctx.Context)
				},
			},
			{
				Name:     "migrate",
				Usage:    "Manage database migrations",
				Category: "Database",
				// Migrations skip the full config, so .env is loaded here
				Before: func(cctx *cli.Context) error {
					_ = godotenv.Load()
					return nil
				},
				Subcommands: []*cli.Command{
					{
						Name:  "up",
						Usage: "Apply all pending migrations",
						Action: func(cctx *cli.Context) error {
							return database.MigrateUp()
						},
					},
					{
						Name:  "down",
						Usage: "Roll back migrations",
						Flags: []cli.Flag{
							&cli.IntFlag{Name: "steps", Value: 1, Usage: "number of migrations to roll back"},
						},
						Action: func(cctx *cli.Context) error {
							return database.MigrateDown(cctx.Int("steps"))
						},
					},
					{
						Name:  "status",
						Usage: "Show the current migration version",
						Action: func(cctx *cli.Context) error {
							return database.MigrateStatus()
						},
					},
				},
			},
		},
		Action: cli.ShowAppHelp,
	}

	// Handle graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		log.Fatal("Application error: ", err)
	}
}
