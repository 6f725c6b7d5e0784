package main

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/pennywise/expense-tracker/internal/core/service"
	"github.com/pennywise/expense-tracker/internal/infrastructure/config"
	"github.com/pennywise/expense-tracker/internal/infrastructure/db/sqlite"
)

func sessionsCmd() *cli.Command {
	return &cli.Command{
		Name:  "sessions",
		Usage: "Session maintenance",
		Subcommands: []*cli.Command{
			{
				Name:  "prune",
				Usage: "Delete expired sessions from the credential store",
				Action: func(c *cli.Context) error {
					cfg, log, err := setup(c)
					if err != nil {
						return err
					}
					if cfg.Session.Backend == config.BackendRedis {
						fmt.Fprintln(c.App.Writer, "Sessions live in redis, which expires them itself; nothing to prune")
						return nil
					}

					store, err := sqlite.Open(c.Context, cfg.DBPath)
					if err != nil {
						return err
					}
					defer store.Close()

					n, err := service.NewSessionReaper(store, 0, log).Prune(c.Context)
					if err != nil {
						return err
					}
					fmt.Fprintf(c.App.Writer, "Pruned %d expired session(s)\n", n)
					return nil
				},
			},
		},
	}
}
