// Command expensetracker runs the expense tracker API and its admin tasks.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/pennywise/expense-tracker/internal/infrastructure/config"
	"github.com/pennywise/expense-tracker/pkg/logger"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	app := newApp(os.Stdin, os.Stdout, os.Stderr)
	if err := app.RunContext(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(stdin io.Reader, stdout, stderr io.Writer) *cli.App {
	return &cli.App{
		Name:      "expensetracker",
		Usage:     "Track expenses behind cookie-based sessions",
		Reader:    stdin,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "db",
				Usage:   "Path to the SQLite credential store (overrides DB_PATH)",
				EnvVars: []string{"DB_PATH"},
			},
		},
		Commands: []*cli.Command{
			serveCmd(),
			adduserCmd(),
			sessionsCmd(),
		},
	}
}

// setup loads configuration and initialises the process logger. Logs go to
// the app's error writer so command output on stdout stays clean.
func setup(c *cli.Context) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(c.Context)
	if err != nil {
		return nil, zerolog.Logger{}, err
	}
	if db := c.String("db"); db != "" {
		cfg.DBPath = db
	}

	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  !cfg.IsProduction(),
		Output:  c.App.ErrWriter,
		Service: c.App.Name,
	})
	return cfg, log, nil
}
