package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
	"golang.org/x/term"

	"github.com/pennywise/expense-tracker/internal/core/service"
	"github.com/pennywise/expense-tracker/internal/infrastructure/db/sqlite"
	"github.com/pennywise/expense-tracker/internal/infrastructure/security"
)

func adduserCmd() *cli.Command {
	return &cli.Command{
		Name:  "adduser",
		Usage: "Register a user from the command line",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "username", Aliases: []string{"u"}, Required: true},
			&cli.StringFlag{Name: "email", Aliases: []string{"e"}, Required: true},
			&cli.StringFlag{Name: "password", Usage: "Password (prompted for when omitted)"},
		},
		Action: func(c *cli.Context) error {
			cfg, log, err := setup(c)
			if err != nil {
				return err
			}

			password := c.String("password")
			if password == "" {
				fmt.Fprint(c.App.Writer, "Password: ")
				password, err = readPassword(c.App.Reader)
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				fmt.Fprintln(c.App.Writer)
			}

			store, err := sqlite.Open(c.Context, cfg.DBPath)
			if err != nil {
				return err
			}
			defer store.Close()

			auth := service.NewAuthService(store, store, newHasher(cfg), security.NewTokenGenerator(), log)
			res := auth.Register(c.Context, c.String("username"), c.String("email"), password)
			if !res.Success {
				return errors.New(res.Message)
			}

			fmt.Fprintf(c.App.Writer, "User %s created successfully with ID %d\n", strings.TrimSpace(c.String("username")), *res.UserID)
			return nil
		},
	}
}

// readPassword reads without echo from a terminal, or a single line otherwise.
func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
