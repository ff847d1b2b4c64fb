package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"ledger/internal/core"
	"ledger/pkg/client"
)

// run dispatches one subcommand, writing human-readable output to out.
func run(ctx context.Context, c *client.Client, cfg *config, args []string, out io.Writer) error {
	switch cmd, rest := args[0], args[1:]; cmd {
	case "login":
		if cfg.Email == "" || cfg.Password == "" {
			return errors.New("login needs -email and -password (or LEDGER_EMAIL / LEDGER_PASSWORD)")
		}
		s, err := c.Login(ctx, cfg.Email, cfg.Password)
		if err != nil {
			return err
		}
		printSession(out, s)
		return nil

	case "register":
		if cfg.Email == "" || cfg.Password == "" {
			return errors.New("register needs -email and -password (or LEDGER_EMAIL / LEDGER_PASSWORD)")
		}
		var username string
		if len(rest) > 0 {
			username = rest[0]
		}
		s, err := c.Register(ctx, cfg.Email, cfg.Password, username)
		if err != nil {
			return err
		}
		printSession(out, s)
		return nil

	case "dashboard":
		d, err := c.Dashboard(ctx)
		if err != nil {
			return err
		}
		printDashboard(out, d)
		return nil

	case "calendar":
		p, err := periodArg(rest)
		if err != nil {
			return err
		}
		view := client.NewCalendarView(c, p)
		month, err := view.Reload(ctx)
		if err != nil {
			return err
		}
		printCalendar(out, month)
		return nil

	case "budget":
		if len(rest) > 0 && rest[0] == "set" {
			if len(rest) != 2 {
				return errors.New("usage: budget set <amount>")
			}
			amount := core.ParseAmount(rest[1])
			if err := amount.Validate(); err != nil {
				return fmt.Errorf("budget amount %q: %w", rest[1], err)
			}
			b, err := c.SetBudget(ctx, client.Period{}, amount)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Budget for %s set to %s\n", b.Period, b.Amount.Format(core.DefaultCurrencySymbol))
			return nil
		}
		p, err := periodArg(rest)
		if err != nil {
			return err
		}
		r, err := c.Budget(ctx, p)
		if err != nil {
			return err
		}
		printBudget(out, r)
		return nil
	}
	return fmt.Errorf("unknown command %q", args[0])
}

// periodArg parses an optional YYYY-MM argument. None means the current month.
func periodArg(args []string) (client.Period, error) {
	if len(args) == 0 {
		return client.Period{}, nil
	}
	return core.ParsePeriod(args[0])
}
