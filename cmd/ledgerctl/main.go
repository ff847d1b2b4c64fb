// Command ledgerctl prints the dashboard, calendar and budget from a ledger server.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/joho/godotenv"

	"ledger/pkg/client"
)

const usage = `usage: ledgerctl [flags] <command> [args]

commands:
  login                  sign in and print a session token
  register [username]    create an account and print a session token
  dashboard              totals, budget and latest transactions
  calendar [YYYY-MM]     month grid (default: current month)
  budget [YYYY-MM]       budget status (default: current month)
  budget set <amount>    set the current month's budget

flags:
`

type config struct {
	BaseURL  string
	Token    string
	Email    string
	Password string
	Timeout  time.Duration
}

func parseFlags(args []string) (*config, []string, error) {
	cfg := &config{}
	fs := flag.NewFlagSet("ledgerctl", flag.ContinueOnError)
	fs.Usage = func() {
		fmt.Fprint(fs.Output(), usage)
		fs.PrintDefaults()
	}
	fs.StringVar(&cfg.BaseURL, "url", envOr("LEDGER_URL", "http://localhost:8081"), "ledger server URL")
	fs.StringVar(&cfg.Token, "token", os.Getenv("LEDGER_TOKEN"), "session token")
	fs.StringVar(&cfg.Email, "email", os.Getenv("LEDGER_EMAIL"), "account email for login/register")
	fs.StringVar(&cfg.Password, "password", os.Getenv("LEDGER_PASSWORD"), "account password for login/register")
	fs.DurationVar(&cfg.Timeout, "timeout", 30*time.Second, "overall request timeout")
	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return nil, nil, fmt.Errorf("missing command")
	}
	return cfg, fs.Args(), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	_ = godotenv.Load()

	cfg, args, err := parseFlags(os.Args[1:])
	if err != nil {
		os.Exit(2)
	}

	c, err := client.NewClient(&client.ClientOptions{BaseURL: cfg.BaseURL, Token: cfg.Token})
	if err != nil {
		fmt.Fprintln(os.Stderr, "ledgerctl:", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	if err := run(ctx, c, cfg, args, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, "ledgerctl:", err)
		os.Exit(1)
	}
}
