package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"ledger/internal/categories"
	appcli "ledger/internal/cli"
	"ledger/internal/config"
	"ledger/internal/console"
	"ledger/internal/core"
	applog "ledger/internal/log"
	"ledger/internal/services"
)

// errReported marks failures the console has already shown to the user.
var errReported = errors.New("reported")

func main() {
	appcli.LoadEnvFile()

	cfg, err := appcli.LoadAndValidateConfig(appcli.SetupLogger(""))
	if err != nil {
		appcli.Fatal("Configuration validation failed", err)
	}
	logger := appcli.SetupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = newApp(cfg, logger).RunContext(ctx, os.Args)
	if err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, err)
		}
		stop()
		os.Exit(1)
	}
}

func newApp(cfg *config.Config, logger *applog.Logger) *cli.App {
	var (
		con     *console.Console
		cleanup func() error
	)

	run := func(action func(ctx context.Context) error) cli.ActionFunc {
		return func(c *cli.Context) error {
			if err := action(c.Context); err != nil {
				return errReported
			}
			return nil
		}
	}

	return &cli.App{
		Name:  "ledger",
		Usage: "record, categorize and export personal expenses",
		Description: "Run without a command for an interactive session. Configuration is read from the " +
			"environment (LEDGER_BACKEND, LEDGER_DB_PATH, LEDGER_EXPORT_PATH, LEDGER_CATEGORIES_FILE, LOG_LEVEL) " +
			"and an optional .env file.",
		HideHelpCommand: true,
		ExitErrHandler:  func(*cli.Context, error) {},
		Before: func(c *cli.Context) error {
			store, closeStore, err := appcli.InitBackend(c.Context, logger, cfg)
			if err != nil {
				return err
			}
			cleanup = closeStore

			ledger := services.NewLedger(store, cfg.ExportPath, logger)
			if err := ledger.Start(c.Context); err != nil {
				return err
			}
			con = console.New(ledger, os.Stdin, os.Stdout, categories.Load(cfg.CategoriesFile))
			return nil
		},
		After: func(*cli.Context) error {
			appcli.Shutdown(logger, cleanup)
			return nil
		},
		Action: func(c *cli.Context) error {
			return run(con.Run)(c)
		},
		Commands: []*cli.Command{
			{
				Name:  "add",
				Usage: "record a new transaction",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "amount", Aliases: []string{"a"}, Usage: "amount, greater than 0"},
					&cli.StringFlag{Name: "category", Aliases: []string{"c"}, Usage: "category, e.g. Food, Rent, Entertainment, Other"},
					&cli.StringFlag{Name: "description", Aliases: []string{"d"}, Usage: "what the money was spent on"},
					&cli.StringFlag{Name: "date", Usage: "transaction date as " + core.DateLayout + " (default: today)"},
				},
				Action: func(c *cli.Context) error {
					form := core.Form{
						Amount:      c.String("amount"),
						Category:    c.String("category"),
						Description: c.String("description"),
						Date:        c.String("date"),
					}
					return run(func(ctx context.Context) error { return con.Add(ctx, form) })(c)
				},
			},
			{
				Name:   "list",
				Usage:  "show all transactions, oldest first",
				Action: func(c *cli.Context) error { return run(con.List)(c) },
			},
			{
				Name:   "summary",
				Usage:  "show spending distribution by category",
				Action: func(c *cli.Context) error { return run(con.Summary)(c) },
			},
			{
				Name:   "export",
				Usage:  "write all transactions to " + cfg.ExportPath,
				Action: func(c *cli.Context) error { return run(con.Export)(c) },
			},
			{
				Name:   "reset",
				Usage:  "delete all transactions (asks for confirmation)",
				Action: func(c *cli.Context) error { return run(con.Reset)(c) },
			},
			{
				Name:  "categories",
				Usage: "list suggested categories",
				Action: func(*cli.Context) error {
					con.Categories()
					return nil
				},
			},
		},
	}
}
