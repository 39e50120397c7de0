package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	_ "time/tzdata"

	"github.com/amirasaad/payminute/infra"
	"github.com/amirasaad/payminute/infra/initializer"
	"github.com/amirasaad/payminute/internal/migrations"
	"github.com/amirasaad/payminute/pkg/app"
	"github.com/amirasaad/payminute/pkg/config"
	"github.com/amirasaad/payminute/pkg/service/ledger"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"golang.org/x/term"
)

const usage = `Usage: cli <command> [arguments]
Commands:
  migrate up | down [steps] | version
  balance <user_id>
  reconcile
  expire-kyc`

var errUsage = errors.New("invalid usage")

var (
	okColor   = color.New(color.FgGreen, color.Bold)
	warnColor = color.New(color.FgYellow, color.Bold)
	errColor  = color.New(color.FgRed, color.Bold)
)

func main() {
	color.NoColor = !term.IsTerminal(int(os.Stdout.Fd()))
	if err := run(context.Background(), os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, usage)
		}
		errColor.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	switch args[0] {
	case "migrate":
		return migrate(args[1:], out)
	case "balance", "reconcile", "expire-kyc":
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}

	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	deps, cleanup, err := initializer.InitializeDependencies(cfg)
	if err != nil {
		return err
	}
	defer cleanup()
	a := app.New(deps)

	switch args[0] {
	case "balance":
		if len(args) < 2 {
			return fmt.Errorf("%w: balance <user_id>", errUsage)
		}
		id, err := uuid.Parse(args[1])
		if err != nil {
			return fmt.Errorf("invalid user id: %w", err)
		}
		balance, err := a.LedgerService.GetBalance(ctx, id)
		if err != nil {
			return err
		}
		okColor.Fprintf(out, "Balance of %s: %d\n", id, balance)
	case "reconcile":
		ds, err := a.LedgerService.Reconcile(ctx)
		if err != nil {
			return err
		}
		printDiscrepancies(out, ds)
	case "expire-kyc":
		n, err := a.KYCService.ExpireStale(ctx)
		if err != nil {
			return err
		}
		okColor.Fprintf(out, "Expired %d KYC records\n", n)
	}
	return nil
}

func printDiscrepancies(out io.Writer, ds []ledger.Discrepancy) {
	if len(ds) == 0 {
		okColor.Fprintln(out, "All balances reconcile")
		return
	}
	warnColor.Fprintf(out, "%d accounts do not reconcile\n", len(ds))
	for _, d := range ds {
		fmt.Fprintf(out, "  %s stored=%d expected=%d diff=%d\n", d.AccountID, d.Stored, d.Expected, d.Stored-d.Expected)
	}
}

func migrate(args []string, out io.Writer) error {
	if len(args) < 1 {
		return fmt.Errorf("%w: migrate up | down [steps] | version", errUsage)
	}
	cfg, err := config.Load(".env")
	if err != nil {
		return err
	}
	db, err := infra.NewDBConnection(cfg.DB, cfg.Env)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close() //nolint:errcheck

	switch args[0] {
	case "up":
		if err := migrations.Up(sqlDB); err != nil {
			return err
		}
		okColor.Fprintln(out, "Migrations applied")
	case "down":
		steps := 1
		if len(args) > 1 {
			if steps, err = strconv.Atoi(args[1]); err != nil || steps < 1 {
				return fmt.Errorf("%w: steps must be a positive integer", errUsage)
			}
		}
		if err := migrations.Down(sqlDB, steps); err != nil {
			return err
		}
		okColor.Fprintf(out, "Rolled back %d migrations\n", steps)
	case "version":
		v, dirty, err := migrations.Version(sqlDB)
		if err != nil {
			return err
		}
		if dirty {
			warnColor.Fprintf(out, "Schema version %d (dirty)\n", v)
			return nil
		}
		okColor.Fprintf(out, "Schema version %d\n", v)
	default:
		return fmt.Errorf("%w: unknown migrate action %q", errUsage, args[0])
	}
	return nil
}
