// Command admin performs operator tasks against the LearnScripture database:
// creating accounts, resetting passwords and running migrations.
//
// Usage:
//
//	admin createaccount -username NAME -email ADDRESS [-moderator]
//	admin resetpassword -username NAME
//	admin migrate up|down|status|version
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/jmoiron/sqlx"
	"github.com/phrazzld/learnscripture-api/internal/config"
	"github.com/phrazzld/learnscripture-api/internal/events"
	"github.com/phrazzld/learnscripture-api/internal/platform/logger"
	"github.com/phrazzld/learnscripture-api/internal/platform/postgres"
	"github.com/phrazzld/learnscripture-api/internal/service"
	"github.com/phrazzld/learnscripture-api/internal/service/auth"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1], os.Args[2:]); err != nil {
		fmt.Fprintf(os.Stderr, "admin: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: admin createaccount|resetpassword|migrate [flags]")
}

func run(ctx context.Context, cmd string, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	l, err := logger.Setup(cfg.Server)
	if err != nil {
		return fmt.Errorf("failed to set up logger: %w", err)
	}

	db, err := postgres.Open(ctx, cfg.Database)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if cmd == "migrate" {
		if len(args) != 1 {
			return fmt.Errorf("migrate needs exactly one command, e.g. up")
		}
		return postgres.Migrate(ctx, db.DB, args[0], l)
	}

	accounts, err := newAccountService(cfg, db, l)
	if err != nil {
		return err
	}
	prompt := newTerminalPrompt(os.Stdin, os.Stderr)

	switch cmd {
	case "createaccount":
		return createAccount(ctx, accounts, prompt, args, os.Stdout)
	case "resetpassword":
		return resetPassword(ctx, accounts, prompt, args, os.Stdout)
	default:
		usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func newAccountService(cfg *config.Config, db *sqlx.DB, l *slog.Logger) (service.AccountService, error) {
	jwt, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	deps := service.Deps{
		UoW: postgres.NewUnitOfWork(db),
		// Award recomputation for referrers is left to the server.
		Emitter: events.NewInMemoryEventEmitter(l),
		Logger:  l,
	}
	return service.NewAccountService(deps, jwt, auth.NewBcryptVerifier(cfg.Auth.BCryptCost), cfg.Auth), nil
}
