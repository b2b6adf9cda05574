package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"memberauth.org/internal/audit"
	"memberauth.org/internal/auth"
	"memberauth.org/internal/config"
	"memberauth.org/internal/migrate"
	"memberauth.org/internal/obs"
	"memberauth.org/internal/store/pg"
)

const usage = `usage: memberctl [-config file] <command> [flags]

commands:
  migrate up|down|status
  provision -email E -name N -password P
  authenticate -email E -password P
  withdraw -email E`

func main() {
	configPath := flag.String("config", os.Getenv("MEMBERAUTH_CONFIG"), "Path to YAML config")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := obs.Configure(os.Stderr, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, flag.Arg(0), flag.Args()[1:]); err != nil {
		log.WithError(err).Error(flag.Arg(0) + " failed")
		os.Exit(1)
	}
}

type app struct {
	cfg      *config.Config
	log      *logrus.Logger
	store    *pg.Store
	verifier auth.CredentialVerifier
}

func run(ctx context.Context, cfg *config.Config, log *logrus.Logger, cmd string, args []string) error {
	if cfg.Database.DSN == "" {
		return errors.New("missing DSN: provide via config file or MEMBERAUTH_PG_DSN")
	}
	store, err := pg.Open(cfg.Database.DSN)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer store.Close()

	verifier, err := auth.DefaultVerifier(cfg.Auth.PasswordScheme)
	if err != nil {
		return err
	}
	a := &app{cfg: cfg, log: log, store: store, verifier: verifier}

	switch cmd {
	case "migrate":
		return a.migrate(ctx, args)
	case "provision":
		return a.provision(ctx, args)
	case "authenticate":
		return a.authenticate(ctx, args)
	case "withdraw":
		return a.withdraw(ctx, args)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func (a *app) migrate(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errors.New("usage: migrate up|down|status")
	}
	mgr := migrate.NewManager(a.store.DB(), pg.Migrations, "migrations", migrate.WithLogger(a.log),
		migrate.WithMigrationsTable(a.cfg.Database.MigrationsTable))
	switch args[0] {
	case "up":
		_, err := mgr.Up(ctx)
		return err
	case "down":
		return mgr.Down(ctx)
	case "status":
		history, err := mgr.Status(ctx)
		if err != nil {
			return err
		}
		for _, item := range history {
			fmt.Println(item)
		}
		return nil
	default:
		return fmt.Errorf("unknown migrate command %q", args[0])
	}
}

func (a *app) provision(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("provision", flag.ContinueOnError)
	email := fs.String("email", "", "Login email")
	name := fs.String("name", "", "Full name")
	password := fs.String("password", "", "Initial password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	registrar, err := auth.NewRegistrar(a.store, a.verifier, a.cfg.Auth.AdminEmail)
	if err != nil {
		return err
	}
	account, err := registrar.Register(ctx, *email, *name, *password)
	if err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "account.provisioned", map[string]any{
		"account_id": account.ID,
		"email":      account.Identifier,
		"roles":      account.Roles,
	})
	fmt.Printf("%s %s %v\n", account.ID, account.Identifier, account.Roles)
	return nil
}

func (a *app) authenticate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("authenticate", flag.ContinueOnError)
	email := fs.String("email", "", "Login email")
	password := fs.String("password", "", "Password")
	if err := fs.Parse(args); err != nil {
		return err
	}

	// Each invocation is a single attempt, so no attempt limiter or metrics recorder is installed.
	provider, err := auth.NewPasswordProvider(a.store, a.verifier, auth.WithLogger(a.log))
	if err != nil {
		return err
	}

	identity, err := provider.Authenticate(ctx, *email, *password)
	if err != nil {
		var failure *auth.Failure
		if errors.As(err, &failure) {
			_ = audit.LogEvent(ctx, "auth.rejected", map[string]any{"email": *email, "kind": failure.Kind.String()})
			fmt.Fprintln(os.Stderr, failure.PublicMessage())
		}
		return err
	}
	ctx = auth.ContextWithIdentity(ctx, identity)
	_ = audit.LogEvent(ctx, "auth.authenticated", nil)

	if a.cfg.Auth.TokenSecret == "" {
		fmt.Println(identity.Identifier, identity.Authorities)
		return nil
	}
	issuer, err := auth.NewTokenIssuer(a.cfg.Auth.TokenSecret, a.cfg.Auth.TokenTTL)
	if err != nil {
		return err
	}
	token, expiresAt, err := issuer.Issue(identity)
	if err != nil {
		return err
	}
	fmt.Printf("%s\nexpires_at=%s\n", token, expiresAt.Format(time.RFC3339))
	return nil
}

func (a *app) withdraw(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("withdraw", flag.ContinueOnError)
	email := fs.String("email", "", "Login email")
	if err := fs.Parse(args); err != nil {
		return err
	}
	registrar, err := auth.NewRegistrar(a.store, a.verifier, a.cfg.Auth.AdminEmail)
	if err != nil {
		return err
	}
	if err := registrar.Withdraw(ctx, *email); err != nil {
		return err
	}
	_ = audit.LogEvent(ctx, "account.withdrawn", map[string]any{"email": *email})
	return nil
}
