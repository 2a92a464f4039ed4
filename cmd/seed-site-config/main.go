// Command seed-site-config writes the initial site configuration and,
// optionally, the first admin account.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/database"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/env"
	"github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/logging"
	authsvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/auth"
	sitesvc "github.com/marvinaduosei2-prog/desertport-autos-sub001/internal/service/site"

	"github.com/spf13/pflag"
)

type options struct {
	file          string
	force         bool
	adminEmail    string
	adminPassword string
	adminName     string
}

func parseFlags(args []string) (options, error) {
	var opts options
	flags := pflag.NewFlagSet("seed-site-config", pflag.ContinueOnError)
	flags.StringVarP(&opts.file, "file", "f", "site.yaml", "YAML document with the site sections")
	flags.BoolVar(&opts.force, "force", false, "replace an existing configuration")
	flags.StringVar(&opts.adminEmail, "admin-email", "", "create or promote this admin account")
	flags.StringVar(&opts.adminPassword, "admin-password", "", "password for --admin-email")
	flags.StringVar(&opts.adminName, "admin-name", "", "display name for --admin-email")

	if err := flags.Parse(args); err != nil {
		return options{}, err
	}
	if opts.adminEmail != "" && opts.adminPassword == "" {
		return options{}, errors.New("--admin-password is required with --admin-email")
	}
	return opts, nil
}

func main() {
	env.Load()
	logging.Setup("seed-site-config")

	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	if err := env.Require(env.AWSRegion); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, opts); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts options) error {
	sections, err := loadSections(opts.file)
	if err != nil {
		return err
	}

	db, err := database.NewDatabase(ctx)
	if err != nil {
		return fmt.Errorf("db init failed: %w", err)
	}

	adminID := ""
	if opts.adminEmail != "" {
		admin, err := authsvc.New(db).EnsureAdmin(ctx, authsvc.RegisterParams{
			Name:     opts.adminName,
			Email:    opts.adminEmail,
			Password: opts.adminPassword,
		})
		if err != nil {
			return fmt.Errorf("ensure admin: %w", err)
		}
		adminID = admin.UserID
		slog.Info("admin account ready", "email", admin.Email, "userId", admin.UserID)
	}

	result, err := sitesvc.New(db).Seed(ctx, adminID, sections, opts.force)
	if err != nil {
		return fmt.Errorf("seed site configuration: %w", err)
	}

	if result.Created {
		slog.Info("site configuration seeded", "version", result.Config.Version, "sections", len(result.Config.Sections))
	} else {
		slog.Info("site configuration already present, use --force to replace it", "version", result.Config.Version)
	}
	return nil
}
