package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"storefront/internal/config"
	"storefront/internal/database"
	"storefront/internal/logging"
	"storefront/pkg/rabbitmq"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"
)

// newRootCmd creates the storefront command. Without a subcommand it serves.
func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "storefront",
		Short:         "Online storefront with accounts, cart and checkout",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	rootCmd.AddCommand(
		newServeCommand(),
		newSeedCommand(),
		newPromoteCommand(),
	)
	return rootCmd
}

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}
}

func newSeedCommand() *cobra.Command {
	var adminEmail, adminPassword string
	cmd := &cobra.Command{
		Use:   "seed",
		Args:  cobra.NoArgs,
		Short: "Create the admin account and load the sample catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *application) error {
				if err := seedAdmin(ctx, a.users, adminEmail, adminPassword, a.log); err != nil {
					return err
				}
				n, err := seedCatalog(ctx, a.products, a.log)
				if err != nil {
					return err
				}
				a.log.WithFields(logrus.Fields{"admin": adminEmail, "products": n}).Info("database seeded")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&adminEmail, "admin-email", "admin@example.com", "email of the admin account")
	cmd.Flags().StringVar(&adminPassword, "admin-password", "", "password of the admin account (required)")
	_ = cmd.MarkFlagRequired("admin-password")
	return cmd
}

func newPromoteCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "promote <email>",
		Args:  cobra.ExactArgs(1),
		Short: "Grant the admin role to an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(ctx context.Context, a *application) error {
				user, err := a.users.GetByEmail(ctx, args[0])
				if err != nil {
					return fmt.Errorf("cannot promote %s: %w", args[0], err)
				}
				return a.users.Promote(ctx, user.ID)
			})
		},
	}
}

// bootstrap loads configuration, builds the logger and opens the database.
func bootstrap() (*config.Config, *logrus.Logger, *gorm.DB, error) {
	cfg, err := config.Load(viper.New())
	if err != nil {
		return nil, nil, nil, err
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseDSN, log)
	if err != nil {
		return nil, nil, nil, err
	}
	if err := database.Migrate(db); err != nil {
		return nil, nil, nil, err
	}
	return cfg, log, db, nil
}

// withApp runs fn against a fully wired application and closes it afterwards.
func withApp(ctx context.Context, fn func(context.Context, *application) error) error {
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, log, db, err := bootstrap()
	if err != nil {
		return err
	}
	a, err := newApp(ctx, cfg, log, db)
	if err != nil {
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.Close()
		}
		return err
	}
	defer a.close()
	return fn(ctx, a)
}

func runServe(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withApp(ctx, func(ctx context.Context, a *application) error {
		go a.sweepSessions(ctx, time.Minute)

		if a.mq != nil {
			if err := a.mq.ConsumeOrderEvents(rabbitmq.LogOrderPlaced(a.log)); err != nil {
				a.log.WithError(err).Warn("failed to start order event consumer")
			}
		}

		errCh := make(chan error, 1)
		go func() {
			a.log.WithField("addr", a.cfg.AppPort).Info("starting server")
			errCh <- a.http.Listen(a.cfg.AppPort)
		}()

		select {
		case err := <-errCh:
			return fmt.Errorf("server failed: %w", err)
		case <-ctx.Done():
		}

		a.log.Info("shutting down server")
		if err := a.http.ShutdownWithTimeout(10 * time.Second); err != nil {
			a.log.WithError(err).Warn("error during shutdown")
		}
		a.log.Info("server gracefully stopped")
		return nil
	})
}
