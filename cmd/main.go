package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/yungbote/continuity-backend/internal/app"
	"github.com/yungbote/continuity-backend/internal/data/repos"
	"github.com/yungbote/continuity-backend/internal/platform/logger"
	"github.com/yungbote/continuity-backend/internal/services"
)

func main() {
	root := &cobra.Command{
		Use:           "continuity",
		Short:         "Knowledge continuity backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	}

	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context())
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create or update database tables and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate()
		},
	})

	var email, role string
	promoteCmd := &cobra.Command{
		Use:   "promote",
		Short: "Set the role of an existing user",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPromote(cmd.Context(), email, role)
		},
	}
	promoteCmd.Flags().StringVar(&email, "email", "", "Email of the user (required)")
	promoteCmd.Flags().StringVar(&role, "role", "admin", "admin, manager or employee")
	_ = promoteCmd.MarkFlagRequired("email")
	root.AddCommand(promoteCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() (app.Config, *logger.Logger, error) {
	cfg, err := app.LoadConfig()
	if err != nil {
		return app.Config{}, nil, err
	}
	log, err := app.NewLogger(cfg)
	if err != nil {
		return app.Config{}, nil, err
	}
	return cfg, log, nil
}

func runServe(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()
	defer func() {
		if r := recover(); r != nil {
			log.Fatal("Unrecovered panic", "panic", r)
		}
	}()

	a, err := app.New(ctx, log, cfg)
	if err != nil {
		log.Error("Startup failed", "error", err)
		return err
	}
	defer a.Close()

	log.Info("Starting server", "port", cfg.Port, "db_driver", cfg.DBDriver)
	return a.Run(ctx)
}

func runMigrate() error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	cfg.AutoMigrate = true
	store, err := app.OpenDatabase(log, cfg)
	if err != nil {
		return err
	}
	defer store.Close()
	log.Info("Migration complete", "db_driver", store.Driver())
	return nil
}

func runPromote(ctx context.Context, email, role string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := app.OpenDatabase(log, cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	userService := services.NewUserService(store.DB(), log, repos.NewUserRepo(store.DB(), log))
	u, err := userService.SetRole(ctx, email, role)
	if err != nil {
		return err
	}
	log.Info("User role updated", "user_id", u.ID, "role", u.Role)
	return nil
}
