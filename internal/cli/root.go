// Package cli implements posadmin, the operator command line for migrations,
// seeding and bulk material imports.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"posdash/internal/backend"
	"posdash/internal/config"
	"posdash/internal/db"
	applog "posdash/internal/log"
	"posdash/internal/services"
)

// environment is what every subcommand works against.
type environment struct {
	db  *gorm.DB
	svc *services.Services
}

// openEnvironment connects to the configured database. Tests replace it.
var openEnvironment = func(ctx context.Context) (*environment, func(), error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if err := applog.SetLevel(cfg.Logging.Level); err != nil {
		return nil, nil, err
	}
	if cfg.Database.URL == "" {
		return nil, nil, errors.New("DATABASE_URL is required")
	}
	database, err := db.Initialize(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeDB := func() {
		if sqlDB, err := database.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	client, err := backend.New(backend.Config{
		DB:         database,
		StorageDir: cfg.Storage.Dir,
		PublicURL:  cfg.Server.PublicURL,
		Auth: backend.AuthConfig{
			Secret:                   []byte(cfg.Auth.JWTSecret),
			AccessTokenTTL:           cfg.Auth.AccessTokenTTL,
			RecoveryTokenTTL:         cfg.Auth.RecoveryTokenTTL,
			RequireEmailConfirmation: cfg.Auth.RequireEmailConfirmation,
		},
	})
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	return &environment{db: database, svc: services.New(client)}, closeDB, nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "posadmin",
		Short:         "Operate the POS dashboard database",
		Long:          "posadmin migrates the schema, seeds demo data, imports stock sheets and creates admin accounts.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newMigrateCmd(), newSeedCmd(), newImportMaterialsCmd(), newCreateAdminCmd())
	return root
}

// Execute runs the CLI with the process arguments.
func Execute(ctx context.Context) error {
	return newRootCmd().ExecuteContext(ctx)
}

// withEnvironment opens the environment for the duration of fn.
func withEnvironment(cmd *cobra.Command, fn func(env *environment) error) error {
	env, closeEnv, err := openEnvironment(cmd.Context())
	if err != nil {
		return err
	}
	defer closeEnv()
	return fn(env)
}
