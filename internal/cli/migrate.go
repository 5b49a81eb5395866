package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"posdash/internal/db"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update every table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnvironment(cmd, func(env *environment) error {
				if err := db.AutoMigrate(env.db); err != nil {
					return fmt.Errorf("auto migrate: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Schema is up to date")
				return nil
			})
		},
	}
}
