package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"posdash/internal/db"
	"posdash/internal/importer"
)

func newSeedCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert categories, materials, products and recipes from a YAML file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(file)
			if err != nil {
				return fmt.Errorf("open fixtures: %w", err)
			}
			defer f.Close()
			fixtures, err := importer.LoadFixtures(f)
			if err != nil {
				return err
			}
			return withEnvironment(cmd, func(env *environment) error {
				if err := db.AutoMigrate(env.db); err != nil {
					return fmt.Errorf("auto migrate: %w", err)
				}
				result, err := importer.Seed(cmd.Context(), env.svc, fixtures)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d categories, %d materials, %d products and %d recipes\n",
					result.Categories, result.Materials, result.Products, result.Recipes)
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "fixtures.yaml", "fixtures file")
	return cmd
}
