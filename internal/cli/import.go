package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"posdash/internal/importer"
)

func newImportMaterialsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import-materials <file.csv|file.pdf>",
		Short: "Create or update materials from a stock sheet",
		Long: "Reads a CSV with a name,stock,unit header or a PDF with one \"name stock unit\" entry per line. " +
			"Materials are matched by name ignoring case; matches get the new stock and unit.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rows, err := readStockSheet(args[0])
			if err != nil {
				return err
			}
			return withEnvironment(cmd, func(env *environment) error {
				result, err := importer.ImportMaterials(cmd.Context(), env.svc.Materials, rows)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Imported %d materials from %s (%d created, %d updated)\n",
					result.Created+result.Updated, filepath.Base(args[0]), result.Created, result.Updated)
				return nil
			})
		},
	}
}

func readStockSheet(path string) ([]importer.MaterialRow, error) {
	if strings.EqualFold(filepath.Ext(path), ".pdf") {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read pdf: %w", err)
		}
		return importer.ReadMaterialsPDF(data)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	rows, err := importer.ReadMaterialsCSV(f)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	return rows, nil
}
