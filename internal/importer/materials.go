// Package importer loads materials and demo fixtures into the dashboard
// tables through the domain services.
package importer

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ledongthuc/pdf"

	applog "posdash/internal/log"
	"posdash/internal/services"
	"posdash/models"
)

// MaterialRow is one parsed line of a stock sheet.
type MaterialRow struct {
	Line  int
	Name  string
	Stock float64
	Unit  models.Unit
}

// Result counts what an import changed.
type Result struct {
	Created int
	Updated int
}

// ReadMaterialsCSV parses a CSV with a name,stock,unit header. Column order is
// taken from the header; extra columns are ignored.
func ReadMaterialsCSV(r io.Reader) ([]MaterialRow, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, errors.New("csv is empty")
	}

	columns := map[string]int{}
	for idx, key := range rows[0] {
		columns[strings.ToLower(strings.TrimSpace(key))] = idx
	}
	for _, required := range []string{"name", "stock", "unit"} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("csv header is missing %q", required)
		}
	}

	out := make([]MaterialRow, 0, len(rows)-1)
	for idx, row := range rows[1:] {
		line := idx + 2
		get := func(key string) string {
			if col := columns[key]; col < len(row) {
				return strings.TrimSpace(row[col])
			}
			return ""
		}
		if get("name") == "" && get("stock") == "" && get("unit") == "" {
			continue
		}
		parsed, err := parseMaterial(line, get("name"), get("stock"), get("unit"))
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

// ReadMaterialsPDF extracts the text of a PDF stock sheet and parses one
// "name stock unit" entry per line.
func ReadMaterialsPDF(data []byte) ([]MaterialRow, error) {
	text, err := extractTextFromPDF(data)
	if err != nil {
		return nil, fmt.Errorf("read pdf: %w", err)
	}
	return ParseMaterialLines(text)
}

func extractTextFromPDF(data []byte) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return "", err
	}
	var builder strings.Builder
	numPages := reader.NumPage()
	for i := 1; i <= numPages; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			return "", err
		}
		builder.WriteString(text)
		builder.WriteString("\n")
	}
	return builder.String(), nil
}

// ParseMaterialLines reads "name stock unit" lines. The last two fields are
// the stock and unit; everything before them is the name. Lines whose stock
// is not numeric, such as headings, are skipped.
func ParseMaterialLines(text string) ([]MaterialRow, error) {
	var out []MaterialRow
	for idx, raw := range strings.Split(text, "\n") {
		fields := strings.Fields(raw)
		if len(fields) < 3 {
			continue
		}
		stock := fields[len(fields)-2]
		if _, err := strconv.ParseFloat(strings.ReplaceAll(stock, ",", ""), 64); err != nil {
			continue
		}
		name := strings.Join(fields[:len(fields)-2], " ")
		parsed, err := parseMaterial(idx+1, name, stock, fields[len(fields)-1])
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	if len(out) == 0 {
		return nil, errors.New("no material lines found")
	}
	return out, nil
}

func parseMaterial(line int, name, stock, unit string) (MaterialRow, error) {
	if name == "" {
		return MaterialRow{}, fmt.Errorf("line %d: name is required", line)
	}
	qty, err := strconv.ParseFloat(strings.ReplaceAll(stock, ",", ""), 64)
	if err != nil {
		return MaterialRow{}, fmt.Errorf("line %d (%s): stock %q is not a number", line, name, stock)
	}
	u, ok := models.ParseUnit(unit)
	if !ok {
		return MaterialRow{}, fmt.Errorf("line %d (%s): unknown unit %q", line, name, unit)
	}
	return MaterialRow{Line: line, Name: name, Stock: qty, Unit: u}, nil
}

// ImportMaterials creates each row or, when a material with the same name
// ignoring case exists, overwrites its stock and unit.
func ImportMaterials(ctx context.Context, materials *services.Materials, rows []MaterialRow) (Result, error) {
	var result Result
	for _, row := range rows {
		existing, err := materials.FindByName(ctx, row.Name)
		switch {
		case err == nil:
			stock, unit := row.Stock, row.Unit
			if _, err := materials.Update(ctx, existing.ID, services.MaterialPatch{Stock: &stock, Unit: &unit}); err != nil {
				return result, fmt.Errorf("line %d (%s): %w", row.Line, row.Name, err)
			}
			result.Updated++
		case errors.Is(err, services.ErrNotFound):
			if _, err := materials.Create(ctx, services.MaterialInput{Name: row.Name, Stock: row.Stock, Unit: row.Unit}); err != nil {
				return result, fmt.Errorf("line %d (%s): %w", row.Line, row.Name, err)
			}
			result.Created++
		default:
			return result, fmt.Errorf("line %d (%s): %w", row.Line, row.Name, err)
		}
	}
	applog.Info(ctx, "materials imported", "created", result.Created, "updated", result.Updated)
	return result, nil
}
