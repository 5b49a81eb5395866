package services

import (
	"context"
	"fmt"
	"strings"

	applog "posdash/internal/log"
	"posdash/models"
)

// MaxJoinRows is the largest recipes×materials input JoinRecipeLines is meant
// for. Larger inputs still work but are logged, as they belong in a database join.
const MaxJoinRows = 1000

// RecipeLine is one recipe row resolved against its material.
type RecipeLine struct {
	RecipeID     int64       `json:"recipe_id"`
	MaterialID   int64       `json:"material_id"`
	MaterialName string      `json:"material_name"`
	Unit         models.Unit `json:"unit"`
	Quantity     float64     `json:"quantity"`
	Found        bool        `json:"found"`
}

// Label renders the line as "name - quantity unit", or a placeholder naming
// the raw material id when the material no longer exists.
func (l RecipeLine) Label() string {
	if !l.Found {
		return l.MaterialName
	}
	return fmt.Sprintf("%s - %s %s", l.MaterialName, FormatQuantity(l.Quantity), l.Unit)
}

// JoinRecipeLines resolves each recipe's material by scanning materials. It
// costs O(len(recipes)·len(materials)); callers should keep both below
// MaxJoinRows. Input order is preserved.
func JoinRecipeLines(ctx context.Context, recipes []models.Recipe, materials []models.Material) []RecipeLine {
	if len(recipes) > MaxJoinRows || len(materials) > MaxJoinRows {
		applog.Warn(ctx, "recipe join above supported size", "recipes", len(recipes), "materials", len(materials), "max", MaxJoinRows)
	}

	lines := make([]RecipeLine, 0, len(recipes))
	for _, recipe := range recipes {
		line := RecipeLine{
			RecipeID:     recipe.ID,
			MaterialID:   recipe.MaterialID,
			Quantity:     recipe.QuantityNeeded,
			MaterialName: fmt.Sprintf("Material not found (ID: %d)", recipe.MaterialID),
		}
		for _, material := range materials {
			if material.ID == recipe.MaterialID {
				line.MaterialName = material.Name
				line.Unit = material.Unit
				line.Found = true
				break
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// FormatQuantity prints q without trailing zeros.
func FormatQuantity(q float64) string {
	return fmt.Sprintf("%g", q)
}

// RecipeRow is a recipe with the names of its product and material resolved.
type RecipeRow struct {
	Recipe       models.Recipe `json:"recipe"`
	ProductName  string        `json:"product_name"`
	MaterialName string        `json:"material_name"`
	Unit         models.Unit   `json:"unit"`
}

// RecipeFilter narrows the recipe overview. ProductID zero means any product.
type RecipeFilter struct {
	Search    string
	ProductID int64
}

// JoinRecipeRows resolves product and material names for each recipe using
// id lookups built once per call.
func JoinRecipeRows(recipes []models.Recipe, products []models.Product, materials []models.Material) []RecipeRow {
	productNames := make(map[int64]string, len(products))
	for _, p := range products {
		productNames[p.ID] = p.Name
	}
	materialsByID := make(map[int64]models.Material, len(materials))
	for _, m := range materials {
		materialsByID[m.ID] = m
	}

	rows := make([]RecipeRow, 0, len(recipes))
	for _, r := range recipes {
		row := RecipeRow{Recipe: r}
		if name, ok := productNames[r.ProductID]; ok {
			row.ProductName = name
		} else {
			row.ProductName = fmt.Sprintf("Product not found (ID: %d)", r.ProductID)
		}
		if m, ok := materialsByID[r.MaterialID]; ok {
			row.MaterialName = m.Name
			row.Unit = m.Unit
		} else {
			row.MaterialName = fmt.Sprintf("Material not found (ID: %d)", r.MaterialID)
		}
		rows = append(rows, row)
	}
	return rows
}

// FilterRecipeRows keeps rows whose product or material name contains
// f.Search, ignoring case, and that belong to f.ProductID when set.
func FilterRecipeRows(rows []RecipeRow, f RecipeFilter) []RecipeRow {
	needle := strings.ToLower(strings.TrimSpace(f.Search))
	if needle == "" && f.ProductID == 0 {
		return rows
	}
	filtered := make([]RecipeRow, 0, len(rows))
	for _, row := range rows {
		if f.ProductID != 0 && row.Recipe.ProductID != f.ProductID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(row.ProductName), needle) &&
			!strings.Contains(strings.ToLower(row.MaterialName), needle) {
			continue
		}
		filtered = append(filtered, row)
	}
	return filtered
}
