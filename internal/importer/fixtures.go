package importer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"posdash/internal/services"
	"posdash/models"
)

// Fixtures is the YAML seed document. Products name their category and
// recipes name their product and material.
type Fixtures struct {
	Categories []string          `yaml:"categories"`
	Materials  []MaterialFixture `yaml:"materials"`
	Products   []ProductFixture  `yaml:"products"`
	Recipes    []RecipeFixture   `yaml:"recipes"`
}

type MaterialFixture struct {
	Name  string  `yaml:"name"`
	Stock float64 `yaml:"stock"`
	Unit  string  `yaml:"unit"`
}

type ProductFixture struct {
	Name     string `yaml:"name"`
	Price    string `yaml:"price"`
	Category string `yaml:"category"`
}

type RecipeFixture struct {
	Product  string  `yaml:"product"`
	Material string  `yaml:"material"`
	Quantity float64 `yaml:"quantity"`
}

// SeedResult counts the rows Seed inserted.
type SeedResult struct {
	Categories int
	Materials  int
	Products   int
	Recipes    int
}

// LoadFixtures decodes a fixtures document, rejecting unknown keys.
func LoadFixtures(r io.Reader) (Fixtures, error) {
	var f Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return Fixtures{}, errors.New("fixtures file is empty")
		}
		return Fixtures{}, fmt.Errorf("decode fixtures: %w", err)
	}
	return f, nil
}

// Seed inserts the fixtures in dependency order. Names are matched without
// regard to case, against both existing rows and rows created earlier in the
// same run. Materials go through ImportMaterials so reseeding updates stock.
func Seed(ctx context.Context, svc *services.Services, f Fixtures) (SeedResult, error) {
	var result SeedResult

	categories, err := existingCategories(ctx, svc)
	if err != nil {
		return result, err
	}
	for _, name := range f.Categories {
		key := strings.ToLower(strings.TrimSpace(name))
		if _, ok := categories[key]; ok {
			continue
		}
		row, err := svc.Categories.Create(ctx, services.CategoryInput{Name: name})
		if err != nil {
			return result, fmt.Errorf("category %q: %w", name, err)
		}
		categories[key] = row.ID
		result.Categories++
	}

	rows := make([]MaterialRow, 0, len(f.Materials))
	for idx, m := range f.Materials {
		unit, ok := models.ParseUnit(m.Unit)
		if !ok {
			return result, fmt.Errorf("material %q: unknown unit %q", m.Name, m.Unit)
		}
		rows = append(rows, MaterialRow{Line: idx + 1, Name: m.Name, Stock: m.Stock, Unit: unit})
	}
	imported, err := ImportMaterials(ctx, svc.Materials, rows)
	if err != nil {
		return result, err
	}
	result.Materials = imported.Created

	products, err := existingProducts(ctx, svc)
	if err != nil {
		return result, err
	}
	for _, p := range f.Products {
		key := strings.ToLower(strings.TrimSpace(p.Name))
		if _, ok := products[key]; ok {
			continue
		}
		price, err := decimal.NewFromString(strings.TrimSpace(p.Price))
		if err != nil {
			return result, fmt.Errorf("product %q: price %q is not a number", p.Name, p.Price)
		}
		in := services.ProductInput{Name: p.Name, Price: price}
		if p.Category != "" {
			id, ok := categories[strings.ToLower(strings.TrimSpace(p.Category))]
			if !ok {
				return result, fmt.Errorf("product %q: unknown category %q", p.Name, p.Category)
			}
			in.CategoriesID = &id
		}
		row, err := svc.Products.Create(ctx, in, nil)
		if err != nil {
			return result, fmt.Errorf("product %q: %w", p.Name, err)
		}
		products[key] = row.ID
		result.Products++
	}

	for _, rec := range f.Recipes {
		productID, ok := products[strings.ToLower(strings.TrimSpace(rec.Product))]
		if !ok {
			return result, fmt.Errorf("recipe: unknown product %q", rec.Product)
		}
		material, err := svc.Materials.FindByName(ctx, strings.TrimSpace(rec.Material))
		if err != nil {
			return result, fmt.Errorf("recipe for %q: material %q: %w", rec.Product, rec.Material, err)
		}
		if _, err := svc.Recipes.Create(ctx, services.RecipeInput{
			ProductID:      productID,
			MaterialID:     material.ID,
			QuantityNeeded: rec.Quantity,
		}); err != nil {
			return result, fmt.Errorf("recipe %q/%q: %w", rec.Product, rec.Material, err)
		}
		result.Recipes++
	}
	return result, nil
}

func existingCategories(ctx context.Context, svc *services.Services) (map[string]int64, error) {
	rows, err := svc.Categories.List(ctx, services.ListOptions{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[strings.ToLower(row.Name)] = row.ID
	}
	return out, nil
}

func existingProducts(ctx context.Context, svc *services.Services) (map[string]int64, error) {
	rows, err := svc.Products.List(ctx, services.ListOptions{})
	if err != nil {
		return nil, err
	}
	out := make(map[string]int64, len(rows))
	for _, row := range rows {
		out[strings.ToLower(row.Name)] = row.ID
	}
	return out, nil
}
