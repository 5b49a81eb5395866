package services

import (
	"context"
	"math"

	"posdash/internal/backend"
	"posdash/models"
)

const recipesTable = "recipes"

// RecipeInput links a product to a material with the quantity one unit of
// the product consumes.
type RecipeInput struct {
	ProductID      int64   `json:"product_id"`
	MaterialID     int64   `json:"material_id"`
	QuantityNeeded float64 `json:"quantity_needed"`
}

// Validate requires both ids and a positive, finite quantity.
func (in RecipeInput) Validate() error {
	if in.ProductID <= 0 {
		return ValidationError("product_id", "Product is required")
	}
	if in.MaterialID <= 0 {
		return ValidationError("material_id", "Material is required")
	}
	return validQuantity(in.QuantityNeeded)
}

// RecipePatch updates only the non-nil fields.
type RecipePatch struct {
	ProductID      *int64   `json:"product_id"`
	MaterialID     *int64   `json:"material_id"`
	QuantityNeeded *float64 `json:"quantity_needed"`
}

func (p RecipePatch) values() (map[string]any, error) {
	values := map[string]any{}
	if p.ProductID != nil {
		if *p.ProductID <= 0 {
			return nil, ValidationError("product_id", "Product is required")
		}
		values["product_id"] = *p.ProductID
	}
	if p.MaterialID != nil {
		if *p.MaterialID <= 0 {
			return nil, ValidationError("material_id", "Material is required")
		}
		values["material_id"] = *p.MaterialID
	}
	if p.QuantityNeeded != nil {
		if err := validQuantity(*p.QuantityNeeded); err != nil {
			return nil, err
		}
		values["quantity_needed"] = *p.QuantityNeeded
	}
	return values, nil
}

func validQuantity(q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
		return ValidationError("quantity_needed", "Quantity needed must be greater than zero")
	}
	return nil
}

// Recipes manages the product to material bill of materials.
type Recipes struct {
	table     backend.Table[models.Recipe]
	products  backend.Table[models.Product]
	materials backend.Table[models.Material]
}

// NewRecipes returns the recipe service backed by client.
func NewRecipes(client *backend.Client) *Recipes {
	return &Recipes{
		table:     backend.From[models.Recipe](client, recipesTable),
		products:  backend.From[models.Product](client, productsTable),
		materials: backend.From[models.Material](client, materialsTable),
	}
}

// Create validates in and inserts a recipe row. Unknown product or
// material ids yield a Conflict error.
func (s *Recipes) Create(ctx context.Context, in RecipeInput) (models.Recipe, error) {
	if err := in.Validate(); err != nil {
		return models.Recipe{}, err
	}
	row := models.Recipe{ProductID: in.ProductID, MaterialID: in.MaterialID, QuantityNeeded: in.QuantityNeeded}
	if err := s.table.Insert(ctx, &row); err != nil {
		return models.Recipe{}, wrap("Failed to create recipe", err)
	}
	return row, nil
}

// List returns every recipe row ordered by id.
func (s *Recipes) List(ctx context.Context) ([]models.Recipe, error) {
	rows, err := s.table.Select(ctx, backend.Query{OrderBy: "id", Ascending: true})
	if err != nil {
		return nil, wrap("Failed to fetch recipes", err)
	}
	return rows, nil
}

// ListByProduct returns the recipe rows of one product ordered by id.
func (s *Recipes) ListByProduct(ctx context.Context, productID int64) ([]models.Recipe, error) {
	rows, err := s.table.Select(ctx, backend.Query{
		Filters:   []backend.Filter{backend.Eq("product_id", productID)},
		OrderBy:   "id",
		Ascending: true,
	})
	if err != nil {
		return nil, wrap("Failed to fetch product recipes", err)
	}
	return rows, nil
}

// Get returns the recipe row with id or a NotFound error.
func (s *Recipes) Get(ctx context.Context, id int64) (models.Recipe, error) {
	row, err := s.table.Single(ctx, backend.Eq("id", id))
	if err != nil {
		return models.Recipe{}, wrap("Recipe not found", err)
	}
	return row, nil
}

// Update applies patch to the recipe row with id and returns the stored row.
func (s *Recipes) Update(ctx context.Context, id int64, patch RecipePatch) (models.Recipe, error) {
	values, err := patch.values()
	if err != nil {
		return models.Recipe{}, err
	}
	row, err := s.table.Update(ctx, id, values)
	if err != nil {
		return models.Recipe{}, wrap("Failed to update recipe", err)
	}
	return row, nil
}

// Delete removes the recipe row with id.
func (s *Recipes) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, s.table, id, "Failed to delete recipe")
}

// Count returns the number of recipe rows.
func (s *Recipes) Count(ctx context.Context) (int64, error) {
	n, err := s.table.Count(ctx)
	if err != nil {
		return 0, wrap("Failed to count recipes", err)
	}
	return n, nil
}

// ProductRecipes is the recipe view of a single product.
type ProductRecipes struct {
	Product models.Product `json:"product"`
	Lines   []RecipeLine   `json:"lines"`
}

// ProductView loads a product, its recipe rows and all materials and joins them.
func (s *Recipes) ProductView(ctx context.Context, productID int64) (ProductRecipes, error) {
	product, err := s.products.Single(ctx, backend.Eq("id", productID))
	if err != nil {
		return ProductRecipes{}, wrap("Product not found", err)
	}
	recipes, err := s.ListByProduct(ctx, productID)
	if err != nil {
		return ProductRecipes{}, err
	}
	materials, err := s.materials.Select(ctx, backend.Query{OrderBy: "id", Ascending: true})
	if err != nil {
		return ProductRecipes{}, wrap("Failed to fetch materials", err)
	}
	return ProductRecipes{Product: product, Lines: JoinRecipeLines(ctx, recipes, materials)}, nil
}

// Overview joins every recipe with its product and material and applies f.
func (s *Recipes) Overview(ctx context.Context, f RecipeFilter) ([]RecipeRow, error) {
	recipes, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	products, err := s.products.Select(ctx, backend.Query{OrderBy: "name", Ascending: true})
	if err != nil {
		return nil, wrap("Failed to fetch products", err)
	}
	materials, err := s.materials.Select(ctx, backend.Query{OrderBy: "name", Ascending: true})
	if err != nil {
		return nil, wrap("Failed to fetch materials", err)
	}
	return FilterRecipeRows(JoinRecipeRows(recipes, products, materials), f), nil
}
