package services

import (
	"context"
	"math"
	"strings"

	"posdash/internal/backend"
	"posdash/models"
)

const materialsTable = "raw_materials"

var materialSortColumns = []string{"id", "name", "stock", "unit", "created_at"}

// MaterialInput is the payload for creating a raw material.
type MaterialInput struct {
	Name  string      `json:"name"`
	Stock float64     `json:"stock"`
	Unit  models.Unit `json:"unit"`
}

// Validate requires a name, a non-negative stock and a known unit.
func (in MaterialInput) Validate() error {
	if err := required("name", in.Name); err != nil {
		return err
	}
	if err := validStock(in.Stock); err != nil {
		return err
	}
	return validUnit(in.Unit)
}

// MaterialPatch updates only the non-nil fields.
type MaterialPatch struct {
	Name  *string      `json:"name"`
	Stock *float64     `json:"stock"`
	Unit  *models.Unit `json:"unit"`
}

func (p MaterialPatch) values() (map[string]any, error) {
	values := map[string]any{}
	if p.Name != nil {
		if err := required("name", *p.Name); err != nil {
			return nil, err
		}
		values["name"] = *p.Name
	}
	if p.Stock != nil {
		if err := validStock(*p.Stock); err != nil {
			return nil, err
		}
		values["stock"] = *p.Stock
	}
	if p.Unit != nil {
		if err := validUnit(*p.Unit); err != nil {
			return nil, err
		}
		values["unit"] = string(*p.Unit)
	}
	return values, nil
}

func validStock(stock float64) error {
	if math.IsNaN(stock) || math.IsInf(stock, 0) || stock < 0 {
		return ValidationError("stock", "Stock must be zero or a positive number")
	}
	return nil
}

func validUnit(unit models.Unit) error {
	if unit == "" {
		return ValidationError("unit", "Unit is required")
	}
	if !models.ValidUnit(string(unit)) {
		return ValidationError("unit", "Unit must be one of pcs, ml, gr, kg, liter, box, pack")
	}
	return nil
}

// Materials manages raw materials and their stock.
type Materials struct {
	table backend.Table[models.Material]
}

// NewMaterials returns the material service backed by client.
func NewMaterials(client *backend.Client) *Materials {
	return &Materials{table: backend.From[models.Material](client, materialsTable)}
}

// Create validates in and inserts a new material.
func (s *Materials) Create(ctx context.Context, in MaterialInput) (models.Material, error) {
	if err := in.Validate(); err != nil {
		return models.Material{}, err
	}
	row := models.Material{Name: in.Name, Stock: in.Stock, Unit: in.Unit}
	if err := s.table.Insert(ctx, &row); err != nil {
		return models.Material{}, wrap("Failed to create material", err)
	}
	return row, nil
}

// List returns materials filtered, sorted and limited by opts.
func (s *Materials) List(ctx context.Context, opts ListOptions) ([]models.Material, error) {
	q, err := opts.query(materialSortColumns)
	if err != nil {
		return nil, err
	}
	rows, err := s.table.Select(ctx, q)
	if err != nil {
		return nil, wrap("Failed to fetch materials", err)
	}
	return rows, nil
}

// Get returns the material with id or a NotFound error.
func (s *Materials) Get(ctx context.Context, id int64) (models.Material, error) {
	row, err := s.table.Single(ctx, backend.Eq("id", id))
	if err != nil {
		return models.Material{}, wrap("Material not found", err)
	}
	return row, nil
}

// FindByName returns the material whose name matches exactly, ignoring case.
func (s *Materials) FindByName(ctx context.Context, name string) (models.Material, error) {
	rows, err := s.table.Select(ctx, backend.Query{
		Filters:   []backend.Filter{backend.ILike("name", name)},
		OrderBy:   "id",
		Ascending: true,
	})
	if err != nil {
		return models.Material{}, wrap("Failed to fetch materials", err)
	}
	for _, row := range rows {
		if strings.EqualFold(row.Name, name) {
			return row, nil
		}
	}
	return models.Material{}, wrap("Material not found", backend.ErrNoRows)
}

// Update applies patch to the material with id and returns the stored row.
func (s *Materials) Update(ctx context.Context, id int64, patch MaterialPatch) (models.Material, error) {
	values, err := patch.values()
	if err != nil {
		return models.Material{}, err
	}
	row, err := s.table.Update(ctx, id, values)
	if err != nil {
		return models.Material{}, wrap("Failed to update material", err)
	}
	return row, nil
}

// Delete removes the material with id. Materials used by a recipe cannot
// be deleted and yield a Conflict error.
func (s *Materials) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, s.table, id, "Failed to delete material")
}

// Count returns the number of materials.
func (s *Materials) Count(ctx context.Context) (int64, error) {
	n, err := s.table.Count(ctx)
	if err != nil {
		return 0, wrap("Failed to count materials", err)
	}
	return n, nil
}

// CountOutOfStock returns how many materials have no stock left.
func (s *Materials) CountOutOfStock(ctx context.Context) (int64, error) {
	n, err := s.table.Count(ctx, backend.Eq("stock", 0))
	if err != nil {
		return 0, wrap("Failed to count materials", err)
	}
	return n, nil
}
