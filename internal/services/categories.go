package services

import (
	"context"

	"posdash/internal/backend"
	"posdash/models"
)

const categoriesTable = "categories"

var categorySortColumns = []string{"id", "name", "created_at"}

// CategoryInput is the payload for creating a category.
type CategoryInput struct {
	Name string `json:"name"`
}

// Validate requires a non-blank name.
func (in CategoryInput) Validate() error {
	return required("name", in.Name)
}

// CategoryPatch updates only the non-nil fields.
type CategoryPatch struct {
	Name *string `json:"name"`
}

func (p CategoryPatch) values() (map[string]any, error) {
	values := map[string]any{}
	if p.Name != nil {
		if err := required("name", *p.Name); err != nil {
			return nil, err
		}
		values["name"] = *p.Name
	}
	return values, nil
}

// Categories manages product categories.
type Categories struct {
	table backend.Table[models.Category]
}

// NewCategories returns the category service backed by client.
func NewCategories(client *backend.Client) *Categories {
	return &Categories{table: backend.From[models.Category](client, categoriesTable)}
}

// Create validates in and inserts a new category.
func (s *Categories) Create(ctx context.Context, in CategoryInput) (models.Category, error) {
	if err := in.Validate(); err != nil {
		return models.Category{}, err
	}
	row := models.Category{Name: in.Name}
	if err := s.table.Insert(ctx, &row); err != nil {
		return models.Category{}, wrap("Failed to create category", err)
	}
	return row, nil
}

// List returns categories filtered, sorted and limited by opts.
func (s *Categories) List(ctx context.Context, opts ListOptions) ([]models.Category, error) {
	q, err := opts.query(categorySortColumns)
	if err != nil {
		return nil, err
	}
	rows, err := s.table.Select(ctx, q)
	if err != nil {
		return nil, wrap("Failed to fetch categories", err)
	}
	return rows, nil
}

// Get returns the category with id or a NotFound error.
func (s *Categories) Get(ctx context.Context, id int64) (models.Category, error) {
	row, err := s.table.Single(ctx, backend.Eq("id", id))
	if err != nil {
		return models.Category{}, wrap("Category not found", err)
	}
	return row, nil
}

// Update applies patch to the category with id and returns the stored row.
// An empty patch returns the row unchanged.
func (s *Categories) Update(ctx context.Context, id int64, patch CategoryPatch) (models.Category, error) {
	values, err := patch.values()
	if err != nil {
		return models.Category{}, err
	}
	row, err := s.table.Update(ctx, id, values)
	if err != nil {
		return models.Category{}, wrap("Failed to update category", err)
	}
	return row, nil
}

// Delete removes the category with id, reporting NotFound when no row
// matched. Products in the category are kept and lose the link.
func (s *Categories) Delete(ctx context.Context, id int64) (bool, error) {
	return deleteByID(ctx, s.table, id, "Failed to delete category")
}

// Count returns the number of categories.
func (s *Categories) Count(ctx context.Context) (int64, error) {
	n, err := s.table.Count(ctx)
	if err != nil {
		return 0, wrap("Failed to count categories", err)
	}
	return n, nil
}

func deleteByID[T any](ctx context.Context, table backend.Table[T], id int64, prefix string) (bool, error) {
	removed, err := table.Delete(ctx, backend.Eq("id", id))
	if err != nil {
		return false, wrap(prefix, err)
	}
	if removed == 0 {
		return false, wrap(prefix, backend.ErrNoRows)
	}
	return true, nil
}
