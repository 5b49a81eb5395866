package models

// All returns every model managed by the schema migration, parents first.
func All() []any {
	return []any{
		&Identity{},
		&Profile{},
		&Category{},
		&Material{},
		&Product{},
		&Recipe{},
	}
}
