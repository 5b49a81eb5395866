package services

import (
	"context"

	"posdash/models"
)

// Summary feeds the dashboard cards.
type Summary struct {
	Profile    models.Profile `json:"profile"`
	Products   int64          `json:"products"`
	Categories int64          `json:"categories"`
	Materials  int64          `json:"materials"`
	Recipes    int64          `json:"recipes"`
	OutOfStock int64          `json:"out_of_stock"`
}

// Dashboard aggregates the counts shown on the landing page.
type Dashboard struct {
	auth       *Auth
	products   *Products
	categories *Categories
	materials  *Materials
	recipes    *Recipes
}

// Summary loads the profile of userID and the entity counts.
func (d *Dashboard) Summary(ctx context.Context, userID string) (Summary, error) {
	var (
		s   Summary
		err error
	)
	if s.Profile, err = d.auth.GetProfile(ctx, userID); err != nil {
		return Summary{}, err
	}
	if s.Products, err = d.products.Count(ctx); err != nil {
		return Summary{}, err
	}
	if s.Categories, err = d.categories.Count(ctx); err != nil {
		return Summary{}, err
	}
	if s.Materials, err = d.materials.Count(ctx); err != nil {
		return Summary{}, err
	}
	if s.Recipes, err = d.recipes.Count(ctx); err != nil {
		return Summary{}, err
	}
	if s.OutOfStock, err = d.materials.CountOutOfStock(ctx); err != nil {
		return Summary{}, err
	}
	return s, nil
}
