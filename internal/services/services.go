// Package services translates typed application requests into backend calls
// and backend results into typed values or *Error.
package services

import "posdash/internal/backend"

// Services bundles every domain service built on one backend client.
type Services struct {
	Auth       *Auth
	Categories *Categories
	Materials  *Materials
	Products   *Products
	Recipes    *Recipes
	Dashboard  *Dashboard
}

// New wires every service to client.
func New(client *backend.Client) *Services {
	s := &Services{
		Auth:       NewAuth(client),
		Categories: NewCategories(client),
		Materials:  NewMaterials(client),
		Products:   NewProducts(client),
		Recipes:    NewRecipes(client),
	}
	s.Dashboard = &Dashboard{
		auth:       s.Auth,
		products:   s.Products,
		categories: s.Categories,
		materials:  s.Materials,
		recipes:    s.Recipes,
	}
	return s
}
