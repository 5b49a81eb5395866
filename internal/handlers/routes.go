package handlers

import "github.com/go-chi/chi/v5"

// Routes registers the browser pages. Entity screens post back to their list
// path for create, to /{id} for update and to /{id}/delete for delete.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/", h.Home)
	r.Get("/healthz", h.Health)
	r.HandleFunc("/auth/login", h.Login)
	r.HandleFunc("/auth/register", h.Signup)
	r.HandleFunc("/auth/reset-password", h.ResetPassword)
	r.HandleFunc("/auth/update-password", h.UpdatePassword)
	r.HandleFunc("/auth/confirm", h.ConfirmEmail)
	r.HandleFunc("/auth/logout", h.Logout)

	r.Group(func(r chi.Router) {
		r.Use(h.RequireAuthentication)
		r.Get(dashboardPath, h.Dashboard)

		r.HandleFunc(categoriesPath, h.Categories)
		r.Post(categoriesPath+"/{id}", h.UpdateCategory)
		r.Post(categoriesPath+"/{id}/delete", h.DeleteCategory)

		r.HandleFunc(materialsPath, h.Materials)
		r.Post(materialsPath+"/{id}", h.UpdateMaterial)
		r.Post(materialsPath+"/{id}/delete", h.DeleteMaterial)

		r.HandleFunc(productsPath, h.Products)
		r.Post(productsPath+"/{id}", h.UpdateProduct)
		r.Post(productsPath+"/{id}/delete", h.DeleteProduct)
		r.Get(productsPath+"/{id}/recipes", h.ProductRecipe)

		r.HandleFunc(recipesPath, h.Recipes)
		r.Post(recipesPath+"/{id}", h.UpdateRecipe)
		r.Post(recipesPath+"/{id}/delete", h.DeleteRecipe)
	})
}
