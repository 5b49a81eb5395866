package handlers

import (
	"net/http"
	"strconv"

	applog "posdash/internal/log"
	"posdash/internal/services"
	"posdash/internal/views/components"
	"posdash/internal/views/pages"
)

const recipesPath = "/recipes"

// Recipes lists recipe lines joined with product and material names (GET)
// or creates one (POST).
func (h *Handler) Recipes(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		screen := screenFromRequest(r)
		form := pages.Form{}
		kind, flash := "", ""
		if screen.Editing() {
			rec, err := h.svc.Recipes.Get(r.Context(), screen.TargetID)
			if err != nil {
				advance(r.Context(), &screen, pages.Cancel)
				kind, flash = components.FlashError, services.Message(err)
			} else {
				form.Set("product_id", components.Itoa(rec.ProductID))
				form.Set("material_id", components.Itoa(rec.MaterialID))
				form.Set("quantity_needed", strconv.FormatFloat(rec.QuantityNeeded, 'f', -1, 64))
			}
		} else if screen.State == pages.FormOpen {
			if pid := pages.FiltersFromRequest(r).ProductID; pid > 0 {
				form.Set("product_id", components.Itoa(pid))
			}
		}
		h.renderRecipes(w, r, screen, form, http.StatusOK, kind, flash)
	case http.MethodPost:
		h.saveRecipe(w, r, 0)
	default:
		methodNotAllowed(w, r)
	}
}

// UpdateRecipe handles POST /recipes/{id}.
func (h *Handler) UpdateRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.saveRecipe(w, r, id)
}

func (h *Handler) saveRecipe(w http.ResponseWriter, r *http.Request, id int64) {
	form, err := postedForm(r)
	if err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	screen := submitting(r.Context(), id)
	show := func(status int, kind, flash string) {
		h.renderRecipes(w, r, screen, form, status, kind, flash)
	}

	in, err := recipeInputFromForm(form)
	if err != nil {
		h.complete(w, r, &screen, &form, recipesPath, err, "", show)
		return
	}

	var message string
	if id == 0 {
		_, err = h.svc.Recipes.Create(r.Context(), in)
		message = "Recipe added"
	} else {
		_, err = h.svc.Recipes.Update(r.Context(), id, services.RecipePatch{
			ProductID:      &in.ProductID,
			MaterialID:     &in.MaterialID,
			QuantityNeeded: &in.QuantityNeeded,
		})
		message = "Recipe updated"
	}
	h.complete(w, r, &screen, &form, recipesPath, err, message, show)
}

func recipeInputFromForm(form pages.Form) (services.RecipeInput, error) {
	productID, err := parseIDField(form, "product_id", "Product")
	if err != nil {
		return services.RecipeInput{}, err
	}
	materialID, err := parseIDField(form, "material_id", "Material")
	if err != nil {
		return services.RecipeInput{}, err
	}
	qty, err := parseFloatField(form, "quantity_needed", "Quantity")
	if err != nil {
		return services.RecipeInput{}, err
	}
	return services.RecipeInput{ProductID: productID, MaterialID: materialID, QuantityNeeded: qty}, nil
}

// DeleteRecipe handles POST /recipes/{id}/delete.
func (h *Handler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	screen := deleting(r.Context(), id)
	form := pages.Form{}
	_, err := h.svc.Recipes.Delete(r.Context(), id)
	h.complete(w, r, &screen, &form, recipesPath, err, "Recipe deleted", func(status int, kind, flash string) {
		h.renderRecipes(w, r, screen, form, status, kind, flash)
	})
}

func (h *Handler) renderRecipes(w http.ResponseWriter, r *http.Request, screen pages.Screen, form pages.Form, status int, kind, flash string) {
	ctx := r.Context()
	filters := pages.FiltersFromRequest(r)
	data := pages.RecipesData{Chrome: h.chrome(r, "recipes"), Screen: screen, Filters: filters, Form: form}
	if flash != "" {
		data.FlashKind, data.Flash = kind, flash
	}

	rows, err := h.svc.Recipes.Overview(ctx, filters.RecipeFilter())
	if err != nil {
		applog.Error(ctx, "failed to load recipes", "error", err)
		data.FlashKind, data.Flash = components.FlashError, services.Message(err)
	}
	data.Rows = rows

	byName := services.ListOptions{SortBy: "name", Order: services.Asc}
	if data.Products, err = h.svc.Products.List(ctx, byName); err != nil {
		applog.Error(ctx, "failed to list products for recipes", "error", err)
	}
	if data.Materials, err = h.svc.Materials.List(ctx, byName); err != nil {
		applog.Error(ctx, "failed to list materials for recipes", "error", err)
	}
	renderStatus(w, r, status, pages.RecipesPage(data), pages.RecipesPartial(data))
}
