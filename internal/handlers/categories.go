package handlers

import (
	"net/http"

	applog "posdash/internal/log"
	"posdash/internal/services"
	"posdash/internal/views/components"
	"posdash/internal/views/pages"
)

const categoriesPath = "/categories"

// Categories lists categories (GET) or creates one (POST).
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		screen := screenFromRequest(r)
		form := pages.Form{}
		kind, flash := "", ""
		if screen.Editing() {
			c, err := h.svc.Categories.Get(r.Context(), screen.TargetID)
			if err != nil {
				advance(r.Context(), &screen, pages.Cancel)
				kind, flash = components.FlashError, services.Message(err)
			} else {
				form.Set("name", c.Name)
			}
		}
		h.renderCategories(w, r, screen, form, http.StatusOK, kind, flash)
	case http.MethodPost:
		h.saveCategory(w, r, 0)
	default:
		methodNotAllowed(w, r)
	}
}

// UpdateCategory handles POST /categories/{id}.
func (h *Handler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.saveCategory(w, r, id)
}

func (h *Handler) saveCategory(w http.ResponseWriter, r *http.Request, id int64) {
	form, err := postedForm(r)
	if err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	screen := submitting(r.Context(), id)
	name := form.Value("name")

	var message string
	if id == 0 {
		_, err = h.svc.Categories.Create(r.Context(), services.CategoryInput{Name: name})
		message = "Category added"
	} else {
		_, err = h.svc.Categories.Update(r.Context(), id, services.CategoryPatch{Name: &name})
		message = "Category updated"
	}
	h.complete(w, r, &screen, &form, categoriesPath, err, message, func(status int, kind, flash string) {
		h.renderCategories(w, r, screen, form, status, kind, flash)
	})
}

// DeleteCategory handles POST /categories/{id}/delete.
func (h *Handler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	screen := deleting(r.Context(), id)
	form := pages.Form{}
	_, err := h.svc.Categories.Delete(r.Context(), id)
	h.complete(w, r, &screen, &form, categoriesPath, err, "Category deleted", func(status int, kind, flash string) {
		h.renderCategories(w, r, screen, form, status, kind, flash)
	})
}

func (h *Handler) renderCategories(w http.ResponseWriter, r *http.Request, screen pages.Screen, form pages.Form, status int, kind, flash string) {
	filters := pages.FiltersFromRequest(r)
	data := pages.CategoriesData{Chrome: h.chrome(r, "categories"), Screen: screen, Filters: filters, Form: form}
	if flash != "" {
		data.FlashKind, data.Flash = kind, flash
	}

	items, err := h.svc.Categories.List(r.Context(), filters.Options())
	if err != nil {
		applog.Error(r.Context(), "failed to list categories", "error", err)
		data.FlashKind, data.Flash = components.FlashError, services.Message(err)
	}
	data.Items = items
	renderStatus(w, r, status, pages.CategoriesPage(data), pages.CategoriesPartial(data))
}
