package handlers

import (
	"net/http"
	"strconv"

	applog "posdash/internal/log"
	"posdash/internal/services"
	"posdash/internal/views/components"
	"posdash/internal/views/pages"
	"posdash/models"
)

const materialsPath = "/materials"

// Materials lists raw materials (GET) or creates one (POST).
func (h *Handler) Materials(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		screen := screenFromRequest(r)
		form := pages.Form{}
		kind, flash := "", ""
		if screen.Editing() {
			m, err := h.svc.Materials.Get(r.Context(), screen.TargetID)
			if err != nil {
				advance(r.Context(), &screen, pages.Cancel)
				kind, flash = components.FlashError, services.Message(err)
			} else {
				form.Set("name", m.Name)
				form.Set("stock", strconv.FormatFloat(m.Stock, 'f', -1, 64))
				form.Set("unit", string(m.Unit))
			}
		}
		h.renderMaterials(w, r, screen, form, http.StatusOK, kind, flash)
	case http.MethodPost:
		h.saveMaterial(w, r, 0)
	default:
		methodNotAllowed(w, r)
	}
}

// UpdateMaterial handles POST /materials/{id}.
func (h *Handler) UpdateMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.saveMaterial(w, r, id)
}

func (h *Handler) saveMaterial(w http.ResponseWriter, r *http.Request, id int64) {
	form, err := postedForm(r)
	if err != nil {
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}
	screen := submitting(r.Context(), id)
	show := func(status int, kind, flash string) {
		h.renderMaterials(w, r, screen, form, status, kind, flash)
	}

	name := form.Value("name")
	unit := models.Unit(form.Value("unit"))
	stock, err := parseFloatField(form, "stock", "Stock")
	if err != nil {
		h.complete(w, r, &screen, &form, materialsPath, err, "", show)
		return
	}

	var message string
	if id == 0 {
		_, err = h.svc.Materials.Create(r.Context(), services.MaterialInput{Name: name, Stock: stock, Unit: unit})
		message = "Material added"
	} else {
		_, err = h.svc.Materials.Update(r.Context(), id, services.MaterialPatch{Name: &name, Stock: &stock, Unit: &unit})
		message = "Material updated"
	}
	h.complete(w, r, &screen, &form, materialsPath, err, message, show)
}

// DeleteMaterial handles POST /materials/{id}/delete. Materials still used by
// a recipe are refused.
func (h *Handler) DeleteMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	screen := deleting(r.Context(), id)
	form := pages.Form{}
	_, err := h.svc.Materials.Delete(r.Context(), id)
	h.complete(w, r, &screen, &form, materialsPath, err, "Material deleted", func(status int, kind, flash string) {
		h.renderMaterials(w, r, screen, form, status, kind, flash)
	})
}

func (h *Handler) renderMaterials(w http.ResponseWriter, r *http.Request, screen pages.Screen, form pages.Form, status int, kind, flash string) {
	filters := pages.FiltersFromRequest(r)
	data := pages.MaterialsData{Chrome: h.chrome(r, "materials"), Screen: screen, Filters: filters, Form: form}
	if flash != "" {
		data.FlashKind, data.Flash = kind, flash
	}

	items, err := h.svc.Materials.List(r.Context(), filters.Options())
	if err != nil {
		applog.Error(r.Context(), "failed to list materials", "error", err)
		data.FlashKind, data.Flash = components.FlashError, services.Message(err)
	}
	data.Items = items
	renderStatus(w, r, status, pages.MaterialsPage(data), pages.MaterialsPartial(data))
}
