package pages

import (
	"github.com/a-h/templ"

	"posdash/internal/views/components"
	"posdash/models"
)

type MaterialsData struct {
	Chrome
	Screen  Screen
	Filters ListFilters
	Items   []models.Material
	Form    Form
}

// UnitOptions lists the stock units for the material form.
func UnitOptions() []components.Option {
	opts := make([]components.Option, 0, len(models.Units))
	for _, u := range models.Units {
		opts = append(opts, components.Option{Value: string(u), Label: u.Label()})
	}
	return opts
}

func MaterialsPage(data MaterialsData) templ.Component {
	return dashboardShell("Materials", data.Chrome, MaterialsPartial(data))
}

func MaterialsPartial(data MaterialsData) templ.Component {
	const base = "/materials"
	return components.Func(func(h *components.HTML) {
		screenSection(h, "materials", data.Screen)
		pageHeader(h, "Raw Materials", base+"?form=new", "Add material")
		h.Render(components.Flash(data.FlashKind, data.Flash))
		h.Render(components.SearchBox(base, data.Filters.Query, "Search materials..."))

		if data.Screen.State == FormOpen {
			entityForm(h, formTitle(data.Screen, "material"), formAction(base, data.Screen), listHref(base, data.Filters),
				submitLabel(data.Screen, "material"), false,
				components.Field{Label: "Material name", Name: "name", Value: data.Form.Value("name"), Required: true, Error: data.Form.Error("name")},
				components.Field{Label: "Stock", Name: "stock", Type: "number", Step: "any", Value: data.Form.Value("stock"), Required: true, Error: data.Form.Error("stock")},
				components.Field{Label: "Unit", Name: "unit", Value: data.Form.Value("unit"), Required: true, Error: data.Form.Error("unit"), Options: UnitOptions()},
			)
		}

		if len(data.Items) == 0 {
			emptyState(h, "No raw materials yet. Add one to get started.")
		} else {
			tableStart(h, "No", "Name", "Stock", "Unit", "Actions")
			for i, m := range data.Items {
				h.Raw(`<tr`).Attr("data-id", components.Itoa(m.ID))
				if m.Stock == 0 {
					h.Attr("data-out-of-stock", "true").Attr("class", "bg-red-50 dark:bg-red-950")
				}
				h.Raw(`>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(components.Itoa(int64(i + 1))).Raw(`</td>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(m.Name).Raw(`</td>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(formatNumber(m.Stock)).Raw(`</td>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(DefaultDash(m.Unit.Label())).Raw(`</td>`)
				rowActions(h, base, m.ID)
				h.Raw(`</tr>`)
			}
			tableEnd(h)
		}

		if data.Screen.State == ConfirmingDelete {
			what := "this material"
			if m, ok := FindByID(data.Items, data.Screen.TargetID, func(m models.Material) int64 { return m.ID }); ok {
				what = `"` + m.Name + `"`
			}
			h.Render(components.ConfirmDelete(what, deleteAction(base, data.Screen.TargetID), listHref(base, data.Filters)))
		}
		h.Raw(`</section>`)
	})
}
