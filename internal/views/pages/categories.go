package pages

import (
	"github.com/a-h/templ"

	"posdash/internal/views/components"
	"posdash/models"
)

type CategoriesData struct {
	Chrome
	Screen  Screen
	Filters ListFilters
	Items   []models.Category
	Form    Form
}

func CategoriesPage(data CategoriesData) templ.Component {
	return dashboardShell("Categories", data.Chrome, CategoriesPartial(data))
}

func CategoriesPartial(data CategoriesData) templ.Component {
	const base = "/categories"
	return components.Func(func(h *components.HTML) {
		screenSection(h, "categories", data.Screen)
		pageHeader(h, "Categories", base+"?form=new", "Add category")
		h.Render(components.Flash(data.FlashKind, data.Flash))
		h.Render(components.SearchBox(base, data.Filters.Query, "Search categories..."))

		if data.Screen.State == FormOpen {
			entityForm(h, formTitle(data.Screen, "category"), formAction(base, data.Screen), listHref(base, data.Filters),
				submitLabel(data.Screen, "category"), false,
				components.Field{Label: "Category name", Name: "name", Value: data.Form.Value("name"), Required: true, Error: data.Form.Error("name")},
			)
		}

		if len(data.Items) == 0 {
			emptyState(h, "No categories yet. Add one to get started.")
		} else {
			tableStart(h, "No", "Name", "Created", "Actions")
			for i, c := range data.Items {
				h.Raw(`<tr`).Attr("data-id", components.Itoa(c.ID)).Raw(`>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(components.Itoa(int64(i + 1))).Raw(`</td>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(c.Name).Raw(`</td>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(FormatDate(c.CreatedAt)).Raw(`</td>`)
				rowActions(h, base, c.ID)
				h.Raw(`</tr>`)
			}
			tableEnd(h)
		}

		if data.Screen.State == ConfirmingDelete {
			what := "this category"
			if c, ok := FindByID(data.Items, data.Screen.TargetID, func(c models.Category) int64 { return c.ID }); ok {
				what = `"` + c.Name + `"`
			}
			h.Render(components.ConfirmDelete(what, deleteAction(base, data.Screen.TargetID), listHref(base, data.Filters)))
		}
		h.Raw(`</section>`)
	})
}
