package pages

import (
	"github.com/a-h/templ"

	"posdash/internal/services"
	"posdash/internal/views/components"
	"posdash/models"
)

type RecipesData struct {
	Chrome
	Screen    Screen
	Filters   ListFilters
	Rows      []services.RecipeRow
	Products  []models.Product
	Materials []models.Material
	Form      Form
}

func ProductOptions(products []models.Product) []components.Option {
	opts := make([]components.Option, 0, len(products))
	for _, p := range products {
		opts = append(opts, components.Option{Value: components.Itoa(p.ID), Label: p.Name})
	}
	return opts
}

func MaterialOptions(materials []models.Material) []components.Option {
	opts := make([]components.Option, 0, len(materials))
	for _, m := range materials {
		opts = append(opts, components.Option{Value: components.Itoa(m.ID), Label: m.Name + " (" + string(m.Unit) + ")"})
	}
	return opts
}

func RecipesPage(data RecipesData) templ.Component {
	return dashboardShell("Recipes", data.Chrome, RecipesPartial(data))
}

func RecipesPartial(data RecipesData) templ.Component {
	const base = "/recipes"
	return components.Func(func(h *components.HTML) {
		screenSection(h, "recipes", data.Screen)
		pageHeader(h, "Recipes", base+"?form=new", "Add recipe")
		h.Render(components.Flash(data.FlashKind, data.Flash))
		recipeFilters(h, base, data)

		if data.Screen.State == FormOpen {
			entityForm(h, formTitle(data.Screen, "recipe"), formAction(base, data.Screen), listHref(base, data.Filters),
				submitLabel(data.Screen, "recipe"), false,
				components.Field{Label: "Product", Name: "product_id", Value: data.Form.Value("product_id"), Required: true, Error: data.Form.Error("product_id"), Options: ProductOptions(data.Products)},
				components.Field{Label: "Material", Name: "material_id", Value: data.Form.Value("material_id"), Required: true, Error: data.Form.Error("material_id"), Options: MaterialOptions(data.Materials)},
				components.Field{Label: "Quantity needed", Name: "quantity_needed", Type: "number", Step: "any", Value: data.Form.Value("quantity_needed"), Required: true, Error: data.Form.Error("quantity_needed")},
			)
		}

		if len(data.Rows) == 0 {
			emptyState(h, "No recipes found.")
		} else {
			tableStart(h, "No", "Product", "Material", "Quantity", "Actions")
			for i, row := range data.Rows {
				h.Raw(`<tr`).Attr("data-id", components.Itoa(row.Recipe.ID)).Raw(`>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(components.Itoa(int64(i + 1))).Raw(`</td>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(row.ProductName).Raw(`</td>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(row.MaterialName).Raw(`</td>`)
				qty := services.FormatQuantity(row.Recipe.QuantityNeeded)
				if row.Unit != "" {
					qty += " " + string(row.Unit)
				}
				h.Raw(`<td class="` + cellClass + `">`).Text(qty).Raw(`</td>`)
				rowActions(h, base, row.Recipe.ID)
				h.Raw(`</tr>`)
			}
			tableEnd(h)
		}

		if data.Screen.State == ConfirmingDelete {
			what := "this recipe"
			if row, ok := FindByID(data.Rows, data.Screen.TargetID, func(r services.RecipeRow) int64 { return r.Recipe.ID }); ok {
				what = row.MaterialName + " for " + row.ProductName
			}
			h.Render(components.ConfirmDelete(what, deleteAction(base, data.Screen.TargetID), listHref(base, data.Filters)))
		}
		h.Raw(`</section>`)
	})
}

// recipeFilters writes the search box plus the product filter.
func recipeFilters(h *components.HTML, base string, data RecipesData) {
	h.Raw(`<form method="get" class="mb-4 flex gap-2"`).URL("action", base).
		Attr("hx-get", base).Attr("hx-target", "#page").Attr("hx-push-url", "true").Raw(`>`)
	h.Raw(`<input type="search" name="q" class="w-full rounded-lg border px-4 py-2 dark:bg-gray-700" placeholder="Search product or material..."`).
		Attr("value", data.Filters.Query).Raw(`>`)
	h.Raw(`<select name="product_id" class="rounded-lg border px-4 py-2 dark:bg-gray-700"><option value="">All products</option>`)
	for _, p := range data.Products {
		h.Raw(`<option`).Attr("value", components.Itoa(p.ID)).AttrIf(p.ID == data.Filters.ProductID, "selected").Raw(`>`).Text(p.Name).Raw(`</option>`)
	}
	h.Raw(`</select><button type="submit" class="rounded-lg bg-gray-600 px-4 py-2 text-white">Filter</button></form>`)
}
