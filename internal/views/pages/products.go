package pages

import (
	"github.com/a-h/templ"

	"posdash/internal/services"
	"posdash/internal/views/components"
	"posdash/models"
)

type ProductsData struct {
	Chrome
	Screen     Screen
	Filters    ListFilters
	Items      []models.Product
	Categories []models.Category
	Form       Form
	// Recipe is set when the recipe modal for one product is open.
	Recipe *services.ProductRecipes
}

// CategoryOptions lists categories for the product form.
func CategoryOptions(categories []models.Category) []components.Option {
	opts := make([]components.Option, 0, len(categories))
	for _, c := range categories {
		opts = append(opts, components.Option{Value: components.Itoa(c.ID), Label: c.Name})
	}
	return opts
}

func ProductsPage(data ProductsData) templ.Component {
	return dashboardShell("Products", data.Chrome, ProductsPartial(data))
}

func ProductsPartial(data ProductsData) templ.Component {
	const base = "/products"
	return components.Func(func(h *components.HTML) {
		screenSection(h, "products", data.Screen)
		pageHeader(h, "Products", base+"?form=new", "Add product")
		h.Render(components.Flash(data.FlashKind, data.Flash))
		h.Render(components.SearchBox(base, data.Filters.Query, "Search products..."))

		if data.Screen.State == FormOpen {
			imageField := components.Field{Label: "Product image", Name: "image", Type: "file", Error: data.Form.Error("image")}
			if data.Screen.Editing() {
				imageField.Label = "Replace image"
			}
			entityForm(h, formTitle(data.Screen, "product"), formAction(base, data.Screen), listHref(base, data.Filters),
				submitLabel(data.Screen, "product"), true,
				components.Field{Label: "Product name", Name: "name", Value: data.Form.Value("name"), Required: true, Error: data.Form.Error("name")},
				components.Field{Label: "Price", Name: "price", Type: "number", Step: "0.01", Value: data.Form.Value("price"), Required: true, Error: data.Form.Error("price")},
				components.Field{Label: "Category", Name: "categories_id", Value: data.Form.Value("categories_id"), Error: data.Form.Error("categories_id"), Options: CategoryOptions(data.Categories)},
				imageField,
			)
		}

		if len(data.Items) == 0 {
			emptyState(h, "No products yet. Add a product to get started.")
		} else {
			tableStart(h, "No", "Name", "Category", "Price", "Image", "Actions")
			for i, p := range data.Items {
				h.Raw(`<tr`).Attr("data-id", components.Itoa(p.ID)).Raw(`>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(components.Itoa(int64(i + 1))).Raw(`</td>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(p.Name).Raw(`</td>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(CategoryName(data.Categories, p.CategoriesID)).Raw(`</td>`)
				h.Raw(`<td class="` + cellClass + `">`).Text(FormatPrice(p.Price)).Raw(`</td>`)
				h.Raw(`<td class="` + cellClass + `">`)
				if p.Image != nil && *p.Image != "" {
					h.Raw(`<img class="mx-auto h-24 w-24 rounded object-cover"`).URL("src", *p.Image).Attr("alt", p.Name).Raw(`>`)
				} else {
					h.Raw(`<div class="mx-auto flex h-12 w-12 items-center justify-center rounded-full bg-gray-700 text-white">`).Text(Initial(p.Name)).Raw(`</div>`)
				}
				h.Raw(`</td>`)
				h.Raw(`<td class="border px-4 py-2 text-center space-x-2">`)
				h.Render(components.ActionLink("Recipe", base+"/"+components.Itoa(p.ID)+"/recipes", "rounded bg-blue-500 px-2 py-1 text-sm font-semibold text-white hover:bg-blue-700"))
				h.Render(components.ActionLink("Edit", base+"?edit="+components.Itoa(p.ID), editButton))
				h.Render(components.ActionLink("Delete", base+"?delete="+components.Itoa(p.ID), deleteButton))
				h.Raw(`</td></tr>`)
			}
			tableEnd(h)
		}

		if data.Screen.State == ConfirmingDelete {
			what := "this product"
			if p, ok := FindByID(data.Items, data.Screen.TargetID, func(p models.Product) int64 { return p.ID }); ok {
				what = `"` + p.Name + `"`
			}
			h.Render(components.ConfirmDelete(what, deleteAction(base, data.Screen.TargetID), listHref(base, data.Filters)))
		}
		if data.Recipe != nil {
			h.Render(RecipeModal(*data.Recipe, listHref(base, data.Filters)))
		}
		h.Raw(`</section>`)
	})
}

// RecipeModal lists the materials a product needs. Missing materials keep
// their placeholder label.
func RecipeModal(view services.ProductRecipes, closeHref string) templ.Component {
	return components.Modal("Recipe: "+view.Product.Name, components.Func(func(h *components.HTML) {
		if len(view.Lines) == 0 {
			h.Raw(`<p class="mb-4 text-gray-500" data-empty="true">This product has no recipe yet.</p>`)
		} else {
			h.Raw(`<ul class="mb-4 list-disc pl-6" data-recipe-lines="`).Text(components.Itoa(int64(len(view.Lines)))).Raw(`">`)
			for _, line := range view.Lines {
				h.Raw(`<li`)
				if !line.Found {
					h.Attr("class", "text-red-600").Attr("data-missing", "true")
				}
				h.Raw(`>`).Text(line.Label()).Raw(`</li>`)
			}
			h.Raw(`</ul>`)
		}
		h.Raw(`<div class="flex justify-end">`)
		h.Render(components.ActionLink("Close", closeHref, secondaryButton))
		h.Raw(`</div>`)
	}))
}
