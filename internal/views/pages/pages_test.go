package pages

import (
	"bytes"
	"context"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/shopspring/decimal"

	"posdash/internal/services"
	"posdash/internal/views/components"
	"posdash/models"
)

func renderHTML(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(context.Background(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func mustContain(t *testing.T, html string, parts ...string) {
	t.Helper()
	for _, part := range parts {
		if !strings.Contains(html, part) {
			t.Fatalf("expected %q in output:\n%s", part, html)
		}
	}
}

func mustNotContain(t *testing.T, html string, parts ...string) {
	t.Helper()
	for _, part := range parts {
		if strings.Contains(html, part) {
			t.Fatalf("did not expect %q in output", part)
		}
	}
}

func testChrome(active string) Chrome {
	return Chrome{Sidebar: components.SidebarData{Active: active, Username: "kasir", Role: models.RoleAdmin, Links: components.NavLinks}}
}

func TestCategoriesPartialIdle(t *testing.T) {
	t.Parallel()

	html := renderHTML(t, CategoriesPartial(CategoriesData{
		Items: []models.Category{{ID: 1, Name: "Coffee"}, {ID: 2, Name: "Pastry"}},
	}))
	mustContain(t, html, `data-screen="idle"`, "Coffee", "Pastry", `/categories?edit=2`, `/categories?delete=1`)
	mustNotContain(t, html, `data-form="entity"`, `role="dialog"`)
}

func TestCategoriesPartialEditForm(t *testing.T) {
	t.Parallel()

	form := NewForm(url.Values{"name": {"Tea"}})
	form.Fail("name", "Name is required")
	html := renderHTML(t, CategoriesPartial(CategoriesData{
		Screen: Screen{State: FormOpen, TargetID: 4},
		Items:  []models.Category{{ID: 4, Name: "Tea"}},
		Form:   form,
	}))
	mustContain(t, html, `data-screen="form-open"`, `action="/categories/4"`, "Update category", "Name is required")
}

func TestCategoriesPartialEmptyAndConfirmDelete(t *testing.T) {
	t.Parallel()

	html := renderHTML(t, CategoriesPartial(CategoriesData{}))
	mustContain(t, html, `data-empty="true"`)

	html = renderHTML(t, CategoriesPartial(CategoriesData{
		Screen: Screen{State: ConfirmingDelete, TargetID: 2},
		Items:  []models.Category{{ID: 2, Name: "Pastry"}},
	}))
	mustContain(t, html, `role="dialog"`, `action="/categories/2/delete"`, "&#34;Pastry&#34;")
}

func TestCategoriesPageIncludesSidebar(t *testing.T) {
	t.Parallel()

	html := renderHTML(t, CategoriesPage(CategoriesData{Chrome: testChrome("categories")}))
	mustContain(t, html, "<!DOCTYPE html>", `id="sidebar"`, `data-nav-section="categories"`, "kasir")
}

func TestMaterialsPartialMarksOutOfStock(t *testing.T) {
	t.Parallel()

	html := renderHTML(t, MaterialsPartial(MaterialsData{
		Screen: Screen{State: FormOpen},
		Items: []models.Material{
			{ID: 1, Name: "Milk", Stock: 2.5, Unit: models.UnitLiter},
			{ID: 2, Name: "Sugar", Stock: 0, Unit: models.UnitGram},
		},
	}))
	mustContain(t, html, `data-out-of-stock="true"`, "2.5", "Gram (gr)", `name="unit"`, `value="ml"`, "Save material")
	if strings.Count(html, `data-out-of-stock`) != 1 {
		t.Fatalf("expected exactly one out-of-stock row")
	}
}

func TestProductsPartialRendersRows(t *testing.T) {
	t.Parallel()

	category := int64(1)
	image := "http://localhost/storage/v1/object/public/products/1_latte.png"
	html := renderHTML(t, ProductsPartial(ProductsData{
		Screen:     Screen{State: FormOpen},
		Categories: []models.Category{{ID: 1, Name: "Coffee"}},
		Items: []models.Product{
			{ID: 1, Name: "Latte", Price: decimal.NewFromInt(25000), CategoriesID: &category, Image: &image},
			{ID: 2, Name: "bagel", Price: decimal.RequireFromString("12500.5")},
		},
	}))
	mustContain(t, html,
		`enctype="multipart/form-data"`, `type="file"`, `name="categories_id"`,
		"Rp 25,000", "Rp 12,500.50", "Coffee", image, ">B</div>", `/products/1/recipes`,
	)
}

func TestRecipeModalShowsPlaceholderForMissingMaterial(t *testing.T) {
	t.Parallel()

	view := services.ProductRecipes{
		Product: models.Product{ID: 5, Name: "Latte"},
		Lines: []services.RecipeLine{
			{RecipeID: 1, MaterialID: 2, MaterialName: "Milk", Unit: models.UnitML, Quantity: 150, Found: true},
			{RecipeID: 2, MaterialID: 9, MaterialName: "Material not found (ID: 9)", Quantity: 1},
		},
	}
	html := renderHTML(t, ProductsPartial(ProductsData{Items: []models.Product{view.Product}, Recipe: &view}))
	mustContain(t, html, "Recipe: Latte", "Milk - 150 ml", "Material not found (ID: 9)", `data-missing="true"`, `data-recipe-lines="2"`)

	empty := renderHTML(t, RecipeModal(services.ProductRecipes{Product: view.Product}, "/products"))
	mustContain(t, empty, "no recipe yet")
}

func TestRecipesPartialFiltersAndForm(t *testing.T) {
	t.Parallel()

	data := RecipesData{
		Screen:    Screen{State: FormOpen, TargetID: 3},
		Filters:   ListFilters{Query: "milk", ProductID: 5},
		Products:  []models.Product{{ID: 5, Name: "Latte"}},
		Materials: []models.Material{{ID: 2, Name: "Milk", Unit: models.UnitML}},
		Rows: []services.RecipeRow{{
			Recipe:       models.Recipe{ID: 3, ProductID: 5, MaterialID: 2, QuantityNeeded: 150},
			ProductName:  "Latte",
			MaterialName: "Milk",
			Unit:         models.UnitML,
		}},
		Form: NewForm(url.Values{"product_id": {"5"}, "material_id": {"2"}, "quantity_needed": {"150"}}),
	}
	html := renderHTML(t, RecipesPartial(data))
	mustContain(t, html,
		`action="/recipes/3"`, `value="5" selected`, "Milk (ml)", "150 ml",
		`href="/recipes?q=milk&amp;product_id=5"`,
	)
}

func TestDashboardPartialShowsCounts(t *testing.T) {
	t.Parallel()

	html := renderHTML(t, DashboardPage(DashboardData{
		Chrome: testChrome("dashboard"),
		Summary: services.Summary{
			Profile:  models.Profile{Username: "kasir", Role: models.RoleAdmin},
			Products: 4, Categories: 3, Materials: 6, Recipes: 9, OutOfStock: 1,
		},
	}))
	mustContain(t, html, `data-stat="Products"`, ">4<", ">9<", `data-stat="Out of stock"`, "Welcome back")
}

func TestAuthPages(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		c    templ.Component
		want []string
	}{
		{"login", LoginPage(AuthData{Email: "a@b.co", Error: "Incorrect email or password"}), []string{`action="/auth/login"`, `value="a@b.co"`, "Incorrect email or password", "/auth/reset-password"}},
		{"register", RegisterPartial(AuthData{Username: "kasir"}), []string{`action="/auth/register"`, `name="username"`, `value="kasir"`}},
		{"reset", ResetPasswordPartial(AuthData{Message: "Check your email"}), []string{`action="/auth/reset-password"`, "Check your email"}},
		{"update", UpdatePasswordPartial(AuthData{}), []string{`action="/auth/update-password"`, `name="confirm"`}},
	}
	for _, tt := range cases {
		html := renderHTML(t, tt.c)
		mustContain(t, html, tt.want...)
	}
}

func TestLandingLinksToAuth(t *testing.T) {
	t.Parallel()

	html := renderHTML(t, Landing())
	mustContain(t, html, `href="/auth/login"`, `href="/auth/register"`)
	mustNotContain(t, html, `id="sidebar"`)
}

func TestFiltersFromRequest(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest("GET", "/recipes?q=+Milk+&sort=name&order=ASC&product_id=7", nil)
	f := FiltersFromRequest(req)
	if f.Query != "Milk" || f.SortBy != "name" || f.Order != "asc" || f.ProductID != 7 {
		t.Fatalf("unexpected filters %+v", f)
	}
	opts := f.Options()
	if opts.Search != "Milk" || opts.Order != services.Asc {
		t.Fatalf("unexpected options %+v", opts)
	}
	if rf := f.RecipeFilter(); rf.ProductID != 7 || rf.Search != "Milk" {
		t.Fatalf("unexpected recipe filter %+v", rf)
	}
	if got := (ListFilters{Query: "oat milk"}).Encode(); got != "q=oat+milk" {
		t.Fatalf("Encode = %q", got)
	}
	if FiltersFromRequest(nil) != (ListFilters{}) {
		t.Fatalf("nil request should give empty filters")
	}
}

func TestDisplayHelpers(t *testing.T) {
	t.Parallel()

	prices := map[string]string{
		"0":         "Rp 0",
		"999":       "Rp 999",
		"1000":      "Rp 1,000",
		"1234567.8": "Rp 1,234,567.80",
		"-2500":     "Rp -2,500",
	}
	for in, want := range prices {
		if got := FormatPrice(decimal.RequireFromString(in)); got != want {
			t.Fatalf("FormatPrice(%s) = %q, want %q", in, got, want)
		}
	}
	if got := FormatStock(models.Material{Stock: 1.5, Unit: models.UnitKG}); got != "1.5 kg" {
		t.Fatalf("FormatStock = %q", got)
	}
	if DefaultDash(" ") != "—" || DefaultDash("x") != "x" {
		t.Fatalf("DefaultDash mismatch")
	}
	id := int64(3)
	if CategoryName(nil, &id) != "—" || CategoryName(nil, nil) != "—" {
		t.Fatalf("CategoryName should fall back to a dash")
	}
	if Initial("  éclair") != "É" || Initial("") != "?" {
		t.Fatalf("Initial mismatch")
	}
}

func TestFormCopiesValues(t *testing.T) {
	t.Parallel()

	src := url.Values{"name": {"Tea"}}
	f := NewForm(src)
	f.Set("name", "Coffee")
	if src.Get("name") != "Tea" || f.Value("name") != "Coffee" {
		t.Fatalf("form should not alias the source values")
	}
	if f.HasErrors() {
		t.Fatalf("new form should have no errors")
	}
	f.Fail("name", "taken")
	if !f.HasErrors() || f.Error("name") != "taken" {
		t.Fatalf("Fail did not record the error")
	}
}
