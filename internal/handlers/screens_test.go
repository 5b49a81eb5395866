package handlers

import (
	"bytes"
	"context"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"net/url"
	"strings"
	"testing"

	applog "posdash/internal/log"
	"posdash/internal/views/components"
	"posdash/internal/views/pages"
)

func TestCategoryLifecycle(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	rr := app.get(t, "/categories?form=new")
	if !strings.Contains(rr.Body.String(), `data-screen="form-open"`) {
		t.Fatalf("expected open form")
	}

	rr = app.post(t, "/categories", url.Values{"name": {"Tea"}})
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != categoriesPath {
		t.Fatalf("create = %d %q", rr.Code, rr.Header().Get("Location"))
	}
	rr = app.get(t, "/categories")
	body := rr.Body.String()
	if !strings.Contains(body, "Tea") || !strings.Contains(body, "Category added") || !strings.Contains(body, `data-screen="idle"`) {
		t.Fatalf("expected new category and flash: %s", body)
	}

	tea := findCategory(t, app, "Tea")
	id := components.Itoa(tea.ID)
	rr = app.get(t, "/categories?edit="+id)
	if !strings.Contains(rr.Body.String(), `value="Tea"`) || !strings.Contains(rr.Body.String(), `action="/categories/`+id+`"`) {
		t.Fatalf("expected prefilled edit form")
	}

	if rr = app.post(t, "/categories/"+id, url.Values{"name": {"Herbal Tea"}}); rr.Code != http.StatusSeeOther {
		t.Fatalf("update = %d", rr.Code)
	}
	if got, _ := app.svc.Categories.Get(context.Background(), tea.ID); got.Name != "Herbal Tea" {
		t.Fatalf("category name = %q", got.Name)
	}

	rr = app.get(t, "/categories?delete="+id)
	if !strings.Contains(rr.Body.String(), `data-screen="confirming-delete"`) {
		t.Fatalf("expected delete confirmation")
	}
	if rr = app.post(t, "/categories/"+id+"/delete", nil); rr.Code != http.StatusSeeOther {
		t.Fatalf("delete = %d", rr.Code)
	}
	if _, err := app.svc.Categories.Get(context.Background(), tea.ID); err == nil {
		t.Fatal("expected category to be deleted")
	}
}

func TestCategoryValidationReopensForm(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	rr := app.post(t, "/categories", url.Values{"name": {"  "}})
	if rr.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `data-screen="form-open"`) || !strings.Contains(body, `data-field-error="name"`) {
		t.Fatalf("expected form with field error: %s", body)
	}

	req := httpPostForm("/categories", url.Values{"name": {""}})
	req.Header.Set("HX-Request", "true")
	rr = app.do(t, req)
	if rr.Code != http.StatusOK || strings.Contains(rr.Body.String(), "<!DOCTYPE html>") {
		t.Fatalf("HTMX failure should render the partial with 200, got %d", rr.Code)
	}
}

func TestHTMXCreateRendersListInPlace(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	req := httpPostForm("/categories", url.Values{"name": {"Desserts"}})
	req.Header.Set("HX-Request", "true")
	rr := app.do(t, req)
	if rr.Code != http.StatusOK || rr.Header().Get("HX-Push-Url") != categoriesPath {
		t.Fatalf("HTMX create = %d push %q", rr.Code, rr.Header().Get("HX-Push-Url"))
	}
	if !strings.Contains(rr.Body.String(), "Desserts") || !strings.Contains(rr.Body.String(), "Category added") {
		t.Fatalf("expected list with flash")
	}
}

func TestDeleteMissingCategoryShowsError(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	rr := app.post(t, "/categories/99999/delete", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `data-flash="error"`) || !strings.Contains(rr.Body.String(), `data-screen="idle"`) {
		t.Fatalf("expected error flash on idle list")
	}
}

func TestCategorySearch(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	rr := app.htmxGet(t, "/categories?q=coff")
	body := rr.Body.String()
	if !strings.Contains(body, "Coffee") || !strings.Contains(body, "Non-Coffee") || strings.Contains(body, "Snacks") {
		t.Fatalf("unexpected search result: %s", body)
	}
	if strings.Contains(body, "<!DOCTYPE html>") {
		t.Fatal("HTMX request should get the partial")
	}
}

func TestMaterialFormValidatesStock(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	rr := app.post(t, "/materials", url.Values{"name": {"Cocoa"}, "stock": {"lots"}, "unit": {"gr"}})
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), "Stock must be a number") {
		t.Fatalf("expected stock error, got %d", rr.Code)
	}

	rr = app.post(t, "/materials", url.Values{"name": {"Cocoa"}, "stock": {"500"}, "unit": {"bucket"}})
	if !strings.Contains(rr.Body.String(), `data-field-error="unit"`) {
		t.Fatalf("expected unit error: %s", rr.Body.String())
	}

	rr = app.post(t, "/materials", url.Values{"name": {"Cocoa"}, "stock": {"500"}, "unit": {"gr"}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create material = %d", rr.Code)
	}
	m, err := app.svc.Materials.FindByName(context.Background(), "cocoa")
	if err != nil || m.Stock != 500 {
		t.Fatalf("FindByName = %+v, %v", m, err)
	}
}

func TestMaterialsMarkOutOfStock(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	rr := app.get(t, "/materials")
	if strings.Count(rr.Body.String(), `data-out-of-stock="true"`) != 1 {
		t.Fatalf("expected exactly the seeded croissant dough to be out of stock")
	}
}

func multipartProduct(t *testing.T, fields map[string]string, filename, contentType string, image []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if filename != "" {
		header := textproto.MIMEHeader{}
		header.Set("Content-Disposition", `form-data; name="image"; filename="`+filename+`"`)
		header.Set("Content-Type", contentType)
		part, err := mw.CreatePart(header)
		if err != nil {
			t.Fatalf("create part: %v", err)
		}
		if _, err := part.Write(image); err != nil {
			t.Fatalf("write image: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/products", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestProductCreateWithImage(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	coffee := findCategory(t, app, "Coffee")
	req := multipartProduct(t, map[string]string{
		"name":          "Mocha",
		"price":         "30000",
		"categories_id": components.Itoa(coffee.ID),
	}, "mocha.png", "image/png", []byte("\x89PNG fake"))
	rr := app.do(t, req)
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create product = %d: %s", rr.Code, rr.Body.String())
	}

	mocha := findProduct(t, app, "Mocha")
	if mocha.Image == nil || !strings.HasPrefix(*mocha.Image, "http://pos.test/storage/v1/object/public/products/") || !strings.HasSuffix(*mocha.Image, "_mocha.png") {
		t.Fatalf("unexpected image url %v", mocha.Image)
	}
	if mocha.CategoriesID == nil || *mocha.CategoriesID != coffee.ID {
		t.Fatalf("unexpected category %v", mocha.CategoriesID)
	}

	rr = app.get(t, "/products")
	if !strings.Contains(rr.Body.String(), "Rp 30,000") || !strings.Contains(rr.Body.String(), *mocha.Image) {
		t.Fatalf("expected product row with price and image")
	}
}

func TestProductRejectsNonImageUpload(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	req := multipartProduct(t, map[string]string{"name": "Menu", "price": "1000"}, "menu.pdf", "application/pdf", []byte("%PDF"))
	rr := app.do(t, req)
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), "Only image files") {
		t.Fatalf("expected image validation error, got %d", rr.Code)
	}
}

func TestProductWithoutImageAndPriceValidation(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	rr := app.post(t, "/products", url.Values{"name": {"Water"}, "price": {"abc"}})
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), "Price must be a number") {
		t.Fatalf("expected price error, got %d", rr.Code)
	}

	rr = app.post(t, "/products", url.Values{"name": {"Water"}, "price": {"5000"}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create without image = %d: %s", rr.Code, rr.Body.String())
	}
	if water := findProduct(t, app, "Water"); water.Image != nil || water.CategoriesID != nil {
		t.Fatalf("unexpected optional fields %+v", water)
	}
}

func TestProductRecipeModal(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	latte := findProduct(t, app, "Caffe Latte")
	rr := app.get(t, "/products/"+components.Itoa(latte.ID)+"/recipes")
	body := rr.Body.String()
	for _, want := range []string{"Recipe: Caffe Latte", "Fresh Milk - 150 ml", "Espresso Beans - 18 gr", `data-recipe-lines="3"`} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in recipe modal", want)
		}
	}

	rr = app.get(t, "/products/99999/recipes")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing product recipe = %d", rr.Code)
	}
}

func TestRecipesOverviewFilters(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	rr := app.get(t, "/recipes?q=oat")
	body := rr.Body.String()
	if !strings.Contains(body, "Oat Milk Latte") || strings.Count(body, "<tr data-id=") != 3 {
		t.Fatalf("unexpected filtered recipes: %s", body)
	}

	americano := findProduct(t, app, "Americano")
	rr = app.get(t, "/recipes?product_id="+components.Itoa(americano.ID))
	if got := strings.Count(rr.Body.String(), "<tr data-id="); got != 2 {
		t.Fatalf("expected 2 americano recipe rows, got %d", got)
	}
}

func TestRecipeCreateAndValidation(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	croissant := findProduct(t, app, "Butter Croissant")
	milk, err := app.svc.Materials.FindByName(context.Background(), "Fresh Milk")
	if err != nil {
		t.Fatalf("FindByName() error = %v", err)
	}

	rr := app.post(t, "/recipes", url.Values{"product_id": {components.Itoa(croissant.ID)}, "material_id": {components.Itoa(milk.ID)}, "quantity_needed": {"0"}})
	if rr.Code != http.StatusUnprocessableEntity || !strings.Contains(rr.Body.String(), `data-field-error="quantity_needed"`) {
		t.Fatalf("expected quantity error, got %d", rr.Code)
	}

	rr = app.post(t, "/recipes", url.Values{"product_id": {components.Itoa(croissant.ID)}, "material_id": {components.Itoa(milk.ID)}, "quantity_needed": {"20"}})
	if rr.Code != http.StatusSeeOther {
		t.Fatalf("create recipe = %d: %s", rr.Code, rr.Body.String())
	}
	lines, err := app.svc.Recipes.ListByProduct(context.Background(), croissant.ID)
	if err != nil || len(lines) != 2 {
		t.Fatalf("ListByProduct = %d lines, %v", len(lines), err)
	}
}

func TestDeleteReferencedMaterialIsRefused(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	app.signIn(t)

	milk, err := app.svc.Materials.FindByName(context.Background(), "Fresh Milk")
	if err != nil {
		t.Fatalf("FindByName() error = %v", err)
	}
	rr := app.post(t, "/materials/"+components.Itoa(milk.ID)+"/delete", nil)
	if rr.Code != http.StatusConflict {
		t.Fatalf("expected 409 for a material used by recipes, got %d", rr.Code)
	}
	if _, err := app.svc.Materials.Get(context.Background(), milk.ID); err != nil {
		t.Fatalf("material should still exist: %v", err)
	}
}

func TestAdvanceLogsOutOfOrderTransitions(t *testing.T) {
	buf := new(bytes.Buffer)
	original := applog.Logger()
	applog.ReplaceLogger(slog.New(slog.NewTextHandler(buf, nil)))
	t.Cleanup(func() {
		applog.ReplaceLogger(original)
	})

	s := submitting(context.Background(), 5)
	if s.State != pages.Submitting || s.TargetID != 5 || buf.Len() != 0 {
		t.Fatalf("submitting(5) = %+v, log %q", s, buf.String())
	}

	advance(context.Background(), &s, pages.ConfirmDelete)
	if s.State != pages.Submitting || s.TargetID != 5 {
		t.Fatalf("screen moved to %+v on a rejected event", s)
	}
	if !strings.Contains(buf.String(), "screen transition rejected") {
		t.Fatalf("expected the rejected transition to be logged, got %q", buf.String())
	}

	d := deleting(context.Background(), 9)
	if d.State != pages.Deleting || d.TargetID != 9 {
		t.Fatalf("deleting(9) = %+v", d)
	}
}
