package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/shopspring/decimal"

	applog "posdash/internal/log"
	"posdash/internal/services"
	"posdash/internal/views/components"
	"posdash/internal/views/pages"
)

const (
	productsPath = "/products"
	// maxProductBody leaves room for the text fields next to the image.
	maxProductBody = services.MaxImageBytes + 1<<20
)

var errProductBodyTooLarge = services.ValidationError("image", fmt.Sprintf("Image must be at most %d MB", services.MaxImageBytes>>20))

// Products lists products (GET) or creates one with an optional image (POST).
func (h *Handler) Products(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		screen := screenFromRequest(r)
		form := pages.Form{}
		kind, flash := "", ""
		if screen.Editing() {
			p, err := h.svc.Products.Get(r.Context(), screen.TargetID)
			if err != nil {
				advance(r.Context(), &screen, pages.Cancel)
				kind, flash = components.FlashError, services.Message(err)
			} else {
				form.Set("name", p.Name)
				form.Set("price", p.Price.String())
				if p.CategoriesID != nil {
					form.Set("categories_id", components.Itoa(*p.CategoriesID))
				}
			}
		}
		h.renderProducts(w, r, screen, form, nil, http.StatusOK, kind, flash)
	case http.MethodPost:
		h.saveProduct(w, r, 0)
	default:
		methodNotAllowed(w, r)
	}
}

// UpdateProduct handles POST /products/{id}. A new image replaces the old URL.
func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	h.saveProduct(w, r, id)
}

func (h *Handler) saveProduct(w http.ResponseWriter, r *http.Request, id int64) {
	r.Body = http.MaxBytesReader(w, r.Body, maxProductBody)
	screen := submitting(r.Context(), id)
	form, err := postedForm(r)
	show := func(status int, kind, flash string) {
		h.renderProducts(w, r, screen, form, nil, status, kind, flash)
	}
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.complete(w, r, &screen, &form, productsPath, errProductBodyTooLarge, "", show)
			return
		}
		http.Error(w, "invalid form submission", http.StatusBadRequest)
		return
	}

	name := form.Value("name")
	price, err := decimal.NewFromString(form.Value("price"))
	if err != nil {
		h.complete(w, r, &screen, &form, productsPath, services.ValidationError("price", "Price must be a number"), "", show)
		return
	}
	var category *int64
	if cid := pages.ParseID(form.Value("categories_id")); cid > 0 {
		category = &cid
	}

	img, closeImage, err := imageFromRequest(r)
	if err != nil {
		h.complete(w, r, &screen, &form, productsPath, err, "", show)
		return
	}
	defer closeImage()

	var message string
	if id == 0 {
		_, err = h.svc.Products.Create(r.Context(), services.ProductInput{Name: name, Price: price, CategoriesID: category}, img)
		message = "Product added"
	} else {
		patch := services.ProductPatch{Name: &name, Price: &price, CategoriesID: category, ClearCategory: category == nil}
		_, err = h.svc.Products.Update(r.Context(), id, patch, img)
		message = "Product updated"
	}
	h.complete(w, r, &screen, &form, productsPath, err, message, show)
}

// imageFromRequest returns the uploaded "image" part, or nil when none was sent.
func imageFromRequest(r *http.Request) (*services.ImageUpload, func(), error) {
	noop := func() {}
	if r.MultipartForm == nil {
		return nil, noop, nil
	}
	file, header, err := r.FormFile("image")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, noop, nil
	}
	if err != nil {
		return nil, noop, services.ValidationError("image", "Could not read the uploaded image")
	}
	if header.Size == 0 && header.Filename == "" {
		_ = file.Close()
		return nil, noop, nil
	}
	return &services.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType(header),
		Body:        file,
	}, func() { _ = file.Close() }, nil
}

func contentType(header *multipart.FileHeader) string {
	if ct := header.Header.Get("Content-Type"); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// DeleteProduct handles POST /products/{id}/delete.
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	screen := deleting(r.Context(), id)
	form := pages.Form{}
	_, err := h.svc.Products.Delete(r.Context(), id)
	h.complete(w, r, &screen, &form, productsPath, err, "Product deleted", func(status int, kind, flash string) {
		h.renderProducts(w, r, screen, form, nil, status, kind, flash)
	})
}

// ProductRecipe opens the recipe modal for one product.
func (h *Handler) ProductRecipe(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		http.NotFound(w, r)
		return
	}
	view, err := h.svc.Recipes.ProductView(r.Context(), id)
	if err != nil {
		applog.Debug(r.Context(), "failed to load product recipe", "product_id", id, "error", err)
		h.renderProducts(w, r, pages.Screen{}, pages.Form{}, nil, pageStatus(r, statusOf(err)), components.FlashError, services.Message(err))
		return
	}
	h.renderProducts(w, r, pages.Screen{}, pages.Form{}, &view, http.StatusOK, "", "")
}

func (h *Handler) renderProducts(w http.ResponseWriter, r *http.Request, screen pages.Screen, form pages.Form, recipe *services.ProductRecipes, status int, kind, flash string) {
	ctx := r.Context()
	filters := pages.FiltersFromRequest(r)
	data := pages.ProductsData{Chrome: h.chrome(r, "products"), Screen: screen, Filters: filters, Form: form, Recipe: recipe}
	if flash != "" {
		data.FlashKind, data.Flash = kind, flash
	}

	items, err := h.svc.Products.List(ctx, filters.Options())
	if err != nil {
		applog.Error(ctx, "failed to list products", "error", err)
		data.FlashKind, data.Flash = components.FlashError, services.Message(err)
	}
	data.Items = items

	categories, err := h.svc.Categories.List(ctx, services.ListOptions{SortBy: "name", Order: services.Asc})
	if err != nil {
		applog.Error(ctx, "failed to list categories for products", "error", err)
	}
	data.Categories = categories
	renderStatus(w, r, status, pages.ProductsPage(data), pages.ProductsPartial(data))
}
