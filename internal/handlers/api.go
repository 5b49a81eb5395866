package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"posdash/internal/backend"
	applog "posdash/internal/log"
	"posdash/internal/services"
	"posdash/internal/views/pages"
	"posdash/models"
)

// APIRoutes mounts the JSON API. Everything except token issuance requires
// an "Authorization: Bearer <token>" header.
func (h *Handler) APIRoutes(r chi.Router) {
	r.Post("/auth/token", h.IssueToken)
	r.Group(func(r chi.Router) {
		r.Use(h.BearerAuth)
		r.Get("/me", h.Me)

		resource[models.Category, services.CategoryInput, services.CategoryPatch]{
			list:   listWith(h.svc.Categories.List),
			create: h.svc.Categories.Create,
			get:    h.svc.Categories.Get,
			update: h.svc.Categories.Update,
			delete: h.svc.Categories.Delete,
		}.mount(r, "/categories")

		resource[models.Material, services.MaterialInput, services.MaterialPatch]{
			list:   listWith(h.svc.Materials.List),
			create: h.svc.Materials.Create,
			get:    h.svc.Materials.Get,
			update: h.svc.Materials.Update,
			delete: h.svc.Materials.Delete,
		}.mount(r, "/materials")

		resource[models.Product, services.ProductInput, services.ProductPatch]{
			list: listWith(h.svc.Products.List),
			create: func(ctx context.Context, in services.ProductInput) (models.Product, error) {
				return h.svc.Products.Create(ctx, in, nil)
			},
			get: h.svc.Products.Get,
			update: func(ctx context.Context, id int64, p services.ProductPatch) (models.Product, error) {
				return h.svc.Products.Update(ctx, id, p, nil)
			},
			delete: h.svc.Products.Delete,
		}.mount(r, "/products")
		r.Post("/products/{id}/image", h.APIProductImage)
		r.Get("/products/{id}/recipes", h.APIProductRecipes)

		resource[models.Recipe, services.RecipeInput, services.RecipePatch]{
			list: func(r *http.Request) (any, error) {
				return h.svc.Recipes.Overview(r.Context(), pages.FiltersFromRequest(r).RecipeFilter())
			},
			create: h.svc.Recipes.Create,
			get:    h.svc.Recipes.Get,
			update: h.svc.Recipes.Update,
			delete: h.svc.Recipes.Delete,
		}.mount(r, "/recipes")
	})
}

type tokenRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// IssueToken exchanges credentials for a bearer token.
func (h *Handler) IssueToken(w http.ResponseWriter, r *http.Request) {
	if !h.allowLogin(r) {
		applog.Warn(r.Context(), "token request throttled", "client", clientIP(r))
		writeJSONError(w, http.StatusTooManyRequests, tooManyAttempts)
		return
	}
	var req tokenRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeServiceError(w, r, err)
		return
	}
	session, err := h.svc.Auth.SignIn(r.Context(), strings.TrimSpace(req.Email), req.Password)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// BearerAuth resolves the bearer token to a user or answers 401.
func (h *Handler) BearerAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " ")
		if !ok || !strings.EqualFold(scheme, "bearer") || strings.TrimSpace(token) == "" {
			w.Header().Set("WWW-Authenticate", `Bearer realm="posdash"`)
			writeJSONError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		user, err := h.svc.Auth.CurrentUser(r.Context(), strings.TrimSpace(token))
		if err != nil {
			w.Header().Set("WWW-Authenticate", `Bearer realm="posdash", error="invalid_token"`)
			writeServiceError(w, r, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userContextKey{}, user)))
	})
}

type meResponse struct {
	User    backend.User   `json:"user"`
	Profile models.Profile `json:"profile"`
}

// Me returns the token's user and profile.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(r)
	if !ok {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}
	profile, err := h.svc.Auth.GetProfile(r.Context(), user.ID)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, meResponse{User: user, Profile: profile})
}

// APIProductImage uploads the multipart "image" part and points the product at it.
func (h *Handler) APIProductImage(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxProductBody)
	if err := r.ParseMultipartForm(maxFormMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeServiceError(w, r, errProductBodyTooLarge)
			return
		}
		writeServiceError(w, r, services.ValidationError("image", "expected a multipart/form-data body"))
		return
	}
	img, closeImage, err := imageFromRequest(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	defer closeImage()
	if img == nil {
		writeServiceError(w, r, services.ValidationError("image", "Image file is required"))
		return
	}
	product, err := h.svc.Products.Update(r.Context(), id, services.ProductPatch{}, img)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// APIProductRecipes returns a product with its joined recipe lines.
func (h *Handler) APIProductRecipes(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(r)
	if !ok {
		writeJSONError(w, http.StatusNotFound, "not found")
		return
	}
	view, err := h.svc.Recipes.ProductView(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// resource wires list/create/get/update/delete endpoints for one entity.
type resource[T, In, Patch any] struct {
	list   func(r *http.Request) (any, error)
	create func(context.Context, In) (T, error)
	get    func(context.Context, int64) (T, error)
	update func(context.Context, int64, Patch) (T, error)
	delete func(context.Context, int64) (bool, error)
}

func (res resource[T, In, Patch]) mount(r chi.Router, path string) {
	r.Get(path, func(w http.ResponseWriter, r *http.Request) {
		items, err := res.list(r)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, items)
	})
	r.Post(path, func(w http.ResponseWriter, r *http.Request) {
		var in In
		if err := decodeJSON(w, r, &in); err != nil {
			writeServiceError(w, r, err)
			return
		}
		row, err := res.create(r.Context(), in)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusCreated, row)
	})
	r.Get(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		row, err := res.get(r.Context(), id)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, row)
	})
	r.Patch(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		var patch Patch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeServiceError(w, r, err)
			return
		}
		row, err := res.update(r.Context(), id, patch)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, row)
	})
	r.Delete(path+"/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, ok := idParam(r)
		if !ok {
			writeJSONError(w, http.StatusNotFound, "not found")
			return
		}
		if _, err := res.delete(r.Context(), id); err != nil {
			writeServiceError(w, r, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// listWith adapts a service List to the query string: q, sort, order, limit.
func listWith[T any](list func(context.Context, services.ListOptions) ([]T, error)) func(*http.Request) (any, error) {
	return func(r *http.Request) (any, error) {
		opts := pages.FiltersFromRequest(r).Options()
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, err := strconv.Atoi(raw)
			if err != nil || limit < 0 {
				return nil, services.ValidationError("limit", "limit must be a non-negative integer")
			}
			opts.Limit = limit
		}
		return list(r.Context(), opts)
	}
}
