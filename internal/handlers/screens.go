package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	applog "posdash/internal/log"
	"posdash/internal/services"
	"posdash/internal/views/components"
	"posdash/internal/views/pages"
)

// view re-renders an entity page with the given status and flash.
type view func(status int, flashKind, flash string)

// screenFromRequest reads the screen a GET asks for. An unreachable state
// is logged and shown as the plain list.
func screenFromRequest(r *http.Request) pages.Screen {
	s, err := pages.ScreenFromQuery(r.URL.Query())
	if err != nil {
		applog.Error(r.Context(), "screen query rejected", "query", r.URL.RawQuery, "error", err)
		return pages.Screen{}
	}
	return s
}

// advance applies events to s. A rejected event leaves s unchanged and is
// logged, since it means a handler drove the screen out of order.
func advance(ctx context.Context, s *pages.Screen, events ...pages.Event) {
	if err := s.Run(events...); err != nil {
		applog.Error(ctx, "screen transition rejected", "state", s.State.String(), "error", err)
	}
}

// submitting returns the screen for a form post; id zero means create.
func submitting(ctx context.Context, id int64) pages.Screen {
	s := pages.Screen{}
	advance(ctx, &s, pages.OpenForm)
	s.TargetID = id
	advance(ctx, &s, pages.Submit)
	return s
}

// deleting returns the screen for a confirmed delete of id.
func deleting(ctx context.Context, id int64) pages.Screen {
	s := pages.Screen{TargetID: id}
	advance(ctx, &s, pages.RequestDelete, pages.ConfirmDelete)
	return s
}

// complete moves s out of Submitting or Deleting according to err and
// answers the request. Invalid input returns to the form with the field
// error; other failures return to the list with an error flash. Success
// redirects plain requests and re-renders HTMX requests in place.
func (h *Handler) complete(w http.ResponseWriter, r *http.Request, s *pages.Screen, form *pages.Form, base string, err error, success string, show view) {
	ctx := r.Context()
	switch {
	case err == nil:
		advance(ctx, s, pages.Succeed)
		applog.Info(ctx, "entity change saved", "path", r.URL.Path)
		if isHTMX(r) {
			w.Header().Set("HX-Push-Url", base)
			show(http.StatusOK, components.FlashSuccess, success)
			return
		}
		h.setFlash(r, components.FlashSuccess, success)
		http.Redirect(w, r, base, http.StatusSeeOther)
	case errors.Is(err, services.ErrValidation) && s.State == pages.Submitting:
		advance(ctx, s, pages.Reject)
		applog.Debug(ctx, "submission rejected", "path", r.URL.Path, "field", services.FieldOf(err), "error", err)
		if field := services.FieldOf(err); field != "" {
			form.Fail(field, services.Message(err))
		}
		show(pageStatus(r, http.StatusUnprocessableEntity), components.FlashError, services.Message(err))
	default:
		advance(ctx, s, pages.Fail)
		if errors.Is(err, services.ErrBackend) {
			applog.Error(ctx, "entity change failed", "path", r.URL.Path, "error", err)
		} else {
			applog.Debug(ctx, "entity change failed", "path", r.URL.Path, "error", err)
		}
		show(pageStatus(r, statusOf(err)), components.FlashError, services.Message(err))
	}
}

// pageStatus keeps HTMX responses at 200 so the swap happens.
func pageStatus(r *http.Request, status int) int {
	if isHTMX(r) {
		return http.StatusOK
	}
	return status
}

// statusOf maps a service error kind to an HTTP status.
func statusOf(err error) int {
	switch {
	case err == nil:
		return http.StatusOK
	case errors.Is(err, services.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, services.ErrInvalidCredentials):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// idParam reads the {id} route parameter.
func idParam(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

// postedForm parses a urlencoded or multipart body.
func postedForm(r *http.Request) (pages.Form, error) {
	if err := r.ParseMultipartForm(maxFormMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		return pages.Form{}, err
	}
	return pages.NewForm(r.PostForm), nil
}

const maxFormMemory = 8 << 20

// parseFloatField reads a numeric form field, reporting a validation error
// naming field when it is not a number.
func parseFloatField(form pages.Form, field, label string) (float64, error) {
	raw := form.Value(field)
	if raw == "" {
		return 0, services.ValidationError(field, label+" is required")
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, services.ValidationError(field, label+" must be a number")
	}
	return v, nil
}

// parseIDField reads a required id from a select.
func parseIDField(form pages.Form, field, label string) (int64, error) {
	id := pages.ParseID(form.Value(field))
	if id == 0 {
		return 0, services.ValidationError(field, label+" is required")
	}
	return id, nil
}
