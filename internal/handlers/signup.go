package handlers

import (
	"errors"
	"net/http"
	"strings"

	applog "posdash/internal/log"
	"posdash/internal/services"
	"posdash/internal/views/components"
	"posdash/internal/views/pages"
)

// Signup displays the account creation form and processes new registrations.
// Every new account gets an admin profile.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling signup request", "method", r.Method, "htmx", isHTMX(r))

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if h.ActiveSession(r) {
			applog.Debug(r.Context(), "active session detected during signup, redirecting to dashboard")
			redirect(w, r, dashboardPath)
			return
		}
		renderSignup(w, r, pages.AuthData{})
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			applog.Debug(r.Context(), "failed to parse signup form", "error", err)
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}

		in := services.SignUpInput{
			Email:    strings.TrimSpace(r.PostFormValue("email")),
			Password: r.PostFormValue("password"),
			Username: strings.TrimSpace(r.PostFormValue("username")),
		}
		data := pages.AuthData{Email: in.Email, Username: in.Username}
		applog.Debug(r.Context(), "signup form parsed", "email", strings.ToLower(in.Email))

		user, err := h.svc.Auth.SignUp(r.Context(), in)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrValidation):
				data.Form.Fail(services.FieldOf(err), services.Message(err))
				data.Error = services.Message(err)
			case errors.Is(err, services.ErrConflict):
				data.Error = "An account with that email already exists."
			default:
				applog.Error(r.Context(), "failed to register account", "error", err)
				data.Error = "We couldn't create your account right now. Please try again."
			}
			renderSignup(w, r, data)
			return
		}

		if user.EmailConfirmedAt == nil {
			h.setFlash(r, components.FlashInfo, "Registration successful. Check your email to confirm your account.")
		} else {
			h.setFlash(r, components.FlashSuccess, "Registration successful. Sign in to continue.")
		}
		redirect(w, r, loginPath)
	default:
		methodNotAllowed(w, r)
	}
}

func renderSignup(w http.ResponseWriter, r *http.Request, data pages.AuthData) {
	render(w, r, pages.RegisterPage(data), pages.RegisterPartial(data))
}
