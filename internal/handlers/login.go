package handlers

import (
	"errors"
	"net"
	"net/http"
	"strings"

	applog "posdash/internal/log"
	"posdash/internal/services"
	"posdash/internal/views/components"
	"posdash/internal/views/pages"
)

const tooManyAttempts = "Too many sign-in attempts. Please wait a minute and try again."

// Login renders the sign-in view and processes sign-in submissions.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	applog.Debug(r.Context(), "handling login request", "method", r.Method, "htmx", isHTMX(r))

	switch r.Method {
	case http.MethodGet, http.MethodHead:
		if h.ActiveSession(r) {
			applog.Debug(r.Context(), "active session detected, redirecting to dashboard")
			redirect(w, r, dashboardPath)
			return
		}
		data := pages.AuthData{Error: h.sessions.PopString(r.Context(), sessionLoginMessageKey)}
		_, data.Message = h.popFlash(r)
		renderLogin(w, r, data)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			applog.Debug(r.Context(), "failed to parse login form", "error", err)
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.PostFormValue("email"))
		password := r.PostFormValue("password")
		data := pages.AuthData{Email: email}

		if !h.allowLogin(r) {
			applog.Warn(r.Context(), "login throttled", "client", clientIP(r))
			data.Error = tooManyAttempts
			renderStatus(w, r, http.StatusTooManyRequests, pages.LoginPage(data), pages.LoginPartial(data))
			return
		}

		session, err := h.svc.Auth.SignIn(r.Context(), email, password)
		if err != nil {
			applog.Debug(r.Context(), "authentication failed", "email", strings.ToLower(email), "error", err)
			data.Error = services.Message(err)
			if errors.Is(err, services.ErrBackend) {
				applog.Error(r.Context(), "sign in failed", "error", err)
				data.Error = "We were unable to sign you in. Please try again."
			}
			renderLogin(w, r, data)
			return
		}

		if err := h.establishSession(r, session); err != nil {
			applog.Error(r.Context(), "failed to establish session", "error", err)
			data.Error = "We were unable to sign you in. Please try again."
			renderLogin(w, r, data)
			return
		}

		applog.Info(r.Context(), "user signed in", "user_id", session.User.ID)
		redirect(w, r, dashboardPath)
	default:
		methodNotAllowed(w, r)
	}
}

func renderLogin(w http.ResponseWriter, r *http.Request, data pages.AuthData) {
	render(w, r, pages.LoginPage(data), pages.LoginPartial(data))
}

func (h *Handler) allowLogin(r *http.Request) bool {
	if h.limiter == nil {
		return true
	}
	return h.limiter.Allow(clientIP(r))
}

func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// ResetPassword emails a recovery link. The response does not reveal
// whether the address is registered.
func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		data := pages.AuthData{}
		_, data.Message = h.popFlash(r)
		render(w, r, pages.ResetPasswordPage(data), pages.ResetPasswordPartial(data))
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		email := strings.TrimSpace(r.PostFormValue("email"))
		data := pages.AuthData{Email: email}
		if err := h.svc.Auth.ResetPassword(r.Context(), email); err != nil {
			applog.Debug(r.Context(), "password reset failed", "error", err)
			data.Error = services.Message(err)
			if errors.Is(err, services.ErrValidation) {
				data.Form.Fail(services.FieldOf(err), data.Error)
			}
		} else {
			data.Message = "If that address is registered, a reset link is on its way. Check your email."
		}
		render(w, r, pages.ResetPasswordPage(data), pages.ResetPasswordPartial(data))
	default:
		methodNotAllowed(w, r)
	}
}

// UpdatePassword accepts a recovery link (?token=) or a signed-in session and
// sets a new password. A successful update signs the user out everywhere.
func (h *Handler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		data := pages.AuthData{}
		if token := r.URL.Query().Get("token"); token != "" {
			user, err := h.svc.Auth.VerifyRecovery(ctx, token)
			if err != nil {
				applog.Debug(ctx, "recovery token rejected", "error", err)
				data.Error = services.Message(err)
				render(w, r, pages.UpdatePasswordPage(data), pages.UpdatePasswordPartial(data))
				return
			}
			if err := h.sessions.RenewToken(ctx); err != nil {
				applog.Error(ctx, "failed to renew session", "error", err)
			}
			h.sessions.Put(ctx, sessionRecoveryUserKey, user.ID)
		}
		target := h.passwordTarget(r)
		if target.userID == "" {
			data.Error = "Open the link from your reset email to choose a new password."
		}
		data.RequireCurrent = target.userID != "" && !target.recovery
		render(w, r, pages.UpdatePasswordPage(data), pages.UpdatePasswordPartial(data))
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, "invalid form submission", http.StatusBadRequest)
			return
		}
		data := pages.AuthData{}
		target := h.passwordTarget(r)
		if target.userID == "" {
			data.Error = "Open the link from your reset email to choose a new password."
			render(w, r, pages.UpdatePasswordPage(data), pages.UpdatePasswordPartial(data))
			return
		}
		data.RequireCurrent = !target.recovery

		password, confirm := r.PostFormValue("password"), r.PostFormValue("confirm")
		var err error
		if target.recovery {
			err = h.svc.Auth.UpdatePassword(ctx, target.userID, password, confirm)
		} else {
			err = h.svc.Auth.ChangePassword(ctx, target.userID, r.PostFormValue("current"), password, confirm)
		}
		if err != nil {
			applog.Debug(ctx, "password update failed", "error", err)
			data.Error = services.Message(err)
			if errors.Is(err, services.ErrValidation) {
				data.Form.Fail(services.FieldOf(err), data.Error)
			}
			render(w, r, pages.UpdatePasswordPage(data), pages.UpdatePasswordPartial(data))
			return
		}

		if err := h.sessions.Destroy(ctx); err != nil {
			applog.Error(ctx, "failed to destroy session", "error", err)
		}
		h.setFlash(r, components.FlashSuccess, "Password updated. Sign in with your new password.")
		applog.Info(ctx, "password updated", "user_id", target.userID, "recovery", target.recovery)
		redirect(w, r, loginPath)
	default:
		methodNotAllowed(w, r)
	}
}

type passwordChange struct {
	userID   string
	recovery bool
}

// passwordTarget is the user whose password this session may change: the
// user a recovery link was verified for, or the signed-in user while the
// session's access token is still valid.
func (h *Handler) passwordTarget(r *http.Request) passwordChange {
	ctx := r.Context()
	if id := h.sessions.GetString(ctx, sessionRecoveryUserKey); id != "" {
		return passwordChange{userID: id, recovery: true}
	}
	token := h.sessions.GetString(ctx, sessionTokenKey)
	if token == "" {
		return passwordChange{}
	}
	user, err := h.svc.Auth.CurrentUser(ctx, token)
	if err != nil {
		applog.Debug(ctx, "password change refused for stale session", "error", err)
		return passwordChange{}
	}
	return passwordChange{userID: user.ID}
}

// ConfirmEmail completes sign-up from the emailed link.
func (h *Handler) ConfirmEmail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}
	if _, err := h.svc.Auth.ConfirmEmail(r.Context(), r.URL.Query().Get("token")); err != nil {
		applog.Debug(r.Context(), "email confirmation failed", "error", err)
		h.sessions.Put(r.Context(), sessionLoginMessageKey, services.Message(err))
		redirect(w, r, loginPath)
		return
	}
	h.setFlash(r, components.FlashSuccess, "Email confirmed. You can sign in now.")
	redirect(w, r, loginPath)
}
