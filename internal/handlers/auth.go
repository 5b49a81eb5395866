package handlers

import (
	"context"
	"errors"
	"net/http"

	"posdash/internal/backend"
	applog "posdash/internal/log"
	"posdash/internal/services"
	"posdash/internal/views/components"
	"posdash/internal/views/pages"
	"posdash/models"
)

const (
	sessionLoginMessageKey = "auth:message"
	sessionUserIDKey       = "auth:user:id"
	sessionUserEmailKey    = "auth:user:email"
	sessionUserNameKey     = "auth:user:name"
	sessionUserRoleKey     = "auth:user:role"
	sessionTokenKey        = "auth:token"
	sessionRecoveryUserKey = "auth:recovery:user"
	sessionFlashKey        = "flash:message"
	sessionFlashKindKey    = "flash:kind"

	loginPath     = services.LoginPath
	dashboardPath = "/dashboard"
)

type userContextKey struct{}

// establishSession stores the signed-in user in a renewed session.
func (h *Handler) establishSession(r *http.Request, session backend.Session) error {
	ctx := r.Context()
	if err := h.sessions.RenewToken(ctx); err != nil {
		return err
	}

	profile, err := h.svc.Auth.GetProfile(ctx, session.User.ID)
	if err != nil {
		applog.Warn(ctx, "signed-in user has no profile", "user_id", session.User.ID, "error", err)
		profile = models.Profile{ID: session.User.ID, Username: session.User.Email}
	}

	h.sessions.Put(ctx, sessionUserIDKey, session.User.ID)
	h.sessions.Put(ctx, sessionUserEmailKey, session.User.Email)
	h.sessions.Put(ctx, sessionUserNameKey, profile.Username)
	h.sessions.Put(ctx, sessionUserRoleKey, profile.Role)
	h.sessions.Put(ctx, sessionTokenKey, session.AccessToken)
	return nil
}

// ActiveSession returns true when the current request has a signed-in user.
func (h *Handler) ActiveSession(r *http.Request) bool {
	return h.sessions.GetString(r.Context(), sessionUserIDKey) != "" &&
		h.sessions.GetString(r.Context(), sessionTokenKey) != ""
}

// RequireAuthentication ensures the session belongs to a user whose token is
// still valid. Revoked tokens end the session.
func (h *Handler) RequireAuthentication(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if !h.ActiveSession(r) {
			applog.Debug(ctx, "no active session, redirecting to login", "path", r.URL.Path)
			redirect(w, r, loginPath)
			return
		}

		user, err := h.svc.Auth.CurrentUser(ctx, h.sessions.GetString(ctx, sessionTokenKey))
		if err != nil {
			if !errors.Is(err, services.ErrInvalidCredentials) {
				applog.Error(ctx, "failed to resolve session user", "error", err)
				http.Error(w, "authentication unavailable", http.StatusServiceUnavailable)
				return
			}
			applog.Debug(ctx, "session token rejected", "error", err)
			if err := h.sessions.Destroy(ctx); err != nil {
				applog.Error(ctx, "failed to destroy session", "error", err)
			}
			h.sessions.Put(ctx, sessionLoginMessageKey, "Your session has ended. Please sign in again.")
			redirect(w, r, loginPath)
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(ctx, userContextKey{}, user)))
	})
}

// currentUser returns the user resolved by RequireAuthentication or BearerAuth.
func currentUser(r *http.Request) (backend.User, bool) {
	user, ok := r.Context().Value(userContextKey{}).(backend.User)
	return user, ok && user.ID != ""
}

// Logout revokes outstanding tokens, destroys the session and returns to sign-in.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodPost:
	default:
		methodNotAllowed(w, r)
		return
	}

	ctx := r.Context()
	if userID := h.sessions.GetString(ctx, sessionUserIDKey); userID != "" {
		if err := h.svc.Auth.SignOut(ctx, userID); err != nil {
			applog.Error(ctx, "failed to revoke tokens on logout", "user_id", userID, "error", err)
		}
	}
	if err := h.sessions.Destroy(ctx); err != nil {
		applog.Error(ctx, "failed to destroy session", "error", err)
	}
	redirect(w, r, loginPath)
}

func (h *Handler) setFlash(r *http.Request, kind, message string) {
	h.sessions.Put(r.Context(), sessionFlashKindKey, kind)
	h.sessions.Put(r.Context(), sessionFlashKey, message)
}

func (h *Handler) popFlash(r *http.Request) (kind, message string) {
	return h.sessions.PopString(r.Context(), sessionFlashKindKey), h.sessions.PopString(r.Context(), sessionFlashKey)
}

// chrome builds the sidebar and pending flash for a signed-in page.
func (h *Handler) chrome(r *http.Request, active string) pages.Chrome {
	kind, message := h.popFlash(r)
	return pages.Chrome{
		Sidebar: components.SidebarData{
			Active:   active,
			Username: h.sessions.GetString(r.Context(), sessionUserNameKey),
			Role:     h.sessions.GetString(r.Context(), sessionUserRoleKey),
			Links:    components.NavLinks,
		},
		FlashKind: kind,
		Flash:     message,
	}
}
