package handlers

import (
	"net/http"

	applog "posdash/internal/log"
	"posdash/internal/views/components"
	"posdash/internal/views/pages"
)

// Dashboard renders the summary cards for the signed-in user.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r)
		return
	}

	user, _ := currentUser(r)
	data := pages.DashboardData{Chrome: h.chrome(r, "dashboard")}
	summary, err := h.svc.Dashboard.Summary(r.Context(), user.ID)
	if err != nil {
		applog.Error(r.Context(), "failed to load dashboard summary", "error", err)
		data.FlashKind, data.Flash = components.FlashError, "Failed to load data: "+err.Error()
	}
	data.Summary = summary
	render(w, r, pages.DashboardPage(data), pages.DashboardPartial(data))
}
