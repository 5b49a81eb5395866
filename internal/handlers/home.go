package handlers

import (
	"net/http"

	"posdash/internal/views/pages"
)

// Home renders the public landing page; signed-in users go to the dashboard.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	if h.ActiveSession(r) {
		redirect(w, r, dashboardPath)
		return
	}
	render(w, r, pages.Landing(), pages.Landing())
}
