package pages

import (
	"strconv"

	"github.com/a-h/templ"

	"posdash/internal/services"
	"posdash/internal/views/components"
)

type DashboardData struct {
	Chrome
	Summary services.Summary
}

func DashboardPage(data DashboardData) templ.Component {
	return dashboardShell("Dashboard", data.Chrome, DashboardPartial(data))
}

func DashboardPartial(data DashboardData) templ.Component {
	return components.Func(func(h *components.HTML) {
		s := data.Summary
		h.Raw(`<section data-page="dashboard">`)
		h.Raw(`<h1 class="mb-2 text-3xl font-bold">Dashboard</h1>`)
		h.Raw(`<p class="mb-6 text-gray-500">Welcome back, <span data-username>`).Text(DefaultDash(s.Profile.Username)).Raw(`</span>`)
		if s.Profile.Role != "" {
			h.Raw(` <span class="rounded bg-blue-100 px-2 py-0.5 text-xs text-blue-800">`).Text(s.Profile.Role).Raw(`</span>`)
		}
		h.Raw(`</p>`)
		h.Render(components.Flash(data.FlashKind, data.Flash))
		h.Raw(`<div class="grid grid-cols-1 gap-6 md:grid-cols-2 lg:grid-cols-3">`)
		h.Render(components.StatCard("Products", count(s.Products), "items on the menu"))
		h.Render(components.StatCard("Categories", count(s.Categories), ""))
		h.Render(components.StatCard("Raw materials", count(s.Materials), ""))
		h.Render(components.StatCard("Recipes", count(s.Recipes), "material lines"))
		h.Render(components.StatCard("Out of stock", count(s.OutOfStock), "materials at zero stock"))
		h.Raw(`</div></section>`)
	})
}

func count(n int64) string {
	return strconv.FormatInt(n, 10)
}
