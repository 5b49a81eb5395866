package components

import (
	"strconv"

	"github.com/a-h/templ"
)

// SidebarLink is one navigation entry.
type SidebarLink struct {
	Label   string
	Path    string
	Section string
}

type SidebarData struct {
	Active   string
	Username string
	Role     string
	Links    []SidebarLink
}

// NavLinks are the dashboard sections in sidebar order.
var NavLinks = []SidebarLink{
	{Label: "Dashboard", Path: "/dashboard", Section: "dashboard"},
	{Label: "Products", Path: "/products", Section: "products"},
	{Label: "Categories", Path: "/categories", Section: "categories"},
	{Label: "Materials", Path: "/materials", Section: "materials"},
	{Label: "Recipes", Path: "/recipes", Section: "recipes"},
}

func linkState(section, active string) string {
	if section == active {
		return "active"
	}
	return "inactive"
}

func linkClass(state string) string {
	if state == "active" {
		return "flex items-center gap-3 rounded-lg bg-blue-600 px-4 py-2 text-white"
	}
	return "flex items-center gap-3 rounded-lg px-4 py-2 text-gray-300 hover:bg-gray-700 hover:text-white"
}

// Sidebar renders navigation and the sign-out form.
func Sidebar(data SidebarData) templ.Component {
	return Func(func(h *HTML) {
		h.Raw(`<aside class="flex w-64 flex-col bg-gray-800 p-4" id="sidebar">`)
		h.Raw(`<div class="mb-8 px-2"><span class="text-2xl font-bold text-white">POS Dashboard</span>`)
		if data.Username != "" {
			h.Raw(`<p class="mt-1 text-sm text-gray-400">`).Text(data.Username)
			if data.Role != "" {
				h.Raw(` · `).Text(data.Role)
			}
			h.Raw(`</p>`)
		}
		h.Raw(`</div><nav class="flex flex-1 flex-col gap-1">`)
		for _, link := range data.Links {
			state := linkState(link.Section, data.Active)
			h.Raw(`<a`).URL("href", link.Path).
				Attr("hx-get", link.Path).
				Attr("hx-target", "#page").
				Attr("hx-push-url", "true").
				Attr("class", linkClass(state)).
				Attr("data-state", state).
				Attr("data-nav-section", link.Section).
				Raw(`>`).Text(link.Label).Raw(`</a>`)
		}
		h.Raw(`</nav>`)
		h.Raw(`<form method="post" action="/auth/logout" class="mt-4">`)
		h.Raw(`<button type="submit" class="w-full rounded-lg bg-red-600 px-4 py-2 text-white hover:bg-red-700">Logout</button></form>`)
		h.Raw(`</aside>`)
	})
}

// StatCard renders one dashboard figure.
func StatCard(title, value, caption string) templ.Component {
	return Func(func(h *HTML) {
		h.Raw(`<div class="rounded-xl bg-white p-6 shadow dark:bg-gray-800" data-stat="`).Text(title).Raw(`">`)
		h.Raw(`<p class="text-sm text-gray-500 dark:text-gray-400">`).Text(title).Raw(`</p>`)
		h.Raw(`<p class="mt-2 text-3xl font-bold">`).Text(value).Raw(`</p>`)
		if caption != "" {
			h.Raw(`<p class="mt-1 text-xs text-gray-400">`).Text(caption).Raw(`</p>`)
		}
		h.Raw(`</div>`)
	})
}

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
	FlashInfo    = "info"
)

// Flash renders a transient notification; nothing when message is empty.
func Flash(kind, message string) templ.Component {
	return Func(func(h *HTML) {
		if message == "" {
			return
		}
		class := "bg-blue-100 text-blue-800"
		switch kind {
		case FlashSuccess:
			class = "bg-green-100 text-green-800"
		case FlashError:
			class = "bg-red-100 text-red-800"
		}
		h.Raw(`<div role="alert"`).Attr("class", "mb-4 rounded-lg px-4 py-3 "+class).Attr("data-flash", kind).Raw(`>`)
		h.Text(message).Raw(`</div>`)
	})
}

// SearchBox renders a GET form that filters the list at action.
func SearchBox(action, query, placeholder string) templ.Component {
	return Func(func(h *HTML) {
		h.Raw(`<form method="get" class="mb-4 flex gap-2"`).URL("action", action).
			Attr("hx-get", action).Attr("hx-target", "#page").Attr("hx-push-url", "true").Raw(`>`)
		h.Raw(`<input type="search" name="q" class="w-full rounded-lg border px-4 py-2 dark:bg-gray-700"`).
			Attr("value", query).Attr("placeholder", placeholder).Raw(`>`)
		h.Raw(`<button type="submit" class="rounded-lg bg-gray-600 px-4 py-2 text-white">Search</button></form>`)
	})
}

// Field describes one form input.
type Field struct {
	Label       string
	Name        string
	Type        string
	Value       string
	Placeholder string
	Step        string
	Required    bool
	Error       string
	Options     []Option
}

// Option is a select choice.
type Option struct {
	Value string
	Label string
}

// Input renders a labelled input or, when Options is set, a select.
func Input(f Field) templ.Component {
	return Func(func(h *HTML) {
		h.Raw(`<label class="mb-4 block"><span class="mb-1 block text-sm font-medium">`).Text(f.Label).Raw(`</span>`)
		inputClass := "w-full rounded-lg border border-gray-300 px-4 py-2 dark:border-gray-600 dark:bg-gray-700"
		if len(f.Options) > 0 {
			h.Raw(`<select`).Attr("name", f.Name).Attr("class", inputClass).AttrIf(f.Required, "required").Raw(`>`)
			h.Raw(`<option value="">-- choose --</option>`)
			for _, opt := range f.Options {
				h.Raw(`<option`).Attr("value", opt.Value).AttrIf(opt.Value == f.Value, "selected").Raw(`>`).Text(opt.Label).Raw(`</option>`)
			}
			h.Raw(`</select>`)
		} else {
			typ := f.Type
			if typ == "" {
				typ = "text"
			}
			h.Raw(`<input`).Attr("type", typ).Attr("name", f.Name).Attr("class", inputClass)
			if typ != "file" && typ != "password" {
				h.Attr("value", f.Value)
			}
			if f.Placeholder != "" {
				h.Attr("placeholder", f.Placeholder)
			}
			if f.Step != "" {
				h.Attr("step", f.Step)
			}
			if typ == "file" {
				h.Attr("accept", "image/*")
			}
			h.AttrIf(f.Required, "required").Raw(`>`)
		}
		if f.Error != "" {
			h.Raw(`<span class="mt-1 block text-sm text-red-600" data-field-error="`).Text(f.Name).Raw(`">`).Text(f.Error).Raw(`</span>`)
		}
		h.Raw(`</label>`)
	})
}

// Modal wraps body in an overlay dialog with a title.
func Modal(title string, body templ.Component) templ.Component {
	return Func(func(h *HTML) {
		h.Raw(`<div class="fixed inset-0 z-40 flex items-center justify-center bg-black/50" role="dialog" aria-modal="true">`)
		h.Raw(`<div class="w-full max-w-lg rounded-xl bg-white p-6 shadow-xl dark:bg-gray-800">`)
		h.Raw(`<h2 class="mb-4 text-xl font-bold">`).Text(title).Raw(`</h2>`)
		h.Render(body)
		h.Raw(`</div></div>`)
	})
}

// ConfirmDelete asks before posting to action.
func ConfirmDelete(what, action, cancel string) templ.Component {
	return Modal("Confirm delete", Func(func(h *HTML) {
		h.Raw(`<p class="mb-6">Are you sure you want to delete `).Text(what).Raw(`?</p>`)
		h.Raw(`<form method="post" class="flex justify-end gap-2"`).URL("action", action).
			Attr("hx-post", action).Attr("hx-target", "#page").Raw(`>`)
		h.Raw(`<a class="rounded-lg bg-gray-300 px-4 py-2 text-gray-800"`).URL("href", cancel).
			Attr("hx-get", cancel).Attr("hx-target", "#page").Raw(`>Cancel</a>`)
		h.Raw(`<button type="submit" class="rounded-lg bg-red-600 px-4 py-2 text-white">Delete</button></form>`)
	}))
}

// ActionLink renders an HTMX enhanced link.
func ActionLink(label, href, class string) templ.Component {
	return Func(func(h *HTML) {
		h.Raw(`<a`).URL("href", href).Attr("hx-get", href).Attr("hx-target", "#page").Attr("hx-push-url", "true").
			Attr("class", class).Raw(`>`).Text(label).Raw(`</a>`)
	})
}

// Itoa formats an id for URLs.
func Itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
