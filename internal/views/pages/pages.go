package pages

import (
	"github.com/a-h/templ"

	"posdash/internal/views/components"
	"posdash/internal/views/layout"
)

// Chrome is the frame shared by the signed-in pages.
type Chrome struct {
	Sidebar   components.SidebarData
	FlashKind string
	Flash     string
}

func dashboardShell(title string, chrome Chrome, content templ.Component) templ.Component {
	return layout.Layout(title+" · POS Dashboard", components.Sidebar(chrome.Sidebar), content, true)
}

const (
	primaryButton   = "rounded-lg bg-blue-600 px-4 py-2 font-semibold text-white hover:bg-blue-700"
	secondaryButton = "rounded-lg bg-gray-400 px-4 py-2 font-semibold text-white hover:bg-gray-500"
	editButton      = "rounded bg-gray-400 px-2 py-1 text-sm font-semibold text-white hover:bg-gray-600"
	deleteButton    = "rounded bg-red-600 px-2 py-1 text-sm font-semibold text-white hover:bg-red-700"
	cellClass       = "border px-4 py-2 text-center"
)

// pageHeader writes the title row with the "add" action.
func pageHeader(h *components.HTML, title, newHref, newLabel string) {
	h.Raw(`<div class="mb-6 flex items-center justify-between">`)
	h.Raw(`<h1 class="text-3xl font-bold">`).Text(title).Raw(`</h1>`)
	if newHref != "" {
		h.Render(components.ActionLink(newLabel, newHref, primaryButton))
	}
	h.Raw(`</div>`)
}

// entityForm writes a POST form that targets #page; multipart enables file inputs.
func entityForm(h *components.HTML, title, action, cancel, submitLabel string, multipart bool, fields ...components.Field) {
	h.Raw(`<form method="post" class="mb-6 rounded-lg bg-white p-4 shadow dark:bg-gray-900" data-form="entity"`).
		URL("action", action).Attr("hx-post", action).Attr("hx-target", "#page")
	if multipart {
		h.Attr("enctype", "multipart/form-data").Attr("hx-encoding", "multipart/form-data")
	}
	h.Raw(`>`)
	h.Raw(`<h2 class="mb-5 text-2xl font-bold">`).Text(title).Raw(`</h2>`)
	for _, f := range fields {
		h.Render(components.Input(f))
	}
	h.Raw(`<div class="flex gap-2">`)
	h.Raw(`<button type="submit"`).Attr("class", "rounded-lg bg-green-600 px-4 py-2 font-semibold text-white hover:bg-green-700").Raw(`>`).Text(submitLabel).Raw(`</button>`)
	h.Render(components.ActionLink("Cancel", cancel, secondaryButton))
	h.Raw(`</div></form>`)
}

func tableStart(h *components.HTML, headings ...string) {
	h.Raw(`<table class="w-full"><thead><tr class="bg-gray-200 dark:bg-gray-900">`)
	for _, heading := range headings {
		h.Raw(`<th class="border px-4 py-2">`).Text(heading).Raw(`</th>`)
	}
	h.Raw(`</tr></thead><tbody>`)
}

func tableEnd(h *components.HTML) {
	h.Raw(`</tbody></table>`)
}

func emptyState(h *components.HTML, message string) {
	h.Raw(`<div class="py-8 text-center text-gray-500" data-empty="true">`).Text(message).Raw(`</div>`)
}

// rowActions writes the edit and delete links for one row.
func rowActions(h *components.HTML, base string, id int64) {
	h.Raw(`<td class="border px-4 py-2 text-center space-x-2">`)
	h.Render(components.ActionLink("Edit", base+"?edit="+components.Itoa(id), editButton))
	h.Render(components.ActionLink("Delete", base+"?delete="+components.Itoa(id), deleteButton))
	h.Raw(`</td>`)
}

// screenSection opens the container carrying the screen state for tests and scripts.
func screenSection(h *components.HTML, name string, s Screen) {
	h.Raw(`<section`).Attr("data-page", name).Attr("data-screen", s.State.String()).Raw(`>`)
}

// formAction is where the open form posts.
func formAction(base string, s Screen) string {
	if s.Editing() {
		return base + "/" + components.Itoa(s.TargetID)
	}
	return base
}

func deleteAction(base string, id int64) string {
	return base + "/" + components.Itoa(id) + "/delete"
}

func submitLabel(s Screen, noun string) string {
	if s.Editing() {
		return "Update " + noun
	}
	return "Save " + noun
}

func formTitle(s Screen, noun string) string {
	if s.Editing() {
		return "Edit " + noun
	}
	return "Add " + noun
}

func listHref(base string, f ListFilters) string {
	if q := f.Encode(); q != "" {
		return base + "?" + q
	}
	return base
}
