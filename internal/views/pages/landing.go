package pages

import (
	"github.com/a-h/templ"

	"posdash/internal/views/components"
	"posdash/internal/views/layout"
)

// Landing is the public home page.
func Landing() templ.Component {
	return layout.Layout("POS Dashboard", nil, components.Func(func(h *components.HTML) {
		h.Raw(`<section class="flex flex-col items-center gap-6 py-24 text-center" data-page="landing">`)
		h.Raw(`<h1 class="text-5xl font-bold">POS Dashboard</h1>`)
		h.Raw(`<p class="max-w-xl text-lg text-gray-500">Manage products, categories, raw materials and recipes for your point of sale.</p>`)
		h.Raw(`<div class="flex gap-4">`)
		h.Raw(`<a href="/auth/login"`).Attr("class", primaryButton).Raw(`>Sign in</a>`)
		h.Raw(`<a href="/auth/register"`).Attr("class", secondaryButton).Raw(`>Create account</a>`)
		h.Raw(`</div></section>`)
	}), false)
}
