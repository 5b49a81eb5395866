package layout

import (
	"github.com/a-h/templ"

	"posdash/internal/views/components"
)

const htmxSrc = "https://unpkg.com/htmx.org@2.0.4"

func bodyWrapperClass(withSidebar bool) string {
	if withSidebar {
		return "flex min-h-screen bg-gray-100 text-gray-800 dark:bg-gray-900 dark:text-gray-200"
	}
	return "min-h-screen bg-gray-100 text-gray-800 dark:bg-gray-900 dark:text-gray-200"
}

func mainClass(withSidebar bool) string {
	if withSidebar {
		return "flex-1 overflow-y-auto p-8"
	}
	return "mx-auto max-w-6xl p-8"
}

func document(title string, body templ.Component) templ.Component {
	return components.Func(func(h *components.HTML) {
		h.Raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		h.Raw(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		h.Raw(`<title>`).Text(title).Raw(`</title>`)
		h.Raw(`<script src="https://cdn.tailwindcss.com"></script>`)
		h.Raw(`<script`).Attr("src", htmxSrc).Raw(`></script>`)
		h.Raw(`</head>`)
		h.Render(body)
		h.Raw(`</html>`)
	})
}

// Layout renders a full document with an optional sidebar. content is placed
// in #page, which HTMX navigation swaps.
func Layout(title string, sidebar, content templ.Component, withSidebar bool) templ.Component {
	return document(title, components.Func(func(h *components.HTML) {
		h.Raw(`<body class="font-sans"><div`).Attr("class", bodyWrapperClass(withSidebar)).Raw(`>`)
		if withSidebar {
			h.Render(sidebar)
		}
		h.Raw(`<main id="page"`).Attr("class", mainClass(withSidebar)).Raw(`>`)
		h.Render(content)
		h.Raw(`</main></div></body>`)
	}))
}

// Auth renders the centred card used by the sign-in screens.
func Auth(title string, content templ.Component) templ.Component {
	return document(title, components.Func(func(h *components.HTML) {
		h.Raw(`<body class="font-sans"><div class="flex min-h-screen items-center justify-center bg-gray-100 text-gray-800 dark:bg-gray-900 dark:text-gray-200">`)
		h.Raw(`<div id="page" class="w-full max-w-md rounded-lg bg-white p-8 shadow-lg dark:bg-gray-800">`)
		h.Render(content)
		h.Raw(`</div></div></body>`)
	}))
}
