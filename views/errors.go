package views

import "github.com/a-h/templ"

// NotFound renders the 404 page.
func NotFound(s Site) templ.Component {
	return Layout(s, PageMeta{Title: "Not found"}, component(func(h *htmlWriter) {
		h.raw(`<section class="error-page">`)
		h.elem("h1", "404")
		h.elem("p", "The page you are looking for does not exist.")
		h.raw(`<p><a href="/">Back home</a></p></section>`)
	}))
}

// ServerError renders the 500 page.
func ServerError(s Site) templ.Component {
	return Layout(s, PageMeta{Title: "Server error"}, component(func(h *htmlWriter) {
		h.raw(`<section class="error-page">`)
		h.elem("h1", "500")
		h.elem("p", "Something went wrong. Please try again later.")
		h.raw("</section>")
	}))
}
