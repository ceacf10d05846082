package views

import "github.com/a-h/templ"

// PreviewLogin renders the draft preview password form, or the logout form
// when the session is already previewing.
func PreviewLogin(s Site, showError bool, csrfToken string) templ.Component {
	return Layout(s, PageMeta{Title: "Preview"}, component(func(h *htmlWriter) {
		h.raw(`<section class="preview">`)
		h.elem("h1", "Draft preview")
		if s.Preview {
			h.elem("p", "Drafts are visible in this session.")
			h.open("form", "method", "post", "action", "/preview/logout/")
			h.open("input", "type", "hidden", "name", "_csrf", "value", csrfToken)
			h.raw(`<button type="submit">Leave preview</button></form></section>`)
			return
		}
		if showError {
			h.elem("p", "Wrong password.", "class", "error")
		}
		h.open("form", "method", "post", "action", "/preview/login/")
		h.open("input", "type", "hidden", "name", "_csrf", "value", csrfToken)
		h.raw(`<label>Password <input type="password" name="password" autocomplete="current-password" required></label>`)
		h.raw(`<button type="submit">Enter preview</button></form></section>`)
	}))
}
