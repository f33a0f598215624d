package templates

import (
	"context"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/techbeat/internal/forms"
)

// GalleryRoles are the options of the role select.
var GalleryRoles = []string{"admin", "user", "manager"}

// GalleryState is what the gallery form renders: the submitted values, the
// field errors and, after a valid submission, the echoed JSON.
type GalleryState struct {
	Form   forms.GalleryForm
	Result forms.ValidationResult
	Echo   string
}

// GalleryPage renders the components gallery.
func GalleryPage(st GalleryState) templ.Component {
	return Layout("Components Gallery", GalleryPartial(st))
}

// GalleryPartial renders the demo form. HTMX replaces it with the server's
// verdict after each submission.
func GalleryPartial(st GalleryState) templ.Component {
	return component(func(ctx context.Context, hw *writer) {
		f := st.Form
		hw.raw(`<section id="gallery"><h1>Components Gallery</h1>`)
		hw.raw(`<form id="demo-form" method="post" action="/api/forms/gallery" novalidate`)
		hw.attr("hx-post", "/api/forms/gallery")
		hw.attr("hx-target", "#gallery")
		hw.attr("hx-swap", "outerHTML")
		hw.attr("hx-disabled-elt", "find button")
		hw.raw(">")

		field(hw, st.Result, "username", "Username", func() {
			hw.raw(`<input id="username" name="username" data-testid="input-username"`)
			hw.attr("value", f.Username)
			hw.raw(">")
		})
		field(hw, st.Result, "email", "Email", func() {
			hw.raw(`<input id="email" name="email" type="email" data-testid="input-email"`)
			hw.attr("value", f.Email)
			hw.raw(">")
		})
		field(hw, st.Result, "age", "Age", func() {
			hw.raw(`<input id="age" name="age" type="number" data-testid="input-age"`)
			hw.attr("value", strconv.Itoa(f.Age))
			hw.raw(">")
		})
		field(hw, st.Result, "role", "Role", func() {
			hw.raw(`<select id="role" name="role" data-testid="select-role"><option value="">Select a role</option>`)
			for _, r := range GalleryRoles {
				hw.raw("<option")
				hw.attr("value", r)
				hw.flag("selected", r == f.Role)
				hw.raw(">")
				hw.text(r)
				hw.raw("</option>")
			}
			hw.raw("</select>")
		})
		field(hw, st.Result, "terms", "", func() {
			hw.raw(`<label><input type="checkbox" name="terms" value="true" data-testid="checkbox-terms"`)
			hw.flag("checked", f.Terms)
			hw.raw("> Accept terms and conditions</label>")
		})

		hw.raw(`<button type="submit" data-testid="button-submit">Submit</button></form>`)
		if st.Echo != "" {
			hw.raw(`<pre id="form-result" data-testid="form-result">`)
			hw.text(st.Echo)
			hw.raw("</pre>")
		}
		hw.raw("</section>")
	})
}

// field lays out one labelled input with its validation message.
func field(hw *writer, res forms.ValidationResult, name, label string, input func()) {
	hw.raw("<div>")
	if label != "" {
		hw.raw("<label")
		hw.attr("for", name)
		hw.raw(">")
		hw.text(label)
		hw.raw("</label>")
	}
	input()
	if msg := res.For(name); msg != "" {
		hw.raw(`<p class="field-error"`)
		hw.attr("data-testid", "error-"+name)
		hw.raw(">")
		hw.text(msg)
		hw.raw("</p>")
	}
	hw.raw("</div>")
}
