// Package templates renders the grid and gallery pages as templ components.
package templates

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// writer accumulates the first write error so markup can be emitted without
// checking every call.
type writer struct {
	w   io.Writer
	err error
}

func (hw *writer) raw(parts ...string) {
	for _, p := range parts {
		if hw.err != nil {
			return
		}
		_, hw.err = io.WriteString(hw.w, p)
	}
}

// text writes s HTML-escaped.
func (hw *writer) text(s string) {
	hw.raw(templ.EscapeString(s))
}

// attr writes ` name="value"` with value escaped.
func (hw *writer) attr(name, value string) {
	hw.raw(" ", name, `="`, templ.EscapeString(value), `"`)
}

func (hw *writer) flag(name string, on bool) {
	if on {
		hw.raw(" ", name)
	}
}

func (hw *writer) component(ctx context.Context, c templ.Component) {
	if hw.err != nil {
		return
	}
	hw.err = c.Render(ctx, hw.w)
}

func component(fn func(ctx context.Context, hw *writer)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		hw := &writer{w: w}
		fn(ctx, hw)
		return hw.err
	})
}
