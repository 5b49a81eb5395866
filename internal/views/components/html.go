package components

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// HTML writes markup to w and remembers the first error. Text and attribute
// values are escaped; Raw is written verbatim.
type HTML struct {
	ctx context.Context
	w   io.Writer
	err error
}

func NewHTML(ctx context.Context, w io.Writer) *HTML {
	return &HTML{ctx: ctx, w: w}
}

// Raw writes trusted markup.
func (h *HTML) Raw(s string) *HTML {
	if h.err == nil {
		_, h.err = io.WriteString(h.w, s)
	}
	return h
}

// Text writes escaped text.
func (h *HTML) Text(s string) *HTML {
	return h.Raw(templ.EscapeString(s))
}

// Attr writes ` name="value"` with value escaped.
func (h *HTML) Attr(name, value string) *HTML {
	return h.Raw(" " + name + `="` + templ.EscapeString(value) + `"`)
}

// AttrIf writes a boolean attribute when cond holds.
func (h *HTML) AttrIf(cond bool, name string) *HTML {
	if cond {
		h.Raw(" " + name)
	}
	return h
}

// URL writes an href-like attribute after sanitising the URL.
func (h *HTML) URL(name, value string) *HTML {
	return h.Attr(name, string(templ.URL(value)))
}

// Render writes a nested component.
func (h *HTML) Render(c templ.Component) *HTML {
	if h.err == nil && c != nil {
		h.err = c.Render(h.ctx, h.w)
	}
	return h
}

func (h *HTML) Err() error {
	return h.err
}

// Func adapts a markup writing function to templ.Component.
func Func(fn func(h *HTML)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		h := NewHTML(ctx, w)
		fn(h)
		return h.Err()
	})
}
