// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package overlay defines the visual units a projector shows and hides.
//
// An Overlay owns exactly one Element, materialised once at construction.
// Begin and End only touch visual state: they never look at timing windows.
// The built-in variants are Text and Markup; other variants embed *Base and
// override Begin/End to add their own effect.
package overlay

import (
	"errors"
	"strings"
)

// Class names carried by rendered elements.
const (
	ItemClass  = "projector-overlay-item"
	CoverClass = "projector-overlay-cover"
	TextClass  = "projector-textbox"
)

var (
	// ErrAlreadyAttached is returned when an element is claimed by a second projector.
	ErrAlreadyAttached = errors.New("overlay element already attached")
	// ErrInvalidMarkup is returned when markup content cannot be parsed.
	ErrInvalidMarkup = errors.New("invalid overlay markup")
)

// Overlay is the capability set the activation engine needs.
type Overlay interface {
	// Render returns the element materialised at construction.
	Render() *Element
	// Begin shows the overlay. done must be called once the effect is
	// visually complete, possibly later and from another goroutine.
	Begin(dirty bool, done func())
	// End hides the overlay; done as for Begin.
	End(dirty bool, done func())
}

// Options configures how an overlay element is rendered.
type Options struct {
	// ID identifies the overlay. When empty the host assigns one on mount.
	ID string
	// Attrs are copied onto the element. A "class" attribute is appended to
	// the variant's class list.
	Attrs    map[string]string
	Position Position
	// Cover stretches the overlay over the whole media element.
	Cover bool
}

// Position holds CSS lengths applied as inline style.
type Position struct {
	Top    string `yaml:"top,omitempty" json:"top,omitempty"`
	Right  string `yaml:"right,omitempty" json:"right,omitempty"`
	Left   string `yaml:"left,omitempty" json:"left,omitempty"`
	Bottom string `yaml:"bottom,omitempty" json:"bottom,omitempty"`
	Height string `yaml:"height,omitempty" json:"height,omitempty"`
	Width  string `yaml:"width,omitempty" json:"width,omitempty"`
}

func (p Position) declarations() []string {
	var out []string
	for _, d := range [...]struct{ name, value string }{
		{"top", p.Top},
		{"right", p.Right},
		{"left", p.Left},
		{"bottom", p.Bottom},
		{"height", p.Height},
		{"width", p.Width},
	} {
		if v := strings.TrimSpace(d.value); v != "" {
			out = append(out, d.name+":"+v)
		}
	}
	return out
}

// Base implements Overlay with the default visibility toggle. Custom
// variants embed it.
type Base struct {
	class string
	opts  Options
	el    *Element
}

// NewBase renders the element for a variant. class may be empty.
func NewBase(class string, opts Options, kind ContentKind, content string) (*Base, error) {
	if kind == ContentMarkup {
		if _, err := parseMarkup(content); err != nil {
			return nil, err
		}
	}
	return &Base{class: class, opts: opts, el: newElement(class, opts, kind, content)}, nil
}

func (b *Base) Render() *Element { return b.el }

// Class returns the variant class name.
func (b *Base) Class() string { return b.class }

// Options returns the options the overlay was built with.
func (b *Base) Options() Options { return b.opts }

// Begin makes the element visible and completes immediately.
func (b *Base) Begin(_ bool, done func()) {
	b.el.SetVisible(true)
	if done != nil {
		done()
	}
}

// End hides the element and completes immediately.
func (b *Base) End(_ bool, done func()) {
	b.el.SetVisible(false)
	if done != nil {
		done()
	}
}

// Text shows static text. The text is escaped when serialised.
type Text struct {
	*Base
}

// NewText builds a text overlay.
func NewText(text string, opts Options) *Text {
	return &Text{Base: &Base{
		class: TextClass,
		opts:  opts,
		el:    newElement(TextClass, opts, ContentText, text),
	}}
}

// Markup shows raw markup.
type Markup struct {
	*Base
}

// NewMarkup builds a markup overlay. The markup is parsed up front so that
// broken content fails at construction rather than on first render.
func NewMarkup(markup string, opts Options) (*Markup, error) {
	base, err := NewBase("", opts, ContentMarkup, markup)
	if err != nil {
		return nil, err
	}
	return &Markup{Base: base}, nil
}

var (
	_ Overlay = (*Base)(nil)
	_ Overlay = (*Text)(nil)
	_ Overlay = (*Markup)(nil)
)
