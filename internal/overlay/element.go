// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package overlay

import (
	"bytes"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// ContentKind tells a host how to materialise element content.
type ContentKind int

const (
	ContentNone ContentKind = iota
	ContentText
	ContentMarkup
)

func (k ContentKind) String() string {
	switch k {
	case ContentText:
		return "text"
	case ContentMarkup:
		return "markup"
	default:
		return "none"
	}
}

// Element is the renderable unit of an overlay. Hosts mount it; the
// activation engine treats it as opaque apart from attachment.
type Element struct {
	mu      sync.RWMutex
	id      string
	visible bool

	classes  []string
	attrs    map[string]string
	kind     ContentKind
	content  string
	position Position
	cover    bool

	attached atomic.Bool
}

func newElement(class string, opts Options, kind ContentKind, content string) *Element {
	el := &Element{
		id:       strings.TrimSpace(opts.ID),
		attrs:    make(map[string]string, len(opts.Attrs)),
		kind:     kind,
		content:  content,
		position: opts.Position,
		cover:    opts.Cover,
	}
	if class != "" {
		el.classes = append(el.classes, class)
	}
	el.classes = append(el.classes, ItemClass)
	if opts.Cover {
		el.classes = append(el.classes, CoverClass)
	}
	for key, value := range opts.Attrs {
		if key == "class" {
			el.classes = append(el.classes, strings.Fields(value)...)
			continue
		}
		el.attrs[key] = value
	}
	return el
}

// ID returns the element identifier, empty until assigned.
func (e *Element) ID() string {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.id
}

// EnsureID assigns an identifier from gen when none is set and returns the
// effective identifier.
func (e *Element) EnsureID(gen func() string) string {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.id == "" && gen != nil {
		e.id = gen()
	}
	return e.id
}

// Visible reports the visibility flag toggled by Begin/End effects.
func (e *Element) Visible() bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.visible
}

// SetVisible sets the visibility flag.
func (e *Element) SetVisible(v bool) {
	e.mu.Lock()
	e.visible = v
	e.mu.Unlock()
}

// Classes returns a copy of the class list.
func (e *Element) Classes() []string {
	return append([]string(nil), e.classes...)
}

// Attr returns a copied attribute.
func (e *Element) Attr(key string) (string, bool) {
	v, ok := e.attrs[key]
	return v, ok
}

func (e *Element) Kind() ContentKind  { return e.kind }
func (e *Element) Content() string    { return e.content }
func (e *Element) Position() Position { return e.position }
func (e *Element) Cover() bool        { return e.cover }

// Attach claims the element for one projector.
func (e *Element) Attach() error {
	if !e.attached.CompareAndSwap(false, true) {
		return ErrAlreadyAttached
	}
	return nil
}

// Detach releases the claim taken by Attach.
func (e *Element) Detach() {
	e.attached.Store(false)
}

// Attached reports whether a projector currently owns the element.
func (e *Element) Attached() bool {
	return e.attached.Load()
}

// WriteHTML serialises the element as a div. Hidden elements carry
// display:none.
func (e *Element) WriteHTML(w io.Writer) error {
	node, err := e.node()
	if err != nil {
		return err
	}
	return html.Render(w, node)
}

// HTML returns the serialised element.
func (e *Element) HTML() (string, error) {
	var buf bytes.Buffer
	if err := e.WriteHTML(&buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Element) node() (*html.Node, error) {
	id := e.ID()
	visible := e.Visible()

	div := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	if id != "" {
		div.Attr = append(div.Attr, html.Attribute{Key: "data-overlay-id", Val: id})
	}
	div.Attr = append(div.Attr, html.Attribute{Key: "class", Val: strings.Join(e.classes, " ")})

	keys := make([]string, 0, len(e.attrs))
	for k := range e.attrs {
		if k != "style" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	for _, k := range keys {
		div.Attr = append(div.Attr, html.Attribute{Key: k, Val: e.attrs[k]})
	}

	var style []string
	if s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(e.attrs["style"]), ";")); s != "" {
		style = append(style, s)
	}
	style = append(style, e.position.declarations()...)
	if !visible {
		style = append(style, "display:none")
	}
	if len(style) > 0 {
		div.Attr = append(div.Attr, html.Attribute{Key: "style", Val: strings.Join(style, ";")})
	}

	switch e.kind {
	case ContentText:
		div.AppendChild(&html.Node{Type: html.TextNode, Data: e.content})
	case ContentMarkup:
		nodes, err := parseMarkup(e.content)
		if err != nil {
			return nil, err
		}
		for _, n := range nodes {
			div.AppendChild(n)
		}
	}
	return div, nil
}

func parseMarkup(markup string) ([]*html.Node, error) {
	context := &html.Node{Type: html.ElementNode, Data: "div", DataAtom: atom.Div}
	nodes, err := html.ParseFragment(strings.NewReader(markup), context)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMarkup, err)
	}
	return nodes, nil
}
