// Package static is an in-memory host backed by an HTML document.
//
// Computed style is resolved from <style> sheets and inline style
// attributes (source order, !important honoured, no inheritance), layout
// is a simple block flow, and time only moves when the caller advances
// the manual clock. Tests and the CLI drive dividers through it.
package static

import (
	"fmt"
	"image"
	"io"
	"io/fs"
	"strings"

	"github.com/aymerick/douceur/parser"
	selcss "github.com/ericchiang/css"
	"github.com/google/uuid"
	"golang.org/x/net/html"

	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/internal/logx"
)

type rule struct {
	sel   *selcss.Selector
	decls []declaration
}

type declaration struct {
	prop, value string
	important   bool
}

// Document implements host.Host over a parsed HTML tree.
type Document struct {
	root  *html.Node
	body  *html.Node
	nodes map[*html.Node]*Element

	sheet   []rule
	matched map[*html.Node][]declaration
	rects   map[*html.Node]host.Rect

	vp host.Viewport
	ua string

	// Images are served by LoadImage before FS is consulted.
	Images map[string]image.Image
	FS     fs.FS

	loop
}

// Option configures a Document.
type Option func(*Document)

// WithViewport sets the initial viewport.
func WithViewport(vp host.Viewport) Option { return func(d *Document) { d.vp = vp } }

// WithUserAgent sets the user agent string.
func WithUserAgent(ua string) Option { return func(d *Document) { d.ua = ua } }

// WithFS serves images from fsys.
func WithFS(fsys fs.FS) Option { return func(d *Document) { d.FS = fsys } }

// Parse reads an HTML document.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, fmt.Errorf("static: parse html: %w", err)
	}
	d := &Document{
		root:   root,
		nodes:  make(map[*html.Node]*Element),
		vp:     host.Viewport{W: 1280, H: 800, DPR: 1},
		ua:     "cdivs-static/1.0",
		Images: make(map[string]image.Image),
	}
	d.loop.init(d)
	for _, o := range opts {
		o(d)
	}
	d.loop.seenVP = d.vp
	d.body = findTag(root, "body")
	if d.body == nil {
		d.body = root
	}
	d.loadSheets()
	return d, nil
}

// ParseString is Parse over a string.
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

func findTag(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if f := findTag(c, tag); f != nil {
			return f
		}
	}
	return nil
}

func (d *Document) loadSheets() {
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "style" {
			var b strings.Builder
			for c := n.FirstChild; c != nil; c = c.NextSibling {
				b.WriteString(c.Data)
			}
			d.AddStyleSheet(b.String())
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
}

// AddStyleSheet appends CSS rules to the document.
func (d *Document) AddStyleSheet(src string) {
	ss, err := parser.Parse(src)
	if err != nil {
		logx.Diag("static", "bad stylesheet", "err", err)
		return
	}
	for _, r := range ss.Rules {
		if len(r.Selectors) == 0 {
			continue
		}
		sel, err := selcss.Parse(strings.Join(r.Selectors, ","))
		if err != nil {
			logx.Diag("static", "bad selector", "selector", r.Selectors, "err", err)
			continue
		}
		out := rule{sel: sel}
		for _, decl := range r.Declarations {
			out.decls = append(out.decls, declaration{decl.Property, decl.Value, decl.Important})
		}
		d.sheet = append(d.sheet, out)
	}
	d.invalidate()
}

// invalidate drops cached style matches and layout.
func (d *Document) invalidate() {
	d.matched = nil
	d.rects = nil
}

func (d *Document) match(n *html.Node) []declaration {
	if d.matched == nil {
		d.matched = make(map[*html.Node][]declaration)
		for _, r := range d.sheet {
			for _, m := range r.sel.Select(d.root) {
				d.matched[m] = append(d.matched[m], r.decls...)
			}
		}
	}
	return d.matched[n]
}

func (d *Document) wrap(n *html.Node) *Element {
	if n == nil || n.Type != html.ElementNode {
		return nil
	}
	if e, ok := d.nodes[n]; ok {
		return e
	}
	e := &Element{n: n, d: d, id: uuid.NewString()}
	d.nodes[n] = e
	return e
}

func (d *Document) elem(e host.Element) *Element {
	el, _ := e.(*Element)
	return el
}

// Body returns the body element.
func (d *Document) Body() *Element { return d.wrap(d.body) }

// ByID returns the element with the given id attribute.
func (d *Document) ByID(id string) *Element {
	var found *html.Node
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		for _, a := range n.Attr {
			if a.Key == "id" && a.Val == id {
				found = n
				return
			}
		}
		for c := n.FirstChild; c != nil && found == nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(d.root)
	return d.wrap(found)
}

// CreateElement implements host.Document.
func (d *Document) CreateElement(tag string) host.Element {
	return d.wrap(&html.Node{Type: html.ElementNode, Data: strings.ToLower(tag)})
}

// Clone implements host.Document.
func (d *Document) Clone(e host.Element) host.Element {
	el := d.elem(e)
	if el == nil {
		return nil
	}
	n := &html.Node{Type: html.ElementNode, Data: el.n.Data, DataAtom: el.n.DataAtom}
	n.Attr = append(n.Attr, el.n.Attr...)
	return d.wrap(n)
}

func detach(n *html.Node) {
	if n.Parent != nil {
		n.Parent.RemoveChild(n)
	}
}

// Wrap implements host.Document.
func (d *Document) Wrap(e, wrapper host.Element) {
	el, w := d.elem(e), d.elem(wrapper)
	if el == nil || w == nil || el.n.Parent == nil {
		return
	}
	detach(w.n)
	el.n.Parent.InsertBefore(w.n, el.n)
	detach(el.n)
	w.n.AppendChild(el.n)
	d.invalidate()
}

// Unwrap implements host.Document.
func (d *Document) Unwrap(wrapper host.Element) {
	w := d.elem(wrapper)
	if w == nil || w.n.Parent == nil {
		return
	}
	for c := w.n.FirstChild; c != nil; c = w.n.FirstChild {
		w.n.RemoveChild(c)
		w.n.Parent.InsertBefore(c, w.n)
	}
	detach(w.n)
	d.invalidate()
}

// Prepend implements host.Document.
func (d *Document) Prepend(parent, child host.Element) {
	p, c := d.elem(parent), d.elem(child)
	if p == nil || c == nil {
		return
	}
	detach(c.n)
	p.n.InsertBefore(c.n, p.n.FirstChild)
	d.invalidate()
}

// Remove implements host.Document.
func (d *Document) Remove(e host.Element) {
	if el := d.elem(e); el != nil {
		detach(el.n)
		d.invalidate()
	}
}

// Query implements host.Document.
func (d *Document) Query(root host.Element, selector string) []host.Element {
	r := d.elem(root)
	if r == nil || strings.TrimSpace(selector) == "" {
		return nil
	}
	sel, err := selcss.Parse(selector)
	if err != nil {
		logx.Diag("static", "bad selector", "selector", selector, "err", err)
		return nil
	}
	var out []host.Element
	for _, n := range sel.Select(r.n) {
		if n != r.n {
			out = append(out, d.wrap(n))
		}
	}
	return out
}

// Viewport implements host.Document.
func (d *Document) Viewport() host.Viewport { return d.vp }

// UserAgent implements host.Document.
func (d *Document) UserAgent() string { return d.ua }

// HTML renders the current tree.
func (d *Document) HTML() string {
	var b strings.Builder
	if err := html.Render(&b, d.root); err != nil {
		return ""
	}
	return b.String()
}
