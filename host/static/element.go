package static

import (
	"slices"
	"strings"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"

	"github.com/gogpu/cdivs/css"
	"github.com/gogpu/cdivs/host"
	"github.com/gogpu/cdivs/internal/logx"
)

var initial = map[string]string{
	"background-color":      "rgba(0, 0, 0, 0)",
	"background-image":      "none",
	"background-size":       "auto",
	"background-position":   "0% 0%",
	"background-repeat":     "repeat",
	"background-attachment": "scroll",
	"color":                 "rgb(0, 0, 0)",
	"opacity":               "1",
	"position":              "static",
	"display":               "block",
	"width":                 "auto",
	"height":                "auto",
	"overflow":              "visible",
}

// Element implements host.Element over an html.Node.
type Element struct {
	n  *html.Node
	d  *Document
	id string
}

var _ host.Element = (*Element)(nil)

// ID implements host.Element.
func (e *Element) ID() string { return e.id }

// Tag implements host.Element.
func (e *Element) Tag() string { return e.n.Data }

// Node returns the underlying html node.
func (e *Element) Node() *html.Node { return e.n }

// Computed implements host.Element.
func (e *Element) Computed(prop string) string {
	prop = strings.ToLower(prop)
	v, imp := "", false
	apply := func(decls []declaration) {
		for _, decl := range decls {
			for _, x := range expand(decl) {
				if x.prop == prop && (x.important || !imp) {
					v, imp = x.value, x.important
				}
			}
		}
	}
	apply(e.d.match(e.n))
	inline := e.inline()
	for i := range inline {
		if imp && !inline[i].important {
			inline[i].prop = ""
		}
	}
	apply(inline)
	if v == "" {
		return initial[prop]
	}
	return v
}

// expand splits the background shorthand into longhands.
func expand(decl declaration) []declaration {
	if decl.prop != "background" {
		return []declaration{decl}
	}
	var images, colour []string
	for _, part := range css.Split(decl.value, ' ') {
		if strings.Contains(part, "(") && !strings.HasPrefix(part, "rgb") && !strings.HasPrefix(part, "hsl") {
			images = append(images, part)
		} else {
			colour = append(colour, part)
		}
	}
	out := []declaration{
		{"background-image", "none", decl.important},
		{"background-color", initial["background-color"], decl.important},
	}
	if len(images) > 0 {
		out[0].value = strings.Join(images, " ")
	}
	if len(colour) > 0 && decl.value != "none" {
		out[1].value = strings.Join(colour, " ")
	}
	return out
}

func (e *Element) inline() []declaration {
	src, ok := e.Attr("style")
	if !ok || strings.TrimSpace(src) == "" {
		return nil
	}
	if !strings.HasSuffix(strings.TrimSpace(src), ";") {
		src += ";"
	}
	decls, err := parser.ParseDeclarations(src)
	if err != nil {
		logx.Diag("static", "bad inline style", "style", src, "err", err)
		return nil
	}
	out := make([]declaration, 0, len(decls))
	for _, decl := range decls {
		out = append(out, declaration{strings.ToLower(decl.Property), decl.Value, decl.Important})
	}
	return out
}

// Rect implements host.Element.
func (e *Element) Rect() host.Rect { return e.d.rect(e.n) }

// Attr implements host.Element.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.n.Attr {
		if a.Key == name {
			return a.Val, true
		}
	}
	return "", false
}

// SetAttr implements host.Element.
func (e *Element) SetAttr(name, value string) {
	defer e.d.invalidate()
	for i, a := range e.n.Attr {
		if a.Key == name {
			e.n.Attr[i].Val = value
			return
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
}

// RemoveAttr implements host.Element.
func (e *Element) RemoveAttr(name string) {
	e.n.Attr = slices.DeleteFunc(e.n.Attr, func(a html.Attribute) bool { return a.Key == name })
	e.d.invalidate()
}

// SetStyle implements host.Element.
func (e *Element) SetStyle(prop, value string) {
	decls := e.inline()
	i := slices.IndexFunc(decls, func(d declaration) bool { return d.prop == prop })
	switch {
	case value == "" && i >= 0:
		decls = slices.Delete(decls, i, i+1)
	case value == "":
		return
	case i >= 0:
		decls[i].value = value
	default:
		decls = append(decls, declaration{prop: prop, value: value})
	}
	if len(decls) == 0 {
		e.RemoveAttr("style")
		return
	}
	var b strings.Builder
	for i, decl := range decls {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(decl.prop + ": " + decl.value)
		if decl.important {
			b.WriteString(" !important")
		}
		b.WriteByte(';')
	}
	e.SetAttr("style", b.String())
}

func (e *Element) classes() []string {
	v, _ := e.Attr("class")
	return strings.Fields(v)
}

// HasClass reports whether the element carries class name.
func (e *Element) HasClass(name string) bool { return slices.Contains(e.classes(), name) }

// AddClass implements host.Element.
func (e *Element) AddClass(name string) {
	if cl := e.classes(); !slices.Contains(cl, name) {
		e.SetAttr("class", strings.Join(append(cl, name), " "))
	}
}

// RemoveClass implements host.Element.
func (e *Element) RemoveClass(name string) {
	cl := e.classes()
	i := slices.Index(cl, name)
	if i < 0 {
		return
	}
	cl = slices.Delete(cl, i, i+1)
	if len(cl) == 0 {
		e.RemoveAttr("class")
		return
	}
	e.SetAttr("class", strings.Join(cl, " "))
}

func (e *Element) nav(n *html.Node) host.Element {
	if el := e.d.wrap(n); el != nil {
		return el
	}
	return nil
}

// Parent implements host.Element.
func (e *Element) Parent() host.Element { return e.nav(e.n.Parent) }

// Next implements host.Element.
func (e *Element) Next() host.Element {
	for s := e.n.NextSibling; s != nil; s = s.NextSibling {
		if s.Type == html.ElementNode {
			return e.nav(s)
		}
	}
	return nil
}

// Prev implements host.Element.
func (e *Element) Prev() host.Element {
	for s := e.n.PrevSibling; s != nil; s = s.PrevSibling {
		if s.Type == html.ElementNode {
			return e.nav(s)
		}
	}
	return nil
}
