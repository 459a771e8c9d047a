package converter

import (
	"strings"
)

// Node is a node of the rewritten JSX tree.
type Node interface {
	isNode()
}

// AttrKind tells the printer how to emit an attribute value.
type AttrKind int

const (
	AttrString AttrKind = iota
	AttrExpr
	AttrBool
)

// Attr is a JSX attribute.
type Attr struct {
	Name  string
	Value string
	Kind  AttrKind
}

// Element is a JSX element.
type Element struct {
	Tag      string
	Attrs    []Attr
	Children []Node
}

// Text is decoded character data. The printer escapes it for JSX.
type Text struct {
	Data string
}

// Expr is JavaScript code emitted as {Code}. Binders never rewrite inside it.
type Expr struct {
	Code string
}

func (*Element) isNode() {}
func (*Text) isNode()    {}
func (*Expr) isNode()    {}

// Attr returns the attribute named name.
func (e *Element) Attr(name string) (Attr, bool) {
	for _, a := range e.Attrs {
		if a.Name == name {
			return a, true
		}
	}
	return Attr{}, false
}

func (e *Element) setAttr(a Attr) {
	for i := range e.Attrs {
		if e.Attrs[i].Name == a.Name {
			e.Attrs[i] = a
			return
		}
	}
	e.Attrs = append(e.Attrs, a)
}

var inlineTags = map[string]bool{
	"a": true, "abbr": true, "b": true, "bdi": true, "bdo": true, "br": true, "button": true,
	"cite": true, "code": true, "data": true, "dfn": true, "em": true, "i": true, "img": true,
	"input": true, "kbd": true, "label": true, "mark": true, "q": true, "s": true, "samp": true,
	"select": true, "small": true, "span": true, "strong": true, "sub": true, "sup": true,
	"svg": true, "time": true, "u": true, "var": true, "wbr": true,
}

func isInline(n Node) bool {
	switch v := n.(type) {
	case *Element:
		return inlineTags[v.Tag]
	case *Expr:
		return true
	case *Text:
		return strings.TrimSpace(v.Data) != ""
	}
	return false
}

var jsxTextReplacer = strings.NewReplacer(
	"&", "&amp;",
	"<", "&lt;",
	">", "&gt;",
	"{", "&#123;",
	"}", "&#125;",
	"\u00a0", "&nbsp;",
)

var jsxAttrReplacer = strings.NewReplacer(
	"&", "&amp;",
	`"`, "&quot;",
)

func collapseSpace(s string) string {
	var b strings.Builder
	space := false
	for _, r := range s {
		switch r {
		case ' ', '\t', '\n', '\r', '\f':
			space = true
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	if space {
		b.WriteByte(' ')
	}
	return b.String()
}

// line is one output line at an indentation depth.
type line struct {
	depth int
	text  string
}

type printer struct {
	lines []line
}

func (p *printer) emit(depth int, s string) {
	p.lines = append(p.lines, line{depth: depth, text: s})
}

func openTag(e *Element) string {
	var b strings.Builder
	b.WriteByte('<')
	b.WriteString(e.Tag)
	for _, a := range e.Attrs {
		b.WriteByte(' ')
		b.WriteString(a.Name)
		switch a.Kind {
		case AttrString:
			b.WriteString(`="`)
			b.WriteString(jsxAttrReplacer.Replace(a.Value))
			b.WriteByte('"')
		case AttrExpr:
			b.WriteString("={")
			b.WriteString(a.Value)
			b.WriteByte('}')
		}
	}
	return b.String()
}

func hasElementChild(e *Element) bool {
	for _, c := range e.Children {
		if _, ok := c.(*Element); ok {
			return true
		}
	}
	return false
}

func (p *printer) element(depth int, e *Element) {
	if len(e.Children) == 0 {
		p.emit(depth, openTag(e)+" />")
		return
	}
	if e.Tag == "pre" || e.Tag == "textarea" {
		if raw, ok := rawText(e); ok {
			p.emit(depth, openTag(e)+">{"+jsString(raw)+"}</"+e.Tag+">")
			return
		}
	}
	if !hasElementChild(e) {
		p.emit(depth, openTag(e)+">"+inlineChildren(e.Children)+"</"+e.Tag+">")
		return
	}
	p.emit(depth, openTag(e)+">")
	p.children(depth+1, e.Children)
	p.emit(depth, "</"+e.Tag+">")
}

func rawText(e *Element) (string, bool) {
	var b strings.Builder
	for _, c := range e.Children {
		t, ok := c.(*Text)
		if !ok {
			return "", false
		}
		b.WriteString(t.Data)
	}
	return strings.TrimPrefix(b.String(), "\n"), true
}

func inlineChildren(nodes []Node) string {
	var b strings.Builder
	for i, n := range nodes {
		switch v := n.(type) {
		case *Text:
			s := collapseSpace(v.Data)
			if i == 0 {
				s = strings.TrimLeft(s, " ")
			}
			if i == len(nodes)-1 {
				s = strings.TrimRight(s, " ")
			}
			b.WriteString(jsxTextReplacer.Replace(s))
		case *Expr:
			b.WriteString("{" + v.Code + "}")
		}
	}
	return b.String()
}

// children prints a mixed child list one node per line. Whitespace that
// separates inline content is kept as {' '} because JSX drops whitespace
// containing a line break.
func (p *printer) children(depth int, nodes []Node) {
	last := len(nodes) - 1
	for i, n := range nodes {
		switch v := n.(type) {
		case *Element:
			p.element(depth, v)
		case *Expr:
			p.emit(depth, "{"+v.Code+"}")
		case *Text:
			s := collapseSpace(v.Data)
			content := strings.TrimSpace(s)
			if content == "" {
				if i > 0 && i < last && (isInline(nodes[i-1]) || isInline(nodes[i+1])) {
					p.emit(depth, "{' '}")
				}
				continue
			}
			if i > 0 && strings.HasPrefix(s, " ") {
				p.emit(depth, "{' '}")
			}
			p.emit(depth, jsxTextReplacer.Replace(content))
			if i < last && strings.HasSuffix(s, " ") {
				p.emit(depth, "{' '}")
			}
		}
	}
}

// renderLines prints nodes as JSX children starting at depth 0.
func renderLines(nodes []Node) []line {
	var p printer
	p.children(0, nodes)
	return p.lines
}

// indent joins lines with two spaces per level on top of base, dropping
// blank lines.
func indent(lines []line, base int) string {
	var b strings.Builder
	for _, l := range lines {
		if strings.TrimSpace(l.text) == "" {
			continue
		}
		b.WriteString(strings.Repeat("  ", base+l.depth))
		b.WriteString(l.text)
		b.WriteByte('\n')
	}
	return b.String()
}
