package converter

import (
	"strings"

	"github.com/aymerick/douceur/parser"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// attrRenames maps HTML attribute names to their JSX names.
var attrRenames = map[string]string{
	"class":           "className",
	"for":             "htmlFor",
	"tabindex":        "tabIndex",
	"readonly":        "readOnly",
	"colspan":         "colSpan",
	"rowspan":         "rowSpan",
	"maxlength":       "maxLength",
	"autocomplete":    "autoComplete",
	"autofocus":       "autoFocus",
	"contenteditable": "contentEditable",

	"accesskey":       "accessKey",
	"allowfullscreen": "allowFullScreen",
	"autoplay":        "autoPlay",
	"cellpadding":     "cellPadding",
	"cellspacing":     "cellSpacing",
	"charset":         "charSet",
	"crossorigin":     "crossOrigin",
	"datetime":        "dateTime",
	"enctype":         "encType",
	"formnovalidate":  "formNoValidate",
	"frameborder":     "frameBorder",
	"inputmode":       "inputMode",
	"minlength":       "minLength",
	"novalidate":      "noValidate",
	"playsinline":     "playsInline",
	"referrerpolicy":  "referrerPolicy",
	"spellcheck":      "spellCheck",
	"srcset":          "srcSet",
	"usemap":          "useMap",
}

// eventNames maps inline handler attributes to JSX event props. Handlers
// outside this table are dropped since JSX rejects string handlers.
var eventNames = map[string]string{
	"onclick":      "onClick",
	"onchange":     "onChange",
	"onsubmit":     "onSubmit",
	"onfocus":      "onFocus",
	"onblur":       "onBlur",
	"onmouseover":  "onMouseOver",
	"onmouseout":   "onMouseOut",
	"oninput":      "onInput",
	"onkeydown":    "onKeyDown",
	"onkeyup":      "onKeyUp",
	"onmouseenter": "onMouseEnter",
	"onmouseleave": "onMouseLeave",
}

var booleanAttrs = map[string]bool{
	"allowFullScreen": true, "async": true, "autoFocus": true, "autoPlay": true,
	"checked": true, "controls": true, "default": true, "defer": true, "disabled": true,
	"formNoValidate": true, "hidden": true, "loop": true, "multiple": true, "muted": true,
	"noValidate": true, "open": true, "playsInline": true, "readOnly": true,
	"required": true, "reversed": true, "selected": true, "defaultChecked": true,
}

// iconMarkers are attributes consumed by client-side icon renderers.
var iconMarkers = map[string]bool{
	"data-lucide":  true,
	"data-feather": true,
}

// rewriter turns parsed HTML into a JSX tree.
type rewriter struct {
	markers    *markerBinder
	retagIcons bool
	handlers   bool
}

func newRewriter(nodes []*html.Node, markers *markerBinder) *rewriter {
	r := &rewriter{markers: markers}
	for _, n := range nodes {
		if hasIconItalic(n) {
			r.retagIcons = true
			break
		}
	}
	return r
}

func hasIconItalic(n *html.Node) bool {
	if n.Type == html.ElementNode && n.DataAtom == atom.I && n.Namespace == "" {
		for _, a := range n.Attr {
			if iconMarkers[a.Key] {
				return true
			}
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if hasIconItalic(c) {
			return true
		}
	}
	return false
}

func (r *rewriter) rewriteAll(nodes []*html.Node) []Node {
	var out []Node
	for _, n := range nodes {
		if j := r.rewrite(n); j != nil {
			out = append(out, j)
		}
	}
	return out
}

func (r *rewriter) rewrite(n *html.Node) Node {
	switch n.Type {
	case html.TextNode:
		return &Text{Data: n.Data}
	case html.ElementNode:
	default:
		return nil
	}
	e := &Element{Tag: n.Data}
	if r.retagIcons && n.DataAtom == atom.I && n.Namespace == "" {
		e.Tag = "span"
	}
	for _, a := range n.Attr {
		if attr, ok := r.attr(n, a); ok {
			e.setAttr(attr)
		}
	}
	if n.DataAtom == atom.Img && n.Namespace == "" {
		if _, ok := e.Attr("alt"); !ok {
			e.Attrs = append(e.Attrs, Attr{Name: "alt", Value: ""})
		}
	}
	var kids []*html.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		kids = append(kids, c)
	}
	e.Children = r.rewriteAll(kids)
	return e
}

func (r *rewriter) attr(n *html.Node, a html.Attribute) (Attr, bool) {
	key := attrName(a)
	val := a.Val

	if key == "style" {
		obj := styleObject(val)
		if obj == "" {
			return Attr{}, false
		}
		return Attr{Name: "style", Value: obj, Kind: AttrExpr}, true
	}
	if strings.HasPrefix(key, "on") {
		name, ok := eventNames[key]
		if !ok {
			return Attr{}, false
		}
		r.handlers = true
		return Attr{Name: name, Value: handler(val), Kind: AttrExpr}, true
	}

	switch {
	case iconMarkers[key], strings.HasPrefix(key, "aria-"):
	case strings.HasPrefix(key, "data-"):
		key = camelCase(key)
	default:
		if to, ok := attrRenames[key]; ok {
			key = to
		} else if strings.Contains(key, "-") {
			key = camelCase(key)
		}
	}

	if n.Namespace == "" {
		switch {
		case key == "value" && (n.DataAtom == atom.Input || n.DataAtom == atom.Textarea || n.DataAtom == atom.Select):
			key = "defaultValue"
		case key == "checked" && n.DataAtom == atom.Input:
			key = "defaultChecked"
		}
	}

	if booleanAttrs[key] && (val == "" || strings.EqualFold(val, a.Key)) {
		return Attr{Name: key, Kind: AttrBool}, true
	}
	if code, ok := r.markers.attrValue(val); ok {
		return Attr{Name: key, Value: code, Kind: AttrExpr}, true
	}
	return Attr{Name: key, Value: val}, true
}

// attrName folds namespaced SVG attributes into their JSX spelling.
func attrName(a html.Attribute) string {
	switch a.Namespace {
	case "xlink", "xml":
		return a.Namespace + capitalize(a.Key)
	case "xmlns":
		return "xmlns" + capitalize(a.Key)
	}
	return a.Key
}

func handler(code string) string {
	code = strings.TrimSpace(code)
	code = strings.TrimPrefix(code, "javascript:")
	code = strings.TrimSpace(code)
	if code == "" {
		return "() => {}"
	}
	if !strings.HasSuffix(code, ";") && !strings.HasSuffix(code, "}") {
		code += ";"
	}
	return "(event) => { " + code + " }"
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// camelCase converts a hyphenated name: data-tab-id becomes dataTabId.
func camelCase(s string) string {
	parts := strings.Split(s, "-")
	var b strings.Builder
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		b.WriteString(capitalize(p))
	}
	return b.String()
}

// styleProperty converts a CSS property to its React style key.
func styleProperty(p string) string {
	p = strings.TrimSpace(p)
	if strings.HasPrefix(p, "--") {
		return jsString(p)
	}
	p = strings.ToLower(p)
	if strings.HasPrefix(p, "-ms-") {
		return camelCase(p[1:])
	}
	if strings.HasPrefix(p, "-") {
		return capitalize(camelCase(p[1:]))
	}
	return camelCase(p)
}

// styleObject renders an inline style attribute as a JSX style object.
// Style objects cannot carry !important, so the flag is dropped.
// Unparseable or empty styles yield "".
func styleObject(style string) string {
	decls, err := parser.ParseDeclarations(style)
	if err != nil || len(decls) == 0 {
		return ""
	}
	props := make([]string, 0, len(decls))
	seen := make(map[string]int)
	for _, d := range decls {
		val := strings.TrimSpace(d.Value)
		prop := styleProperty(d.Property)
		entry := prop + ": " + jsString(val)
		if i, ok := seen[prop]; ok {
			props[i] = entry
			continue
		}
		seen[prop] = len(props)
		props = append(props, entry)
	}
	return "{ " + strings.Join(props, ", ") + " }"
}
