package converter

import (
	"regexp"
	"sort"
	"strings"
)

var reMarker = regexp.MustCompile(`\{\{\s*([A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*)*)\s*\}\}`)

// reserved names cannot be destructured as props, so single-word markers
// using them read from data instead.
var reserved = map[string]bool{
	"break": true, "case": true, "catch": true, "class": true, "const": true, "continue": true,
	"debugger": true, "default": true, "delete": true, "do": true, "else": true, "enum": true,
	"export": true, "extends": true, "false": true, "finally": true, "for": true, "function": true,
	"if": true, "import": true, "in": true, "instanceof": true, "new": true, "null": true,
	"return": true, "super": true, "switch": true, "this": true, "throw": true, "true": true,
	"try": true, "typeof": true, "var": true, "void": true, "while": true, "with": true,
	"yield": true, "let": true, "static": true, "await": true, "implements": true,
	"interface": true, "package": true, "private": true, "protected": true, "public": true,
	"undefined": true, "styles": true, "React": true, "getLogoText": true, "formatNumber": true,
}

// markerBinder replaces {{path}} markers with expressions.
type markerBinder struct {
	b     *Bindings
	props map[string]bool
	count int
}

func newMarkerBinder(b *Bindings) *markerBinder {
	return &markerBinder{b: b, props: make(map[string]bool)}
}

// code returns the expression for one marker path.
func (m *markerBinder) code(path string) string {
	segs := strings.Split(path, ".")
	if len(segs) == 1 {
		word := segs[0]
		switch {
		case word == dataProp || word == previewProp:
			return word
		case reserved[word]:
			return markerExpr(m.b, word)
		}
		m.props[word] = true
		return word
	}
	if segs[0] == dataProp {
		path = strings.Join(segs[1:], ".")
	}
	return markerExpr(m.b, path)
}

// text splits a text segment around markers. It returns nil when s holds
// no marker.
func (m *markerBinder) text(s string) []Node {
	locs := reMarker.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return nil
	}
	var out []Node
	prev := 0
	for _, loc := range locs {
		if loc[0] > prev {
			out = append(out, &Text{Data: s[prev:loc[0]]})
		}
		out = append(out, &Expr{Code: m.code(s[loc[2]:loc[3]])})
		m.count++
		prev = loc[1]
	}
	if prev < len(s) {
		out = append(out, &Text{Data: s[prev:]})
	}
	return out
}

// attrValue binds markers inside an attribute value. A value that is a
// single marker becomes that expression; mixed values become a template
// literal.
func (m *markerBinder) attrValue(v string) (string, bool) {
	locs := reMarker.FindAllStringSubmatchIndex(v, -1)
	if len(locs) == 0 {
		return "", false
	}
	m.count += len(locs)
	if len(locs) == 1 && locs[0][0] == 0 && locs[0][1] == len(v) {
		return m.code(v[locs[0][2]:locs[0][3]]), true
	}
	var b strings.Builder
	b.WriteByte('`')
	prev := 0
	for _, loc := range locs {
		b.WriteString(escapeTemplateLiteral(v[prev:loc[0]]))
		b.WriteString("${")
		b.WriteString(m.code(v[loc[2]:loc[3]]))
		b.WriteByte('}')
		prev = loc[1]
	}
	b.WriteString(escapeTemplateLiteral(v[prev:]))
	b.WriteByte('`')
	return b.String(), true
}

// Props lists the single-word marker props in sorted order.
func (m *markerBinder) Props() []string {
	out := make([]string, 0, len(m.props))
	for p := range m.props {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}
