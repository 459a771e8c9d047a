package converter

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	reLogoGlyph   = regexp.MustCompile(`^[A-Z][A-Z0-9&]{0,3}$`)
	reEstablished = regexp.MustCompile(`\bEst\.?\s*(\d{4})\b`)
	reRating      = regexp.MustCompile(`(\d{1,2}(?:\.\d)?)(\s*/\s*10)\b`)
	reVotes       = regexp.MustCompile(`\((\d[\d,.]*)\s+votes?\)`)
	reSizeClass   = regexp.MustCompile(`(?:^|\s)(?:[a-z]+:)?(?:w|h|size)-(?:\d+|\[[^\]]+\])(?:\s|$)`)
	reBorderClass = regexp.MustCompile(`(?:^|\s)(?:[a-z]+:)?(?:border|rounded|ring)(?:-[\w\[\]#./]+)?(?:\s|$)`)
)

var locationIcons = map[string]bool{
	"map-pin":      true,
	"map-pin-line": true,
	"location":     true,
	"globe":        true,
	"flag":         true,
}

// textPass rewrites one text segment. A nil result leaves the segment as is.
type textPass func(s string) []Node

// walkText applies pass to every Text node below nodes. Expr nodes and
// attributes are never visited.
func walkText(nodes []Node, pass textPass) []Node {
	out := make([]Node, 0, len(nodes))
	for _, n := range nodes {
		switch v := n.(type) {
		case *Element:
			v.Children = walkText(v.Children, pass)
			out = append(out, v)
		case *Text:
			if repl := pass(v.Data); repl != nil {
				out = append(out, repl...)
			} else {
				out = append(out, v)
			}
		default:
			out = append(out, n)
		}
	}
	return out
}

// walkElements calls fn for every element below nodes, parents first.
func walkElements(nodes []Node, fn func(e *Element)) {
	for _, n := range nodes {
		if e, ok := n.(*Element); ok {
			fn(e)
			walkElements(e.Children, fn)
		}
	}
}

// splitRegexp replaces each match of re in s with the nodes build returns.
// build may return nil to skip a match.
func splitRegexp(s string, re *regexp.Regexp, build func(s string, loc []int) []Node) []Node {
	locs := re.FindAllStringSubmatchIndex(s, -1)
	if len(locs) == 0 {
		return nil
	}
	var out []Node
	prev := 0
	for _, loc := range locs {
		repl := build(s, loc)
		if repl == nil {
			continue
		}
		if loc[0] > prev {
			out = append(out, &Text{Data: s[prev:loc[0]]})
		}
		out = append(out, repl...)
		prev = loc[1]
	}
	if out == nil {
		return nil
	}
	if prev < len(s) {
		out = append(out, &Text{Data: s[prev:]})
	}
	return out
}

// literalBinder replaces example literals with preview/live expressions.
type literalBinder struct {
	b     *Bindings
	roles Roles
	brand string
	count int
}

func (l *literalBinder) expr(code string) *Expr {
	l.count++
	return &Expr{Code: code}
}

func (l *literalBinder) bind(nodes []Node) []Node {
	l.logos(nodes)
	nodes = walkText(nodes, l.established)
	nodes = l.regions(nodes)
	nodes = walkText(nodes, l.rating)
	nodes = walkText(nodes, l.votes)
	if l.brand != "" {
		nodes = walkText(nodes, func(s string) []Node {
			return l.isolated(s, l.brand, wordBounded, func() Node {
				return l.expr(bindExpr(l.brand, l.roles.Name, FormatPlain))
			})
		})
	}
	for _, fb := range l.b.scan {
		fb := fb
		nodes = walkText(nodes, func(s string) []Node {
			return l.isolated(s, fb.Literal, spaceBounded, func() Node {
				return l.expr(bindExpr(fb.Literal, fb.Field, fb.Format))
			})
		})
	}
	for _, fb := range l.b.demoScan {
		fb := fb
		nodes = walkText(nodes, func(s string) []Node {
			return l.isolated(s, fb.Literal, spaceBounded, func() Node {
				return l.expr(conditional(fb.Literal, livePlain(fb.Field)))
			})
		})
	}
	return nodes
}

// logos binds short capitalized glyphs inside logo-like containers.
func (l *literalBinder) logos(nodes []Node) {
	walkElements(nodes, func(e *Element) {
		if len(e.Children) != 1 || !isLogoContainer(e) {
			return
		}
		t, ok := e.Children[0].(*Text)
		if !ok {
			return
		}
		glyph := strings.TrimSpace(t.Data)
		if !reLogoGlyph.MatchString(glyph) {
			return
		}
		e.Children = []Node{l.expr(logoExpr(glyph, l.roles))}
	})
}

func isLogoContainer(e *Element) bool {
	a, ok := e.Attr("className")
	if !ok || a.Kind != AttrString {
		return false
	}
	cls := strings.ToLower(a.Value)
	if strings.Contains(cls, "logo") {
		return true
	}
	return reSizeClass.MatchString(cls) && reBorderClass.MatchString(cls)
}

func (l *literalBinder) established(s string) []Node {
	return splitRegexp(s, reEstablished, func(s string, loc []int) []Node {
		return []Node{l.expr(conditional(s[loc[0]:loc[1]], liveEstablished(l.roles.Established, true)))}
	})
}

func (l *literalBinder) rating(s string) []Node {
	return splitRegexp(s, reRating, func(s string, loc []int) []Node {
		if loc[0] > 0 {
			if c := s[loc[0]-1]; c == '.' || (c >= '0' && c <= '9') {
				return nil
			}
		}
		return []Node{
			l.expr(conditional(s[loc[2]:loc[3]], liveRating(l.roles.Rating))),
			&Text{Data: s[loc[4]:loc[5]]},
		}
	})
}

func (l *literalBinder) votes(s string) []Node {
	return splitRegexp(s, reVotes, func(s string, loc []int) []Node {
		return []Node{l.expr(conditional(s[loc[0]:loc[1]], liveVotes(l.roles.Votes, true)))}
	})
}

// regions binds the text following a location icon.
func (l *literalBinder) regions(nodes []Node) []Node {
	nodes = l.regionsIn(nodes)
	walkElements(nodes, func(e *Element) { e.Children = l.regionsIn(e.Children) })
	return nodes
}

func (l *literalBinder) regionsIn(nodes []Node) []Node {
	for i := 0; i < len(nodes); i++ {
		if !isLocationIcon(nodes[i]) {
			continue
		}
		for j := i + 1; j < len(nodes); j++ {
			switch v := nodes[j].(type) {
			case *Text:
				if strings.TrimSpace(v.Data) == "" {
					continue
				}
				repl := l.regionText(v)
				nodes = append(nodes[:j], append(repl, nodes[j+1:]...)...)
			case *Element:
				if len(v.Children) == 1 {
					if t, ok := v.Children[0].(*Text); ok && strings.TrimSpace(t.Data) != "" {
						v.Children = l.regionText(t)
					}
				}
			}
			break
		}
	}
	return nodes
}

// regionText binds the trimmed text of t, keeping surrounding whitespace.
func (l *literalBinder) regionText(t *Text) []Node {
	trimmed := strings.TrimSpace(t.Data)
	lead := t.Data[:len(t.Data)-len(strings.TrimLeftFunc(t.Data, unicode.IsSpace))]
	trail := t.Data[len(strings.TrimRightFunc(t.Data, unicode.IsSpace)):]
	var out []Node
	if lead != "" {
		out = append(out, &Text{Data: lead})
	}
	out = append(out, l.expr(conditional(trimmed, livePlain(l.roles.Region))))
	if trail != "" {
		out = append(out, &Text{Data: trail})
	}
	return out
}

func isLocationIcon(n Node) bool {
	e, ok := n.(*Element)
	if !ok {
		return false
	}
	for _, a := range e.Attrs {
		if iconMarkers[a.Name] && locationIcons[a.Value] {
			return true
		}
	}
	return false
}

type boundary func(s string, start, end int) bool

func spaceBounded(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if !unicode.IsSpace(r) && r != '(' {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if !unicode.IsSpace(r) && !strings.ContainsRune(".,!?;:)", r) {
			return false
		}
	}
	return true
}

func wordBounded(s string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(s[:start])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	if end < len(s) {
		r, _ := utf8.DecodeRuneInString(s[end:])
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// isolated replaces each bounded occurrence of lit in s.
func (l *literalBinder) isolated(s, lit string, ok boundary, build func() Node) []Node {
	var out []Node
	prev, i := 0, 0
	for i <= len(s) {
		j := strings.Index(s[i:], lit)
		if j < 0 {
			break
		}
		start := i + j
		end := start + len(lit)
		if !ok(s, start, end) {
			i = start + 1
			continue
		}
		if start > prev {
			out = append(out, &Text{Data: s[prev:start]})
		}
		out = append(out, build())
		prev, i = end, end
	}
	if out == nil {
		return nil
	}
	if prev < len(s) {
		out = append(out, &Text{Data: s[prev:]})
	}
	return out
}
