package converter

import (
	"fmt"
	"io"
	"regexp"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StyleBlock is the verbatim text of one <style> element.
type StyleBlock struct {
	CSS   string
	Media string
}

var (
	reDoctype          = regexp.MustCompile(`(?is)^\s*<!doctype[^>]*>`)
	reSelfClosedScript = regexp.MustCompile(`(?is)<script\b[^<>]*/>`)
	reSelfClosedTag    = regexp.MustCompile(`<([A-Za-z][A-Za-z0-9-]*)(\s[^<>]*?)?\s*/>`)
)

var voidTags = map[string]bool{
	"area": true, "base": true, "br": true, "col": true, "embed": true, "hr": true,
	"img": true, "input": true, "link": true, "meta": true, "param": true, "source": true,
	"track": true, "wbr": true,
}

// dropped elements are removed together with their content.
var droppedAtoms = map[atom.Atom]bool{
	atom.Script:   true,
	atom.Link:     true,
	atom.Meta:     true,
	atom.Title:    true,
	atom.Base:     true,
	atom.Noscript: true,
}

// document is a normalized source document.
type document struct {
	nodes  []*html.Node
	styles []StyleBlock
}

// prepare fixes up the raw text before parsing: the doctype is stripped,
// self-closing scripts are removed and self-closed non-void tags are
// expanded so the parser does not swallow the rest of the document.
func prepare(src string) string {
	src = strings.TrimPrefix(src, "\ufeff")
	src = reDoctype.ReplaceAllString(src, "")
	src = reSelfClosedScript.ReplaceAllString(src, "")
	return reSelfClosedTag.ReplaceAllStringFunc(src, func(m string) string {
		sub := reSelfClosedTag.FindStringSubmatch(m)
		tag := sub[1]
		if voidTags[strings.ToLower(tag)] {
			return m
		}
		return "<" + tag + sub[2] + "></" + tag + ">"
	})
}

// normalize parses src and reduces it to the renderable fragment. Head and
// body style blocks are collected in document order.
func normalize(r io.Reader) (*document, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read source: %w", err)
	}
	src := prepare(string(raw))
	root, err := html.Parse(strings.NewReader(src))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}
	doc := &document{}
	htmlEl := child(root, atom.Html)
	if htmlEl == nil {
		return doc, nil
	}
	if head := child(htmlEl, atom.Head); head != nil {
		collectStyles(head, &doc.styles)
	}
	body := child(htmlEl, atom.Body)
	if body == nil {
		return doc, nil
	}
	strip(body, &doc.styles)
	for c := body.FirstChild; c != nil; c = c.NextSibling {
		doc.nodes = append(doc.nodes, c)
	}
	return doc, nil
}

func child(n *html.Node, a atom.Atom) *html.Node {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == a {
			return c
		}
	}
	return nil
}

func collectStyles(n *html.Node, out *[]StyleBlock) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && c.DataAtom == atom.Style {
			*out = append(*out, styleBlock(c))
		}
	}
}

func styleBlock(n *html.Node) StyleBlock {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	sb := StyleBlock{CSS: b.String()}
	for _, a := range n.Attr {
		if a.Key == "media" {
			sb.Media = strings.TrimSpace(a.Val)
		}
	}
	return sb
}

// strip removes style, script, metadata and comment nodes below n,
// appending style text to styles.
func strip(n *html.Node, styles *[]StyleBlock) {
	for c := n.FirstChild; c != nil; {
		next := c.NextSibling
		switch {
		case c.Type == html.CommentNode || c.Type == html.DoctypeNode:
			n.RemoveChild(c)
		case c.Type == html.ElementNode && c.DataAtom == atom.Style && c.Namespace == "":
			*styles = append(*styles, styleBlock(c))
			n.RemoveChild(c)
		case c.Type == html.ElementNode && droppedAtoms[c.DataAtom] && c.Namespace == "":
			n.RemoveChild(c)
		default:
			strip(c, styles)
		}
		c = next
	}
}
