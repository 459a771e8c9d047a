// Package converter turns design-tool HTML exports into React components
// that render either the exported preview content or live template data.
package converter

import (
	"io"
	"strings"
)

const (
	DefaultPropsType   = "TemplateData"
	DefaultTypesImport = "@/types/template"
)

// Options control a conversion. The zero value converts with the default
// casino bindings.
type Options struct {
	// ComponentName is sanitized before use. When empty the name is
	// derived from Slug.
	ComponentName string
	Slug          string
	PropsType     string
	TypesImport   string
	Bindings      *Bindings
	// Brand overrides the example brand name bound in narrative text.
	Brand string
}

func (o *Options) setDefaults() {
	if o.PropsType == "" {
		o.PropsType = DefaultPropsType
	}
	if o.TypesImport == "" {
		o.TypesImport = DefaultTypesImport
	}
	if o.Bindings == nil {
		o.Bindings = DefaultBindings()
	}
	if o.Brand == "" {
		o.Brand = o.Bindings.Brand()
	}
}

// Result is a generated component.
type Result struct {
	ComponentName string
	// Source is the complete TSX module.
	Source string
	// Body is the rendered JSX fragment without the wrapper.
	Body   string
	Styles []StyleBlock
	// Bound counts the expressions produced by the marker and literal binders.
	Bound int
	// Props lists single-word markers declared as optional props.
	Props []string
	// Client reports whether event handlers made this a client component.
	Client bool
}

// Convert reads an HTML document from r and generates its component.
// Malformed markup is converted best effort; only read failures return
// an error.
func Convert(r io.Reader, opts Options) (*Result, error) {
	opts.setDefaults()
	doc, err := normalize(r)
	if err != nil {
		return nil, err
	}

	markers := newMarkerBinder(opts.Bindings)
	rw := newRewriter(doc.nodes, markers)
	nodes := rw.rewriteAll(doc.nodes)
	nodes = walkText(nodes, markers.text)

	lits := &literalBinder{b: opts.Bindings, roles: opts.Bindings.Roles(), brand: opts.Brand}
	nodes = lits.bind(nodes)

	c := &component{
		name:        ComponentName(opts.ComponentName, opts.Slug),
		propsType:   opts.PropsType,
		typesImport: opts.TypesImport,
		client:      rw.handlers,
		props:       markers.Props(),
		styles:      joinStyles(doc.styles),
		body:        renderLines(nodes),
	}
	return &Result{
		ComponentName: c.name,
		Source:        c.source(),
		Body:          indent(c.body, 0),
		Styles:        doc.styles,
		Bound:         markers.count + lits.count,
		Props:         c.props,
		Client:        c.client,
	}, nil
}

// ConvertString is Convert over an in-memory document.
func ConvertString(src string, opts Options) (*Result, error) {
	return Convert(strings.NewReader(src), opts)
}
