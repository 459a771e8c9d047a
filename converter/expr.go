package converter

import (
	"fmt"
	"strings"
)

const (
	dataProp    = "data"
	previewProp = "previewMode"
)

var jsStringReplacer = strings.NewReplacer(
	`\`, `\\`,
	`'`, `\'`,
	"\n", `\n`,
	"\r", `\r`,
	"\t", `\t`,
	"\u2028", `\u2028`,
	"\u2029", `\u2029`,
)

// EscapeJSString escapes s for use inside a single-quoted JavaScript string.
func EscapeJSString(s string) string {
	return jsStringReplacer.Replace(s)
}

// jsString returns s as a single-quoted JavaScript string literal.
func jsString(s string) string {
	return "'" + EscapeJSString(s) + "'"
}

var templateLiteralReplacer = strings.NewReplacer(
	`\`, `\\`,
	"`", "\\`",
	"${", `\${`,
)

func escapeTemplateLiteral(s string) string {
	return templateLiteralReplacer.Replace(s)
}

// Access returns the live-data expression for a dotted field path. Every
// segment boundary after the first uses optional chaining so a missing
// intermediate object yields undefined instead of throwing.
func Access(field string) string {
	segs := strings.Split(field, ".")
	var b strings.Builder
	b.WriteString(dataProp)
	b.WriteByte('.')
	b.WriteString(segs[0])
	for _, s := range segs[1:] {
		b.WriteString("?.")
		b.WriteString(s)
	}
	return b.String()
}

// conditional builds the preview/live switch placed inside a JSX expression.
func conditional(preview, live string) string {
	return fmt.Sprintf("%s ? %s : (%s)", previewProp, jsString(preview), live)
}

func livePlain(field string) string {
	return Access(field) + " ?? ''"
}

func liveRating(field string) string {
	a := Access(field)
	return fmt.Sprintf("%s != null ? Number(%s).toFixed(1) : '0.0'", a, a)
}

// liveVotes renders the vote count. With withLabel the count is wrapped in
// "(N votes)" text.
func liveVotes(field string, withLabel bool) string {
	a := Access(field)
	if withLabel {
		return fmt.Sprintf("%s != null ? `(${formatNumber(%s)} votes)` : ''", a, a)
	}
	return fmt.Sprintf("%s != null ? formatNumber(%s) : ''", a, a)
}

func liveEstablished(field string, withLabel bool) string {
	a := Access(field)
	if withLabel {
		return fmt.Sprintf("%s ? `Est. ${%s}` : ''", a, a)
	}
	return a + " ?? ''"
}

// liveFor returns the bare live expression for a field in the given format.
func liveFor(field string, f Format) string {
	switch f {
	case FormatRating:
		return liveRating(field)
	case FormatVotes:
		return liveVotes(field, false)
	case FormatEstablished:
		return liveEstablished(field, false)
	}
	return livePlain(field)
}

// bindExpr is the code of an Expr node binding field with preview text.
func bindExpr(preview, field string, f Format) string {
	return conditional(preview, liveFor(field, f))
}

// markerExpr renders a {{a.b}} marker. Vote markers carry their label since
// the marker stands for the whole "(N votes)" text.
func markerExpr(b *Bindings, field string) string {
	preview := ""
	if fb, ok := b.ForField(field); ok {
		preview = fb.Literal
	}
	switch f := b.formatOf(field); f {
	case FormatVotes:
		if preview != "" {
			preview = "(" + preview + " votes)"
		}
		return conditional(preview, liveVotes(field, true))
	case FormatRating:
		if preview == "" {
			preview = "0.0"
		}
		return conditional(preview, liveRating(field))
	default:
		return conditional(preview, liveFor(field, f))
	}
}

var imageRefTest = `/^(https?:\/\/|\/|\.\/|data:image\/)|\.(png|jpe?g|gif|svg|webp|avif)$/i`

// logoExpr prefers an actual image when the live logo looks like a path or
// URL, else falls back to initials computed from the name/logo pair.
func logoExpr(preview string, roles Roles) string {
	logo := Access(roles.Logo)
	name := Access(roles.Name)
	img := fmt.Sprintf(`<img src={%s} alt={%s ?? ''} className="h-full w-full object-contain" />`, logo, name)
	live := fmt.Sprintf("%s.test(%s ?? '') ? %s : getLogoText(%s, %s)", imageRefTest, logo, img, name, logo)
	return conditional(preview, live)
}
