// Package views provides the default admin pages for casinocms.
package views

import (
	"context"
	"io"
	"strings"

	"github.com/a-h/templ"

	"github.com/eringen/casinocms"
)

var categories = []struct{ value, label string }{
	{"casino-review", "Casino review"},
	{"casino-list", "Casino list"},
	{"bonus", "Bonus"},
	{"article", "Article"},
	{"landing", "Landing page"},
	{"comparison", "Comparison"},
	{"custom", "Custom"},
}

const stylesheet = `body{font-family:system-ui,sans-serif;margin:0;background:#f5f5f4;color:#1c1917}
main{max-width:960px;margin:0 auto;padding:2rem 1rem}
form{background:#fff;border:1px solid #d6d3d1;border-radius:6px;padding:1rem;margin-bottom:1.5rem}
label{display:block;margin:.5rem 0 .25rem;font-weight:600}
input[type=text],select,textarea{width:100%;box-sizing:border-box;padding:.4rem}
table{width:100%;border-collapse:collapse;background:#fff}
th,td{text-align:left;padding:.5rem;border-bottom:1px solid #e7e5e4;vertical-align:top}
.msg{padding:.75rem;background:#ecfccb;border:1px solid #a3e635;border-radius:6px}
.error{color:#b91c1c}
.inactive{color:#78716c}`

// Default returns the built-in admin views.
func Default() casinocms.ViewFuncs {
	return casinocms.ViewFuncs{
		AdminLogin:     AdminLogin,
		AdminDashboard: AdminDashboard,
		NotFound: func() templ.Component {
			return page("Not found", func(b *strings.Builder) {
				b.WriteString(`<h1>Not found</h1><p><a href="/admin/">Back to the dashboard</a></p>`)
			})
		},
		ServerError: func() templ.Component {
			return page("Server error", func(b *strings.Builder) {
				b.WriteString(`<h1>Something went wrong</h1><p>The error has been logged.</p>`)
			})
		},
	}
}

func page(title string, body func(b *strings.Builder)) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var b strings.Builder
		b.WriteString(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		b.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">`)
		b.WriteString(`<title>` + templ.EscapeString(title) + ` | Casino CMS</title>`)
		b.WriteString(`<style>` + stylesheet + `</style></head><body><main>`)
		body(&b)
		b.WriteString(`</main></body></html>`)
		_, err := io.WriteString(w, b.String())
		return err
	})
}

func csrfField(token string) string {
	return `<input type="hidden" name="_csrf" value="` + templ.EscapeString(token) + `">`
}

// AdminLogin renders the password form.
func AdminLogin(showError bool, csrfToken string) templ.Component {
	return page("Sign in", func(b *strings.Builder) {
		b.WriteString(`<h1>Template admin</h1>`)
		if showError {
			b.WriteString(`<p class="error">Invalid password.</p>`)
		}
		b.WriteString(`<form method="post" action="/admin/login/">`)
		b.WriteString(csrfField(csrfToken))
		b.WriteString(`<label for="password">Password</label>`)
		b.WriteString(`<input type="password" id="password" name="password" required autofocus>`)
		b.WriteString(`<p><button type="submit">Sign in</button></p></form>`)
	})
}

// AdminDashboard renders the upload forms and the template list.
func AdminDashboard(templates []casinocms.TemplateRecord, message string, csrfToken string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		var rows strings.Builder
		for _, t := range templates {
			if err := templateRow(ctx, &rows, t, csrfToken); err != nil {
				return err
			}
		}
		return page("Templates", func(b *strings.Builder) {
			b.WriteString(`<h1>Templates</h1>`)
			b.WriteString(`<form method="post" action="/admin/logout/">` + csrfField(csrfToken) + `<button type="submit">Sign out</button></form>`)
			if message != "" {
				b.WriteString(`<p class="msg">` + templ.EscapeString(message) + `</p>`)
			}
			uploadForm(b, csrfToken)
			b.WriteString(`<table><thead><tr><th>Name</th><th>Component</th><th>Category</th><th>Description</th><th>Re-upload</th></tr></thead><tbody>`)
			if len(templates) == 0 {
				b.WriteString(`<tr><td colspan="5">No templates yet.</td></tr>`)
			}
			b.WriteString(rows.String())
			b.WriteString(`</tbody></table>`)
		}).Render(ctx, w)
	})
}

func categorySelect(b *strings.Builder, selected string) {
	b.WriteString(`<select name="category" required>`)
	for _, c := range categories {
		b.WriteString(`<option value="` + c.value + `"`)
		if c.value == selected {
			b.WriteString(` selected`)
		}
		b.WriteString(`>` + c.label + `</option>`)
	}
	b.WriteString(`</select>`)
}

func uploadForm(b *strings.Builder, csrfToken string) {
	b.WriteString(`<form method="post" action="/admin/templates/upload/" enctype="multipart/form-data">`)
	b.WriteString(`<h2>New template</h2>`)
	b.WriteString(csrfField(csrfToken))
	b.WriteString(`<label>HTML export</label><input type="file" name="file" accept=".html" required>`)
	b.WriteString(`<label>Category</label>`)
	categorySelect(b, "casino-review")
	b.WriteString(`<label>Name</label><input type="text" name="name" required>`)
	b.WriteString(`<label>Slug</label><input type="text" name="slug" required>`)
	b.WriteString(`<label>Component name</label><input type="text" name="componentName" placeholder="Derived from the slug when empty">`)
	b.WriteString(`<label>Description (Markdown)</label><textarea name="description" rows="3"></textarea>`)
	b.WriteString(`<label><input type="checkbox" name="isActive" value="true" checked> Active</label>`)
	b.WriteString(`<p><button type="submit">Upload and convert</button> `)
	b.WriteString(`<button type="submit" formaction="/api/admin/templates/preview" formnovalidate>Preview TSX</button></p></form>`)
}

func templateRow(ctx context.Context, b *strings.Builder, t casinocms.TemplateRecord, csrfToken string) error {
	b.WriteString(`<tr`)
	if !t.Active {
		b.WriteString(` class="inactive"`)
	}
	b.WriteString(`><td>` + templ.EscapeString(t.Name) + `<br><small>` + templ.EscapeString(t.Slug) + `</small></td>`)
	b.WriteString(`<td><code>` + templ.EscapeString(t.ComponentName) + `</code>`)
	if t.FilePath != "" {
		b.WriteString(`<br><small>` + templ.EscapeString(t.FilePath) + `</small>`)
	}
	b.WriteString(`</td><td>` + templ.EscapeString(t.Category) + `</td><td>`)
	if err := Markdown(t.Description).Render(ctx, b); err != nil {
		return err
	}
	b.WriteString(`</td><td><form method="post" action="/admin/templates/upload/" enctype="multipart/form-data">`)
	b.WriteString(csrfField(csrfToken))
	b.WriteString(`<input type="hidden" name="templateId" value="` + templ.EscapeString(t.ID) + `">`)
	categorySelect(b, t.Category)
	b.WriteString(`<input type="file" name="file" accept=".html" required>`)
	b.WriteString(`<button type="submit">Upload</button></form></td></tr>`)
	return nil
}
