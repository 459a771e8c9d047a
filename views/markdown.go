package views

import (
	"bytes"
	"context"
	"io"

	"github.com/a-h/templ"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownRenderer = goldmark.New(goldmark.WithExtensions(extension.GFM))
	htmlSanitizer    = bluemonday.UGCPolicy()
)

// Markdown renders template descriptions. The output is sanitized, so
// raw HTML in a description cannot inject markup into the dashboard.
func Markdown(content string) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := renderMarkdown(content)
		if err != nil {
			return err
		}
		_, err = w.Write(html)
		return err
	})
}

func renderMarkdown(md string) ([]byte, error) {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(md), &buf); err != nil {
		return nil, err
	}
	return htmlSanitizer.SanitizeBytes(buf.Bytes()), nil
}
