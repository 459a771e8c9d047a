package converter

import (
	"fmt"
	"strings"
)

// helpers are emitted into every component.
const helpers = `function getLogoText(name?: string | null, logo?: string | null): string {
  if (logo && logo.length <= 4 && !/[./:]/.test(logo)) {
    return logo.toUpperCase();
  }
  const words = (name ?? '').trim().split(/\s+/).filter(Boolean);
  if (words.length === 0) {
    return '';
  }
  if (words.length === 1) {
    return words[0].slice(0, 2).toUpperCase();
  }
  return (words[0][0] + words[1][0]).toUpperCase();
}

function formatNumber(value?: number | string | null): string {
  if (value === undefined || value === null || value === '') {
    return '0';
  }
  const n = typeof value === 'number' ? value : Number(String(value).replace(/,/g, ''));
  if (Number.isNaN(n)) {
    return String(value);
  }
  return Math.round(n).toString().replace(/\B(?=(\d{3})+(?!\d))/g, ',');
}
`

// joinStyles concatenates style blocks, wrapping blocks that carried a
// media attribute in the matching @media rule.
func joinStyles(blocks []StyleBlock) string {
	parts := make([]string, 0, len(blocks))
	for _, sb := range blocks {
		css := strings.TrimSpace(sb.CSS)
		if css == "" {
			continue
		}
		if sb.Media != "" && !strings.EqualFold(sb.Media, "all") {
			css = "@media " + sb.Media + " {\n" + css + "\n}"
		}
		parts = append(parts, css)
	}
	return strings.Join(parts, "\n\n")
}

type component struct {
	name        string
	propsType   string
	typesImport string
	client      bool
	props       []string
	styles      string
	body        []line
}

func (c *component) source() string {
	var b strings.Builder
	if c.client {
		b.WriteString("'use client';\n\n")
	}
	b.WriteString("import React from 'react';\n")
	fmt.Fprintf(&b, "import type { %s } from %s;\n\n", c.propsType, jsString(c.typesImport))

	fmt.Fprintf(&b, "export interface %sProps {\n", c.name)
	fmt.Fprintf(&b, "  %s: %s;\n", dataProp, c.propsType)
	fmt.Fprintf(&b, "  %s?: boolean;\n", previewProp)
	for _, p := range c.props {
		fmt.Fprintf(&b, "  %s?: string;\n", p)
	}
	b.WriteString("}\n\n")

	if c.styles != "" {
		fmt.Fprintf(&b, "const styles = %s;\n\n", jsString(c.styles))
	}
	b.WriteString(helpers)
	b.WriteString("\n")

	params := []string{dataProp, previewProp + " = false"}
	params = append(params, c.props...)
	fmt.Fprintf(&b, "export default function %s({ %s }: %sProps) {\n", c.name, strings.Join(params, ", "), c.name)
	b.WriteString("  return (\n")
	b.WriteString("    <>\n")
	if c.styles != "" {
		b.WriteString("      <style dangerouslySetInnerHTML={{ __html: styles }} />\n")
	}
	b.WriteString(indent(c.body, 3))
	b.WriteString("    </>\n")
	b.WriteString("  );\n")
	b.WriteString("}\n")
	return b.String()
}
