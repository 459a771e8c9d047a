package casinocms

import "strings"

// categoryDirs maps template categories to output subdirectories.
var categoryDirs = map[string]string{
	"casino-review": "casino-reviews",
	"casino-list":   "casino-lists",
	"bonus":         "bonuses",
	"article":       "articles",
	"landing":       "landing-pages",
	"comparison":    "comparisons",
}

// categoryDir returns the output subdirectory for category; unknown
// categories go to "custom".
func categoryDir(category string) string {
	if dir, ok := categoryDirs[category]; ok {
		return dir
	}
	return "custom"
}

// Slugify converts a title to a URL-safe slug.
func Slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	var b strings.Builder
	prev := false
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			prev = false
		default:
			if !prev && b.Len() > 0 {
				b.WriteByte('-')
				prev = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
