package converter

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// DefaultComponentName is used when a name sanitizes to nothing.
	DefaultComponentName = "GeneratedTemplate"
	identifierPrefix     = "Template"
)

var reIdentifier = regexp.MustCompile(`^[A-Z][A-Za-z0-9_]*$`)

// SanitizeIdentifier turns s into a valid component identifier. Characters
// outside [A-Za-z0-9_] are dropped, each whitespace separated word is
// capitalized and the words are joined. A result that does not start with
// a letter gets the Template prefix. Words in a single case have their
// remainder lowercased; words that already mix cases keep it. Input that
// is already a capitalized identifier is returned unchanged, so the
// function is idempotent on its own output.
func SanitizeIdentifier(s string) string {
	if reIdentifier.MatchString(s) {
		return s
	}
	var b strings.Builder
	for _, w := range strings.Fields(s) {
		if w = keepIdentChars(w); w != "" {
			b.WriteString(titleWord(w))
		}
	}
	id := b.String()
	if id == "" {
		return DefaultComponentName
	}
	if !isASCIILetter(rune(id[0])) {
		id = identifierPrefix + id
	}
	return id
}

// ComponentName picks the component identifier for a template: the
// preferred name when set, else the slug split on - and _.
func ComponentName(preferred, slug string) string {
	if strings.TrimSpace(preferred) != "" {
		return SanitizeIdentifier(preferred)
	}
	words := strings.FieldsFunc(slug, func(r rune) bool {
		return r == '-' || r == '_' || unicode.IsSpace(r)
	})
	return SanitizeIdentifier(strings.Join(words, " "))
}

func titleWord(w string) string {
	rest := w[1:]
	if !mixedCase(w) {
		rest = strings.ToLower(rest)
	}
	return strings.ToUpper(w[:1]) + rest
}

func mixedCase(w string) bool {
	var upper, lower bool
	for _, r := range w {
		upper = upper || unicode.IsUpper(r)
		lower = lower || unicode.IsLower(r)
	}
	return upper && lower
}

func keepIdentChars(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case isASCIILetter(r), r >= '0' && r <= '9', r == '_':
			return r
		}
		return -1
	}, s)
}

func isASCIILetter(r rune) bool {
	return r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z'
}
