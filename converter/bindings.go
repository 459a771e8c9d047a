package converter

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format selects how a bound field is rendered in live mode.
type Format int

const (
	FormatPlain Format = iota
	FormatRating
	FormatVotes
	FormatEstablished
)

var formatNames = map[string]Format{
	"":            FormatPlain,
	"plain":       FormatPlain,
	"rating":      FormatRating,
	"votes":       FormatVotes,
	"established": FormatEstablished,
}

// String returns the YAML name of the format.
func (f Format) String() string {
	switch f {
	case FormatRating:
		return "rating"
	case FormatVotes:
		return "votes"
	case FormatEstablished:
		return "established"
	}
	return "plain"
}

// UnmarshalYAML accepts the format names used in binding files.
func (f *Format) UnmarshalYAML(node *yaml.Node) error {
	v, ok := formatNames[strings.ToLower(strings.TrimSpace(node.Value))]
	if !ok {
		return fmt.Errorf("unknown format %q", node.Value)
	}
	*f = v
	return nil
}

// FieldBinding ties a literal preview value to the dotted field path that
// supplies it in live mode.
type FieldBinding struct {
	Literal string `yaml:"literal"`
	Field   string `yaml:"field"`
	Format  Format `yaml:"format"`
}

// Roles names the fields that positional patterns bind to.
type Roles struct {
	Name        string `yaml:"name"`
	Logo        string `yaml:"logo"`
	Rating      string `yaml:"rating"`
	Votes       string `yaml:"votes"`
	Established string `yaml:"established"`
	Region      string `yaml:"region"`
}

// Bindings is the lookup table shared by the marker and literal binders.
// It is immutable once built and safe for concurrent use.
type Bindings struct {
	fields []FieldBinding
	demo   []FieldBinding
	roles  Roles

	byField  map[string]FieldBinding
	scan     []FieldBinding // fields, longest literal first
	demoScan []FieldBinding // demo, longest literal first
}

// NewBindings validates the tables and builds the reverse lookups. Every
// literal must map to exactly one field path across both tables.
func NewBindings(fields, demo []FieldBinding, roles Roles) (*Bindings, error) {
	b := &Bindings{
		fields:  append([]FieldBinding(nil), fields...),
		demo:    append([]FieldBinding(nil), demo...),
		roles:   roles,
		byField: make(map[string]FieldBinding),
	}
	seen := make(map[string]string)
	for _, list := range [][]FieldBinding{b.fields, b.demo} {
		for _, fb := range list {
			if fb.Literal == "" || fb.Field == "" {
				return nil, fmt.Errorf("binding %q -> %q: literal and field are required", fb.Literal, fb.Field)
			}
			if !validFieldPath(fb.Field) {
				return nil, fmt.Errorf("binding %q: invalid field path %q", fb.Literal, fb.Field)
			}
			if prev, ok := seen[fb.Literal]; ok && prev != fb.Field {
				return nil, fmt.Errorf("literal %q maps to both %q and %q", fb.Literal, prev, fb.Field)
			}
			seen[fb.Literal] = fb.Field
		}
	}
	for _, fb := range b.fields {
		if _, ok := b.byField[fb.Field]; !ok {
			b.byField[fb.Field] = fb
		}
	}
	b.scan = longestFirst(b.fields)
	b.demoScan = longestFirst(b.demo)
	return b, nil
}

func longestFirst(in []FieldBinding) []FieldBinding {
	out := append([]FieldBinding(nil), in...)
	sort.SliceStable(out, func(i, j int) bool {
		return len(out[i].Literal) > len(out[j].Literal)
	})
	return out
}

// Fields returns the known-literal table in declaration order.
func (b *Bindings) Fields() []FieldBinding { return append([]FieldBinding(nil), b.fields...) }

// Demo returns the catch-all demo literal table in declaration order.
func (b *Bindings) Demo() []FieldBinding { return append([]FieldBinding(nil), b.demo...) }

// Roles returns the role field paths.
func (b *Bindings) Roles() Roles { return b.roles }

// ForField returns the known binding for a field path.
func (b *Bindings) ForField(field string) (FieldBinding, bool) {
	fb, ok := b.byField[field]
	return fb, ok
}

// formatOf reports the format of field, defaulting roles to their natural
// format when the table has no entry for them.
func (b *Bindings) formatOf(field string) Format {
	if fb, ok := b.byField[field]; ok {
		return fb.Format
	}
	switch field {
	case b.roles.Rating:
		return FormatRating
	case b.roles.Votes:
		return FormatVotes
	case b.roles.Established:
		return FormatEstablished
	}
	return FormatPlain
}

// Brand returns the example brand name used in the known table.
func (b *Bindings) Brand() string {
	if fb, ok := b.byField[b.roles.Name]; ok {
		return fb.Literal
	}
	return ""
}

var defaultRoles = Roles{
	Name:        "casino.name",
	Logo:        "casino.logo",
	Rating:      "casino.rating",
	Votes:       "casino.votes",
	Established: "casino.established",
	Region:      "casino.region",
}

var defaultFields = []FieldBinding{
	{Literal: "IGNITE", Field: "casino.name"},
	{Literal: "IG", Field: "casino.logo"},
	{Literal: "9.8", Field: "casino.rating", Format: FormatRating},
	{Literal: "1,234", Field: "casino.votes", Format: FormatVotes},
	{Literal: "2016", Field: "casino.established", Format: FormatEstablished},
	{Literal: "United States", Field: "casino.region"},
	{Literal: "Owner's Choice", Field: "casino.badge"},
	{Literal: "https://ignitecasino.eu/go", Field: "casino.affiliateUrl"},
	{Literal: "Curacao eGaming", Field: "casino.license"},
	{Literal: "24-48 hours", Field: "casino.payoutTime"},
	{Literal: "$20", Field: "casino.minDeposit"},
	{Literal: "300% up to $3,000", Field: "bonus.title"},
	{Literal: "$3,000", Field: "bonus.amount"},
	{Literal: "300%", Field: "bonus.percentage"},
	{Literal: "150 Free Spins", Field: "bonus.freeSpins"},
	{Literal: "IGNITE300", Field: "bonus.code"},
	{Literal: "40x", Field: "bonus.wagering"},
	{Literal: "Claim Bonus", Field: "bonus.ctaText"},
	{Literal: "18+ | T&Cs apply | Play responsibly", Field: "bonus.terms"},
}

var defaultDemo = []FieldBinding{
	{Literal: "WELCOME100", Field: "bonus.code"},
	{Literal: "$1,000", Field: "bonus.amount"},
	{Literal: "100%", Field: "bonus.percentage"},
	{Literal: "50 Free Spins", Field: "bonus.freeSpins"},
	{Literal: "35x", Field: "bonus.wagering"},
	{Literal: "$10", Field: "casino.minDeposit"},
	{Literal: "Visa, Mastercard, Bitcoin", Field: "casino.paymentMethods"},
	{Literal: "NetEnt, Microgaming, Pragmatic Play", Field: "casino.providers"},
}

// DefaultBindings returns the built-in casino review table.
func DefaultBindings() *Bindings {
	b, err := NewBindings(defaultFields, defaultDemo, defaultRoles)
	if err != nil {
		panic("converter: invalid default bindings: " + err.Error())
	}
	return b
}

type bindingsFile struct {
	Fields []FieldBinding `yaml:"fields"`
	Demo   []FieldBinding `yaml:"demo"`
	Roles  Roles          `yaml:"roles"`
}

// LoadBindings reads a YAML binding file and merges it over the defaults.
// Entries whose literal already exists replace the default entry in place;
// new literals are appended. Non-empty roles override the default roles.
func LoadBindings(r io.Reader) (*Bindings, error) {
	var f bindingsFile
	if err := yaml.NewDecoder(r).Decode(&f); err != nil && err != io.EOF {
		return nil, fmt.Errorf("decode bindings: %w", err)
	}
	roles := defaultRoles
	mergeRole(&roles.Name, f.Roles.Name)
	mergeRole(&roles.Logo, f.Roles.Logo)
	mergeRole(&roles.Rating, f.Roles.Rating)
	mergeRole(&roles.Votes, f.Roles.Votes)
	mergeRole(&roles.Established, f.Roles.Established)
	mergeRole(&roles.Region, f.Roles.Region)
	return NewBindings(mergeTable(defaultFields, f.Fields), mergeTable(defaultDemo, f.Demo), roles)
}

func mergeRole(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

func mergeTable(base, extra []FieldBinding) []FieldBinding {
	out := append([]FieldBinding(nil), base...)
	for _, fb := range extra {
		replaced := false
		for i := range out {
			if out[i].Literal == fb.Literal {
				out[i] = fb
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, fb)
		}
	}
	return out
}

func validFieldPath(p string) bool {
	for _, seg := range strings.Split(p, ".") {
		if !isIdent(seg) {
			return false
		}
	}
	return true
}

func isIdent(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r == '_' || r == '$':
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9' && i > 0:
		default:
			return false
		}
	}
	return true
}
