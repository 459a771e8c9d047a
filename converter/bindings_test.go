package converter

import (
	"strings"
	"testing"
)

func TestNewBindingsRejectsConflicts(t *testing.T) {
	tests := []struct {
		name   string
		fields []FieldBinding
		demo   []FieldBinding
	}{
		{"empty literal", []FieldBinding{{Field: "casino.name"}}, nil},
		{"empty field", []FieldBinding{{Literal: "X"}}, nil},
		{"bad path", []FieldBinding{{Literal: "X", Field: "casino..name"}}, nil},
		{"bad segment", []FieldBinding{{Literal: "X", Field: "casino.2fast"}}, nil},
		{"duplicate literal", []FieldBinding{{Literal: "X", Field: "a.b"}, {Literal: "X", Field: "a.c"}}, nil},
		{"duplicate across tables", []FieldBinding{{Literal: "X", Field: "a.b"}}, []FieldBinding{{Literal: "X", Field: "a.c"}}},
	}
	for _, tt := range tests {
		if _, err := NewBindings(tt.fields, tt.demo, defaultRoles); err == nil {
			t.Errorf("%s: expected error", tt.name)
		}
	}
}

func TestNewBindingsAllowsRepeatedPair(t *testing.T) {
	fields := []FieldBinding{{Literal: "X", Field: "a.b"}}
	demo := []FieldBinding{{Literal: "X", Field: "a.b"}}
	if _, err := NewBindings(fields, demo, defaultRoles); err != nil {
		t.Fatalf("NewBindings: %v", err)
	}
}

func TestBindingsScanLongestFirst(t *testing.T) {
	b := DefaultBindings()
	for i := 1; i < len(b.scan); i++ {
		if len(b.scan[i].Literal) > len(b.scan[i-1].Literal) {
			t.Fatalf("scan[%d] %q longer than scan[%d] %q", i, b.scan[i].Literal, i-1, b.scan[i-1].Literal)
		}
	}
	if b.Brand() != "IGNITE" {
		t.Errorf("Brand() = %q, want IGNITE", b.Brand())
	}
}

func TestLoadBindingsMergesOverDefaults(t *testing.T) {
	src := `
fields:
  - literal: "9.8"
    field: casino.score
    format: rating
  - literal: VIP Club
    field: casino.vipName
demo:
  - literal: $5
    field: casino.minDeposit
roles:
  rating: casino.score
`
	b, err := LoadBindings(strings.NewReader(src))
	if err != nil {
		t.Fatalf("LoadBindings: %v", err)
	}
	fields := b.Fields()
	if len(fields) != len(defaultFields)+1 {
		t.Fatalf("got %d fields, want %d", len(fields), len(defaultFields)+1)
	}
	if fields[2].Field != "casino.score" || fields[2].Format != FormatRating {
		t.Errorf("fields[2] = %+v, want 9.8 replaced in place", fields[2])
	}
	if fields[len(fields)-1].Literal != "VIP Club" {
		t.Errorf("last field = %+v, want VIP Club appended", fields[len(fields)-1])
	}
	if fb, ok := b.ForField("casino.score"); !ok || fb.Literal != "9.8" {
		t.Errorf("ForField(casino.score) = %+v, %v", fb, ok)
	}
	if got := b.Roles().Rating; got != "casino.score" {
		t.Errorf("Roles().Rating = %q, want casino.score", got)
	}
	if got := b.Roles().Name; got != "casino.name" {
		t.Errorf("Roles().Name = %q, want default", got)
	}
	if len(b.Demo()) != len(defaultDemo)+1 {
		t.Errorf("got %d demo literals, want %d", len(b.Demo()), len(defaultDemo)+1)
	}
}

func TestLoadBindingsErrors(t *testing.T) {
	tests := []string{
		"fields:\n  - literal: X\n    field: a.b\n    format: stars\n",
		"demo:\n  - literal: IGNITE\n    field: casino.brand\n",
		"fields: [",
	}
	for _, src := range tests {
		if _, err := LoadBindings(strings.NewReader(src)); err == nil {
			t.Errorf("LoadBindings(%q) expected error", src)
		}
	}
}

func TestLoadBindingsEmpty(t *testing.T) {
	b, err := LoadBindings(strings.NewReader(""))
	if err != nil {
		t.Fatalf("LoadBindings: %v", err)
	}
	if len(b.Fields()) != len(defaultFields) {
		t.Errorf("got %d fields, want defaults", len(b.Fields()))
	}
}
