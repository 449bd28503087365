package slug

import (
	"regexp"
	"testing"
)

var slugShape = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func TestMake(t *testing.T) {
	tests := []struct {
		name  string
		title string
		year  int
		want  string
	}{
		{"movie with year", "The Batman", 2022, "the-batman-2022"},
		{"series name only", "shogun", 0, "shogun"},
		{"dune", "Dune", 2021, "dune-2021"},
		{"punctuation collapsed", "Ocean's Eleven: Reunion!", 2021, "ocean-s-eleven-reunion-2021"},
		{"diacritics folded", "Amélie", 2001, "amelie-2001"},
		{"whitespace trimmed", "  Heat  ", 1995, "heat-1995"},
		{"empty title with year", "", 2020, "2020"},
		{"empty", "", 0, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Make(tt.title, tt.year); got != tt.want {
				t.Errorf("Make(%q, %d) = %q, want %q", tt.title, tt.year, got, tt.want)
			}
		})
	}
}

func TestMakeShape(t *testing.T) {
	inputs := []struct {
		title string
		year  int
	}{
		{"The Batman", 2022},
		{"--- odd --- input ---", 1999},
		{"çà et là", 2010},
		{"a", 0},
		{"  !!  ", 2000},
	}
	for _, in := range inputs {
		got := Make(in.title, in.year)
		if got == "" {
			continue
		}
		if !slugShape.MatchString(got) {
			t.Errorf("Make(%q, %d) = %q: not a canonical slug", in.title, in.year, got)
		}
	}
}

func TestMakeDeterministic(t *testing.T) {
	a := Make("Dune", 2021)
	b := Make("Dune", 2021)
	if a != b {
		t.Fatalf("Make not deterministic: %q vs %q", a, b)
	}
	// Same normalized name and year collapse by design.
	if Make("dune", 2021) != a || Make("DUNE!", 2021) != a {
		t.Error("expected identical keys for equivalent titles")
	}
}
