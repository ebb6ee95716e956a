package auth

import (
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{in: "The Curry House", want: "the-curry-house"},
		{in: "  Joe's Café #2  ", want: "joe-s-caf-2"},
		{in: "already-slugged", want: "already-slugged"},
		{in: "Münchner Stübchen", want: "m-nchner-st-bchen"},
		{in: "!!!", want: ""},
	}
	for _, tt := range tests {
		if got := Slugify(tt.in); got != tt.want {
			t.Fatalf("Slugify(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestNewSlug(t *testing.T) {
	s, err := NewSlug("The Curry House")
	if err != nil {
		t.Fatalf("NewSlug: %v", err)
	}
	if !strings.HasPrefix(s, "the-curry-house-") {
		t.Fatalf("slug = %q, want prefix the-curry-house-", s)
	}
	if got := len(s) - len("the-curry-house-"); got != 5 {
		t.Fatalf("suffix length = %d, want 5", got)
	}

	// Empty names still produce a usable slug.
	s, err = NewSlug("???")
	if err != nil {
		t.Fatalf("NewSlug: %v", err)
	}
	if !strings.HasPrefix(s, "restaurant-") {
		t.Fatalf("slug = %q, want prefix restaurant-", s)
	}

	// Two slugs for the same name collide only if the random suffixes match.
	a, _ := NewSlug("The Curry House")
	b, _ := NewSlug("The Curry House")
	if a == b {
		t.Fatalf("expected distinct suffixes, got %q twice", a)
	}
}
