package surface

import "testing"

func TestTitleToken(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Bohemian Rhapsody", "bohemian rhapsody"},
		{"Never Gonna Give You Up", "never gonna give"},
		{"  Spaced   Out  Title  Here ", "spaced out title"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := titleToken(tc.in); got != tc.want {
			t.Fatalf("titleToken(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTitlesMatch(t *testing.T) {
	if !titlesMatch("Never Gonna Give You Up - YouTube", "Never Gonna Give You Up") {
		t.Fatalf("decorated tab title should match")
	}
	if !titlesMatch("(3) never gonna give you up - YouTube", "Never Gonna Give You Up") {
		t.Fatalf("match should ignore case and prefixes")
	}
	if titlesMatch("Some Other Song - Spotify", "Never Gonna Give You Up") {
		t.Fatalf("unrelated title should not match")
	}
	if titlesMatch("anything", "") {
		t.Fatalf("empty track title never matches")
	}
}
