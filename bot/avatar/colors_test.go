package avatar

import "testing"

func TestResolveColor(t *testing.T) {
	cases := []struct {
		name string
		hex  string
		ok   bool
	}{
		{"red", "FF0000", true},
		{"RED", "FF0000", true},
		{" Blue ", "0000FF", true},
		{"magenta", "FF00FF", true},
		{"chartreuse", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		hex, ok := ResolveColor(tc.name)
		if ok != tc.ok || hex != tc.hex {
			t.Errorf("ResolveColor(%q) = %q, %v; want %q, %v", tc.name, hex, ok, tc.hex, tc.ok)
		}
	}
}

func TestColorNamesCoverTable(t *testing.T) {
	names := ColorNames()
	if len(names) != len(colorTable) {
		t.Fatalf("ColorNames has %d entries, table has %d", len(names), len(colorTable))
	}
	for _, name := range names {
		if !KnownColor(name) {
			t.Errorf("listed color %q not resolvable", name)
		}
	}
}
