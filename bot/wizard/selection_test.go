package wizard

import "testing"

func TestParseSelection(t *testing.T) {
	cases := []struct {
		token string
		want  Selection
		ok    bool
	}{
		{"/avataaars", StyleSelection{Command: "/avataaars"}, true},
		{"/bottts", StyleSelection{Command: "/bottts"}, true},
		{"format|png", FormatSelection{Format: "png"}, true},
		{"format|svg", FormatSelection{Format: "svg"}, true},
		{"bg|transparent", BackgroundSelection{Choice: "transparent"}, true},
		{"bg|solid", BackgroundSelection{Choice: "solid"}, true},
		{"bg|plaid", nil, false},
		{"format|", nil, false},
		{"color|red", nil, false},
		{"", nil, false},
		{"   ", nil, false},
	}

	for _, tc := range cases {
		got, ok := ParseSelection(tc.token)
		if ok != tc.ok {
			t.Errorf("ParseSelection(%q) ok = %v, want %v", tc.token, ok, tc.ok)
			continue
		}
		if !ok {
			continue
		}
		if got != tc.want {
			t.Errorf("ParseSelection(%q) = %#v, want %#v", tc.token, got, tc.want)
		}
	}
}
