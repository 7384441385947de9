package callbacks

import (
	"testing"

	tele "gopkg.in/telebot.v4"
)

func TestParseCallbackData(t *testing.T) {
	cases := []struct {
		data    string
		key     string
		payload string
	}{
		// Raw wire form, as delivered to the generic OnCallback route.
		{"\fformat|png", "format", "png"},
		{"\fbg|solid", "bg", "solid"},
		{"\f/avataaars", "/avataaars", ""},
		// Already stripped.
		{"format|svg", "format", "svg"},
		{"/bottts", "/bottts", ""},
		{"", "", ""},
	}

	for _, tc := range cases {
		key, payload := ParseCallbackData(&tele.Callback{Data: tc.data})
		if key != tc.key || payload != tc.payload {
			t.Errorf("ParseCallbackData(%q) = %q, %q; want %q, %q",
				tc.data, key, payload, tc.key, tc.payload)
		}
	}
}

func TestParseCallbackDataNil(t *testing.T) {
	if key, payload := ParseCallbackData(nil); key != "" || payload != "" {
		t.Errorf("ParseCallbackData(nil) = %q, %q", key, payload)
	}
}
