package avatar

import "strings"

// colorTable is the closed set of background color names users may type.
// Values are 6-hex-digit RGB codes without the leading '#'.
var colorTable = map[string]string{
	"red":     "FF0000",
	"green":   "00FF00",
	"blue":    "0000FF",
	"black":   "000000",
	"white":   "FFFFFF",
	"gray":    "808080",
	"yellow":  "FFFF00",
	"purple":  "800080",
	"orange":  "FFA500",
	"pink":    "FFC0CB",
	"brown":   "A52A2A",
	"cyan":    "00FFFF",
	"magenta": "FF00FF",
}

// ResolveColor maps a human color name to its hex code. The lookup is
// case-insensitive and tolerant of surrounding whitespace. Unknown names
// report ok=false rather than an error.
func ResolveColor(name string) (string, bool) {
	hex, ok := colorTable[strings.ToLower(strings.TrimSpace(name))]
	return hex, ok
}

// KnownColor reports whether name belongs to the closed color set.
func KnownColor(name string) bool {
	_, ok := ResolveColor(name)
	return ok
}

// ColorNames returns the accepted color names in a stable alphabetical order,
// for rendering prompts.
func ColorNames() []string {
	return []string{
		"black", "blue", "brown", "cyan", "gray", "green", "magenta",
		"orange", "pink", "purple", "red", "white", "yellow",
	}
}
