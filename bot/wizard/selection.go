package wizard

import "strings"

// Selection is a menu choice parsed from its raw callback token. Tokens are
// namespaced by a '|' delimiter into three families: a bare style command,
// "format|<fmt>" and "bg|<choice>". Parsing happens once at the transport
// boundary; the engine dispatches on the resulting variant.
type Selection interface {
	selection()
}

// StyleSelection carries a bare command token, e.g. "/bottts". The engine
// resolves it against the catalog.
type StyleSelection struct {
	Command string
}

// FormatSelection carries the payload of a "format|<fmt>" token.
type FormatSelection struct {
	Format string
}

// BackgroundSelection carries the payload of a "bg|<choice>" token.
type BackgroundSelection struct {
	Choice string
}

func (StyleSelection) selection()      {}
func (FormatSelection) selection()     {}
func (BackgroundSelection) selection() {}

// Background choices carried by "bg|" tokens.
const (
	BackgroundTransparent = "transparent"
	BackgroundSolid       = "solid"
)

// ParseSelection classifies a raw menu token. Tokens outside the three known
// families report ok=false and must be ignored without a reply.
func ParseSelection(token string) (Selection, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, false
	}
	key, payload, delimited := strings.Cut(token, "|")
	if !delimited {
		return StyleSelection{Command: token}, true
	}
	switch key {
	case "format":
		if payload == "" {
			return nil, false
		}
		return FormatSelection{Format: payload}, true
	case "bg":
		if payload != BackgroundTransparent && payload != BackgroundSolid {
			return nil, false
		}
		return BackgroundSelection{Choice: payload}, true
	}
	return nil, false
}
