package avatar

import "strings"

// Entry binds a user-facing command token to an avatar style.
type Entry struct {
	// Command is the slash-command token shown to users, e.g. "/bottts".
	Command string
	// Style is the avatar API style identifier, e.g. "bottts".
	Style string
	// Label is the human-readable menu caption.
	Label string
}

// Catalog is the immutable command-to-style mapping. Entries keep their
// insertion order for menu rendering.
type Catalog struct {
	entries []Entry
	byToken map[string]Entry
}

// NewCatalog builds a catalog from the given entries. Entries with an empty
// command or style are skipped; duplicate command tokens keep the first entry.
func NewCatalog(entries []Entry) *Catalog {
	c := &Catalog{
		byToken: make(map[string]Entry, len(entries)),
	}
	for _, e := range entries {
		e.Command = strings.TrimSpace(e.Command)
		e.Style = strings.TrimSpace(e.Style)
		if e.Command == "" || e.Style == "" {
			continue
		}
		if e.Label == "" {
			e.Label = e.Style
		}
		key := strings.ToLower(e.Command)
		if _, dup := c.byToken[key]; dup {
			continue
		}
		c.byToken[key] = e
		c.entries = append(c.entries, e)
	}
	return c
}

// DefaultEntries returns the built-in style catalog used when the
// configuration does not override it.
func DefaultEntries() []Entry {
	return []Entry{
		{Command: "/avataaars", Style: "avataaars", Label: "Avataaars"},
		{Command: "/bottts", Style: "bottts", Label: "Bottts"},
		{Command: "/pixel-art", Style: "pixel-art", Label: "Pixel Art"},
		{Command: "/identicon", Style: "identicon", Label: "Identicon"},
		{Command: "/lorelei", Style: "lorelei", Label: "Lorelei"},
		{Command: "/thumbs", Style: "thumbs", Label: "Thumbs"},
	}
}

// Lookup resolves a command token to its entry, case-insensitively.
func (c *Catalog) Lookup(token string) (Entry, bool) {
	e, ok := c.byToken[strings.ToLower(strings.TrimSpace(token))]
	return e, ok
}

// Entries returns all catalog entries in insertion order. The returned slice
// must not be mutated.
func (c *Catalog) Entries() []Entry {
	return c.entries
}

// Len reports the number of entries in the catalog.
func (c *Catalog) Len() int {
	return len(c.entries)
}
