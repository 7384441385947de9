package avatar

import "testing"

func TestCatalogLookup(t *testing.T) {
	c := NewCatalog(DefaultEntries())

	entry, ok := c.Lookup("/bottts")
	if !ok || entry.Style != "bottts" {
		t.Fatalf("Lookup(/bottts) = %+v, %v", entry, ok)
	}

	entry, ok = c.Lookup("/BoTtTs")
	if !ok || entry.Style != "bottts" {
		t.Fatalf("case-insensitive Lookup failed: %+v, %v", entry, ok)
	}

	if _, ok := c.Lookup("/nope"); ok {
		t.Fatal("Lookup resolved an unknown command")
	}
}

func TestCatalogPreservesInsertionOrder(t *testing.T) {
	c := NewCatalog([]Entry{
		{Command: "/z", Style: "zeta"},
		{Command: "/a", Style: "alpha"},
		{Command: "/m", Style: "mu"},
	})

	entries := c.Entries()
	want := []string{"zeta", "alpha", "mu"}
	if len(entries) != len(want) {
		t.Fatalf("len = %d, want %d", len(entries), len(want))
	}
	for i, style := range want {
		if entries[i].Style != style {
			t.Errorf("entries[%d].Style = %q, want %q", i, entries[i].Style, style)
		}
	}
}

func TestCatalogSkipsInvalidAndDuplicateEntries(t *testing.T) {
	c := NewCatalog([]Entry{
		{Command: "/a", Style: "alpha", Label: "First"},
		{Command: "/A", Style: "other", Label: "Dup"},
		{Command: "", Style: "no-command"},
		{Command: "/b", Style: ""},
	})

	if c.Len() != 1 {
		t.Fatalf("len = %d, want 1", c.Len())
	}
	entry, _ := c.Lookup("/a")
	if entry.Label != "First" {
		t.Fatalf("duplicate replaced first entry: %+v", entry)
	}
}

func TestCatalogDefaultsLabelToStyle(t *testing.T) {
	c := NewCatalog([]Entry{{Command: "/x", Style: "xstyle"}})
	entry, _ := c.Lookup("/x")
	if entry.Label != "xstyle" {
		t.Fatalf("label = %q, want style fallback", entry.Label)
	}
}
