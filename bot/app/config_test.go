package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

const minimalConfig = `
telegram:
  token: "test-token"
`

func TestLoadFillsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, minimalConfig))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Avatar.APIBaseURL != defaultAPIBaseURL {
		t.Errorf("api_base_url = %q, want default", cfg.Avatar.APIBaseURL)
	}
	if cfg.Avatar.DefaultStyle != defaultStyle {
		t.Errorf("default_style = %q, want %q", cfg.Avatar.DefaultStyle, defaultStyle)
	}
	if cfg.Wizard.TTL() != defaultSessionTTL {
		t.Errorf("session ttl = %v, want %v", cfg.Wizard.TTL(), defaultSessionTTL)
	}
	if cfg.FetchTimeout() != defaultFetchTimeout*time.Second {
		t.Errorf("fetch timeout = %v", cfg.FetchTimeout())
	}

	entries := cfg.CatalogEntries()
	if len(entries) == 0 {
		t.Fatal("expected built-in catalog entries")
	}
}

func TestLoadSessionTTL(t *testing.T) {
	cases := []struct {
		spec string
		want time.Duration
	}{
		{`"0"`, 0},
		{`"90s"`, 90 * time.Second},
		{`"1h"`, time.Hour},
	}
	for _, tc := range cases {
		cfg, err := Load(writeConfig(t, minimalConfig+"\nwizard:\n  session_ttl: "+tc.spec+"\n"))
		if err != nil {
			t.Fatalf("Load(ttl=%s): %v", tc.spec, err)
		}
		if cfg.Wizard.TTL() != tc.want {
			t.Errorf("ttl %s parsed to %v, want %v", tc.spec, cfg.Wizard.TTL(), tc.want)
		}
	}
}

func TestLoadRejectsBadSessionTTL(t *testing.T) {
	if _, err := Load(writeConfig(t, minimalConfig+"\nwizard:\n  session_ttl: \"soon\"\n")); err == nil {
		t.Fatal("expected error for unparsable ttl")
	}
}

func TestLoadCustomCatalog(t *testing.T) {
	body := minimalConfig + `
avatar:
  commands:
    - command: /robots
      style: bottts
      label: Robots
`
	cfg, err := Load(writeConfig(t, body))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	entries := cfg.CatalogEntries()
	if len(entries) != 1 || entries[0].Command != "/robots" || entries[0].Style != "bottts" {
		t.Fatalf("entries = %+v", entries)
	}
}

func TestLoadRejectsCatalogEntryWithoutSlash(t *testing.T) {
	body := minimalConfig + `
avatar:
  commands:
    - command: robots
      style: bottts
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected error for command without slash prefix")
	}
}

func TestLoadRequiresDatabaseSettingsWhenEnabled(t *testing.T) {
	body := minimalConfig + `
database:
  enabled: true
`
	if _, err := Load(writeConfig(t, body)); err == nil {
		t.Fatal("expected error when database enabled without host/name")
	}
}
