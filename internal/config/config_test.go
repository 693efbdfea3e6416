package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFileName)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadMissingFileYieldsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), DefaultFileName))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg != Default() {
		t.Errorf("cfg = %+v, want defaults %+v", cfg, Default())
	}
}

func TestLoadValues(t *testing.T) {
	path := writeConfig(t, `
suite: unstable
component: contrib
origin: acme
label: acme tools
workers: 8
signing_key_file: /etc/keys/repo.asc
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	want := Config{
		Suite:          "unstable",
		Component:      "contrib",
		Origin:         "acme",
		Label:          "acme tools",
		Workers:        8,
		SigningKeyFile: "/etc/keys/repo.asc",
	}
	if cfg != want {
		t.Errorf("cfg = %+v, want %+v", cfg, want)
	}
}

func TestLoadPartialFileKeepsDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, "origin: acme\n"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Suite != "stable" || cfg.Component != "main" || cfg.Workers != 4 {
		t.Errorf("defaults not applied: %+v", cfg)
	}
	if cfg.Origin != "acme" {
		t.Errorf("origin = %q", cfg.Origin)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"wrong_type", "workers: many\n"},
		{"out_of_range", "workers: 0\n"},
		{"unknown_key", "sweet: stable\n"},
		{"not_yaml", ": : :\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Errorf("expected error for %q", tt.content)
			}
		})
	}
}
