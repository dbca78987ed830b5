package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kingrea/ritual/internal/config"
)

const sampleYAML = `name: lua
extensions: [.lua]
line_comments: ["--"]
`

func TestApplyRegistersPluginLanguages(t *testing.T) {
	cfg := initTestConfig(t)
	if err := os.WriteFile(filepath.Join(cfg.LanguagesDir(), "lua.yaml"), []byte(sampleYAML), 0644); err != nil {
		t.Fatalf("write plugin: %v", err)
	}
	langs, err := Apply(cfg)
	if err != nil {
		t.Fatalf("apply plugins: %v", err)
	}
	if len(langs) != 1 {
		t.Fatalf("expected 1 plugin language, got %d", len(langs))
	}
	reg, err := cfg.Registry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	if !reg.Recognized("init.lua") {
		t.Fatalf("expected .lua to be recognized after applying plugins")
	}
}

func TestDiscoverRejectsDuplicateNames(t *testing.T) {
	cfg := initTestConfig(t)
	for _, name := range []string{"a.yaml", "b.yml"} {
		if err := os.WriteFile(filepath.Join(cfg.LanguagesDir(), name), []byte(sampleYAML), 0644); err != nil {
			t.Fatalf("write plugin: %v", err)
		}
	}
	if _, err := Discover(cfg); err == nil {
		t.Fatalf("expected duplicate language error")
	}
}

func TestDiscoverUninitialisedProject(t *testing.T) {
	cfg, err := config.NewConfig(t.TempDir())
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	langs, err := Discover(cfg)
	if err != nil || langs != nil {
		t.Fatalf("expected no plugins, got %v, %v", langs, err)
	}
}

func initTestConfig(t *testing.T) *config.Config {
	t.Helper()
	root := t.TempDir()
	if err := config.InitRitualDir(root); err != nil {
		t.Fatalf("init ritual: %v", err)
	}
	cfg, err := config.NewConfig(root)
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	return cfg
}
