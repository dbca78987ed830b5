package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/ritual/internal/config"
)

// Discover loads YAML and Go language plugins from the project's
// .ritual/languages directory. Uninitialised projects have none.
func Discover(cfg *config.Config) ([]LanguageFile, error) {
	if cfg == nil || !cfg.Initialized() {
		return nil, nil
	}
	dir := cfg.LanguagesDir()
	yamlLangs, err := LoadLanguageDir(dir)
	if err != nil {
		return nil, err
	}
	goLangs, err := LoadGoLanguageDir(dir)
	if err != nil {
		return nil, err
	}
	langs := append(yamlLangs, goLangs...)

	seen := make(map[string]string)
	for _, file := range langs {
		name := strings.ToLower(file.Language.Name)
		if existing, ok := seen[name]; ok {
			return nil, fmt.Errorf("plugin: duplicate language %s (%s and %s)", name, existing, file.Path)
		}
		seen[name] = file.Path
	}
	return langs, nil
}

// Apply discovers plugins and merges them into cfg. It returns the files
// that contributed languages.
func Apply(cfg *config.Config) ([]LanguageFile, error) {
	langs, err := Discover(cfg)
	if err != nil || len(langs) == 0 {
		return nil, err
	}
	extra := make([]config.LanguageConfig, 0, len(langs))
	for _, file := range langs {
		extra = append(extra, file.Language)
	}
	if err := cfg.AddLanguages(extra); err != nil {
		return nil, err
	}
	return langs, nil
}
