// Package plugins loads extra source languages from .ritual/languages.
//
// A plugin is either a YAML file holding one language entry (the same schema
// as snapshot.languages in config.yaml) or a Go file interpreted at startup
// that returns any number of entries.
package plugins

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/ritual/internal/config"
)

// LanguageFile pairs a parsed language definition with its on-disk source.
type LanguageFile struct {
	Language config.LanguageConfig
	Path     string
}

// ParseLanguageYAML decodes a single language definition. Unknown keys are
// rejected so typos like `line_comment` do not silently disable a language.
func ParseLanguageYAML(data []byte) (config.LanguageConfig, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return config.LanguageConfig{}, fmt.Errorf("plugin: definition payload is empty")
	}
	var lang config.LanguageConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&lang); err != nil {
		return config.LanguageConfig{}, fmt.Errorf("plugin: decode definition: %w", err)
	}
	lang.Name = strings.TrimSpace(lang.Name)
	if lang.Name == "" {
		return config.LanguageConfig{}, fmt.Errorf("plugin: name is required")
	}
	if len(lang.Extensions) == 0 {
		return config.LanguageConfig{}, fmt.Errorf("plugin %s: extensions are required", lang.Name)
	}
	return lang, nil
}

// LoadLanguageFile reads a YAML file from disk and returns the parsed language.
func LoadLanguageFile(path string) (LanguageFile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return LanguageFile{}, fmt.Errorf("plugin: stat %s: %w", path, err)
	}
	if info.IsDir() {
		return LanguageFile{}, fmt.Errorf("plugin: %s is a directory", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return LanguageFile{}, fmt.Errorf("plugin: read %s: %w", path, err)
	}
	lang, err := ParseLanguageYAML(data)
	if err != nil {
		return LanguageFile{}, fmt.Errorf("plugin: %s: %w", path, err)
	}
	return LanguageFile{Language: lang, Path: filepath.Clean(path)}, nil
}

// LoadLanguageDir scans a directory for *.yaml languages.
// Missing directories are treated as "no plugins".
func LoadLanguageDir(dir string) ([]LanguageFile, error) {
	trimmed := strings.TrimSpace(dir)
	if trimmed == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(trimmed)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("plugin: read %s: %w", trimmed, err)
	}
	var langs []LanguageFile
	for _, entry := range entries {
		if entry.IsDir() || !isYAMLFile(entry.Name()) {
			continue
		}
		lang, err := LoadLanguageFile(filepath.Join(trimmed, entry.Name()))
		if err != nil {
			return nil, err
		}
		langs = append(langs, lang)
	}
	if len(langs) == 0 {
		return nil, nil
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].Path < langs[j].Path })
	return langs, nil
}

func isYAMLFile(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	return strings.HasSuffix(lower, ".yaml") || strings.HasSuffix(lower, ".yml")
}
