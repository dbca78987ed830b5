// internal/config/config.go
//
// This package handles configuration and the .ritual directory structure.
// A project opts in with `ritual init`, which creates .ritual/ in its root.
// Without it every setting falls back to the built-in defaults and ritual
// writes nothing besides the requested report.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/ritual/internal/docstring"
)

const (
	// RitualDir is the name of the directory we create in each project
	RitualDir = ".ritual"

	configHeader = "# ritual project configuration\n"
)

// BlockComment spells a block comment, e.g. /* ... */.
type BlockComment struct {
	Start string `yaml:"start"`
	End   string `yaml:"end"`
}

// LanguageConfig declares one entry of the recognized-source allow-list.
type LanguageConfig struct {
	Name         string        `yaml:"name"`
	Extensions   []string      `yaml:"extensions"`
	Parser       string        `yaml:"parser,omitempty"`
	Docstring    bool          `yaml:"docstring,omitempty"`
	LineComments []string      `yaml:"line_comments,omitempty"`
	BlockComment *BlockComment `yaml:"block_comment,omitempty"`
}

// SnapshotConfig captures the defaults for `ritual snapshot`.
type SnapshotConfig struct {
	MaxDepth     int              `yaml:"max_depth"`
	MaxDocLines  int              `yaml:"max_doc_lines"`
	MaxDocChars  int              `yaml:"max_doc_chars"`
	ExcludeDirs  []string         `yaml:"exclude_dirs"`
	ExcludeGlobs []string         `yaml:"exclude_globs"`
	Languages    []LanguageConfig `yaml:"languages"`
}

// ProjectConfig models .ritual/config.yaml.
type ProjectConfig struct {
	Version  int            `yaml:"version"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
}

// Config holds the runtime configuration for ritual.
type Config struct {
	// ProjectDir is the directory ritual operates on
	ProjectDir string

	// RitualProjectDir is ProjectDir/.ritual
	RitualProjectDir string

	Project ProjectConfig
}

// InitRitualDir creates the .ritual directory structure in the given project
// directory and writes a default config.yaml when none exists.
//
// Structure created:
// .ritual/
// ├── config.yaml
// ├── languages/ <- optional language plugins (*.yaml, *.go)
// ├── logs/      <- ritual.log, one line per log event
// └── state/     <- history.log, one line per run
func InitRitualDir(projectDir string) error {
	ritualDir := filepath.Join(projectDir, RitualDir)

	dirs := []string{
		filepath.Join(ritualDir, "languages"),
		filepath.Join(ritualDir, "logs"),
		filepath.Join(ritualDir, "state"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}

	return ensureProjectConfig(filepath.Join(ritualDir, "config.yaml"))
}

// NewConfig creates a Config for projectDir, reading .ritual/config.yaml when
// it exists.
func NewConfig(projectDir string) (*Config, error) {
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir:       abs,
		RitualProjectDir: filepath.Join(abs, RitualDir),
		Project:          defaultProjectConfig(),
	}

	// Callers validate the project directory themselves; a missing one
	// simply has no config to read.
	if info, err := os.Stat(abs); err != nil || !info.IsDir() {
		return cfg, nil
	}
	if err := cfg.loadProjectConfig(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Initialized reports whether the project has a .ritual directory.
func (c *Config) Initialized() bool {
	info, err := os.Stat(c.RitualProjectDir)
	return err == nil && info.IsDir()
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.RitualProjectDir, "logs")
}

// StateDir returns the path to the state directory
func (c *Config) StateDir() string {
	return filepath.Join(c.RitualProjectDir, "state")
}

// LanguagesDir returns the path to the language plugin directory
func (c *Config) LanguagesDir() string {
	return filepath.Join(c.RitualProjectDir, "languages")
}

// HistoryPath returns the path of the run history logbook
func (c *Config) HistoryPath() string {
	return filepath.Join(c.StateDir(), "history.log")
}

// ProjectConfigPath returns the on-disk location for the project config file.
func (c *Config) ProjectConfigPath() string {
	return filepath.Join(c.RitualProjectDir, "config.yaml")
}

// Snapshot returns the snapshot defaults.
func (c *Config) Snapshot() SnapshotConfig {
	return c.Project.Snapshot
}

// Languages converts the configured allow-list for the docstring package.
func (c *Config) Languages() []docstring.Language {
	langs := make([]docstring.Language, 0, len(c.Project.Snapshot.Languages))
	for _, lc := range c.Project.Snapshot.Languages {
		lang := docstring.Language{
			Name:       lc.Name,
			Extensions: append([]string(nil), lc.Extensions...),
			Parser:     docstring.Parser(lc.Parser),
			Syntax: docstring.Syntax{
				LineComments: append([]string(nil), lc.LineComments...),
				Docstring:    lc.Docstring,
			},
		}
		if lc.BlockComment != nil {
			lang.Syntax.BlockStart = lc.BlockComment.Start
			lang.Syntax.BlockEnd = lc.BlockComment.End
		}
		langs = append(langs, lang)
	}
	return langs
}

// Registry builds the extractor registry for the configured languages.
func (c *Config) Registry() (*docstring.Registry, error) {
	reg, err := docstring.NewRegistry(c.Languages())
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return reg, nil
}

// AddLanguages merges plugin languages into the allow-list. A plugin whose
// name matches a configured language replaces it. The merged list is
// validated as a whole and c is left untouched on error.
func (c *Config) AddLanguages(extra []LanguageConfig) error {
	if len(extra) == 0 {
		return nil
	}
	merged := c.Project
	langs := append([]LanguageConfig(nil), merged.Snapshot.Languages...)
	for _, lc := range extra {
		lc.normalize()
		replaced := false
		for i := range langs {
			if langs[i].Name == lc.Name {
				langs[i] = lc
				replaced = true
				break
			}
		}
		if !replaced {
			langs = append(langs, lc)
		}
	}
	merged.Snapshot.Languages = langs
	if err := merged.validate(); err != nil {
		return fmt.Errorf("config: plugin languages: %w", err)
	}
	c.Project = merged
	return nil
}

func (c *Config) loadProjectConfig() error {
	path := c.ProjectConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: read %s: %w", path, err)
	}

	var parsed ProjectConfig
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}

	parsed.applyDefaults()
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return fmt.Errorf("config: %s: %w", path, err)
	}

	c.Project = parsed
	return nil
}

func (pc *ProjectConfig) applyDefaults() {
	defaults := defaultProjectConfig()
	if pc.Version == 0 {
		pc.Version = defaults.Version
	}
	s := &pc.Snapshot
	if s.MaxDepth == 0 {
		s.MaxDepth = defaults.Snapshot.MaxDepth
	}
	if s.MaxDocLines == 0 {
		s.MaxDocLines = defaults.Snapshot.MaxDocLines
	}
	if s.MaxDocChars == 0 {
		s.MaxDocChars = defaults.Snapshot.MaxDocChars
	}
	// An explicit empty list disables the defaults; an absent key keeps them.
	if s.ExcludeDirs == nil {
		s.ExcludeDirs = defaults.Snapshot.ExcludeDirs
	}
	if s.ExcludeGlobs == nil {
		s.ExcludeGlobs = defaults.Snapshot.ExcludeGlobs
	}
	if s.Languages == nil {
		s.Languages = defaults.Snapshot.Languages
	}
}

func (pc *ProjectConfig) normalize() {
	s := &pc.Snapshot
	s.ExcludeDirs = trimAll(s.ExcludeDirs)
	s.ExcludeGlobs = trimAll(s.ExcludeGlobs)
	for i := range s.Languages {
		s.Languages[i].normalize()
	}
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	s := pc.Snapshot
	if s.MaxDepth < 0 || s.MaxDocLines < 0 || s.MaxDocChars < 0 {
		return fmt.Errorf("snapshot limits must not be negative")
	}
	if len(s.Languages) == 0 {
		return fmt.Errorf("snapshot.languages must not be empty")
	}
	owners := make(map[string]string)
	for i, lang := range s.Languages {
		if err := lang.validate(); err != nil {
			return fmt.Errorf("snapshot.languages[%d]: %w", i, err)
		}
		for _, ext := range lang.Extensions {
			if owner, ok := owners[ext]; ok {
				return fmt.Errorf("snapshot.languages[%d]: extension %s already used by %s", i, ext, owner)
			}
			owners[ext] = lang.Name
		}
	}
	return nil
}

func (lc *LanguageConfig) normalize() {
	lc.Name = strings.ToLower(strings.TrimSpace(lc.Name))
	lc.Parser = strings.ToLower(strings.TrimSpace(lc.Parser))
	if lc.Parser == "" {
		lc.Parser = string(docstring.ParserLexical)
	}
	exts := make([]string, 0, len(lc.Extensions))
	for _, ext := range lc.Extensions {
		if norm := docstring.NormalizeExtension(ext); norm != "" {
			exts = append(exts, norm)
		}
	}
	lc.Extensions = exts
	lc.LineComments = trimAll(lc.LineComments)
	if lc.BlockComment != nil {
		lc.BlockComment.Start = strings.TrimSpace(lc.BlockComment.Start)
		lc.BlockComment.End = strings.TrimSpace(lc.BlockComment.End)
	}
}

func (lc LanguageConfig) validate() error {
	if lc.Name == "" {
		return fmt.Errorf("name is required")
	}
	if len(lc.Extensions) == 0 {
		return fmt.Errorf("%s: at least one extension is required", lc.Name)
	}
	switch docstring.Parser(lc.Parser) {
	case docstring.ParserLexical:
	case docstring.ParserTreeSitter:
		if !docstring.HasGrammar(lc.Name) {
			return fmt.Errorf("%s: no tree-sitter grammar is available", lc.Name)
		}
	default:
		return fmt.Errorf("%s: parser must be 'lexical' or 'tree-sitter'", lc.Name)
	}
	if lc.BlockComment != nil && (lc.BlockComment.Start == "" || lc.BlockComment.End == "") {
		return fmt.Errorf("%s: block_comment needs both start and end", lc.Name)
	}
	if !lc.Docstring && len(lc.LineComments) == 0 && lc.BlockComment == nil {
		return fmt.Errorf("%s: line_comments or block_comment is required", lc.Name)
	}
	return nil
}

func trimAll(values []string) []string {
	if values == nil {
		return nil
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func ensureProjectConfig(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	data, err := yaml.Marshal(defaultProjectConfig())
	if err != nil {
		return fmt.Errorf("config: encode default config: %w", err)
	}
	if err := os.WriteFile(path, append([]byte(configHeader), data...), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
