// Package docstring extracts the leading documentation block of a source file.
//
// Recognized files are selected by an explicit extension allow-list. Each
// language is served either by a lexical line scanner or by a tree-sitter
// grammar; tree-sitter extractors fall back to the lexical scanner when the
// parse cannot be trusted.
package docstring

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"
)

// Parser selects the extraction strategy for a language.
type Parser string

const (
	// ParserLexical scans lines without building a syntax tree.
	ParserLexical Parser = "lexical"
	// ParserTreeSitter parses the file with a tree-sitter grammar.
	ParserTreeSitter Parser = "tree-sitter"
)

// Syntax describes how comments and docstrings are spelled in a language.
type Syntax struct {
	LineComments []string
	BlockStart   string
	BlockEnd     string
	// Docstring marks languages whose module documentation is a leading
	// string literal rather than a comment.
	Docstring bool
}

// Language binds a set of file extensions to an extraction strategy.
type Language struct {
	Name       string
	Extensions []string
	Parser     Parser
	Syntax     Syntax
}

// Extractor returns the leading documentation of a file. ok is false when the
// file has none.
type Extractor interface {
	Extract(ctx context.Context, src []byte) (doc string, ok bool, err error)
}

// Registry maps file extensions to extractors.
type Registry struct {
	byExt map[string]Extractor
	langs map[string]string
}

// NewRegistry builds extractors for every language. Extensions must be unique
// across languages.
func NewRegistry(langs []Language) (*Registry, error) {
	reg := &Registry{
		byExt: make(map[string]Extractor),
		langs: make(map[string]string),
	}
	for _, lang := range langs {
		if strings.TrimSpace(lang.Name) == "" {
			return nil, fmt.Errorf("docstring: language name is required")
		}
		if len(lang.Extensions) == 0 {
			return nil, fmt.Errorf("docstring: language %s has no extensions", lang.Name)
		}
		ext, err := newExtractor(lang)
		if err != nil {
			return nil, err
		}
		for _, raw := range lang.Extensions {
			key := NormalizeExtension(raw)
			if key == "" {
				return nil, fmt.Errorf("docstring: language %s has an empty extension", lang.Name)
			}
			if owner, ok := reg.langs[key]; ok {
				return nil, fmt.Errorf("docstring: extension %s claimed by both %s and %s", key, owner, lang.Name)
			}
			reg.byExt[key] = ext
			reg.langs[key] = lang.Name
		}
	}
	return reg, nil
}

func newExtractor(lang Language) (Extractor, error) {
	lexical := &LexicalExtractor{Syntax: lang.Syntax}
	switch lang.Parser {
	case "", ParserLexical:
		return lexical, nil
	case ParserTreeSitter:
		return newTreeSitterExtractor(lang, lexical)
	default:
		return nil, fmt.Errorf("docstring: unknown parser %q for %s", lang.Parser, lang.Name)
	}
}

// Lookup returns the extractor for a slash- or OS-separated file path.
func (r *Registry) Lookup(name string) (Extractor, bool) {
	if r == nil {
		return nil, false
	}
	ext, ok := r.byExt[NormalizeExtension(path.Ext(strings.ReplaceAll(name, "\\", "/")))]
	return ext, ok
}

// Recognized reports whether the file's extension is on the allow-list.
func (r *Registry) Recognized(name string) bool {
	_, ok := r.Lookup(name)
	return ok
}

// Extensions lists the allow-listed extensions in sorted order.
func (r *Registry) Extensions() []string {
	if r == nil {
		return nil
	}
	out := make([]string, 0, len(r.byExt))
	for ext := range r.byExt {
		out = append(out, ext)
	}
	sort.Strings(out)
	return out
}

// Restrict returns a registry limited to the given extensions. Unknown
// extensions are reported as an error so a typo does not silently scan nothing.
func (r *Registry) Restrict(exts []string) (*Registry, error) {
	if len(exts) == 0 {
		return r, nil
	}
	out := &Registry{
		byExt: make(map[string]Extractor, len(exts)),
		langs: make(map[string]string, len(exts)),
	}
	for _, raw := range exts {
		key := NormalizeExtension(raw)
		ext, ok := r.byExt[key]
		if !ok {
			return nil, fmt.Errorf("docstring: extension %s is not configured", key)
		}
		out.byExt[key] = ext
		out.langs[key] = r.langs[key]
	}
	return out, nil
}

// NormalizeExtension lowercases an extension and ensures a leading dot.
func NormalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" || ext == "." {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
