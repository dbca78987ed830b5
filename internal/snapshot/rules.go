package snapshot

import (
	"fmt"
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Rules decides which tree entries are left out of a snapshot.
type Rules struct {
	dirs  map[string]struct{}
	globs []string
	paths map[string]struct{}
}

// NewRules builds exclusion rules. dirs are bare directory names excluded at
// any depth. globs apply to files: a pattern without a slash matches the base
// name, otherwise it matches the whole root-relative path. paths are exact
// root-relative paths to hide, such as the report file itself.
func NewRules(dirs, globs, paths []string) (*Rules, error) {
	r := &Rules{
		dirs:  make(map[string]struct{}, len(dirs)),
		paths: make(map[string]struct{}, len(paths)),
	}
	for _, d := range dirs {
		d = strings.TrimSpace(d)
		if d != "" {
			r.dirs[d] = struct{}{}
		}
	}
	for _, g := range globs {
		g = strings.TrimSpace(g)
		if g == "" {
			continue
		}
		if !doublestar.ValidatePattern(g) {
			return nil, fmt.Errorf("snapshot: invalid exclude glob %q", g)
		}
		r.globs = append(r.globs, g)
	}
	for _, p := range paths {
		if p = cleanRel(p); p != "." {
			r.paths[p] = struct{}{}
		}
	}
	return r, nil
}

// Skip reports whether the root-relative, slash-separated path is excluded.
func (r *Rules) Skip(rel string, isDir bool) bool {
	if r == nil {
		return false
	}
	rel = cleanRel(rel)
	if rel == "." {
		return false
	}
	if _, ok := r.paths[rel]; ok {
		return true
	}
	parts := strings.Split(rel, "/")
	dirParts := parts
	if !isDir {
		dirParts = parts[:len(parts)-1]
	}
	for _, part := range dirParts {
		if _, ok := r.dirs[part]; ok {
			return true
		}
	}
	if isDir {
		return false
	}
	base := path.Base(rel)
	for _, g := range r.globs {
		target := rel
		if !strings.Contains(g, "/") {
			target = base
		}
		if ok, _ := doublestar.Match(g, target); ok {
			return true
		}
	}
	return false
}

func cleanRel(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	if p == "" {
		return "."
	}
	return path.Clean(p)
}
