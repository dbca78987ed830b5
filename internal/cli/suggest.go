package cli

import (
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/sahilm/fuzzy"
)

const (
	maxSuggestions  = 3
	suggestMaxDepth = 6
)

// suggestFocus returns directories under root that fuzzily match a focus
// path which does not exist. Excluded directory names are never offered.
func suggestFocus(root, focus string, excludeDirs []string) []string {
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil
	}
	pattern := strings.Trim(filepath.ToSlash(focus), "/")
	if pattern == "" || pattern == "." {
		return nil
	}
	skip := make(map[string]bool, len(excludeDirs))
	for _, name := range excludeDirs {
		skip[name] = true
	}

	var dirs []string
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() || path == root {
			return nil
		}
		if skip[d.Name()] {
			return filepath.SkipDir
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		dirs = append(dirs, rel)
		if strings.Count(rel, "/")+1 >= suggestMaxDepth {
			return filepath.SkipDir
		}
		return nil
	})

	matches := fuzzy.Find(pattern, dirs)
	out := make([]string, 0, maxSuggestions)
	for _, m := range matches {
		if len(out) == maxSuggestions {
			break
		}
		out = append(out, m.Str)
	}
	return out
}
