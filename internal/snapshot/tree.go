package snapshot

import (
	"errors"
	"io/fs"
	"path"
	"sort"
	"strings"
)

const (
	branchMid  = "├── "
	branchLast = "└── "
	indentMid  = "│   "
	indentLast = "    "
)

// BuildTree renders a deterministic tree listing of dir inside fsys. The first
// line is label; directories carry a trailing slash and are listed before
// files. Entries deeper than maxDepth are not shown.
func BuildTree(fsys fs.FS, dir, label string, maxDepth int, rules *Rules) []string {
	lines, _ := walkTree(fsys, dir, label, maxDepth, rules)
	return lines
}

// walkTree renders the listing and returns the visited nodes in the same order.
func walkTree(fsys fs.FS, dir, label string, maxDepth int, rules *Rules) ([]string, []FileNode) {
	lines := []string{label}
	var nodes []FileNode

	var walk func(dir, prefix string, depth int)
	walk = func(dir, prefix string, depth int) {
		if depth >= maxDepth {
			return
		}
		entries, err := fs.ReadDir(fsys, dir)
		if err != nil {
			marker := "[unreadable]"
			if errors.Is(err, fs.ErrPermission) {
				marker = "[permission denied]"
			}
			lines = append(lines, prefix+branchLast+marker)
			return
		}
		entries = filterEntries(dir, entries, rules)
		sortEntries(entries)
		for i, entry := range entries {
			last := i == len(entries)-1
			rel := path.Join(dir, entry.Name())
			branch, indent := branchMid, indentMid
			if last {
				branch, indent = branchLast, indentLast
			}
			if entry.IsDir() {
				lines = append(lines, prefix+branch+entry.Name()+"/")
				nodes = append(nodes, FileNode{Path: rel, Kind: KindDirectory})
				walk(rel, prefix+indent, depth+1)
				continue
			}
			lines = append(lines, prefix+branch+entry.Name())
			nodes = append(nodes, FileNode{Path: rel, Kind: KindFile})
		}
	}
	walk(cleanRel(dir), "", 0)
	return lines, nodes
}

func filterEntries(dir string, entries []fs.DirEntry, rules *Rules) []fs.DirEntry {
	kept := entries[:0]
	for _, entry := range entries {
		if rules.Skip(path.Join(dir, entry.Name()), entry.IsDir()) {
			continue
		}
		kept = append(kept, entry)
	}
	return kept
}

// sortEntries orders directories first, then by case-insensitive name with a
// byte-wise tie-break so the order never depends on the filesystem.
func sortEntries(entries []fs.DirEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if a.IsDir() != b.IsDir() {
			return a.IsDir()
		}
		la, lb := strings.ToLower(a.Name()), strings.ToLower(b.Name())
		if la != lb {
			return la < lb
		}
		return a.Name() < b.Name()
	})
}
