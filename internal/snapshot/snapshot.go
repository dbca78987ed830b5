// Package snapshot builds a one-shot markdown report of a repository: a tree
// listing of the whole root and the leading documentation of every recognized
// source file under a focus directory.
//
// Generate and Render are pure over an fs.FS; Run owns the filesystem
// boundary (path validation and writing the report).
package snapshot

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/kingrea/ritual/internal/docstring"
)

// Kind distinguishes files from directories.
type Kind string

const (
	KindFile      Kind = "file"
	KindDirectory Kind = "directory"
)

// Defaults used when Options leave a limit unset.
const (
	DefaultMaxDepth    = 6
	DefaultMaxDocLines = 60
	DefaultMaxDocChars = 4000
)

// FileNode is one entry of the scanned tree. Doc is only meaningful for files
// and only when HasDoc is true.
type FileNode struct {
	Path    string
	Kind    Kind
	Doc     string
	HasDoc  bool
	ReadErr error
}

// Report is the result of one snapshot pass.
type Report struct {
	Root      string
	Focus     string
	Tree      []string
	FocusTree []string
	// Nodes lists every tree entry in listing order.
	Nodes []FileNode
	// Files lists the recognized in-focus files in path order.
	Files   []FileNode
	Missing []string
}

// Scanned returns the number of in-focus files examined.
func (r *Report) Scanned() int {
	return len(r.Files)
}

// Options controls a snapshot pass.
type Options struct {
	// RootLabel is printed as the first tree line and in the header.
	RootLabel   string
	Focus       string
	MaxDepth    int
	MaxDocLines int
	MaxDocChars int
	MissingOnly bool
	Rules       *Rules
	Registry    *docstring.Registry
}

func (o Options) withDefaults() Options {
	if o.MaxDepth <= 0 {
		o.MaxDepth = DefaultMaxDepth
	}
	if o.MaxDocLines <= 0 {
		o.MaxDocLines = DefaultMaxDocLines
	}
	if o.MaxDocChars <= 0 {
		o.MaxDocChars = DefaultMaxDocChars
	}
	o.Focus = cleanRel(o.Focus)
	if o.RootLabel == "" {
		o.RootLabel = "."
	}
	return o
}

// Generate walks fsys and extracts leading documentation for in-focus files.
// fsys must be rooted at the repository root; Options.Focus is relative to it.
func Generate(ctx context.Context, fsys fs.FS, opts Options) (*Report, error) {
	opts = opts.withDefaults()
	if opts.Registry == nil {
		return nil, fmt.Errorf("snapshot: no language registry configured")
	}
	info, err := fs.Stat(fsys, opts.Focus)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("snapshot: focus %s: %w", opts.Focus, ErrPathNotFound)
	}

	tree, nodes := walkTree(fsys, ".", opts.RootLabel, opts.MaxDepth, opts.Rules)
	report := &Report{
		Root:  opts.RootLabel,
		Focus: opts.Focus,
		Tree:  tree,
		Nodes: nodes,
	}
	if opts.Focus != "." {
		report.FocusTree = BuildTree(fsys, opts.Focus, opts.Focus, min(opts.MaxDepth, DefaultMaxDepth), opts.Rules)
	}

	paths, err := collectFiles(fsys, opts.Focus, opts.Rules, opts.Registry)
	if err != nil {
		return nil, err
	}
	for _, p := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		node, err := extractNode(ctx, fsys, p, opts.Registry)
		if err != nil {
			return nil, err
		}
		if !node.HasDoc {
			report.Missing = append(report.Missing, node.Path)
		}
		report.Files = append(report.Files, node)
	}
	return report, nil
}

func extractNode(ctx context.Context, fsys fs.FS, p string, reg *docstring.Registry) (FileNode, error) {
	node := FileNode{Path: p, Kind: KindFile}
	src, err := fs.ReadFile(fsys, p)
	if err != nil {
		node.ReadErr = err
		return node, nil
	}
	ext, _ := reg.Lookup(p)
	doc, ok, err := ext.Extract(ctx, src)
	if err != nil {
		return node, fmt.Errorf("snapshot: extract %s: %w", p, err)
	}
	node.Doc, node.HasDoc = doc, ok
	return node, nil
}

// collectFiles lists recognized regular files under focus, ignoring the tree
// depth limit. Unreadable directories are skipped.
func collectFiles(fsys fs.FS, focus string, rules *Rules, reg *docstring.Registry) ([]string, error) {
	var files []string
	err := fs.WalkDir(fsys, focus, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == focus {
				return fmt.Errorf("snapshot: walk %s: %w", focus, err)
			}
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			if p != focus && rules.Skip(p, true) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || rules.Skip(p, false) || !reg.Recognized(p) {
			return nil
		}
		files = append(files, p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(files, func(i, j int) bool {
		li, lj := strings.ToLower(files[i]), strings.ToLower(files[j])
		if li != lj {
			return li < lj
		}
		return files[i] < files[j]
	})
	return files, nil
}
