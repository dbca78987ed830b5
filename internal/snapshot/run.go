package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/kingrea/ritual/internal/docstring"
)

// RunOptions describes one CLI-level snapshot invocation.
type RunOptions struct {
	Root          string
	Focus         string
	Out           string
	MaxDepth      int
	MaxDocLines   int
	MaxDocChars   int
	ExcludeDirs   []string
	ExcludeGlobs  []string
	MissingOnly   bool
	FailOnMissing bool
	Registry      *docstring.Registry
	// Stdout receives the report when Out is empty.
	Stdout io.Writer
}

// Result describes what Run produced.
type Result struct {
	Report  *Report
	Output  string
	OutPath string
}

// Run validates paths, generates and renders the report, and writes it to
// Out (or Stdout). Nothing is written when validation fails. With
// FailOnMissing the report is still written before the *MissingDocstringError
// is returned.
func Run(ctx context.Context, opts RunOptions) (*Result, error) {
	root, focusRel, err := resolvePaths(opts.Root, opts.Focus)
	if err != nil {
		return nil, err
	}

	var outPath string
	var hidden []string
	if strings.TrimSpace(opts.Out) != "" {
		outPath, err = filepath.Abs(opts.Out)
		if err != nil {
			return nil, fmt.Errorf("snapshot: resolve out %s: %w", opts.Out, err)
		}
		resolved := outPath
		if dir, err := filepath.EvalSymlinks(filepath.Dir(outPath)); err == nil {
			resolved = filepath.Join(dir, filepath.Base(outPath))
		}
		if rel, ok := within(root, resolved); ok {
			hidden = append(hidden, rel)
			if dir := reportOnlyAncestor(root, rel); dir != "" {
				hidden = append(hidden, dir)
			}
		}
	}

	rules, err := NewRules(opts.ExcludeDirs, opts.ExcludeGlobs, hidden)
	if err != nil {
		return nil, err
	}
	genOpts := Options{
		RootLabel:   root,
		Focus:       focusRel,
		MaxDepth:    opts.MaxDepth,
		MaxDocLines: opts.MaxDocLines,
		MaxDocChars: opts.MaxDocChars,
		MissingOnly: opts.MissingOnly,
		Rules:       rules,
		Registry:    opts.Registry,
	}
	report, err := Generate(ctx, os.DirFS(root), genOpts)
	if err != nil {
		return nil, err
	}
	output := Render(report, genOpts)

	if err := writeReport(outPath, output, opts.Stdout); err != nil {
		return nil, err
	}
	result := &Result{Report: report, Output: output, OutPath: outPath}
	if opts.FailOnMissing && len(report.Missing) > 0 {
		return result, &MissingDocstringError{Paths: append([]string(nil), report.Missing...)}
	}
	return result, nil
}

// resolvePaths returns the absolute root and the slash-separated focus
// relative to it.
func resolvePaths(rootArg, focusArg string) (string, string, error) {
	if strings.TrimSpace(rootArg) == "" {
		rootArg = "."
	}
	root, err := filepath.Abs(rootArg)
	if err != nil {
		return "", "", fmt.Errorf("snapshot: resolve root %s: %w", rootArg, err)
	}
	if !isDir(root) {
		return "", "", fmt.Errorf("snapshot: root %s does not exist or is not a directory: %w", root, ErrPathNotFound)
	}
	if real, err := filepath.EvalSymlinks(root); err == nil {
		root = real
	}

	focus := strings.TrimSpace(focusArg)
	if focus == "" {
		focus = "."
	}
	if !filepath.IsAbs(focus) {
		focus = filepath.Join(root, focus)
	}
	focus = filepath.Clean(focus)
	if !isDir(focus) {
		return "", "", fmt.Errorf("snapshot: focus %s does not exist or is not a directory: %w", focus, ErrPathNotFound)
	}
	if real, err := filepath.EvalSymlinks(focus); err == nil {
		focus = real
	}
	rel, ok := within(root, focus)
	if !ok {
		return "", "", fmt.Errorf("snapshot: focus %s is not inside root %s: %w", focus, root, ErrFocusOutsideRoot)
	}
	return root, rel, nil
}

// reportOnlyAncestor returns the topmost directory between root and the
// report that exists only to hold it: missing, empty, or containing nothing
// but the next step towards the report. Hiding it keeps the tree identical
// whether or not a previous run created it.
func reportOnlyAncestor(root, rel string) string {
	parts := strings.Split(rel, "/")
	child := parts[len(parts)-1]
	top := ""
	for i := len(parts) - 2; i >= 0; i-- {
		dir := strings.Join(parts[:i+1], "/")
		entries, err := os.ReadDir(filepath.Join(root, filepath.FromSlash(dir)))
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err == nil && len(entries) == 0:
		case err == nil && len(entries) == 1 && entries[0].Name() == child:
		default:
			return top
		}
		top = dir
		child = parts[i]
	}
	return top
}

// within returns target relative to base, slash-separated, when target lies
// inside base.
func within(base, target string) (string, bool) {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return "", false
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func isDir(p string) bool {
	info, err := os.Stat(p)
	return err == nil && info.IsDir()
}

func writeReport(outPath, output string, stdout io.Writer) error {
	if outPath == "" {
		if stdout == nil {
			stdout = os.Stdout
		}
		if _, err := io.WriteString(stdout, output); err != nil {
			return fmt.Errorf("snapshot: write stdout: %v: %w", err, ErrWriteFailure)
		}
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("snapshot: ensure dir for %s: %v: %w", outPath, err, ErrWriteFailure)
	}
	if err := os.WriteFile(outPath, []byte(output), 0o644); err != nil {
		return fmt.Errorf("snapshot: write %s: %v: %w", outPath, err, ErrWriteFailure)
	}
	return nil
}
