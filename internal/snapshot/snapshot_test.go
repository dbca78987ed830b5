package snapshot

import (
	"context"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/ritual/internal/docstring"
)

func testRegistry(t *testing.T) *docstring.Registry {
	t.Helper()
	reg, err := docstring.NewRegistry([]docstring.Language{
		{Name: "python", Extensions: []string{".py"}, Parser: docstring.ParserLexical, Syntax: docstring.Syntax{LineComments: []string{"#"}, Docstring: true}},
		{Name: "shell", Extensions: []string{".sh"}, Parser: docstring.ParserLexical, Syntax: docstring.Syntax{LineComments: []string{"#"}}},
	})
	require.NoError(t, err)
	return reg
}

func testRules(t *testing.T) *Rules {
	t.Helper()
	rules, err := NewRules([]string{".git", "node_modules"}, []string{"**/*.pyc"}, nil)
	require.NoError(t, err)
	return rules
}

func sampleFS() fstest.MapFS {
	return fstest.MapFS{
		"README.md":                {Data: []byte("# demo\n")},
		"setup.py":                 {Data: []byte("import setuptools\n")},
		"src/app/__init__.py":      {Data: []byte("\"\"\"App package.\"\"\"\n")},
		"src/app/Main.py":          {Data: []byte("#!/usr/bin/env python3\n\"\"\"Entry point.\"\"\"\n")},
		"src/app/util.py":          {Data: []byte("def f():\n    pass\n")},
		"src/app/util.pyc":         {Data: []byte{0, 1}},
		"scripts/deploy.sh":        {Data: []byte("#!/bin/sh\n# Deploy to prod.\nset -e\n")},
		"node_modules/x/index.py":  {Data: []byte("\"\"\"vendored\"\"\"\n")},
		".git/HEAD":                {Data: []byte("ref: main\n")},
		"docs/guide/intro.md":      {Data: []byte("intro\n")},
		"docs/guide/deep/a/b/c.md": {Data: []byte("deep\n")},
	}
}

func generate(t *testing.T, fsys fstest.MapFS, opts Options) *Report {
	t.Helper()
	if opts.Registry == nil {
		opts.Registry = testRegistry(t)
	}
	if opts.Rules == nil {
		opts.Rules = testRules(t)
	}
	report, err := Generate(context.Background(), fsys, opts)
	require.NoError(t, err)
	return report
}

func TestGenerateTreeIsOrderedAndFiltered(t *testing.T) {
	report := generate(t, sampleFS(), Options{RootLabel: "/repo"})
	want := []string{
		"/repo",
		"├── docs/",
		"│   └── guide/",
		"│       ├── deep/",
		"│       │   └── a/",
		"│       │       └── b/",
		"│       │           └── c.md",
		"│       └── intro.md",
		"├── scripts/",
		"│   └── deploy.sh",
		"├── src/",
		"│   └── app/",
		"│       ├── __init__.py",
		"│       ├── Main.py",
		"│       └── util.py",
		"├── README.md",
		"└── setup.py",
	}
	assert.Equal(t, want, report.Tree)
	assert.Empty(t, report.FocusTree)

	require.NotEmpty(t, report.Nodes)
	assert.Equal(t, FileNode{Path: "docs", Kind: KindDirectory}, report.Nodes[0])
	assert.Equal(t, FileNode{Path: "setup.py", Kind: KindFile}, report.Nodes[len(report.Nodes)-1])
}

func TestGenerateRespectsMaxDepth(t *testing.T) {
	report := generate(t, sampleFS(), Options{RootLabel: "/repo", MaxDepth: 1})
	assert.Equal(t, []string{
		"/repo",
		"├── docs/",
		"├── scripts/",
		"├── src/",
		"├── README.md",
		"└── setup.py",
	}, report.Tree)
}

func TestGenerateExtractsLeadingDocs(t *testing.T) {
	report := generate(t, sampleFS(), Options{RootLabel: "/repo"})

	paths := make([]string, 0, len(report.Files))
	for _, f := range report.Files {
		paths = append(paths, f.Path)
	}
	assert.Equal(t, []string{
		"scripts/deploy.sh",
		"setup.py",
		"src/app/__init__.py",
		"src/app/Main.py",
		"src/app/util.py",
	}, paths)
	assert.Equal(t, 5, report.Scanned())
	assert.Equal(t, []string{"setup.py", "src/app/util.py"}, report.Missing)

	assert.Equal(t, "Deploy to prod.", report.Files[0].Doc)
	assert.Equal(t, "Entry point.", report.Files[3].Doc)
	assert.True(t, report.Files[3].HasDoc)
}

func TestGenerateFocusLimitsDocsButNotTree(t *testing.T) {
	full := generate(t, sampleFS(), Options{RootLabel: "/repo"})
	focused := generate(t, sampleFS(), Options{RootLabel: "/repo", Focus: "src/app"})

	assert.Equal(t, full.Tree, focused.Tree)
	assert.Equal(t, "src/app", focused.Focus)
	assert.Equal(t, []string{
		"src/app",
		"├── __init__.py",
		"├── Main.py",
		"└── util.py",
	}, focused.FocusTree)
	for _, f := range focused.Files {
		assert.True(t, strings.HasPrefix(f.Path, "src/app/"), f.Path)
	}
	assert.Equal(t, []string{"src/app/util.py"}, focused.Missing)
}

func TestGenerateMissingFocus(t *testing.T) {
	_, err := Generate(context.Background(), sampleFS(), Options{Focus: "nope", Registry: testRegistry(t)})
	require.ErrorIs(t, err, ErrPathNotFound)
}

func TestGenerateRequiresRegistry(t *testing.T) {
	_, err := Generate(context.Background(), sampleFS(), Options{})
	require.Error(t, err)
}

func TestGenerateHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Generate(ctx, sampleFS(), Options{Registry: testRegistry(t), Rules: testRules(t)})
	require.ErrorIs(t, err, context.Canceled)
}

func TestRulesSkip(t *testing.T) {
	rules, err := NewRules([]string{"build"}, []string{"*.min.js", "gen/**/*.go"}, []string{"out/report.md"})
	require.NoError(t, err)

	assert.True(t, rules.Skip("build", true))
	assert.True(t, rules.Skip("a/build/x.py", false))
	assert.False(t, rules.Skip("build.py", false))
	assert.True(t, rules.Skip("web/app.min.js", false))
	assert.False(t, rules.Skip("web/app.js", false))
	assert.True(t, rules.Skip("gen/a/b/c.go", false))
	assert.False(t, rules.Skip("src/gen.go", false))
	assert.True(t, rules.Skip("out/report.md", false))
	assert.False(t, rules.Skip(".", true))

	_, err = NewRules(nil, []string{"[unclosed"}, nil)
	require.Error(t, err)
}
