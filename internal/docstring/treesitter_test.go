package docstring

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTreeSitter(t *testing.T, name string, syn Syntax) Extractor {
	t.Helper()
	reg, err := NewRegistry([]Language{{Name: name, Extensions: []string{"." + name}, Parser: ParserTreeSitter, Syntax: syn}})
	require.NoError(t, err)
	ext, ok := reg.Lookup("file." + name)
	require.True(t, ok)
	return ext
}

func TestTreeSitterPythonDocstring(t *testing.T) {
	ext := newTreeSitter(t, "python", pythonSyntax)
	testCases := []struct {
		name   string
		src    string
		want   string
		wantOK bool
	}{
		{"comments above", "#!/usr/bin/env python3\n# helper\n\"\"\"Doc here.\"\"\"\nimport os\n", "Doc here.", true},
		{"multi line", "\"\"\"\nSummary.\n\nMore.\n\"\"\"\n", "Summary.\n\nMore.", true},
		{"statement first", "import os\n\"\"\"Late.\"\"\"\n", "", false},
		{"assignment of string", "x = \"\"\"not docs\"\"\"\n", "", false},
		{"syntax error falls back", "\"\"\"Broken module.\"\"\"\ndef (:\n", "Broken module.", true},
		{"crlf line endings", "\"\"\"Line1\r\nLine2\"\"\"\r\n", "Line1\nLine2", true},
		{"bom", "\xef\xbb\xbf\"\"\"Marked.\"\"\"\n", "Marked.", true},
		{"implicit concatenation", "\"\"\"a\"\"\" \"b\"\n", "ab", true},
		{"binary expression", "\"\"\"Doc\"\"\" + x\n", "", false},
		{"escapes decoded", "\"caf\\xe9\"\n", "caf\u00e9", true},
		{"hash block without docstring", "# Utility helpers.\nimport os\n", "Utility helpers.", true},
		{"encoding line skipped", "# -*- coding: utf-8 -*-\n# Helpers.\nimport os\n", "Helpers.", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := ext.Extract(context.Background(), []byte(tc.src))
			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTreeSitterGoLeadingComment(t *testing.T) {
	ext := newTreeSitter(t, "go", cSyntax)
	testCases := []struct {
		name   string
		src    string
		want   string
		wantOK bool
	}{
		{"package doc", "// Package demo shows things.\n// Second line.\npackage demo\n", "Package demo shows things.\nSecond line.", true},
		{"after build tag", "//go:build linux\n\n// Package demo.\npackage demo\n", "Package demo.", true},
		{"stops at gap", "// Copyright.\n\n// Package demo.\npackage demo\n", "Copyright.", true},
		{"block comment", "/*\nPackage demo renders.\n*/\npackage demo\n", "Package demo renders.", true},
		{"no comment", "package demo\n\n// Later.\nfunc A() {}\n", "", false},
		{"crlf line endings", "// Package demo.\r\n// More.\r\npackage demo\r\n", "Package demo.\nMore.", true},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok, err := ext.Extract(context.Background(), []byte(tc.src))
			require.NoError(t, err)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTreeSitterTypeScriptLeadingComment(t *testing.T) {
	ext := newTreeSitter(t, "typescript", cSyntax)
	got, ok, err := ext.Extract(context.Background(), []byte("/**\n * CLI entry.\n */\nexport const x = 1;\n"))
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "CLI entry.", got)

	_, ok, err = ext.Extract(context.Background(), []byte("export const x = 1;\n// trailing\n"))
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTreeSitterAgreesWithLexical(t *testing.T) {
	sources := []string{
		"// One.\n// Two.\npackage a\n",
		"package a\n",
		"// Only.\n\n\npackage a\n",
		"/* Block. */\npackage a\n",
		"// Windows.\r\n// Lines.\r\npackage a\r\n",
	}
	ts := newTreeSitter(t, "go", cSyntax)
	lex := &LexicalExtractor{Syntax: cSyntax}
	for _, src := range sources {
		wantDoc, wantOK, err := lex.Extract(context.Background(), []byte(src))
		require.NoError(t, err)
		gotDoc, gotOK, err := ts.Extract(context.Background(), []byte(src))
		require.NoError(t, err)
		assert.Equal(t, wantOK, gotOK, src)
		assert.Equal(t, wantDoc, gotDoc, src)
	}
}
