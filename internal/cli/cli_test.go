package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/ritual/internal/snapshot"
)

func writeRepo(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"pkg/good.py":     "\"\"\"Good module.\"\"\"\n",
		"pkg/bad.go":      "package bad\n",
		"cmd/main.go":     "// Command main runs things.\npackage main\n",
		"notes/readme.md": "# notes\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return root
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := NewRootCmd("test")
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

func TestSnapshotWritesReportAndPrintsPath(t *testing.T) {
	root := writeRepo(t)
	out := filepath.Join(t.TempDir(), "snap.md")

	stdout, stderr, err := execute(t, "snapshot", "--root", root, "--out", out)
	require.NoError(t, err)
	assert.Equal(t, out+"\n", stdout)
	assert.Contains(t, stderr, "Scanned")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	report := string(data)
	assert.Contains(t, report, "### cmd/main.go\n\n```text\nCommand main runs things.\n```")
	assert.Contains(t, report, "### pkg/good.py\n\n```text\nGood module.\n```")
	assert.Contains(t, report, "### pkg/bad.go\n\n_No leading documentation found._")
	assert.NotContains(t, report, "### notes/readme.md")
	assert.Contains(t, report, "│   └── readme.md")
}

func TestSnapshotToStdout(t *testing.T) {
	root := writeRepo(t)
	stdout, _, err := execute(t, "snapshot", "--root", root, "--focus", "cmd")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "# Codebase snapshot\n"))
	assert.Contains(t, stdout, "**Focus:** `cmd`")
	assert.NotContains(t, stdout, "### pkg/")
}

func TestSnapshotFailOnMissingExitCode(t *testing.T) {
	root := writeRepo(t)
	_, _, err := execute(t, "snapshot", "--root", root, "--fail-on-missing", "--out", filepath.Join(t.TempDir(), "s.md"))
	require.ErrorIs(t, err, snapshot.ErrMissingDocstring)
	assert.Equal(t, ExitMissing, ExitCode(err))
	assert.Contains(t, err.Error(), "pkg/bad.go")

	_, _, err = execute(t, "snapshot", "--root", root, "--focus", "cmd", "--fail-on-missing", "--out", filepath.Join(t.TempDir(), "s.md"))
	require.NoError(t, err)
	assert.Equal(t, ExitOK, ExitCode(err))
}

func TestSnapshotMissingRoot(t *testing.T) {
	out := filepath.Join(t.TempDir(), "s.md")
	_, _, err := execute(t, "snapshot", "--root", filepath.Join(t.TempDir(), "nope"), "--out", out)
	require.ErrorIs(t, err, snapshot.ErrPathNotFound)
	assert.Equal(t, ExitFailure, ExitCode(err))
	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestSnapshotExtensionFilter(t *testing.T) {
	root := writeRepo(t)
	stdout, _, err := execute(t, "snapshot", "--root", root, "--ext", "py")
	require.NoError(t, err)
	assert.Contains(t, stdout, "### pkg/good.py")
	assert.NotContains(t, stdout, "### cmd/main.go")

	_, _, err = execute(t, "snapshot", "--root", root, "--ext", ".zig")
	require.Error(t, err)
}

func TestSnapshotMissingOnly(t *testing.T) {
	root := writeRepo(t)
	stdout, _, err := execute(t, "snapshot", "--root", root, "--missing-only")
	require.NoError(t, err)
	docs := stdout[strings.Index(stdout, "## Leading docs"):]
	assert.Equal(t, "## Leading docs\n\n### pkg/bad.go\n", docs)
}

func TestSnapshotViewOpensPager(t *testing.T) {
	root := writeRepo(t)
	var gotTitle, gotContent string
	prev := viewReport
	viewReport = func(title, content string) error {
		gotTitle, gotContent = title, content
		return nil
	}
	t.Cleanup(func() { viewReport = prev })

	stdout, _, err := execute(t, "snapshot", "--root", root, "--view")
	require.NoError(t, err)
	assert.Empty(t, stdout, "report goes to the pager, not stdout")
	assert.Equal(t, "snapshot", gotTitle)
	assert.Contains(t, gotContent, "# Codebase snapshot")
}

func TestInitAndHistory(t *testing.T) {
	root := writeRepo(t)

	stdout, _, err := execute(t, "init", root)
	require.NoError(t, err)
	assert.Contains(t, stdout, filepath.Join(".ritual", "config.yaml"))

	stdout, _, err = execute(t, "history", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, "No runs recorded yet.\n", stdout)

	first, _, err := execute(t, "snapshot", "--root", root)
	require.NoError(t, err)
	_, _, err = execute(t, "snapshot", "--root", root, "--fail-on-missing")
	require.Error(t, err)
	second, _, err := execute(t, "snapshot", "--root", root)
	require.NoError(t, err)
	assert.Equal(t, first, second, ".ritual state must not change the snapshot")
	assert.NotContains(t, first, ".ritual")

	stdout, _, err = execute(t, "history", "--root", root, "-n", "2")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(stdout), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[0], "WARN")
	assert.Contains(t, lines[0], "missing=1")
	assert.Contains(t, lines[1], "INFO")
	assert.Equal(t, "(2 of 3 runs shown)", lines[2])

	_, err = os.Stat(filepath.Join(root, ".ritual", "logs", "ritual.log"))
	assert.NoError(t, err)
}

func TestHistoryRequiresInit(t *testing.T) {
	_, _, err := execute(t, "history", "--root", t.TempDir())
	require.ErrorContains(t, err, "ritual init")
}

func TestVersion(t *testing.T) {
	stdout, _, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "ritual test\n", stdout)
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, ExitOK, ExitCode(nil))
	assert.Equal(t, ExitMissing, ExitCode(&snapshot.MissingDocstringError{Paths: []string{"a"}}))
	assert.Equal(t, ExitFailure, ExitCode(snapshot.ErrWriteFailure))
	assert.Equal(t, ExitFailure, ExitCode(errors.New("usage")))
}

func TestSnapshotSuggestsFocus(t *testing.T) {
	root := writeRepo(t)
	_, _, err := execute(t, "snapshot", "--root", root, "--focus", "pk")
	require.ErrorIs(t, err, snapshot.ErrPathNotFound)
	assert.Contains(t, err.Error(), "did you mean pkg?")
}

func TestSnapshotUsesLanguagePlugins(t *testing.T) {
	root := writeRepo(t)
	_, _, err := execute(t, "init", root)
	require.NoError(t, err)
	plugin := "name: lua\nextensions: [.lua]\nline_comments: [\"--\"]\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, ".ritual", "languages", "lua.yaml"), []byte(plugin), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "pkg", "init.lua"), []byte("-- Boot script.\nprint(1)\n"), 0o644))

	stdout, _, err := execute(t, "snapshot", "--root", root, "--ext", ".lua")
	require.NoError(t, err)
	assert.Contains(t, stdout, "### pkg/init.lua\n\n```text\nBoot script.\n```")
}

func TestSnapshotRejectsNegativeLimits(t *testing.T) {
	root := writeRepo(t)
	out := filepath.Join(t.TempDir(), "s.md")
	for _, flag := range []string{"--max-depth", "--max-doc-lines", "--max-doc-chars"} {
		_, _, err := execute(t, "snapshot", "--root", root, "--out", out, flag+"=-1")
		require.ErrorContains(t, err, flag+" must not be negative")
		assert.Equal(t, ExitFailure, ExitCode(err))
	}
	_, statErr := os.Stat(out)
	assert.True(t, errors.Is(statErr, os.ErrNotExist))
}

func TestSnapshotWarnsWithHistoryPathWhenRecordingFails(t *testing.T) {
	root := writeRepo(t)
	_, _, err := execute(t, "init", root)
	require.NoError(t, err)
	historyPath := filepath.Join(root, ".ritual", "state", "history.log")
	require.NoError(t, os.MkdirAll(historyPath, 0o755))

	_, stderr, err := execute(t, "snapshot", "--root", root)
	require.NoError(t, err)
	assert.Contains(t, stderr, "could not record history")
	assert.Contains(t, stderr, "history="+historyPath)
}
