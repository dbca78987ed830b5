package cli

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/kingrea/ritual/internal/config"
	"github.com/kingrea/ritual/internal/logbook"
	"github.com/kingrea/ritual/internal/logging"
	"github.com/kingrea/ritual/internal/snapshot"
	"github.com/kingrea/ritual/internal/tui"
	"github.com/kingrea/ritual/plugins"
)

type snapshotOptions struct {
	root          string
	focus         string
	out           string
	maxDepth      int
	maxDocLines   int
	maxDocChars   int
	excludeDirs   []string
	excludeGlobs  []string
	exts          []string
	missingOnly   bool
	failOnMissing bool
	view          bool
}

// viewReport is swapped out in tests.
var viewReport = tui.Run

func newSnapshotCmd(g *globalOptions) *cobra.Command {
	o := &snapshotOptions{}
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Write a tree listing and leading docs of the repository",
		Long: `Write a markdown snapshot of a repository: a tree listing of the whole root,
followed by the leading documentation comment of each recognized source file
under the focus directory.

Exit status is 2 when --fail-on-missing is set and any file lacks leading docs.`,
		Example: `  ritual snapshot
  ritual snapshot --focus src/graph --out scratch/graph_snapshot.md
  ritual snapshot --missing-only --fail-on-missing`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, g, o)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&o.root, "root", ".", "Repository root")
	flags.StringVar(&o.focus, "focus", ".", "Folder under root to scan for leading docs")
	flags.StringVar(&o.out, "out", "", "Write the report to this file instead of stdout")
	flags.IntVar(&o.maxDepth, "max-depth", 0, "Tree depth (default from config: 6)")
	flags.IntVar(&o.maxDocLines, "max-doc-lines", 0, "Max documentation lines per file (default from config: 60)")
	flags.IntVar(&o.maxDocChars, "max-doc-chars", 0, "Max documentation characters per file (default from config: 4000)")
	flags.StringArrayVar(&o.excludeDirs, "exclude-dir", nil, "Add an excluded directory name (repeatable)")
	flags.StringArrayVar(&o.excludeGlobs, "exclude-glob", nil, "Add an excluded glob (repeatable)")
	flags.StringArrayVar(&o.exts, "ext", nil, "Only scan these extensions (repeatable, e.g. --ext .py)")
	flags.BoolVar(&o.missingOnly, "missing-only", false, "Only list files missing leading docs")
	flags.BoolVar(&o.failOnMissing, "fail-on-missing", false, "Exit non-zero if any file is missing leading docs")
	flags.BoolVar(&o.view, "view", false, "Open the report in a pager after writing it")
	return cmd
}

func runSnapshot(cmd *cobra.Command, g *globalOptions, o *snapshotOptions) error {
	if err := o.validate(); err != nil {
		return err
	}
	cfg, err := config.NewConfig(o.root)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg, logging.Options{Verbose: g.verbose, Stderr: cmd.ErrOrStderr()})
	if err != nil {
		return err
	}
	defer logger.Close()
	runID := uuid.NewString()
	log := logger.With("run_id", runID)

	pluginLangs, err := plugins.Apply(cfg)
	if err != nil {
		return err
	}
	for _, lang := range pluginLangs {
		log.WithField("plugin", lang.Path).Debugf("loaded language %s", lang.Language.Name)
	}

	reg, err := cfg.Registry()
	if err != nil {
		return err
	}
	if reg, err = reg.Restrict(o.exts); err != nil {
		return err
	}

	defaults := cfg.Snapshot()
	opts := snapshot.RunOptions{
		Root:          o.root,
		Focus:         o.focus,
		Out:           o.out,
		MaxDepth:      pick(o.maxDepth, defaults.MaxDepth),
		MaxDocLines:   pick(o.maxDocLines, defaults.MaxDocLines),
		MaxDocChars:   pick(o.maxDocChars, defaults.MaxDocChars),
		ExcludeDirs:   append(append([]string(nil), defaults.ExcludeDirs...), o.excludeDirs...),
		ExcludeGlobs:  append(append([]string(nil), defaults.ExcludeGlobs...), o.excludeGlobs...),
		MissingOnly:   o.missingOnly,
		FailOnMissing: o.failOnMissing,
		Registry:      reg,
		Stdout:        cmd.OutOrStdout(),
	}
	if o.view && o.out == "" {
		opts.Stdout = io.Discard
	}
	log.WithField("extensions", reg.Extensions()).Debugf("scanning %s (focus %s)", cfg.ProjectDir, o.focus)

	res, runErr := snapshot.Run(cmd.Context(), opts)
	recordRun(cfg, log, runID, o, res, runErr)
	if res == nil {
		if errors.Is(runErr, snapshot.ErrPathNotFound) {
			if hints := suggestFocus(cfg.ProjectDir, o.focus, opts.ExcludeDirs); len(hints) > 0 {
				runErr = fmt.Errorf("%w (did you mean %s?)", runErr, strings.Join(hints, ", "))
			}
		}
		return runErr
	}

	log.WithField("scanned", res.Report.Scanned()).
		WithField("missing", len(res.Report.Missing)).
		Debug("snapshot complete")
	if res.OutPath != "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.OutPath)
	}
	fmt.Fprintln(cmd.ErrOrStderr(), renderSummary(res))

	if o.view {
		title := "snapshot"
		if res.OutPath != "" {
			title = filepath.Base(res.OutPath)
		}
		if err := viewReport(title, res.Output); err != nil {
			log.WithError(err).Warn("could not open pager")
		}
	}
	return runErr
}

// recordRun appends one line to the project history. Only initialised
// projects keep history.
func recordRun(cfg *config.Config, log *logging.Logger, runID string, o *snapshotOptions, res *snapshot.Result, runErr error) {
	if !cfg.Initialized() {
		return
	}
	book, err := logbook.New(cfg.HistoryPath())
	if err != nil {
		log.WithError(err).Warn("could not open history")
		return
	}
	switch {
	case res == nil:
		err = book.Error("snapshot %s root=%s focus=%s failed: %v", runID, o.root, o.focus, runErr)
	case errors.Is(runErr, snapshot.ErrMissingDocstring):
		err = book.Warn("snapshot %s root=%s focus=%s scanned=%d missing=%d out=%s", runID, o.root, o.focus,
			res.Report.Scanned(), len(res.Report.Missing), outLabel(res))
	default:
		err = book.Info("snapshot %s root=%s focus=%s scanned=%d missing=%d out=%s", runID, o.root, o.focus,
			res.Report.Scanned(), len(res.Report.Missing), outLabel(res))
	}
	if err != nil {
		log.WithError(err).WithField("history", book.Path()).Warn("could not record history")
	}
}

func outLabel(res *snapshot.Result) string {
	if res.OutPath == "" {
		return "stdout"
	}
	return res.OutPath
}

func (o *snapshotOptions) validate() error {
	limits := []struct {
		flag  string
		value int
	}{
		{"--max-depth", o.maxDepth},
		{"--max-doc-lines", o.maxDocLines},
		{"--max-doc-chars", o.maxDocChars},
	}
	for _, l := range limits {
		if l.value < 0 {
			return fmt.Errorf("%s must not be negative, got %d", l.flag, l.value)
		}
	}
	return nil
}

// pick prefers an explicit flag; zero means "use the config value".
func pick(flagValue, configValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	return configValue
}
