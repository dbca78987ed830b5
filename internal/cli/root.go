// Package cli wires the ritual commands together with cobra.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/ritual/internal/snapshot"
)

// Exit codes returned by the ritual binary.
const (
	ExitOK      = 0
	ExitFailure = 1
	ExitMissing = 2
)

type globalOptions struct {
	verbose bool
}

// NewRootCmd builds a fresh command tree. Each call returns independent flag
// state, which keeps tests isolated.
func NewRootCmd(version string) *cobra.Command {
	g := &globalOptions{}
	root := &cobra.Command{
		Use:   "ritual",
		Short: "ritual - repository snapshots for coding-assistant sessions",
		Long: `ritual captures a compact picture of a repository: a tree listing and the
leading documentation comment of every recognized source file.

Run "ritual init" in a project to keep a config file and run history under .ritual/.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Enable verbose output")

	root.AddCommand(newSnapshotCmd(g))
	root.AddCommand(newInitCmd())
	root.AddCommand(newHistoryCmd())
	root.AddCommand(newVersionCmd(version))
	return root
}

// Execute runs the root command and reports errors on stderr.
func Execute(ctx context.Context, version string) error {
	root := NewRootCmd(version)
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		return err
	}
	return nil
}

// ExitCode maps an Execute error to the process exit status.
func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, snapshot.ErrMissingDocstring):
		return ExitMissing
	default:
		return ExitFailure
	}
}

func newVersionCmd(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the ritual version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ritual %s\n", version)
		},
	}
}
