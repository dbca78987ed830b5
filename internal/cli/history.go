package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kingrea/ritual/internal/config"
	"github.com/kingrea/ritual/internal/logbook"
)

func newHistoryCmd() *cobra.Command {
	var (
		root  string
		limit int
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent snapshot runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.NewConfig(root)
			if err != nil {
				return err
			}
			if !cfg.Initialized() {
				return fmt.Errorf("no %s directory in %s; run `ritual init` first", config.RitualDir, cfg.ProjectDir)
			}
			book, err := logbook.New(cfg.HistoryPath())
			if err != nil {
				return err
			}
			lines, total, err := book.Tail(limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if total == 0 {
				fmt.Fprintln(out, "No runs recorded yet.")
				return nil
			}
			for _, line := range lines {
				fmt.Fprintln(out, line)
			}
			if total > len(lines) {
				fmt.Fprintf(out, "(%d of %d runs shown)\n", len(lines), total)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&root, "root", ".", "Project root")
	cmd.Flags().IntVarP(&limit, "lines", "n", 20, "Number of runs to show")
	return cmd
}
