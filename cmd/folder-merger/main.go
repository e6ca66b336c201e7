package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Dubrzr/folder-merger/internal/cli"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	rootCmd := &cobra.Command{
		Use:   "folder-merger",
		Short: "Merge two folders into a third with resumable checkpoints",
		Long: `folder-merger merges two directory trees into a third, reconciling
overlapping paths by content hash. Conflicting files are resolved
interactively; all progress is checkpointed so an interrupted merge can
be resumed without redoing completed work.`,
		Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cli.AddGlobalFlags(rootCmd)

	rootCmd.AddCommand(cli.NewMergeCommand())
	rootCmd.AddCommand(cli.NewConfigCommand())
	rootCmd.AddCommand(cli.NewVersionCommand())

	return rootCmd.Execute()
}
