package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	pruneKeep      int
	pruneOlderThan time.Duration
	pruneVacuum    bool
)

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Compact historical revisions",
	Long: `Drop old revisions beyond the retention bound. The newest revision of
each artifact always survives, and HEAD is never touched. With
--vacuum, the store file is rewritten afterwards to return freed
space to the filesystem.

Examples:
  axiom prune --keep 3
  axiom prune --older-than 720h --vacuum`,
	Args: cobra.NoArgs,
	RunE: runPrune,
}

func init() {
	pruneCmd.Flags().IntVar(&pruneKeep, "keep", 0, "revisions to keep per artifact (default: storage.keep_versions)")
	pruneCmd.Flags().DurationVar(&pruneOlderThan, "older-than", 0, "only drop revisions older than this")
	pruneCmd.Flags().BoolVar(&pruneVacuum, "vacuum", false, "rewrite the store file after pruning")
	rootCmd.AddCommand(pruneCmd)
}

func runPrune(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	stats, err := svc.Prune(pruneKeep, pruneOlderThan, pruneVacuum)
	if err != nil {
		return err
	}

	fmt.Printf("Pruned %d revision(s) and %d manifest(s)\n", stats.RevisionsRemoved, stats.ManifestsRemoved)
	return nil
}
