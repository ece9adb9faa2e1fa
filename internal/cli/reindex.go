package cli

import (
	"fmt"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"axiom/internal/domain"
	"axiom/internal/usecase"
)

var (
	reindexScope  string
	reindexKind   string
	reindexForce  bool
	reindexDryRun bool
)

var reindexCmd = &cobra.Command{
	Use:   "reindex",
	Short: "Re-embed stale artifacts under the active model",
	Long: `Re-embed artifacts whose vectors do not match the active embedding
model. Each re-embedded artifact commits as its own store version, so
an interrupted run keeps its progress.

Examples:
  axiom reindex                    # everything stale
  axiom reindex --dry-run          # count without writing
  axiom reindex --force -k intent  # re-embed all intents regardless`,
	Args: cobra.NoArgs,
	RunE: runReindex,
}

func init() {
	reindexCmd.Flags().StringVar(&reindexScope, "scope", "all", "fields to re-embed: all, content, or context")
	reindexCmd.Flags().StringVarP(&reindexKind, "kind", "k", "", "restrict to one kind")
	reindexCmd.Flags().BoolVar(&reindexForce, "force", false, "re-embed even artifacts that look current")
	reindexCmd.Flags().BoolVar(&reindexDryRun, "dry-run", false, "report candidates without writing")
	rootCmd.AddCommand(reindexCmd)
}

func runReindex(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	var bar *progressbar.ProgressBar
	progress := func(done, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionEnableColorCodes(true),
				progressbar.OptionSetWidth(40),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("[cyan]Reindexing[reset]"),
				progressbar.OptionOnCompletion(func() {
					fmt.Println()
				}),
			)
		}
		bar.Set(done)
	}

	result, err := svc.Reindex(cmd.Context(), usecase.ReindexOptions{
		Scope:    reindexScope,
		Filter:   domain.ListFilter{Kind: reindexKind},
		Force:    reindexForce,
		DryRun:   reindexDryRun,
		Progress: progress,
	})
	if err != nil {
		return err
	}

	if reindexDryRun {
		fmt.Printf("%d artifact(s) would be reindexed under %s\n", result.Candidates, result.Model)
		return nil
	}
	fmt.Printf("Reindexed %d of %d artifact(s) under %s\n", result.Reindexed, result.Candidates, result.Model)
	return nil
}
