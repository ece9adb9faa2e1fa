package cli

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"axiom/internal/domain"
	"axiom/internal/usecase"
)

var (
	searchKind      string
	searchLabels    []string
	searchLimit     int
	searchWeight    float64
	searchNoContext bool
	searchJSON      bool
)

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search artifacts by meaning",
	Long: `Rank artifacts by semantic similarity to the query. Content and
context similarities are blended per search.context_weight. Filters
narrow the candidate set before ranking.

Examples:
  axiom search "what must hold for billing ids"
  axiom search -k invariant -n 5 "ordering guarantees"
  axiom search --context-weight 0.8 "applies during deploys"`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().StringVarP(&searchKind, "kind", "k", "", "filter by kind")
	searchCmd.Flags().StringArrayVarP(&searchLabels, "label", "l", nil, "filter by label key=value (repeatable)")
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 0, "maximum results (default 10)")
	searchCmd.Flags().Float64Var(&searchWeight, "context-weight", 0, "context blend weight for this query, 0 to 1 (default from config)")
	searchCmd.Flags().BoolVar(&searchNoContext, "no-context", false, "rank on content similarity only")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	labels, err := parseLabels(searchLabels, false)
	if err != nil {
		return err
	}

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	if stale := svc.StaleCount(); stale > 0 {
		color.New(color.FgYellow).Fprintf(os.Stderr,
			"Warning: %d artifact(s) were embedded under a different model; run 'axiom reindex'\n", stale)
	}

	opts := usecase.SearchOptions{NoContext: searchNoContext}
	if cmd.Flags().Changed("context-weight") {
		opts.ContextWeight = &searchWeight
	}
	results, err := svc.Search(cmd.Context(), args[0], domain.ListFilter{
		Kind: searchKind, Labels: labels, Limit: searchLimit,
	}, opts)
	if err != nil {
		return err
	}

	if searchJSON {
		return printJSON(results)
	}
	if len(results) == 0 {
		fmt.Println("No results.")
		return nil
	}
	for _, r := range results {
		score := color.New(color.FgCyan).Sprintf("%.4f", r.Score)
		fmt.Printf("%s  ", score)
		printArtifactLine(&r.Artifact)
	}
	return nil
}
