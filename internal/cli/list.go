package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"axiom/internal/domain"
)

var (
	listKind   string
	listLabels []string
	listLimit  int
	listAt     uint64
	listJSON   bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List artifacts",
	Long: `List live artifacts in creation order. Filters combine with AND.

Examples:
  axiom list --kind invariant
  axiom list -l team=billing -l status=approved
  axiom list --at 42         # the live set as of store version 42`,
	Args: cobra.NoArgs,
	RunE: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listKind, "kind", "k", "", "filter by kind")
	listCmd.Flags().StringArrayVarP(&listLabels, "label", "l", nil, "filter by label key=value (repeatable)")
	listCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum results (default 100)")
	listCmd.Flags().Uint64Var(&listAt, "at", 0, "list at a historical store version")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	labels, err := parseLabels(listLabels, false)
	if err != nil {
		return err
	}
	filter := domain.ListFilter{Kind: listKind, Labels: labels, Limit: listLimit}

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	var artifacts []*domain.Artifact
	if listAt > 0 {
		artifacts, err = svc.ListAt(listAt, filter)
	} else {
		artifacts, err = svc.List(filter)
	}
	if err != nil {
		return err
	}

	if listJSON {
		return printJSON(artifacts)
	}
	if len(artifacts) == 0 {
		fmt.Println("No artifacts found.")
		return nil
	}
	for _, a := range artifacts {
		printArtifactLine(a)
	}
	return nil
}

func printArtifactLine(a *domain.Artifact) {
	id := color.New(color.Bold).Sprint(a.ID)
	name := a.Name
	if name == "" {
		name = firstLine(a.Content)
	}
	fmt.Printf("%s  %-12s %s\n", id, a.Kind, name)
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' {
			s = s[:i]
			break
		}
	}
	if len(s) > 72 {
		s = s[:72] + "..."
	}
	return s
}
