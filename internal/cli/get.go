package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"axiom/internal/domain"
)

var (
	getVersion uint64
	getJSON    bool
)

var getCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show an artifact",
	Long: `Show an artifact by id. With --at, shows the artifact as it was at a
historical store version.`,
	Args: cobra.ExactArgs(1),
	RunE: runGet,
}

func init() {
	getCmd.Flags().Uint64Var(&getVersion, "at", 0, "read at a historical store version")
	getCmd.Flags().BoolVar(&getJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(getCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	var a *domain.Artifact
	if getVersion > 0 {
		a, err = svc.GetAt(args[0], getVersion)
	} else {
		a, err = svc.Get(args[0])
	}
	if err != nil {
		return err
	}

	if getJSON {
		return printJSON(a)
	}
	printArtifact(a)
	return nil
}

func printArtifact(a *domain.Artifact) {
	heading := color.New(color.Bold)
	heading.Printf("%s", a.ID)
	if a.Name != "" {
		fmt.Printf("  %s", a.Name)
	}
	fmt.Println()
	fmt.Printf("  kind:    %s\n", a.Kind)
	fmt.Printf("  format:  %s\n", a.Format)
	if len(a.Metadata) > 0 {
		keys := make([]string, 0, len(a.Metadata))
		for k := range a.Metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Printf("  labels: ")
		for _, k := range keys {
			fmt.Printf(" %s=%s", k, a.Metadata[k])
		}
		fmt.Println()
	}
	if a.EmbeddingModel != "" {
		fmt.Printf("  model:   %s\n", a.EmbeddingModel)
	}
	fmt.Printf("  created: %s\n", a.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  updated: %s\n", a.UpdatedAt.Format("2006-01-02 15:04:05"))
	if a.Context != "" {
		fmt.Println()
		color.New(color.Faint).Println(a.Context)
	}
	fmt.Println()
	fmt.Println(a.Content)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
