package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show store statistics",
	Args:  cobra.NoArgs,
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	st, err := svc.Stats()
	if err != nil {
		return err
	}
	if statsJSON {
		return printJSON(st)
	}

	fmt.Printf("Store:     %s\n", svc.Store.Path())
	fmt.Printf("Artifacts: %d\n", st.Artifacts)
	fmt.Printf("Head:      %d\n", st.Head)
	fmt.Printf("Revisions: %d\n", st.Revisions)
	fmt.Printf("Manifests: %d\n", st.Manifests)
	fmt.Printf("File size: %d bytes\n", st.FileSize)
	printCountMap("Kinds", st.Kinds)
	printCountMap("Models", st.Models)
	if stale := svc.StaleCount(); stale > 0 {
		fmt.Printf("Stale:     %d artifact(s) need reindexing\n", stale)
	}
	return nil
}

func printCountMap(title string, m map[string]int) {
	if len(m) == 0 {
		return
	}
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-24s %d\n", k, m[k])
	}
}
