package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove an artifact",
	Long: `Remove an artifact from the live set. The removal is itself a store
version; earlier revisions stay readable with get --at until pruned.`,
	Args: cobra.ExactArgs(1),
	RunE: runRm,
}

func init() {
	rootCmd.AddCommand(rmCmd)
}

func runRm(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	version, err := svc.Remove(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Removed %s (version %d)\n", args[0], version)
	return nil
}
