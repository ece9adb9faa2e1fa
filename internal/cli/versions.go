package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var (
	versionsLimit int
	versionsJSON  bool
	historyLimit  int
	historyJSON   bool
)

var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "List store versions",
	Long: `List store versions, newest first. Pruned versions no longer appear;
HEAD always does.`,
	Args: cobra.NoArgs,
	RunE: runVersions,
}

var historyCmd = &cobra.Command{
	Use:   "history <id>",
	Short: "Show one artifact's revisions",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	versionsCmd.Flags().IntVar(&versionsLimit, "limit", 20, "maximum versions shown")
	versionsCmd.Flags().BoolVar(&versionsJSON, "json", false, "output as JSON")
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "maximum revisions shown")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(versionsCmd, historyCmd)
}

func runVersions(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	infos, err := svc.Versions(versionsLimit)
	if err != nil {
		return err
	}
	if versionsJSON {
		return printJSON(infos)
	}
	if len(infos) == 0 {
		fmt.Println("Store is empty.")
		return nil
	}
	for _, v := range infos {
		fmt.Printf("%6d  %s  %-7s %s\n",
			v.Version, v.Timestamp.Format("2006-01-02 15:04:05"), v.Op, strings.Join(v.IDs, ", "))
	}
	return nil
}

func runHistory(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	infos, err := svc.History(args[0], historyLimit)
	if err != nil {
		return err
	}
	if historyJSON {
		return printJSON(infos)
	}
	for _, v := range infos {
		fmt.Printf("%6d  %s  %s\n", v.Version, v.Timestamp.Format("2006-01-02 15:04:05"), v.Op)
	}
	return nil
}
