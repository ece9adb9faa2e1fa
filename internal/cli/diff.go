package cli

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"axiom/internal/usecase"
)

var (
	diffFrom uint64
	diffTo   uint64
	diffJSON bool
)

var diffCmd = &cobra.Command{
	Use:   "diff <id>",
	Short: "Compare an artifact across store versions",
	Long: `Compare one artifact between two store versions. With no flags, the
latest revision is compared against the one before it.

Examples:
  axiom diff a7k2m9qr4w
  axiom diff a7k2m9qr4w --from 12 --to 40`,
	Args: cobra.ExactArgs(1),
	RunE: runDiff,
}

func init() {
	diffCmd.Flags().Uint64Var(&diffFrom, "from", 0, "older store version (default: previous revision)")
	diffCmd.Flags().Uint64Var(&diffTo, "to", 0, "newer store version (default: HEAD)")
	diffCmd.Flags().BoolVar(&diffJSON, "json", false, "output as JSON")
	rootCmd.AddCommand(diffCmd)
}

func runDiff(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	d, err := svc.Diff(args[0], diffFrom, diffTo)
	if err != nil {
		return err
	}
	if diffJSON {
		return printJSON(d)
	}

	fmt.Printf("%s: version %d -> %d\n", d.ID, d.From, d.To)
	switch {
	case d.Created:
		fmt.Println("(created)")
	case d.Removed:
		fmt.Println("(removed)")
	case !d.Changed():
		fmt.Println("No changes.")
		return nil
	}

	for _, f := range d.Fields {
		fmt.Printf("%s: %q -> %q\n", f.Field, f.From, f.To)
	}
	printDiffLines("content", d.ContentDiff)
	printDiffLines("context", d.ContextDiff)
	return nil
}

func printDiffLines(field string, lines []usecase.DiffLine) {
	if !diffHasChange(lines) {
		return
	}
	fmt.Printf("--- %s\n", field)
	for _, l := range lines {
		switch l.Op {
		case "+":
			color.New(color.FgGreen).Printf("+%s\n", l.Text)
		case "-":
			color.New(color.FgRed).Printf("-%s\n", l.Text)
		default:
			fmt.Printf(" %s\n", l.Text)
		}
	}
}

func diffHasChange(lines []usecase.DiffLine) bool {
	for _, l := range lines {
		if l.Op != " " {
			return true
		}
	}
	return false
}
