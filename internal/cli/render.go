package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"axiom/internal/domain"
)

var (
	renderMatch string
	renderKind  string
)

var renderCmd = &cobra.Command{
	Use:   "render <outdir>",
	Short: "Export artifacts as files",
	Long: `Write live artifacts into a directory tree, one file per artifact
under its kind. File extensions follow the content format. A
doublestar pattern filters by kind-relative path.

Examples:
  axiom render ./docs
  axiom render ./docs --match 'contract/**'
  axiom render ./docs --match '**/*billing*'`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVar(&renderMatch, "match", "", "doublestar pattern over kind-relative paths")
	renderCmd.Flags().StringVarP(&renderKind, "kind", "k", "", "restrict to one kind")
	rootCmd.AddCommand(renderCmd)
}

func runRender(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	result, err := svc.Render(args[0], renderMatch, domain.ListFilter{Kind: renderKind})
	if err != nil {
		return err
	}

	for _, p := range result.Paths {
		fmt.Println(p)
	}
	fmt.Printf("Rendered %d file(s) to %s\n", len(result.Paths), args[0])
	return nil
}
