package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"axiom/internal/usecase"
)

var (
	updContent string
	updFile    string
	updContext string
	updKind    string
	updName    string
	updFormat  string
	updLabels  []string
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update an artifact",
	Long: `Update fields of an existing artifact. Only given flags change; each
update is one new store version. A label with an empty value (key=)
removes that label; --context "" clears the context.

Examples:
  axiom update a7k2m9qr4w --content "revised statement"
  axiom update a7k2m9qr4w -l status=approved -l draft=
  axiom update a7k2m9qr4w --context ""`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

func init() {
	updateCmd.Flags().StringVar(&updContent, "content", "", "new content")
	updateCmd.Flags().StringVar(&updFile, "file", "", "read new content from a file")
	updateCmd.Flags().StringVar(&updContext, "context", "", "new retrieval context (empty clears)")
	updateCmd.Flags().StringVarP(&updKind, "kind", "k", "", "new kind")
	updateCmd.Flags().StringVarP(&updName, "name", "n", "", "new name")
	updateCmd.Flags().StringVarP(&updFormat, "format", "f", "", "new content format")
	updateCmd.Flags().StringArrayVarP(&updLabels, "label", "l", nil, "label as key=value; key= removes (repeatable)")
	rootCmd.AddCommand(updateCmd)
}

func runUpdate(cmd *cobra.Command, args []string) error {
	var patch usecase.UpdatePatch

	if updFile != "" {
		data, err := os.ReadFile(updFile)
		if err != nil {
			return fmt.Errorf("read content file: %w", err)
		}
		content := string(data)
		patch.Content = &content
	} else if cmd.Flags().Changed("content") {
		patch.Content = &updContent
	}
	if cmd.Flags().Changed("context") {
		patch.Context = &updContext
	}
	if cmd.Flags().Changed("kind") {
		patch.Kind = &updKind
	}
	if cmd.Flags().Changed("name") {
		patch.Name = &updName
	}
	if cmd.Flags().Changed("format") {
		patch.Format = &updFormat
	}

	labels, err := parseLabels(updLabels, true)
	if err != nil {
		return err
	}
	patch.Labels = labels

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	a, version, err := svc.Update(cmd.Context(), args[0], patch)
	if err != nil {
		return err
	}

	fmt.Printf("Updated %s (version %d)\n", a.ID, version)
	return nil
}
