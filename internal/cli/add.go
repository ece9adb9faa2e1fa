package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"axiom/internal/usecase"
)

var (
	addKind    string
	addName    string
	addContext string
	addFormat  string
	addLabels  []string
	addFile    string
)

var addCmd = &cobra.Command{
	Use:   "add [content]",
	Short: "Store a new artifact",
	Long: `Store a new artifact. Content comes from the argument, from --file,
or from stdin when the argument is "-".

Examples:
  axiom add -k invariant "Artifact IDs never change after creation"
  axiom add -k contract --file api.yaml --format openapi -n "billing API"
  cat notes.md | axiom add -k intent --format markdown -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAdd,
}

func init() {
	addCmd.Flags().StringVarP(&addKind, "kind", "k", "", "artifact kind (required)")
	addCmd.Flags().StringVarP(&addName, "name", "n", "", "human-readable name")
	addCmd.Flags().StringVar(&addContext, "context", "", "retrieval context embedded alongside the content")
	addCmd.Flags().StringVarP(&addFormat, "format", "f", "", "content format: markdown, yaml, json, openapi, text")
	addCmd.Flags().StringArrayVarP(&addLabels, "label", "l", nil, "label as key=value (repeatable)")
	addCmd.Flags().StringVar(&addFile, "file", "", "read content from a file")
	addCmd.MarkFlagRequired("kind")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	content, err := readContent(args, addFile)
	if err != nil {
		return err
	}
	labels, err := parseLabels(addLabels, false)
	if err != nil {
		return err
	}

	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	a, version, err := svc.Add(cmd.Context(), usecase.AddParams{
		Kind:    addKind,
		Name:    addName,
		Content: content,
		Context: addContext,
		Format:  addFormat,
		Labels:  labels,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Added %s (version %d)\n", a.ID, version)
	return nil
}

func readContent(args []string, file string) (string, error) {
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read content file: %w", err)
		}
		return string(data), nil
	}
	if len(args) == 1 && args[0] != "-" {
		return args[0], nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
