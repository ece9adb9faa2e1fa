package cli

import (
	"github.com/spf13/cobra"

	"axiom/internal/mcp"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Serve the store over the Model Context Protocol",
	Long: `Run an MCP server on stdin/stdout exposing the artifact store to AI
agents. Register it with a client as:

  { "command": "axiom", "args": ["mcp", "-d", "/path/to/project"] }`,
	Args: cobra.NoArgs,
	RunE: runMCP,
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}

func runMCP(cmd *cobra.Command, args []string) error {
	svc, err := openService()
	if err != nil {
		return err
	}
	defer svc.Close()

	return mcp.ServeStdio(mcp.New(svc))
}
