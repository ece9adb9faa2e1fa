// Package cli implements the axiom command tree.
package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"axiom/config"
	"axiom/internal/usecase"
)

var (
	cfgFile string
	cfg     *config.Config
	rootDir string
)

var rootCmd = &cobra.Command{
	Use:   "axiom",
	Short: "Axiom - store and retrieve atomic truth statements about your system",
	Long: `Axiom keeps small, versioned statements of fact (intents, invariants,
contracts) in an embedded store and retrieves them by meaning, not just
by keyword. Every mutation is a new store version; nothing is ever
rewritten in place.

Example usage:
  axiom init --intent-flow                 # Create .axiom/ with starter kinds
  axiom add -k invariant "IDs are stable"  # Store a statement
  axiom search "identifier stability"      # Retrieve by meaning
  axiom diff <id>                          # See what changed last`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error

		if rootDir == "" {
			rootDir, err = os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to get working directory: %w", err)
			}
		}

		if cfgFile != "" {
			cfg, err = config.Load(cfgFile)
		} else {
			cfg, err = config.LoadFromDir(rootDir)
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		return nil
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./.axiom/config.yaml)")
	rootCmd.PersistentFlags().StringVarP(&rootDir, "dir", "d", "", "project directory (default is current directory)")
}

func GetConfig() *config.Config {
	return cfg
}

func GetRootDir() string {
	return rootDir
}

// openService wires a Service for the resolved project directory.
func openService() (*usecase.Service, error) {
	svc, err := usecase.NewServiceWithConfig(rootDir, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}
	return svc, nil
}

// parseLabels parses repeated key=value flags. allowEmpty permits
// "key=" entries, used by update to remove a label.
func parseLabels(pairs []string, allowEmpty bool) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	labels := make(map[string]string, len(pairs))
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, fmt.Errorf("invalid label %q: expected key=value", p)
		}
		if v == "" && !allowEmpty {
			return nil, fmt.Errorf("invalid label %q: value cannot be empty", p)
		}
		labels[k] = v
	}
	return labels, nil
}
