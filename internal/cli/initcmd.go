package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"axiom/config"
	"axiom/internal/usecase"
)

var (
	initIntentFlow bool
	initForce      bool
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize an axiom project in the current directory",
	Long: `Create the .axiom directory with a default configuration.

With --intent-flow, a starter set of kinds is registered: intent,
invariant, contract, algorithm, evaluation, pace, and monitor.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().BoolVar(&initIntentFlow, "intent-flow", false, "register the intent-flow starter kinds")
	initCmd.Flags().BoolVar(&initForce, "force", false, "overwrite an existing configuration")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, args []string) error {
	newCfg, err := usecase.Init(rootDir, initIntentFlow, initForce)
	if err != nil {
		return err
	}

	fmt.Printf("Initialized axiom project at %s\n", config.Path(rootDir))
	if len(newCfg.Kinds) > 0 {
		fmt.Println("Registered kinds:")
		for _, k := range newCfg.Kinds {
			fmt.Printf("  %-12s %s\n", k.Slug, k.Description)
		}
	} else {
		fmt.Println("No kinds registered yet; add one with: axiom kind add <slug>")
	}
	return nil
}
