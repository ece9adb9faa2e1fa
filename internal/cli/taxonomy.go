package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"axiom/internal/registry"
	"axiom/internal/usecase"
)

var kindCmd = &cobra.Command{
	Use:   "kind",
	Short: "Manage the kind registry",
	Long: `Manage registered artifact kinds. Every artifact must use a
registered kind; removing a kind never touches stored artifacts.`,
}

var labelCmd = &cobra.Command{
	Use:   "label",
	Short: "Manage the label-key registry",
	Long: `Manage registered label keys. Labels on artifacts must use
registered keys; removing a key never touches stored artifacts.`,
}

func init() {
	kindCmd.AddCommand(
		taxonomyAddCmd("kind", func(s *usecase.Service) *registry.Taxonomy { return s.Kinds }),
		taxonomyListCmd("kind", func(s *usecase.Service) *registry.Taxonomy { return s.Kinds }),
		taxonomyShowCmd("kind", func(s *usecase.Service) *registry.Taxonomy { return s.Kinds }),
		taxonomyRmCmd("kind", func(s *usecase.Service) *registry.Taxonomy { return s.Kinds }),
	)
	labelCmd.AddCommand(
		taxonomyAddCmd("label", func(s *usecase.Service) *registry.Taxonomy { return s.Labels }),
		taxonomyListCmd("label", func(s *usecase.Service) *registry.Taxonomy { return s.Labels }),
		taxonomyShowCmd("label", func(s *usecase.Service) *registry.Taxonomy { return s.Labels }),
		taxonomyRmCmd("label", func(s *usecase.Service) *registry.Taxonomy { return s.Labels }),
	)
	rootCmd.AddCommand(kindCmd, labelCmd)
}

type taxonomyOf func(*usecase.Service) *registry.Taxonomy

func taxonomyAddCmd(noun string, pick taxonomyOf) *cobra.Command {
	return &cobra.Command{
		Use:   "add <slug> [description...]",
		Short: fmt.Sprintf("Register a %s", noun),
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			slug, err := pick(svc).Add(args[0], strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			fmt.Printf("Registered %s %q\n", noun, slug)
			return nil
		},
	}
}

func taxonomyListCmd(noun string, pick taxonomyOf) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: fmt.Sprintf("List registered %ss", noun),
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			defs := pick(svc).List()
			if len(defs) == 0 {
				fmt.Printf("No %ss registered.\n", noun)
				return nil
			}
			for _, d := range defs {
				fmt.Printf("%-16s %s\n", d.Slug, d.Description)
			}
			return nil
		},
	}
}

func taxonomyShowCmd(noun string, pick taxonomyOf) *cobra.Command {
	return &cobra.Command{
		Use:   "show <slug>",
		Short: fmt.Sprintf("Show one registered %s", noun),
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			d, err := pick(svc).Get(args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s: %s\n", noun, d.Slug)
			if d.Description != "" {
				fmt.Printf("description: %s\n", d.Description)
			}
			return nil
		},
	}
}

func taxonomyRmCmd(noun string, pick taxonomyOf) *cobra.Command {
	var force bool
	cmd := &cobra.Command{
		Use:   "rm <slug>",
		Short: fmt.Sprintf("Unregister a %s", noun),
		Long: fmt.Sprintf(`Unregister a %s. Refused while artifacts still reference it unless
--force is given; forced removal leaves those artifacts in place but
they stop matching %s-filtered queries.`, noun, noun),
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := openService()
			if err != nil {
				return err
			}
			defer svc.Close()

			if err := pick(svc).Remove(args[0], force); err != nil {
				return err
			}
			fmt.Printf("Unregistered %s %q\n", noun, args[0])
			return nil
		},
	}
	cmd.Flags().BoolVar(&force, "force", false, "remove even while artifacts reference it")
	return cmd
}
