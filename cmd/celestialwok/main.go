// Celestial Wok is a guided, narrated cooking companion for Chinese
// dishes.
//
// Usage:
//
//	celestialwok [cook] [recipe] [flags]
//	celestialwok list [query]
//	celestialwok config
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	GitCommit = "unknown"
)

func main() {
	var opts options

	rootCmd := &cobra.Command{
		Use:   "celestialwok",
		Short: "Celestial Wok - a narrated, step-by-step Chinese cooking guide",
		Long: `Celestial Wok walks you through a dish: an introduction, the ingredients,
each cooking step read aloud with an illustration, and finally a photo of
your plate graded by the chef.`,
		Version:       fmt.Sprintf("%s (commit: %s)", Version, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCook(cmd, &opts, args)
		},
	}
	opts.bind(rootCmd)

	cookCmd := &cobra.Command{
		Use:   "cook [recipe]",
		Short: "Start an interactive cooking session",
		Long:  "Start an interactive cooking session. Without a recipe name you pick one from the catalog.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCook(cmd, &opts, args)
		},
	}

	listCmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List or search the recipe catalog",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runList(cmd, &opts, args)
		},
	}

	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConfig(cmd, &opts)
		},
	}

	rootCmd.AddCommand(cookCmd, listCmd, configCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
