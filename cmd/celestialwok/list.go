package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/hammamikhairi/celestialwok/internal/display"
)

func runList(cmd *cobra.Command, opts *options, args []string) error {
	cfg, secrets, err := opts.load(cmd)
	if err != nil {
		return err
	}
	log, cleanup := openLogger(cfg)
	defer cleanup()

	catalog, _ := recipes(cfg, newGemini(cmd.Context(), cfg, secrets, log), log)

	ctx := cmd.Context()
	var query string
	if len(args) > 0 {
		query = args[0]
	}

	list, err := catalog.Search(ctx, query)
	if err != nil {
		return fmt.Errorf("loading catalog: %w", err)
	}
	for _, line := range display.CatalogLines(list) {
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func runConfig(cmd *cobra.Command, opts *options) error {
	cfg, secrets, err := opts.load(cmd)
	if err != nil {
		return err
	}
	raw, err := cfg.Encode()
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s\n", raw)
	fmt.Fprintf(out, "# GEMINI_API_KEY set: %v\n", secrets.Gemini() != "")
	fmt.Fprintf(out, "# AZURE_SPEECH_KEY set: %v\n", secrets.AzureKey != "")
	fmt.Fprintf(out, "# AZURE_SPEECH_REGION: %q\n", secrets.AzureRegion)
	return nil
}
