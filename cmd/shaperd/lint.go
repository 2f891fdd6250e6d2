package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"lanekit/shaperd/pkg/policy"
)

var lintFlags struct {
	file   string
	format string
}

var lintCmd = &cobra.Command{
	Use:   "lint",
	Short: "Validate a policy catalog",
	Long: `Validate a policy catalog for syntax and structural errors.

The lint command parses the catalog and checks every descriptor:
  - YAML syntax and entry structure
  - Known policy kinds (none, cake, netem, htb)
  - Required attributes per kind (cake bandwidth, htb class rates, ...)
  - Duplicate or empty policy names

Examples:
  # Lint a catalog
  shaperd lint --file policies.yaml

  # JSON output for CI
  shaperd lint --file policies.yaml --format json`,
	RunE: lintCatalog,
}

func init() {
	rootCmd.AddCommand(lintCmd)

	lintCmd.Flags().StringVarP(&lintFlags.file, "file", "f", "", "catalog file to validate")
	lintCmd.Flags().StringVar(&lintFlags.format, "format", "text", "output format: text, json")
}

func lintCatalog(cmd *cobra.Command, args []string) error {
	if lintFlags.file == "" {
		return fmt.Errorf("--file must be specified")
	}

	catalog, err := policy.Load(lintFlags.file)

	if lintFlags.format == "json" {
		result := map[string]any{"file": lintFlags.file, "valid": err == nil}
		if err != nil {
			result["error"] = err.Error()
		} else {
			result["policies"] = catalog.List()
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if encErr := enc.Encode(result); encErr != nil {
			return encErr
		}
		if err != nil {
			os.Exit(1)
		}
		return nil
	}

	if err != nil {
		return fmt.Errorf("catalog invalid: %w", err)
	}

	fmt.Printf("✓ %s is valid (%d policies)\n", lintFlags.file, catalog.Len())
	for _, desc := range catalog.All() {
		fmt.Printf("  - %s (%s)\n", desc.Name, desc.Kind)
	}
	return nil
}
