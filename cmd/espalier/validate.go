package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/espalier/internal/validator"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/schema"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate <document.json>",
	Short: "Check a document for consistency",
	Long:  `Verifies a document snapshot: duplicate ids, dangling connection endpoints, and, when a catalog is provided, node types, ports and configuration values.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := runValidate(cmd, args[0]); err != nil {
			fmt.Printf("Validation failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println("Document is valid! ✅")
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read document: %w", err)
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("failed to parse document: %w", err)
	}

	var cat *schema.Catalog
	if catalogPath, _ := cmd.Flags().GetString("catalog"); catalogPath != "" {
		cat, err = schema.LoadCatalog(catalogPath)
		if err != nil {
			return fmt.Errorf("failed to load catalog: %w", err)
		}
	}

	return validator.ValidateSnapshot(&snap, cat)
}
