package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aretw0/espalier/internal/presentation/graph"
	"github.com/aretw0/espalier/pkg/domain"
	"github.com/aretw0/espalier/pkg/schema"
	"github.com/spf13/cobra"
)

// graphCmd represents the graph command
var graphCmd = &cobra.Command{
	Use:   "graph <document.json>",
	Short: "Export the document graph visualization",
	Long:  `Reads a document snapshot and outputs a Mermaid diagram (graph TD) of its nodes and connections.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		data, err := os.ReadFile(args[0])
		if err != nil {
			fmt.Printf("Error reading document: %v\n", err)
			os.Exit(1)
		}

		var snap domain.Snapshot
		if err := json.Unmarshal(data, &snap); err != nil {
			fmt.Printf("Error parsing document: %v\n", err)
			os.Exit(1)
		}

		var cat *schema.Catalog
		if catalogPath, _ := cmd.Flags().GetString("catalog"); catalogPath != "" {
			cat, err = schema.LoadCatalog(catalogPath)
			if err != nil {
				fmt.Printf("Error loading catalog: %v\n", err)
				os.Exit(1)
			}
		}

		// Generate and print Mermaid graph
		output := graph.GenerateMermaid(&snap, cat, nil)
		fmt.Print(output)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
}
