package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a node graph document server",
	Long:  `Espalier manages node-and-wire canvas documents: nodes, connections, undo history, and persistence. It serves documents to visual editor frontends over HTTP and MCP.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("dir", ".", "Directory containing the Espalier workspace")
	rootCmd.PersistentFlags().String("catalog", "", "Path to a node type catalog YAML (enables schema validation)")
}
