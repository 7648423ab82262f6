package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var docsCmd = &cobra.Command{
	Use:   "docs",
	Short: "Manage stored documents",
	Long:  `List, inspect, and remove documents stored in .espalier/documents.`,
}

var docsLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List all stored documents",
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		docs, err := store.List(cmd.Context())
		if err != nil {
			fmt.Printf("Error listing documents: %v\n", err)
			os.Exit(1)
		}

		if len(docs) == 0 {
			fmt.Println("No documents found.")
			return
		}

		fmt.Println("Documents:")
		for _, d := range docs {
			fmt.Println("- " + d)
		}
	},
}

var docsInspectCmd = &cobra.Command{
	Use:   "inspect <doc-id>",
	Short: "Inspect a document snapshot",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		docID := args[0]
		store := getStore(cmd)

		snap, err := store.Load(cmd.Context(), docID)
		if err != nil {
			fmt.Printf("Error loading document '%s': %v\n", docID, err)
			os.Exit(1)
		}

		// Pretty print JSON
		data, err := json.MarshalIndent(snap, "", "  ")
		if err != nil {
			fmt.Printf("Error marshaling snapshot: %v\n", err)
			os.Exit(1)
		}

		fmt.Println(string(data))
	},
}

var docsRmCmd = &cobra.Command{
	Use:   "rm <doc-id>...",
	Short: "Remove one or more documents",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := getStore(cmd)
		hasError := false

		for _, docID := range args {
			if err := store.Delete(cmd.Context(), docID); err != nil {
				fmt.Printf("Error removing '%s': %v\n", docID, err)
				hasError = true
			} else {
				fmt.Printf("Removed document '%s'\n", docID)
			}
		}

		if hasError {
			os.Exit(1)
		}
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.AddCommand(docsLsCmd)
	docsCmd.AddCommand(docsInspectCmd)
	docsCmd.AddCommand(docsRmCmd)
}
