package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/aretw0/espalier/internal/presentation/tui"
	"github.com/aretw0/espalier/pkg/schema"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// catalogCmd represents the catalog command
var catalogCmd = &cobra.Command{
	Use:   "catalog <catalog.yaml>",
	Short: "Show the node type palette",
	Long:  `Reads a node type catalog and prints its types, configuration fields and ports. Renders styled output when attached to a terminal.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cat, err := schema.LoadCatalog(args[0])
		if err != nil {
			fmt.Printf("Error loading catalog: %v\n", err)
			os.Exit(1)
		}

		markdown := catalogMarkdown(cat)

		// Plain output for pipes, styled output for terminals.
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Print(markdown)
			return
		}

		tui.PrintBanner()
		render := tui.NewRenderer()
		out, err := render(markdown)
		if err != nil {
			fmt.Print(markdown)
			return
		}
		fmt.Print(out)
	},
}

func init() {
	rootCmd.AddCommand(catalogCmd)
}

func catalogMarkdown(cat *schema.Catalog) string {
	var sb strings.Builder
	sb.WriteString("# Node Types\n\n")

	for _, nt := range cat.Types {
		name := nt.DisplayName
		if name == "" {
			name = nt.ID
		}
		sb.WriteString(fmt.Sprintf("## %s (`%s`)\n\n", name, nt.ID))
		if nt.Category != "" {
			sb.WriteString(fmt.Sprintf("Category: **%s**\n\n", nt.Category))
		}
		if nt.Help != "" {
			sb.WriteString(nt.Help + "\n\n")
		}

		if len(nt.Fields) > 0 {
			sb.WriteString("| Field | Type | Default |\n|---|---|---|\n")
			for _, f := range nt.SortedFields() {
				typ := f.Type
				if typ == "" {
					typ = "string"
				}
				sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", f.Key, typ, f.Default))
			}
			sb.WriteString("\n")
		}

		if len(nt.Ports) > 0 {
			sb.WriteString("| Port | Direction | Kind |\n|---|---|---|\n")
			for _, p := range nt.Ports {
				sb.WriteString(fmt.Sprintf("| %s | %s | %s |\n", p.ID, p.Direction, p.Kind))
			}
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
