package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier/internal/presentation/graph"
)

var graphCmd = &cobra.Command{
	Use:   "graph <bot>",
	Short: "Render a flow's step graph as Mermaid",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locale, _ := cmd.Flags().GetString("locale")
		reg, _, err := loadRegistry(cmd)
		if err != nil {
			return err
		}
		f, err := reg.Lookup(args[0], locale)
		if err != nil {
			return err
		}
		fmt.Print(graph.Mermaid(f))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("locale", "", "Locale of the flow to render")
}
