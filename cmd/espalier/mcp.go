package main

import (
	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier"
	mcpserver "github.com/espalier-dev/espalier/pkg/adapters/mcp"
	"github.com/espalier-dev/espalier/pkg/engine"
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "Expose the engine as an MCP server on stdio",
	Long:  `Serves the list_flows, describe_flow and turn tools over the Model Context Protocol so agent tooling can drive a bot.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(cmd, false)
		reg, _, err := loadRegistry(cmd)
		if err != nil {
			return err
		}
		eng := engine.New(reg, engine.WithLogger(logger))
		return mcpserver.NewServer(eng, reg, espalier.Version).ServeStdio()
	},
}

func init() {
	rootCmd.AddCommand(mcpCmd)
}
