package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/espalier-dev/espalier"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the espalier version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(espalier.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
