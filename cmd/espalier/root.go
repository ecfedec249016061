package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "espalier",
	Short: "Espalier is a turn-based dialog engine for IVR bots",
	Long: `Espalier runs the per-turn orchestration behind voice bots: it decides,
for every caller utterance, whether to ask again, move on, or close the
call with a transfer or an answer. Bots are YAML flow definitions.`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("flows", "./flows", "Directory containing the flow definitions")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level: debug, info, warn, error")
}
