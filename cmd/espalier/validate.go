package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate every flow definition in the flows directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, _, err := loadRegistry(cmd)
		if err != nil {
			return err
		}
		for _, f := range reg.Flows() {
			fmt.Printf("ok\t%s (%s)\tmode=%s\n", f.Name, f.Locale, f.EffectiveMode())
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
