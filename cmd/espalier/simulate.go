package main

import (
	"context"
	"fmt"
	"os"

	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/espalier-dev/espalier/pkg/engine"
	"github.com/espalier-dev/espalier/pkg/ports"
	"github.com/espalier-dev/espalier/pkg/simulator"
)

var simulateCmd = &cobra.Command{
	Use:   "simulate <bot>",
	Short: "Play a conversation against a flow from the terminal",
	Long: `Drives the engine the way the NLU service would, reading caller answers
from stdin. With --json, events and answers are exchanged as JSON lines
for scripted runs.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		locale, _ := cmd.Flags().GetString("locale")
		jsonMode, _ := cmd.Flags().GetBool("json")
		verifyResult, _ := cmd.Flags().GetString("verify-result")
		logger := newLogger(cmd, false)

		reg, _, err := loadRegistry(cmd)
		if err != nil {
			return err
		}
		f, err := reg.Lookup(args[0], locale)
		if err != nil {
			return err
		}

		eng := engine.New(reg,
			engine.WithLogger(logger),
			engine.WithVerifier(fixedVerifier(verifyResult)),
		)

		var userIO simulator.IO
		if jsonMode {
			userIO = simulator.NewJSONIO(os.Stdin, os.Stdout)
		} else {
			profile := termenv.Ascii
			if term.IsTerminal(int(os.Stdout.Fd())) {
				profile = termenv.ColorProfile()
			}
			userIO = simulator.NewTextIO(os.Stdin, os.Stdout, profile)
		}

		sim := simulator.New(eng, f, userIO, simulator.WithLogger(logger))
		result, err := sim.Run(cmd.Context())
		if err != nil {
			return err
		}
		if !jsonMode && result != nil {
			fmt.Printf("\nconversation closed after %d turns", result.Turns)
			if result.Action != "" {
				fmt.Printf(" (%s -> %s)", result.Action, result.Destination)
			}
			fmt.Println()
		}
		return nil
	},
}

// fixedVerifier stubs the external verification capability with a fixed
// result so flows that declare a verify section can be played locally.
func fixedVerifier(result string) ports.Verifier {
	return ports.VerifierFunc(func(ctx context.Context, req ports.VerifyRequest) (ports.VerifyResult, error) {
		return ports.VerifyResult(result), nil
	})
}

func init() {
	rootCmd.AddCommand(simulateCmd)
	simulateCmd.Flags().String("locale", "", "Locale of the flow to simulate")
	simulateCmd.Flags().Bool("json", false, "Exchange events as JSON lines")
	simulateCmd.Flags().String("verify-result", "SUCCESS", "Stubbed verifier result: SUCCESS, FAILED or BLOCKED")
}
