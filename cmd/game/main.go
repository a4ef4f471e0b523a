// Package main is the entry point for the adventure CLI
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "llmadventure",
	Short: "A generated text adventure",
	Long:  `llmadventure is a single-player text adventure whose narrative content is generated on the fly and constrained to a deterministic game state.`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(savesCmd)
}
