package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "owl",
	Short: "owl reads a Dota 2 scoreboard and reports the draft",
	Long: `owl extracts the ten picked heroes and the team names from a scoreboard page,
prints the pick line and match label, and hands the pick line to the configured sink.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Persistent flags (available to all commands)
	rootCmd.PersistentFlags().String("env-file", "", "Load variables from this file before the environment (default .env)")
}

func envFiles(cmd *cobra.Command) []string {
	f, _ := cmd.Flags().GetString("env-file")
	if f == "" {
		return nil
	}
	return []string{f}
}
