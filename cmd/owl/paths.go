package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Sammers21/owl-esports/internal/config"
	"github.com/Sammers21/owl-esports/internal/dom"
)

var pathsCmd = &cobra.Command{
	Use:   "paths",
	Short: "Print the structural paths used to locate the draft",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.ReadExtractor(envFiles(cmd)...)
		if err != nil {
			return err
		}
		// Compiling catches broken overrides before an extraction does.
		locator, err := dom.NewLocator(cfg.Paths())
		if err != nil {
			return err
		}

		paths := locator.Paths()
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintf(tw, "title\t%s\n", cfg.PageTitle)
		for _, role := range dom.Roles {
			fmt.Fprintf(tw, "%s\t%s\n", role, paths[role])
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(pathsCmd)
}
