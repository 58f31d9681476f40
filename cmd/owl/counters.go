package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Sammers21/owl-esports/internal/config"
	"github.com/Sammers21/owl-esports/internal/logging"
	"github.com/Sammers21/owl-esports/internal/winrate"
)

var countersCmd = &cobra.Command{
	Use:   "counters",
	Short: "Store a hero's counters table for win rate predictions",
	Long: `Parses the counters page of one hero (--file, "-" for stdin, or --url) and
writes it as <dir>/<hero>.json, the layout the tracker reads from COUNTERS_DIR.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		hero, _ := cmd.Flags().GetString("hero")
		file, _ := cmd.Flags().GetString("file")
		pageURL, _ := cmd.Flags().GetString("url")
		dir, _ := cmd.Flags().GetString("dir")
		hero = strings.TrimSpace(hero)
		if hero == "" || strings.ContainsAny(hero, `/\`) {
			return fmt.Errorf("invalid hero name %q", hero)
		}
		if (file == "") == (pageURL == "") {
			return errors.New("exactly one of --file or --url is required")
		}

		cfg, err := config.ReadExtractor(envFiles(cmd)...)
		if err != nil {
			return err
		}
		logger, err := logging.New(cfg.Log.Logging())
		if err != nil {
			return fmt.Errorf("failed to build logger: %w", err)
		}
		defer logger.Sync()

		src, err := openPage(cmd.Context(), cmd.InOrStdin(), file, pageURL)
		if err != nil {
			return err
		}
		defer src.Close()

		counters, err := winrate.ParsePage(src, logger.Named("winrate"))
		if err != nil {
			return fmt.Errorf("counters of %s: %w", hero, err)
		}
		path, err := winrate.WriteFile(dir, hero, counters)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d counters of %s written to %s\n", len(counters), hero, path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(countersCmd)
	countersCmd.Flags().String("hero", "", "Hero the page belongs to, as in \"Shadow Fiend\"")
	countersCmd.Flags().StringP("file", "f", "", "Saved counters page, or - for stdin")
	countersCmd.Flags().StringP("url", "u", "", "Fetch the counters page from this URL")
	countersCmd.Flags().String("dir", "counters", "Directory of the counter files")
	_ = countersCmd.MarkFlagRequired("hero")
}
