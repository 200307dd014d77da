package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "phraseweaver",
	Short: "Spaced-repetition flashcards for language learners",
	Long: `PhraseWeaver drills vocabulary with SM-2 spaced repetition.

Build decks of words and phrases, review the cards that are due, and
track how your memory is holding up.`,
	SilenceUsage: true,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().String("db", "", "Path to SQLite database file (overrides PHRASEWEAVER_DB env var)")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: config.yaml in the data directory)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: debug, info, warn or error")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output (also honors NO_COLOR)")

	rootCmd.AddCommand(deckCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(versionCmd)
}
