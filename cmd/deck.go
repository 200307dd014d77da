package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/phraseweaver/internal/deckfile"
	"github.com/abhisek/phraseweaver/internal/store"
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Create, list, import and export decks",
}

var deckCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create an empty deck",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeckCreate,
}

var deckListCmd = &cobra.Command{
	Use:   "list",
	Short: "List decks with their card counts",
	Args:  cobra.NoArgs,
	RunE:  runDeckList,
}

var deckAddCmd = &cobra.Command{
	Use:   "add <deck>",
	Short: "Add a word or phrase to a deck",
	Long: `Add a concept to a deck. Every concept gets a recognition card and a
reverse card; a cloze card is added when the example sentence contains
the keyword.`,
	Args: cobra.ExactArgs(1),
	RunE: runDeckAdd,
}

var deckImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a deck from a YAML file (- for stdin)",
	Long: `Import concepts from a YAML deck file, creating the deck if needed.

The import is all or nothing. Concepts whose keyword is already in the deck
are skipped, so importing the same file again adds only new entries.`,
	Args: cobra.ExactArgs(1),
	RunE:  runDeckImport,
}

var deckExportCmd = &cobra.Command{
	Use:   "export <deck>",
	Short: "Export a deck as YAML",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeckExport,
}

var deckDeleteCmd = &cobra.Command{
	Use:   "delete <deck>",
	Short: "Delete a deck and its review history",
	Args:  cobra.ExactArgs(1),
	RunE:  runDeckDelete,
}

func init() {
	deckCreateCmd.Flags().String("lang", "", "Target language code (default from deck.default_lang)")

	deckAddCmd.Flags().String("keyword", "", "Word or phrase being learned (required)")
	deckAddCmd.Flags().String("translation", "", "Its translation (required)")
	deckAddCmd.Flags().String("sentence", "", "Example sentence using the keyword")
	deckAddCmd.Flags().String("image", "", "Path to an image")
	deckAddCmd.Flags().String("audio", "", "Path to an audio clip")
	_ = deckAddCmd.MarkFlagRequired("keyword")
	_ = deckAddCmd.MarkFlagRequired("translation")

	deckImportCmd.Flags().String("name", "", "Deck name (overrides the file)")
	deckExportCmd.Flags().StringP("output", "o", "", "Output file (default stdout)")
	deckDeleteCmd.Flags().Bool("yes", false, "Delete without confirmation")

	deckCmd.AddCommand(deckCreateCmd, deckListCmd, deckAddCmd, deckImportCmd, deckExportCmd, deckDeleteCmd)
}

func runDeckCreate(cmd *cobra.Command, args []string) error {
	env, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	lang, _ := cmd.Flags().GetString("lang")
	if lang == "" {
		lang = env.cfg.DefaultLang
	}

	deck, err := st.CreateDeck(cmd.Context(), args[0], lang, time.Now())
	if err != nil {
		return err
	}
	env.logger.Info("Deck created", "deck", deck.Name, "lang", deck.LangCode)
	fmt.Fprintf(cmd.OutOrStdout(), "Created deck %s (%s)\n", env.styles.Title.Render(deck.Name), deck.LangCode)
	return nil
}

func runDeckList(cmd *cobra.Command, args []string) error {
	_, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	decks, err := st.ListDecks(ctx)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if len(decks) == 0 {
		fmt.Fprintln(out, "No decks yet. Create one with: phraseweaver deck create <name>")
		return nil
	}

	now := time.Now()
	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DECK\tLANG\tCARDS\tDUE\tMATURE")
	for _, d := range decks {
		stats, err := st.DeckStats(ctx, d, now)
		if err != nil {
			return err
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", d.Name, d.LangCode, stats.Cards, stats.Due, stats.Mature)
	}
	return tw.Flush()
}

func runDeckAdd(cmd *cobra.Command, args []string) error {
	env, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	deck, err := st.DeckByName(ctx, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	var nc store.NewConcept
	nc.Keyword, _ = flags.GetString("keyword")
	nc.Translation, _ = flags.GetString("translation")
	nc.Sentence, _ = flags.GetString("sentence")
	nc.ImagePath, _ = flags.GetString("image")
	nc.AudioPath, _ = flags.GetString("audio")

	concept, cards, err := st.CreateConcept(ctx, deck.ID, nc, time.Now())
	if err != nil {
		return err
	}
	env.logger.Debug("Concept added", "deck", deck.Name, "concept", concept.ID, "cards", len(cards))

	kinds := make([]string, 0, len(cards))
	for _, c := range cards {
		kinds = append(kinds, string(c.Kind))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s: %s cards\n",
		env.styles.Front.Render(concept.Keyword), deck.Name, strings.Join(kinds, ", "))
	return nil
}

func runDeckImport(cmd *cobra.Command, args []string) error {
	env, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	var r io.Reader = cmd.InOrStdin()
	if args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open deck file: %w", err)
		}
		defer f.Close()
		r = f
	}

	doc, err := deckfile.Read(r)
	if err != nil {
		return err
	}
	if name, _ := cmd.Flags().GetString("name"); name != "" {
		doc.Name = name
	}
	if doc.Lang == "" {
		doc.Lang = env.cfg.DefaultLang
	}
	if err := doc.Validate(); err != nil {
		return err
	}

	concepts := make([]store.NewConcept, 0, len(doc.Concepts))
	for _, c := range doc.Concepts {
		concepts = append(concepts, c.NewConcept())
	}
	res, err := st.ImportConcepts(cmd.Context(), doc.Name, doc.Lang, concepts, time.Now())
	if err != nil {
		return err
	}
	env.logger.Info("Deck imported", "deck", res.Deck.Name, "created", res.DeckCreated,
		"concepts", res.Concepts, "cards", res.Cards, "skipped", res.Skipped)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d concepts (%d cards) into %s\n",
		res.Concepts, res.Cards, env.styles.Title.Render(res.Deck.Name))
	if res.Skipped > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d concepts already in the deck\n", res.Skipped)
	}
	return nil
}

func runDeckExport(cmd *cobra.Command, args []string) error {
	env, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	deck, err := st.DeckByName(ctx, args[0])
	if err != nil {
		return err
	}
	concepts, err := st.ListConcepts(ctx, deck.ID)
	if err != nil {
		return err
	}

	var w io.Writer = cmd.OutOrStdout()
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("create output file: %w", err)
		}
		defer f.Close()
		w = f
	}
	if err := deckfile.Write(w, deckfile.FromStore(*deck, concepts)); err != nil {
		return err
	}
	env.logger.Debug("Deck exported", "deck", deck.Name, "concepts", len(concepts))
	return nil
}

func runDeckDelete(cmd *cobra.Command, args []string) error {
	env, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	deck, err := st.DeckByName(ctx, args[0])
	if err != nil {
		return err
	}

	if yes, _ := cmd.Flags().GetBool("yes"); !yes {
		fmt.Fprintf(cmd.OutOrStdout(), "Delete deck %s and all its review history? [y/N] ", deck.Name)
		var answer string
		fmt.Fscanln(cmd.InOrStdin(), &answer)
		if !strings.EqualFold(strings.TrimSpace(answer), "y") {
			fmt.Fprintln(cmd.OutOrStdout(), "Cancelled.")
			return nil
		}
	}

	if err := st.DeleteDeck(ctx, deck.ID); err != nil {
		return err
	}
	env.logger.Info("Deck deleted", "deck", deck.Name)
	return nil
}
