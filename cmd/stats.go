package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/abhisek/phraseweaver/internal/spacedrep"
	"github.com/abhisek/phraseweaver/internal/store"
	"github.com/abhisek/phraseweaver/internal/ui/components"
	"github.com/abhisek/phraseweaver/internal/ui/theme"
)

var statusOrder = []spacedrep.ReviewStatus{
	spacedrep.StatusNew,
	spacedrep.StatusLearning,
	spacedrep.StatusDue,
	spacedrep.StatusReview,
	spacedrep.StatusMature,
}

var statsCmd = &cobra.Command{
	Use:   "stats [deck]",
	Short: "Show review statistics",
	Long:  "Show the study streak, recent review activity and card counts for one deck or all decks.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().Int("days", 7, "Number of days of review activity to show")
}

func runStats(cmd *cobra.Command, args []string) error {
	env, st, err := openStore(cmd)
	if err != nil {
		return err
	}
	defer st.Close()

	ctx := cmd.Context()
	now := time.Now()
	out := cmd.OutOrStdout()
	days, _ := cmd.Flags().GetInt("days")

	var decks []store.Deck
	if len(args) == 1 {
		d, err := st.DeckByName(ctx, args[0])
		if err != nil {
			return err
		}
		decks = []store.Deck{*d}
	} else {
		if decks, err = st.ListDecks(ctx); err != nil {
			return err
		}
	}

	streak, err := st.StudyStreak(ctx, now)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n\n", env.styles.Title.Render("Current streak:"), pluralDays(streak))

	perDay, err := st.ReviewsPerDay(ctx, days, now)
	if err != nil {
		return err
	}
	if len(perDay) > 0 {
		chart := components.BarChart{Width: 30}
		for _, dc := range perDay {
			chart.Bars = append(chart.Bars, components.Bar{Label: dc.Day.Format("Mon 02 Jan"), Value: dc.Count})
		}
		fmt.Fprintln(out, env.styles.Subtitle.Render(fmt.Sprintf("Reviews, last %d days", days)))
		fmt.Fprintln(out, chart.View(env.styles))
	}

	for _, d := range decks {
		stats, err := st.DeckStats(ctx, d, now)
		if err != nil {
			return err
		}
		mature := 0.0
		if stats.Cards > 0 {
			mature = float64(stats.Mature) / float64(stats.Cards)
		}
		bar := components.NewProgressBar("mature", mature, true, 36)
		fmt.Fprintf(out, "%s (%s)  %d cards, %d due\n  %s\n",
			env.styles.Front.Render(d.Name), d.LangCode, stats.Cards, stats.Due, bar.View(env.styles))

		if len(args) == 1 {
			cards, err := st.ListCards(ctx, d.ID)
			if err != nil {
				return err
			}
			fmt.Fprint(out, breakdownFor(cards, now).view(env.styles))
		}
	}
	if len(decks) == 0 {
		fmt.Fprintln(out, "No decks yet.")
	}
	return nil
}

// statusBreakdown summarises where the cards of one deck stand.
type statusBreakdown struct {
	counts     map[spacedrep.ReviewStatus]int
	due        int
	maxOverdue float64 // Days, over due cards
	nextDue    int     // Days until the earliest upcoming card; -1 when none
}

func breakdownFor(cards []store.Card, now time.Time) statusBreakdown {
	b := statusBreakdown{counts: make(map[spacedrep.ReviewStatus]int), nextDue: -1}
	for _, c := range cards {
		b.counts[c.State.Status(now)]++
		if c.State.IsDue(now) {
			b.due++
			b.maxOverdue = max(b.maxOverdue, c.State.OverdueDays(now))
			continue
		}
		if d := c.State.DaysUntilReview(now); b.nextDue < 0 || d < b.nextDue {
			b.nextDue = d
		}
	}
	return b
}

func (b statusBreakdown) view(st *theme.Styles) string {
	parts := make([]string, 0, len(statusOrder))
	for _, s := range statusOrder {
		parts = append(parts, fmt.Sprintf("%s %d", s, b.counts[s]))
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "  %s\n", st.Hint.Render(strings.Join(parts, " · ")))
	switch {
	case b.due > 0 && b.maxOverdue >= 1:
		fmt.Fprintf(&sb, "  Most overdue: %s\n", pluralDays(int(b.maxOverdue)))
	case b.due > 0:
		fmt.Fprintln(&sb, "  Cards are due now.")
	case b.nextDue >= 0:
		fmt.Fprintf(&sb, "  Next review in %s\n", pluralDays(b.nextDue))
	}
	return sb.String()
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}
