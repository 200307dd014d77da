package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/abhisek/phraseweaver/internal/session"
	"github.com/abhisek/phraseweaver/internal/spacedrep"
	"github.com/abhisek/phraseweaver/internal/store"
	"github.com/abhisek/phraseweaver/internal/ui/components"
	"github.com/abhisek/phraseweaver/internal/ui/theme"
)

// quitInput ends a drill at any prompt.
const quitInput = ":q"

var reviewCmd = &cobra.Command{
	Use:   "review <deck>",
	Short: "Review the cards that are due in a deck",
	Long: `Run a review session over the due cards of a deck.

Recognition cards are revealed on Enter; reverse and cloze cards ask you to
type the answer. Grade each card again, good or easy (a/g/e or 1/2/3).
Cards graded again come back later in the same session. Type :q to stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	reviewCmd.Flags().Int("limit", 0, "Maximum cards per session (default session.batch_size)")
}

// reviewSink persists scheduled outcomes.
type reviewSink interface {
	Submit(ev store.ReviewEvent, rs spacedrep.ReviewState) error
}

func runReview(cmd *cobra.Command, args []string) error {
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

	sched := spacedrep.NewScheduler(spacedrep.WithLapseRetry(env.cfg.LapseRetry))
	var planner session.Planner = session.NewLoader(st, env.cfg.BatchSize)
	plan, err := planner.BuildPlan(ctx, deck.ID, sched.Now())
	if errors.Is(err, session.ErrEmptySession) {
		fmt.Fprintf(cmd.OutOrStdout(), "Nothing to review in %s. Come back later.\n", deck.Name)
		return nil
	}
	if err != nil {
		return err
	}

	mgr := session.NewManager(session.WithScheduler(sched), session.WithLogger(env.logger))
	writer := store.NewWriter(ctx, st, env.logger)

	d := &drill{
		in:     bufio.NewScanner(cmd.InOrStdin()),
		out:    cmd.OutOrStdout(),
		styles: env.styles,
		logger: env.logger,
		mgr:    mgr,
		sink:   writer,
		deckID: deck.ID,
	}
	fmt.Fprintf(d.out, "%s  %s\n\n", env.styles.Title.Render(deck.Name),
		env.styles.Subtitle.Render(fmt.Sprintf("%d cards due", plan.Len())))

	runErr := d.run(plan)
	if err := writer.Close(); err != nil {
		return errors.Join(runErr, fmt.Errorf("save reviews: %w", err))
	}
	return runErr
}

// drill runs one review session over a line-based terminal.
type drill struct {
	in     *bufio.Scanner
	out    io.Writer
	styles *theme.Styles
	logger *log.Logger
	mgr    *session.Manager
	sink   reviewSink
	deckID int64
}

func (d *drill) run(plan *session.Plan) error {
	if err := d.mgr.Start(plan.Cards); err != nil {
		return err
	}

	for {
		card, ok := d.mgr.Next()
		if !ok {
			break
		}

		j, quit := d.ask(card)
		if quit {
			for _, out := range d.mgr.Abandon() {
				d.persist(out)
			}
			fmt.Fprintln(d.out, d.styles.Hint.Render("Session stopped."))
			break
		}

		out, err := d.mgr.Submit(card.ID, j)
		if err != nil {
			return err
		}
		d.report(out)
	}

	d.printSummary(d.mgr.Summary())
	return nil
}

// ask presents a card and returns the learner's judgment.
func (d *drill) ask(card session.DueCard) (spacedrep.Judgment, bool) {
	s := d.mgr.Summary()
	bar := components.NewProgressBar("", float64(s.Scheduled)/float64(max(s.Cards, 1)), true, 30)
	fmt.Fprintf(d.out, "── %s ── %s\n", card.Kind, bar.View(d.styles))
	if card.Kind == store.KindCloze {
		fmt.Fprintln(d.out, d.styles.Hint.Render("Fill in the blank:"))
	}
	fmt.Fprintln(d.out, d.styles.Card.Render(d.styles.Front.Render(card.Front)))

	var suggested spacedrep.Judgment
	switch card.Mode() {
	case session.ModeTyped:
		fmt.Fprint(d.out, "Your answer: ")
		answer, ok := d.readLine()
		if !ok || answer == quitInput {
			return 0, true
		}
		correct := session.CheckTypedAnswer(card.Back, answer)
		if correct {
			fmt.Fprintln(d.out, d.styles.Correct.Render("✓ Correct!"))
		} else {
			fmt.Fprintf(d.out, "%s Answer: %s\n", d.styles.Incorrect.Render("✗ Wrong."), d.styles.Answer.Render(card.Back))
		}
		suggested = session.SuggestJudgment(correct)
	default:
		fmt.Fprint(d.out, d.styles.Hint.Render("Press Enter to reveal"))
		input, ok := d.readLine()
		if !ok || input == quitInput {
			return 0, true
		}
		fmt.Fprintf(d.out, "Answer: %s\n", d.styles.Answer.Render(card.Back))
	}

	return d.askJudgment(suggested)
}

func (d *drill) askJudgment(suggested spacedrep.Judgment) (spacedrep.Judgment, bool) {
	prompt := fmt.Sprintf("%s / %s / %s",
		d.styles.Again.Render("[a]gain"), d.styles.Good.Render("[g]ood"), d.styles.Easy.Render("[e]asy"))
	if suggested.IsValid() {
		prompt += d.styles.Hint.Render(fmt.Sprintf(" (Enter = %s)", suggested))
	}

	for {
		fmt.Fprintf(d.out, "%s: ", prompt)
		input, ok := d.readLine()
		if !ok || input == quitInput {
			return 0, true
		}
		if input == "" && suggested.IsValid() {
			return suggested, false
		}
		j, err := spacedrep.ParseJudgment(input)
		if err != nil {
			fmt.Fprintln(d.out, d.styles.Incorrect.Render(err.Error()))
			continue
		}
		return j, false
	}
}

func (d *drill) report(out session.Outcome) {
	switch out.Kind {
	case session.Requeued:
		fmt.Fprintln(d.out, d.styles.Hint.Render("↻ You will see this card again shortly."))
	case session.Scheduled:
		d.persist(out)
		days := spacedrep.RoundDays(out.State.Interval)
		fmt.Fprintln(d.out, d.styles.Hint.Render(fmt.Sprintf("Next review in %s.", pluralDays(days))))
	}
	fmt.Fprintln(d.out)
}

func (d *drill) persist(out session.Outcome) {
	ev := store.ReviewEvent{
		CardID:     out.CardID,
		DeckID:     d.deckID,
		SessionID:  d.mgr.ID(),
		Judgment:   out.Judgment,
		Interval:   out.State.Interval,
		EaseFactor: out.State.EaseFactor,
		ReviewedAt: out.State.LastReviewedAt,
	}
	if err := d.sink.Submit(ev, out.State); err != nil {
		d.logger.Error("Failed to queue review", "card", out.CardID, "err", err)
	}
}

func (d *drill) printSummary(s *session.SessionSummary) {
	fmt.Fprintf(d.out, "── %s ──\n", d.styles.Title.Render("Session summary"))
	fmt.Fprintf(d.out, "Cards reviewed: %d/%d\n", s.Scheduled, s.Cards)
	if s.Scheduled > 0 {
		fmt.Fprintf(d.out, "First-try recall: %d%%\n", int(s.Retention()*100+0.5))
	}
	fmt.Fprintf(d.out, "Again: %s  Good: %s  Easy: %s\n",
		d.styles.Again.Render(fmt.Sprint(s.Counts[spacedrep.Again])),
		d.styles.Good.Render(fmt.Sprint(s.Counts[spacedrep.Good])),
		d.styles.Easy.Render(fmt.Sprint(s.Counts[spacedrep.Easy])))
	if s.Skipped > 0 {
		fmt.Fprintf(d.out, "Not reviewed: %d\n", s.Skipped)
	}
	fmt.Fprintf(d.out, "Time: %s\n", s.Duration.Round(time.Second))
}

// readLine returns the next trimmed input line, or false at end of input.
func (d *drill) readLine() (string, bool) {
	if !d.in.Scan() {
		fmt.Fprintln(d.out)
		return "", false
	}
	return strings.TrimSpace(d.in.Text()), true
}
