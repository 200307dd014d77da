package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/phraseweaver/internal/spacedrep"
)

// sequenceCounter hands out the global monotonic sequence stamped on every
// review event. Review events can arrive from a background writer, so the
// sequence rather than the timestamp defines their order.
//
// The mutex serializes within the process; the RETURNING clause makes the
// increment atomic at the database level.
type sequenceCounter struct {
	mu  sync.Mutex
	drv dialect.ExecQuerier
}

// newSequenceCounter creates a counter and ensures the tracking table exists.
func newSequenceCounter(ctx context.Context, drv dialect.ExecQuerier) (*sequenceCounter, error) {
	err := drv.Exec(ctx, `CREATE TABLE IF NOT EXISTS global_sequence (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		next_val INTEGER NOT NULL DEFAULT 1
	)`, []any{}, nil)
	if err != nil {
		return nil, fmt.Errorf("create sequence table: %w", err)
	}

	err = drv.Exec(ctx, `INSERT OR IGNORE INTO global_sequence (id, next_val) VALUES (1, 1)`, []any{}, nil)
	if err != nil {
		return nil, fmt.Errorf("seed sequence: %w", err)
	}

	return &sequenceCounter{drv: drv}, nil
}

// Next atomically returns the next sequence number and increments the counter.
func (sc *sequenceCounter) Next(ctx context.Context) (int64, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	var rows entsql.Rows
	err := sc.drv.Query(ctx,
		`UPDATE global_sequence SET next_val = next_val + 1 WHERE id = 1 RETURNING next_val - 1`,
		[]any{}, &rows)
	if err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	defer rows.Close()

	var seq int64
	if !rows.Next() {
		return 0, fmt.Errorf("next sequence: no row returned")
	}
	if err := rows.Scan(&seq); err != nil {
		return 0, fmt.Errorf("next sequence: %w", err)
	}
	return seq, rows.Err()
}

// RecordReview saves a card's new state and its review event together.
func (s *Store) RecordReview(ctx context.Context, ev *ReviewEvent, rs spacedrep.ReviewState) error {
	seq, err := s.seq.Next(ctx)
	if err != nil {
		return err
	}
	ev.Sequence = seq

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := saveReviewState(ctx, tx, ev.CardID, rs); err != nil {
		tx.Rollback()
		return err
	}
	if err := appendReview(ctx, tx, ev); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit review of card %d: %w", ev.CardID, err)
	}
	return nil
}

func appendReview(ctx context.Context, ex dialect.ExecQuerier, ev *ReviewEvent) error {
	if !ev.Judgment.IsValid() {
		return &spacedrep.InvalidJudgmentError{Value: ev.Judgment}
	}
	query, args := builder().Insert("review_events").
		Columns("sequence", "card_id", "deck_id", "session_id", "judgment",
			"interval_days", "ease_factor", "reviewed_at").
		Values(ev.Sequence, ev.CardID, ev.DeckID, ev.SessionID, ev.Judgment.String(),
			ev.Interval, ev.EaseFactor, formatTime(ev.ReviewedAt)).
		Query()
	if err := ex.Exec(ctx, query, args, nil); err != nil {
		return fmt.Errorf("save review event: %w", err)
	}
	return nil
}

// ListReviews returns the review events of a card in sequence order.
func (s *Store) ListReviews(ctx context.Context, cardID int64) ([]ReviewEvent, error) {
	query, args := builder().
		Select("sequence", "card_id", "deck_id", "session_id", "judgment",
			"interval_days", "ease_factor", "reviewed_at").
		From(entsql.Table("review_events")).
		Where(entsql.EQ("card_id", cardID)).
		OrderBy("sequence").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	defer rows.Close()

	var events []ReviewEvent
	for rows.Next() {
		var (
			ev              ReviewEvent
			judgment, stamp string
		)
		if err := rows.Scan(&ev.Sequence, &ev.CardID, &ev.DeckID, &ev.SessionID, &judgment,
			&ev.Interval, &ev.EaseFactor, &stamp); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		j, err := spacedrep.ParseJudgment(judgment)
		if err != nil {
			return nil, err
		}
		t, err := parseTime(stamp)
		if err != nil {
			return nil, err
		}
		ev.Judgment, ev.ReviewedAt = j, t
		events = append(events, ev)
	}
	return events, rows.Err()
}

const dayExpr = "substr(reviewed_at, 1, 10)"

// ReviewsPerDay counts reviews for each of the last days UTC calendar days
// ending with the day of now. Days without reviews are included with zero.
func (s *Store) ReviewsPerDay(ctx context.Context, days int, now time.Time) ([]DayCount, error) {
	if days <= 0 {
		return nil, nil
	}
	today := utcDay(now)
	first := today.AddDate(0, 0, -(days - 1))

	query, args := builder().Select(dayExpr, entsql.Count("*")).
		From(entsql.Table("review_events")).
		Where(entsql.GTE("reviewed_at", formatTime(first))).
		GroupBy(dayExpr).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("reviews per day: %w", err)
	}
	defer rows.Close()

	byDay := make(map[string]int)
	for rows.Next() {
		var (
			day string
			n   int
		)
		if err := rows.Scan(&day, &n); err != nil {
			return nil, fmt.Errorf("scan day count: %w", err)
		}
		byDay[day] = n
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	out := make([]DayCount, 0, days)
	for d := first; !d.After(today); d = d.AddDate(0, 0, 1) {
		out = append(out, DayCount{Day: d, Count: byDay[d.Format(time.DateOnly)]})
	}
	return out, nil
}

// StudyStreak counts consecutive UTC days with at least one review, ending
// today. A streak ending yesterday is still current.
func (s *Store) StudyStreak(ctx context.Context, now time.Time) (int, error) {
	query, args := builder().Select(dayExpr).
		Distinct().
		From(entsql.Table("review_events")).
		Where(entsql.LTE("reviewed_at", formatTime(now))).
		OrderBy(dayExpr + " DESC").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, fmt.Errorf("study streak: %w", err)
	}
	defer rows.Close()

	var days []time.Time
	for rows.Next() {
		var day string
		if err := rows.Scan(&day); err != nil {
			return 0, fmt.Errorf("scan day: %w", err)
		}
		d, err := time.Parse(time.DateOnly, day)
		if err != nil {
			return 0, fmt.Errorf("parse day %q: %w", day, err)
		}
		days = append(days, d)
	}
	if err := rows.Err(); err != nil {
		return 0, err
	}
	return streak(days, utcDay(now)), nil
}

// streak counts the run of consecutive days at the head of days, which is
// sorted newest first. The run must start today or yesterday.
func streak(days []time.Time, today time.Time) int {
	if len(days) == 0 {
		return 0
	}
	want := today
	if days[0].Before(today) {
		want = today.AddDate(0, 0, -1)
	}

	n := 0
	for _, d := range days {
		if !d.Equal(want) {
			break
		}
		n++
		want = want.AddDate(0, 0, -1)
	}
	return n
}

func utcDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
