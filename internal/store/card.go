package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"

	"github.com/abhisek/phraseweaver/internal/spacedrep"
)

var cardColumns = []string{
	"id", "concept_id", "deck_id", "kind", "front", "back",
	"due_at", "interval_days", "ease_factor", "repetitions", "last_reviewed_at",
}

// NewConcept holds the fields supplied when adding a concept.
type NewConcept struct {
	Keyword     string
	Translation string
	Sentence    string
	ImagePath   string
	AudioPath   string
}

// CardsFor builds the cards generated for a concept: recognition and
// reverse always, cloze when the sentence contains the keyword.
func CardsFor(c NewConcept) []Card {
	cards := []Card{
		{Kind: KindRecognition, Front: c.Keyword, Back: c.Translation},
		{Kind: KindReverse, Front: c.Translation, Back: c.Keyword},
	}
	if front, ok := clozeFront(c.Sentence, c.Keyword); ok {
		cards = append(cards, Card{Kind: KindCloze, Front: front, Back: c.Keyword})
	}
	return cards
}

// clozeFront blanks every occurrence of keyword in sentence, ignoring case.
// Matching runs on the original text so multi-byte letters are never split.
func clozeFront(sentence, keyword string) (string, bool) {
	if sentence == "" || keyword == "" {
		return "", false
	}
	re := regexp.MustCompile("(?i)" + regexp.QuoteMeta(keyword))
	if !re.MatchString(sentence) {
		return "", false
	}
	return re.ReplaceAllLiteralString(sentence, ClozeBlank), true
}

// CreateConcept adds a concept and its cards in one transaction. Every card
// starts with a fresh review state due at now.
func (s *Store) CreateConcept(ctx context.Context, deckID int64, nc NewConcept, now time.Time) (*Concept, []Card, error) {
	nc, err := normalizeConcept(nc)
	if err != nil {
		return nil, nil, fmt.Errorf("create concept: %w", err)
	}

	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("begin tx: %w", err)
	}
	concept, cards, err := createConcept(ctx, tx, deckID, nc, now)
	if err != nil {
		tx.Rollback()
		return nil, nil, fmt.Errorf("create concept %q: %w", nc.Keyword, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, nil, fmt.Errorf("commit concept %q: %w", nc.Keyword, err)
	}
	return concept, cards, nil
}

func normalizeConcept(nc NewConcept) (NewConcept, error) {
	nc.Keyword = strings.TrimSpace(nc.Keyword)
	nc.Translation = strings.TrimSpace(nc.Translation)
	if nc.Keyword == "" || nc.Translation == "" {
		return nc, errors.New("keyword and translation are required")
	}
	return nc, nil
}

func createConcept(ctx context.Context, tx dialect.Tx, deckID int64, nc NewConcept, now time.Time) (*Concept, []Card, error) {
	created := formatTime(now)
	query, args := builder().Insert("concepts").
		Columns("deck_id", "keyword", "translation", "sentence", "image_path", "audio_path", "created_at").
		Values(deckID, nc.Keyword, nc.Translation, nc.Sentence, nc.ImagePath, nc.AudioPath, created).
		Query()

	var res sql.Result
	if err := tx.Exec(ctx, query, args, &res); err != nil {
		if strings.Contains(err.Error(), "FOREIGN KEY constraint failed") {
			return nil, nil, fmt.Errorf("deck %d: %w", deckID, ErrNotFound)
		}
		return nil, nil, err
	}
	conceptID, err := res.LastInsertId()
	if err != nil {
		return nil, nil, err
	}

	state := spacedrep.NewReviewState(now.Truncate(time.Second))
	cards := CardsFor(nc)
	for i := range cards {
		c := &cards[i]
		c.ConceptID, c.DeckID, c.State = conceptID, deckID, state

		query, args := builder().Insert("cards").
			Columns(cardColumns[1:]...).
			Values(c.ConceptID, c.DeckID, string(c.Kind), c.Front, c.Back,
				formatTime(state.DueAt), state.Interval, state.EaseFactor, state.Repetitions,
				formatNullTime(state.LastReviewedAt)).
			Query()
		var res sql.Result
		if err := tx.Exec(ctx, query, args, &res); err != nil {
			return nil, nil, fmt.Errorf("insert %s card: %w", c.Kind, err)
		}
		if c.ID, err = res.LastInsertId(); err != nil {
			return nil, nil, err
		}
	}

	concept := &Concept{
		ID:          conceptID,
		DeckID:      deckID,
		Keyword:     nc.Keyword,
		Translation: nc.Translation,
		Sentence:    nc.Sentence,
		ImagePath:   nc.ImagePath,
		AudioPath:   nc.AudioPath,
		CreatedAt:   now.UTC().Truncate(time.Second),
	}
	return concept, cards, nil
}

// ListConcepts returns the concepts of a deck in creation order.
func (s *Store) ListConcepts(ctx context.Context, deckID int64) ([]Concept, error) {
	query, args := builder().
		Select("id", "deck_id", "keyword", "translation", "sentence", "image_path", "audio_path", "created_at").
		From(entsql.Table("concepts")).
		Where(entsql.EQ("deck_id", deckID)).
		OrderBy("id").
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list concepts: %w", err)
	}
	defer rows.Close()

	var concepts []Concept
	for rows.Next() {
		var (
			c       Concept
			created string
		)
		if err := rows.Scan(&c.ID, &c.DeckID, &c.Keyword, &c.Translation, &c.Sentence,
			&c.ImagePath, &c.AudioPath, &created); err != nil {
			return nil, fmt.Errorf("scan concept: %w", err)
		}
		t, err := parseTime(created)
		if err != nil {
			return nil, err
		}
		c.CreatedAt = t
		concepts = append(concepts, c)
	}
	return concepts, rows.Err()
}

// ListCards returns every card of a deck in creation order.
func (s *Store) ListCards(ctx context.Context, deckID int64) ([]Card, error) {
	query, args := builder().Select(cardColumns...).
		From(entsql.Table("cards")).
		Where(entsql.EQ("deck_id", deckID)).
		OrderBy("id").
		Query()
	cards, err := s.queryCards(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}
	return cards, nil
}

// CardByID returns a single card.
func (s *Store) CardByID(ctx context.Context, id int64) (*Card, error) {
	query, args := builder().Select(cardColumns...).
		From(entsql.Table("cards")).
		Where(entsql.EQ("id", id)).
		Query()
	cards, err := s.queryCards(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("get card %d: %w", id, err)
	}
	if len(cards) == 0 {
		return nil, fmt.Errorf("card %d: %w", id, ErrNotFound)
	}
	return &cards[0], nil
}

// DueCards returns up to limit cards of a deck due at or before now, most
// overdue first. A non-positive limit means no limit.
func (s *Store) DueCards(ctx context.Context, deckID int64, now time.Time, limit int) ([]Card, error) {
	sel := builder().Select(cardColumns...).
		From(entsql.Table("cards")).
		Where(dueIn(deckID, now)).
		OrderBy("due_at", "id")
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()

	cards, err := s.queryCards(ctx, query, args)
	if err != nil {
		return nil, fmt.Errorf("due cards: %w", err)
	}
	return cards, nil
}

// CountDue counts the cards of a deck due at or before now.
func (s *Store) CountDue(ctx context.Context, deckID int64, now time.Time) (int, error) {
	n, err := s.count(ctx, "cards", dueIn(deckID, now))
	if err != nil {
		return 0, fmt.Errorf("count due: %w", err)
	}
	return n, nil
}

// CountCards counts every card of a deck.
func (s *Store) CountCards(ctx context.Context, deckID int64) (int, error) {
	n, err := s.count(ctx, "cards", entsql.EQ("deck_id", deckID))
	if err != nil {
		return 0, fmt.Errorf("count cards: %w", err)
	}
	return n, nil
}

// CountMature counts the cards of a deck whose interval reached the
// mature threshold.
func (s *Store) CountMature(ctx context.Context, deckID int64) (int, error) {
	n, err := s.count(ctx, "cards", entsql.And(
		entsql.EQ("deck_id", deckID),
		entsql.GTE("interval_days", spacedrep.MatureIntervalDays),
	))
	if err != nil {
		return 0, fmt.Errorf("count mature: %w", err)
	}
	return n, nil
}

// SaveReviewState replaces a card's scheduling state.
func (s *Store) SaveReviewState(ctx context.Context, cardID int64, rs spacedrep.ReviewState) error {
	return saveReviewState(ctx, s.drv, cardID, rs)
}

func saveReviewState(ctx context.Context, ex dialect.ExecQuerier, cardID int64, rs spacedrep.ReviewState) error {
	if err := rs.Validate(); err != nil {
		return fmt.Errorf("save card %d: %w", cardID, err)
	}
	query, args := builder().Update("cards").
		Set("due_at", formatTime(rs.DueAt)).
		Set("interval_days", rs.Interval).
		Set("ease_factor", rs.EaseFactor).
		Set("repetitions", rs.Repetitions).
		Set("last_reviewed_at", formatNullTime(rs.LastReviewedAt)).
		Where(entsql.EQ("id", cardID)).
		Query()

	var res sql.Result
	if err := ex.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("save card %d: %w", cardID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("card %d: %w", cardID, ErrNotFound)
	}
	return nil
}

func dueIn(deckID int64, now time.Time) *entsql.Predicate {
	return entsql.And(
		entsql.EQ("deck_id", deckID),
		entsql.LTE("due_at", formatTime(now)),
	)
}

func (s *Store) count(ctx context.Context, table string, where *entsql.Predicate) (int, error) {
	query, args := builder().Select(entsql.Count("*")).
		From(entsql.Table(table)).
		Where(where).
		Query()

	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return 0, err
	}
	defer rows.Close()

	var n int
	if rows.Next() {
		if err := rows.Scan(&n); err != nil {
			return 0, err
		}
	}
	return n, rows.Err()
}

func (s *Store) queryCards(ctx context.Context, query string, args []any) ([]Card, error) {
	var rows entsql.Rows
	if err := s.drv.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []Card
	for rows.Next() {
		var (
			c        Card
			kind     string
			due      string
			reviewed sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.ConceptID, &c.DeckID, &kind, &c.Front, &c.Back,
			&due, &c.State.Interval, &c.State.EaseFactor, &c.State.Repetitions, &reviewed); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}
		c.Kind = CardKind(kind)

		var err error
		if c.State.DueAt, err = parseTime(due); err != nil {
			return nil, err
		}
		if c.State.LastReviewedAt, err = parseNullTime(reviewed.String); err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}
