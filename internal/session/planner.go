package session

import (
	"context"
	"fmt"
	"time"

	"github.com/abhisek/phraseweaver/internal/store"
)

// Planner builds a session plan for a deck.
type Planner interface {
	BuildPlan(ctx context.Context, deckID int64, now time.Time) (*Plan, error)
}

// DueSource lists the cards of a deck that are due at a given instant,
// most overdue first.
type DueSource interface {
	DueCards(ctx context.Context, deckID int64, now time.Time, limit int) ([]store.Card, error)
}

// Loader draws up to BatchSize due cards from a DueSource.
type Loader struct {
	Source    DueSource
	BatchSize int
}

var _ Planner = (*Loader)(nil)

// NewLoader creates a Loader. A non-positive batch size means DefaultBatchSize.
func NewLoader(src DueSource, batchSize int) *Loader {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Loader{Source: src, BatchSize: batchSize}
}

// BuildPlan loads the due cards for deckID. It returns ErrEmptySession when
// nothing is due.
func (l *Loader) BuildPlan(ctx context.Context, deckID int64, now time.Time) (*Plan, error) {
	cards, err := l.Source.DueCards(ctx, deckID, now.UTC(), l.BatchSize)
	if err != nil {
		return nil, fmt.Errorf("load due cards: %w", err)
	}
	if len(cards) == 0 {
		return nil, ErrEmptySession
	}

	plan := &Plan{
		DeckID:  deckID,
		Cards:   make([]DueCard, 0, len(cards)),
		BuiltAt: now.UTC(),
	}
	for _, c := range cards {
		plan.Cards = append(plan.Cards, DueCardFrom(c))
	}
	return plan, nil
}

// DueCardFrom converts a stored card into a session card.
func DueCardFrom(c store.Card) DueCard {
	return DueCard{
		ID:    c.ID,
		Kind:  c.Kind,
		Front: c.Front,
		Back:  c.Back,
		State: c.State,
	}
}
