package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

// ImportResult reports what ImportConcepts changed.
type ImportResult struct {
	Deck        Deck
	DeckCreated bool
	Concepts    int // Concepts added
	Cards       int // Cards generated for them
	Skipped     int // Concepts whose keyword was already in the deck
}

// ImportConcepts adds concepts to the deck called name, creating it with
// langCode if it does not exist. Everything happens in one transaction: on
// any error nothing is written. A concept whose keyword already exists in the
// deck, ignoring case, is skipped, so importing the same list twice adds
// nothing the second time.
func (s *Store) ImportConcepts(ctx context.Context, name, langCode string, concepts []NewConcept, now time.Time) (*ImportResult, error) {
	tx, err := s.drv.Tx(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	res, err := importConcepts(ctx, tx, name, langCode, concepts, now)
	if err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("import %q: %w", name, err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit import %q: %w", name, err)
	}
	return res, nil
}

func importConcepts(ctx context.Context, tx dialect.Tx, name, langCode string, concepts []NewConcept, now time.Time) (*ImportResult, error) {
	res := &ImportResult{}
	deck, err := deckByName(ctx, tx, strings.TrimSpace(name))
	if errors.Is(err, ErrNotFound) {
		deck, err = insertDeck(ctx, tx, name, langCode, now)
		res.DeckCreated = true
	}
	if err != nil {
		return nil, err
	}
	res.Deck = *deck

	seen, err := deckKeywords(ctx, tx, deck.ID)
	if err != nil {
		return nil, err
	}

	for i, nc := range concepts {
		nc, err := normalizeConcept(nc)
		if err != nil {
			return nil, fmt.Errorf("concept %d: %w", i+1, err)
		}
		key := strings.ToLower(nc.Keyword)
		if seen[key] {
			res.Skipped++
			continue
		}
		_, cards, err := createConcept(ctx, tx, deck.ID, nc, now)
		if err != nil {
			return nil, fmt.Errorf("concept %q: %w", nc.Keyword, err)
		}
		seen[key] = true
		res.Concepts++
		res.Cards += len(cards)
	}
	return res, nil
}

// deckKeywords returns the lower-cased keywords of a deck's concepts.
func deckKeywords(ctx context.Context, ex dialect.ExecQuerier, deckID int64) (map[string]bool, error) {
	query, args := builder().Select("keyword").
		From(entsql.Table("concepts")).
		Where(entsql.EQ("deck_id", deckID)).
		Query()

	var rows entsql.Rows
	if err := ex.Query(ctx, query, args, &rows); err != nil {
		return nil, fmt.Errorf("list keywords: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var kw string
		if err := rows.Scan(&kw); err != nil {
			return nil, err
		}
		seen[strings.ToLower(kw)] = true
	}
	return seen, rows.Err()
}
