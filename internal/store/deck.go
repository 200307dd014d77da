package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
)

var deckColumns = []string{"id", "name", "lang_code", "created_at"}

// CreateDeck adds a deck. Names are unique.
func (s *Store) CreateDeck(ctx context.Context, name, langCode string, now time.Time) (*Deck, error) {
	return insertDeck(ctx, s.drv, name, langCode, now)
}

func insertDeck(ctx context.Context, ex dialect.ExecQuerier, name, langCode string, now time.Time) (*Deck, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("create deck: name is required")
	}

	query, args := builder().Insert("decks").
		Columns("name", "lang_code", "created_at").
		Values(name, langCode, formatTime(now)).
		Query()

	var res sql.Result
	if err := ex.Exec(ctx, query, args, &res); err != nil {
		if isUniqueViolation(err) {
			return nil, fmt.Errorf("create deck %q: %w", name, ErrDeckExists)
		}
		return nil, fmt.Errorf("create deck %q: %w", name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("create deck %q: %w", name, err)
	}
	return &Deck{ID: id, Name: name, LangCode: langCode, CreatedAt: now.UTC().Truncate(time.Second)}, nil
}

// ListDecks returns every deck ordered by name.
func (s *Store) ListDecks(ctx context.Context) ([]Deck, error) {
	query, args := builder().Select(deckColumns...).
		From(entsql.Table("decks")).
		OrderBy("name").
		Query()
	decks, err := queryDecks(ctx, s.drv, query, args)
	if err != nil {
		return nil, fmt.Errorf("list decks: %w", err)
	}
	return decks, nil
}

// DeckByName looks up a deck by its exact name.
func (s *Store) DeckByName(ctx context.Context, name string) (*Deck, error) {
	return deckByName(ctx, s.drv, name)
}

func deckByName(ctx context.Context, ex dialect.ExecQuerier, name string) (*Deck, error) {
	query, args := builder().Select(deckColumns...).
		From(entsql.Table("decks")).
		Where(entsql.EQ("name", name)).
		Query()
	decks, err := queryDecks(ctx, ex, query, args)
	if err != nil {
		return nil, fmt.Errorf("get deck %q: %w", name, err)
	}
	if len(decks) == 0 {
		return nil, fmt.Errorf("deck %q: %w", name, ErrNotFound)
	}
	return &decks[0], nil
}

// DeleteDeck removes a deck with its concepts, cards and history.
func (s *Store) DeleteDeck(ctx context.Context, id int64) error {
	query, args := builder().Delete("decks").Where(entsql.EQ("id", id)).Query()
	var res sql.Result
	if err := s.drv.Exec(ctx, query, args, &res); err != nil {
		return fmt.Errorf("delete deck %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("deck %d: %w", id, ErrNotFound)
	}
	return nil
}

// DeckStats counts the cards of a deck that exist, are due and are mature.
func (s *Store) DeckStats(ctx context.Context, deck Deck, now time.Time) (*DeckStats, error) {
	total, err := s.CountCards(ctx, deck.ID)
	if err != nil {
		return nil, err
	}
	due, err := s.CountDue(ctx, deck.ID, now)
	if err != nil {
		return nil, err
	}
	mature, err := s.CountMature(ctx, deck.ID)
	if err != nil {
		return nil, err
	}
	return &DeckStats{Deck: deck, Cards: total, Due: due, Mature: mature}, nil
}

func queryDecks(ctx context.Context, ex dialect.ExecQuerier, query string, args []any) ([]Deck, error) {
	var rows entsql.Rows
	if err := ex.Query(ctx, query, args, &rows); err != nil {
		return nil, err
	}
	defer rows.Close()

	var decks []Deck
	for rows.Next() {
		var (
			d       Deck
			created string
		)
		if err := rows.Scan(&d.ID, &d.Name, &d.LangCode, &created); err != nil {
			return nil, err
		}
		t, err := parseTime(created)
		if err != nil {
			return nil, err
		}
		d.CreatedAt = t
		decks = append(decks, d)
	}
	return decks, rows.Err()
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
