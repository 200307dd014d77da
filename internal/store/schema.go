package store

import (
	"context"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS decks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE,
		lang_code TEXT NOT NULL,
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS concepts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		deck_id INTEGER NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
		keyword TEXT NOT NULL,
		translation TEXT NOT NULL,
		sentence TEXT NOT NULL DEFAULT '',
		image_path TEXT NOT NULL DEFAULT '',
		audio_path TEXT NOT NULL DEFAULT '',
		created_at TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS cards (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		concept_id INTEGER NOT NULL REFERENCES concepts(id) ON DELETE CASCADE,
		deck_id INTEGER NOT NULL REFERENCES decks(id) ON DELETE CASCADE,
		kind TEXT NOT NULL,
		front TEXT NOT NULL,
		back TEXT NOT NULL,
		due_at TEXT NOT NULL,
		interval_days REAL NOT NULL,
		ease_factor REAL NOT NULL,
		repetitions INTEGER NOT NULL,
		last_reviewed_at TEXT,
		UNIQUE (concept_id, kind)
	)`,
	`CREATE INDEX IF NOT EXISTS cards_deck_due ON cards (deck_id, due_at)`,
	`CREATE TABLE IF NOT EXISTS review_events (
		sequence INTEGER PRIMARY KEY,
		card_id INTEGER NOT NULL REFERENCES cards(id) ON DELETE CASCADE,
		deck_id INTEGER NOT NULL,
		session_id TEXT NOT NULL,
		judgment TEXT NOT NULL,
		interval_days REAL NOT NULL,
		ease_factor REAL NOT NULL,
		reviewed_at TEXT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS review_events_reviewed_at ON review_events (reviewed_at)`,
}

// migrate creates any missing tables and indexes.
func (s *Store) migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if err := s.drv.Exec(ctx, stmt, []any{}, nil); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	return nil
}
