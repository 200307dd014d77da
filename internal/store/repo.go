package store

import (
	"errors"
	"fmt"
	"time"

	"github.com/abhisek/phraseweaver/internal/spacedrep"
)

var (
	// ErrNotFound is returned when a deck, concept or card does not exist.
	ErrNotFound = errors.New("not found")

	// ErrDeckExists is returned by CreateDeck for a duplicate name.
	ErrDeckExists = errors.New("deck already exists")
)

// Deck is a named collection of concepts in one target language.
type Deck struct {
	ID        int64
	Name      string
	LangCode  string
	CreatedAt time.Time
}

// Concept is a word or phrase the learner studies. Each concept owns
// between two and three cards.
type Concept struct {
	ID          int64
	DeckID      int64
	Keyword     string
	Translation string
	Sentence    string
	ImagePath   string
	AudioPath   string
	CreatedAt   time.Time
}

// CardKind identifies which face of a concept a card drills.
type CardKind string

const (
	KindRecognition CardKind = "recognition" // keyword shown, translation recalled
	KindReverse     CardKind = "reverse"     // translation shown, keyword typed
	KindCloze       CardKind = "cloze"       // sentence with the keyword blanked
)

// ClozeBlank replaces the keyword in a cloze card's front.
const ClozeBlank = "_____"

// Card is a reviewable face of a concept with its scheduling state.
type Card struct {
	ID        int64
	ConceptID int64
	DeckID    int64
	Kind      CardKind
	Front     string
	Back      string
	State     spacedrep.ReviewState
}

// ReviewEvent records one scheduled judgment. Requeues inside a session are
// not recorded.
type ReviewEvent struct {
	Sequence   int64
	CardID     int64
	DeckID     int64
	SessionID  string
	Judgment   spacedrep.Judgment
	Interval   float64
	EaseFactor float64
	ReviewedAt time.Time
}

// DayCount is the number of reviews on one UTC calendar day.
type DayCount struct {
	Day   time.Time
	Count int
}

// DeckStats aggregates card counts for a deck.
type DeckStats struct {
	Deck   Deck
	Cards  int
	Due    int
	Mature int
}

// timeLayout is RFC 3339 in UTC, which sorts correctly as text.
const timeLayout = "2006-01-02T15:04:05Z"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse time %q: %w", s, err)
	}
	return t.UTC(), nil
}

// parseNullTime maps an empty column to the zero time.
func parseNullTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return parseTime(s)
}

func formatNullTime(t time.Time) any {
	if t.IsZero() {
		return nil
	}
	return formatTime(t)
}
