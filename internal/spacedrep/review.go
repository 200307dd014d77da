package spacedrep

import (
	"fmt"
	"math"
	"time"
)

// ReviewState holds the spaced repetition memory for a single card.
type ReviewState struct {
	Repetitions    int       `json:"repetitions" yaml:"repetitions"`
	Interval       float64   `json:"interval" yaml:"interval"`
	EaseFactor     float64   `json:"ease_factor" yaml:"ease_factor"`
	DueAt          time.Time `json:"due_at" yaml:"due_at"`
	LastReviewedAt time.Time `json:"last_reviewed_at,omitempty" yaml:"last_reviewed_at,omitempty"`
}

// NewReviewState returns the state every card starts with: no repetitions,
// a one-day interval, the default ease and due immediately.
func NewReviewState(now time.Time) ReviewState {
	return ReviewState{
		Repetitions: 0,
		Interval:    InitialInterval,
		EaseFactor:  DefaultEaseFactor,
		DueAt:       now.UTC(),
	}
}

// Validate reports whether the state satisfies the scheduler's invariants.
func (rs ReviewState) Validate() error {
	switch {
	case rs.Repetitions < 0:
		return fmt.Errorf("repetitions %d is negative", rs.Repetitions)
	case !(rs.Interval > 0) || math.IsInf(rs.Interval, 0):
		return fmt.Errorf("interval %v is not a positive finite number", rs.Interval)
	case !(rs.EaseFactor >= MinEaseFactor) || math.IsInf(rs.EaseFactor, 0):
		return fmt.Errorf("ease factor %v is not a finite number of at least %v", rs.EaseFactor, MinEaseFactor)
	}
	return nil
}

// IsDue returns true if the card is due for review (at or past the due date).
func (rs ReviewState) IsDue(now time.Time) bool {
	return !now.Before(rs.DueAt)
}

// OverdueDays returns how many days past due the card is. Returns 0 if not yet due.
func (rs ReviewState) OverdueDays(now time.Time) float64 {
	if now.Before(rs.DueAt) {
		return 0
	}
	return now.Sub(rs.DueAt).Hours() / 24.0
}

// DaysUntilReview returns the number of days until the next review.
// Returns 0 if already due.
func (rs ReviewState) DaysUntilReview(now time.Time) int {
	if rs.IsDue(now) {
		return 0
	}
	return int(rs.DueAt.Sub(now).Hours()/24.0) + 1
}

// IsMature returns true once the interval has grown past MatureIntervalDays.
func (rs ReviewState) IsMature() bool {
	return rs.Interval >= MatureIntervalDays
}

// ReviewStatus describes a card's review status for display.
type ReviewStatus string

const (
	StatusNew      ReviewStatus = "new"
	StatusLearning ReviewStatus = "learning"
	StatusDue      ReviewStatus = "due"
	StatusReview   ReviewStatus = "review"
	StatusMature   ReviewStatus = "mature"
)

// Status returns the review status for display.
func (rs ReviewState) Status(now time.Time) ReviewStatus {
	switch {
	case rs.LastReviewedAt.IsZero():
		return StatusNew
	case rs.IsDue(now):
		return StatusDue
	case rs.Repetitions == 0:
		return StatusLearning
	case rs.IsMature():
		return StatusMature
	}
	return StatusReview
}
