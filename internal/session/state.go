package session

import (
	"fmt"

	"github.com/abhisek/phraseweaver/internal/spacedrep"
	"github.com/abhisek/phraseweaver/internal/store"
)

// SessionPhase represents the lifecycle stage of a session.
type SessionPhase int

const (
	PhaseNotStarted SessionPhase = iota // Created, Start not yet accepted
	PhaseInProgress                     // Cards remain in the queue or one is pending
	PhaseComplete                       // Every card was scheduled
)

func (p SessionPhase) String() string {
	switch p {
	case PhaseNotStarted:
		return "not-started"
	case PhaseInProgress:
		return "in-progress"
	case PhaseComplete:
		return "complete"
	}
	return fmt.Sprintf("SessionPhase(%d)", int(p))
}

// DueCard is a card drawn into a session together with its review state.
type DueCard struct {
	ID    int64
	Kind  store.CardKind
	Front string
	Back  string
	State spacedrep.ReviewState
}

// Mode returns how the card should be presented.
func (c DueCard) Mode() Mode {
	return ModeFor(c.Kind)
}

// OutcomeKind tells the caller what happened to a judged card.
type OutcomeKind int

const (
	// Requeued means the card went back into the queue and nothing needs saving.
	Requeued OutcomeKind = iota + 1
	// Scheduled means the card left the session and State must be persisted.
	Scheduled
)

func (k OutcomeKind) String() string {
	switch k {
	case Requeued:
		return "requeued"
	case Scheduled:
		return "scheduled"
	}
	return fmt.Sprintf("OutcomeKind(%d)", int(k))
}

// Outcome is the result of submitting a judgment.
type Outcome struct {
	Kind     OutcomeKind
	CardID   int64
	Judgment spacedrep.Judgment
	// State is the unchanged state for Requeued and the new state for Scheduled.
	State spacedrep.ReviewState
}
