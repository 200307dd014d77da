package session

import (
	"errors"
	"fmt"
)

var (
	// ErrEmptySession means there was nothing to review. Callers should treat
	// it as a normal result rather than a failure.
	ErrEmptySession = errors.New("no cards due for review")

	// ErrSessionStarted is returned by Start on a session that was already started.
	ErrSessionStarted = errors.New("session already started")

	// ErrSessionComplete is returned by Submit once every card has been scheduled.
	ErrSessionComplete = errors.New("session complete")

	// ErrUnknownCard is matched by every *UnknownCardError.
	ErrUnknownCard = errors.New("unknown card")
)

// UnknownCardError reports a judgment for a card that is not the one most
// recently returned by Next. It indicates a bug in the caller.
type UnknownCardError struct {
	CardID    int64
	Active    int64
	HasActive bool
}

func (e *UnknownCardError) Error() string {
	if !e.HasActive {
		return fmt.Sprintf("card %d submitted with no active card", e.CardID)
	}
	return fmt.Sprintf("card %d is not the active card %d", e.CardID, e.Active)
}

func (e *UnknownCardError) Is(target error) bool {
	return target == ErrUnknownCard
}
