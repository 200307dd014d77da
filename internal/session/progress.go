package session

import (
	"strings"

	"github.com/abhisek/phraseweaver/internal/spacedrep"
	"github.com/abhisek/phraseweaver/internal/store"
)

// Mode is how a card is presented to the learner.
type Mode int

const (
	// ModeReveal shows the front, then the back on request, then asks for a judgment.
	ModeReveal Mode = iota + 1
	// ModeTyped asks the learner to type the back before asking for a judgment.
	ModeTyped
)

func (m Mode) String() string {
	if m == ModeTyped {
		return "typed"
	}
	return "reveal"
}

// ModeFor picks the presentation mode for a card kind. Unknown kinds are revealed.
func ModeFor(kind store.CardKind) Mode {
	switch kind {
	case store.KindReverse, store.KindCloze:
		return ModeTyped
	}
	return ModeReveal
}

// CheckTypedAnswer compares a typed answer with the expected one, ignoring
// case and surrounding whitespace.
func CheckTypedAnswer(want, got string) bool {
	return strings.EqualFold(strings.TrimSpace(want), strings.TrimSpace(got))
}

// SuggestJudgment proposes a judgment for a checked typed answer. The learner
// still makes the final call.
func SuggestJudgment(correct bool) spacedrep.Judgment {
	if correct {
		return spacedrep.Good
	}
	return spacedrep.Again
}
