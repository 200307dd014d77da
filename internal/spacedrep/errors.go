package spacedrep

import (
	"errors"
	"fmt"
)

// ErrInvalidJudgment is matched by every *InvalidJudgmentError.
var ErrInvalidJudgment = errors.New("invalid judgment")

// InvalidJudgmentError reports a judgment outside {again, good, easy}.
// Input and FromText are set when the judgment was parsed from text.
type InvalidJudgmentError struct {
	Value    Judgment
	Input    string
	FromText bool
}

func (e *InvalidJudgmentError) Error() string {
	if e.FromText {
		return fmt.Sprintf("invalid judgment %q: want again, good or easy", e.Input)
	}
	return fmt.Sprintf("invalid judgment %d: want again, good or easy", int(e.Value))
}

func (e *InvalidJudgmentError) Is(target error) bool {
	return target == ErrInvalidJudgment
}
