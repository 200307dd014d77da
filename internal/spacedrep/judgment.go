package spacedrep

import (
	"encoding"
	"fmt"
	"strings"
)

// Judgment is the learner's self-reported recall quality for a card.
type Judgment int

const (
	Again Judgment = iota + 1 // Failed or forgot.
	Good                      // Recalled correctly with effort.
	Easy                      // Recalled effortlessly.
)

var judgmentNames = [...]string{Again: "again", Good: "good", Easy: "easy"}

var judgmentByInput = map[string]Judgment{
	"again": Again,
	"good":  Good,
	"easy":  Easy,
	"a":     Again,
	"g":     Good,
	"e":     Easy,
	"1":     Again,
	"2":     Good,
	"3":     Easy,
}

var (
	_ fmt.Stringer             = Judgment(0)
	_ encoding.TextMarshaler   = Judgment(0)
	_ encoding.TextUnmarshaler = (*Judgment)(nil)
)

// Judgments lists every valid judgment from worst to best.
func Judgments() []Judgment {
	return []Judgment{Again, Good, Easy}
}

// IsValid reports whether j is one of Again, Good or Easy.
func (j Judgment) IsValid() bool {
	return j >= Again && j <= Easy
}

func (j Judgment) String() string {
	if j.IsValid() {
		return judgmentNames[j]
	}
	return fmt.Sprintf("Judgment(%d)", int(j))
}

// Quality maps the judgment onto the SM-2 quality scale.
func (j Judgment) Quality() (float64, error) {
	switch j {
	case Again:
		return 1, nil
	case Good:
		return 3, nil
	case Easy:
		return 5, nil
	}
	return 0, &InvalidJudgmentError{Value: j}
}

// ParseJudgment accepts the judgment names in any case, their first letter,
// or the button numbers 1 to 3.
func ParseJudgment(s string) (Judgment, error) {
	j, ok := judgmentByInput[strings.ToLower(strings.TrimSpace(s))]
	if !ok {
		return 0, &InvalidJudgmentError{Input: s, FromText: true}
	}
	return j, nil
}

func (j Judgment) MarshalText() ([]byte, error) {
	if !j.IsValid() {
		return nil, &InvalidJudgmentError{Value: j}
	}
	return []byte(judgmentNames[j]), nil
}

func (j *Judgment) UnmarshalText(text []byte) error {
	v, err := ParseJudgment(string(text))
	if err != nil {
		return err
	}
	*j = v
	return nil
}
