package session

import (
	"testing"

	"github.com/abhisek/phraseweaver/internal/spacedrep"
	"github.com/abhisek/phraseweaver/internal/store"
)

func TestModeFor(t *testing.T) {
	tests := []struct {
		kind store.CardKind
		want Mode
	}{
		{store.KindRecognition, ModeReveal},
		{store.KindReverse, ModeTyped},
		{store.KindCloze, ModeTyped},
		{store.CardKind("picture"), ModeReveal},
	}
	for _, tt := range tests {
		if got := ModeFor(tt.kind); got != tt.want {
			t.Errorf("ModeFor(%q) = %s, want %s", tt.kind, got, tt.want)
		}
	}
}

func TestCheckTypedAnswer(t *testing.T) {
	tests := []struct {
		want, got string
		ok        bool
	}{
		{"hola", "hola", true},
		{"hola", "  HOLA ", true},
		{"Buenos días", "buenos días", true},
		{"hola", "ola", false},
		{"hola", "", false},
	}
	for _, tt := range tests {
		if got := CheckTypedAnswer(tt.want, tt.got); got != tt.ok {
			t.Errorf("CheckTypedAnswer(%q, %q) = %v, want %v", tt.want, tt.got, got, tt.ok)
		}
	}
}

func TestSuggestJudgment(t *testing.T) {
	if got := SuggestJudgment(true); got != spacedrep.Good {
		t.Errorf("SuggestJudgment(true) = %s, want good", got)
	}
	if got := SuggestJudgment(false); got != spacedrep.Again {
		t.Errorf("SuggestJudgment(false) = %s, want again", got)
	}
}
