package session

import (
	"errors"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/abhisek/phraseweaver/internal/spacedrep"
	"github.com/abhisek/phraseweaver/internal/store"
)

var sessionTime = time.Date(2025, 3, 1, 9, 30, 0, 0, time.UTC)

func testCards(n int) []DueCard {
	cards := make([]DueCard, n)
	for i := range cards {
		cards[i] = DueCard{
			ID:    int64(i + 1),
			Kind:  store.KindRecognition,
			Front: "front",
			Back:  "back",
			State: spacedrep.NewReviewState(sessionTime.Add(-time.Hour)),
		}
	}
	return cards
}

func newTestManager(seed uint64) *Manager {
	clock := func() time.Time { return sessionTime }
	return NewManager(
		WithScheduler(spacedrep.NewScheduler(spacedrep.WithClock(clock))),
		WithRand(rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))),
		WithID("test-session"),
	)
}

func startedManager(t *testing.T, n int) *Manager {
	t.Helper()
	m := newTestManager(1)
	if err := m.Start(testCards(n)); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return m
}

func mustSubmit(t *testing.T, m *Manager, id int64, j spacedrep.Judgment) Outcome {
	t.Helper()
	out, err := m.Submit(id, j)
	if err != nil {
		t.Fatalf("Submit(%d, %s): %v", id, j, err)
	}
	return out
}

func TestNewManager_NotStarted(t *testing.T) {
	m := newTestManager(1)
	if m.Phase() != PhaseNotStarted {
		t.Errorf("Phase = %s, want not-started", m.Phase())
	}
	if _, ok := m.Next(); ok {
		t.Error("Next on unstarted session returned a card")
	}
	if m.ID() != "test-session" {
		t.Errorf("ID = %q, want test-session", m.ID())
	}
}

func TestNewManager_GeneratesID(t *testing.T) {
	a, b := NewManager(), NewManager()
	if a.ID() == "" || a.ID() == b.ID() {
		t.Errorf("IDs = %q, %q; want distinct non-empty", a.ID(), b.ID())
	}
}

func TestStart_Empty(t *testing.T) {
	m := newTestManager(1)
	err := m.Start(nil)
	if !errors.Is(err, ErrEmptySession) {
		t.Fatalf("Start(nil) = %v, want ErrEmptySession", err)
	}
	if m.Phase() != PhaseNotStarted {
		t.Errorf("Phase = %s, want not-started", m.Phase())
	}
	if err := m.Start(testCards(1)); err != nil {
		t.Errorf("Start after empty start: %v", err)
	}
}

func TestStart_Twice(t *testing.T) {
	m := startedManager(t, 2)
	if err := m.Start(testCards(2)); !errors.Is(err, ErrSessionStarted) {
		t.Errorf("second Start = %v, want ErrSessionStarted", err)
	}
}

func TestStart_DoesNotAliasInput(t *testing.T) {
	cards := testCards(5)
	m := newTestManager(3)
	if err := m.Start(cards); err != nil {
		t.Fatal(err)
	}
	for i, c := range cards {
		if c.ID != int64(i+1) {
			t.Fatalf("input reordered: cards[%d].ID = %d", i, c.ID)
		}
	}
}

func TestStart_ContainsEveryCard(t *testing.T) {
	m := startedManager(t, 8)
	if m.Remaining() != 8 {
		t.Fatalf("Remaining = %d, want 8", m.Remaining())
	}
	seen := map[int64]bool{}
	for {
		c, ok := m.Next()
		if !ok {
			break
		}
		seen[c.ID] = true
		mustSubmit(t, m, c.ID, spacedrep.Good)
	}
	if len(seen) != 8 {
		t.Errorf("saw %d distinct cards, want 8", len(seen))
	}
}

func TestNext_PendingIsStable(t *testing.T) {
	m := startedManager(t, 3)
	first, ok := m.Next()
	if !ok {
		t.Fatal("Next returned no card")
	}
	again, ok := m.Next()
	if !ok || again.ID != first.ID {
		t.Errorf("second Next = %d, want pending card %d", again.ID, first.ID)
	}
	cur, ok := m.Current()
	if !ok || cur.ID != first.ID {
		t.Errorf("Current = %d, want %d", cur.ID, first.ID)
	}
	if m.Remaining() != 3 {
		t.Errorf("Remaining = %d, want 3", m.Remaining())
	}
}

func TestSubmit_GoodSchedules(t *testing.T) {
	m := startedManager(t, 2)
	c, _ := m.Next()

	out := mustSubmit(t, m, c.ID, spacedrep.Good)
	if out.Kind != Scheduled {
		t.Errorf("Kind = %s, want scheduled", out.Kind)
	}
	if out.State.Repetitions != 1 {
		t.Errorf("Repetitions = %d, want 1", out.State.Repetitions)
	}
	if want := sessionTime.AddDate(0, 0, 1); !out.State.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want %v", out.State.DueAt, want)
	}
	if m.Remaining() != 1 {
		t.Errorf("Remaining = %d, want 1", m.Remaining())
	}
	if _, ok := m.Current(); ok {
		t.Error("card still pending after Submit")
	}
}

func TestSubmit_AgainRequeuesUnchanged(t *testing.T) {
	m := startedManager(t, 3)
	c, _ := m.Next()

	out := mustSubmit(t, m, c.ID, spacedrep.Again)
	if out.Kind != Requeued {
		t.Errorf("Kind = %s, want requeued", out.Kind)
	}
	if out.State != c.State {
		t.Errorf("State changed on requeue: %+v, want %+v", out.State, c.State)
	}
	if m.Remaining() != 3 {
		t.Errorf("Remaining = %d, want 3", m.Remaining())
	}
	if m.Phase() != PhaseInProgress {
		t.Errorf("Phase = %s, want in-progress", m.Phase())
	}
}

func TestSubmit_AgainNeverAtHead(t *testing.T) {
	for seed := uint64(0); seed < 200; seed++ {
		m := newTestManager(seed)
		if err := m.Start(testCards(4)); err != nil {
			t.Fatal(err)
		}
		c, _ := m.Next()
		mustSubmit(t, m, c.ID, spacedrep.Again)
		next, _ := m.Next()
		if next.ID == c.ID {
			t.Fatalf("seed %d: requeued card %d returned immediately", seed, c.ID)
		}
	}
}

func TestSubmit_AgainSingleCard(t *testing.T) {
	m := startedManager(t, 1)
	c, _ := m.Next()
	mustSubmit(t, m, c.ID, spacedrep.Again)

	next, ok := m.Next()
	if !ok || next.ID != c.ID {
		t.Fatalf("Next = %d, %v; want the lone card back", next.ID, ok)
	}
	mustSubmit(t, m, c.ID, spacedrep.Easy)
	if m.Phase() != PhaseComplete {
		t.Errorf("Phase = %s, want complete", m.Phase())
	}
}

func TestSubmit_RepeatedAgainSchedulesEachOnce(t *testing.T) {
	m := startedManager(t, 3)
	agains := map[int64]int{}
	scheduled := map[int64]int{}

	for {
		c, ok := m.Next()
		if !ok {
			break
		}
		j := spacedrep.Good
		if agains[c.ID] < 10 {
			j = spacedrep.Again
			agains[c.ID]++
		}
		out := mustSubmit(t, m, c.ID, j)
		if out.Kind == Scheduled {
			scheduled[c.ID]++
		}
	}

	if len(scheduled) != 3 {
		t.Fatalf("scheduled %d cards, want 3", len(scheduled))
	}
	for id, n := range scheduled {
		if n != 1 {
			t.Errorf("card %d scheduled %d times, want 1", id, n)
		}
	}
	s := m.Summary()
	if s.Requeues != 30 || s.Scheduled != 3 || s.Recalled != 0 {
		t.Errorf("summary = %+v, want 30 requeues, 3 scheduled, 0 recalled", s)
	}
}

func TestSubmit_ExhaustionCompletes(t *testing.T) {
	m := startedManager(t, 2)
	for i := 0; i < 2; i++ {
		c, ok := m.Next()
		if !ok {
			t.Fatalf("Next %d returned no card", i)
		}
		mustSubmit(t, m, c.ID, spacedrep.Good)
	}
	if m.Phase() != PhaseComplete {
		t.Errorf("Phase = %s, want complete", m.Phase())
	}
	if _, ok := m.Next(); ok {
		t.Error("Next after completion returned a card")
	}
	if _, err := m.Submit(1, spacedrep.Good); !errors.Is(err, ErrSessionComplete) {
		t.Errorf("Submit after completion = %v, want ErrSessionComplete", err)
	}
}

func TestSubmit_UnknownCard(t *testing.T) {
	m := startedManager(t, 2)

	_, err := m.Submit(1, spacedrep.Good)
	var uce *UnknownCardError
	if !errors.As(err, &uce) || uce.HasActive {
		t.Fatalf("Submit before Next = %v, want UnknownCardError without active card", err)
	}

	c, _ := m.Next()
	_, err = m.Submit(c.ID+100, spacedrep.Good)
	if !errors.Is(err, ErrUnknownCard) {
		t.Fatalf("Submit wrong card = %v, want ErrUnknownCard", err)
	}
	if !errors.As(err, &uce) || uce.Active != c.ID {
		t.Errorf("error = %v, want active card %d", err, c.ID)
	}
	if cur, ok := m.Current(); !ok || cur.ID != c.ID {
		t.Error("active card lost after rejected Submit")
	}
}

func TestSubmit_InvalidJudgment(t *testing.T) {
	m := startedManager(t, 2)
	c, _ := m.Next()

	for _, j := range []spacedrep.Judgment{0, 4, -1} {
		_, err := m.Submit(c.ID, j)
		if !errors.Is(err, spacedrep.ErrInvalidJudgment) {
			t.Errorf("Submit(%d) = %v, want ErrInvalidJudgment", j, err)
		}
	}
	if m.Remaining() != 2 {
		t.Errorf("Remaining = %d, want 2", m.Remaining())
	}
	if cur, ok := m.Current(); !ok || cur.ID != c.ID {
		t.Error("active card lost after invalid judgment")
	}
}

func TestSubmit_InvalidStateKeepsCardPending(t *testing.T) {
	m := newTestManager(1)
	cards := testCards(1)
	cards[0].State.EaseFactor = 0.5
	if err := m.Start(cards); err != nil {
		t.Fatal(err)
	}
	c, _ := m.Next()
	if _, err := m.Submit(c.ID, spacedrep.Good); err == nil {
		t.Fatal("expected error for invalid review state")
	}
	if _, ok := m.Current(); !ok {
		t.Error("card not pending after scheduler error")
	}
}

func TestSummary(t *testing.T) {
	m := startedManager(t, 3)
	judgments := []spacedrep.Judgment{spacedrep.Good, spacedrep.Again}
	seen := map[int64]bool{}
	for i := 0; ; i++ {
		c, ok := m.Next()
		if !ok {
			break
		}
		j := spacedrep.Easy
		if !seen[c.ID] && i < len(judgments) {
			j = judgments[i]
		}
		seen[c.ID] = true
		mustSubmit(t, m, c.ID, j)
	}

	s := m.Summary()
	if s.SessionID != "test-session" || s.Phase != PhaseComplete {
		t.Errorf("summary header = %q %s", s.SessionID, s.Phase)
	}
	if s.Cards != 3 || s.Scheduled != 3 || s.Remaining != 0 {
		t.Errorf("counts = cards %d scheduled %d remaining %d", s.Cards, s.Scheduled, s.Remaining)
	}
	if s.Requeues != 1 || s.Recalled != 2 {
		t.Errorf("requeues = %d recalled = %d, want 1 and 2", s.Requeues, s.Recalled)
	}
	if s.Counts[spacedrep.Again] != 1 || s.Counts[spacedrep.Good] != 1 || s.Counts[spacedrep.Easy] != 2 {
		t.Errorf("Counts = %v", s.Counts)
	}
	if got, want := s.Retention(), 2.0/3.0; got != want {
		t.Errorf("Retention = %v, want %v", got, want)
	}
}

func TestPhaseString(t *testing.T) {
	tests := []struct {
		p    SessionPhase
		want string
	}{
		{PhaseNotStarted, "not-started"},
		{PhaseInProgress, "in-progress"},
		{PhaseComplete, "complete"},
		{SessionPhase(9), "SessionPhase(9)"},
	}
	for _, tt := range tests {
		if got := tt.p.String(); got != tt.want {
			t.Errorf("%d.String() = %q, want %q", int(tt.p), got, tt.want)
		}
	}
}

func TestAbandon_PersistsLapses(t *testing.T) {
	clock := func() time.Time { return sessionTime }
	m := NewManager(
		WithScheduler(spacedrep.NewScheduler(
			spacedrep.WithClock(clock),
			spacedrep.WithLapseRetry(10*time.Minute),
		)),
		WithRand(rand.New(rand.NewPCG(7, 7))),
	)
	if err := m.Start(testCards(3)); err != nil {
		t.Fatal(err)
	}

	first, _ := m.Next()
	mustSubmit(t, m, first.ID, spacedrep.Again)
	second, _ := m.Next()
	mustSubmit(t, m, second.ID, spacedrep.Good)

	outs := m.Abandon()
	if len(outs) != 1 {
		t.Fatalf("Abandon returned %d outcomes, want 1", len(outs))
	}
	out := outs[0]
	if out.CardID != first.ID || out.Kind != Scheduled || out.Judgment != spacedrep.Again {
		t.Errorf("outcome = %+v, want Again for card %d", out, first.ID)
	}
	if out.State.Repetitions != 0 {
		t.Errorf("Repetitions = %d, want 0", out.State.Repetitions)
	}
	if want := sessionTime.Add(10 * time.Minute); !out.State.DueAt.Equal(want) {
		t.Errorf("DueAt = %v, want %v", out.State.DueAt, want)
	}

	if m.Phase() != PhaseComplete {
		t.Errorf("Phase = %s, want complete", m.Phase())
	}
	s := m.Summary()
	if s.Scheduled != 2 || s.Skipped != 1 || s.Recalled != 1 || s.Remaining != 0 {
		t.Errorf("summary = %+v", s)
	}
	if again := m.Abandon(); again != nil {
		t.Errorf("second Abandon = %v, want nil", again)
	}
}

func TestAbandon_PendingLapsedCard(t *testing.T) {
	m := startedManager(t, 2)
	for {
		c, _ := m.Next()
		out := mustSubmit(t, m, c.ID, spacedrep.Again)
		if out.Kind != Requeued {
			t.Fatalf("Kind = %s, want requeued", out.Kind)
		}
		// Stop once both cards have lapsed and one is pending again.
		if m.Summary().Requeues == 2 {
			break
		}
	}
	if _, ok := m.Next(); !ok {
		t.Fatal("no pending card")
	}

	outs := m.Abandon()
	if len(outs) != 2 {
		t.Errorf("Abandon returned %d outcomes, want 2 including the pending card", len(outs))
	}
	for _, out := range outs {
		if want := sessionTime.AddDate(0, 0, 1); !out.State.DueAt.Equal(want) {
			t.Errorf("card %d DueAt = %v, want %v", out.CardID, out.State.DueAt, want)
		}
	}
}

func TestAbandon_NotStarted(t *testing.T) {
	m := newTestManager(1)
	if outs := m.Abandon(); outs != nil {
		t.Errorf("Abandon on unstarted session = %v", outs)
	}
	if m.Phase() != PhaseNotStarted {
		t.Errorf("Phase = %s, want not-started", m.Phase())
	}
}
