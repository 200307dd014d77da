package session

import (
	"maps"
	"time"

	"github.com/abhisek/phraseweaver/internal/spacedrep"
)

// SessionSummary holds the figures shown when a session ends.
type SessionSummary struct {
	SessionID string
	Phase     SessionPhase
	Duration  time.Duration
	Cards     int // Distinct cards loaded at start
	Scheduled int // Cards that left the session with a new state
	Remaining int
	Skipped   int // Cards left unjudged by Abandon
	Requeues  int
	// Recalled counts scheduled cards that were never judged Again.
	Recalled int
	Counts   map[spacedrep.Judgment]int
}

// Retention returns the fraction of scheduled cards recalled on the first try.
func (s *SessionSummary) Retention() float64 {
	if s.Scheduled == 0 {
		return 0
	}
	return float64(s.Recalled) / float64(s.Scheduled)
}

// Summary reports the session's progress so far.
func (m *Manager) Summary() *SessionSummary {
	var d time.Duration
	switch m.phase {
	case PhaseInProgress:
		d = m.sched.Now().Sub(m.startedAt)
	case PhaseComplete:
		d = m.endedAt.Sub(m.startedAt)
	}

	return &SessionSummary{
		SessionID: m.id,
		Phase:     m.phase,
		Duration:  d,
		Cards:     m.cards,
		Scheduled: m.scheduled,
		Remaining: m.Remaining(),
		Skipped:   m.skipped,
		Requeues:  m.requeues,
		Recalled:  m.scheduled - m.lapsedScheduled(),
		Counts:    maps.Clone(m.counts),
	}
}

// lapsedScheduled counts cards that were judged Again before being scheduled.
func (m *Manager) lapsedScheduled() int {
	n := len(m.lapsed)
	if m.active != nil && m.lapsed[m.active.ID] {
		n--
	}
	for _, c := range m.queue {
		if m.lapsed[c.ID] {
			n--
		}
	}
	return n
}
