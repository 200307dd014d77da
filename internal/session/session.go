package session

import (
	"math/rand/v2"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/abhisek/phraseweaver/internal/logging"
	"github.com/abhisek/phraseweaver/internal/spacedrep"
)

// Manager owns the review queue of one study session. It is driven by a
// single caller alternating Next and Submit and is not safe for concurrent
// use. It never writes to storage: Scheduled outcomes carry the state the
// caller must persist.
type Manager struct {
	id     string
	sched  *spacedrep.Scheduler
	rng    *rand.Rand
	logger *log.Logger

	phase  SessionPhase
	queue  []DueCard
	active *DueCard

	startedAt time.Time
	endedAt   time.Time
	cards     int
	scheduled int
	requeues  int
	skipped   int
	counts    map[spacedrep.Judgment]int
	lapsed    map[int64]bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithScheduler sets the scheduler applied to non-Again judgments. Its clock
// is also the session clock.
func WithScheduler(s *spacedrep.Scheduler) Option {
	return func(m *Manager) { m.sched = s }
}

// WithRand sets the random source used for the initial shuffle and requeues.
func WithRand(r *rand.Rand) Option {
	return func(m *Manager) { m.rng = r }
}

// WithLogger sets the logger for session lifecycle messages.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

// WithID overrides the generated session ID.
func WithID(id string) Option {
	return func(m *Manager) { m.id = id }
}

// NewManager creates a session in the not-started phase.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		id:     uuid.NewString(),
		counts: make(map[spacedrep.Judgment]int),
		lapsed: make(map[int64]bool),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.sched == nil {
		m.sched = spacedrep.NewScheduler()
	}
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if m.logger == nil {
		m.logger = logging.Discard()
	}
	m.logger = m.logger.With("session", m.id)
	return m
}

// ID returns the session's UUID.
func (m *Manager) ID() string { return m.id }

// Phase returns the current lifecycle phase.
func (m *Manager) Phase() SessionPhase { return m.phase }

// Remaining returns the number of cards still to be scheduled, including a
// pending card.
func (m *Manager) Remaining() int {
	n := len(m.queue)
	if m.active != nil {
		n++
	}
	return n
}

// Current returns the card handed out by Next and not yet judged.
func (m *Manager) Current() (DueCard, bool) {
	if m.active == nil {
		return DueCard{}, false
	}
	return *m.active, true
}

// Start loads the session's cards in random order. It returns
// ErrEmptySession, leaving the session not started, when cards is empty.
func (m *Manager) Start(cards []DueCard) error {
	if m.phase != PhaseNotStarted {
		return ErrSessionStarted
	}
	if len(cards) == 0 {
		return ErrEmptySession
	}

	m.queue = slices.Clone(cards)
	m.rng.Shuffle(len(m.queue), func(i, j int) {
		m.queue[i], m.queue[j] = m.queue[j], m.queue[i]
	})
	m.cards = len(cards)
	m.phase = PhaseInProgress
	m.startedAt = m.sched.Now()

	m.logger.Info("Session started", "cards", m.cards)
	return nil
}

// Next returns the card to present. Calling Next again before Submit returns
// the same card. It returns false once the session is complete or if it was
// never started.
func (m *Manager) Next() (DueCard, bool) {
	if m.phase != PhaseInProgress {
		return DueCard{}, false
	}
	if m.active != nil {
		return *m.active, true
	}
	if len(m.queue) == 0 {
		m.complete()
		return DueCard{}, false
	}

	card := m.queue[0]
	m.queue = m.queue[1:]
	m.active = &card
	return card, true
}

// Submit applies a judgment to the active card.
//
// Again puts the card back into the queue at a random position behind at
// least one other card when others remain; its state is untouched and
// nothing is to be persisted. Good and Easy run the scheduler, remove the
// card from the session and return the new state for the caller to save.
//
// An invalid judgment or a card other than the active one is rejected and
// the active card stays pending.
func (m *Manager) Submit(cardID int64, j spacedrep.Judgment) (Outcome, error) {
	if m.phase == PhaseComplete {
		return Outcome{}, ErrSessionComplete
	}
	if !j.IsValid() {
		return Outcome{}, &spacedrep.InvalidJudgmentError{Value: j}
	}
	if m.active == nil || m.active.ID != cardID {
		err := &UnknownCardError{CardID: cardID}
		if m.active != nil {
			err.Active, err.HasActive = m.active.ID, true
		}
		return Outcome{}, err
	}

	card := *m.active
	if j == spacedrep.Again {
		m.active = nil
		m.requeue(card)
		m.counts[j]++
		m.lapsed[card.ID] = true
		m.logger.Debug("Card requeued", "card", card.ID, "remaining", m.Remaining())
		return Outcome{Kind: Requeued, CardID: card.ID, Judgment: j, State: card.State}, nil
	}

	next, err := m.sched.Next(card.State, j)
	if err != nil {
		return Outcome{}, err
	}
	m.active = nil
	m.counts[j]++
	m.scheduled++
	m.logger.Debug("Card scheduled", "card", card.ID, "judgment", j, "due", next.DueAt)

	if len(m.queue) == 0 {
		m.complete()
	}
	return Outcome{Kind: Scheduled, CardID: card.ID, Judgment: j, State: next}, nil
}

// Abandon ends an in-progress session early. Cards that were judged Again
// and not yet scheduled are scheduled with Again so the lapse is kept; the
// returned outcomes must be persisted like any other Scheduled outcome.
// Cards never judged are left untouched.
func (m *Manager) Abandon() []Outcome {
	if m.phase != PhaseInProgress {
		return nil
	}

	pending := m.queue
	if m.active != nil {
		pending = append([]DueCard{*m.active}, pending...)
	}
	m.queue, m.active = nil, nil

	var outs []Outcome
	for _, card := range pending {
		if !m.lapsed[card.ID] {
			m.skipped++
			continue
		}
		next, err := m.sched.Next(card.State, spacedrep.Again)
		if err != nil {
			m.logger.Warn("Cannot schedule lapsed card", "card", card.ID, "err", err)
			delete(m.lapsed, card.ID)
			m.skipped++
			continue
		}
		m.scheduled++
		outs = append(outs, Outcome{Kind: Scheduled, CardID: card.ID, Judgment: spacedrep.Again, State: next})
	}

	m.logger.Info("Session abandoned", "lapses", len(outs), "skipped", m.skipped)
	m.complete()
	return outs
}

func (m *Manager) requeue(card DueCard) {
	pos := 0
	if n := len(m.queue); n > 0 {
		pos = 1 + m.rng.IntN(n)
	}
	m.queue = slices.Insert(m.queue, pos, card)
	m.requeues++
}

func (m *Manager) complete() {
	if m.phase == PhaseComplete {
		return
	}
	m.phase = PhaseComplete
	m.endedAt = m.sched.Now()
	m.logger.Info("Session complete",
		"cards", m.cards,
		"requeues", m.requeues,
		"duration", m.endedAt.Sub(m.startedAt).Round(time.Second),
	)
}
