package session

import "time"

// DefaultBatchSize caps how many due cards a session draws.
const DefaultBatchSize = 20

// Plan is the set of cards drawn for one session.
type Plan struct {
	DeckID  int64
	Cards   []DueCard
	BuiltAt time.Time
}

// Len returns the number of cards in the plan.
func (p *Plan) Len() int {
	if p == nil {
		return 0
	}
	return len(p.Cards)
}
