package spacedrep

import (
	"fmt"
	"math"
	"time"
)

// ComputeNextState applies one judgment to a card's review state using the
// SM-2 update and returns the new state. It has no side effects; now is the
// review time and only its UTC value is used.
//
// The interval is rounded half away from zero to whole days when computing
// DueAt, while the stored Interval keeps its fractional part so later
// reviews compound on the exact value.
func ComputeNextState(cur ReviewState, j Judgment, now time.Time) (ReviewState, error) {
	q, err := j.Quality()
	if err != nil {
		return cur, err
	}
	if err := cur.Validate(); err != nil {
		return cur, fmt.Errorf("invalid review state: %w", err)
	}

	next := cur
	if j == Again {
		next.Repetitions = 0
		next.Interval = InitialInterval
	} else {
		next.Repetitions++
		switch next.Repetitions {
		case 1:
			next.Interval = InitialInterval
		case 2:
			next.Interval = SecondInterval
		default:
			// Growth uses the ease from before this review.
			next.Interval = cur.Interval * cur.EaseFactor
		}
	}
	next.EaseFactor = adjustEase(cur.EaseFactor, q)

	now = now.UTC()
	next.LastReviewedAt = now
	next.DueAt = now.AddDate(0, 0, RoundDays(next.Interval))
	return next, nil
}

// adjustEase applies EF' = EF + (0.1 - (5-q)(0.08 + (5-q)0.02)) and the floor.
func adjustEase(ease, q float64) float64 {
	ease += 0.1 - (5-q)*(0.08+(5-q)*0.02)
	if ease < MinEaseFactor {
		ease = MinEaseFactor
	}
	return ease
}

// RoundDays rounds an interval to whole days, half away from zero.
func RoundDays(interval float64) int {
	return int(math.Round(interval))
}

// Scheduler computes review states against its own clock.
type Scheduler struct {
	now        func() time.Time
	lapseRetry time.Duration
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock replaces time.Now as the review time source.
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) { s.now = now }
}

// WithLapseRetry makes a card judged Again due after d instead of after its
// one-day interval. Zero disables it.
func WithLapseRetry(d time.Duration) Option {
	return func(s *Scheduler) { s.lapseRetry = d }
}

// NewScheduler creates a Scheduler. Without options it uses time.Now and the
// one-day reset for Again.
func NewScheduler(opts ...Option) *Scheduler {
	s := &Scheduler{now: time.Now}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Next returns the state following a judgment made now.
func (s *Scheduler) Next(cur ReviewState, j Judgment) (ReviewState, error) {
	next, err := ComputeNextState(cur, j, s.now())
	if err != nil {
		return next, err
	}
	if j == Again && s.lapseRetry > 0 {
		next.DueAt = next.LastReviewedAt.Add(s.lapseRetry)
	}
	return next, nil
}

// Now returns the scheduler's current time in UTC.
func (s *Scheduler) Now() time.Time {
	return s.now().UTC()
}
