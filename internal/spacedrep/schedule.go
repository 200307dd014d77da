package spacedrep

// DefaultEaseFactor is the ease factor every new card starts with.
const DefaultEaseFactor = 2.5

// MinEaseFactor is the hard floor applied after every update.
const MinEaseFactor = 1.3

// InitialInterval is the interval in days for a new card, for the first
// successful review and for a card reset by Again.
const InitialInterval = 1.0

// SecondInterval is the interval in days after the second consecutive success.
const SecondInterval = 6.0

// MatureIntervalDays is the interval at which a card counts as learned.
const MatureIntervalDays = 21.0
