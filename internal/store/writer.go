package store

import (
	"context"
	"errors"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/abhisek/phraseweaver/internal/logging"
	"github.com/abhisek/phraseweaver/internal/spacedrep"
)

// ErrWriterClosed is returned by Submit after Close.
var ErrWriterClosed = errors.New("writer closed")

// writeQueueSize bounds how many reviews may wait for the database.
const writeQueueSize = 64

type pendingReview struct {
	event ReviewEvent
	state spacedrep.ReviewState
}

// Writer persists scheduled reviews in the background so a session never
// waits for the database. Writes apply in submission order. A failed write
// is logged and skipped; Close reports the first failure.
type Writer struct {
	store  *Store
	logger *log.Logger
	ctx    context.Context

	mu     sync.Mutex
	closed bool
	queue  chan pendingReview
	g      errgroup.Group
}

// NewWriter starts a writer for s. A nil logger discards output.
func NewWriter(ctx context.Context, s *Store, logger *log.Logger) *Writer {
	if logger == nil {
		logger = logging.Discard()
	}
	w := &Writer{
		store:  s,
		logger: logger,
		ctx:    ctx,
		queue:  make(chan pendingReview, writeQueueSize),
	}
	w.g.Go(w.run)
	return w
}

// Submit queues a card's new state and its review event. It blocks only
// when the queue is full.
func (w *Writer) Submit(ev ReviewEvent, rs spacedrep.ReviewState) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return ErrWriterClosed
	}
	w.queue <- pendingReview{event: ev, state: rs}
	return nil
}

// Close waits for queued writes to finish and returns the first error.
func (w *Writer) Close() error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	w.mu.Unlock()
	return w.g.Wait()
}

func (w *Writer) run() error {
	var first error
	for p := range w.queue {
		if err := w.store.RecordReview(w.ctx, &p.event, p.state); err != nil {
			w.logger.Error("Failed to save review", "card", p.event.CardID, "err", err)
			if first == nil {
				first = err
			}
			continue
		}
		w.logger.Debug("Review saved", "card", p.event.CardID, "seq", p.event.Sequence)
	}
	return first
}
