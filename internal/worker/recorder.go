package worker

import (
	"context"
	"sync"
	"time"

	"github.com/trknhr/semantle/internal/logger"
	"github.com/trknhr/semantle/internal/store"
)

const recordTimeout = 5 * time.Second

// Recorder writes journal entries from a background goroutine so callers on
// the UI loop never wait on the database.
type Recorder struct {
	journal store.Journal
	ch      chan store.Entry
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewRecorder(journal store.Journal, buffer int) *Recorder {
	r := &Recorder{
		journal: journal,
		ch:      make(chan store.Entry, buffer),
		done:    make(chan struct{}),
	}
	go r.run()
	return r
}

func (r *Recorder) run() {
	defer close(r.done)
	for e := range r.ch {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := r.journal.Record(ctx, e); err != nil {
			logger.Error("failed to record guess #%d %q: %v", e.Seq, e.Guess, err)
		}
		cancel()
	}
}

// Enqueue hands e to the writer. It never blocks: when the buffer is full or
// the recorder is closed the entry is dropped and false is returned.
func (r *Recorder) Enqueue(e store.Entry) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return false
	}
	select {
	case r.ch <- e:
		return true
	default:
		logger.Warn("journal buffer full, dropping guess #%d", e.Seq)
		return false
	}
}

// Close flushes pending entries and waits for the writer to exit.
func (r *Recorder) Close() {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.ch)
	}
	r.mu.Unlock()
	<-r.done
}
