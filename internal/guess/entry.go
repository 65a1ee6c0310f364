package guess

import (
	"time"

	"github.com/trknhr/semantle/internal/store"
)

// Entry converts a handled result into a journal row.
func (r Result) Entry(sessionID string, outcome Outcome) store.Entry {
	e := store.Entry{
		SessionID: sessionID,
		Seq:       r.Seq,
		Guess:     r.Guess,
		Outcome:   outcome.String(),
		Latency:   r.Latency,
		CreatedAt: time.Now(),
	}
	if r.Err != nil {
		e.Error = r.Err.Error()
	} else {
		score := r.Score
		e.Score = &score
	}
	return e
}
