// Package guess sends player guesses to the scoring service and keeps the
// displayed score in step with the most recent submission.
//
// Every submission takes a ticket carrying a sequence number. Responses can
// complete in any order; only the result for the newest ticket is allowed to
// change the output, older ones are reported as stale and dropped.
package guess

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/trknhr/semantle/internal/logger"
	"github.com/trknhr/semantle/internal/scoring"
)

var ErrEmptyGuess = errors.New("guess is empty")

type Outcome int

const (
	Applied Outcome = iota
	Stale
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Applied:
		return "applied"
	case Stale:
		return "stale"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type Ticket struct {
	Seq   uint64
	Guess string
}

type Result struct {
	Ticket
	Score   float64
	Err     error
	Latency time.Duration
}

type Option func(*Submitter)

// WithNormalize trims and lower-cases guesses before sending them.
func WithNormalize(on bool) Option {
	return func(s *Submitter) { s.normalize = on }
}

type Submitter struct {
	client    scoring.Client
	normalize bool

	mu     sync.Mutex
	seq    uint64
	output string
}

func NewSubmitter(client scoring.Client, opts ...Option) *Submitter {
	s := &Submitter{client: client}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Begin validates text and issues the next ticket. An empty guess is
// rejected without consuming a sequence number.
func (s *Submitter) Begin(text string) (Ticket, error) {
	if s.normalize {
		text = strings.ToLower(strings.TrimSpace(text))
	}
	if text == "" {
		return Ticket{}, ErrEmptyGuess
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return Ticket{Seq: s.seq, Guess: text}, nil
}

// Send performs the single scoring request for t. It does not touch the
// output; pass the result to Apply.
func (s *Submitter) Send(ctx context.Context, t Ticket) Result {
	start := time.Now()
	res := Result{Ticket: t}

	resp, err := s.client.Score(ctx, t.Guess)
	res.Latency = time.Since(start)
	switch {
	case err != nil:
		res.Err = err
	case resp == nil:
		res.Err = fmt.Errorf("%w: empty response", scoring.ErrMalformed)
	default:
		res.Score = resp.Score
	}
	return res
}

// Apply updates the output when res is a success for the newest ticket.
func (s *Submitter) Apply(res Result) Outcome {
	if res.Err != nil {
		logger.Error("[guess #%d] %q failed (%s): %v", res.Seq, res.Guess, scoring.Kind(res.Err), res.Err)
		return Failed
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if res.Seq != s.seq {
		logger.Debug("[guess #%d] %q discarded, #%d is newer", res.Seq, res.Guess, s.seq)
		return Stale
	}
	s.output = FormatScore(res.Score)
	logger.Debug("[guess #%d] %q scored %v in %s", res.Seq, res.Guess, res.Score, res.Latency)
	return Applied
}

// Submit runs Begin, Send and Apply in sequence.
func (s *Submitter) Submit(ctx context.Context, text string) (Result, Outcome, error) {
	t, err := s.Begin(text)
	if err != nil {
		return Result{}, Failed, err
	}
	res := s.Send(ctx, t)
	return res, s.Apply(res), nil
}

func (s *Submitter) StartGame(ctx context.Context) error {
	if err := s.client.StartGame(ctx); err != nil {
		logger.Error("start game failed (%s): %v", scoring.Kind(err), err)
		return err
	}
	logger.Info("game started successfully")
	return nil
}

func (s *Submitter) Output() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.output
}

// Latest is the sequence number of the newest ticket, 0 before any.
func (s *Submitter) Latest() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.seq
}

// winTolerance absorbs float32 rounding in the server's similarity for the
// secret word itself.
const winTolerance = 1e-6

// IsWin reports whether score is the exact-match score.
func IsWin(score, winScore float64) bool {
	return score >= winScore-winTolerance
}

func FormatScore(score float64) string {
	return "Similarity Score: " + strconv.FormatFloat(score, 'f', -1, 64)
}
