package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// Entry is one submission as seen by the client. Score is nil unless the
// server returned one.
type Entry struct {
	SessionID string
	Seq       uint64
	Guess     string
	Score     *float64
	Outcome   string
	Error     string
	Latency   time.Duration
	CreatedAt time.Time
}

//go:generate mockgen -destination=mock_journal.go -package=store . Journal
type Journal interface {
	Record(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
	Count(ctx context.Context) (int, error)
	Prune(ctx context.Context, keep int) (int64, error)
}

type SQLJournal struct {
	db *sql.DB
}

func NewSQLJournal(db *sql.DB) *SQLJournal {
	return &SQLJournal{db: db}
}

func (j *SQLJournal) Record(ctx context.Context, e Entry) error {
	var score sql.NullFloat64
	if e.Score != nil {
		score = sql.NullFloat64{Float64: *e.Score, Valid: true}
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := j.db.ExecContext(ctx, `
		INSERT INTO guesses (session_id, seq, guess, score, outcome, error, latency_ms, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, int64(e.Seq), e.Guess, score, e.Outcome, e.Error, e.Latency.Milliseconds(), created.UTC().Format(time.RFC3339Nano))
	return err
}

// Recent returns up to limit entries, newest first.
func (j *SQLJournal) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := j.db.QueryContext(ctx, `
		SELECT session_id, seq, guess, score, outcome, error, latency_ms, created_at
		FROM guesses
		ORDER BY id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			seq       int64
			score     sql.NullFloat64
			latencyMs int64
			created   string
		)
		if err := rows.Scan(&e.SessionID, &seq, &e.Guess, &score, &e.Outcome, &e.Error, &latencyMs, &created); err != nil {
			return nil, err
		}
		e.Seq = uint64(seq)
		if score.Valid {
			v := score.Float64
			e.Score = &v
		}
		e.Latency = time.Duration(latencyMs) * time.Millisecond
		t, err := time.Parse(time.RFC3339Nano, created)
		if err != nil {
			return nil, fmt.Errorf("guess #%d: bad created_at %q: %w", seq, created, err)
		}
		e.CreatedAt = t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (j *SQLJournal) Count(ctx context.Context) (int, error) {
	var n int
	err := j.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM guesses`).Scan(&n)
	return n, err
}

// Prune deletes all but the newest keep rows.
func (j *SQLJournal) Prune(ctx context.Context, keep int) (int64, error) {
	res, err := j.db.ExecContext(ctx, `
		DELETE FROM guesses
		WHERE id NOT IN (SELECT id FROM guesses ORDER BY id DESC LIMIT ?)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// NopJournal is used when journaling is turned off.
type NopJournal struct{}

func (NopJournal) Record(context.Context, Entry) error          { return nil }
func (NopJournal) Recent(context.Context, int) ([]Entry, error) { return nil, nil }
func (NopJournal) Count(context.Context) (int, error)           { return 0, nil }
func (NopJournal) Prune(context.Context, int) (int64, error)    { return 0, nil }
