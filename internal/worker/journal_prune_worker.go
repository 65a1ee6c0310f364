package worker

import (
	"context"
	"time"

	"github.com/trknhr/semantle/internal/logger"
	"github.com/trknhr/semantle/internal/store"
)

const pruneTimeout = 30 * time.Second

// JournalPruneWorker trims the journal down to the newest keep rows.
// keep == 0 disables pruning.
type JournalPruneWorker struct {
	journal store.Journal
	keep    int
}

func NewJournalPruneWorker(journal store.Journal, keep int) *JournalPruneWorker {
	return &JournalPruneWorker{journal: journal, keep: keep}
}

func (p *JournalPruneWorker) Key() string { return "journal" }

func (p *JournalPruneWorker) NeedsReload() bool {
	if p.keep <= 0 {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	n, err := p.journal.Count(ctx)
	if err != nil {
		return true // conservative: try to prune if count fails
	}
	return n > p.keep
}

func (p *JournalPruneWorker) Sync() error {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()

	deleted, err := p.journal.Prune(ctx, p.keep)
	if err != nil {
		return err
	}
	logger.Debug("pruned %d journal entries", deleted)
	return nil
}
