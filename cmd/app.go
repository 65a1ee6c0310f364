package cmd

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/trknhr/semantle/internal/config"
	"github.com/trknhr/semantle/internal/guess"
	"github.com/trknhr/semantle/internal/logger"
	"github.com/trknhr/semantle/internal/scoring"
	"github.com/trknhr/semantle/internal/store"
	"github.com/trknhr/semantle/internal/worker"
)

type rootFlags struct {
	server    string
	logLevel  string
	noJournal bool
}

// app bundles everything a command needs for one run.
type app struct {
	cfg       config.Config
	submitter *guess.Submitter
	journal   store.Journal
	recorder  *worker.Recorder
	sessionID string

	db        *sql.DB
	syncsDone <-chan struct{}
}

func loadConfig(flags *rootFlags) (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if flags.server != "" {
		cfg.Server.BaseURL = flags.server
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	if flags.noJournal {
		cfg.Journal.Enabled = false
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newApp loads configuration and wires the client, submitter and journal.
// console controls whether log lines are echoed to stderr.
func newApp(flags *rootFlags, console bool) (*app, error) {
	cfg, err := loadConfig(flags)
	if err != nil {
		return nil, err
	}
	if err := logger.Init(cfg.Log.File, cfg.Log.Level, console); err != nil {
		return nil, fmt.Errorf("failed to init logger: %w", err)
	}

	a := &app{
		cfg:       cfg,
		submitter: guess.NewSubmitter(scoring.NewHTTPClient(cfg.Server), guess.WithNormalize(cfg.Guess.Normalize)),
		journal:   store.NopJournal{},
		sessionID: uuid.NewString(),
	}

	if cfg.Journal.Enabled {
		db, err := store.Open(cfg.Journal.Path)
		if err != nil {
			// the journal is diagnostics only; play on without it
			logger.Warn("journal disabled: %v", err)
		} else {
			a.db = db
			a.journal = store.NewSQLJournal(db)
			a.syncsDone = worker.LaunchSyncWorkers(worker.NewJournalPruneWorker(a.journal, cfg.Journal.MaxEntries))
		}
	}
	a.recorder = worker.NewRecorder(a.journal, 64)

	logger.Debug("session %s against %s", a.sessionID, cfg.Server.BaseURL)
	return a, nil
}

func (a *app) record(res guess.Result, outcome guess.Outcome) {
	a.recorder.Enqueue(res.Entry(a.sessionID, outcome))
}

func (a *app) Close() {
	a.recorder.Close()
	if a.syncsDone != nil {
		<-a.syncsDone
	}
	if a.db != nil {
		a.db.Close()
	}
}
