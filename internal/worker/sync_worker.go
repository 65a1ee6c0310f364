package worker

import (
	"sync"

	"github.com/trknhr/semantle/internal/logger"
)

type SyncWorker interface {
	Key() string
	NeedsReload() bool
	Sync() error
}

// LaunchSyncWorkers runs each worker in its own goroutine. The returned
// channel is closed once all of them have finished.
func LaunchSyncWorkers(syncers ...SyncWorker) <-chan struct{} {
	var wg sync.WaitGroup
	for _, s := range syncers {
		wg.Add(1)
		go func(s SyncWorker) {
			defer wg.Done()
			if !s.NeedsReload() {
				logger.Debug("[%s] sync skipped (up-to-date)", s.Key())
				return
			}
			if err := s.Sync(); err != nil {
				logger.Error("[%s] sync failed: %v", s.Key(), err)
			} else {
				logger.Info("[%s] sync done", s.Key())
			}
		}(s)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	return done
}
