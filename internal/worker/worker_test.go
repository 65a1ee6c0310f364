package worker_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"

	"github.com/trknhr/semantle/internal/store"
	"github.com/trknhr/semantle/internal/worker"
)

func TestJournalPruneWorker_NeedsReload(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	journal := store.NewMockJournal(ctrl)
	gomock.InOrder(
		journal.EXPECT().Count(gomock.Any()).Return(10, nil),
		journal.EXPECT().Count(gomock.Any()).Return(11, nil),
		journal.EXPECT().Count(gomock.Any()).Return(0, errors.New("locked")),
	)

	w := worker.NewJournalPruneWorker(journal, 10)
	assert.Equal(t, "journal", w.Key())
	assert.False(t, w.NeedsReload())
	assert.True(t, w.NeedsReload())
	assert.True(t, w.NeedsReload())
}

func TestJournalPruneWorker_Disabled(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	journal := store.NewMockJournal(ctrl)
	w := worker.NewJournalPruneWorker(journal, 0)
	assert.False(t, w.NeedsReload())
}

func TestLaunchSyncWorkers_Prunes(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	journal := store.NewMockJournal(ctrl)
	journal.EXPECT().Count(gomock.Any()).Return(50, nil)
	journal.EXPECT().Prune(gomock.Any(), 20).Return(int64(30), nil)

	done := worker.LaunchSyncWorkers(worker.NewJournalPruneWorker(journal, 20))

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sync workers did not finish")
	}
}

func TestRecorder_WritesInOrderAndFlushesOnClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	var mu sync.Mutex
	var got []string

	journal := store.NewMockJournal(ctrl)
	journal.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e store.Entry) error {
			mu.Lock()
			defer mu.Unlock()
			got = append(got, e.Guess)
			return nil
		}).
		Times(3)

	r := worker.NewRecorder(journal, 8)
	for _, g := range []string{"alpha", "beta", "gamma"} {
		assert.True(t, r.Enqueue(store.Entry{Guess: g}))
	}
	r.Close()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"alpha", "beta", "gamma"}, got)

	assert.False(t, r.Enqueue(store.Entry{Guess: "late"}))
	r.Close()
}

func TestRecorder_RecordErrorIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	journal := store.NewMockJournal(ctrl)
	journal.EXPECT().Record(gomock.Any(), gomock.Any()).Return(errors.New("disk full"))

	r := worker.NewRecorder(journal, 1)
	assert.True(t, r.Enqueue(store.Entry{Guess: "alpha"}))
	r.Close()
}

func TestRecorder_DropsWhenBufferFull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	started := make(chan string, 2)
	release := make(chan struct{})

	journal := store.NewMockJournal(ctrl)
	journal.EXPECT().
		Record(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, e store.Entry) error {
			started <- e.Guess
			<-release
			return nil
		}).
		Times(2)

	r := worker.NewRecorder(journal, 1)

	assert.True(t, r.Enqueue(store.Entry{Seq: 1, Guess: "alpha"}))
	select {
	case g := <-started:
		assert.Equal(t, "alpha", g)
	case <-time.After(time.Second):
		t.Fatal("writer never picked up the first entry")
	}

	// writer is stuck on alpha: one slot left in the buffer
	assert.True(t, r.Enqueue(store.Entry{Seq: 2, Guess: "beta"}))
	assert.False(t, r.Enqueue(store.Entry{Seq: 3, Guess: "gamma"}))

	close(release)
	r.Close()
	assert.Equal(t, "beta", <-started)
}

func TestRecorder_EnqueueAfterClose(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	r := worker.NewRecorder(store.NewMockJournal(ctrl), 4)
	r.Close()

	assert.NotPanics(t, func() {
		assert.False(t, r.Enqueue(store.Entry{Seq: 1, Guess: "alpha"}))
	})
	assert.NotPanics(t, r.Close)
}
