package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/MrSnakeDoc/pinsync/internal/domain"
	"github.com/MrSnakeDoc/pinsync/internal/logger"
	"github.com/MrSnakeDoc/pinsync/internal/pipeline"
)

type countingSource struct {
	calls atomic.Int64
}

func (c *countingSource) FetchDocuments(context.Context, string, string) ([]domain.Document, error) {
	c.calls.Add(1)
	return nil, nil
}

type nopSink struct{}

func (nopSink) Add(context.Context, domain.Submission) error { return nil }

type memStore struct{ value string }

func (m *memStore) Load(context.Context) (string, error)    { return m.value, nil }
func (m *memStore) Save(_ context.Context, ts string) error { m.value = ts; return nil }
func (m *memStore) Clear(context.Context) error             { m.value = ""; return nil }

func waitFor(t *testing.T, timeout time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestSyncLoopRunsImmediatelyAndRecordsReport(t *testing.T) {
	source := &countingSource{}
	runner := pipeline.NewRunner(source, nopSink{}, &memStore{}, logger.New("error", false), pipeline.Options{})
	loop := NewSyncLoop(runner, logger.New("error", false), time.Hour, make(chan struct{}, 1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop.Start(ctx)
	defer loop.Stop()

	if source.calls.Load() != 1 {
		t.Errorf("source calls = %d, want 1 immediate run", source.calls.Load())
	}
	if loop.LastReport() == nil {
		t.Error("LastReport() = nil, want the first run's report")
	}
}

func TestSyncLoopManualTrigger(t *testing.T) {
	source := &countingSource{}
	runner := pipeline.NewRunner(source, nopSink{}, &memStore{}, logger.New("error", false), pipeline.Options{})
	trigger := make(chan struct{}, 1)
	loop := NewSyncLoop(runner, logger.New("error", false), time.Hour, trigger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop.Start(ctx)
	defer loop.Stop()

	trigger <- struct{}{}
	waitFor(t, 2*time.Second, func() bool { return source.calls.Load() >= 2 })
}

func TestSyncLoopInterval(t *testing.T) {
	source := &countingSource{}
	runner := pipeline.NewRunner(source, nopSink{}, &memStore{}, logger.New("error", false), pipeline.Options{})
	loop := NewSyncLoop(runner, logger.New("error", false), 20*time.Millisecond, make(chan struct{}, 1))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loop.Start(ctx)
	defer loop.Stop()

	waitFor(t, 2*time.Second, func() bool { return source.calls.Load() >= 3 })
}
