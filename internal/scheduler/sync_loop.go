package scheduler

import (
	"context"
	stdsync "sync"
	"time"

	"github.com/MrSnakeDoc/pinsync/internal/logger"
	"github.com/MrSnakeDoc/pinsync/internal/pipeline"
)

// SyncLoop runs the pipeline on a fixed interval in serve mode. A manual
// trigger channel lets the HTTP surface request an immediate run.
type SyncLoop struct {
	runner        *pipeline.Runner
	logger        logger.Logger
	interval      time.Duration
	stopCh        chan struct{}
	manualTrigger chan struct{}

	mu         stdsync.Mutex
	lastReport *pipeline.Report
}

func NewSyncLoop(
	runner *pipeline.Runner,
	log logger.Logger,
	interval time.Duration,
	manualTrigger chan struct{},
) *SyncLoop {
	return &SyncLoop{
		runner:        runner,
		logger:        log,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start runs a sync immediately, then on every tick or manual trigger until
// Stop is called or the context ends. A failed run is logged, never fatal:
// the watermark protocol makes the next run retry the same window.
func (sl *SyncLoop) Start(ctx context.Context) {
	sl.runOnce(ctx)

	ticker := time.NewTicker(sl.interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				sl.runOnce(ctx)
			case <-sl.manualTrigger:
				sl.logger.Info("manual sync triggered")
				sl.runOnce(ctx)
			case <-sl.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the loop.
func (sl *SyncLoop) Stop() {
	close(sl.stopCh)
}

// LastReport returns the report of the most recent run, or nil before the
// first run completes.
func (sl *SyncLoop) LastReport() *pipeline.Report {
	sl.mu.Lock()
	defer sl.mu.Unlock()
	return sl.lastReport
}

func (sl *SyncLoop) runOnce(ctx context.Context) {
	report, err := sl.runner.Run(ctx)
	if err != nil {
		sl.logger.Error("sync run failed", logger.Error(err))
	}
	if report != nil {
		sl.mu.Lock()
		sl.lastReport = report
		sl.mu.Unlock()
	}
}
