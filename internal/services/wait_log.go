package services

import (
	"context"
	"sync"
	"time"

	"github.com/adyen/storefront-e2e/internal/models"
	"github.com/adyen/storefront-e2e/internal/poll"
	"go.uber.org/zap"
)

// WaitRecorder defines the interface for wait outcome persistence
type WaitRecorder interface {
	Create(ctx context.Context, w *models.WaitOutcome) error
}

// WaitLog is a poll observer that stores every finished wait of one run
type WaitLog struct {
	recorder WaitRecorder
	runID    string
	logger   *zap.Logger

	mu       sync.Mutex
	total    int
	failures int
	dropped  int
}

// WaitStats summarizes what a WaitLog has seen
type WaitStats struct {
	Total    int
	Failures int
	Dropped  int
}

// NewWaitLog creates a wait log for runID. A nil recorder only logs.
func NewWaitLog(recorder WaitRecorder, runID string, logger *zap.Logger) *WaitLog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WaitLog{
		recorder: recorder,
		runID:    runID,
		logger:   logger.With(zap.String("run_id", runID)),
	}
}

// RunID returns the run the log writes under
func (l *WaitLog) RunID() string {
	return l.runID
}

// ObservePoll implements poll.Observer
func (l *WaitLog) ObservePoll(ctx context.Context, o poll.Outcome) {
	w := models.NewWaitOutcome(l.runID, o)

	l.mu.Lock()
	l.total++
	if w.Failed() {
		l.failures++
	}
	l.mu.Unlock()

	if w.Failed() {
		l.logger.Warn("wait failed",
			zap.String("condition", w.Condition),
			zap.String("result", string(w.Result)),
			zap.Duration("elapsed", w.Elapsed),
			zap.Duration("timeout", w.Timeout),
			zap.Int("attempts", w.Attempts),
			zap.String("last_error", w.LastError),
		)
	} else if w.Slack() < 0.1 {
		l.logger.Info("wait passed close to its deadline",
			zap.String("condition", w.Condition),
			zap.Duration("elapsed", w.Elapsed),
			zap.Duration("timeout", w.Timeout),
		)
	}

	if l.recorder == nil {
		return
	}

	// Cancelled polls are recorded too, so detach from the caller's cancellation
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 2*time.Second)
	defer cancel()
	if err := l.recorder.Create(writeCtx, w); err != nil {
		l.mu.Lock()
		l.dropped++
		l.mu.Unlock()
		l.logger.Error("failed to record wait outcome", zap.String("condition", w.Condition), zap.Error(err))
	}
}

// Stats returns the counters so far
func (l *WaitLog) Stats() WaitStats {
	l.mu.Lock()
	defer l.mu.Unlock()
	return WaitStats{Total: l.total, Failures: l.failures, Dropped: l.dropped}
}
