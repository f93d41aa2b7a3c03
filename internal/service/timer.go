package service

import (
	"context"
	"sync"
	"time"

	"iq-test-service/internal/domain"
	"iq-test-service/internal/logger"

	"go.uber.org/zap"
)

// SessionTimer drives the countdown of one in-progress attempt. Remaining
// time is always recomputed from the persisted (budget, epoch) pair, so the
// timer survives process restarts without drifting.
//
// Threshold callbacks fire exactly once per crossing; the expiry callback is
// latched with sync.Once so a late tick after submission has started cannot
// trigger a second auto-submit.
type SessionTimer struct {
	budgetSeconds int64
	epoch         time.Time

	now      func() time.Time
	interval time.Duration

	onWarning func(level domain.WarningLevel, remaining int64)
	onExpire  func()

	mu             sync.Mutex
	cancel         context.CancelFunc
	warnedLow      bool
	warnedCritical bool
	expireOnce     sync.Once
}

// TimerOption configures a SessionTimer.
type TimerOption func(*SessionTimer)

// WithClock injects a deterministic clock for tests.
func WithClock(now func() time.Time) TimerOption {
	return func(t *SessionTimer) { t.now = now }
}

// WithTickInterval overrides the 1 s tick, test-only.
func WithTickInterval(d time.Duration) TimerOption {
	return func(t *SessionTimer) { t.interval = d }
}

// NewSessionTimer creates a timer over the persisted budget/epoch pair.
func NewSessionTimer(budgetSeconds int64, epoch time.Time, onWarning func(domain.WarningLevel, int64), onExpire func(), opts ...TimerOption) *SessionTimer {
	t := &SessionTimer{
		budgetSeconds: budgetSeconds,
		epoch:         epoch,
		now:           time.Now,
		interval:      time.Second,
		onWarning:     onWarning,
		onExpire:      onExpire,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Remaining recomputes the seconds left from the persisted pair.
func (t *SessionTimer) Remaining() int64 {
	return domain.RemainingSeconds(t.budgetSeconds, t.epoch, t.now())
}

// Start launches the ticking goroutine. It stops when the returned context is
// cancelled via Stop, or when the countdown expires.
func (t *SessionTimer) Start(ctx context.Context) {
	t.mu.Lock()
	if t.cancel != nil {
		t.mu.Unlock()
		return // already running
	}
	tickCtx, cancel := context.WithCancel(ctx)
	t.cancel = cancel
	t.mu.Unlock()

	go func() {
		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()
		for {
			select {
			case <-tickCtx.Done():
				return
			case <-ticker.C:
				if t.tick() {
					return
				}
			}
		}
	}()
}

// Stop cancels the ticking goroutine. Safe to call more than once; must be
// called on any transition out of InProgress so no leaked tick fires against
// stale state.
func (t *SessionTimer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cancel != nil {
		t.cancel()
		t.cancel = nil
	}
}

// tick evaluates thresholds once. Returns true when the countdown is over
// and the goroutine should exit.
func (t *SessionTimer) tick() bool {
	remaining := t.Remaining()

	if remaining <= 0 {
		t.expireOnce.Do(func() {
			logger.Get().Info("Session time expired, triggering auto-submit")
			if t.onExpire != nil {
				t.onExpire()
			}
		})
		return true
	}

	t.mu.Lock()
	fireLow := !t.warnedLow && remaining <= domain.WarningThresholdSec
	if fireLow {
		t.warnedLow = true
	}
	fireCritical := !t.warnedCritical && remaining <= domain.CriticalThresholdSec
	if fireCritical {
		t.warnedCritical = true
	}
	t.mu.Unlock()

	if fireLow && t.onWarning != nil {
		logger.Get().Debug("Countdown warning threshold crossed", zap.Int64("remaining", remaining))
		t.onWarning(domain.WarningLow, remaining)
	}
	if fireCritical && t.onWarning != nil {
		logger.Get().Debug("Countdown critical threshold crossed", zap.Int64("remaining", remaining))
		t.onWarning(domain.WarningCritical, remaining)
	}
	return false
}
