package domain

import "time"

// Countdown warning thresholds, in seconds remaining.
const (
	WarningThresholdSec  = 300
	CriticalThresholdSec = 60
	// The five-minute warning is transient: it stays visible for this many
	// seconds after the crossing, then clears on its own.
	WarningDisplaySec = 5
)

// WarningLevel describes the urgency of the countdown at a point in time.
type WarningLevel string

const (
	WarningNone     WarningLevel = "none"
	WarningLow      WarningLevel = "low"      // five minutes left, transient
	WarningCritical WarningLevel = "critical" // one minute left, persists until expiry
	WarningExpired  WarningLevel = "expired"
)

// RemainingSeconds recomputes the remaining budget from the persisted
// (budget, epoch) pair. The pair is the single source of truth: remaining
// time is never stored as a counter that could drift or be replayed stale,
// and recomputing from the epoch makes elapsed wall-clock time (not
// process-lifetime time) count against the budget.
func RemainingSeconds(budgetSeconds int64, epoch time.Time, now time.Time) int64 {
	elapsed := int64(now.Sub(epoch).Seconds())
	if elapsed < 0 {
		elapsed = 0
	}
	remaining := budgetSeconds - elapsed
	if remaining < 0 {
		return 0
	}
	return remaining
}

// WarningLevelFor derives the active warning from the remaining seconds.
// Pure and recomputable on every snapshot.
func WarningLevelFor(remaining int64) WarningLevel {
	switch {
	case remaining <= 0:
		return WarningExpired
	case remaining <= CriticalThresholdSec:
		return WarningCritical
	case remaining > WarningThresholdSec-WarningDisplaySec && remaining <= WarningThresholdSec:
		return WarningLow
	default:
		return WarningNone
	}
}
