package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet is the singleton screen-time currency ledger plus the active
// unlock-window state. Invariant: RedeemedMinutesRemaining > 0 iff
// RedemptionStartTime is non-nil.
type Wallet struct {
	ID                       uuid.UUID  `json:"id"`
	AvailableMinutes         int        `json:"available_minutes"`
	EarnedTodayMinutes       int        `json:"earned_today_minutes"`
	LastEarnedDate           time.Time  `json:"last_earned_date"`
	RedeemedMinutesRemaining int        `json:"redeemed_minutes_remaining"`
	RedemptionStartTime      *time.Time `json:"redemption_start_time,omitempty"`
}

// NewWallet returns an empty wallet.
func NewWallet() Wallet {
	return Wallet{ID: uuid.New(), LastEarnedDate: time.Now()}
}

// Redeeming reports whether an unlock window is active.
func (w Wallet) Redeeming() bool {
	return w.RedeemedMinutesRemaining > 0 && w.RedemptionStartTime != nil
}

// RemainingSeconds returns the unlock-window seconds left at the given
// wall-clock time, derived purely from the start time (never from
// accumulated ticks). Never negative.
func (w Wallet) RemainingSeconds(now time.Time) int {
	if !w.Redeeming() {
		return 0
	}
	total := w.RedeemedMinutesRemaining * 60
	elapsed := int(now.Sub(*w.RedemptionStartTime).Seconds())
	if elapsed >= total {
		return 0
	}
	return total - elapsed
}

// RedemptionResult is the structured outcome of a redemption attempt,
// carrying per-source progress strings for display regardless of outcome.
type RedemptionResult struct {
	Allowed  bool              `json:"allowed"`
	Reason   string            `json:"reason,omitempty"`
	Progress map[string]string `json:"progress,omitempty"`
}

// DailyProgress caches a verification oracle's daily count so the
// requirement gate does not re-query more than once per TTL window.
type DailyProgress struct {
	ID          uuid.UUID `json:"id"`
	Date        time.Time `json:"date"` // day-normalized
	Count       int       `json:"count"`
	Verified    bool      `json:"verified"`
	LastUpdated time.Time `json:"last_updated"`
}

// ProgressStatus is a requirement source's current standing against its
// daily goal.
type ProgressStatus struct {
	Current  int  `json:"current"`
	Goal     int  `json:"goal"`
	Verified bool `json:"verified"`
}

// Complete reports whether the daily goal has been met.
func (p ProgressStatus) Complete() bool { return p.Current >= p.Goal }

// Remaining returns how many more are needed, never negative.
func (p ProgressStatus) Remaining() int {
	if r := p.Goal - p.Current; r > 0 {
		return r
	}
	return 0
}
