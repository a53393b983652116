package domain

import (
	"time"

	"github.com/google/uuid"
)

// DefaultStreakMilestones are the day counts that emit milestone events.
var DefaultStreakMilestones = []int{3, 7, 14, 30, 60, 90, 180, 365}

// StreakTracker tracks consecutive days with at least one completed
// schedule instance. Day boundaries use calendar-day normalization.
type StreakTracker struct {
	ID                 uuid.UUID  `json:"id"`
	CurrentStreak      int        `json:"current_streak"`
	LongestStreak      int        `json:"longest_streak"`
	LastCompletionDate *time.Time `json:"last_completion_date,omitempty"`
	Milestones         []int      `json:"milestones"`
}

// NewStreakTracker returns a zeroed tracker with default milestones.
func NewStreakTracker() StreakTracker {
	return StreakTracker{ID: uuid.New(), Milestones: append([]int(nil), DefaultStreakMilestones...)}
}

// NextMilestone returns the first milestone above the current streak,
// or 0 if all have been passed.
func (s StreakTracker) NextMilestone() int {
	for _, m := range s.Milestones {
		if m > s.CurrentStreak {
			return m
		}
	}
	return 0
}

// DailyLogin tracks app-open days; it drives the login-days achievements.
type DailyLogin struct {
	ID              uuid.UUID  `json:"id"`
	LastLoginDate   *time.Time `json:"last_login_date,omitempty"`
	ConsecutiveDays int        `json:"consecutive_days"`
	TotalLogins     int        `json:"total_logins"`
}

// NewDailyLogin returns a zeroed login tracker.
func NewDailyLogin() DailyLogin {
	return DailyLogin{ID: uuid.New()}
}

// WeekendBonus is a once-per-weekend claimable minute bonus, available
// Friday through Sunday.
type WeekendBonus struct {
	ID                   uuid.UUID  `json:"id"`
	LastClaimedDate      *time.Time `json:"last_claimed_date,omitempty"`
	BonusMinutesEarned   int        `json:"bonus_minutes_earned"`
	TotalLifetimeMinutes int        `json:"total_lifetime_minutes"`
}

// NewWeekendBonus returns a zeroed weekend bonus tracker.
func NewWeekendBonus() WeekendBonus {
	return WeekendBonus{ID: uuid.New()}
}
