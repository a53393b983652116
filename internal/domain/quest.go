package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuestType categorizes daily quests.
type QuestType string

const (
	QuestDailyLogin QuestType = "daily_login"
	QuestWorkHour   QuestType = "work_hour"
)

// DailyQuest is one quest in a calendar day's cohort. The cohort is
// materialized the first time the day is viewed; progress is recomputed
// idempotently from completed schedule instances.
type DailyQuest struct {
	ID              uuid.UUID `json:"id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	TargetCount     int       `json:"target_count"`
	CurrentProgress int       `json:"current_progress"`
	RewardMinutes   int       `json:"reward_minutes"`
	RewardXP        int       `json:"reward_xp"`
	Type            QuestType `json:"type"`
	Date            time.Time `json:"date"` // day-normalized
	Completed       bool      `json:"completed"`
	Claimed         bool      `json:"claimed"`
	SortOrder       int       `json:"sort_order"`
}

// CanClaim reports whether the quest's reward is available.
func (q DailyQuest) CanClaim() bool { return q.Completed && !q.Claimed }

// ProgressPercent returns completion fraction in [0,1].
func (q DailyQuest) ProgressPercent() float64 {
	if q.TargetCount <= 0 {
		return 0
	}
	pct := float64(q.CurrentProgress) / float64(q.TargetCount)
	if pct > 1 {
		return 1
	}
	return pct
}

// AchievementCategory groups achievements by the lifetime counter that
// drives them.
type AchievementCategory string

const (
	AchievementLoginDays AchievementCategory = "login_days"
	AchievementWorkHours AchievementCategory = "work_hours"
)

// RewardKind distinguishes achievement reward payloads.
type RewardKind string

const (
	RewardMinutes RewardKind = "minutes"
	RewardXP      RewardKind = "xp"
)

// Reward is one claimable payout attached to an achievement.
type Reward struct {
	Kind   RewardKind `json:"kind"`
	Amount int        `json:"amount"`
}

// Display returns the reward as shown in the UI ("30 min", "60 XP").
func (r Reward) Display() string {
	if r.Kind == RewardMinutes {
		return fmt.Sprintf("%d min", r.Amount)
	}
	return fmt.Sprintf("%d XP", r.Amount)
}

// Achievement is a lifetime milestone. Progress is recomputed from
// source data and never decreases; once unlocked it stays unlocked.
type Achievement struct {
	ID              uuid.UUID           `json:"id"`
	Title           string              `json:"title"`
	Description     string              `json:"description"`
	Category        AchievementCategory `json:"category"`
	Requirement     int                 `json:"requirement"`
	CurrentProgress int                 `json:"current_progress"`
	Unlocked        bool                `json:"unlocked"`
	Claimed         bool                `json:"claimed"`
	UnlockedAt      *time.Time          `json:"unlocked_at,omitempty"`
	Rewards         []Reward            `json:"rewards"`
}

// CanClaim reports whether the achievement's rewards are available.
func (a Achievement) CanClaim() bool { return a.Unlocked && !a.Claimed }

// ProgressPercent returns unlock progress in [0,1].
func (a Achievement) ProgressPercent() float64 {
	if a.Requirement <= 0 {
		return 0
	}
	pct := float64(a.CurrentProgress) / float64(a.Requirement)
	if pct > 1 {
		return 1
	}
	return pct
}
