package domain

import (
	"time"

	"github.com/google/uuid"
)

// Settings is the singleton engine configuration row. Requirement-source
// settings follow the {enabled, blocksRewards, dailyGoal} shape: only
// sources with BlocksRewards=true can veto redemption.
type Settings struct {
	ID uuid.UUID `json:"id"`

	CalendarSyncEnabled bool `json:"calendar_sync_enabled"`
	AppBlockingEnabled  bool `json:"app_blocking_enabled"`

	// ScreenTimeRatio converts earned reward minutes into wallet
	// minutes: credited = floor(earned * ratio).
	ScreenTimeRatio float64 `json:"screen_time_ratio"`

	LeetCodeEnabled       bool       `json:"leetcode_enabled"`
	LeetCodeUsername      string     `json:"leetcode_username"`
	LeetCodeDailyGoal     int        `json:"leetcode_daily_goal"`
	LeetCodeBlocksRewards bool       `json:"leetcode_blocks_rewards"`
	LeetCodeLastChecked   *time.Time `json:"leetcode_last_checked,omitempty"`

	AnkiEnabled       bool `json:"anki_enabled"`
	AnkiDailyGoal     int  `json:"anki_daily_goal"`
	AnkiBlocksRewards bool `json:"anki_blocks_rewards"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DefaultSettings returns the install-time settings row.
func DefaultSettings() Settings {
	now := time.Now()
	return Settings{
		ID:                uuid.New(),
		ScreenTimeRatio:   0.5,
		LeetCodeDailyGoal: 3,
		AnkiDailyGoal:     50,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
}
