package domain

// Event records are plain data emitted by core mutations. An external
// dispatcher (notification layer, UI) turns them into user-facing
// messages — core never calls into a notification subsystem directly.

// LevelUpEvent is emitted when a stat or bonus-XP mutation raises the
// profile level past its previous value.
type LevelUpEvent struct {
	OldLevel        int                `json:"old_level"`
	NewLevel        int                `json:"new_level"`
	UnlockedSprites []UnlockableSprite `json:"unlocked_sprites,omitempty"`
}

// StreakMilestoneEvent is emitted when the current streak crosses a
// configured milestone.
type StreakMilestoneEvent struct {
	Milestone     int `json:"milestone"`
	CurrentStreak int `json:"current_streak"`
}

// VerificationEvent reports an oracle validation bonus applied to a
// completed instance.
type VerificationEvent struct {
	BonusPercent int    `json:"bonus_percent"`
	ProblemCount int    `json:"problem_count"`
	Details      string `json:"details"`
}

// CompletionEvents bundles everything a single instance completion
// produced, for the external dispatcher.
type CompletionEvents struct {
	CompletionPercent float64               `json:"completion_percent"`
	MinutesEarned     int                   `json:"minutes_earned"`
	MinutesCredited   int                   `json:"minutes_credited"`
	LevelUp           *LevelUpEvent         `json:"level_up,omitempty"`
	StreakMilestone   *StreakMilestoneEvent `json:"streak_milestone,omitempty"`
	Verification      *VerificationEvent    `json:"verification,omitempty"`
}
