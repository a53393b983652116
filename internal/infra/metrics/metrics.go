// Package metrics provides Prometheus metrics for FocusRPG: counters
// and gauges for schedule activity, wallet flow, engagement, and the
// verification oracle.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── Schedule ───────────────────────────────────────────────────────────────

// InstancesCompleted tracks completed schedule instances.
var InstancesCompleted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focusrpg",
	Name:      "instances_completed_total",
	Help:      "Total schedule instances completed.",
})

// InstancesSkipped tracks skipped schedule instances.
var InstancesSkipped = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focusrpg",
	Name:      "instances_skipped_total",
	Help:      "Total schedule instances skipped.",
})

// InstancesMaterialized tracks instances created from recurrence rules.
var InstancesMaterialized = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focusrpg",
	Name:      "instances_materialized_total",
	Help:      "Total instances materialized from recurrence rules.",
})

// ─── Wallet ─────────────────────────────────────────────────────────────────

// MinutesEarned tracks screen-time minutes credited to the wallet.
var MinutesEarned = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focusrpg",
	Name:      "minutes_earned_total",
	Help:      "Total screen-time minutes credited to the wallet.",
})

// MinutesRedeemed tracks screen-time minutes redeemed.
var MinutesRedeemed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focusrpg",
	Name:      "minutes_redeemed_total",
	Help:      "Total screen-time minutes redeemed.",
})

// WalletBalance tracks the current available-minute balance.
var WalletBalance = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "focusrpg",
	Name:      "wallet_balance_minutes",
	Help:      "Current available screen-time minutes.",
})

// RedemptionActive is 1 while an unlock window is open.
var RedemptionActive = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "focusrpg",
	Name:      "redemption_active",
	Help:      "Whether an unlock window is currently open (0 or 1).",
})

// RedemptionsBlocked tracks redemptions refused by the requirement gate.
var RedemptionsBlocked = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focusrpg",
	Name:      "redemptions_blocked_total",
	Help:      "Total redemptions refused by the requirement gate.",
})

// ─── Profile ────────────────────────────────────────────────────────────────

// ProfileLevel tracks the character's current level.
var ProfileLevel = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "focusrpg",
	Name:      "profile_level",
	Help:      "Current character level.",
})

// LevelUps tracks level-up events.
var LevelUps = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focusrpg",
	Name:      "level_ups_total",
	Help:      "Total level-up events.",
})

// ─── Engagement ─────────────────────────────────────────────────────────────

// QuestsClaimed tracks claimed daily quests.
var QuestsClaimed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focusrpg",
	Name:      "quests_claimed_total",
	Help:      "Total daily quests claimed.",
})

// AchievementsClaimed tracks claimed achievements.
var AchievementsClaimed = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focusrpg",
	Name:      "achievements_claimed_total",
	Help:      "Total achievements claimed.",
})

// StreakCurrent tracks the current completion streak in days.
var StreakCurrent = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "focusrpg",
	Name:      "streak_current_days",
	Help:      "Current daily completion streak.",
})

// ─── Oracle ─────────────────────────────────────────────────────────────────

// OracleRequests tracks verification oracle fetches by outcome.
var OracleRequests = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "focusrpg",
	Name:      "oracle_requests_total",
	Help:      "Total verification oracle fetches by outcome.",
}, []string{"outcome"})

// OracleCacheHits tracks gate checks served from the cache within TTL.
var OracleCacheHits = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "focusrpg",
	Name:      "oracle_cache_hits_total",
	Help:      "Total gate checks answered from the cached count.",
})
