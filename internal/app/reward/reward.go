// Package reward implements the completion-weighted reward calculation.
// Pure functions — deterministic, idempotent, no side effects.
package reward

import "github.com/focusrpg/focusrpg/internal/domain"

// Completion returns the weighted completion ratio of a task list:
// sum of completed weights over sum of all weights, in [0, 1].
// An empty list or zero total weight yields 0 — never an error.
func Completion(tasks []domain.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}

	var total, completed float64
	for _, t := range tasks {
		total += t.Weight
		if t.Completed {
			completed += t.Weight
		}
	}
	if total <= 0 {
		return 0
	}
	return completed / total
}

// EarnedMinutes converts a completion ratio into reward minutes.
// Truncation (not rounding) is deliberate — never over-award.
func EarnedMinutes(baseRewardMinutes int, completion float64) int {
	return int(float64(baseRewardMinutes) * completion)
}

// RatioAdjusted applies the screen-time ratio to raw earned minutes,
// again truncating.
func RatioAdjusted(minutes int, ratio float64) int {
	return int(float64(minutes) * ratio)
}
