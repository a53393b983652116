package domain

import "errors"

// ─── Sentinel Errors ────────────────────────────────────────────────────────
// Domain errors are pure — no infrastructure dependency.

var (
	// Wallet errors
	ErrInsufficientMinutes = errors.New("insufficient minutes available")
	ErrRedemptionActive    = errors.New("a redemption window is already active")
	ErrRequirementsNotMet  = errors.New("daily requirements not met")

	// Oracle errors — never surfaced to the user as a hard failure;
	// the requirement gate degrades to its last cached value.
	ErrOracleUnavailable = errors.New("verification oracle unavailable")

	// Lookup errors
	ErrInstanceNotFound    = errors.New("schedule instance not found")
	ErrTaskNotFound        = errors.New("task not found")
	ErrQuestNotFound       = errors.New("daily quest not found")
	ErrAchievementNotFound = errors.New("achievement not found")
	ErrRuleNotFound        = errors.New("recurrence rule not found")

	// Claim errors
	ErrAlreadyClaimed = errors.New("reward already claimed")
	ErrNotClaimable   = errors.New("reward is not claimable yet")

	// Weekend bonus
	ErrBonusNotAvailable = errors.New("weekend bonus not available")
)
