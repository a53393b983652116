// Package gate implements the requirement gate: before a redemption is
// allowed, every enabled requirement source with blocksRewards set must
// have met its daily goal. External sources are checked through a
// verification oracle behind a cached, TTL-bounded lookup.
package gate

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/focusrpg/focusrpg/internal/domain"
	"github.com/focusrpg/focusrpg/internal/infra/metrics"
	"github.com/focusrpg/focusrpg/internal/infra/sqlite"
)

// CacheTTL bounds how often the gate re-queries the oracle for the same
// day's count.
const CacheTTL = 300 * time.Second

// ValidationBonusPerProblem and ValidationBonusCap define the stat
// multiplier earned by verified problems: +10% each, at most +50%.
const (
	ValidationBonusPerProblem = 0.10
	ValidationBonusCap        = 0.50
)

// Oracle fetches an externally verified daily count for a user.
type Oracle interface {
	FetchDailyAcceptedCount(ctx context.Context, username string, day time.Time) (int, error)
}

// Service evaluates requirement sources against their daily goals.
type Service struct {
	db     *sqlite.DB
	oracle Oracle
}

// NewService creates a gate over the given oracle. A nil oracle
// disables external verification; cached values still apply.
func NewService(db *sqlite.DB, oracle Oracle) *Service {
	return &Service{db: db, oracle: oracle}
}

// LeetCodeProgress returns the LeetCode source's standing for the day,
// refreshing through the oracle when the cache is stale. An oracle
// failure degrades to the cached value — it never lowers a count and
// never raises confidence.
func (s *Service) LeetCodeProgress(ctx context.Context, now time.Time) (domain.ProgressStatus, error) {
	settings, err := s.db.GetOrCreateSettings()
	if err != nil {
		return domain.ProgressStatus{}, err
	}
	if !settings.LeetCodeEnabled {
		return domain.ProgressStatus{Goal: settings.LeetCodeDailyGoal}, nil
	}

	progress, err := s.db.GetOrCreateDailyProgress(now)
	if err != nil {
		return domain.ProgressStatus{}, err
	}

	fresh := progress.Verified && now.Sub(progress.LastUpdated) < CacheTTL
	if fresh {
		metrics.OracleCacheHits.Inc()
	} else if s.oracle != nil && settings.LeetCodeUsername != "" {
		count, err := s.oracle.FetchDailyAcceptedCount(ctx, settings.LeetCodeUsername, now)
		if err != nil {
			// Stale value stands; the gate must not hard-fail on an
			// unreachable oracle.
			metrics.OracleRequests.WithLabelValues("error").Inc()
			log.Printf("[gate] oracle fetch failed, using cached count %d: %v", progress.Count, err)
		} else {
			metrics.OracleRequests.WithLabelValues("ok").Inc()
			progress.Count = count
			progress.Verified = true
			progress.LastUpdated = now
			if err := s.db.SaveDailyProgress(progress); err != nil {
				return domain.ProgressStatus{}, fmt.Errorf("save daily progress: %w", err)
			}
		}
	}

	return domain.ProgressStatus{
		Current:  progress.Count,
		Goal:     settings.LeetCodeDailyGoal,
		Verified: progress.Verified,
	}, nil
}

// EvaluateRedemption checks every enabled requirement source. Only
// sources configured with blocksRewards can veto; progress strings are
// included for every enabled source regardless of outcome.
func (s *Service) EvaluateRedemption(ctx context.Context, now time.Time) (domain.RedemptionResult, error) {
	settings, err := s.db.GetOrCreateSettings()
	if err != nil {
		return domain.RedemptionResult{}, err
	}

	result := domain.RedemptionResult{Allowed: true, Progress: map[string]string{}}

	if settings.LeetCodeEnabled {
		status, err := s.LeetCodeProgress(ctx, now)
		if err != nil {
			return domain.RedemptionResult{}, err
		}
		result.Progress["leetcode"] = fmt.Sprintf("%d/%d problems solved", status.Current, status.Goal)
		if settings.LeetCodeBlocksRewards && !status.Complete() {
			result.Allowed = false
			result.Reason = fmt.Sprintf("solve %d more LeetCode problem(s) to unlock rewards", status.Remaining())
		}
	}

	// Anki integration carries settings only; there is no oracle for it
	// yet, so an enabled blocking source fails closed.
	if settings.AnkiEnabled {
		result.Progress["anki"] = fmt.Sprintf("0/%d cards reviewed", settings.AnkiDailyGoal)
		if settings.AnkiBlocksRewards {
			result.Allowed = false
			if result.Reason == "" {
				result.Reason = fmt.Sprintf("review %d Anki card(s) to unlock rewards", settings.AnkiDailyGoal)
			}
		}
	}

	return result, nil
}

// CompletionMultiplier returns the stat multiplier for a completed
// instance and the verification event behind it. Only intelligence work
// gets the validation bonus; everything else is 1.0.
func (s *Service) CompletionMultiplier(ctx context.Context, stat domain.StatType, now time.Time) (float64, *domain.VerificationEvent) {
	if stat != domain.StatIntelligence {
		return 1.0, nil
	}

	status, err := s.LeetCodeProgress(ctx, now)
	if err != nil || status.Current == 0 {
		return 1.0, nil
	}

	bonus := ValidationBonusPerProblem * float64(status.Current)
	if bonus > ValidationBonusCap {
		bonus = ValidationBonusCap
	}
	return 1.0 + bonus, &domain.VerificationEvent{
		BonusPercent: int(bonus * 100),
		ProblemCount: status.Current,
		Details:      fmt.Sprintf("%d verified problem(s) today", status.Current),
	}
}
