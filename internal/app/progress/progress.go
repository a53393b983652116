// Package progress is the progress tracker: daily quest cohorts,
// lifetime achievements, and the claim flows that pay their rewards.
//
// Progress never increments in place. It is recomputed from source data
// (completed instances, login totals), so replays and restarts converge
// to the same state. Completion and unlock are monotonic.
package progress

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/app/level"
	"github.com/focusrpg/focusrpg/internal/app/wallet"
	"github.com/focusrpg/focusrpg/internal/domain"
	"github.com/focusrpg/focusrpg/internal/infra/metrics"
	"github.com/focusrpg/focusrpg/internal/infra/sqlite"
)

// Service owns quest and achievement bookkeeping.
type Service struct {
	db     *sqlite.DB
	level  *level.Service
	wallet *wallet.Service
}

// NewService creates a progress tracker.
func NewService(db *sqlite.DB, lvl *level.Service, w *wallet.Service) *Service {
	return &Service{db: db, level: lvl, wallet: w}
}

// EnsureDailyQuests materializes the day's quest cohort on first view
// and returns it sorted. Re-calls on the same day return the existing
// cohort untouched.
func (s *Service) EnsureDailyQuests(now time.Time) ([]domain.DailyQuest, error) {
	quests, err := s.db.ListQuestsForDay(now)
	if err != nil {
		return nil, err
	}
	if len(quests) > 0 {
		return quests, nil
	}

	day := domain.DayOf(now)
	cohort := []domain.DailyQuest{
		{
			Title:       "Daily Login",
			Description: "Open the app today",
			Type:        domain.QuestDailyLogin,
			TargetCount: 1, CurrentProgress: 1, Completed: true,
			RewardMinutes: 10, RewardXP: 25, SortOrder: 0,
		},
		{
			Title:       "Focused Hour",
			Description: "Complete 1 hour of focused work",
			Type:        domain.QuestWorkHour,
			TargetCount: 1, RewardMinutes: 20, RewardXP: 50, SortOrder: 1,
		},
		{
			Title:       "Power Session",
			Description: "Complete 3 hours of focused work",
			Type:        domain.QuestWorkHour,
			TargetCount: 3, RewardMinutes: 40, RewardXP: 100, SortOrder: 2,
		},
	}
	for i := range cohort {
		cohort[i].ID = uuid.New()
		cohort[i].Date = day
		if err := s.db.InsertQuest(cohort[i]); err != nil {
			return nil, fmt.Errorf("insert quest %q: %w", cohort[i].Title, err)
		}
	}
	log.Printf("[progress] materialized quest cohort for %s", day.Format("2006-01-02"))
	return s.db.ListQuestsForDay(now)
}

// Achievements lists achievements, optionally filtered by category.
func (s *Service) Achievements(category domain.AchievementCategory) ([]domain.Achievement, error) {
	return s.db.ListAchievements(category)
}

// OnInstanceCompleted recomputes all derived progress after a schedule
// instance completes. Safe to call any number of times.
func (s *Service) OnInstanceCompleted(now time.Time) error {
	if _, err := s.EnsureDailyQuests(now); err != nil {
		return err
	}
	if err := s.RecomputeQuests(now); err != nil {
		return err
	}
	return s.RecomputeAchievements(now)
}

// RecomputeQuests rederives the day's work-hour quest progress from
// completed instances whose end time falls on today. Hours are whole
// (truncated); completion is monotonic.
func (s *Service) RecomputeQuests(now time.Time) error {
	completed, err := s.db.ListCompletedInstances()
	if err != nil {
		return err
	}
	var todayHours float64
	for _, inst := range completed {
		if domain.SameDay(inst.EndTime, now) {
			todayHours += inst.Hours()
		}
	}

	quests, err := s.db.ListQuestsForDay(now)
	if err != nil {
		return err
	}
	for _, q := range quests {
		if q.Type != domain.QuestWorkHour {
			continue
		}
		progress := int(todayHours)
		if progress > q.TargetCount {
			progress = q.TargetCount
		}
		done := q.Completed || progress >= q.TargetCount
		if progress == q.CurrentProgress && done == q.Completed {
			continue
		}
		q.CurrentProgress = progress
		q.Completed = done
		if err := s.db.SaveQuest(q); err != nil {
			return fmt.Errorf("save quest %q: %w", q.Title, err)
		}
	}
	return nil
}

// RecomputeAchievements rederives lifetime achievement progress.
// Work-hours achievements count the raw scheduled duration of every
// completed instance, unweighted by task completion; login-days
// achievements count total login days. Unlock is one-directional.
func (s *Service) RecomputeAchievements(now time.Time) error {
	completed, err := s.db.ListCompletedInstances()
	if err != nil {
		return err
	}
	var totalHours float64
	for _, inst := range completed {
		totalHours += inst.Hours()
	}

	login, err := s.db.GetOrCreateDailyLogin()
	if err != nil {
		return err
	}

	achievements, err := s.db.ListAchievements("")
	if err != nil {
		return err
	}
	for _, a := range achievements {
		var progress int
		switch a.Category {
		case domain.AchievementWorkHours:
			progress = int(totalHours)
		case domain.AchievementLoginDays:
			progress = login.TotalLogins
		default:
			continue
		}
		if progress > a.Requirement {
			progress = a.Requirement
		}
		if progress < a.CurrentProgress {
			progress = a.CurrentProgress
		}

		unlocked := a.Unlocked || progress >= a.Requirement
		if progress == a.CurrentProgress && unlocked == a.Unlocked {
			continue
		}
		a.CurrentProgress = progress
		if unlocked && !a.Unlocked {
			a.Unlocked = true
			at := now
			a.UnlockedAt = &at
			log.Printf("[progress] achievement unlocked: %s", a.Title)
		}
		if err := s.db.SaveAchievement(a); err != nil {
			return fmt.Errorf("save achievement %q: %w", a.Title, err)
		}
	}
	return nil
}

// ClaimQuest pays a completed quest's rewards exactly once. Rewards are
// only ever granted here: minutes go to the wallet directly (no
// screen-time ratio) and XP to the bonus pool.
func (s *Service) ClaimQuest(id uuid.UUID, now time.Time) (*domain.LevelUpEvent, error) {
	q, err := s.db.GetQuest(id)
	if err != nil {
		return nil, err
	}
	if q.Claimed {
		return nil, domain.ErrAlreadyClaimed
	}
	if !q.Completed {
		return nil, domain.ErrNotClaimable
	}

	q.Claimed = true
	if err := s.db.SaveQuest(*q); err != nil {
		return nil, fmt.Errorf("claim quest: %w", err)
	}

	if err := s.wallet.AddBonusMinutes(q.RewardMinutes, now); err != nil {
		return nil, err
	}
	var levelUp *domain.LevelUpEvent
	if q.RewardXP > 0 {
		if levelUp, err = s.level.AddBonusExperience(q.RewardXP, now); err != nil {
			return nil, err
		}
	}
	metrics.QuestsClaimed.Inc()
	log.Printf("[progress] quest claimed: %s (+%d min, +%d XP)", q.Title, q.RewardMinutes, q.RewardXP)
	return levelUp, nil
}

// ClaimAchievement pays an unlocked achievement's rewards exactly once.
func (s *Service) ClaimAchievement(id uuid.UUID, now time.Time) (*domain.LevelUpEvent, error) {
	a, err := s.db.GetAchievement(id)
	if err != nil {
		return nil, err
	}
	if a.Claimed {
		return nil, domain.ErrAlreadyClaimed
	}
	if !a.Unlocked {
		return nil, domain.ErrNotClaimable
	}

	a.Claimed = true
	if err := s.db.SaveAchievement(*a); err != nil {
		return nil, fmt.Errorf("claim achievement: %w", err)
	}

	var levelUp *domain.LevelUpEvent
	for _, r := range a.Rewards {
		switch r.Kind {
		case domain.RewardMinutes:
			if err := s.wallet.AddBonusMinutes(r.Amount, now); err != nil {
				return nil, err
			}
		case domain.RewardXP:
			if levelUp, err = s.level.AddBonusExperience(r.Amount, now); err != nil {
				return nil, err
			}
		}
	}
	metrics.AchievementsClaimed.Inc()
	log.Printf("[progress] achievement claimed: %s", a.Title)
	return levelUp, nil
}
