// Package streaks maintains the day-keyed engagement counters: the
// completion streak, the daily-login tracker, and the weekend bonus.
package streaks

import (
	"fmt"
	"log"
	"time"

	"github.com/focusrpg/focusrpg/internal/domain"
	"github.com/focusrpg/focusrpg/internal/infra/metrics"
	"github.com/focusrpg/focusrpg/internal/infra/sqlite"
)

// DefaultWeekendBonusMinutes is the minute payout of one weekend claim.
const DefaultWeekendBonusMinutes = 30

// Service owns streak, login, and weekend-bonus mutations.
type Service struct {
	db *sqlite.DB
}

// NewService creates a streaks service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Streak returns the current tracker state.
func (s *Service) Streak() (domain.StreakTracker, error) {
	return s.db.GetOrCreateStreak()
}

// RecordCompletion updates the streak for a completed instance on the
// given day. Same-day repeats are no-ops; a next-day completion extends
// the streak; any larger gap resets it to 1. Longest is preserved.
// Returns a milestone event when the new streak crosses one.
func (s *Service) RecordCompletion(now time.Time) (*domain.StreakMilestoneEvent, error) {
	tracker, err := s.db.GetOrCreateStreak()
	if err != nil {
		return nil, err
	}

	if tracker.LastCompletionDate != nil && domain.SameDay(*tracker.LastCompletionDate, now) {
		return nil, nil
	}

	prev := tracker.CurrentStreak
	if tracker.LastCompletionDate != nil && domain.DaysBetween(*tracker.LastCompletionDate, now) == 1 {
		tracker.CurrentStreak++
	} else {
		tracker.CurrentStreak = 1
	}
	if tracker.CurrentStreak > tracker.LongestStreak {
		tracker.LongestStreak = tracker.CurrentStreak
	}
	day := domain.DayOf(now)
	tracker.LastCompletionDate = &day

	if err := s.db.SaveStreak(tracker); err != nil {
		return nil, fmt.Errorf("save streak: %w", err)
	}
	metrics.StreakCurrent.Set(float64(tracker.CurrentStreak))

	for _, m := range tracker.Milestones {
		if tracker.CurrentStreak == m && prev < m {
			log.Printf("[streaks] milestone reached: %d days", m)
			return &domain.StreakMilestoneEvent{Milestone: m, CurrentStreak: tracker.CurrentStreak}, nil
		}
	}
	return nil, nil
}

// RecordLogin registers an app-open day. Returns true when this was the
// first login of the calendar day; the lifetime total drives the
// login-days achievements.
func (s *Service) RecordLogin(now time.Time) (bool, error) {
	login, err := s.db.GetOrCreateDailyLogin()
	if err != nil {
		return false, err
	}
	if login.LastLoginDate != nil && domain.SameDay(*login.LastLoginDate, now) {
		return false, nil
	}

	if login.LastLoginDate != nil && domain.DaysBetween(*login.LastLoginDate, now) == 1 {
		login.ConsecutiveDays++
	} else {
		login.ConsecutiveDays = 1
	}
	login.TotalLogins++
	day := domain.DayOf(now)
	login.LastLoginDate = &day

	if err := s.db.SaveDailyLogin(login); err != nil {
		return false, fmt.Errorf("save daily login: %w", err)
	}
	return true, nil
}

// Login returns the login tracker state.
func (s *Service) Login() (domain.DailyLogin, error) {
	return s.db.GetOrCreateDailyLogin()
}

// WeekendBonusAvailable reports whether the weekend bonus can be
// claimed now: the day must be Friday through Sunday, and the last
// claim must predate this week's Friday.
func (s *Service) WeekendBonusAvailable(now time.Time) (bool, error) {
	bonus, err := s.db.GetOrCreateWeekendBonus()
	if err != nil {
		return false, err
	}
	return weekendClaimable(bonus, now), nil
}

// ClaimWeekendBonus claims this weekend's bonus once and returns the
// minute payout. The caller credits the wallet.
func (s *Service) ClaimWeekendBonus(now time.Time) (int, error) {
	bonus, err := s.db.GetOrCreateWeekendBonus()
	if err != nil {
		return 0, err
	}
	if !weekendClaimable(bonus, now) {
		return 0, domain.ErrBonusNotAvailable
	}

	day := domain.DayOf(now)
	bonus.LastClaimedDate = &day
	bonus.BonusMinutesEarned = DefaultWeekendBonusMinutes
	bonus.TotalLifetimeMinutes += DefaultWeekendBonusMinutes
	if err := s.db.SaveWeekendBonus(bonus); err != nil {
		return 0, fmt.Errorf("save weekend bonus: %w", err)
	}
	return DefaultWeekendBonusMinutes, nil
}

func weekendClaimable(b domain.WeekendBonus, now time.Time) bool {
	switch now.Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
	default:
		return false
	}
	if b.LastClaimedDate == nil {
		return true
	}
	return b.LastClaimedDate.Before(fridayOfWeekend(now))
}

// fridayOfWeekend returns midnight of the Friday opening the weekend
// that contains now (for Fri/Sat/Sun this is 0/1/2 days back).
func fridayOfWeekend(now time.Time) time.Time {
	day := domain.DayOf(now)
	for day.Weekday() != time.Friday {
		day = day.AddDate(0, 0, -1)
	}
	return day
}
