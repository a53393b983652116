// Package level manages the stat/XP model: crediting stats for
// completed work, the skip penalty, and level-up sprite unlocks.
// The leveling formulas themselves live on domain.Profile.
package level

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/domain"
	"github.com/focusrpg/focusrpg/internal/infra/metrics"
	"github.com/focusrpg/focusrpg/internal/infra/sqlite"
)

// Service mutates the profile's stats and bonus XP.
type Service struct {
	db *sqlite.DB
}

// NewService creates a level service.
func NewService(db *sqlite.DB) *Service {
	return &Service{db: db}
}

// Profile returns the current profile.
func (s *Service) Profile() (domain.Profile, error) {
	return s.db.GetOrCreateProfile()
}

// CreditCompletion credits the given stat for completed work:
// hours × XPPerHour × completion × multiplier. Every stat point also
// feeds the bonus pool at 6×, so one point of work is worth 7
// XP-equivalent. Returns a LevelUpEvent if the level rose.
//
// An empty stat (unresolved subcategory, see StatFor) skips crediting
// entirely — the completion still succeeds.
func (s *Service) CreditCompletion(inst domain.ScheduleInstance, stat domain.StatType, completion, multiplier float64, now time.Time) (*domain.LevelUpEvent, error) {
	if stat == "" {
		return nil, nil
	}

	gain := inst.Hours() * domain.XPPerHour * completion * multiplier
	return s.applyStatDelta(stat, gain, now)
}

// PenalizeSkip deducts half of the full-completion gain from the stat
// behind a skipped instance. Delevel is allowed; sprites stay unlocked.
func (s *Service) PenalizeSkip(inst domain.ScheduleInstance, now time.Time) error {
	stat, ok, err := s.StatFor(inst)
	if err != nil || !ok {
		return err
	}

	penalty := inst.Hours() * domain.XPPerHour * domain.SkipPenaltyFactor
	_, err = s.applyStatDelta(stat, -penalty, now)
	return err
}

// AddBonusExperience adds claimed bonus XP (quest/achievement rewards)
// and returns a LevelUpEvent if the level rose.
func (s *Service) AddBonusExperience(amount int, now time.Time) (*domain.LevelUpEvent, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("bonus xp must be positive, got %d", amount)
	}

	profile, err := s.db.GetOrCreateProfile()
	if err != nil {
		return nil, err
	}

	oldLevel := profile.Level()
	profile.BonusExperience += amount
	if err := s.db.SaveProfile(profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}
	return s.levelUpEvent(oldLevel, profile.Level(), now)
}

// applyStatDelta mutates one stat, maintains the 6× bonus pool on
// increases, records a history sample, and checks for level-up.
func (s *Service) applyStatDelta(stat domain.StatType, delta float64, now time.Time) (*domain.LevelUpEvent, error) {
	profile, err := s.db.GetOrCreateProfile()
	if err != nil {
		return nil, err
	}

	oldLevel := profile.Level()
	profile.AddStat(stat, delta)
	if delta > 0 {
		profile.BonusExperience += int(delta * domain.StatBonusMultiplier)
	}

	if err := s.db.SaveProfile(profile); err != nil {
		return nil, fmt.Errorf("save profile: %w", err)
	}

	history := domain.StatHistory{
		ID:    uuid.New(),
		Date:  now,
		Stat:  stat,
		Value: profile.Stat(stat),
	}
	if err := s.db.InsertStatHistory(history); err != nil {
		return nil, fmt.Errorf("record stat history: %w", err)
	}

	metrics.ProfileLevel.Set(float64(profile.Level()))
	return s.levelUpEvent(oldLevel, profile.Level(), now)
}

// levelUpEvent unlocks sprites and builds the event record when the
// level increased. Sprite unlocking is one-directional.
func (s *Service) levelUpEvent(oldLevel, newLevel int, now time.Time) (*domain.LevelUpEvent, error) {
	if newLevel <= oldLevel {
		return nil, nil
	}

	unlocked, err := s.db.UnlockSpritesUpTo(newLevel, now)
	if err != nil {
		return nil, fmt.Errorf("unlock sprites: %w", err)
	}
	metrics.LevelUps.Inc()
	return &domain.LevelUpEvent{
		OldLevel:        oldLevel,
		NewLevel:        newLevel,
		UnlockedSprites: unlocked,
	}, nil
}

// StatFor resolves the stat credited by an instance's subcategory.
// Returns ok=false when the subcategory or its category is missing.
func (s *Service) StatFor(inst domain.ScheduleInstance) (domain.StatType, bool, error) {
	if inst.SubcategoryID == nil {
		return "", false, nil
	}
	sub, err := s.db.GetSubcategory(*inst.SubcategoryID)
	if err != nil {
		return "", false, err
	}
	if sub == nil || sub.CategoryID == nil {
		return "", false, nil
	}
	cat, err := s.db.GetCategory(*sub.CategoryID)
	if err != nil {
		return "", false, err
	}
	if cat == nil {
		return "", false, nil
	}
	return cat.Stat, true, nil
}
