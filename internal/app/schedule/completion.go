package schedule

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/app/gate"
	"github.com/focusrpg/focusrpg/internal/app/level"
	"github.com/focusrpg/focusrpg/internal/app/progress"
	"github.com/focusrpg/focusrpg/internal/app/reward"
	"github.com/focusrpg/focusrpg/internal/app/streaks"
	"github.com/focusrpg/focusrpg/internal/app/wallet"
	"github.com/focusrpg/focusrpg/internal/domain"
	"github.com/focusrpg/focusrpg/internal/infra/metrics"
	"github.com/focusrpg/focusrpg/internal/infra/sqlite"
)

// Service orchestrates the complete/skip flows across the reward,
// level, wallet, progress, and streak components.
type Service struct {
	db       *sqlite.DB
	level    *level.Service
	wallet   *wallet.Service
	gate     *gate.Service
	progress *progress.Service
	streaks  *streaks.Service
}

// NewService wires the completion flow.
func NewService(db *sqlite.DB, lvl *level.Service, w *wallet.Service, g *gate.Service, p *progress.Service, st *streaks.Service) *Service {
	return &Service{db: db, level: lvl, wallet: w, gate: g, progress: p, streaks: st}
}

// Instance returns one instance with its tasks.
func (s *Service) Instance(id uuid.UUID) (*domain.ScheduleInstance, error) {
	return s.db.GetInstance(id)
}

// InstancesOn returns the day's instances, materializing recurring
// blocks for that day first.
func (s *Service) InstancesOn(exp *Expander, day time.Time) ([]domain.ScheduleInstance, error) {
	if _, err := exp.GenerateForDate(day); err != nil {
		return nil, err
	}
	start := domain.DayOf(day)
	return s.db.ListInstancesBetween(start, start.AddDate(0, 0, 1))
}

// SetTaskCompleted toggles one task of an instance.
func (s *Service) SetTaskCompleted(instanceID, taskID uuid.UUID, completed bool) error {
	inst, err := s.db.GetInstance(instanceID)
	if err != nil {
		return err
	}
	for _, t := range inst.Tasks {
		if t.ID == taskID {
			t.Completed = completed
			return s.db.UpdateTask(t)
		}
	}
	return fmt.Errorf("task %s not on instance %s", taskID, instanceID)
}

// Complete finishes an instance: weighted completion, earned minutes,
// stat credit with oracle validation, audit record, derived progress and
// streak updates. Completing an already-completed instance is a no-op.
// Partial completion still pays out proportionally; reward minutes are
// truncated at both steps, never rounded up.
func (s *Service) Complete(ctx context.Context, id uuid.UUID, now time.Time) (domain.CompletionEvents, error) {
	var events domain.CompletionEvents

	inst, err := s.db.GetInstance(id)
	if err != nil {
		return events, err
	}
	if inst.Completed {
		return events, nil
	}

	completion := reward.Completion(inst.Tasks)
	earned := reward.EarnedMinutes(inst.BaseRewardMinutes, completion)
	events.CompletionPercent = completion
	events.MinutesEarned = earned

	inst.Completed = true
	if err := s.db.UpdateInstance(*inst); err != nil {
		return events, err
	}

	credited, err := s.wallet.AddEarnedMinutes(earned, now)
	if err != nil {
		return events, err
	}
	events.MinutesCredited = credited

	session := domain.FocusSession{
		ID:                 uuid.New(),
		Date:               now,
		CompletionPercent:  completion,
		MinutesEarned:      earned,
		BlockTitleSnapshot: inst.Title,
	}
	if err := s.db.InsertFocusSession(session); err != nil {
		return events, fmt.Errorf("record session: %w", err)
	}

	// Resolve the stat once; it feeds both the oracle multiplier and
	// the credit.
	stat, ok, err := s.level.StatFor(*inst)
	if err != nil {
		return events, err
	}
	multiplier := 1.0
	if ok {
		multiplier, events.Verification = s.gate.CompletionMultiplier(ctx, stat, now)
	}
	levelUp, err := s.level.CreditCompletion(*inst, stat, completion, multiplier, now)
	if err != nil {
		return events, err
	}
	events.LevelUp = levelUp

	if err := s.progress.OnInstanceCompleted(now); err != nil {
		return events, err
	}
	milestone, err := s.streaks.RecordCompletion(now)
	if err != nil {
		return events, err
	}
	events.StreakMilestone = milestone

	metrics.InstancesCompleted.Inc()
	log.Printf("[schedule] completed %q: %.0f%% done, %d min earned, %d credited",
		inst.Title, completion*100, earned, credited)
	return events, nil
}

// Skip dismisses an instance without rewards and applies the stat
// penalty: half of the full-completion gain, no oracle involvement.
// The instance is removed so it never counts toward lifetime totals.
func (s *Service) Skip(ctx context.Context, id uuid.UUID, now time.Time) error {
	inst, err := s.db.GetInstance(id)
	if err != nil {
		return err
	}
	if inst.Completed {
		return fmt.Errorf("instance %s already completed", id)
	}

	if err := s.level.PenalizeSkip(*inst, now); err != nil {
		return err
	}
	if err := s.db.DeleteInstance(id); err != nil {
		return err
	}

	metrics.InstancesSkipped.Inc()
	log.Printf("[schedule] skipped %q", inst.Title)
	return nil
}
