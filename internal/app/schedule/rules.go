package schedule

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/domain"
)

// CreateInstance stores a one-off schedule block. An empty task list
// gets the default single task, matching direct user creation.
func (s *Service) CreateInstance(inst domain.ScheduleInstance) (domain.ScheduleInstance, error) {
	if inst.Title == "" {
		return inst, fmt.Errorf("instance title required")
	}
	if !inst.EndTime.After(inst.StartTime) {
		return inst, fmt.Errorf("instance must end after it starts")
	}
	if inst.ID == uuid.Nil {
		inst.ID = uuid.New()
	}
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = time.Now()
	}
	if len(inst.Tasks) == 0 {
		inst.Tasks = []domain.Task{domain.NewTask("Complete Block", 1.0)}
	}
	for i := range inst.Tasks {
		if inst.Tasks[i].ID == uuid.Nil {
			inst.Tasks[i].ID = uuid.New()
		}
		if inst.Tasks[i].Weight <= 0 {
			inst.Tasks[i].Weight = 1.0
		}
	}

	if err := s.db.InsertInstance(inst); err != nil {
		return inst, err
	}
	log.Printf("[schedule] created %q (%s)", inst.Title, inst.StartTime.Format("2006-01-02 15:04"))
	return inst, nil
}

// MoveTask re-parents a task onto another instance, carrying unfinished
// work forward to a future block.
func (s *Service) MoveTask(taskID, toInstanceID uuid.UUID) error {
	if _, err := s.db.GetInstance(toInstanceID); err != nil {
		return err
	}
	return s.db.ReparentTask(taskID, toInstanceID)
}

// CreateRule validates and stores a weekly recurrence rule. Rules are
// created active; materialization happens on the next generate pass.
func (s *Service) CreateRule(rule domain.RecurrenceRule) (domain.RecurrenceRule, error) {
	if rule.Title == "" {
		return rule, fmt.Errorf("rule title required")
	}
	if rule.DurationMinutes() <= 0 {
		return rule, fmt.Errorf("rule must end after it starts")
	}
	if len(rule.DaysOfWeek) == 0 {
		return rule, fmt.Errorf("rule needs at least one weekday")
	}
	for _, d := range rule.DaysOfWeek {
		if d < 1 || d > 7 {
			return rule, fmt.Errorf("weekday %d out of range 1..7", d)
		}
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now()
	}
	rule.Active = true

	if err := s.db.InsertRule(rule); err != nil {
		return rule, err
	}
	log.Printf("[schedule] rule created %q on %d day(s)", rule.Title, len(rule.DaysOfWeek))
	return rule, nil
}

// Rules returns every recurrence rule, active or not.
func (s *Service) Rules() ([]domain.RecurrenceRule, error) {
	return s.db.ListRules()
}

// DeactivateRule turns a rule off and prunes its not-yet-completed
// instances after now. Completed history stays. Returns the prune count.
func (s *Service) DeactivateRule(id uuid.UUID, now time.Time) (int64, error) {
	rule, err := s.db.GetRule(id)
	if err != nil {
		return 0, err
	}
	if rule.Active {
		rule.Active = false
		if err := s.db.UpdateRule(*rule); err != nil {
			return 0, err
		}
	}

	pruned, err := s.db.DeleteFutureRecurringSiblings(rule.ID.String(), now)
	if err != nil {
		return 0, fmt.Errorf("prune future instances: %w", err)
	}
	if pruned > 0 {
		log.Printf("[schedule] rule %q deactivated, %d future instance(s) pruned", rule.Title, pruned)
	}
	return pruned, nil
}
