// Package schedule owns the planning side of the engine: materializing
// recurring blocks and the complete/skip flows that turn a finished
// block into rewards.
package schedule

import (
	"fmt"
	"log"
	"time"

	"github.com/focusrpg/focusrpg/internal/domain"
	"github.com/focusrpg/focusrpg/internal/infra/metrics"
	"github.com/focusrpg/focusrpg/internal/infra/sqlite"
)

// CalendarSync mirrors materialized instances into an external
// calendar. The returned event ID is remembered on the instance.
type CalendarSync interface {
	CreateEvent(inst domain.ScheduleInstance) (eventID string, err error)
}

// Expander materializes schedule instances from weekly recurrence
// rules. Generation is idempotent: rerunning a date or overlapping
// ranges never duplicates an instance.
type Expander struct {
	db       *sqlite.DB
	calendar CalendarSync
}

// NewExpander creates an expander. calendar may be nil.
func NewExpander(db *sqlite.DB, calendar CalendarSync) *Expander {
	return &Expander{db: db, calendar: calendar}
}

// GenerateForDate materializes every active rule that applies to the
// given date, skipping rules that already have an instance that day.
// Returns the number of instances created.
func (e *Expander) GenerateForDate(date time.Time) (int, error) {
	rules, err := e.db.ListActiveRules()
	if err != nil {
		return 0, fmt.Errorf("list rules: %w", err)
	}
	if len(rules) == 0 {
		return 0, nil
	}

	existing, err := e.db.ListRecurringInstancesOn(date)
	if err != nil {
		return 0, fmt.Errorf("list existing: %w", err)
	}
	// Natural key, not rule ID: an instance created before the rule was
	// edited (or imported from elsewhere) still blocks a duplicate.
	seen := map[naturalKey]bool{}
	for _, inst := range existing {
		seen[keyOf(inst.Title, inst.StartTime.Hour(), inst.StartTime.Minute())] = true
	}

	created := 0
	for _, rule := range rules {
		if !rule.AppliesTo(date) {
			continue
		}
		key := keyOf(rule.Title, rule.StartHour, rule.StartMinute)
		if seen[key] {
			continue
		}

		inst := rule.Materialize(date)
		if e.calendar != nil {
			if eventID, err := e.calendar.CreateEvent(inst); err != nil {
				log.Printf("[schedule] calendar sync failed for %q: %v", inst.Title, err)
			} else {
				inst.CalendarEventID = eventID
			}
		}
		if err := e.db.InsertInstance(inst); err != nil {
			return created, fmt.Errorf("materialize %q: %w", rule.Title, err)
		}
		seen[key] = true
		created++
		metrics.InstancesMaterialized.Inc()
	}
	return created, nil
}

// GenerateForRange materializes instances for each day in [from, to],
// inclusive on both ends.
func (e *Expander) GenerateForRange(from, to time.Time) (int, error) {
	total := 0
	for day := domain.DayOf(from); !day.After(domain.DayOf(to)); day = day.AddDate(0, 0, 1) {
		n, err := e.GenerateForDate(day)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// GenerateNextWeek materializes today through today+7.
func (e *Expander) GenerateNextWeek(now time.Time) (int, error) {
	return e.GenerateForRange(now, now.AddDate(0, 0, 7))
}

type naturalKey struct {
	title     string
	hour, min int
}

func keyOf(title string, hour, min int) naturalKey {
	return naturalKey{title: title, hour: hour, min: min}
}
