// Package domain defines the core entities of the progression engine:
// schedule instances, tasks, recurrence rules, the profile stat model,
// the screen-time wallet, quests, and achievements.
// Domain types are pure — no infrastructure dependency.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// ScheduleInstance is a single, dated occurrence of planned work.
// It owns its task list (cascade delete) and is created either by direct
// user action or by materializing a RecurrenceRule.
type ScheduleInstance struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	StartTime         time.Time  `json:"start_time"`
	EndTime           time.Time  `json:"end_time"`
	BaseRewardMinutes int        `json:"base_reward_minutes"`
	CreatedAt         time.Time  `json:"created_at"`
	Completed         bool       `json:"completed"`
	PomodoroMode      bool       `json:"pomodoro_mode"`
	Recurring         bool       `json:"recurring"`
	RecurringGroupID  string     `json:"recurring_group_id,omitempty"`
	CalendarEventID   string     `json:"calendar_event_id,omitempty"`
	SubcategoryID     *uuid.UUID `json:"subcategory_id,omitempty"`
	Tasks             []Task     `json:"tasks"`
}

// Duration returns the scheduled length of the instance.
func (s ScheduleInstance) Duration() time.Duration {
	return s.EndTime.Sub(s.StartTime)
}

// Hours returns the scheduled length in fractional hours.
func (s ScheduleInstance) Hours() float64 {
	return s.Duration().Hours()
}

// NewScheduleInstance creates an instance with the default single task,
// matching the behavior of direct user creation.
func NewScheduleInstance(title string, start, end time.Time, baseRewardMinutes int) ScheduleInstance {
	return ScheduleInstance{
		ID:                uuid.New(),
		Title:             title,
		StartTime:         start,
		EndTime:           end,
		BaseRewardMinutes: baseRewardMinutes,
		CreatedAt:         time.Now(),
		Tasks:             []Task{NewTask("Complete Block", 1.0)},
	}
}

// Task is a weighted unit of work owned by exactly one ScheduleInstance.
// Re-parenting is allowed (moving an incomplete task to a future instance).
type Task struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Weight    float64   `json:"weight"`
	Completed bool      `json:"completed"`
}

// NewTask creates a task with the given weight.
func NewTask(title string, weight float64) Task {
	return Task{ID: uuid.New(), Title: title, Weight: weight}
}

// RecurrenceRule is a weekly repeating template that materializes
// schedule instances. The rule itself is never completed or consumed.
type RecurrenceRule struct {
	ID                uuid.UUID  `json:"id"`
	Title             string     `json:"title"`
	StartHour         int        `json:"start_hour"`
	StartMinute       int        `json:"start_minute"`
	EndHour           int        `json:"end_hour"`
	EndMinute         int        `json:"end_minute"`
	BaseRewardMinutes int        `json:"base_reward_minutes"`
	SubcategoryID     *uuid.UUID `json:"subcategory_id,omitempty"`
	Active            bool       `json:"active"`
	DaysOfWeek        []int      `json:"days_of_week"` // 1=Sunday .. 7=Saturday
	CreatedAt         time.Time  `json:"created_at"`
}

// DurationMinutes returns the length of one materialized instance.
func (r RecurrenceRule) DurationMinutes() int {
	return (r.EndHour*60 + r.EndMinute) - (r.StartHour*60 + r.StartMinute)
}

// AppliesTo reports whether the rule should materialize an instance on
// the given date: it must be active and match the date's weekday.
func (r RecurrenceRule) AppliesTo(date time.Time) bool {
	if !r.Active {
		return false
	}
	weekday := int(date.Weekday()) + 1 // time.Sunday=0 → 1
	for _, d := range r.DaysOfWeek {
		if d == weekday {
			return true
		}
	}
	return false
}

// Materialize builds one ScheduleInstance on the given calendar day at
// the rule's start/end wall-clock time.
func (r RecurrenceRule) Materialize(date time.Time) ScheduleInstance {
	year, month, day := date.Date()
	loc := date.Location()
	inst := NewScheduleInstance(
		r.Title,
		time.Date(year, month, day, r.StartHour, r.StartMinute, 0, 0, loc),
		time.Date(year, month, day, r.EndHour, r.EndMinute, 0, 0, loc),
		r.BaseRewardMinutes,
	)
	inst.Recurring = true
	inst.RecurringGroupID = r.ID.String()
	inst.SubcategoryID = r.SubcategoryID
	return inst
}

// FocusSession is an audit record of a single completed instance.
type FocusSession struct {
	ID                 uuid.UUID `json:"id"`
	Date               time.Time `json:"date"`
	CompletionPercent  float64   `json:"completion_percent"`
	MinutesEarned      int       `json:"minutes_earned"`
	BlockTitleSnapshot string    `json:"block_title_snapshot"`
}
