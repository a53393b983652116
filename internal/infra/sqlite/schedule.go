package sqlite

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/domain"
)

// ─── Schedule Instances ─────────────────────────────────────────────────────

const instanceCols = `id, title, start_time, end_time, base_reward_minutes, created_at,
	completed, pomodoro, recurring, recurring_group_id, calendar_event_id, subcategory_id`

// InsertInstance stores a schedule instance together with its tasks.
func (d *DB) InsertInstance(inst domain.ScheduleInstance) error {
	_, err := d.db.Exec(
		`INSERT INTO schedule_instances (`+instanceCols+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inst.ID.String(), inst.Title, inst.StartTime.Unix(), inst.EndTime.Unix(),
		inst.BaseRewardMinutes, inst.CreatedAt.Unix(),
		inst.Completed, inst.PomodoroMode, inst.Recurring,
		nullStr(inst.RecurringGroupID), nullStr(inst.CalendarEventID),
		nullUUID(inst.SubcategoryID),
	)
	if err != nil {
		return fmt.Errorf("insert instance: %w", err)
	}
	for _, task := range inst.Tasks {
		if err := d.InsertTask(inst.ID, task); err != nil {
			return err
		}
	}
	return nil
}

// UpdateInstance rewrites the mutable instance columns (not its tasks).
func (d *DB) UpdateInstance(inst domain.ScheduleInstance) error {
	res, err := d.db.Exec(
		`UPDATE schedule_instances SET title=?, start_time=?, end_time=?,
		 base_reward_minutes=?, completed=?, pomodoro=?, recurring=?,
		 recurring_group_id=?, calendar_event_id=?, subcategory_id=?
		 WHERE id=?`,
		inst.Title, inst.StartTime.Unix(), inst.EndTime.Unix(),
		inst.BaseRewardMinutes, inst.Completed, inst.PomodoroMode, inst.Recurring,
		nullStr(inst.RecurringGroupID), nullStr(inst.CalendarEventID),
		nullUUID(inst.SubcategoryID), inst.ID.String(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInstanceNotFound
	}
	return nil
}

// GetInstance retrieves a single instance with its tasks.
func (d *DB) GetInstance(id uuid.UUID) (*domain.ScheduleInstance, error) {
	row := d.db.QueryRow(
		`SELECT `+instanceCols+` FROM schedule_instances WHERE id = ?`, id.String(),
	)
	inst, err := scanInstance(row)
	if err != nil || inst == nil {
		return inst, err
	}
	inst.Tasks, err = d.TasksForInstance(inst.ID)
	return inst, err
}

// ListInstancesBetween returns instances starting in [from, to), with
// tasks attached, ordered by start time.
func (d *DB) ListInstancesBetween(from, to time.Time) ([]domain.ScheduleInstance, error) {
	rows, err := d.db.Query(
		`SELECT `+instanceCols+` FROM schedule_instances
		 WHERE start_time >= ? AND start_time < ? ORDER BY start_time`,
		from.Unix(), to.Unix(),
	)
	if err != nil {
		return nil, err
	}
	return d.collectInstances(rows)
}

// ListRecurringInstancesOn returns recurring instances whose start time
// falls on the given calendar day. Used for natural-key de-duplication.
func (d *DB) ListRecurringInstancesOn(day time.Time) ([]domain.ScheduleInstance, error) {
	start := domain.DayOf(day)
	end := start.AddDate(0, 0, 1)
	rows, err := d.db.Query(
		`SELECT `+instanceCols+` FROM schedule_instances
		 WHERE recurring = 1 AND start_time >= ? AND start_time < ?`,
		start.Unix(), end.Unix(),
	)
	if err != nil {
		return nil, err
	}
	return d.collectInstances(rows)
}

// ListCompletedInstances returns every completed instance ever, tasks
// omitted. The progress tracker recomputes lifetime totals from this.
func (d *DB) ListCompletedInstances() ([]domain.ScheduleInstance, error) {
	rows, err := d.db.Query(
		`SELECT ` + instanceCols + ` FROM schedule_instances WHERE completed = 1`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []domain.ScheduleInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, *inst)
	}
	return instances, rows.Err()
}

// DeleteInstance removes an instance; tasks cascade.
func (d *DB) DeleteInstance(id uuid.UUID) error {
	res, err := d.db.Exec(`DELETE FROM schedule_instances WHERE id = ?`, id.String())
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrInstanceNotFound
	}
	return nil
}

// DeleteFutureRecurringSiblings removes not-yet-completed instances that
// share a recurring group and start after the given time.
func (d *DB) DeleteFutureRecurringSiblings(groupID string, after time.Time) (int64, error) {
	res, err := d.db.Exec(
		`DELETE FROM schedule_instances
		 WHERE recurring_group_id = ? AND start_time > ? AND completed = 0`,
		groupID, after.Unix(),
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (d *DB) collectInstances(rows *sql.Rows) ([]domain.ScheduleInstance, error) {
	defer rows.Close()

	var instances []domain.ScheduleInstance
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for i := range instances {
		tasks, err := d.TasksForInstance(instances[i].ID)
		if err != nil {
			return nil, err
		}
		instances[i].Tasks = tasks
	}
	return instances, nil
}

func scanInstance(s scanner) (*domain.ScheduleInstance, error) {
	var inst domain.ScheduleInstance
	var id string
	var start, end, created int64
	var groupID, eventID, subID sql.NullString

	err := s.Scan(&id, &inst.Title, &start, &end, &inst.BaseRewardMinutes, &created,
		&inst.Completed, &inst.PomodoroMode, &inst.Recurring, &groupID, &eventID, &subID)
	if err == sql.ErrNoRows {
		return nil, domain.ErrInstanceNotFound
	}
	if err != nil {
		return nil, err
	}

	inst.ID, err = uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("parse instance id: %w", err)
	}
	inst.StartTime = time.Unix(start, 0)
	inst.EndTime = time.Unix(end, 0)
	inst.CreatedAt = time.Unix(created, 0)
	inst.RecurringGroupID = groupID.String
	inst.CalendarEventID = eventID.String
	if subID.Valid {
		if parsed, err := uuid.Parse(subID.String); err == nil {
			inst.SubcategoryID = &parsed
		}
	}
	return &inst, nil
}

// ─── Tasks ──────────────────────────────────────────────────────────────────

// InsertTask attaches a task to an instance.
func (d *DB) InsertTask(instanceID uuid.UUID, task domain.Task) error {
	_, err := d.db.Exec(
		`INSERT INTO tasks (id, instance_id, title, weight, completed) VALUES (?, ?, ?, ?, ?)`,
		task.ID.String(), instanceID.String(), task.Title, task.Weight, task.Completed,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

// UpdateTask rewrites a task's title, weight, and completion flag.
func (d *DB) UpdateTask(task domain.Task) error {
	_, err := d.db.Exec(
		`UPDATE tasks SET title=?, weight=?, completed=? WHERE id=?`,
		task.Title, task.Weight, task.Completed, task.ID.String(),
	)
	return err
}

// ReparentTask moves a task to another instance (e.g. carrying an
// incomplete task forward to a future block).
func (d *DB) ReparentTask(taskID, newInstanceID uuid.UUID) error {
	res, err := d.db.Exec(
		`UPDATE tasks SET instance_id=? WHERE id=?`,
		newInstanceID.String(), taskID.String(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// TasksForInstance returns an instance's tasks in insertion order.
func (d *DB) TasksForInstance(instanceID uuid.UUID) ([]domain.Task, error) {
	rows, err := d.db.Query(
		`SELECT id, title, weight, completed FROM tasks WHERE instance_id = ? ORDER BY rowid`,
		instanceID.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		var t domain.Task
		var id string
		if err := rows.Scan(&id, &t.Title, &t.Weight, &t.Completed); err != nil {
			return nil, err
		}
		if t.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse task id: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

// ─── Recurrence Rules ───────────────────────────────────────────────────────

const ruleCols = `id, title, start_hour, start_minute, end_hour, end_minute,
	base_reward_minutes, subcategory_id, active, days_of_week, created_at`

// InsertRule stores a recurrence rule.
func (d *DB) InsertRule(rule domain.RecurrenceRule) error {
	_, err := d.db.Exec(
		`INSERT INTO recurrence_rules (id, title, start_hour, start_minute, end_hour, end_minute,
		 base_reward_minutes, subcategory_id, active, days_of_week, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rule.ID.String(), rule.Title, rule.StartHour, rule.StartMinute,
		rule.EndHour, rule.EndMinute, rule.BaseRewardMinutes,
		nullUUID(rule.SubcategoryID), rule.Active, joinDays(rule.DaysOfWeek),
		rule.CreatedAt.Unix(),
	)
	return err
}

// UpdateRule rewrites a rule's mutable columns.
func (d *DB) UpdateRule(rule domain.RecurrenceRule) error {
	res, err := d.db.Exec(
		`UPDATE recurrence_rules SET title=?, start_hour=?, start_minute=?, end_hour=?,
		 end_minute=?, base_reward_minutes=?, subcategory_id=?, active=?, days_of_week=?
		 WHERE id=?`,
		rule.Title, rule.StartHour, rule.StartMinute, rule.EndHour, rule.EndMinute,
		rule.BaseRewardMinutes, nullUUID(rule.SubcategoryID), rule.Active,
		joinDays(rule.DaysOfWeek), rule.ID.String(),
	)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.ErrRuleNotFound
	}
	return nil
}

// GetRule retrieves a single recurrence rule.
func (d *DB) GetRule(id uuid.UUID) (*domain.RecurrenceRule, error) {
	row := d.db.QueryRow(
		`SELECT `+ruleCols+` FROM recurrence_rules WHERE id = ?`, id.String(),
	)
	return scanRule(row)
}

// ListRules returns every recurrence rule, oldest first.
func (d *DB) ListRules() ([]domain.RecurrenceRule, error) {
	rows, err := d.db.Query(
		`SELECT ` + ruleCols + ` FROM recurrence_rules ORDER BY created_at`,
	)
	if err != nil {
		return nil, err
	}
	return collectRules(rows)
}

// ListActiveRules returns all rules with active=1.
func (d *DB) ListActiveRules() ([]domain.RecurrenceRule, error) {
	rows, err := d.db.Query(
		`SELECT ` + ruleCols + ` FROM recurrence_rules WHERE active = 1`,
	)
	if err != nil {
		return nil, err
	}
	return collectRules(rows)
}

func collectRules(rows *sql.Rows) ([]domain.RecurrenceRule, error) {
	defer rows.Close()

	var rules []domain.RecurrenceRule
	for rows.Next() {
		r, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		rules = append(rules, *r)
	}
	return rules, rows.Err()
}

func scanRule(s scanner) (*domain.RecurrenceRule, error) {
	var r domain.RecurrenceRule
	var id, days string
	var subID sql.NullString
	var created int64

	err := s.Scan(&id, &r.Title, &r.StartHour, &r.StartMinute, &r.EndHour,
		&r.EndMinute, &r.BaseRewardMinutes, &subID, &r.Active, &days, &created)
	if err == sql.ErrNoRows {
		return nil, domain.ErrRuleNotFound
	}
	if err != nil {
		return nil, err
	}

	if r.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parse rule id: %w", err)
	}
	if subID.Valid {
		if parsed, err := uuid.Parse(subID.String); err == nil {
			r.SubcategoryID = &parsed
		}
	}
	r.DaysOfWeek = splitDays(days)
	r.CreatedAt = time.Unix(created, 0)
	return &r, nil
}

// ─── Focus Sessions ─────────────────────────────────────────────────────────

// InsertFocusSession records a completion audit entry.
func (d *DB) InsertFocusSession(s domain.FocusSession) error {
	_, err := d.db.Exec(
		`INSERT INTO focus_sessions (id, date, completion_percent, minutes_earned, block_title)
		 VALUES (?, ?, ?, ?, ?)`,
		s.ID.String(), s.Date.Unix(), s.CompletionPercent, s.MinutesEarned, s.BlockTitleSnapshot,
	)
	return err
}

// ListFocusSessions returns the most recent sessions, newest first.
func (d *DB) ListFocusSessions(limit int) ([]domain.FocusSession, error) {
	rows, err := d.db.Query(
		`SELECT id, date, completion_percent, minutes_earned, block_title
		 FROM focus_sessions ORDER BY date DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []domain.FocusSession
	for rows.Next() {
		var s domain.FocusSession
		var id string
		var date int64
		if err := rows.Scan(&id, &date, &s.CompletionPercent, &s.MinutesEarned, &s.BlockTitleSnapshot); err != nil {
			return nil, err
		}
		if s.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse session id: %w", err)
		}
		s.Date = time.Unix(date, 0)
		sessions = append(sessions, s)
	}
	return sessions, rows.Err()
}

// ─── Helpers ────────────────────────────────────────────────────────────────

func nullStr(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func nullUUID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func joinDays(days []int) string {
	parts := make([]string, len(days))
	for i, d := range days {
		parts[i] = strconv.Itoa(d)
	}
	return strings.Join(parts, ",")
}

func splitDays(s string) []int {
	if s == "" {
		return nil
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		if n, err := strconv.Atoi(part); err == nil {
			days = append(days, n)
		}
	}
	return days
}
