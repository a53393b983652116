package schedule_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/app/blocking"
	"github.com/focusrpg/focusrpg/internal/app/gate"
	"github.com/focusrpg/focusrpg/internal/app/level"
	"github.com/focusrpg/focusrpg/internal/app/progress"
	"github.com/focusrpg/focusrpg/internal/app/schedule"
	"github.com/focusrpg/focusrpg/internal/app/streaks"
	"github.com/focusrpg/focusrpg/internal/app/wallet"
	"github.com/focusrpg/focusrpg/internal/domain"
	"github.com/focusrpg/focusrpg/internal/infra/sqlite"
)

// testDB creates a temporary SQLite database for testing.
func testDB(t *testing.T) *sqlite.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// newFlow wires the full completion flow over one test database.
func newFlow(t *testing.T) (*schedule.Service, *sqlite.DB) {
	t.Helper()
	db := testDB(t)
	lvl := level.NewService(db)
	g := gate.NewService(db, nil)
	w := wallet.NewService(db, g, blocking.NewCoordinator(nil))
	p := progress.NewService(db, lvl, w)
	st := streaks.NewService(db)
	return schedule.NewService(db, lvl, w, g, p, st), db
}

func weeklyRule(days []int) domain.RecurrenceRule {
	return domain.RecurrenceRule{
		ID:                uuid.New(),
		Title:             "Deep Work",
		StartHour:         9,
		EndHour:           10,
		BaseRewardMinutes: 20,
		Active:            true,
		DaysOfWeek:        days,
		CreatedAt:         time.Now(),
	}
}

// ─── Expander ───────────────────────────────────────────────────────────────

func TestExpander_GenerateForDateIdempotent(t *testing.T) {
	db := testDB(t)
	exp := schedule.NewExpander(db, nil)

	rule := weeklyRule([]int{2}) // Mondays
	if err := db.InsertRule(rule); err != nil {
		t.Fatalf("insert rule: %v", err)
	}

	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	created, err := exp.GenerateForDate(monday)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}

	// Re-running the same day creates nothing.
	created, err = exp.GenerateForDate(monday)
	if err != nil {
		t.Fatalf("regenerate: %v", err)
	}
	if created != 0 {
		t.Errorf("created = %d on re-run, want 0", created)
	}
}

func TestExpander_NaturalKeyDedup(t *testing.T) {
	db := testDB(t)
	exp := schedule.NewExpander(db, nil)

	rule := weeklyRule([]int{2})
	if err := db.InsertRule(rule); err != nil {
		t.Fatalf("insert rule: %v", err)
	}

	// A pre-existing recurring instance with the same title and start
	// blocks materialization even without the rule's group id.
	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	manual := domain.NewScheduleInstance("Deep Work",
		monday.Add(9*time.Hour), monday.Add(10*time.Hour), 20)
	manual.Recurring = true
	manual.RecurringGroupID = uuid.New().String()
	if err := db.InsertInstance(manual); err != nil {
		t.Fatalf("insert manual: %v", err)
	}

	created, err := exp.GenerateForDate(monday)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if created != 0 {
		t.Errorf("created = %d, want 0 (natural-key dedup)", created)
	}
}

func TestExpander_OverlappingRanges(t *testing.T) {
	db := testDB(t)
	exp := schedule.NewExpander(db, nil)

	if err := db.InsertRule(weeklyRule([]int{2, 3, 4, 5, 6})); err != nil { // weekdays
		t.Fatalf("insert rule: %v", err)
	}

	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	created, err := exp.GenerateForRange(monday, monday.AddDate(0, 0, 6))
	if err != nil {
		t.Fatalf("first range: %v", err)
	}
	if created != 5 {
		t.Fatalf("created = %d, want 5 weekdays", created)
	}

	// Overlapping second range only fills the uncovered days.
	created, err = exp.GenerateForRange(monday.AddDate(0, 0, 3), monday.AddDate(0, 0, 9))
	if err != nil {
		t.Fatalf("second range: %v", err)
	}
	if created != 2 {
		t.Errorf("created = %d in overlap, want 2 (next Mon+Tue)", created)
	}
}

func TestExpander_InactiveRuleSkipped(t *testing.T) {
	db := testDB(t)
	exp := schedule.NewExpander(db, nil)

	rule := weeklyRule([]int{2})
	rule.Active = false
	if err := db.InsertRule(rule); err != nil {
		t.Fatalf("insert rule: %v", err)
	}

	created, err := exp.GenerateForDate(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if created != 0 {
		t.Errorf("created = %d from inactive rule, want 0", created)
	}
}

// ─── Completion flow ────────────────────────────────────────────────────────

func TestComplete_ThreeOfFourTasks(t *testing.T) {
	svc, db := newFlow(t)
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	inst := domain.ScheduleInstance{
		ID:                uuid.New(),
		Title:             "Study Block",
		StartTime:         now.Add(-time.Hour),
		EndTime:           now,
		BaseRewardMinutes: 20,
		CreatedAt:         now,
	}
	for i := 0; i < 4; i++ {
		task := domain.NewTask("part", 1.0)
		task.Completed = i < 3
		inst.Tasks = append(inst.Tasks, task)
	}
	if err := db.InsertInstance(inst); err != nil {
		t.Fatalf("insert: %v", err)
	}

	events, err := svc.Complete(context.Background(), inst.ID, now)
	if err != nil {
		t.Fatalf("complete: %v", err)
	}

	if events.CompletionPercent != 0.75 {
		t.Errorf("completion = %v, want 0.75", events.CompletionPercent)
	}
	if events.MinutesEarned != 15 {
		t.Errorf("earned = %d, want 15", events.MinutesEarned)
	}
	// Default screen-time ratio 0.5: 15 earned minutes credit 7.
	if events.MinutesCredited != 7 {
		t.Errorf("credited = %d, want 7", events.MinutesCredited)
	}

	w, err := db.GetOrCreateWallet()
	if err != nil {
		t.Fatalf("wallet: %v", err)
	}
	if w.AvailableMinutes != 7 {
		t.Errorf("wallet = %d, want 7", w.AvailableMinutes)
	}

	sessions, err := db.ListFocusSessions(10)
	if err != nil {
		t.Fatalf("sessions: %v", err)
	}
	if len(sessions) != 1 || sessions[0].BlockTitleSnapshot != "Study Block" {
		t.Errorf("sessions = %+v", sessions)
	}
}

func TestComplete_Idempotent(t *testing.T) {
	svc, db := newFlow(t)
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	inst := domain.NewScheduleInstance("Block", now.Add(-time.Hour), now, 20)
	inst.Tasks[0].Completed = true
	if err := db.InsertInstance(inst); err != nil {
		t.Fatalf("insert: %v", err)
	}

	if _, err := svc.Complete(context.Background(), inst.ID, now); err != nil {
		t.Fatalf("first complete: %v", err)
	}
	// A repeat is a no-op: no double pay.
	events, err := svc.Complete(context.Background(), inst.ID, now)
	if err != nil {
		t.Fatalf("second complete: %v", err)
	}
	if events.MinutesEarned != 0 || events.MinutesCredited != 0 {
		t.Errorf("second completion paid out: %+v", events)
	}

	w, _ := db.GetOrCreateWallet()
	if w.AvailableMinutes != 10 {
		t.Errorf("wallet = %d, want 10 (single payout)", w.AvailableMinutes)
	}
}

func TestComplete_UpdatesStreak(t *testing.T) {
	svc, db := newFlow(t)
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	inst := domain.NewScheduleInstance("Block", now.Add(-time.Hour), now, 20)
	if err := db.InsertInstance(inst); err != nil {
		t.Fatalf("insert: %v", err)
	}
	if _, err := svc.Complete(context.Background(), inst.ID, now); err != nil {
		t.Fatalf("complete: %v", err)
	}

	streak, err := db.GetOrCreateStreak()
	if err != nil {
		t.Fatalf("streak: %v", err)
	}
	if streak.CurrentStreak != 1 {
		t.Errorf("streak = %d, want 1", streak.CurrentStreak)
	}
}

func TestSkip_PenaltyNoRewards(t *testing.T) {
	svc, db := newFlow(t)
	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)

	cat := domain.Category{ID: uuid.New(), Stat: domain.StatStrength, CreatedAt: now}
	if err := db.InsertCategory(cat); err != nil {
		t.Fatalf("category: %v", err)
	}
	sub := domain.Subcategory{ID: uuid.New(), Name: "Gym", CategoryID: &cat.ID, CreatedAt: now}
	if err := db.InsertSubcategory(sub); err != nil {
		t.Fatalf("subcategory: %v", err)
	}

	// Earn 8 strength first so the penalty has something to bite.
	earn := domain.NewScheduleInstance("Gym", now.Add(-3*time.Hour), now.Add(-time.Hour), 20)
	earn.SubcategoryID = &sub.ID
	earn.Tasks[0].Completed = true
	if err := db.InsertInstance(earn); err != nil {
		t.Fatalf("insert earn: %v", err)
	}
	if _, err := svc.Complete(context.Background(), earn.ID, now); err != nil {
		t.Fatalf("complete: %v", err)
	}

	skip := domain.NewScheduleInstance("Gym", now, now.Add(time.Hour), 20)
	skip.SubcategoryID = &sub.ID
	if err := db.InsertInstance(skip); err != nil {
		t.Fatalf("insert skip: %v", err)
	}
	if err := svc.Skip(context.Background(), skip.ID, now); err != nil {
		t.Fatalf("skip: %v", err)
	}

	p, err := db.GetOrCreateProfile()
	if err != nil {
		t.Fatalf("profile: %v", err)
	}
	// 2h earned 8; skipping 1h deducts half of 4.
	if p.StrengthStat != 6.0 {
		t.Errorf("strength = %v, want 6.0", p.StrengthStat)
	}

	// Skipped instance is gone and never counts toward lifetime totals.
	if _, err := db.GetInstance(skip.ID); err != domain.ErrInstanceNotFound {
		t.Errorf("expected skipped instance removed, got %v", err)
	}
	w, _ := db.GetOrCreateWallet()
	if w.AvailableMinutes != 10 {
		t.Errorf("wallet = %d, want 10 (no skip payout)", w.AvailableMinutes)
	}
}
