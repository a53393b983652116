package domain_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/domain"
)

func TestRecurrenceRule_AppliesTo(t *testing.T) {
	rule := domain.RecurrenceRule{
		ID:         uuid.New(),
		Active:     true,
		DaysOfWeek: []int{2, 4, 6}, // Mon, Wed, Fri
	}

	monday := time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)
	tuesday := monday.AddDate(0, 0, 1)
	if !rule.AppliesTo(monday) {
		t.Error("expected rule to apply on Monday")
	}
	if rule.AppliesTo(tuesday) {
		t.Error("expected rule not to apply on Tuesday")
	}

	rule.Active = false
	if rule.AppliesTo(monday) {
		t.Error("inactive rule must never apply")
	}
}

func TestRecurrenceRule_Materialize(t *testing.T) {
	rule := domain.RecurrenceRule{
		ID:                uuid.New(),
		Title:             "Morning Focus",
		StartHour:         9, StartMinute: 30,
		EndHour: 11, EndMinute: 0,
		BaseRewardMinutes: 20,
		Active:            true,
	}

	day := time.Date(2026, 8, 24, 15, 45, 0, 0, time.Local)
	inst := rule.Materialize(day)

	if inst.StartTime.Hour() != 9 || inst.StartTime.Minute() != 30 {
		t.Errorf("start = %v, want 09:30", inst.StartTime)
	}
	if inst.EndTime.Hour() != 11 {
		t.Errorf("end = %v, want 11:00", inst.EndTime)
	}
	if !inst.Recurring || inst.RecurringGroupID != rule.ID.String() {
		t.Error("materialized instance must carry the rule's group id")
	}
	if len(inst.Tasks) != 1 {
		t.Fatalf("expected default task, got %d", len(inst.Tasks))
	}
	if inst.Hours() != 1.5 {
		t.Errorf("duration = %v hours, want 1.5", inst.Hours())
	}
}

func TestWallet_RemainingSeconds(t *testing.T) {
	start := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	w := domain.Wallet{
		ID:                       uuid.New(),
		RedeemedMinutesRemaining: 10,
		RedemptionStartTime:      &start,
	}

	if got := w.RemainingSeconds(start); got != 600 {
		t.Errorf("at start: %d, want 600", got)
	}
	if got := w.RemainingSeconds(start.Add(599 * time.Second)); got != 1 {
		t.Errorf("at T+599: %d, want 1", got)
	}
	if got := w.RemainingSeconds(start.Add(600 * time.Second)); got != 0 {
		t.Errorf("at T+600: %d, want 0", got)
	}
	// A very late check (sleep, suspend) never goes negative.
	if got := w.RemainingSeconds(start.Add(48 * time.Hour)); got != 0 {
		t.Errorf("late check: %d, want 0", got)
	}
}

func TestDayHelpers(t *testing.T) {
	a := time.Date(2026, 8, 24, 23, 59, 0, 0, time.UTC)
	b := time.Date(2026, 8, 25, 0, 1, 0, 0, time.UTC)

	if domain.SameDay(a, b) {
		t.Error("23:59 and next-day 00:01 are different days")
	}
	if got := domain.DaysBetween(a, b); got != 1 {
		t.Errorf("DaysBetween = %d, want 1", got)
	}
	if got := domain.DaysBetween(b, a); got != -1 {
		t.Errorf("reversed DaysBetween = %d, want -1", got)
	}
	if !domain.DayOf(a).Equal(time.Date(2026, 8, 24, 0, 0, 0, 0, time.UTC)) {
		t.Error("DayOf must normalize to midnight")
	}
}
