package gate_test

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/focusrpg/focusrpg/internal/app/gate"
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

// fakeOracle counts calls and serves a scripted count or error.
type fakeOracle struct {
	count int
	err   error
	calls int
}

func (f *fakeOracle) FetchDailyAcceptedCount(ctx context.Context, username string, day time.Time) (int, error) {
	f.calls++
	return f.count, f.err
}

func enableLeetCode(t *testing.T, db *sqlite.DB, goal int, blocks bool) {
	t.Helper()
	s, err := db.GetOrCreateSettings()
	if err != nil {
		t.Fatalf("settings: %v", err)
	}
	s.LeetCodeEnabled = true
	s.LeetCodeUsername = "tester"
	s.LeetCodeDailyGoal = goal
	s.LeetCodeBlocksRewards = blocks
	if err := db.SaveSettings(s); err != nil {
		t.Fatalf("save settings: %v", err)
	}
}

func TestLeetCodeProgress_CacheWithinTTL(t *testing.T) {
	db := testDB(t)
	enableLeetCode(t, db, 3, true)
	oracle := &fakeOracle{count: 2}
	svc := gate.NewService(db, oracle)

	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	status, err := svc.LeetCodeProgress(context.Background(), now)
	if err != nil {
		t.Fatalf("first check: %v", err)
	}
	if status.Current != 2 || !status.Verified {
		t.Errorf("status = %+v, want current=2 verified", status)
	}

	// A second check inside the TTL is served from the cache.
	if _, err := svc.LeetCodeProgress(context.Background(), now.Add(2*time.Minute)); err != nil {
		t.Fatalf("second check: %v", err)
	}
	if oracle.calls != 1 {
		t.Errorf("oracle calls = %d, want 1 (TTL cache)", oracle.calls)
	}

	// Past the TTL the gate refreshes.
	if _, err := svc.LeetCodeProgress(context.Background(), now.Add(6*time.Minute)); err != nil {
		t.Fatalf("third check: %v", err)
	}
	if oracle.calls != 2 {
		t.Errorf("oracle calls = %d, want 2 after TTL", oracle.calls)
	}
}

func TestLeetCodeProgress_FailureKeepsStaleValue(t *testing.T) {
	db := testDB(t)
	enableLeetCode(t, db, 3, true)
	oracle := &fakeOracle{count: 2}
	svc := gate.NewService(db, oracle)

	now := time.Date(2026, 8, 24, 10, 0, 0, 0, time.UTC)
	if _, err := svc.LeetCodeProgress(context.Background(), now); err != nil {
		t.Fatalf("warm cache: %v", err)
	}

	// Oracle goes down; the stale count stands and no error surfaces.
	oracle.err = domain.ErrOracleUnavailable
	status, err := svc.LeetCodeProgress(context.Background(), now.Add(10*time.Minute))
	if err != nil {
		t.Fatalf("degraded check: %v", err)
	}
	if status.Current != 2 {
		t.Errorf("current = %d, want stale 2", status.Current)
	}
}

func TestEvaluateRedemption_VetoWithProgress(t *testing.T) {
	db := testDB(t)
	enableLeetCode(t, db, 3, true)
	svc := gate.NewService(db, &fakeOracle{count: 1})

	result, err := svc.EvaluateRedemption(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if result.Allowed {
		t.Error("expected veto with 1/3 solved")
	}
	if result.Reason == "" {
		t.Error("veto must carry a reason")
	}
	if result.Progress["leetcode"] != "1/3 problems solved" {
		t.Errorf("progress = %q", result.Progress["leetcode"])
	}
}

func TestEvaluateRedemption_NonBlockingSourceNeverVetoes(t *testing.T) {
	db := testDB(t)
	enableLeetCode(t, db, 3, false)
	svc := gate.NewService(db, &fakeOracle{count: 0})

	result, err := svc.EvaluateRedemption(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.Allowed {
		t.Errorf("non-blocking source must not veto: %s", result.Reason)
	}
	if _, ok := result.Progress["leetcode"]; !ok {
		t.Error("progress string must be present even when passing")
	}
}

func TestEvaluateRedemption_GoalMetAllows(t *testing.T) {
	db := testDB(t)
	enableLeetCode(t, db, 3, true)
	svc := gate.NewService(db, &fakeOracle{count: 3})

	result, err := svc.EvaluateRedemption(context.Background(), time.Now())
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !result.Allowed {
		t.Errorf("goal met, expected allowed: %s", result.Reason)
	}
}

func TestCompletionMultiplier(t *testing.T) {
	db := testDB(t)
	enableLeetCode(t, db, 3, false)
	svc := gate.NewService(db, &fakeOracle{count: 3})

	now := time.Now()
	mult, event := svc.CompletionMultiplier(context.Background(), domain.StatIntelligence, now)
	if math.Abs(mult-1.3) > 1e-9 {
		t.Errorf("multiplier = %v, want 1.3", mult)
	}
	if event == nil || event.ProblemCount != 3 || event.BonusPercent != 30 {
		t.Errorf("event = %+v", event)
	}

	// Non-intelligence work never gets the bonus.
	mult, event = svc.CompletionMultiplier(context.Background(), domain.StatStrength, now)
	if mult != 1.0 || event != nil {
		t.Errorf("strength multiplier = %v, event = %+v", mult, event)
	}
}

func TestCompletionMultiplier_Capped(t *testing.T) {
	db := testDB(t)
	enableLeetCode(t, db, 3, false)
	svc := gate.NewService(db, &fakeOracle{count: 9})

	mult, event := svc.CompletionMultiplier(context.Background(), domain.StatIntelligence, time.Now())
	if mult != 1.5 {
		t.Errorf("multiplier = %v, want cap 1.5", mult)
	}
	if event.BonusPercent != 50 {
		t.Errorf("bonus = %d%%, want 50", event.BonusPercent)
	}
}
