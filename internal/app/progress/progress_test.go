package progress_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/app/blocking"
	"github.com/focusrpg/focusrpg/internal/app/gate"
	"github.com/focusrpg/focusrpg/internal/app/level"
	"github.com/focusrpg/focusrpg/internal/app/progress"
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

func newTracker(t *testing.T) (*progress.Service, *sqlite.DB) {
	t.Helper()
	db := testDB(t)
	lvl := level.NewService(db)
	g := gate.NewService(db, nil)
	w := wallet.NewService(db, g, blocking.NewCoordinator(nil))
	return progress.NewService(db, lvl, w), db
}

// addCompleted inserts a completed instance of the given length ending
// at the given time.
func addCompleted(t *testing.T, db *sqlite.DB, end time.Time, hours float64) {
	t.Helper()
	inst := domain.NewScheduleInstance("Work",
		end.Add(-time.Duration(hours*float64(time.Hour))), end, 20)
	inst.Completed = true
	if err := db.InsertInstance(inst); err != nil {
		t.Fatalf("insert completed: %v", err)
	}
}

// ─── Daily quests ───────────────────────────────────────────────────────────

func TestEnsureDailyQuests_Cohort(t *testing.T) {
	svc, _ := newTracker(t)
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	quests, err := svc.EnsureDailyQuests(now)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if len(quests) != 3 {
		t.Fatalf("cohort size = %d, want 3", len(quests))
	}

	login := quests[0]
	if login.Title != "Daily Login" || !login.Completed || login.Claimed {
		t.Errorf("login quest = %+v", login)
	}
	if login.RewardMinutes != 10 || login.RewardXP != 25 {
		t.Errorf("login rewards = %d min / %d xp", login.RewardMinutes, login.RewardXP)
	}
	if quests[1].Title != "Focused Hour" || quests[1].TargetCount != 1 {
		t.Errorf("quest 1 = %+v", quests[1])
	}
	if quests[2].Title != "Power Session" || quests[2].TargetCount != 3 {
		t.Errorf("quest 2 = %+v", quests[2])
	}
}

func TestEnsureDailyQuests_Idempotent(t *testing.T) {
	svc, _ := newTracker(t)
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	first, err := svc.EnsureDailyQuests(now)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.EnsureDailyQuests(now.Add(5 * time.Hour))
	if err != nil {
		t.Fatalf("second: %v", err)
	}
	if len(second) != 3 {
		t.Fatalf("cohort size = %d after repeat, want 3", len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Errorf("quest %d recreated", i)
		}
	}
}

func TestRecomputeQuests_TodayOnly(t *testing.T) {
	svc, db := newTracker(t)
	now := time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC)

	if _, err := svc.EnsureDailyQuests(now); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	addCompleted(t, db, now.Add(-2*time.Hour), 1)               // today
	addCompleted(t, db, now.AddDate(0, 0, -1), 3)               // yesterday
	if err := svc.OnInstanceCompleted(now); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	quests, _ := svc.EnsureDailyQuests(now)
	focused, power := quests[1], quests[2]
	if !focused.Completed || focused.CurrentProgress != 1 {
		t.Errorf("focused hour = %+v, want completed 1/1", focused)
	}
	// Yesterday's 3 hours must not leak into today's quest.
	if power.Completed || power.CurrentProgress != 1 {
		t.Errorf("power session = %+v, want 1/3 open", power)
	}
}

func TestRecomputeQuests_Idempotent(t *testing.T) {
	svc, db := newTracker(t)
	now := time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC)

	if _, err := svc.EnsureDailyQuests(now); err != nil {
		t.Fatalf("ensure: %v", err)
	}
	addCompleted(t, db, now.Add(-time.Hour), 2)
	for i := 0; i < 3; i++ {
		if err := svc.OnInstanceCompleted(now); err != nil {
			t.Fatalf("recompute %d: %v", i, err)
		}
	}

	quests, _ := svc.EnsureDailyQuests(now)
	if quests[2].CurrentProgress != 2 {
		t.Errorf("power session progress = %d, want 2 (no double count)", quests[2].CurrentProgress)
	}
}

// ─── Achievements ───────────────────────────────────────────────────────────

func TestRecomputeAchievements_WorkHoursThreshold(t *testing.T) {
	svc, db := newTracker(t)
	if err := db.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	now := time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC)

	// 9.5 raw hours: the 10-hour achievement stays locked at 9.
	addCompleted(t, db, now.Add(-6*time.Hour), 4.75)
	addCompleted(t, db, now.Add(-1*time.Hour), 4.75)
	if err := svc.RecomputeAchievements(now); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	tenHours := findAchievement(t, svc, domain.AchievementWorkHours, 10)
	if tenHours.Unlocked {
		t.Error("10h achievement unlocked at 9.5h")
	}
	if tenHours.CurrentProgress != 9 {
		t.Errorf("progress = %d, want 9 (truncated)", tenHours.CurrentProgress)
	}

	// One more hour crosses it.
	addCompleted(t, db, now, 1)
	if err := svc.RecomputeAchievements(now); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	tenHours = findAchievement(t, svc, domain.AchievementWorkHours, 10)
	if !tenHours.Unlocked {
		t.Error("10h achievement locked at 10.5h")
	}
	if tenHours.UnlockedAt == nil {
		t.Error("unlock must be stamped")
	}
}

func TestRecomputeAchievements_Monotonic(t *testing.T) {
	svc, db := newTracker(t)
	if err := db.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	now := time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC)

	addCompleted(t, db, now, 5)
	if err := svc.RecomputeAchievements(now); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	five := findAchievement(t, svc, domain.AchievementWorkHours, 5)
	if !five.Unlocked {
		t.Fatal("5h achievement should unlock")
	}

	// Source data shrinking (instance deleted) never re-locks.
	instances, _ := db.ListCompletedInstances()
	if err := db.DeleteInstance(instances[0].ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.RecomputeAchievements(now); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	five = findAchievement(t, svc, domain.AchievementWorkHours, 5)
	if !five.Unlocked || five.CurrentProgress != 5 {
		t.Errorf("achievement regressed: %+v", five)
	}
}

func TestRecomputeAchievements_LoginDays(t *testing.T) {
	svc, db := newTracker(t)
	if err := db.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}

	login, _ := db.GetOrCreateDailyLogin()
	login.TotalLogins = 5
	if err := db.SaveDailyLogin(login); err != nil {
		t.Fatalf("save login: %v", err)
	}
	if err := svc.RecomputeAchievements(time.Now()); err != nil {
		t.Fatalf("recompute: %v", err)
	}

	if a := findAchievement(t, svc, domain.AchievementLoginDays, 5); !a.Unlocked {
		t.Error("5-day login achievement should unlock")
	}
	if a := findAchievement(t, svc, domain.AchievementLoginDays, 10); a.Unlocked {
		t.Error("10-day login achievement unlocked early")
	}
}

func findAchievement(t *testing.T, svc *progress.Service, cat domain.AchievementCategory, requirement int) domain.Achievement {
	t.Helper()
	achievements, err := svc.Achievements(cat)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, a := range achievements {
		if a.Requirement == requirement {
			return a
		}
	}
	t.Fatalf("no %s achievement with requirement %d", cat, requirement)
	return domain.Achievement{}
}

// ─── Claims ─────────────────────────────────────────────────────────────────

func TestClaimQuest_OnceOnly(t *testing.T) {
	svc, db := newTracker(t)
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	quests, err := svc.EnsureDailyQuests(now)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	login := quests[0] // pre-completed

	if _, err := svc.ClaimQuest(login.ID, now); err != nil {
		t.Fatalf("claim: %v", err)
	}

	w, _ := db.GetOrCreateWallet()
	if w.AvailableMinutes != 10 {
		t.Errorf("wallet = %d, want 10 (no ratio on claims)", w.AvailableMinutes)
	}
	p, _ := db.GetOrCreateProfile()
	if p.BonusExperience != 25 {
		t.Errorf("bonus xp = %d, want 25", p.BonusExperience)
	}

	if _, err := svc.ClaimQuest(login.ID, now); !errors.Is(err, domain.ErrAlreadyClaimed) {
		t.Errorf("second claim: expected ErrAlreadyClaimed, got %v", err)
	}
	w, _ = db.GetOrCreateWallet()
	if w.AvailableMinutes != 10 {
		t.Errorf("wallet = %d after double claim, want 10", w.AvailableMinutes)
	}
}

func TestClaimQuest_IncompleteRejected(t *testing.T) {
	svc, _ := newTracker(t)
	now := time.Date(2026, 8, 24, 9, 0, 0, 0, time.UTC)

	quests, _ := svc.EnsureDailyQuests(now)
	if _, err := svc.ClaimQuest(quests[1].ID, now); !errors.Is(err, domain.ErrNotClaimable) {
		t.Errorf("expected ErrNotClaimable, got %v", err)
	}
}

func TestClaimQuest_Unknown(t *testing.T) {
	svc, _ := newTracker(t)
	if _, err := svc.ClaimQuest(uuid.New(), time.Now()); !errors.Is(err, domain.ErrQuestNotFound) {
		t.Errorf("expected ErrQuestNotFound, got %v", err)
	}
}

func TestClaimAchievement_PaysAllRewards(t *testing.T) {
	svc, db := newTracker(t)
	if err := db.Seed(); err != nil {
		t.Fatalf("seed: %v", err)
	}
	now := time.Date(2026, 8, 24, 18, 0, 0, 0, time.UTC)

	addCompleted(t, db, now, 5)
	if err := svc.RecomputeAchievements(now); err != nil {
		t.Fatalf("recompute: %v", err)
	}
	five := findAchievement(t, svc, domain.AchievementWorkHours, 5)

	if _, err := svc.ClaimAchievement(five.ID, now); err != nil {
		t.Fatalf("claim: %v", err)
	}

	// 5-hour achievement pays 60 minutes + 30 XP.
	w, _ := db.GetOrCreateWallet()
	if w.AvailableMinutes != 60 {
		t.Errorf("wallet = %d, want 60", w.AvailableMinutes)
	}
	p, _ := db.GetOrCreateProfile()
	if p.BonusExperience != 30 {
		t.Errorf("bonus xp = %d, want 30", p.BonusExperience)
	}

	if _, err := svc.ClaimAchievement(five.ID, now); !errors.Is(err, domain.ErrAlreadyClaimed) {
		t.Errorf("second claim: expected ErrAlreadyClaimed, got %v", err)
	}
}
