package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/focusrpg/focusrpg/internal/api"
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

// newTestServer wires the full service stack over a temporary database
// and serves the real router.
func newTestServer(t *testing.T) (*httptest.Server, *sqlite.DB) {
	t.Helper()
	dir := t.TempDir()
	db, err := sqlite.Open(dir)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	lvl := level.NewService(db)
	g := gate.NewService(db, nil)
	w := wallet.NewService(db, g, blocking.NewCoordinator(nil))
	p := progress.NewService(db, lvl, w)
	st := streaks.NewService(db)
	exp := schedule.NewExpander(db, nil)
	sched := schedule.NewService(db, lvl, w, g, p, st)

	srv := httptest.NewServer(api.NewServer(api.Services{
		Level:    lvl,
		Gate:     g,
		Wallet:   w,
		Streaks:  st,
		Progress: p,
		Expander: exp,
		Schedule: sched,
	}).Handler())
	t.Cleanup(srv.Close)
	return srv, db
}

func doJSON(t *testing.T, method, url string, body any, out any) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("build request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode response: %v", err)
		}
	}
	return resp.StatusCode
}

func TestRulesLifecycle(t *testing.T) {
	srv, db := newTestServer(t)

	var rule domain.RecurrenceRule
	status := doJSON(t, http.MethodPost, srv.URL+"/v1/rules", map[string]any{
		"title":               "Deep Work",
		"start_hour":          9,
		"end_hour":            10,
		"base_reward_minutes": 20,
		"days_of_week":        []int{2}, // Mondays
	}, &rule)
	if status != http.StatusCreated {
		t.Fatalf("create rule status = %d, want 201", status)
	}
	if !rule.Active {
		t.Error("created rule must be active")
	}

	var listed struct {
		Rules []domain.RecurrenceRule `json:"rules"`
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/v1/rules", nil, &listed); status != http.StatusOK {
		t.Fatalf("list rules status = %d", status)
	}
	if len(listed.Rules) != 1 {
		t.Fatalf("rules = %d, want 1", len(listed.Rules))
	}

	// Viewing a matching day materializes the rule.
	var day struct {
		Instances []domain.ScheduleInstance `json:"instances"`
	}
	monday := "2030-01-07"
	if status := doJSON(t, http.MethodGet, srv.URL+"/v1/schedule?date="+monday, nil, &day); status != http.StatusOK {
		t.Fatalf("schedule status = %d", status)
	}
	if len(day.Instances) != 1 || day.Instances[0].Title != "Deep Work" {
		t.Fatalf("instances = %+v, want one Deep Work block", day.Instances)
	}

	// Deactivation prunes the future block and stops materialization.
	var deleted struct {
		Deactivated bool  `json:"deactivated"`
		Pruned      int64 `json:"pruned"`
	}
	status = doJSON(t, http.MethodDelete, srv.URL+"/v1/rules/"+rule.ID.String(), nil, &deleted)
	if status != http.StatusOK {
		t.Fatalf("delete rule status = %d", status)
	}
	if !deleted.Deactivated || deleted.Pruned != 1 {
		t.Errorf("delete = %+v, want deactivated with 1 pruned", deleted)
	}

	if status := doJSON(t, http.MethodGet, srv.URL+"/v1/schedule?date="+monday, nil, &day); status != http.StatusOK {
		t.Fatalf("schedule after delete status = %d", status)
	}
	if len(day.Instances) != 0 {
		t.Errorf("instances after deactivation = %d, want 0", len(day.Instances))
	}

	rules, err := db.ListRules()
	if err != nil {
		t.Fatalf("list rules: %v", err)
	}
	if len(rules) != 1 || rules[0].Active {
		t.Errorf("stored rule = %+v, want inactive", rules)
	}
}

func TestCreateInstanceAndComplete(t *testing.T) {
	srv, db := newTestServer(t)

	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	var inst domain.ScheduleInstance
	status := doJSON(t, http.MethodPost, srv.URL+"/v1/instances", map[string]any{
		"title":               "Writing",
		"start_time":          start,
		"end_time":            start.Add(time.Hour),
		"base_reward_minutes": 20,
	}, &inst)
	if status != http.StatusCreated {
		t.Fatalf("create instance status = %d, want 201", status)
	}
	if len(inst.Tasks) != 1 {
		t.Fatalf("tasks = %d, want the default single task", len(inst.Tasks))
	}

	// Finish the single task, then complete through the API.
	task := inst.Tasks[0]
	task.Completed = true
	if err := db.UpdateTask(task); err != nil {
		t.Fatalf("update task: %v", err)
	}

	var events domain.CompletionEvents
	status = doJSON(t, http.MethodPost, srv.URL+"/v1/instances/"+inst.ID.String()+"/complete", nil, &events)
	if status != http.StatusOK {
		t.Fatalf("complete status = %d", status)
	}
	if events.MinutesEarned != 20 || events.MinutesCredited != 10 {
		t.Errorf("events = %d earned / %d credited, want 20/10", events.MinutesEarned, events.MinutesCredited)
	}

	var walletView struct {
		Wallet domain.Wallet `json:"wallet"`
	}
	if status := doJSON(t, http.MethodGet, srv.URL+"/v1/wallet", nil, &walletView); status != http.StatusOK {
		t.Fatalf("wallet status = %d", status)
	}
	if walletView.Wallet.AvailableMinutes != 10 {
		t.Errorf("wallet = %d, want 10", walletView.Wallet.AvailableMinutes)
	}
}

func TestMoveTask(t *testing.T) {
	srv, db := newTestServer(t)

	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	newInstance := func(title string, at time.Time) domain.ScheduleInstance {
		var inst domain.ScheduleInstance
		status := doJSON(t, http.MethodPost, srv.URL+"/v1/instances", map[string]any{
			"title":               title,
			"start_time":          at,
			"end_time":            at.Add(time.Hour),
			"base_reward_minutes": 20,
		}, &inst)
		if status != http.StatusCreated {
			t.Fatalf("create %s status = %d", title, status)
		}
		return inst
	}
	today := newInstance("Today", start)
	tomorrow := newInstance("Tomorrow", start.AddDate(0, 0, 1))

	status := doJSON(t, http.MethodPost,
		srv.URL+"/v1/tasks/"+today.Tasks[0].ID.String()+"/move",
		map[string]any{"instance_id": tomorrow.ID}, nil)
	if status != http.StatusOK {
		t.Fatalf("move status = %d", status)
	}

	tasks, err := db.TasksForInstance(tomorrow.ID)
	if err != nil {
		t.Fatalf("tasks: %v", err)
	}
	if len(tasks) != 2 {
		t.Errorf("target tasks = %d, want 2 after move", len(tasks))
	}

	// An unknown task is a 404.
	status = doJSON(t, http.MethodPost,
		srv.URL+"/v1/tasks/"+today.ID.String()+"/move", // instance id, not a task
		map[string]any{"instance_id": tomorrow.ID}, nil)
	if status != http.StatusNotFound {
		t.Errorf("move unknown task status = %d, want 404", status)
	}
}

func TestWeekendBonusClaim(t *testing.T) {
	srv, db := newTestServer(t)

	var claim struct {
		Minutes int `json:"minutes"`
	}
	status := doJSON(t, http.MethodPost, srv.URL+"/v1/streak/weekend-bonus", nil, &claim)

	switch time.Now().Weekday() {
	case time.Friday, time.Saturday, time.Sunday:
		if status != http.StatusOK {
			t.Fatalf("weekend claim status = %d, want 200", status)
		}
		if claim.Minutes != streaks.DefaultWeekendBonusMinutes {
			t.Errorf("minutes = %d, want %d", claim.Minutes, streaks.DefaultWeekendBonusMinutes)
		}
		w, err := db.GetOrCreateWallet()
		if err != nil {
			t.Fatalf("wallet: %v", err)
		}
		if w.AvailableMinutes != streaks.DefaultWeekendBonusMinutes {
			t.Errorf("wallet = %d, want the bonus credited", w.AvailableMinutes)
		}
		// Second claim of the same weekend is rejected.
		if status := doJSON(t, http.MethodPost, srv.URL+"/v1/streak/weekend-bonus", nil, nil); status != http.StatusPreconditionFailed {
			t.Errorf("reclaim status = %d, want 412", status)
		}
	default:
		if status != http.StatusPreconditionFailed {
			t.Fatalf("midweek claim status = %d, want 412", status)
		}
	}

	var streak map[string]any
	if status := doJSON(t, http.MethodGet, srv.URL+"/v1/streak", nil, &streak); status != http.StatusOK {
		t.Fatalf("streak status = %d", status)
	}
	if _, ok := streak["weekend_bonus_available"]; !ok {
		t.Error("streak view must report weekend bonus availability")
	}
}

func TestCreateInstanceRejectsBadRange(t *testing.T) {
	srv, _ := newTestServer(t)

	start := time.Date(2030, 1, 7, 9, 0, 0, 0, time.UTC)
	status := doJSON(t, http.MethodPost, srv.URL+"/v1/instances", map[string]any{
		"title":               "Backwards",
		"start_time":          start,
		"end_time":            start.Add(-time.Hour),
		"base_reward_minutes": 20,
	}, nil)
	if status != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for end before start", status)
	}
}

func TestDeactivateUnknownRule(t *testing.T) {
	srv, _ := newTestServer(t)

	url := fmt.Sprintf("%s/v1/rules/%s", srv.URL, "3f0c8f5e-0000-4000-8000-000000000000")
	if status := doJSON(t, http.MethodDelete, url, nil, nil); status != http.StatusNotFound {
		t.Errorf("status = %d, want 404", status)
	}
}
