package leetcode_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/focusrpg/focusrpg/internal/domain"
	"github.com/focusrpg/focusrpg/internal/oracle/leetcode"
)

type submission struct {
	TitleSlug     string `json:"titleSlug"`
	StatusDisplay string `json:"statusDisplay"`
	Timestamp     string `json:"timestamp"`
}

func graphqlServer(t *testing.T, subs []submission) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Query     string         `json:"query"`
			Variables map[string]any `json:"variables"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Variables["username"] != "tester" {
			t.Errorf("username = %v", req.Variables["username"])
		}
		json.NewEncoder(w).Encode(map[string]any{
			"data": map[string]any{"recentSubmissionList": subs},
		})
	}))
	t.Cleanup(srv.Close)
	return srv
}

func ts(t time.Time) string { return fmt.Sprintf("%d", t.Unix()) }

func TestFetchDailyAcceptedCount(t *testing.T) {
	day := time.Date(2026, 8, 24, 15, 0, 0, 0, time.UTC)
	srv := graphqlServer(t, []submission{
		{"two-sum", "Accepted", ts(day.Add(-2 * time.Hour))},
		{"two-sum", "Accepted", ts(day.Add(-1 * time.Hour))}, // duplicate problem
		{"add-two-numbers", "Accepted", ts(day)},
		{"median-arrays", "Wrong Answer", ts(day)},              // not accepted
		{"valid-parens", "Accepted", ts(day.AddDate(0, 0, -1))}, // yesterday
	})

	client := leetcode.NewClient(srv.URL, 5*time.Second)
	count, err := client.FetchDailyAcceptedCount(context.Background(), "tester", day)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if count != 2 {
		t.Errorf("count = %d, want 2 (unique accepted today)", count)
	}
}

func TestFetchDailyAcceptedCount_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client := leetcode.NewClient(srv.URL, 5*time.Second)
	_, err := client.FetchDailyAcceptedCount(context.Background(), "tester", time.Now())
	if !errors.Is(err, domain.ErrOracleUnavailable) {
		t.Errorf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestFetchDailyAcceptedCount_GraphQLError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"errors": []map[string]any{{"message": "user not found"}},
		})
	}))
	t.Cleanup(srv.Close)

	client := leetcode.NewClient(srv.URL, 5*time.Second)
	_, err := client.FetchDailyAcceptedCount(context.Background(), "tester", time.Now())
	if !errors.Is(err, domain.ErrOracleUnavailable) {
		t.Errorf("expected ErrOracleUnavailable, got %v", err)
	}
}

func TestFetchDailyAcceptedCount_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	client := leetcode.NewClient(srv.URL, 50*time.Millisecond)
	_, err := client.FetchDailyAcceptedCount(context.Background(), "tester", time.Now())
	if !errors.Is(err, domain.ErrOracleUnavailable) {
		t.Errorf("expected ErrOracleUnavailable on timeout, got %v", err)
	}
}
