package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/focusrpg/focusrpg/internal/domain"
)

func (s *Server) handleProfile(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.Level.Profile()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"profile":     p,
		"level":       p.Level(),
		"total_xp":    p.TotalXP(),
		"xp_to_next":  p.ExperienceToNextLevel(),
		"xp_in_level": p.ExperienceIntoCurrentLevel(),
	})
}

func (s *Server) handleWallet(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	wal, err := s.svc.Wallet.Wallet(now)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"wallet":            wal,
		"redeeming":         wal.Redeeming(),
		"remaining_seconds": wal.RemainingSeconds(now),
	})
}

func (s *Server) handleRedeem(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Minutes int `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := s.svc.Wallet.Redeem(r.Context(), req.Minutes, time.Now())
	switch {
	case errors.Is(err, domain.ErrInsufficientMinutes):
		writeError(w, http.StatusPaymentRequired, err.Error())
	case errors.Is(err, domain.ErrRedemptionActive):
		writeError(w, http.StatusConflict, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	case !result.Allowed:
		writeJSON(w, http.StatusPreconditionFailed, result)
	default:
		writeJSON(w, http.StatusOK, result)
	}
}

func (s *Server) handleSchedule(w http.ResponseWriter, r *http.Request) {
	day := time.Now()
	if q := r.URL.Query().Get("date"); q != "" {
		parsed, err := time.ParseInLocation("2006-01-02", q, time.Local)
		if err != nil {
			writeError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		day = parsed
	}

	instances, err := s.svc.Schedule.InstancesOn(s.svc.Expander, day)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"instances": instances})
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Days int `json:"days"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Days <= 0 {
		req.Days = 7
	}

	now := time.Now()
	created, err := s.svc.Expander.GenerateForRange(now, now.AddDate(0, 0, req.Days))
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"created": created})
}

func (s *Server) handleListRules(w http.ResponseWriter, r *http.Request) {
	rules, err := s.svc.Schedule.Rules()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"rules": rules})
}

func (s *Server) handleCreateRule(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title             string     `json:"title"`
		StartHour         int        `json:"start_hour"`
		StartMinute       int        `json:"start_minute"`
		EndHour           int        `json:"end_hour"`
		EndMinute         int        `json:"end_minute"`
		BaseRewardMinutes int        `json:"base_reward_minutes"`
		SubcategoryID     *uuid.UUID `json:"subcategory_id"`
		DaysOfWeek        []int      `json:"days_of_week"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	rule, err := s.svc.Schedule.CreateRule(domain.RecurrenceRule{
		Title:             req.Title,
		StartHour:         req.StartHour,
		StartMinute:       req.StartMinute,
		EndHour:           req.EndHour,
		EndMinute:         req.EndMinute,
		BaseRewardMinutes: req.BaseRewardMinutes,
		SubcategoryID:     req.SubcategoryID,
		DaysOfWeek:        req.DaysOfWeek,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, rule)
}

func (s *Server) handleDeactivateRule(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid rule id")
		return
	}

	pruned, err := s.svc.Schedule.DeactivateRule(id, time.Now())
	switch {
	case errors.Is(err, domain.ErrRuleNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]any{"deactivated": true, "pruned": pruned})
	}
}

func (s *Server) handleCreateInstance(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Title             string     `json:"title"`
		StartTime         time.Time  `json:"start_time"`
		EndTime           time.Time  `json:"end_time"`
		BaseRewardMinutes int        `json:"base_reward_minutes"`
		PomodoroMode      bool       `json:"pomodoro_mode"`
		SubcategoryID     *uuid.UUID `json:"subcategory_id"`
		Tasks             []struct {
			Title  string  `json:"title"`
			Weight float64 `json:"weight"`
		} `json:"tasks"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	inst := domain.ScheduleInstance{
		Title:             req.Title,
		StartTime:         req.StartTime,
		EndTime:           req.EndTime,
		BaseRewardMinutes: req.BaseRewardMinutes,
		PomodoroMode:      req.PomodoroMode,
		SubcategoryID:     req.SubcategoryID,
	}
	for _, t := range req.Tasks {
		inst.Tasks = append(inst.Tasks, domain.NewTask(t.Title, t.Weight))
	}

	created, err := s.svc.Schedule.CreateInstance(inst)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleMoveTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return
	}
	var req struct {
		InstanceID uuid.UUID `json:"instance_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	err = s.svc.Schedule.MoveTask(taskID, req.InstanceID)
	switch {
	case errors.Is(err, domain.ErrInstanceNotFound), errors.Is(err, domain.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "moved"})
	}
}

func (s *Server) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid instance id")
		return
	}

	events, err := s.svc.Schedule.Complete(r.Context(), id, time.Now())
	switch {
	case errors.Is(err, domain.ErrInstanceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, events)
	}
}

func (s *Server) handleSkip(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid instance id")
		return
	}

	err = s.svc.Schedule.Skip(r.Context(), id, time.Now())
	switch {
	case errors.Is(err, domain.ErrInstanceNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "skipped"})
	}
}

func (s *Server) handleQuestsToday(w http.ResponseWriter, r *http.Request) {
	quests, err := s.svc.Progress.EnsureDailyQuests(time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"quests": quests})
}

func (s *Server) handleClaimQuest(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid quest id")
		return
	}

	levelUp, err := s.svc.Progress.ClaimQuest(id, time.Now())
	writeClaimResult(w, levelUp, err, domain.ErrQuestNotFound)
}

func (s *Server) handleAchievements(w http.ResponseWriter, r *http.Request) {
	category := domain.AchievementCategory(r.URL.Query().Get("category"))
	achievements, err := s.svc.Progress.Achievements(category)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"achievements": achievements})
}

func (s *Server) handleClaimAchievement(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid achievement id")
		return
	}

	levelUp, err := s.svc.Progress.ClaimAchievement(id, time.Now())
	writeClaimResult(w, levelUp, err, domain.ErrAchievementNotFound)
}

func writeClaimResult(w http.ResponseWriter, levelUp *domain.LevelUpEvent, err error, notFound error) {
	switch {
	case errors.Is(err, notFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrAlreadyClaimed):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, domain.ErrNotClaimable):
		writeError(w, http.StatusPreconditionFailed, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
	default:
		resp := map[string]any{"claimed": true}
		if levelUp != nil {
			resp["level_up"] = levelUp
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// handleRequirements reports the gate evaluation. An unreachable oracle
// is not an error here: the cached values stand and the response is 200.
func (s *Server) handleRequirements(w http.ResponseWriter, r *http.Request) {
	result, err := s.svc.Gate.EvaluateRedemption(r.Context(), time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (s *Server) handleStreak(w http.ResponseWriter, r *http.Request) {
	tracker, err := s.svc.Streaks.Streak()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	bonusAvailable, err := s.svc.Streaks.WeekendBonusAvailable(time.Now())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"current":                 tracker.CurrentStreak,
		"longest":                 tracker.LongestStreak,
		"next_milestone":          tracker.NextMilestone(),
		"weekend_bonus_available": bonusAvailable,
	})
}

// handleClaimWeekendBonus claims the weekend bonus and credits the
// payout straight to the wallet, bypassing the screen-time ratio.
func (s *Server) handleClaimWeekendBonus(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	minutes, err := s.svc.Streaks.ClaimWeekendBonus(now)
	switch {
	case errors.Is(err, domain.ErrBonusNotAvailable):
		writeError(w, http.StatusPreconditionFailed, err.Error())
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	if err := s.svc.Wallet.AddBonusMinutes(minutes, now); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"minutes": minutes})
}
