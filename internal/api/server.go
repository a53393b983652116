// Package api provides the HTTP surface of the engine. External UI
// collaborators observe entities and drive operations through it; the
// engine itself never renders anything.
package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/focusrpg/focusrpg/internal/app/gate"
	"github.com/focusrpg/focusrpg/internal/app/level"
	"github.com/focusrpg/focusrpg/internal/app/progress"
	"github.com/focusrpg/focusrpg/internal/app/schedule"
	"github.com/focusrpg/focusrpg/internal/app/streaks"
	"github.com/focusrpg/focusrpg/internal/app/wallet"
)

// Services bundles everything the API exposes.
type Services struct {
	Level    *level.Service
	Gate     *gate.Service
	Wallet   *wallet.Service
	Streaks  *streaks.Service
	Progress *progress.Service
	Expander *schedule.Expander
	Schedule *schedule.Service
}

// Server is the FocusRPG HTTP API server.
type Server struct {
	svc Services
}

// NewServer creates a new API server.
func NewServer(svc Services) *Server {
	return &Server{svc: svc}
}

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/v1", func(r chi.Router) {
		r.Get("/profile", s.handleProfile)
		r.Get("/wallet", s.handleWallet)
		r.Post("/wallet/redeem", s.handleRedeem)
		r.Get("/schedule", s.handleSchedule)
		r.Post("/schedule/generate", s.handleGenerate)
		r.Get("/rules", s.handleListRules)
		r.Post("/rules", s.handleCreateRule)
		r.Delete("/rules/{id}", s.handleDeactivateRule)
		r.Post("/instances", s.handleCreateInstance)
		r.Post("/instances/{id}/complete", s.handleComplete)
		r.Post("/instances/{id}/skip", s.handleSkip)
		r.Post("/tasks/{id}/move", s.handleMoveTask)
		r.Get("/quests/today", s.handleQuestsToday)
		r.Post("/quests/{id}/claim", s.handleClaimQuest)
		r.Get("/achievements", s.handleAchievements)
		r.Post("/achievements/{id}/claim", s.handleClaimAchievement)
		r.Get("/requirements", s.handleRequirements)
		r.Get("/streak", s.handleStreak)
		r.Post("/streak/weekend-bonus", s.handleClaimWeekendBonus)
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    "error",
		},
	})
}
