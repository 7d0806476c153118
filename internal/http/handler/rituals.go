package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"ritualos/internal/auth"
	"ritualos/internal/metrics"
	"ritualos/internal/ritual"
	"ritualos/internal/ritual/gen"

	"gorm.io/gorm"
)

// RitualHandler exposes the habit-consistency engine: goal generation,
// completion recording, the dashboard and the weekly stats/insight reads.
type RitualHandler struct {
	Svc     *ritual.Service
	Gateway *gen.Gateway
	DB      *gorm.DB
}

type generateReq struct {
	Goal   string `json:"goal"`
	Pillar string `json:"pillar"`
}

func (h *RitualHandler) Generate(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req generateReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json", "request body must be JSON")
		return
	}
	if strings.TrimSpace(req.Goal) == "" {
		writeErr(w, http.StatusBadRequest, "invalid_input", "goal required")
		return
	}

	var u auth.User
	if err := h.DB.First(&u, uid).Error; err != nil {
		writeErr(w, http.StatusUnauthorized, "unauthorized", "unknown user")
		return
	}

	systemID, err := h.Svc.CreateGoal(r.Context(), uid, req.Goal, req.Pillar, u.Plan)
	if err != nil {
		if errors.Is(err, ritual.ErrPlanLimit) {
			writeErr(w, http.StatusPaymentRequired, "plan_limit",
				"free plan allows one active goal; upgrade to add more")
			return
		}
		writeErr(w, http.StatusInternalServerError, "server_error", "could not create ritual")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"status":    "success",
		"system_id": systemID,
	})
}

type completeReq struct {
	ActionID uint64 `json:"action_id"`
	Mood     string `json:"mood"`
}

func (h *RitualHandler) Complete(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req completeReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json", "request body must be JSON")
		return
	}
	if req.ActionID == 0 {
		writeErr(w, http.StatusBadRequest, "invalid_input", "action_id required")
		return
	}

	res, err := h.Svc.RecordCompletion(r.Context(), uid, req.ActionID, req.Mood)
	if err != nil {
		if errors.Is(err, ritual.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not_found", "action not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "server_error", "could not record completion")
		return
	}

	metrics.CompletionCount.WithLabelValues(res.Status, res.Version).Inc()

	status := "success"
	if res.Status == ritual.StatusAlreadyRecorded {
		status = ritual.StatusAlreadyRecorded
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  status,
		"version": res.Version,
	})
}

func (h *RitualHandler) Systems(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	rows, err := h.Svc.Dashboard(r.Context(), uid)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "server_error", "could not load systems")
		return
	}
	writeJSON(w, http.StatusOK, rows)
}

func (h *RitualHandler) Stats(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	series, err := h.Svc.WeeklyStats(r.Context(), uid)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "server_error", "could not load stats")
		return
	}

	out := make(map[string]int, len(series))
	for _, dc := range series {
		out[dc.Date] = dc.Count
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *RitualHandler) Insight(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	series, err := h.Svc.WeeklyStats(r.Context(), uid)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "server_error", "could not load stats")
		return
	}

	// Best effort: the gateway degrades to a static encouragement string.
	insight := h.Gateway.WeeklyInsight(r.Context(), series)
	writeJSON(w, http.StatusOK, map[string]any{"insight": insight})
}
