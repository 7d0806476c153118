package handler

import (
	"errors"
	"net/http"
	"strconv"

	"ritualos/internal/auth"
	"ritualos/internal/notify"

	"github.com/go-chi/chi/v5"
)

type NotificationHandler struct {
	Store *notify.Store
}

func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		limit, _ = strconv.Atoi(v)
	}

	out, err := h.Store.List(r.Context(), uid, limit)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "server_error", "could not load notifications")
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	id, err := strconv.ParseUint(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeErr(w, http.StatusBadRequest, "invalid_input", "invalid id")
		return
	}

	if err := h.Store.MarkRead(r.Context(), uid, id); err != nil {
		if errors.Is(err, notify.ErrNotFound) {
			writeErr(w, http.StatusNotFound, "not_found", "notification not found")
			return
		}
		writeErr(w, http.StatusInternalServerError, "server_error", "could not update notification")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
