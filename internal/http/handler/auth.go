package handler

import (
	"encoding/json"
	"net/http"
	"strings"

	"ritualos/internal/auth"

	"gorm.io/gorm"
)

type AuthHandler struct {
	DB  *gorm.DB
	JWT *auth.JWT
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json", "request body must be JSON")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		writeErr(w, http.StatusBadRequest, "invalid_input", "email required, password min 8 chars")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "server_error", "could not hash password")
		return
	}

	u := auth.User{Email: req.Email, PasswordHash: hash, Plan: auth.PlanFree}
	if err := h.DB.Create(&u).Error; err != nil {
		writeErr(w, http.StatusConflict, "email_taken", "email already used")
		return
	}

	token, err := h.JWT.Sign(u.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "server_error", "could not sign token")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"token": token})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeErr(w, http.StatusBadRequest, "bad_json", "request body must be JSON")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeErr(w, http.StatusBadRequest, "invalid_input", "email and password required")
		return
	}

	var u auth.User
	if err := h.DB.Where("email = ?", req.Email).First(&u).Error; err != nil {
		writeErr(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}
	if !auth.ComparePassword(u.PasswordHash, req.Password) {
		writeErr(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials")
		return
	}

	token, err := h.JWT.Sign(u.ID)
	if err != nil {
		writeErr(w, http.StatusInternalServerError, "server_error", "could not sign token")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"token": token})
}
