package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"eventplanner/internal/auth"
	"eventplanner/internal/event"
	"eventplanner/internal/store"

	"go.uber.org/zap"
)

type AuthHandler struct {
	Store        store.Store
	JWT          *auth.JWT
	CookieSecure bool
	Log          *zap.Logger
}

type registerReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "bad json")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || len(req.Password) < 8 {
		writeErrorMsg(w, http.StatusBadRequest, "invalid input")
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "server error")
		return
	}

	u := auth.User{Email: req.Email, Name: strings.TrimSpace(req.Name), PasswordHash: hash}
	if err := h.Store.CreateUser(r.Context(), &u); err != nil {
		if errors.Is(err, store.ErrEmailTaken) {
			writeErrorMsg(w, http.StatusConflict, "email already used")
			return
		}
		writeError(w, h.Log, err, "server error")
		return
	}

	h.issue(w, u.ID, http.StatusCreated)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "bad json")
		return
	}
	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if req.Email == "" || req.Password == "" {
		writeErrorMsg(w, http.StatusBadRequest, "invalid input")
		return
	}

	u, err := h.Store.UserByEmail(r.Context(), req.Email)
	if err != nil {
		if errors.Is(err, event.ErrNotFound) {
			writeErrorMsg(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		writeError(w, h.Log, err, "server error")
		return
	}
	if !auth.ComparePassword(u.PasswordHash, req.Password) {
		writeErrorMsg(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	h.issue(w, u.ID, http.StatusOK)
}

// Logout clears the session cookie. Bearer tokens stay valid until they expire.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

func (h *AuthHandler) issue(w http.ResponseWriter, userID uint64, status int) {
	token, err := h.JWT.Sign(userID)
	if err != nil {
		writeErrorMsg(w, http.StatusInternalServerError, "server error")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     auth.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  time.Now().Add(auth.TokenTTL),
		MaxAge:   int(auth.TokenTTL / time.Second),
		HttpOnly: true,
		Secure:   h.CookieSecure,
		SameSite: http.SameSiteStrictMode,
	})
	writeJSON(w, status, map[string]any{"token": token})
}
