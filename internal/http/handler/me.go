package handler

import (
	"net/http"

	"eventplanner/internal/auth"
	"eventplanner/internal/store"

	"go.uber.org/zap"
)

type MeHandler struct {
	Store store.Store
	Log   *zap.Logger
}

func (h *MeHandler) Me(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	u, err := h.Store.UserByID(r.Context(), uid)
	if err != nil {
		writeError(w, h.Log, err, "server error")
		return
	}
	writeJSON(w, http.StatusOK, u)
}
