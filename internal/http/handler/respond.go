package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"eventplanner/internal/event"

	"go.uber.org/zap"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeErrorMsg(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]any{"error": msg})
}

// writeError maps err onto the error taxonomy. Anything unclassified is
// logged and answered with the generic fallback message.
func writeError(w http.ResponseWriter, log *zap.Logger, err error, fallback string) {
	var mErr *event.MalformedOutputError
	switch {
	case errors.As(err, &mErr):
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"error":     mErr.Reason,
			"rawOutput": mErr.Raw,
		})
		return
	case errors.Is(err, event.ErrValidation):
		writeErrorMsg(w, http.StatusBadRequest, message(err, "invalid input"))
		return
	case errors.Is(err, event.ErrNotFound):
		writeErrorMsg(w, http.StatusNotFound, message(err, "not found"))
		return
	}

	if log != nil {
		log.Error(fallback, zap.Error(err))
	}
	writeErrorMsg(w, http.StatusInternalServerError, fallback)
}

func message(err error, def string) string {
	if msg, ok := event.Message(err); ok {
		return msg
	}
	return def
}

func decodeJSON(r *http.Request, v any) error {
	return json.NewDecoder(r.Body).Decode(v)
}
