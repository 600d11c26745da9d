package handler

import (
	"net/http"
	"time"

	"eventplanner/internal/auth"
	"eventplanner/internal/event"
	"eventplanner/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type EventHandler struct {
	Store store.Store
	Log   *zap.Logger
}

type createEventReq struct {
	event.Event
	Generate bool `json:"generate"`
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	var req createEventReq
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "bad json")
		return
	}

	ev := req.Event
	ev.ID = ""
	ev.UserID = uid
	ev.CreatedAt = time.Time{}
	if err := ev.Validate(); err != nil {
		writeError(w, h.Log, err, "server error")
		return
	}

	if err := h.Store.CreateEvent(r.Context(), &ev, req.Generate); err != nil {
		writeError(w, h.Log, err, "Failed to create event")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{
		"id":                  ev.ID,
		"event":               ev,
		"generationScheduled": req.Generate,
	})
}

func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, _ := auth.UserIDFromContext(r.Context())

	evs, err := h.Store.ListEvents(r.Context(), uid)
	if err != nil {
		writeError(w, h.Log, err, "server error")
		return
	}
	writeJSON(w, http.StatusOK, evs)
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	ev, ok := ownedEvent(w, r, h.Store, h.Log)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, ev)
}

// ownedEvent loads the {id} event and answers 404 unless the caller owns it.
func ownedEvent(w http.ResponseWriter, r *http.Request, st store.Store, log *zap.Logger) (*event.Event, bool) {
	uid, _ := auth.UserIDFromContext(r.Context())
	id := chi.URLParam(r, "id")

	ev, err := st.GetEvent(r.Context(), id)
	if err == nil && ev.UserID != uid {
		err = event.NotFound("Event with ID %s not found", id)
	}
	if err != nil {
		writeError(w, log, err, "server error")
		return nil, false
	}
	return ev, true
}
