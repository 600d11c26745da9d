package handler

import (
	"net/http"
	"time"

	"eventplanner/internal/event"
	"eventplanner/internal/notify"
	"eventplanner/internal/store"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// OutputHandler serves the dashboard's reads and its two in-place edits:
// checklist toggles and flow diagram saves.
type OutputHandler struct {
	Store  store.Store
	Notify notify.Publisher
	Log    *zap.Logger
}

func (h *OutputHandler) Get(w http.ResponseWriter, r *http.Request) {
	ev, ok := ownedEvent(w, r, h.Store, h.Log)
	if !ok {
		return
	}

	out, err := h.Store.GetOutput(r.Context(), ev.ID)
	if err != nil {
		writeError(w, h.Log, err, "server error")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"output": out})
}

type setTaskReq struct {
	Done *bool `json:"task_done"`
}

func (h *OutputHandler) SetTaskDone(w http.ResponseWriter, r *http.Request) {
	ev, ok := ownedEvent(w, r, h.Store, h.Log)
	if !ok {
		return
	}

	var req setTaskReq
	if err := decodeJSON(r, &req); err != nil || req.Done == nil {
		writeErrorMsg(w, http.StatusBadRequest, "task_done required")
		return
	}

	taskID := chi.URLParam(r, "taskId")
	task, err := h.Store.SetTaskDone(r.Context(), ev.ID, taskID, *req.Done)
	if err != nil {
		writeError(w, h.Log, err, "Failed to update task")
		return
	}

	h.publish(r, notify.Notice{EventID: ev.ID, Artifact: notify.ArtifactTask, Key: taskID})
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

func (h *OutputHandler) PutFlowDiagram(w http.ResponseWriter, r *http.Request) {
	ev, ok := ownedEvent(w, r, h.Store, h.Log)
	if !ok {
		return
	}

	var d event.FlowDiagram
	if err := decodeJSON(r, &d); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "bad json")
		return
	}
	for _, n := range d.Nodes {
		if n.ID == "" {
			writeErrorMsg(w, http.StatusBadRequest, "every node needs an id")
			return
		}
	}

	if err := h.Store.PutFlowDiagram(r.Context(), ev.ID, d); err != nil {
		writeError(w, h.Log, err, "Failed to save flow diagram")
		return
	}

	h.publish(r, notify.Notice{EventID: ev.ID, Artifact: notify.ArtifactFlow})
	w.WriteHeader(http.StatusNoContent)
}

func (h *OutputHandler) publish(r *http.Request, n notify.Notice) {
	if h.Notify == nil {
		return
	}
	n.At = time.Now().UTC()
	if err := h.Notify.Publish(r.Context(), n); err != nil && h.Log != nil {
		h.Log.Warn("publish output notice", zap.String("event_id", n.EventID), zap.Error(err))
	}
}
