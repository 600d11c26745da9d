package handler

import (
	"context"
	"net/http"

	"eventplanner/internal/auth"
	"eventplanner/internal/generate"

	"go.uber.org/zap"
)

type GenerateHandler struct {
	Svc *generate.Service
	Log *zap.Logger

	// OwnerOnly forwards the authenticated user so only the event's owner
	// can generate. Routes must then sit behind auth.RequireAuth.
	OwnerOnly bool
}

type generateReq struct {
	EventID      string `json:"eventId"`
	DocumentType string `json:"documentType"`
	Theme        string `json:"theme"`
	Platform     string `json:"platform"`
}

func (h *GenerateHandler) EventData(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	out, err := h.Svc.EventData(detach(r), generate.EventDataInput{
		EventID:  req.EventID,
		CallerID: h.caller(r),
	})
	if err != nil {
		writeError(w, h.Log, err, "Failed to generate and store content")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "output": out})
}

func (h *GenerateHandler) Documents(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	doc, err := h.Svc.Document(detach(r), generate.DocumentInput{
		EventID:  req.EventID,
		Kind:     req.DocumentType,
		Theme:    req.Theme,
		CallerID: h.caller(r),
	})
	if err != nil {
		writeError(w, h.Log, err, "Failed to generate document")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "document": doc})
}

func (h *GenerateHandler) SocialPosts(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	post, err := h.Svc.SocialPost(detach(r), generate.SocialPostInput{
		EventID:  req.EventID,
		Platform: req.Platform,
		CallerID: h.caller(r),
	})
	if err != nil {
		writeError(w, h.Log, err, "Failed to generate social media post")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"success": true, "post": post})
}

func (h *GenerateHandler) decode(w http.ResponseWriter, r *http.Request) (generateReq, bool) {
	var req generateReq
	if err := decodeJSON(r, &req); err != nil {
		writeErrorMsg(w, http.StatusBadRequest, "Missing required parameters")
		return req, false
	}
	return req, true
}

func (h *GenerateHandler) caller(r *http.Request) uint64 {
	if !h.OwnerOnly {
		return 0
	}
	uid, _ := auth.UserIDFromContext(r.Context())
	return uid
}

// detach keeps generation running if the client goes away; the artifact is
// persisted either way.
func detach(r *http.Request) context.Context {
	return context.WithoutCancel(r.Context())
}
