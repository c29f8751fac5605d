package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/mfeher/webdispatch/internal/queue"
	"github.com/mfeher/webdispatch/internal/scheduler"
)

type Handler struct {
	svc   *queue.Service
	sched *scheduler.Scheduler
}

func NewHandler(svc *queue.Service, s *scheduler.Scheduler) *Handler {
	return &Handler{svc: svc, sched: s}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

type submitRequest struct {
	ThreadTarget string `json:"threadTarget"`
	Text         string `json:"text"`
	SenderName   string `json:"senderName"`
}

func (h *Handler) SubmitMessage(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid json body"})
		return
	}

	id, err := h.svc.Submit(req.ThreadTarget, req.Text, req.SenderName)
	if err != nil {
		var verr *queue.ValidationError
		if errors.As(err, &verr) {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": verr.Error()})
			return
		}
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusCreated, map[string]any{"id": id})
}

func (h *Handler) ListMessages(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.ListAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items})
}

func (h *Handler) ClearMessages(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.ClearAll()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cleared": n})
}

func (h *Handler) GeneratePairingCode(w http.ResponseWriter, r *http.Request) {
	code, err := h.svc.NewPairingCode()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]any{"error": err.Error()})
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"code": code})
}

func (h *Handler) WorkerStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func (h *Handler) WorkerStart(w http.ResponseWriter, r *http.Request) {
	h.sched.Start()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func (h *Handler) WorkerStop(w http.ResponseWriter, r *http.Request) {
	h.sched.Stop()
	writeJSON(w, http.StatusOK, map[string]any{"running": h.sched.IsRunning()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
