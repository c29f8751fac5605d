package api

import "net/http"

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", h.Health)

	mux.HandleFunc("POST /v1/messages", h.SubmitMessage)
	mux.HandleFunc("GET /v1/messages", h.ListMessages)
	mux.HandleFunc("DELETE /v1/messages", h.ClearMessages)

	mux.HandleFunc("POST /v1/pairings", h.GeneratePairingCode)

	mux.HandleFunc("GET /v1/worker/status", h.WorkerStatus)
	mux.HandleFunc("POST /v1/worker/start", h.WorkerStart)
	mux.HandleFunc("POST /v1/worker/stop", h.WorkerStop)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("webdispatch"))
	})

	return mux
}
