package api

import (
	"clientsvc/internal/metrics"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"
)

const maxBodyBytes = 1 << 20

type Handler struct {
	Clients Clients
}

func NewHandler(clients Clients) *Handler {
	return &Handler{Clients: clients}
}

func (h *Handler) Router() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /clients", h.handleList)
	mux.HandleFunc("POST /clients", h.handleCreate)
	mux.HandleFunc("GET /clients/{id}", h.handleGet)
	mux.HandleFunc("PUT /clients/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /clients/{id}", h.handleDelete)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("GET /metrics", func(w http.ResponseWriter, r *http.Request) {
		metrics.WritePrometheus(w)
	})
	return mux
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	h.write(w, listClients(r.Context(), h.Clients, r.URL.Query().Get("filter")))
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	h.write(w, getClient(r.Context(), h.Clients, r.PathValue("id")))
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.write(w, bodyError(err))
		return
	}
	h.write(w, createClient(r.Context(), h.Clients, body))
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.write(w, bodyError(err))
		return
	}
	h.write(w, updateClient(r.Context(), h.Clients, r.PathValue("id"), body))
}

func (h *Handler) handleDelete(w http.ResponseWriter, r *http.Request) {
	h.write(w, deleteClient(r.Context(), h.Clients, r.PathValue("id")))
}

func (h *Handler) write(w http.ResponseWriter, rep reply) {
	if err := writeJSON(w, rep.status, rep.body); err != nil {
		http.Error(w, "failed to write response", http.StatusInternalServerError)
	}
}

func readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	defer func() {
		_ = r.Body.Close()
	}()
	return io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
}

func bodyError(err error) reply {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return reply{status: http.StatusRequestEntityTooLarge, body: map[string]any{
			"message": fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit),
		}}
	}
	return reply{status: http.StatusBadRequest, body: map[string]any{"message": "read error"}}
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, code int, v any) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	return json.NewEncoder(w).Encode(v)
}
