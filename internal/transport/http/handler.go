// Package http maps the service use cases onto the REST surface consumed by
// the frontend.
package http

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"simulado-service/internal/app"
	"simulado-service/internal/domain"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Handler struct {
	service *app.Service
}

func NewHandler(service *app.Service) *Handler {
	return &Handler{service: service}
}

// Register wires every route onto mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/simulados", h.listSimulados)
	mux.HandleFunc("GET /api/simulados/{id}", h.getSimulado)
	mux.HandleFunc("POST /api/admin/cache/clear", h.clearCaches)

	mux.HandleFunc("POST /api/user/stats", h.saveStats)
	mux.HandleFunc("GET /api/user/incorrect_answers", h.incorrectAnswers)
	mux.HandleFunc("POST /api/user/bookmark", h.saveBookmark)
	mux.HandleFunc("DELETE /api/user/bookmark", h.deleteBookmark)
	mux.HandleFunc("GET /api/user/bookmarks", h.bookmarks)
	mux.HandleFunc("GET /api/user/theme", h.getTheme)
	mux.HandleFunc("POST /api/user/theme", h.saveTheme)
	mux.HandleFunc("GET /api/user/progress", h.allProgress)
	mux.HandleFunc("GET /api/user/progress/{id}", h.getProgress)
	mux.HandleFunc("POST /api/user/progress/{id}", h.saveProgress)
	mux.HandleFunc("DELETE /api/user/progress/{id}", h.deleteProgress)
}

func (h *Handler) listSimulados(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.service.ListSimulados(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *Handler) getSimulado(w http.ResponseWriter, r *http.Request) {
	doc, err := h.service.GetSimulado(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, doc)
}

func (h *Handler) clearCaches(w http.ResponseWriter, r *http.Request) {
	h.service.ClearCaches(r.Context())
	writeJSON(w, http.StatusOK, map[string]string{"message": "Caches limpos."})
}

func (h *Handler) saveStats(w http.ResponseWriter, r *http.Request) {
	var stats map[string]domain.IncorrectStat
	if err := json.NewDecoder(r.Body).Decode(&stats); err != nil || len(stats) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Nenhum dado fornecido."})
		return
	}
	if err := h.service.SaveIncorrectStats(r.Context(), stats); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Estatísticas salvas com sucesso."})
}

func (h *Handler) incorrectAnswers(w http.ResponseWriter, r *http.Request) {
	answers, err := h.service.IncorrectAnswers(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, answers)
}

func (h *Handler) saveBookmark(w http.ResponseWriter, r *http.Request) {
	var bookmark domain.Bookmark
	if err := json.NewDecoder(r.Body).Decode(&bookmark); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Payload inválido."})
		return
	}
	if err := h.service.SaveBookmark(r.Context(), bookmark); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Favorito adicionado/atualizado."})
}

func (h *Handler) deleteBookmark(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SimuladoID   string `json:"simulado_id"`
		QuestionHash string `json:"question_hash"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Payload inválido."})
		return
	}
	if err := h.service.DeleteBookmark(r.Context(), req.SimuladoID, req.QuestionHash); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Favorito removido."})
}

func (h *Handler) bookmarks(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.service.Bookmarks(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bookmarks)
}

func (h *Handler) getTheme(w http.ResponseWriter, r *http.Request) {
	theme, err := h.service.Theme(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"theme": theme})
}

func (h *Handler) saveTheme(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Payload inválido."})
		return
	}
	if err := h.service.SaveTheme(r.Context(), req.Theme); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Theme updated"})
}

func (h *Handler) allProgress(w http.ResponseWriter, r *http.Request) {
	entries, err := h.service.AllProgress(r.Context())
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *Handler) getProgress(w http.ResponseWriter, r *http.Request) {
	data, err := h.service.Progress(r.Context(), r.PathValue("id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	if data == nil {
		data = json.RawMessage("{}")
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) saveProgress(w http.ResponseWriter, r *http.Request) {
	var data json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&data); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Payload inválido."})
		return
	}
	if err := h.service.SaveProgress(r.Context(), r.PathValue("id"), data); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Progress saved"})
}

func (h *Handler) deleteProgress(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProgress(r.Context(), r.PathValue("id")); err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Progress deleted"})
}

// writeError maps domain errors to HTTP statuses. Parse and I/O details stay
// in the server log; clients get a generic body.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrSimuladoNotFound), errors.Is(err, domain.ErrInvalidSimuladoID):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Simulado não encontrado"})
	case errors.Is(err, domain.ErrInvalidTheme):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid theme"})
	default:
		log.Printf("request failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Erro interno"})
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}
