package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/leafsii/kvkeywords/internal/keywords"
	"github.com/leafsii/kvkeywords/internal/session"
	"go.uber.org/zap"
)

// MetricsInterface defines the interface for metrics recording
type MetricsInterface interface {
	RecordHTTPRequest(ctx context.Context, method, path string, status int, duration time.Duration)
}

// ProbeFunc reports whether the default backend is reachable
type ProbeFunc func(ctx context.Context) error

type Handler struct {
	library  *keywords.Library
	sessions *session.Manager
	probe    ProbeFunc
	logger   *zap.SugaredLogger
}

func NewHandler(library *keywords.Library, sessions *session.Manager, probe ProbeFunc, logger *zap.SugaredLogger) *Handler {
	return &Handler{
		library:  library,
		sessions: sessions,
		probe:    probe,
		logger:   logger,
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("OK"))
}

// Readyz probes the default backend when a probe is configured
func (h *Handler) Readyz(w http.ResponseWriter, r *http.Request) {
	dto := HealthDTO{Status: "ready", Sessions: h.sessions.Len()}

	if h.probe != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := h.probe(ctx); err != nil {
			h.logger.Warnw("Readiness probe failed", "error", err)
			dto.Status = "unavailable"
			dto.Reason = err.Error()
			h.writeJSON(w, http.StatusServiceUnavailable, dto)
			return
		}
	}

	h.writeJSON(w, http.StatusOK, dto)
}

func (h *Handler) ListKeywords(w http.ResponseWriter, r *http.Request) {
	names := h.library.Names()
	dtos := make([]KeywordDTO, 0, len(names))
	for _, name := range names {
		kw, _ := h.library.Keyword(name)
		dtos = append(dtos, toKeywordDTO(kw))
	}
	h.writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetKeyword(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	kw, ok := h.library.Keyword(name)
	if !ok {
		h.writeError(w, http.StatusNotFound, "KEYWORD_NOT_FOUND", "no keyword named '"+name+"'")
		return
	}
	h.writeJSON(w, http.StatusOK, toKeywordDTO(kw))
}

// CloseSession is the REST counterpart of the disconnect method
func (h *Handler) CloseSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.sessions.Close(r.Context(), id); err != nil {
		h.writeError(w, http.StatusNotFound, "SESSION_NOT_FOUND", err.Error())
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func toKeywordDTO(kw *keywords.Keyword) KeywordDTO {
	args := kw.Args
	if args == nil {
		args = []string{}
	}
	return KeywordDTO{Name: kw.Name, Args: args, Doc: kw.Doc}
}

// Utility methods
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (h *Handler) writeError(w http.ResponseWriter, status int, code, message string) {
	h.logger.Errorw("API error", "code", code, "message", message, "status", status)
	writeErrorResponse(w, status, code, message)
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Code:    code,
		Message: message,
	})
}
