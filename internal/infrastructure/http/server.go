// Package http provides the HTTP server infrastructure.
// Thin request/response marshaling only; all pipeline logic lives in the
// orchestrator.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/nmrocha/munirag-go/internal/domain/entities"
	"github.com/nmrocha/munirag-go/internal/domain/usecases"
	"github.com/nmrocha/munirag-go/internal/logger"
)

// Server exposes the RAG pipeline over HTTP.
type Server struct {
	orch *usecases.Orchestrator
	addr string
}

// NewServer creates a new HTTP server for the orchestrator.
func NewServer(orch *usecases.Orchestrator, addr string) *Server {
	return &Server{orch: orch, addr: addr}
}

// Handler builds the route handler. Exposed for tests.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)
	mux.HandleFunc("GET /api/status", s.handleStatus)
	mux.HandleFunc("POST /api/reload", s.handleReload)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	return corsMiddleware(loggingMiddleware(mux))
}

// Start runs the HTTP server until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	server := &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 600 * time.Second, // model calls can run for minutes
	}

	logger.Info("server starting on %s", s.addr)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		server.Shutdown(shutdownCtx)
	}()

	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

type chatRequest struct {
	Message string `json:"message"`
}

// handleChat maps POST /api/chat onto Orchestrator.Answer.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "pedido inválido")
		return
	}
	question := strings.TrimSpace(req.Message)
	if question == "" {
		writeError(w, http.StatusBadRequest, "mensagem vazia")
		return
	}

	resp, err := s.orch.Answer(r.Context(), question)
	if err != nil {
		status, msg := mapAnswerError(err)
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"response": resp.Answer,
		"status":   "success",
	})
}

// handleStatus maps GET /api/status onto Orchestrator.Status.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status": s.orch.Status(),
	})
}

// handleReload maps POST /api/reload onto Orchestrator.Reload.
func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if err := s.orch.Reload(r.Context()); err != nil {
		switch {
		case errors.Is(err, entities.ErrReloadInProgress):
			writeError(w, http.StatusConflict, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, err.Error())
		}
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"message": "documentos recarregados com sucesso",
	})
}

// handleHealth reports process liveness, independent of pipeline state.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// mapAnswerError translates domain errors into HTTP responses without
// conflating a timeout with an unreachable backend or an unready index.
func mapAnswerError(err error) (int, string) {
	switch {
	case errors.Is(err, entities.ErrNotReady):
		return http.StatusServiceUnavailable, "índice ainda não construído"
	case errors.Is(err, entities.ErrModelTimeout):
		return http.StatusGatewayTimeout, err.Error()
	case errors.Is(err, entities.ErrModelUnavailable):
		return http.StatusBadGateway, err.Error()
	default:
		return http.StatusInternalServerError, err.Error()
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logger.Info("%s %s %v", r.Method, r.URL.Path, time.Since(start))
	})
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			return
		}
		next.ServeHTTP(w, r)
	})
}
