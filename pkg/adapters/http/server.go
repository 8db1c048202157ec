package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/aretw0/asyncresource"
	"github.com/aretw0/asyncresource/pkg/domain"
	"github.com/aretw0/asyncresource/pkg/ports"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// maxBodySize bounds dispatch argument payloads.
const maxBodySize = 1 << 20

// Server exposes session resources over HTTP.
type Server struct {
	Host   ports.ResourceHost
	Logger *slog.Logger
}

// Option configures the handler.
type Option func(*handlerConfig)

type handlerConfig struct {
	gatherer prometheus.Gatherer
	logger   *slog.Logger
}

// WithMetrics serves the gatherer's metrics on GET /metrics.
func WithMetrics(g prometheus.Gatherer) Option {
	return func(c *handlerConfig) {
		c.gatherer = g
	}
}

// WithLogger sets the request logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(c *handlerConfig) {
		c.logger = logger
	}
}

// NewHandler creates a new HTTP handler for the host.
func NewHandler(host ports.ResourceHost, opts ...Option) http.Handler {
	cfg := handlerConfig{logger: slog.Default()}
	for _, opt := range opts {
		opt(&cfg)
	}

	server := &Server{Host: host, Logger: cfg.logger}
	r := chi.NewRouter()

	r.Get("/health", server.GetHealth)
	r.Get("/info", server.GetInfo)
	if cfg.gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(cfg.gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/sessions/{session}", func(r chi.Router) {
		r.Get("/state", server.GetState)
		r.Delete("/", server.DeleteSession)
		r.Get("/actions", server.ListActions)
		r.Post("/actions/{action}", server.Dispatch)
		r.Get("/events", server.SubscribeEvents)
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.Logger.Error("response encode failed", "error", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrUnknownAction):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidArguments), errors.Is(err, domain.ErrInvalidSessionID):
		status = http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		status = http.StatusGatewayTimeout
	}
	if status == http.StatusInternalServerError {
		s.Logger.Error("request failed", "error", err)
	}
	s.writeJSON(w, status, map[string]string{"error": err.Error()})
}

// GetHealth handles the GET /health request.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// GetInfo handles the GET /info request.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{
		"app":     "asyncresource-http",
		"version": strings.TrimSpace(asyncresource.Version),
	})
}

// GetState handles the GET /sessions/{session}/state request.
func (s *Server) GetState(w http.ResponseWriter, r *http.Request) {
	snap, err := s.Host.State(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, snap)
}

// DeleteSession handles the DELETE /sessions/{session} request.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Host.Delete(r.Context(), chi.URLParam(r, "session")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ListActions handles the GET /sessions/{session}/actions request.
func (s *Server) ListActions(w http.ResponseWriter, r *http.Request) {
	names, err := s.Host.Actions(r.Context(), chi.URLParam(r, "session"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, map[string][]string{"actions": names})
}

// Dispatch handles the POST /sessions/{session}/actions/{action} request.
// It answers 202 with the snapshot right after the begin transition, or with
// ?wait=true, 200 with the snapshot once the action has settled.
func (s *Server) Dispatch(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session")
	action := chi.URLParam(r, "action")

	args, err := decodeArgs(r)
	if err != nil {
		s.writeError(w, fmt.Errorf("%w: %v", domain.ErrInvalidArguments, err))
		return
	}

	done, err := s.Host.Dispatch(r.Context(), sessionID, action, args)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.Logger.Debug("Dispatch: action started", "session_id", sessionID, "action", action)

	status := http.StatusAccepted
	if wait, _ := strconv.ParseBool(r.URL.Query().Get("wait")); wait {
		select {
		case <-done:
			status = http.StatusOK
		case <-r.Context().Done():
			s.writeError(w, r.Context().Err())
			return
		}
	}

	snap, err := s.Host.State(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, status, snap)
}

// decodeArgs reads an optional JSON body. An empty body means no arguments.
func decodeArgs(r *http.Request) (any, error) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err != nil {
		return nil, err
	}
	if len(strings.TrimSpace(string(body))) == 0 {
		return nil, nil
	}
	var args any
	if err := json.Unmarshal(body, &args); err != nil {
		return nil, err
	}
	return args, nil
}

// SubscribeEvents handles the GET /sessions/{session}/events request (SSE).
// The current snapshot is sent first, then one event per transition.
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.Logger.Error("SubscribeEvents: Streaming not supported")
		return
	}

	sessionID := chi.URLParam(r, "session")
	updates, err := s.Host.Subscribe(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}
	current, err := s.Host.State(r.Context(), sessionID)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	s.Logger.Info("SSE: Subscribing to Session Updates", "session_id", sessionID)
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	writeEvent(w, current)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Info("SSE Client Disconnected", "session_id", sessionID)
			return
		case snap, ok := <-updates:
			if !ok {
				return
			}
			// Updates applied before the initial read are already reflected in it.
			if snap.Version <= current.Version {
				continue
			}
			writeEvent(w, snap)
			flusher.Flush()
		}
	}
}

func writeEvent(w io.Writer, snap domain.Snapshot) {
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	fmt.Fprintf(w, "event: state\nid: %d\ndata: %s\n\n", snap.Version, data)
}
