package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rzbill/flume/internal/buffer"
	"github.com/rzbill/flume/internal/event"
	"github.com/rzbill/flume/internal/partition"
	"github.com/rzbill/flume/internal/ratelimit"
	"github.com/rzbill/flume/internal/runtime"
	logpkg "github.com/rzbill/flume/pkg/log"
)

// Server is the ingest API. Writes land in the buffered store only; the
// drainer moves them to durable files on its own schedule.
type Server struct {
	rt      *runtime.Runtime
	srv     *http.Server
	lis     net.Listener
	limiter *ratelimit.Limiter
	logger  logpkg.Logger
}

// New builds a Server over the given runtime.
func New(rt *runtime.Runtime, logger logpkg.Logger) *Server {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	cfg := rt.Config()
	mux := http.NewServeMux()
	s := &Server{
		rt:      rt,
		srv:     &http.Server{Handler: cors(mux)},
		limiter: ratelimit.New(cfg.RateLimitPerMinute, cfg.RateLimitBurst),
		logger:  logger.WithComponent("http"),
	}
	mux.HandleFunc("/v1/healthz", s.handleHealth)
	mux.HandleFunc("/v1/logs", s.handleIngest)
	mux.HandleFunc("/v1/logs/buffered", s.handleBuffered)
	return s
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.lis = l
	s.logger.Info("http server listening", logpkg.Str("addr", l.Addr().String()))
	errCh := make(chan error, 1)
	go func() { errCh <- s.srv.Serve(l) }()
	select {
	case <-ctx.Done():
		cctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.srv.Shutdown(cctx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Close releases the listener.
func (s *Server) Close() {
	if s.lis != nil {
		_ = s.lis.Close()
	}
}

// Handler exposes the routed handler for tests.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type errorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg, details string) {
	writeJSON(w, status, errorResponse{Error: msg, Details: details})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.rt.CheckHealth(r.Context()); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "not_serving"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "use POST")
		return
	}
	if !s.limiter.Allow() {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(s.limiter.PerMinute()))
		w.Header().Set("Retry-After", "60")
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded",
			"maximum "+strconv.Itoa(s.limiter.PerMinute())+" requests per minute")
		return
	}

	var e event.Event
	if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON format", err.Error())
		return
	}
	if err := e.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event", err.Error())
		return
	}

	key, err := s.rt.Codec().Key(e.UserID, e.Timestamp)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid event", err.Error())
		return
	}
	line, err := e.EncodeLine()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Serialization failed", err.Error())
		return
	}
	if err := s.rt.Store().Append(r.Context(), key, line); err != nil {
		s.logger.Error("buffered append failed", logpkg.Str("key", key), logpkg.Err(err))
		writeError(w, http.StatusInternalServerError, "Cache operation failed", err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "key": key})
}

type bufferedResponse struct {
	Key    string            `json:"key"`
	Count  int               `json:"count"`
	Events []json.RawMessage `json:"events"`
}

// handleBuffered returns the not-yet-drained events for one owner/time
// pair. Inspection only; the key is never mutated.
func (s *Server) handleBuffered(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed", "use GET")
		return
	}
	owner := r.URL.Query().Get("user")
	tsStr := r.URL.Query().Get("ts")
	ts, err := strconv.ParseInt(tsStr, 10, 64)
	if owner == "" || tsStr == "" || err != nil {
		writeError(w, http.StatusBadRequest, "Invalid query",
			"required parameters: user, ts (unix seconds)")
		return
	}
	key, err := s.rt.Codec().Key(owner, ts)
	if err != nil {
		if errors.Is(err, partition.ErrUnsafeIdentifier) {
			writeError(w, http.StatusBadRequest, "Invalid query", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Key derivation failed", err.Error())
		return
	}

	lines, err := s.rt.Store().ReadAll(r.Context(), key)
	if err != nil {
		if errors.Is(err, buffer.ErrUnavailable) {
			writeError(w, http.StatusServiceUnavailable, "Cache operation failed", err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "Cache operation failed", err.Error())
		return
	}
	resp := bufferedResponse{Key: key, Count: len(lines), Events: make([]json.RawMessage, 0, len(lines))}
	for _, line := range lines {
		resp.Events = append(resp.Events, json.RawMessage(line))
	}
	writeJSON(w, http.StatusOK, resp)
}
