// Package api provides the DataLens REST and WebSocket server.
package api

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/FocuswithJustin/DataLens/core/engine"
	"github.com/FocuswithJustin/DataLens/internal/logging"
)

// Config holds server configuration.
type Config struct {
	Port int
	// RequestTimeout bounds each conversion request (0 = no limit).
	RequestTimeout time.Duration
}

// Server serves conversion requests over HTTP and WebSocket.
type Server struct {
	eng *engine.Engine
	cfg Config
	hub *Hub
}

// NewServer creates a server around a configured engine.
func NewServer(eng *engine.Engine, cfg Config) *Server {
	return &Server{
		eng: eng,
		cfg: cfg,
		hub: NewHub(),
	}
}

// Start runs the server until the listener fails. The hub goroutine
// tracks WebSocket clients for the lifetime of the process.
func (s *Server) Start() error {
	go s.hub.Run()

	addr := fmt.Sprintf(":%d", s.cfg.Port)
	logging.ServerStartup("rest_api", addr, "websocket_path", "/ws")
	return http.ListenAndServe(addr, s.Handler())
}

// Handler returns the full middleware-wrapped route table. Split out
// from Start so tests can drive it through httptest.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRoot)
	mux.HandleFunc("/healthz", s.handleHealth)
	mux.HandleFunc("/api/v1/convert", s.handleConvert)
	mux.HandleFunc("/api/v1/formats", s.handleFormats)
	mux.HandleFunc("/ws", s.handleWebSocket)

	return requestLogger(mux)
}

// requestContext derives the per-request deadline.
func (s *Server) requestContext(parent context.Context) (context.Context, context.CancelFunc) {
	if s.cfg.RequestTimeout <= 0 {
		return parent, func() {}
	}
	return context.WithTimeout(parent, s.cfg.RequestTimeout)
}

// statusRecorder captures the response code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// Hijack passes through to the underlying writer so the WebSocket
// upgrade works behind the logging middleware.
func (r *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	hj, ok := r.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("response writer does not support hijacking")
	}
	return hj.Hijack()
}

// requestLogger tags each request with an ID and logs it on completion.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		r = r.WithContext(logging.WithRequestID(r.Context(), requestID))
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logging.HTTPRequest(r.Method, r.URL.Path, r.RemoteAddr, rec.status, time.Since(start),
			"request_id", requestID)
	})
}
