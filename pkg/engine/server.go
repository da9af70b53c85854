// Package engine hosts a simulated service behind a real HTTP listener.
//
// The engine is the transport boundary: it converts *http.Request into the
// abstract sim.Request, enforces bearer-token authentication before routing,
// and writes the service's sim.Response back out as JSON. One Server owns one
// Service instance and therefore one independent copy of simulated state.
package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/apistub/apistub/pkg/httputil"
	"github.com/apistub/apistub/pkg/logging"
	"github.com/apistub/apistub/pkg/sim"
)

// Config controls a Server.
type Config struct {
	// Addr is the listen address, e.g. ":4380". ":0" asks the OS for a port.
	Addr string
	// AuthToken, when non-empty, requires every request to carry
	// "Authorization: Bearer <AuthToken>" exactly.
	AuthToken string
}

// Server hosts one simulated service.
type Server struct {
	cfg Config
	svc sim.Service
	log *slog.Logger

	mu         sync.Mutex
	httpServer *http.Server
	listener   net.Listener
	running    bool
}

// NewServer creates a Server for the given service. A nil logger disables
// logging.
func NewServer(cfg Config, svc sim.Service, log *slog.Logger) *Server {
	if log == nil {
		log = logging.Nop()
	}
	return &Server{cfg: cfg, svc: svc, log: log}
}

// Handler returns the full HTTP handler chain: request-id and logging
// middleware around the auth check and service dispatch. It is usable
// without Start, e.g. behind a test transport.
func (s *Server) Handler() http.Handler {
	return s.withRequestID(s.withLogging(http.HandlerFunc(s.serve)))
}

// serve converts the HTTP request, runs the auth check and dispatches to the
// service. The auth check happens before any routing.
func (s *Server) serve(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		httputil.WriteError(w, http.StatusBadRequest, sim.TypeInvalidRequestBody, "failed to read request body")
		return
	}

	auth := r.Header.Get("Authorization")
	if s.cfg.AuthToken != "" && auth != "Bearer "+s.cfg.AuthToken {
		authErr := sim.AuthenticationRequired()
		httputil.WriteJSON(w, authErr.StatusCode(), authErr.Body())
		return
	}

	resp := s.svc.Handle(&sim.Request{
		Method:        r.Method,
		Path:          r.URL.Path,
		Query:         r.URL.Query(),
		Body:          body,
		Authorization: auth,
	})
	httputil.WriteJSON(w, resp.Status, resp.Body)
}

// Start begins serving. It returns once the listener is bound; the actual
// address is then available via Addr.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		return errors.New("server already running")
	}

	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.cfg.Addr, err)
	}
	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.running = true

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("server stopped unexpectedly", "error", err)
		}
	}()

	s.log.Info("server started", "service", s.svc.Name(), "addr", listener.Addr().String())
	return nil
}

// Addr returns the bound listen address, or "" before Start.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.running {
		return nil
	}
	s.running = false
	s.log.Info("server stopping", "service", s.svc.Name())
	return s.httpServer.Shutdown(ctx)
}
