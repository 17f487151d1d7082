// Package server exposes the exported functions over WebSocket so harnesses
// that cannot load a shared library in-process can still drive them.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/pengelbrecht/ffimath/internal/abi"
	"github.com/pengelbrecht/ffimath/internal/calculator"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 * 1024
)

// Server answers call and symbols requests against a backend.
type Server struct {
	backend  abi.Backend
	prefix   string
	strict   bool
	logger   *slog.Logger
	upgrader websocket.Upgrader
}

// Option configures a Server.
type Option func(*Server)

// WithPrefix accepts symbol names carrying the given prefix.
func WithPrefix(prefix string) Option {
	return func(s *Server) {
		s.prefix = prefix
	}
}

// WithStrict turns precondition violations into error responses.
func WithStrict(strict bool) Option {
	return func(s *Server) {
		s.strict = strict
	}
}

// WithLogger sets the logger for the server.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// New creates a server for the given backend.
func New(backend abi.Backend, opts ...Option) *Server {
	s := &Server{
		backend: backend,
		logger:  slog.Default(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the HTTP routes: /ws and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte("ok\n"))
	})
	return mux
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("serve: %w", err)
	}
	return nil
}

// Handle answers a single request.
func (s *Server) Handle(req Request) Response {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	switch req.Type {
	case TypeSymbols:
		resp := Response{Type: TypeSymbols, ID: req.ID}
		for _, sym := range abi.Symbols() {
			resp.Symbols = append(resp.Symbols, SymbolInfo{Name: s.prefix + sym.Name, Signature: sym.Signature(), Doc: sym.Doc})
		}
		return resp

	case TypeCall:
		return s.call(req)

	default:
		return Response{Type: TypeError, ID: req.ID, Error: fmt.Sprintf("unknown message type %q", req.Type)}
	}
}

func (s *Server) call(req Request) Response {
	fail := func(err error) Response {
		return Response{Type: TypeError, ID: req.ID, Symbol: req.Symbol, Error: err.Error()}
	}

	sym, err := abi.Lookup(req.Symbol, s.prefix)
	if err != nil {
		return fail(err)
	}
	raw, err := argStrings(req.Args)
	if err != nil {
		return fail(err)
	}
	args, err := abi.ParseArgs(sym, raw)
	if err != nil {
		return fail(err)
	}

	var warning string
	if err := abi.CheckPreconditions(sym, args); err != nil {
		if s.strict || s.refuses(err) {
			return fail(err)
		}
		warning = err.Error()
	}

	result, err := s.backend.Call(sym, args)
	if err != nil {
		return fail(err)
	}
	return Response{Type: TypeResult, ID: req.ID, Symbol: sym.Name, Result: &result, Warning: warning}
}

// refuses reports whether err names an input that would abort a native backend.
func (s *Server) refuses(err error) bool {
	_, local := s.backend.(abi.Local)
	return !local && calculator.IsTrap(err)
}

// conn serialises writes; the ping loop and the reader both write.
type conn struct {
	ws      *websocket.Conn
	writeMu sync.Mutex
}

func (c *conn) writeJSON(v any) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	return c.ws.WriteJSON(v)
}

func (c *conn) ping() error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	return c.ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
}

func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("upgrade failed", "error", err)
		return
	}
	c := &conn{ws: ws}
	connID := uuid.NewString()
	logger := s.logger.With("conn", connID, "remote", r.RemoteAddr)
	logger.Debug("connection opened")

	done := make(chan struct{})
	defer func() {
		close(done)
		ws.Close()
		logger.Debug("connection closed")
	}()

	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	go func() {
		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				if err := c.ping(); err != nil {
					return
				}
			}
		}
	}()

	for {
		msgType, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("read failed", "error", err)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		var req Request
		var resp Response
		if err := json.Unmarshal(data, &req); err != nil {
			resp = Response{Type: TypeError, ID: uuid.NewString(), Error: fmt.Sprintf("invalid message: %v", err)}
		} else {
			resp = s.Handle(req)
		}
		if resp.Type == TypeError {
			logger.Debug("request failed", "id", resp.ID, "symbol", resp.Symbol, "error", resp.Error)
		}

		if err := c.writeJSON(resp); err != nil {
			logger.Warn("write failed", "error", err)
			return
		}
	}
}
