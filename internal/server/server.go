// Package server accepts registrar connections and runs one handler
// goroutine per connection. Handlers decode request frames, hand them
// to the dispatcher, and write response envelopes; all shared state
// sits behind the enrollment engine.
//
// The wire protocol trusts the username asserted by the client on
// every request - there is no per-request re-authentication or
// session token. This is a known weakness of the protocol this server
// speaks, not a guarantee; see DESIGN.md.
package server

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"sync"

	"github.com/google/uuid"

	"github.com/roach88/registrar/internal/protocol"
	"github.com/roach88/registrar/internal/registrar"
)

// Server owns the listener and the per-connection handler goroutines.
type Server struct {
	addr       string
	dispatcher *Dispatcher
}

// New creates a server that will listen on cfg.Addr and dispatch to
// the given engine.
func New(cfg Config, eng *registrar.Engine) *Server {
	return &Server{
		addr:       cfg.Addr,
		dispatcher: NewDispatcher(eng),
	}
}

// ListenAndServe listens on the configured address and serves until
// the context is cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until the context is cancelled,
// then waits for in-flight handlers to finish. Exposed separately so
// tests can serve on an ephemeral listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	slog.Info("server listening", "addr", ln.Addr().String())

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	var wg sync.WaitGroup
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				// Shutdown: the listener was closed on purpose.
				wg.Wait()
				slog.Info("server stopped")
				return nil
			}
			return fmt.Errorf("accept: %w", err)
		}

		wg.Add(1)
		go func() {
			defer wg.Done()
			s.handleConn(ctx, conn)
		}()
	}
}

// handleConn serves one connection: read frame, dispatch, write
// envelope, repeat. A malformed frame is answered and the loop
// continues; an internal (store) failure is answered and then the
// connection is closed, per the error-handling contract.
func (s *Server) handleConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	connID := uuid.Must(uuid.NewV7()).String()
	log := slog.With("conn", connID, "remote", conn.RemoteAddr().String())
	log.Info("connection opened")

	r := bufio.NewReader(conn)
	for {
		if ctx.Err() != nil {
			log.Info("connection closed on shutdown")
			return
		}

		req, err := protocol.ReadRequest(r)
		if errors.Is(err, io.EOF) {
			log.Info("connection closed by peer")
			return
		}
		if errors.Is(err, protocol.ErrMalformed) {
			log.Debug("malformed request", "error", err)
			resp := protocol.Err(string(registrar.CodeMalformedRequest), "Malformed request")
			if werr := protocol.WriteResponse(conn, resp); werr != nil {
				log.Error("write failed", "error", werr)
				return
			}
			continue
		}
		if err != nil {
			log.Error("read failed", "error", err)
			return
		}

		log.Debug("request", "command", req.Command)
		resp := s.dispatcher.Dispatch(ctx, req)

		if err := protocol.WriteResponse(conn, resp); err != nil {
			log.Error("write failed", "error", err)
			return
		}

		if resp.Code == string(registrar.CodeInternalError) {
			log.Error("internal error, closing connection", "command", req.Command, "message", resp.Message)
			return
		}
	}
}
