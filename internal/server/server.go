// Package server implements the chat engine: a TCP accept loop that gives
// every connection its own session, a broadcast hub that fans each message
// out to all subscribed sessions, and a registry of who is online. An
// optional websocket gateway bridges browser clients into the same hub.
package server

import (
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
)

// Server owns the listening socket and the two resources shared by every
// session: one Hub and one Registry, constructed here and handed to each
// session by reference. There is no package-level state.
type Server struct {
	cfg      Config
	hub      *Hub
	registry *Registry

	listener net.Listener
	httpSrv  *http.Server

	mu       sync.Mutex
	shutdown bool
	wg       sync.WaitGroup
}

// NewServer wires a server from cfg without binding anything yet.
func NewServer(cfg Config) *Server {
	cfg = cfg.sanitized()
	return &Server{
		cfg:      cfg,
		hub:      NewHub(cfg.HubCapacity),
		registry: NewRegistry(),
	}
}

// Listen binds the configured TCP address. A bind failure is fatal to the
// caller; the server cannot operate without its listener.
func (s *Server) Listen() error {
	ln, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Addr, err)
	}
	s.listener = ln
	log.Printf("Server listening on %s", ln.Addr())
	return nil
}

// Addr returns the bound listen address. Only valid after Listen.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Serve accepts connections until Shutdown closes the listener. Each
// accepted connection gets its own session goroutine; the loop never waits
// on a session. Transient accept errors are logged and the loop keeps
// going.
func (s *Server) Serve() error {
	if s.cfg.HTTPAddr != "" {
		s.startGateway()
	}
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			if s.isShutdown() || errors.Is(err, net.ErrClosed) {
				return nil
			}
			log.Printf("Accept error: %v", err)
			continue
		}
		log.Printf("New connection from %s", conn.RemoteAddr())
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			newSession(conn, s.hub, s.registry).run()
		}()
	}
}

// ListenAndServe is Listen followed by Serve.
func (s *Server) ListenAndServe() error {
	if err := s.Listen(); err != nil {
		return err
	}
	return s.Serve()
}

func (s *Server) isShutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shutdown
}

// Shutdown closes the listeners and the hub, then waits for in-flight
// sessions to drain. Safe to call more than once.
func (s *Server) Shutdown() {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return
	}
	s.shutdown = true
	s.mu.Unlock()

	if s.listener != nil {
		s.listener.Close()
	}
	if s.httpSrv != nil {
		s.httpSrv.Close()
	}
	s.hub.Close()
	s.wg.Wait()
}
