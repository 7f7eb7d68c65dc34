package server

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
)

type handler interface {
	Handle(conn net.Conn)
}

// Server accepts TCP connections and hands each one to its handler. It is
// shared by storage nodes and the coordinator; only the handler differs.
type Server struct {
	name     string
	listener net.Listener
	handler  handler

	// configuration for handling connections
	maxConnections int
	connSemaphore  chan struct{}
	activeConns    sync.WaitGroup
}

type Config struct {
	// Name identifies the server in logs and the app lifecycle.
	Name    string
	Address string
	// Port may be 0 to bind an ephemeral port; Addr() reports the bound one.
	Port           int
	Handler        handler
	MaxConnections int
}

func (c *Config) validate() error {
	var errGrp []error

	if c.Name == "" {
		errGrp = append(errGrp, errors.New("name is required"))
	}
	if c.Address == "" {
		errGrp = append(errGrp, errors.New("address is required"))
	}
	if c.Handler == nil {
		errGrp = append(errGrp, errors.New("handler is required"))
	}

	return errors.Join(errGrp...)
}

// New returns a new Stonetable server, which provides a way to start and
// listen to incoming cluster traffic.
func New(cfg *Config) (*Server, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	listener, err := net.Listen("tcp", fmt.Sprintf("%s:%d", cfg.Address, cfg.Port))
	if err != nil {
		return nil, fmt.Errorf("failed to create listener: %w", err)
	}

	maxConns := cfg.MaxConnections
	if maxConns <= 0 {
		maxConns = 100 // default value
	}

	return &Server{
		name:           cfg.Name,
		listener:       listener,
		handler:        cfg.Handler,
		maxConnections: maxConns,
		connSemaphore:  make(chan struct{}, maxConns),
		activeConns:    sync.WaitGroup{},
	}, nil
}

// Addr returns the address the server is bound to, resolving ephemeral ports.
func (s *Server) Addr() string {
	return s.listener.Addr().String()
}

func (s *Server) Start() error {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			// closed listener means a requested shutdown, not a failure
			if errors.Is(err, net.ErrClosed) || strings.Contains(err.Error(), "use of closed network connection") {
				return nil
			}
			return err
		}
		remoteAddr := conn.RemoteAddr().String()

		// Try to acquire a connection slot
		select {
		case s.connSemaphore <- struct{}{}: // Connection slot acquired
			s.activeConns.Add(1)
			go func() {
				defer func() {
					<-s.connSemaphore // Release the connection slot
					s.activeConns.Done()
				}()

				s.handler.Handle(conn)
			}()
		default:
			// Max connections reached, reject the connection
			_ = conn.Close()
			log.Warn().Msgf("Rejected connection from %s: max connections reached", remoteAddr)
		}
	}
}

// Stop will stop the server from accepting new connections.
func (s *Server) Stop() error {
	err := s.listener.Close()
	s.activeConns.Wait() // Wait for all active connections to finish
	if errors.Is(err, net.ErrClosed) {
		return nil
	}
	return err
}

// Name returns the name of the server.
func (s *Server) Name() string {
	return s.name
}
