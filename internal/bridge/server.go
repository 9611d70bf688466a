package bridge

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"bitsouk/config"
	"bitsouk/internal/dtc"
	"bitsouk/logger"
)

// Server accepts client connections and runs one session per connection.
type Server struct {
	config   *config.Config
	registry *Registry
	wg       *sync.WaitGroup
	mu       sync.Mutex
	running  bool
	ctx      context.Context
	listener net.Listener
	log      *logger.Log
}

func NewServer(cfg *config.Config, registry *Registry) *Server {
	return &Server{
		config:   cfg,
		registry: registry,
		wg:       &sync.WaitGroup{},
		log:      logger.Sub("dtc"),
	}
}

// Start binds the listen port, with TLS when configured, and launches the
// accept loop.
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("bridge server already running")
	}
	s.running = true
	s.ctx = ctx
	s.mu.Unlock()

	addr := fmt.Sprintf(":%d", s.config.Bridge.Port)
	var (
		ln  net.Listener
		err error
	)
	if s.config.Bridge.TLS {
		cert, cerr := tls.LoadX509KeyPair(s.config.Bridge.CrtFile, s.config.Bridge.KeyFile)
		if cerr != nil {
			return fmt.Errorf("load tls keypair: %w", cerr)
		}
		ln, err = tls.Listen("tcp", addr, &tls.Config{Certificates: []tls.Certificate{cert}})
	} else {
		ln, err = net.Listen("tcp", addr)
	}
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.listener = ln

	s.log.WithComponent("bridge").WithFields(logger.Fields{"addr": addr, "tls": s.config.Bridge.TLS}).Info("bridge listening")

	s.wg.Add(1)
	go s.acceptLoop()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		<-ctx.Done()
		s.listener.Close()
	}()
	return nil
}

// Stop closes the listener and every live session, then waits for the
// loops to exit.
func (s *Server) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	s.listener.Close()
	for _, c := range s.registry.snapshot() {
		c.teardown("server shutdown")
	}
	s.wg.Wait()
	s.log.WithComponent("bridge").Info("bridge stopped")
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			if s.ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return
			}
			s.log.WithComponent("bridge").WithError(err).Warn("accept failed")
			continue
		}
		conn := newConn(s.registry, nc)
		s.registry.add(conn)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			conn.serve(s.ctx)
		}()
	}
}

// serve runs the session read loop until the client goes away or the
// stream turns invalid.
func (c *Conn) serve(ctx context.Context) {
	c.ctx = ctx
	defer c.teardown("reader closed")

	var dec dtc.Decoder
	buf := make([]byte, 4096)
	for {
		n, err := c.nc.Read(buf)
		if n > 0 {
			dec.Write(buf[:n])
			for {
				frame, ok, ferr := dec.Next()
				if ferr != nil {
					c.log.WithError(ferr).Warn("invalid frame, dropping connection")
					return
				}
				if !ok {
					break
				}
				c.handleFrame(frame)
			}
		}
		if err != nil {
			if err != io.EOF && ctx.Err() == nil {
				c.log.WithError(err).Debug("client read ended")
			}
			return
		}
	}
}
