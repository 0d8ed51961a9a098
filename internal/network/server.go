// Package network streams live IK frames to observers over websockets.
package network

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/Faultbox/stance-ik/internal/network/packets"
)

const (
	writeTimeout  = 5 * time.Second
	readTimeout   = 60 * time.Second
	pingInterval  = readTimeout * 9 / 10
	clientBacklog = 256
)

type client struct {
	id  uint64
	out chan []byte
}

// Server fans frames out to every connected observer. Slow observers drop
// frames rather than stalling the simulation.
type Server struct {
	log      *zap.Logger
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[uint64]*client
	hello   []byte

	nextID  atomic.Uint64
	dropped atomic.Uint64
}

// NewServer creates an observer server. A nil logger discards output.
func NewServer(log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		log:     log,
		clients: make(map[uint64]*client),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true }, // dev default
		},
	}
}

// SetHello sets the greeting sent to observers as they connect.
func (s *Server) SetHello(h packets.Hello) error {
	h.Type = packets.TypeHello
	h.Version = packets.Version
	b, err := packets.Encode(h)
	if err != nil {
		return fmt.Errorf("encoding hello: %w", err)
	}
	s.mu.Lock()
	s.hello = b
	s.mu.Unlock()
	return nil
}

// Publish sends a frame to every observer without blocking.
func (s *Server) Publish(f packets.Frame) {
	f.Type = packets.TypeFrame
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.clients) == 0 {
		return
	}
	b, err := packets.Encode(f)
	if err != nil {
		s.log.Warn("encoding frame", zap.Error(err))
		return
	}
	for _, c := range s.clients {
		select {
		case c.out <- b:
		default:
			s.dropped.Add(1)
		}
	}
}

// Clients returns the number of connected observers.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

// Dropped returns how many frames were dropped on full observer queues.
func (s *Server) Dropped() uint64 {
	return s.dropped.Load()
}

// Handler returns the HTTP routes: /ws for the stream and /healthz.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain")
		fmt.Fprintf(rw, "ok %d\n", s.Clients())
	})
	return mux
}

// Listen binds addr for Serve. Binding up front lets callers fail before
// starting the simulation when the address is taken.
func (s *Server) Listen(addr string) (net.Listener, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("telemetry listen on %s: %w", addr, err)
	}
	return ln, nil
}

// Serve serves the observer routes on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}

	stopped := make(chan struct{})
	defer close(stopped)
	go func() {
		select {
		case <-ctx.Done():
		case <-stopped:
			return
		}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	s.log.Info("telemetry listening", zap.String("addr", ln.Addr().String()))
	if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("telemetry serve: %w", err)
	}
	return nil
}

func (s *Server) handleWS(rw http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(rw, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	c := &client{id: s.nextID.Add(1), out: make(chan []byte, clientBacklog)}
	s.mu.Lock()
	if s.hello != nil {
		c.out <- s.hello
	}
	s.clients[c.id] = c
	s.mu.Unlock()
	s.log.Debug("observer joined", zap.Uint64("id", c.id), zap.String("remote", r.RemoteAddr))

	done := make(chan struct{})
	writeErr := make(chan error, 1)
	go func() { writeErr <- s.writeLoop(conn, c, done) }()

	// Observers only listen; reading handles pongs and detects the close.
	_ = conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(readTimeout))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			break
		}
	}

	s.mu.Lock()
	delete(s.clients, c.id)
	s.mu.Unlock()
	close(done)
	if err := <-writeErr; err != nil {
		s.log.Debug("observer write failed", zap.Uint64("id", c.id), zap.Error(err))
	}
	s.log.Debug("observer left", zap.Uint64("id", c.id))
}

// frameConn is the write side of an observer connection.
type frameConn interface {
	WriteMessage(messageType int, data []byte) error
	WriteControl(messageType int, data []byte, deadline time.Time) error
	SetWriteDeadline(t time.Time) error
	Close() error
}

// writeLoop drains a client's queue and pings it until done is closed. On a
// failed write it closes conn, which ends the reader and unregisters the client.
func (s *Server) writeLoop(conn frameConn, c *client, done <-chan struct{}) error {
	ping := time.NewTicker(pingInterval)
	defer ping.Stop()

	fail := func(err error) error {
		_ = conn.Close()
		return err
	}
	for {
		select {
		case <-done:
			return nil
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeTimeout)); err != nil {
				return fail(err)
			}
		case b := <-c.out:
			_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return fail(err)
			}
		}
	}
}
