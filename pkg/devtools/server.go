// Package devtools serves a live view of a render root's component tree.
//
// Endpoints:
//
//	GET /health  liveness check
//	GET /tree    current tree as JSON (see core.Node)
//	GET /ws      WebSocket stream; one "tree" message per commit
//
// The server never touches the tree from its own goroutines: /tree goes
// through the root's dispatch queue, and the stream is fed from the
// commit callback on the owner goroutine.
package devtools

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/go-drift/renderkit/pkg/core"
	"github.com/go-drift/renderkit/pkg/errors"
)

// Source is the inspected root. *render.Root implements it.
type Source interface {
	// Snapshot captures the tree; owner goroutine only.
	Snapshot() core.Node
	// Inspect captures the tree from any goroutine.
	Inspect(ctx context.Context) (core.Node, error)
	OnCommit(fn func()) func()
}

// Message is the envelope sent over the WebSocket stream.
type Message struct {
	Type string     `json:"type"`
	Seq  uint64     `json:"seq"`
	Tree *core.Node `json:"tree,omitempty"`
}

const (
	inspectTimeout = 2 * time.Second
	writeTimeout   = 10 * time.Second
	pingInterval   = 30 * time.Second
	clientBuffer   = 8
)

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// WithMaxClients bounds concurrent stream connections; the default is 16.
func WithMaxClients(n int) Option {
	return func(s *Server) { s.maxClients = n }
}

// Server inspects one Source.
type Server struct {
	source     Source
	logger     *slog.Logger
	upgrader   websocket.Upgrader
	maxClients int

	mu       sync.Mutex
	clients  map[*client]struct{}
	seq      uint64
	last     []byte
	server   *http.Server
	listener net.Listener
	stop     chan struct{}
	detach   func()
}

type client struct {
	conn *websocket.Conn
	out  chan []byte
}

// New creates a server for source and subscribes to its commits. Call from
// the owner goroutine.
func New(source Source, opts ...Option) *Server {
	s := &Server{
		source:     source,
		maxClients: 16,
		clients:    make(map[*client]struct{}),
		stop:       make(chan struct{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     sameHost,
		},
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = errors.Logger()
	}
	s.detach = source.OnCommit(s.publish)
	return s
}

// sameHost accepts requests without an Origin header and local origins.
func sameHost(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	return origin == "http://"+r.Host ||
		origin == "http://localhost" ||
		origin == "http://127.0.0.1"
}

// Handler returns the HTTP handler serving every endpoint.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/tree", s.handleTree)
	mux.HandleFunc("/ws", s.handleStream)
	return mux
}

// Start listens on port (0 picks a free one) and serves in the background.
// Returns the bound port. Starting a running server returns its port.
func (s *Server) Start(port int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return s.listener.Addr().(*net.TCPAddr).Port, nil
	}
	listener, err := net.Listen("tcp", fmt.Sprintf("127.0.0.1:%d", port))
	if err != nil {
		return 0, fmt.Errorf("devtools listen: %w", err)
	}
	server := &http.Server{Handler: s.Handler(), ReadHeaderTimeout: 5 * time.Second}
	s.server = server
	s.listener = listener

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.logger.Error("devtools server stopped", slog.String("error", err.Error()))
			s.mu.Lock()
			s.server = nil
			s.listener = nil
			s.mu.Unlock()
		}
	}()
	s.logger.Info("devtools listening", slog.String("addr", listener.Addr().String()))
	return listener.Addr().(*net.TCPAddr).Port, nil
}

// Close stops listening, closes every stream and unsubscribes from the
// source.
func (s *Server) Close() error {
	s.mu.Lock()
	server := s.server
	s.server = nil
	s.listener = nil
	select {
	case <-s.stop:
	default:
		close(s.stop)
	}
	detach := s.detach
	s.detach = nil
	s.mu.Unlock()

	if detach != nil {
		detach()
	}
	if server == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return server.Shutdown(ctx)
}

// Clients returns the number of connected streams.
func (s *Server) Clients() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.clients)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write([]byte(`{"status":"ok"}`))
}

func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), inspectTimeout)
	defer cancel()
	tree, err := s.source.Inspect(ctx)
	if err != nil {
		http.Error(w, "tree unavailable: "+err.Error(), http.StatusServiceUnavailable)
		return
	}
	data, err := json.MarshalIndent(tree, "", "  ")
	if err != nil {
		http.Error(w, fmt.Sprintf("json encode error: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// publish runs on the owner goroutine after each commit. Slow clients drop
// messages rather than stall the tree.
func (s *Server) publish() {
	tree := s.source.Snapshot()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	data, err := json.Marshal(Message{Type: "tree", Seq: s.seq, Tree: &tree})
	if err != nil {
		s.logger.Warn("devtools encode failed", slog.String("error", err.Error()))
		return
	}
	s.last = data
	for c := range s.clients {
		select {
		case c.out <- data:
		default:
			s.logger.Debug("devtools client lagging; message dropped")
		}
	}
}

func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	full := len(s.clients) >= s.maxClients
	s.mu.Unlock()
	if full {
		http.Error(w, "maximum clients reached", http.StatusServiceUnavailable)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("devtools upgrade failed", slog.String("error", err.Error()))
		return
	}
	defer conn.Close()

	c := &client{conn: conn, out: make(chan []byte, clientBuffer)}
	hello, _ := json.Marshal(Message{Type: "hello"})
	c.out <- hello
	s.mu.Lock()
	if s.last != nil {
		c.out <- s.last
	}
	s.clients[c] = struct{}{}
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		delete(s.clients, c)
		s.mu.Unlock()
	}()

	conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(2 * pingInterval))
		return nil
	})
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					s.logger.Debug("devtools client read failed", slog.String("error", err.Error()))
				}
				return
			}
		}
	}()

	ping := time.NewTicker(pingInterval)
	defer ping.Stop()
	for {
		select {
		case data := <-c.out:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-readDone:
			return
		case <-s.stop:
			conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
