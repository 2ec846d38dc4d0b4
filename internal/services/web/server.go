// Package web serves the browser keypad: a static page, a websocket that
// drives one calculator session per connection, and Prometheus metrics.
package web

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/louisbranch/tally/internal/platform/metrics"
	"github.com/louisbranch/tally/internal/platform/timeouts"
	"github.com/louisbranch/tally/internal/session"
	"golang.org/x/net/websocket"
)

//go:embed static
var staticFiles embed.FS

// Config defines the inputs for the keypad HTTP server.
type Config struct {
	HTTPAddr          string
	HistoryCapacity   int
	ReadHeaderTimeout time.Duration
	ShutdownTimeout   time.Duration
}

// Server hosts the keypad HTTP/WebSocket process.
type Server struct {
	httpAddr        string
	shutdownTimeout time.Duration
	httpServer      *http.Server
	metrics         *metrics.Calculator
}

type handlerDeps struct {
	metrics         *metrics.Calculator
	historyCapacity int
}

func (d handlerDeps) sessionOptions() []session.Option {
	var opts []session.Option
	if d.metrics != nil {
		opts = append(opts, session.WithObserver(d.metrics))
	}
	if d.historyCapacity > 0 {
		opts = append(opts, session.WithHistoryCapacity(d.historyCapacity))
	}
	return opts
}

// NewHandler creates the keypad routes: "/" (static page), "/ws", "/up" and
// "/metrics" when collectors is set.
func NewHandler(collectors *metrics.Calculator) http.Handler {
	return newHandler(handlerDeps{metrics: collectors})
}

func newHandler(deps handlerDeps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/up", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	if deps.metrics != nil {
		mux.Handle("/metrics", deps.metrics.Handler())
	}

	wsHandler := websocket.Handler(func(conn *websocket.Conn) {
		handleWSConn(conn, deps)
	})
	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			w.Header().Set("Allow", http.MethodGet)
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		wsHandler.ServeHTTP(w, r)
	})

	static, err := fs.Sub(staticFiles, "static")
	if err != nil {
		log.Printf("web: static assets unavailable: %v", err)
		return mux
	}
	mux.Handle("/", http.FileServerFS(static))
	return mux
}

// NewServer builds a configured keypad server.
func NewServer(config Config) (*Server, error) {
	httpAddr := strings.TrimSpace(config.HTTPAddr)
	if httpAddr == "" {
		return nil, errors.New("http address is required")
	}
	if config.ReadHeaderTimeout <= 0 {
		config.ReadHeaderTimeout = timeouts.ReadHeader
	}
	if config.ShutdownTimeout <= 0 {
		config.ShutdownTimeout = timeouts.Shutdown
	}

	collectors := metrics.New()
	httpServer := &http.Server{
		Addr: httpAddr,
		Handler: newHandler(handlerDeps{
			metrics:         collectors,
			historyCapacity: config.HistoryCapacity,
		}),
		ReadHeaderTimeout: config.ReadHeaderTimeout,
	}

	return &Server{
		httpAddr:        httpAddr,
		shutdownTimeout: config.ShutdownTimeout,
		httpServer:      httpServer,
		metrics:         collectors,
	}, nil
}

// Run creates and serves a keypad server until the context ends.
func Run(ctx context.Context, config Config) error {
	server, err := NewServer(config)
	if err != nil {
		return fmt.Errorf("init web server: %w", err)
	}
	if err := server.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("serve web: %w", err)
	}
	return nil
}

// ListenAndServe runs the HTTP server until the context ends.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	listener, err := net.Listen("tcp", s.httpAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.httpAddr, err)
	}
	return s.Serve(ctx, listener)
}

// Serve runs the HTTP server on listener until the context ends.
func (s *Server) Serve(ctx context.Context, listener net.Listener) error {
	if s == nil {
		return errors.New("web server is nil")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	serveErr := make(chan error, 1)
	log.Printf("web keypad listening on %s", listener.Addr())
	go func() {
		serveErr <- s.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
		err := s.httpServer.Shutdown(shutdownCtx)
		cancel()
		if err != nil {
			return fmt.Errorf("shutdown http server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve http: %w", err)
	}
}
