package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"

	"github.com/louisbranch/tally/internal/platform/discovery"
	"github.com/louisbranch/tally/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// mcpPath is the streamable HTTP endpoint.
	mcpPath = "/mcp"
	// healthPath reports liveness for process supervisors.
	healthPath = "/up"
)

// HTTPTransport serves an MCP server over streamable HTTP.
type HTTPTransport struct {
	addr       string
	httpServer *http.Server
}

// NewHTTPTransport creates an HTTP transport for server on addr.
func NewHTTPTransport(addr string, server *mcp.Server) (*HTTPTransport, error) {
	if server == nil {
		return nil, fmt.Errorf("MCP server is not configured")
	}
	return &HTTPTransport{
		addr: discovery.OrDefaultHTTPAddr(addr, discovery.ServiceMCP),
		httpServer: &http.Server{
			Handler:           newHTTPHandler(server),
			ReadHeaderTimeout: timeouts.ReadHeader,
		},
	}, nil
}

func newHTTPHandler(server *mcp.Server) http.Handler {
	mux := http.NewServeMux()
	mux.Handle(mcpPath, mcp.NewStreamableHTTPHandler(func(*http.Request) *mcp.Server {
		return server
	}, nil))
	mux.HandleFunc(healthPath, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			w.Header().Set("Allow", "GET, HEAD")
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	return mux
}

// Serve listens on the configured address and blocks until ctx ends.
func (t *HTTPTransport) Serve(ctx context.Context) error {
	listener, err := net.Listen("tcp", t.addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", t.addr, err)
	}
	return t.serveListener(ctx, listener)
}

func (t *HTTPTransport) serveListener(ctx context.Context, listener net.Listener) error {
	serveErr := make(chan error, 1)
	go func() {
		log.Printf("MCP HTTP listening at %s%s", listener.Addr(), mcpPath)
		serveErr <- t.httpServer.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := t.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown MCP HTTP server: %w", err)
		}
		return nil
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve MCP HTTP: %w", err)
	}
}
