package service

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	calculatorv1 "github.com/louisbranch/tally/internal/api/calculator/v1"
	"github.com/louisbranch/tally/internal/services/mcp/domain"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
)

const (
	// serverName identifies this MCP server to clients.
	serverName = "Tally Calculator MCP"
	// serverVersion identifies the MCP server version.
	serverVersion = "0.1.0"
	// sessionCloseTimeout bounds closing the calculator session on shutdown.
	sessionCloseTimeout = 2 * time.Second
)

// TransportKind identifies the MCP transport implementation.
type TransportKind string

const (
	// TransportStdio uses standard input/output for MCP.
	TransportStdio TransportKind = "stdio"
	// TransportHTTP runs MCP over streamable HTTP for remote clients.
	TransportHTTP TransportKind = "http"
)

// Config configures the MCP server.
type Config struct {
	GRPCAddr  string
	Transport TransportKind
	HTTPAddr  string
}

// Server hosts the MCP server.
type Server struct {
	mcpServer *mcp.Server
	conn      *grpc.ClientConn
	sessions  *domain.SessionSource
}

// newServer binds the calculator tools and resources to client. conn, when
// set, is owned by the server and closed with it.
func newServer(client calculatorv1.CalculatorServiceClient, conn *grpc.ClientConn) *Server {
	mcpServer := mcp.NewServer(&mcp.Implementation{Name: serverName, Version: serverVersion}, &mcp.ServerOptions{
		CompletionHandler:  completionHandler,
		SubscribeHandler:   resourceSubscribeHandler,
		UnsubscribeHandler: resourceUnsubscribeHandler,
	})

	sessions := domain.NewSessionSource(client)
	notify := func(ctx context.Context, uri string) {
		if strings.TrimSpace(uri) == "" {
			return
		}
		if err := mcpServer.ResourceUpdated(ctx, &mcp.ResourceUpdatedNotificationParams{URI: uri}); err != nil {
			log.Printf("mcp resource updated notify failed: uri=%s err=%v", uri, err)
		}
	}

	registerCalculatorTools(mcpServer, client, sessions, notify)
	registerHistoryTools(mcpServer, client, sessions, notify)
	registerHistoryResources(mcpServer, client, sessions)

	return &Server{mcpServer: mcpServer, conn: conn, sessions: sessions}
}

// completionHandler handles completion/complete requests with empty results.
func completionHandler(_ context.Context, _ *mcp.CompleteRequest) (*mcp.CompleteResult, error) {
	return &mcp.CompleteResult{
		Completion: mcp.CompletionResultDetails{
			Values: []string{},
		},
	}, nil
}

// resourceSubscribeHandler accepts resource subscriptions with a valid URI.
func resourceSubscribeHandler(_ context.Context, req *mcp.SubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// resourceUnsubscribeHandler accepts resource unsubscriptions with a valid URI.
func resourceUnsubscribeHandler(_ context.Context, req *mcp.UnsubscribeRequest) error {
	if req == nil || req.Params == nil || strings.TrimSpace(req.Params.URI) == "" {
		return fmt.Errorf("resource uri is required")
	}
	return nil
}

// Close ends the calculator session and releases the gRPC connection.
func (s *Server) Close() error {
	if s == nil {
		return nil
	}
	if s.sessions != nil {
		ctx, cancel := context.WithTimeout(context.Background(), sessionCloseTimeout)
		if err := s.sessions.Close(ctx); err != nil {
			log.Printf("close calculator session: %v", err)
		}
		cancel()
	}
	if s.conn == nil {
		return nil
	}
	if err := s.conn.Close(); err != nil {
		return err
	}
	s.conn = nil
	return nil
}
