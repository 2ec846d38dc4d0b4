package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	calculatorv1 "github.com/louisbranch/tally/internal/api/calculator/v1"
	"github.com/louisbranch/tally/internal/platform/discovery"
	platformgrpc "github.com/louisbranch/tally/internal/platform/grpc"
	"github.com/louisbranch/tally/internal/platform/timeouts"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"google.golang.org/grpc"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

// healthCheckInterval spaces background calculator health checks.
const healthCheckInterval = 30 * time.Second

// Run is the service entrypoint for MCP and blocks until context cancellation.
func Run(ctx context.Context, cfg Config) error {
	if cfg.Transport == "" {
		cfg.Transport = TransportStdio
	}

	switch cfg.Transport {
	case TransportStdio:
		return runWithTransport(ctx, cfg.GRPCAddr, &mcp.StdioTransport{})
	case TransportHTTP:
		return runWithHTTPTransport(ctx, cfg)
	default:
		return fmt.Errorf("transport %q is not supported", cfg.Transport)
	}
}

// runWithTransport creates a server and serves it over the provided transport.
func runWithTransport(ctx context.Context, grpcAddr string, transport mcp.Transport) error {
	conn, err := dialCalculatorGRPC(ctx, grpcAddress(grpcAddr))
	if err != nil {
		return err
	}
	server := newServer(calculatorv1.NewCalculatorServiceClient(conn), conn)
	return server.serveWithTransport(ctx, transport)
}

// runWithHTTPTransport creates a server and serves it over streamable HTTP.
func runWithHTTPTransport(ctx context.Context, cfg Config) error {
	httpAddr := discovery.OrDefaultHTTPAddr(cfg.HTTPAddr, discovery.ServiceMCP)

	conn, err := dialCalculatorGRPC(ctx, grpcAddress(cfg.GRPCAddr))
	if err != nil {
		return err
	}
	server := newServer(calculatorv1.NewCalculatorServiceClient(conn), conn)
	defer server.Close()

	healthCtx, healthCancel := context.WithCancel(ctx)
	defer healthCancel()
	go server.monitorHealth(healthCtx)

	transport, err := NewHTTPTransport(httpAddr, server.mcpServer)
	if err != nil {
		return err
	}
	return transport.Serve(ctx)
}

// serveWithTransport runs the MCP server on transport, then closes the
// server on the same exit path for every transport.
func (s *Server) serveWithTransport(ctx context.Context, transport mcp.Transport) error {
	if s == nil || s.mcpServer == nil {
		return fmt.Errorf("MCP server is not configured")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	err := s.mcpServer.Run(ctx, transport)
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		err = nil
	}
	closeErr := s.Close()
	if closeErr != nil {
		if err == nil {
			return fmt.Errorf("close gRPC connection: %w", closeErr)
		}
		return fmt.Errorf("serve MCP: %v; close gRPC connection: %w", err, closeErr)
	}
	if err != nil {
		return fmt.Errorf("serve MCP: %w", err)
	}
	return nil
}

// monitorHealth periodically checks the calculator connection and logs
// failures without stopping the server.
func (s *Server) monitorHealth(ctx context.Context) {
	ticker := time.NewTicker(healthCheckInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if s.conn == nil {
				log.Printf("gRPC connection is nil, health check skipped")
				continue
			}

			healthClient := grpc_health_v1.NewHealthClient(s.conn)
			callCtx, cancel := context.WithTimeout(ctx, timeouts.GRPCRequest)
			response, err := healthClient.Check(callCtx, &grpc_health_v1.HealthCheckRequest{Service: ""})
			cancel()

			if err != nil {
				log.Printf("calculator health check failed: %v", err)
			} else if response.GetStatus() != grpc_health_v1.HealthCheckResponse_SERVING {
				log.Printf("calculator health check status: %s", response.GetStatus().String())
			}
		}
	}
}

func dialCalculatorGRPC(ctx context.Context, addr string) (*grpc.ClientConn, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	logf := func(format string, args ...any) {
		log.Printf("calculator %s", fmt.Sprintf(format, args...))
	}
	conn, err := platformgrpc.DialWithHealth(ctx, addr, timeouts.GRPCDial, logf)
	if err != nil {
		var dialErr *platformgrpc.DialError
		if errors.As(err, &dialErr) {
			if dialErr.Stage == platformgrpc.DialStageConnect {
				return nil, fmt.Errorf("connect to calculator server at %s: %w", addr, dialErr.Err)
			}
			return nil, dialErr.Err
		}
		return nil, err
	}
	return conn, nil
}

// grpcAddress falls back to the local calculator address when addr is blank.
func grpcAddress(addr string) string {
	return discovery.OrDefaultGRPCAddr(addr, discovery.ServiceCalculator)
}
