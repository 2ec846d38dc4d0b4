// Package server wires the calculator runtime and gRPC lifecycle.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"

	calculatorv1 "github.com/louisbranch/tally/internal/api/calculator/v1"
	"github.com/louisbranch/tally/internal/platform/config"
	platformgrpc "github.com/louisbranch/tally/internal/platform/grpc"
	grpcmeta "github.com/louisbranch/tally/internal/platform/grpc/metadata"
	"github.com/louisbranch/tally/internal/platform/metrics"
	"github.com/louisbranch/tally/internal/platform/timeouts"
	calculatorservice "github.com/louisbranch/tally/internal/services/calculator/api/grpc/calculator"
	"github.com/louisbranch/tally/internal/services/calculator/storage/memory"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	grpc_health_v1 "google.golang.org/grpc/health/grpc_health_v1"
)

type serverEnv struct {
	MetricsAddr string        `env:"TALLY_CALCULATOR_METRICS_ADDR"`
	SessionTTL  time.Duration `env:"TALLY_CALCULATOR_SESSION_TTL" envDefault:"30m"`
}

func loadServerEnv() (serverEnv, error) {
	var cfg serverEnv
	if err := config.ParseEnv(&cfg); err != nil {
		return serverEnv{}, err
	}
	cfg.MetricsAddr = strings.TrimSpace(cfg.MetricsAddr)
	return cfg, nil
}

// Server hosts the calculator gRPC API and its session lifecycle.
type Server struct {
	listener    net.Listener
	grpcServer  *grpc.Server
	health      *health.Server
	service     *calculatorservice.Service
	metrics     *metrics.Calculator
	metricsHTTP *http.Server
	sessionTTL  time.Duration
}

// New creates a configured calculator server listening on the provided port.
func New(port int) (*Server, error) {
	return NewWithAddr(fmt.Sprintf(":%d", port))
}

// NewWithAddr creates a configured calculator server for the provided address.
func NewWithAddr(addr string) (*Server, error) {
	env, err := loadServerEnv()
	if err != nil {
		return nil, err
	}
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("listen on %s: %w", addr, err)
	}

	collectors := metrics.New()
	apiService := calculatorservice.NewService(memory.NewStore(),
		calculatorservice.WithObserver(collectors),
		calculatorservice.WithSessionGauge(collectors),
	)

	opts := append(platformgrpc.DefaultServerOptions(),
		grpc.ChainUnaryInterceptor(grpcmeta.UnaryServerInterceptor(nil)),
	)
	grpcServer := grpc.NewServer(opts...)
	healthServer := health.NewServer()
	calculatorv1.RegisterCalculatorServiceServer(grpcServer, apiService)
	grpc_health_v1.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", grpc_health_v1.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(calculatorv1.ServiceName, grpc_health_v1.HealthCheckResponse_SERVING)

	server := &Server{
		listener:   listener,
		grpcServer: grpcServer,
		health:     healthServer,
		service:    apiService,
		metrics:    collectors,
		sessionTTL: env.SessionTTL,
	}
	if env.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", collectors.Handler())
		server.metricsHTTP = &http.Server{
			Addr:              env.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: timeouts.ReadHeader,
		}
	}
	return server, nil
}

// Addr returns the listener address for the server.
func (s *Server) Addr() string {
	if s == nil || s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Run creates and serves a calculator server until context cancellation.
func Run(ctx context.Context, port int) error {
	server, err := New(port)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// RunWithAddr creates and serves a calculator server on addr until context
// cancellation.
func RunWithAddr(ctx context.Context, addr string) error {
	server, err := NewWithAddr(addr)
	if err != nil {
		return err
	}
	return server.Serve(ctx)
}

// Serve starts the gRPC server until context cancellation.
func (s *Server) Serve(ctx context.Context) error {
	if s == nil {
		return errors.New("server is nil")
	}
	if ctx == nil {
		ctx = context.Background()
	}
	defer s.Close()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	if s.sessionTTL > 0 {
		go s.expireSessions(runCtx)
	}
	if s.metricsHTTP != nil {
		go func() {
			log.Printf("calculator metrics listening at %s", s.metricsHTTP.Addr)
			if err := s.metricsHTTP.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("serve metrics: %v", err)
			}
		}()
	}

	log.Printf("calculator server listening at %v", s.listener.Addr())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- s.grpcServer.Serve(s.listener)
	}()

	select {
	case <-ctx.Done():
		if s.health != nil {
			s.health.Shutdown()
		}
		s.grpcServer.GracefulStop()
		return serveResult(<-serveErr)
	case err := <-serveErr:
		return serveResult(err)
	}
}

// Close releases calculator server resources.
func (s *Server) Close() {
	if s == nil {
		return
	}
	if s.health != nil {
		s.health.Shutdown()
	}
	if s.grpcServer != nil {
		s.grpcServer.Stop()
	}
	if s.listener != nil {
		_ = s.listener.Close()
	}
	if s.metricsHTTP != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeouts.Shutdown)
		defer cancel()
		if err := s.metricsHTTP.Shutdown(shutdownCtx); err != nil {
			log.Printf("close metrics server: %v", err)
		}
	}
}

// expireSessions closes idle sessions every quarter TTL.
func (s *Server) expireSessions(ctx context.Context) {
	ticker := time.NewTicker(max(s.sessionTTL/4, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			removed, err := s.service.ExpireIdle(ctx, now.Add(-s.sessionTTL))
			if err != nil {
				log.Printf("expire sessions: %v", err)
				continue
			}
			if removed > 0 {
				log.Printf("expired %d idle sessions", removed)
			}
		}
	}
}

func serveResult(err error) error {
	if err == nil || errors.Is(err, grpc.ErrServerStopped) {
		return nil
	}
	return fmt.Errorf("serve gRPC: %w", err)
}
