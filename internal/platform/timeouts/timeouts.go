// Package timeouts defines timeout constants shared across tally services.
package timeouts

import "time"

// GRPCDial caps the wait for a gRPC peer to connect and report healthy.
const GRPCDial = 5 * time.Second

// GRPCRequest caps a single gRPC request made on behalf of a client.
const GRPCRequest = 5 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long an HTTP server waits for in-flight requests
// during graceful shutdown.
const Shutdown = 5 * time.Second
