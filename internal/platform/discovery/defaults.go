// Package discovery centralizes the default addresses of tally services.
package discovery

import (
	"net"
	"strconv"
	"strings"
)

const (
	// ServiceCalculator is the calculator gRPC service identity.
	ServiceCalculator = "calculator"
	// ServiceMCP is the MCP HTTP service identity.
	ServiceMCP = "mcp"
	// ServiceWeb is the browser keypad HTTP service identity.
	ServiceWeb = "web"
)

// defaultHost keeps services on loopback unless configured otherwise.
const defaultHost = "localhost"

var grpcPorts = map[string]int{
	ServiceCalculator: 8090,
}

var httpPorts = map[string]int{
	ServiceMCP: 8081,
	ServiceWeb: 8086,
}

// DefaultGRPCAddr returns the default gRPC address for a service, or "" when
// the service has none.
func DefaultGRPCAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), grpcPorts)
}

// DefaultHTTPAddr returns the default HTTP address for a service, or "" when
// the service has none.
func DefaultHTTPAddr(service string) string {
	return defaultAddr(strings.TrimSpace(service), httpPorts)
}

// DefaultGRPCPort returns the default gRPC port for a service, or 0.
func DefaultGRPCPort(service string) int {
	return grpcPorts[strings.TrimSpace(service)]
}

// OrDefaultGRPCAddr returns value when set, otherwise the service default.
func OrDefaultGRPCAddr(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return DefaultGRPCAddr(service)
}

// OrDefaultHTTPAddr returns value when set, otherwise the service default.
func OrDefaultHTTPAddr(value, service string) string {
	value = strings.TrimSpace(value)
	if value != "" {
		return value
	}
	return DefaultHTTPAddr(service)
}

func defaultAddr(service string, ports map[string]int) string {
	port, ok := ports[service]
	if !ok || port <= 0 {
		return ""
	}
	return net.JoinHostPort(defaultHost, strconv.Itoa(port))
}
