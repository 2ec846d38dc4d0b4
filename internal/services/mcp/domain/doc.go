// Package domain defines the calculator MCP tools and resources and the
// handlers that forward them to the calculator gRPC API.
package domain
