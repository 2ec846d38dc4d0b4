// Package service hosts the calculator MCP server over stdio or HTTP and
// forwards tool calls to the calculator gRPC service.
package service
