// Package api holds the wire contracts shared by tally services and clients.
//
// calculator/v1 defines the CalculatorService gRPC contract: request and
// response messages, the JSON codec they travel in, and the generated-style
// client and server registration helpers. The MCP adapter dials it; the
// calculator service implements it.
package api
