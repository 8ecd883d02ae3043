// Package transport defines the service contract and middleware chain
// shared by the procunit transports.
//
// The HTTP adapter in pkg/transport/http and the MCP server in
// pkg/transport/mcp both decode caller input into pkg/api types, dispatch
// them to a Service, and encode the results back to the caller.
//
// # Service
//
// Service is the full operation surface of a processing unit: run,
// result lookup, resource and language enumeration, status and
// readiness. *process.Process implements it.
//
// # Middleware
//
// Middleware wraps the Runner half of a Service with cross-cutting
// concerns. The built-in middleware provides panic recovery, request ID
// assignment (X-Request-ID) and structured logging via log/slog.
package transport
