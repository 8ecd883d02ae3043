// Package api defines the caller-facing types of the processing unit.
//
// The package describes the run parameters accepted by the orchestrator,
// the response and status descriptors it returns, the cache entry shape
// kept for every produced result, and the structured error type shared
// by every layer. It performs no I/O.
//
// Core types:
//   - [RunRequest]: parameters of a single run
//   - [RunResponse]: descriptor returned by a successful run
//   - [CacheEntry]: denormalized snapshot of a produced result
//   - [ResourceDescriptor]: one transformation resource offered by an engine
//   - [Status]: liveness and introspection descriptor
//   - [APIError]: structured error with type, code, param, and message
//
// The JSON Schema for run parameters is available from [ParametersSchema]
// and is enforced by the outer transports through [ValidateParameters].
package api
