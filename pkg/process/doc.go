// Package process implements the orchestrator of the processing unit.
//
// A Process owns one engine and one result cache. Run validates the
// request, calls the engine, wraps the bytes in a result.Package,
// optionally saves it to disk, caches a snapshot and returns the
// response. The engine is chosen by name from an engine.Registry at
// construction time; the cache is in-memory unless one is supplied.
//
// A Process is safe for concurrent use. Engine calls are never
// serialized by the orchestrator.
package process
