// Package storage defines the result cache contract and the sentinel
// errors shared by its implementations.
//
// Cache adapters live in subpackages: memory (default, process-lifetime,
// unbounded unless a maximum size is configured), sqlite (embedded file)
// and postgres (shared database).
package storage
