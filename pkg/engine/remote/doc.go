// Package remote provides an engine that delegates to an external engine
// service over HTTP.
//
// The service protocol:
//
//	POST {base}/v1/process     {"text": "...", "language": "...", "resource": "...", "options": {...}}
//	                           -> raw result bytes
//	GET  {base}/v1/resources   -> {"data": [{"name": "...", "type": "...", ...}]}
//	GET  {base}/v1/languages   -> {"data": ["en-US", ...]}
//
// Non-2xx responses carry {"error": {"message": "..."}} and are mapped to
// engine_error APIErrors.
package remote
