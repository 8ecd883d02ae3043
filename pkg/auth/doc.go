// Package auth provides pluggable authentication for the procunit HTTP
// and MCP endpoints.
//
// Authentication uses a chain-of-responsibility pattern with three-outcome
// voting: each authenticator returns Yes (identity found), No (credentials
// invalid), or Abstain (can't handle). A configurable default decides
// when all authenticators abstain, so auth.type "none" is simply an empty
// chain defaulting to Yes.
//
// Auth is implemented as HTTP middleware, keeping it decoupled from the
// processing pipeline. Authenticated identities are stored in the request
// context and an optional per-subject rate limiter runs after
// authentication.
package auth
