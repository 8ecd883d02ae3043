// Package apikey provides an API key authenticator that validates
// bearer tokens or X-API-Key headers against a static key store using
// SHA-256 hashing and constant-time comparison.
package apikey

import (
	"context"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"slices"
	"strings"

	"github.com/rhuss/procunit/pkg/auth"
)

// HeaderName is the alternative header carrying a raw API key.
const HeaderName = "X-API-Key"

// Entry is the configuration format for one API key.
type Entry struct {
	Key     string
	Subject string
	Scopes  []string
}

type keyEntry struct {
	hash    [32]byte
	subject string
	scopes  []string
}

// Authenticator validates API keys against a static key store.
type Authenticator struct {
	keys []keyEntry
}

// New creates an API key authenticator. Keys are hashed immediately;
// plaintext keys are not stored. Entries with an empty key are skipped.
func New(entries []Entry) *Authenticator {
	a := &Authenticator{}
	for _, e := range entries {
		if e.Key == "" {
			continue
		}
		subject := e.Subject
		if subject == "" {
			subject = "apikey-" + shortHash(e.Key)
		}
		a.keys = append(a.keys, keyEntry{
			hash:    sha256.Sum256([]byte(e.Key)),
			subject: subject,
			scopes:  slices.Clone(e.Scopes),
		})
	}
	return a
}

// Len returns the number of usable keys.
func (a *Authenticator) Len() int {
	return len(a.keys)
}

// Authenticate looks for a key in the X-API-Key header, then in an
// "Authorization: Bearer" header. Returns Abstain if neither is present,
// No if a key is present but unknown, and Yes with the key's identity
// otherwise.
func (a *Authenticator) Authenticate(_ context.Context, r *http.Request) auth.AuthResult {
	key := strings.TrimSpace(r.Header.Get(HeaderName))
	if key == "" {
		token, ok := auth.BearerToken(r)
		if !ok {
			return auth.AuthResult{Decision: auth.Abstain}
		}
		key = token
	}
	if key == "" {
		return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
	}

	sum := sha256.Sum256([]byte(key))
	for _, entry := range a.keys {
		if subtle.ConstantTimeCompare(sum[:], entry.hash[:]) == 1 {
			return auth.AuthResult{
				Decision: auth.Yes,
				Identity: &auth.Identity{
					Subject: entry.subject,
					Method:  "apikey",
					Scopes:  slices.Clone(entry.scopes),
				},
			}
		}
	}

	return auth.AuthResult{Decision: auth.No, Err: auth.ErrUnauthenticated}
}

// shortHash returns the first 8 hex characters of the key's SHA-256, used
// to name keys configured without a subject.
func shortHash(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}
