package api

import (
	"crypto/rand"
	"math/big"
	"regexp"
)

const (
	idLength = 24
	charset  = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

	// ResultIDPrefix is prepended to every result identifier.
	ResultIDPrefix = "result-"
)

var resultIDPattern = regexp.MustCompile(`^result-[a-zA-Z0-9]{24}$`)

// NewID generates a unique identifier made of prefix followed by 24
// cryptographically random alphanumeric characters.
func NewID(prefix string) string {
	return prefix + randomAlphanumeric(idLength)
}

// NewResultID generates a new result ID with the "result-" prefix.
func NewResultID() string {
	return NewID(ResultIDPrefix)
}

// ValidateResultID checks whether the given string is a valid result ID
// (matches "result-" + 24 alphanumeric characters).
func ValidateResultID(id string) bool {
	return resultIDPattern.MatchString(id)
}

func randomAlphanumeric(n int) string {
	max := big.NewInt(int64(len(charset)))
	b := make([]byte, n)
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			panic("crypto/rand failed: " + err.Error())
		}
		b[i] = charset[idx.Int64()]
	}
	return string(b)
}
