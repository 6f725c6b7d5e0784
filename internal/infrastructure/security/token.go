package security

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"

	"github.com/samber/oops"
)

// TokenBytes is the entropy of a session token; hex encoding doubles it to
// 64 characters.
const TokenBytes = 32

// TokenGenerator draws session tokens from crypto/rand.
type TokenGenerator struct{}

// NewTokenGenerator creates a TokenGenerator.
func NewTokenGenerator() *TokenGenerator {
	return &TokenGenerator{}
}

// Generate returns a new lowercase hex token.
func (g *TokenGenerator) Generate() (string, error) {
	buf := make([]byte, TokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", oops.Code("SESSION_TOKEN_GENERATE_FAILED").
			With("requested_bytes", TokenBytes).
			Wrap(err)
	}
	return hex.EncodeToString(buf), nil
}

// DigestToken is the form a token takes at rest. Stores key sessions by the
// digest so a leaked table does not hand out live bearer tokens.
func DigestToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}
