package ports

// PasswordHasher turns passwords into salted one-way hashes.
type PasswordHasher interface {
	// Hash returns an encoded hash embedding algorithm, cost and a fresh salt.
	Hash(password string) (string, error)
	// Verify reports whether password matches encoded. Malformed or foreign
	// hashes never match.
	Verify(password, encoded string) bool
}

// TokenGenerator produces opaque session tokens.
type TokenGenerator interface {
	Generate() (string, error)
}
