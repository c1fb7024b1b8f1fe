package hash

// Hash abstracts one-way hashing of secrets.
//
// Implementations may be slow and salted (bcrypt, for passwords) or
// deterministic and keyed (HMAC, for lookup-by-hash of short-lived codes).
type Hash interface {
	// Hash hashes the plaintext and returns the encoded digest.
	Hash(plaintext string) ([]byte, error)
	// Verify returns true when plaintext matches the hashed value.
	Verify(hashed, plaintext string) bool
}
