package bank

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
)

// Fingerprint is the stored digest of a caller secret. It is an unsalted
// SHA-256, so it only stands in for an equality check on the secret.
type Fingerprint [sha256.Size]byte

// HashFingerprint digests a plaintext secret.
func HashFingerprint(secret string) Fingerprint {
	return sha256.Sum256([]byte(secret))
}

// Matches reports whether secret digests to f, in constant time.
func (f Fingerprint) Matches(secret string) bool {
	h := HashFingerprint(secret)
	return subtle.ConstantTimeCompare(f[:], h[:]) == 1
}

func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

func equalSecret(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
