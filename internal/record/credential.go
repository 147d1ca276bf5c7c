package record

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// Credential is a salted bcrypt hash of an account secret.
//
// Only the hash is ever stored. The wire protocol still carries the
// plaintext secret on login; it is hashed or compared here and
// discarded.
type Credential string

// NewCredential hashes a plaintext secret with bcrypt at default cost.
func NewCredential(plaintext string) (Credential, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash credential: %w", err)
	}
	return Credential(hash), nil
}

// Verify reports whether candidate matches the stored hash.
// bcrypt's comparison is constant-time over the hash contents.
func (c Credential) Verify(candidate string) bool {
	return bcrypt.CompareHashAndPassword([]byte(c), []byte(candidate)) == nil
}
