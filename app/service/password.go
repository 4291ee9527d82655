package service

import "golang.org/x/crypto/bcrypt"

// PasswordHasher wraps bcrypt. Each Hash call salts independently, so two
// hashes of the same plaintext differ; Verify compares in constant time.
type PasswordHasher struct {
	cost int
}

func NewPasswordHasher() *PasswordHasher {
	return &PasswordHasher{cost: bcrypt.DefaultCost}
}

func (h *PasswordHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify accepts the stored hash in its textual bcrypt encoding; columns
// written as raw bytes scan to the identical string.
func (h *PasswordHasher) Verify(plaintext, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(plaintext)) == nil
}
