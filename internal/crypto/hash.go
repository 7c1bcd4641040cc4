package crypto

import (
	"golang.org/x/crypto/bcrypt"
)

// PasswordCost is the bcrypt work factor for newly created digests.
// The cost is encoded in every digest, so raising it leaves older digests verifiable.
const PasswordCost = 10

// HashPassword hashes a password with bcrypt at PasswordCost.
// Returns the digest in modular crypt format ($2a$10$...).
func HashPassword(password string) (string, error) {
	return hashPasswordCost(password, PasswordCost)
}

func hashPasswordCost(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the digest.
// A malformed digest never matches.
func VerifyPassword(password, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(password)) == nil
}
