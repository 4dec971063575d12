package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// hashCost stays at the library default; raising it requires a rehash
// migration for existing accounts.
const hashCost = bcrypt.DefaultCost

// HashPassword derives the bcrypt hash stored on the user document.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), hashCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPasswordHash reports whether the plaintext matches the stored hash.
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
