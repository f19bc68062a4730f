package service

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt output layout: "$2a$10$" (7 bytes of version + cost) followed by
// 22 base64 salt characters, then the 31-character derived key.
const bcryptSaltLen = 29

// hashPassword derives a fresh random salt and a salted one-way hash from
// the plaintext, at cost 10. The returned salt is the bcrypt parameter
// prefix of the hash, so the two can never drift apart. The plaintext is
// never logged and never stored.
func hashPassword(password string) (salt, hash string, err error) {
	b, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", "", fmt.Errorf("hash password: %w", err)
	}
	h := string(b)
	if len(h) < bcryptSaltLen {
		return "", "", fmt.Errorf("hash password: malformed bcrypt output")
	}
	return h[:bcryptSaltLen], h, nil
}

// VerifyPassword re-derives the hash from the stored value's embedded salt
// and compares it to the stored hash in constant time.
func VerifyPassword(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
