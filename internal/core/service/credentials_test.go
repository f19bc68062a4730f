package service

import (
	"strings"
	"testing"
)

func TestHashPassword_SaltIsHashPrefix(t *testing.T) {
	salt, hash, err := hashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("hashPassword returned error: %v", err)
	}
	if len(salt) != bcryptSaltLen {
		t.Fatalf("expected %d-byte salt, got %d", bcryptSaltLen, len(salt))
	}
	if !strings.HasPrefix(hash, salt) {
		t.Fatalf("salt must be the prefix of the hash it produced")
	}
	if !strings.HasPrefix(salt, "$2a$10$") {
		t.Fatalf("expected cost-10 bcrypt parameters, got %q", salt)
	}
}

func TestHashPassword_FreshSaltPerInvocation(t *testing.T) {
	salt1, hash1, err := hashPassword("same input")
	if err != nil {
		t.Fatalf("hashPassword returned error: %v", err)
	}
	salt2, hash2, err := hashPassword("same input")
	if err != nil {
		t.Fatalf("hashPassword returned error: %v", err)
	}
	if salt1 == salt2 || hash1 == hash2 {
		t.Fatalf("repeated hashing of the same input must produce fresh salts")
	}
}

func TestVerifyPassword(t *testing.T) {
	_, hash, err := hashPassword("open sesame")
	if err != nil {
		t.Fatalf("hashPassword returned error: %v", err)
	}
	if err := VerifyPassword(hash, "open sesame"); err != nil {
		t.Fatalf("verification of the original plaintext failed: %v", err)
	}
	if err := VerifyPassword(hash, "open says me"); err == nil {
		t.Fatalf("verification must fail for a different plaintext")
	}
}
