package auth

import (
	"strings"
	"testing"
)

func TestHashPassword(t *testing.T) {
	password := "supersecret123"

	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	// The format is $argon2id$v=19$m=65536,t=1,p=4$SALT$HASH
	parts := strings.Split(hash, "$")
	if len(parts) != 6 {
		t.Fatalf("expected 6 parts (including empty start), got %d: %v", len(parts), parts)
	}

	if parts[1] != "argon2id" {
		t.Errorf("expected algo 'argon2id', got %q", parts[1])
	}
	if parts[2] != "v=19" {
		t.Errorf("expected version 'v=19', got %q", parts[2])
	}

	// Hashing the same password twice must produce different salts.
	hash2, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if hash == hash2 {
		t.Error("two hashes of the same password are identical (salt reuse)")
	}
}

func TestVerifyPassword(t *testing.T) {
	password := "supersecret123"
	hash, err := HashPassword(password)
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}

	ok, err := VerifyPassword(hash, password)
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if !ok {
		t.Error("correct password did not verify")
	}

	ok, err = VerifyPassword(hash, "wrong-password")
	if err != nil {
		t.Fatalf("VerifyPassword failed: %v", err)
	}
	if ok {
		t.Error("wrong password verified")
	}

	if _, err := VerifyPassword("not-a-hash", password); err == nil {
		t.Error("expected error for malformed hash")
	}
}
