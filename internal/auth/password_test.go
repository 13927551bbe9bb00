package auth

import "testing"

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("correct horse", 10)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	if hash == "correct horse" {
		t.Fatalf("expected password to be hashed")
	}

	if !VerifyPassword(hash, "correct horse") {
		t.Fatalf("expected match")
	}
	if VerifyPassword(hash, "wrong") {
		t.Fatalf("expected mismatch")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	for _, hash := range []string{"", "not-a-bcrypt-hash", "$2a$xx$garbage"} {
		if VerifyPassword(hash, "anything") {
			t.Fatalf("hash %q: expected false", hash)
		}
	}
}
