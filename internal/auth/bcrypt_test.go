package auth

import "testing"

func TestHashPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "" {
		t.Fatal("HashPassword() returned empty hash")
	}
	if hash == "s3cret" {
		t.Fatal("HashPassword() returned the plaintext")
	}
}

func TestHashPasswordDefaultCost(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("s3cret", 0)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !VerifyPassword("s3cret", hash) {
		t.Error("VerifyPassword() = false for matching password")
	}
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("correct horse", 4)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if !VerifyPassword("correct horse", hash) {
		t.Error("VerifyPassword() = false for matching password")
	}
	if VerifyPassword("battery staple", hash) {
		t.Error("VerifyPassword() = true for wrong password")
	}
	if VerifyPassword("correct horse", "") {
		t.Error("VerifyPassword() = true for empty hash")
	}
	if VerifyPassword("correct horse", "not-a-bcrypt-hash") {
		t.Error("VerifyPassword() = true for malformed hash")
	}
}
