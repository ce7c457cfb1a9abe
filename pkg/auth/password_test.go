package auth

import (
	"strings"
	"testing"
)

func TestHashPassword_Success(t *testing.T) {
	hash, err := HashPassword("Correct-horse-9")
	if err != nil {
		t.Fatalf("HashPassword() = %v, want nil", err)
	}
	if hash == "" || hash == "Correct-horse-9" {
		t.Fatal("hash should be non-empty and different from the input")
	}
	if err := ComparePassword(hash, "Correct-horse-9"); err != nil {
		t.Errorf("ComparePassword with correct password: got %v, want nil", err)
	}
	if err := ComparePassword(hash, "wrong-password"); err == nil {
		t.Error("ComparePassword with wrong password: got nil, want error")
	}
}

func TestHashPassword_Empty(t *testing.T) {
	if _, err := HashPassword(""); err == nil {
		t.Fatal("HashPassword(\"\") = nil, want error")
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "garage4ever", false},
		{"too short", "ab1", true},
		{"too long", strings.Repeat("a1", 80), true},
		{"no digit", "onlyletters", true},
		{"no letter", "1234567890", true},
		{"common", "password123", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr && err == nil {
				t.Errorf("ValidatePassword(%q) = nil, want error", tt.password)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("ValidatePassword(%q) = %v, want nil", tt.password, err)
			}
		})
	}
}
