package service

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestCheckPassword(t *testing.T) {
	s := &AuthService{}

	hash, err := bcrypt.GenerateFromPassword([]byte("secret123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}

	tests := []struct {
		name     string
		stored   string
		password string
		wantErr  bool
	}{
		{"bcrypt match", string(hash), "secret123", false},
		{"bcrypt mismatch", string(hash), "wrong", true},
		{"legacy plaintext match", "secret123", "secret123", false},
		{"legacy plaintext mismatch", "secret123", "wrong", true},
		// A plaintext password that merely looks like a hash prefix must
		// still go through bcrypt comparison and fail.
		{"hash-like plaintext", "$2a$not-a-real-hash", "$2a$not-a-real-hash", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.CheckPassword(tt.stored, tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("CheckPassword(%q, %q) error = %v, wantErr %v", tt.stored, tt.password, err, tt.wantErr)
			}
		})
	}
}
