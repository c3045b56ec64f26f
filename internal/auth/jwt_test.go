package auth

import (
	"testing"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateToken(secret, 42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := ValidateToken(secret, token)
	if err != nil {
		t.Fatalf("validate: %v", err)
	}
	if userID != 42 {
		t.Errorf("user id: got %d, want 42", userID)
	}
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := GenerateToken([]byte("secret-a"), 42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	if _, err := ValidateToken([]byte("secret-b"), token); err == nil {
		t.Fatal("token signed with another secret must not validate")
	}
}

func TestValidateRejectsGarbage(t *testing.T) {
	for _, tokenString := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := ValidateToken([]byte("secret"), tokenString); err == nil {
			t.Errorf("garbage token %q must not validate", tokenString)
		}
	}
}
