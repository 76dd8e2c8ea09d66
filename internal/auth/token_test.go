package auth

import (
	"testing"
	"time"
)

var secret = []byte("test-secret")

func TestIssueAndVerifyToken(t *testing.T) {
	token, err := IssueToken(secret, 42, time.Now())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}

	userID, err := VerifyToken(secret, token)
	if err != nil {
		t.Fatalf("VerifyToken: %v", err)
	}
	if userID != 42 {
		t.Errorf("userID = %d, want 42", userID)
	}
}

func TestVerifyTokenWrongSecret(t *testing.T) {
	token, err := IssueToken(secret, 42, time.Now())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := VerifyToken([]byte("other-secret"), token); err == nil {
		t.Error("expected verification failure with wrong secret")
	}
}

func TestVerifyTokenExpired(t *testing.T) {
	token, err := IssueToken(secret, 42, time.Now().Add(-2*TokenTTL))
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	if _, err := VerifyToken(secret, token); err == nil {
		t.Error("expected verification failure for expired token")
	}
}

func TestVerifyTokenGarbage(t *testing.T) {
	if _, err := VerifyToken(secret, "not-a-token"); err == nil {
		t.Error("expected verification failure for malformed token")
	}
}
