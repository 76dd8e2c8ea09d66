package auth

import (
	"context"
	"testing"
)

func TestWithAuthAndFromContext(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: 42, Plan: "premium", Entitled: true})

	ac, ok := FromContext(ctx)
	if !ok {
		t.Fatal("expected auth context to be present")
	}
	if ac.UserID != 42 {
		t.Errorf("UserID = %d, want 42", ac.UserID)
	}
	if ac.Plan != "premium" {
		t.Errorf("Plan = %q, want %q", ac.Plan, "premium")
	}
	if !ac.Entitled {
		t.Error("Entitled = false, want true")
	}
}

func TestFromContextMissing(t *testing.T) {
	_, ok := FromContext(context.Background())
	if ok {
		t.Error("expected no auth context on empty context")
	}
}

func TestUserID(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: 7})
	if got := UserID(ctx); got != 7 {
		t.Errorf("UserID = %d, want 7", got)
	}
}

func TestUserIDMissing(t *testing.T) {
	if got := UserID(context.Background()); got != 0 {
		t.Errorf("UserID = %d, want 0", got)
	}
}

func TestEntitled(t *testing.T) {
	ctx := WithAuth(context.Background(), AuthContext{UserID: 7, Entitled: true})
	if !Entitled(ctx) {
		t.Error("Entitled = false, want true")
	}
}

func TestEntitledMissing(t *testing.T) {
	if Entitled(context.Background()) {
		t.Error("Entitled = true on empty context, want false")
	}
}
