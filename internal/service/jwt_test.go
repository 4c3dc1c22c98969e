package service

import "testing"

func initTestJWT(t *testing.T) {
	t.Helper()
	t.Setenv("JWT_SECRET", "test-secret")
	InitJWT()
}

func TestJWT_RoundTrip(t *testing.T) {
	initTestJWT(t)

	token, err := GenerateJWT(42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	userID, err := ParseJWT(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if userID != 42 {
		t.Fatalf("user id = %d, want 42", userID)
	}
}

func TestJWT_InvalidToken(t *testing.T) {
	initTestJWT(t)

	for _, bad := range []string{"", "garbage", "a.b.c"} {
		if _, err := ParseJWT(bad); err == nil {
			t.Fatalf("expected error for %q", bad)
		}
	}
}

func TestJWT_TamperedToken(t *testing.T) {
	initTestJWT(t)

	token, err := GenerateJWT(42)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	tampered := token[:len(token)-2] + "xx"
	if _, err := ParseJWT(tampered); err == nil {
		t.Fatalf("expected tampered token to be rejected")
	}
}
