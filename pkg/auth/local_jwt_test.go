package auth

import (
	"strings"
	"testing"
	"time"
)

func newTestAuth(t *testing.T) *LocalJWTAuth {
	t.Helper()
	a, err := NewLocalJWTAuth("test-secret", time.Minute, time.Hour)
	if err != nil {
		t.Fatalf("NewLocalJWTAuth: %v", err)
	}
	return a
}

func TestGenerateAndVerifyTokens(t *testing.T) {
	a := newTestAuth(t)

	access, refresh, err := a.GenerateTokens("u1", "u1@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}

	user, err := a.VerifyAccessToken(access)
	if err != nil {
		t.Fatalf("VerifyAccessToken: %v", err)
	}
	if user.ID != "u1" || user.Email != "u1@example.com" {
		t.Errorf("unexpected identity: %+v", user)
	}

	claims, err := a.VerifyRefreshToken(refresh)
	if err != nil {
		t.Fatalf("VerifyRefreshToken: %v", err)
	}
	if claims.TokenID == "" {
		t.Error("refresh token has no jti")
	}
}

func TestAccessTokenIsNotARefreshToken(t *testing.T) {
	a := newTestAuth(t)

	access, _, err := a.GenerateTokens("u1", "u1@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	if _, err := a.VerifyRefreshToken(access); err == nil {
		t.Error("access token accepted as refresh token")
	}
}

func TestVerifyRejectsWrongSecret(t *testing.T) {
	a := newTestAuth(t)
	other, _ := NewLocalJWTAuth("different-secret", time.Minute, time.Hour)

	access, _, err := a.GenerateTokens("u1", "u1@example.com", "user")
	if err != nil {
		t.Fatalf("GenerateTokens: %v", err)
	}
	if _, err := other.VerifyAccessToken(access); err == nil {
		t.Error("token verified with the wrong secret")
	}
}

func TestPasswordHashRoundTrip(t *testing.T) {
	a := newTestAuth(t)

	hash, err := a.HashPassword("Sup3r$ecret")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "argon2id$") {
		t.Fatalf("unexpected hash format: %s", hash)
	}

	ok, err := a.VerifyPassword(hash, "Sup3r$ecret")
	if err != nil || !ok {
		t.Errorf("correct password rejected: ok=%v err=%v", ok, err)
	}
	ok, err = a.VerifyPassword(hash, "wrong-password")
	if err != nil {
		t.Errorf("verify error on wrong password: %v", err)
	}
	if ok {
		t.Error("wrong password accepted")
	}
}

func TestValidatePassword(t *testing.T) {
	cases := []struct {
		password string
		wantErr  bool
	}{
		{"Sup3r$ecret", false},
		{"short1$A", false},
		{"sh0r$A", true},          // too short
		{"alllowercase1$", true},  // no uppercase
		{"ALLUPPERCASE1$", true},  // no lowercase
		{"NoNumbersHere$", true},  // no digit
		{"NoSpecials123A", true},  // no special character
	}
	for _, tc := range cases {
		err := ValidatePassword(tc.password)
		if (err != nil) != tc.wantErr {
			t.Errorf("ValidatePassword(%q) = %v, wantErr %v", tc.password, err, tc.wantErr)
		}
	}
}
