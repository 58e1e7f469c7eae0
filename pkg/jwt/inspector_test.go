package jwt

import (
	"testing"
	"time"

	gojwt "github.com/golang-jwt/jwt/v5"
)

func mintToken(t *testing.T, subject, role string, expiresAt time.Time) string {
	t.Helper()

	claims := Claims{
		Role: role,
		RegisteredClaims: gojwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: gojwt.NewNumericDate(expiresAt),
			IssuedAt:  gojwt.NewNumericDate(time.Now()),
		},
	}
	token := gojwt.NewWithClaims(gojwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("failed to sign token: %v", err)
	}
	return signed
}

func TestInspect(t *testing.T) {
	expiresAt := time.Now().Add(time.Hour)
	tokenString := mintToken(t, "u1", "student", expiresAt)

	claims, err := Inspect(tokenString)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if claims.UserID() != "u1" {
		t.Errorf("UserID() = %q, want %q", claims.UserID(), "u1")
	}
	if claims.Role != "student" {
		t.Errorf("Role = %q, want %q", claims.Role, "student")
	}
	if claims.IsExpired(time.Now()) {
		t.Error("IsExpired() = true for a token expiring in an hour")
	}
}

func TestInspectExpired(t *testing.T) {
	tokenString := mintToken(t, "u1", "student", time.Now().Add(-time.Hour))

	claims, err := Inspect(tokenString)
	if err != nil {
		t.Fatalf("Inspect failed: %v", err)
	}
	if !claims.IsExpired(time.Now()) {
		t.Error("IsExpired() = false for a token that expired an hour ago")
	}
}

func TestInspectMalformed(t *testing.T) {
	tests := []struct {
		name  string
		token string
	}{
		{"empty string", ""},
		{"not a JWT", "not-a-token"},
		{"two segments", "abc.def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Inspect(tt.token); err == nil {
				t.Errorf("Inspect(%q) expected error, got nil", tt.token)
			}
		})
	}
}

func TestIsExpiredWithoutExpClaim(t *testing.T) {
	claims := &Claims{}
	if claims.IsExpired(time.Now()) {
		t.Error("IsExpired() = true for claims without exp")
	}
}
