package token

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signed(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return raw
}

func TestExpired(t *testing.T) {
	now := time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		token string
		want  bool
	}{
		{"expired", signed(t, jwt.MapClaims{"exp": now.Add(-time.Minute).Unix()}), true},
		{"valid", signed(t, jwt.MapClaims{"exp": now.Add(time.Hour).Unix()}), false},
		{"no exp claim", signed(t, jwt.MapClaims{"sub": "T1"}), false},
		{"opaque", "opaque-session", false},
		{"empty", "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Expired(tc.token, now); got != tc.want {
				t.Errorf("Expired() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExpiresAt(t *testing.T) {
	exp := time.Date(2025, 3, 11, 0, 0, 0, 0, time.UTC)
	got, ok := ExpiresAt(signed(t, jwt.MapClaims{"exp": exp.Unix()}))
	if !ok || !got.Equal(exp) {
		t.Fatalf("ExpiresAt() = %v, %v; want %v", got, ok, exp)
	}
}
