package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

func mustVerifier(t *testing.T, secret string) *Verifier {
	t.Helper()
	v, err := NewVerifier(secret)
	if err != nil {
		t.Fatalf("NewVerifier() error = %v", err)
	}
	return v
}

func sign(t *testing.T, secret string, claims jwt.Claims, method jwt.SigningMethod) string {
	t.Helper()
	s, err := jwt.NewWithClaims(method, claims).SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("SignedString() error = %v", err)
	}
	return s
}

func TestIssueVerifyRoundTrip(t *testing.T) {
	v := mustVerifier(t, "s3cret")
	token, err := v.Issue("alice", time.Hour, time.Now())
	if err != nil {
		t.Fatalf("Issue() error = %v", err)
	}
	owner, err := v.Verify(token)
	if err != nil || owner != "alice" {
		t.Errorf("Verify() = %q, %v; want alice", owner, err)
	}
}

func TestVerify(t *testing.T) {
	v := mustVerifier(t, "s3cret")
	future := jwt.NewNumericDate(time.Now().Add(time.Hour))
	past := jwt.NewNumericDate(time.Now().Add(-time.Hour))

	tests := []struct {
		name    string
		token   string
		want    string
		wantErr bool
	}{
		{
			name:  "string id claim",
			token: sign(t, "s3cret", jwt.MapClaims{"id": "u-42", "exp": future.Unix()}, jwt.SigningMethodHS256),
			want:  "u-42",
		},
		{
			name:  "numeric id claim",
			token: sign(t, "s3cret", jwt.MapClaims{"id": 42}, jwt.SigningMethodHS256),
			want:  "42",
		},
		{
			name:  "sub fallback",
			token: sign(t, "s3cret", jwt.MapClaims{"sub": "bob"}, jwt.SigningMethodHS256),
			want:  "bob",
		},
		{
			name:  "id preferred over sub",
			token: sign(t, "s3cret", jwt.MapClaims{"id": "a", "sub": "b"}, jwt.SigningMethodHS256),
			want:  "a",
		},
		{
			name:    "wrong secret",
			token:   sign(t, "other", jwt.MapClaims{"id": "x"}, jwt.SigningMethodHS256),
			wantErr: true,
		},
		{
			name:    "expired",
			token:   sign(t, "s3cret", jwt.MapClaims{"id": "x", "exp": past.Unix()}, jwt.SigningMethodHS256),
			wantErr: true,
		},
		{
			name:    "no owner",
			token:   sign(t, "s3cret", jwt.MapClaims{"name": "x"}, jwt.SigningMethodHS256),
			wantErr: true,
		},
		{
			name:    "garbage",
			token:   "not.a.jwt",
			wantErr: true,
		},
		{
			name:    "alg none",
			token:   "eyJhbGciOiJub25lIiwidHlwIjoiSldUIn0.eyJpZCI6IngifQ.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.Verify(tt.token)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Verify() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("Verify() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewVerifierEmptySecret(t *testing.T) {
	if _, err := NewVerifier(""); !errors.Is(err, ErrEmptySecret) {
		t.Errorf("NewVerifier(\"\") error = %v, want ErrEmptySecret", err)
	}
}

func TestIssueRequiresOwner(t *testing.T) {
	v := mustVerifier(t, "s")
	if _, err := v.Issue("  ", time.Hour, time.Now()); !errors.Is(err, ErrMissingOwner) {
		t.Errorf("Issue() error = %v, want ErrMissingOwner", err)
	}
}

func TestBearerToken(t *testing.T) {
	tests := map[string]string{
		"Bearer abc":     "abc",
		"bearer  abc ":   "abc",
		"Basic dXNlcg==": "",
		"abc":            "",
		"":               "",
	}
	for header, want := range tests {
		if got := BearerToken(header); got != want {
			t.Errorf("BearerToken(%q) = %q, want %q", header, got, want)
		}
	}
}
