package auth

import (
	"context"
	"crypto/rsa"
	"errors"
	"strings"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
)

const testIssuer = "https://id.example.test"

func signToken(t *testing.T, priv *rsa.PrivateKey, kid string, claims jwt.Claims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	if kid != "" {
		token.Header["kid"] = kid
	}
	signed, err := token.SignedString(priv)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func validClaims() *Identity {
	return &Identity{
		Email: "sam@example.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    testIssuer,
			Subject:   "user-1",
			IssuedAt:  jwt.NewNumericDate(time.Now().Add(-time.Minute)),
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
}

func newTestVerifier(t *testing.T, kid string) (*Verifier, *rsa.PrivateKey) {
	t.Helper()
	priv, jwk := newTestKey(t, kid)
	server := newJWKSServer(t, jwk)
	keys := NewKeySetCache(server.srv.URL, 10*time.Minute, 5*time.Second)
	return NewVerifier(keys, testIssuer, false, ""), priv
}

func TestVerifyValidToken(t *testing.T) {
	verifier, priv := newTestVerifier(t, "k1")
	token := signToken(t, priv, "k1", validClaims())

	for _, raw := range []string{token, "Bearer " + token} {
		identity, err := verifier.Verify(context.Background(), raw)
		if err != nil {
			t.Fatalf("Verify(%q...): %v", raw[:12], err)
		}
		if identity.Email != "sam@example.com" {
			t.Errorf("email = %q, want %q", identity.Email, "sam@example.com")
		}
		if identity.Subject != "user-1" {
			t.Errorf("subject = %q, want %q", identity.Subject, "user-1")
		}
	}
}

func TestVerifyFailures(t *testing.T) {
	verifier, priv := newTestVerifier(t, "k1")
	otherPriv, _ := newTestKey(t, "k1")

	expired := validClaims()
	expired.IssuedAt = jwt.NewNumericDate(time.Now().Add(-2 * time.Hour))
	expired.ExpiresAt = jwt.NewNumericDate(time.Now().Add(-time.Hour))

	wrongIssuer := validClaims()
	wrongIssuer.Issuer = "https://rogue.example.test"

	noExpiry := validClaims()
	noExpiry.ExpiresAt = nil

	hsToken := jwt.NewWithClaims(jwt.SigningMethodHS256, validClaims())
	hsToken.Header["kid"] = "k1"
	hsSigned, err := hsToken.SignedString([]byte("shared-secret"))
	if err != nil {
		t.Fatalf("sign HS256 token: %v", err)
	}

	tampered := signToken(t, priv, "k1", validClaims())
	tampered = tampered[:len(tampered)-3] + "xyz"

	cases := []struct {
		name string
		raw  string
		want error
	}{
		{"empty", "", ErrMissingToken},
		{"bearer only", "Bearer ", ErrMissingToken},
		{"not a token", "garbage", ErrMalformedHeader},
		{"no kid", signToken(t, priv, "", validClaims()), ErrMalformedHeader},
		{"symmetric algorithm", hsSigned, ErrUnsupportedAlgorithm},
		{"unknown kid", signToken(t, priv, "rotated-away", validClaims()), ErrKeyNotFound},
		{"expired", signToken(t, priv, "k1", expired), ErrTokenExpired},
		{"wrong issuer", signToken(t, priv, "k1", wrongIssuer), ErrInvalidIssuer},
		{"missing expiry", signToken(t, priv, "k1", noExpiry), ErrTokenInvalid},
		{"wrong key", signToken(t, otherPriv, "k1", validClaims()), ErrTokenInvalid},
		{"bad signature", tampered, ErrTokenInvalid},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := verifier.Verify(context.Background(), tc.raw)
			if !errors.Is(err, tc.want) {
				t.Fatalf("err = %v, want %v", err, tc.want)
			}
		})
	}
}

func TestVerifyAudienceOptIn(t *testing.T) {
	priv, jwk := newTestKey(t, "k1")
	server := newJWKSServer(t, jwk)
	keys := NewKeySetCache(server.srv.URL, 10*time.Minute, 5*time.Second)
	verifier := NewVerifier(keys, testIssuer, true, "supportdesk-api")

	claims := validClaims()
	claims.Audience = jwt.ClaimStrings{"supportdesk-api"}
	if _, err := verifier.Verify(context.Background(), signToken(t, priv, "k1", claims)); err != nil {
		t.Fatalf("matching audience: %v", err)
	}

	noAud := validClaims()
	if _, err := verifier.Verify(context.Background(), signToken(t, priv, "k1", noAud)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("missing audience err = %v, want ErrTokenInvalid", err)
	}

	wrongAud := validClaims()
	wrongAud.Audience = jwt.ClaimStrings{"another-service"}
	if _, err := verifier.Verify(context.Background(), signToken(t, priv, "k1", wrongAud)); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("wrong audience err = %v, want ErrTokenInvalid", err)
	}
}

func TestVerifyAudienceIgnoredByDefault(t *testing.T) {
	verifier, priv := newTestVerifier(t, "k1")

	claims := validClaims()
	claims.Audience = jwt.ClaimStrings{"authenticated"}
	if _, err := verifier.Verify(context.Background(), signToken(t, priv, "k1", claims)); err != nil {
		t.Fatalf("audience should not be checked: %v", err)
	}
}

func TestVerifyUsesSingleFetchPerKeySet(t *testing.T) {
	priv, jwk := newTestKey(t, "k1")
	server := newJWKSServer(t, jwk)
	keys := NewKeySetCache(server.srv.URL, 10*time.Minute, 5*time.Second)
	verifier := NewVerifier(keys, testIssuer, false, "")

	for i := 0; i < 3; i++ {
		if _, err := verifier.Verify(context.Background(), signToken(t, priv, "k1", validClaims())); err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
	}
	if got := server.fetches.Load(); got != 1 {
		t.Fatalf("fetches = %d, want 1", got)
	}
}

func TestParseHeaderRejectsBadSegments(t *testing.T) {
	cases := []struct {
		name  string
		token string
	}{
		{"two segments", "aGVhZGVy.cGF5bG9hZA"},
		{"invalid base64", "!!!.payload.sig"},
		{"not json", "bm90LWpzb24.payload.sig"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, _, err := parseHeader(tc.token); !errors.Is(err, ErrMalformedHeader) {
				t.Fatalf("err = %v, want ErrMalformedHeader", err)
			}
		})
	}
}

func TestStripBearerPrefix(t *testing.T) {
	verifier, priv := newTestVerifier(t, "k1")
	token := signToken(t, priv, "k1", validClaims())

	if _, err := verifier.Verify(context.Background(), "  Bearer "+token+"  "); err != nil {
		t.Fatalf("padded header value: %v", err)
	}
	if !strings.HasPrefix(token, "eyJ") {
		t.Fatalf("unexpected token encoding: %q", token[:8])
	}
}
