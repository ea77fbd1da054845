package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"strings"

	jwt "github.com/golang-jwt/jwt/v5"
)

// Verification failures, kept distinct so callers can report expiry
// separately from tampering or provider trouble.
var (
	ErrMissingToken         = errors.New("missing token")
	ErrMalformedHeader      = errors.New("malformed header")
	ErrUnsupportedAlgorithm = errors.New("unsupported algorithm")
	ErrInvalidIssuer        = errors.New("invalid issuer")
	ErrTokenExpired         = errors.New("token expired")
	ErrTokenInvalid         = errors.New("invalid token")
)

// Only the asymmetric schemes published by the external issuer are
// accepted. Trusting the header-declared algorithm is safe here because
// the public key always comes from the issuer's key-set endpoint, never
// from the token itself.
var acceptedAlgorithms = []string{"RS256", "RS384", "RS512", "ES256", "ES384", "ES512"}

// Identity is the decoded claim set of a verified token.
type Identity struct {
	Email string `json:"email"`
	jwt.RegisteredClaims
}

// Verifier validates bearer tokens issued by the external identity
// provider against its published signing keys.
type Verifier struct {
	keys          *KeySetCache
	issuer        string
	checkAudience bool
	audience      string
}

// NewVerifier builds a verifier for the given issuer. The audience
// claim is not checked unless checkAudience is set; this mirrors the
// issuer's default token shape where aud carries no authorization
// meaning for this service.
func NewVerifier(keys *KeySetCache, issuer string, checkAudience bool, audience string) *Verifier {
	return &Verifier{keys: keys, issuer: issuer, checkAudience: checkAudience, audience: audience}
}

// Verify validates the token's signature, issuer and expiry and returns
// the caller identity. The raw value may still carry a "Bearer" prefix.
func (v *Verifier) Verify(ctx context.Context, raw string) (*Identity, error) {
	token := strings.TrimSpace(raw)
	if after, found := strings.CutPrefix(token, "Bearer"); found {
		token = strings.TrimSpace(after)
	}
	if token == "" {
		return nil, ErrMissingToken
	}

	alg, kid, err := parseHeader(token)
	if err != nil {
		return nil, err
	}
	if !algorithmAccepted(alg) {
		return nil, ErrUnsupportedAlgorithm
	}

	key, err := v.keys.ResolveKey(ctx, kid)
	if err != nil {
		return nil, err
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods(acceptedAlgorithms),
		jwt.WithIssuer(v.issuer),
		jwt.WithExpirationRequired(),
	}
	if v.checkAudience {
		opts = append(opts, jwt.WithAudience(v.audience))
	}

	identity := &Identity{}
	parsed, err := jwt.NewParser(opts...).ParseWithClaims(token, identity, func(*jwt.Token) (any, error) {
		return key.Key, nil
	})
	if err != nil {
		return nil, classify(err)
	}
	if !parsed.Valid {
		return nil, ErrTokenInvalid
	}
	return identity, nil
}

// parseHeader decodes the unverified token header and extracts the
// declared algorithm and key id. Nothing is trusted at this point; the
// header only tells us which published key to verify against.
func parseHeader(token string) (alg, kid string, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return "", "", ErrMalformedHeader
	}
	decoded, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return "", "", ErrMalformedHeader
	}
	var header struct {
		Alg string `json:"alg"`
		Kid string `json:"kid"`
	}
	if err := json.Unmarshal(decoded, &header); err != nil {
		return "", "", ErrMalformedHeader
	}
	if header.Alg == "" || header.Kid == "" {
		return "", "", ErrMalformedHeader
	}
	return header.Alg, header.Kid, nil
}

func algorithmAccepted(alg string) bool {
	for _, candidate := range acceptedAlgorithms {
		if candidate == alg {
			return true
		}
	}
	return false
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrTokenExpired
	case errors.Is(err, jwt.ErrTokenInvalidIssuer):
		return ErrInvalidIssuer
	default:
		return ErrTokenInvalid
	}
}
