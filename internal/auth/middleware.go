package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	apperrors "github.com/inboxpilot/supportdesk/pkg/util"
)

const principalKey = "auth_principal"

// Principal represents the authenticated caller.
type Principal struct {
	Identity *Identity
	Actor    string
}

// AuthMiddleware validates bearer tokens and loads principals.
type AuthMiddleware struct {
	verifier *Verifier
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(verifier *Verifier) *AuthMiddleware {
	return &AuthMiddleware{verifier: verifier}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	identity, err := m.verifier.Verify(c.UserContext(), c.Get("Authorization"))
	if err != nil {
		return apperrors.NewUnauthorized(unauthorizedReason(err))
	}

	c.Locals(principalKey, &Principal{
		Identity: identity,
		Actor:    ResolveActor(identity),
	})
	return c.Next()
}

// PrincipalFromContext retrieves the authenticated entity.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}

// unauthorizedReason picks the user-visible reason string. Key cache
// trouble is indistinguishable from an untrustworthy token as far as
// the caller is concerned, so it surfaces as 401, never a 5xx.
func unauthorizedReason(err error) string {
	switch {
	case errors.Is(err, ErrMissingToken):
		return "missing token"
	case errors.Is(err, ErrMalformedHeader):
		return "malformed header"
	case errors.Is(err, ErrUnsupportedAlgorithm):
		return "unsupported algorithm"
	case errors.Is(err, ErrInvalidIssuer):
		return "invalid issuer"
	case errors.Is(err, ErrTokenExpired):
		return "token expired"
	case errors.Is(err, ErrKeyNotFound), errors.Is(err, ErrKeyFetchFailed):
		return "token cannot be verified"
	default:
		return "invalid token"
	}
}
