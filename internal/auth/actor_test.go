package auth

import (
	"testing"

	jwt "github.com/golang-jwt/jwt/v5"
)

func TestResolveActor(t *testing.T) {
	cases := []struct {
		name     string
		identity *Identity
		want     string
	}{
		{
			name:     "email preferred",
			identity: &Identity{Email: "sam@example.com", RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}},
			want:     "agent:sam@example.com",
		},
		{
			name:     "subject fallback",
			identity: &Identity{RegisteredClaims: jwt.RegisteredClaims{Subject: "user-1"}},
			want:     "agent:user-1",
		},
		{
			name:     "no claims",
			identity: &Identity{},
			want:     ActorUnknown,
		},
		{
			name:     "nil identity",
			identity: nil,
			want:     ActorUnknown,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ResolveActor(tc.identity); got != tc.want {
				t.Fatalf("ResolveActor() = %q, want %q", got, tc.want)
			}
		})
	}
}
