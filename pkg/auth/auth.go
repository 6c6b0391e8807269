// Package auth verifies bearer tokens and yields the identity they carry.
// Two verifiers exist: a local HS256 JWT manager and a remote verifier that
// delegates to an external identity provider. Both return the same Identity
// so the middleware does not care which one is configured.
package auth

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Identity is what a verified token says about the caller. UserID is the
// local account id when the token carries one; AuthUID is the identity
// provider's uid and is always set for remote tokens.
type Identity struct {
	UserID  primitive.ObjectID `json:"user_id"`
	AuthUID string             `json:"auth_uid"`
	Email   string             `json:"email"`
	Role    string             `json:"role"`
}

// Verifier checks a raw bearer token and returns the identity behind it.
type Verifier interface {
	Verify(ctx context.Context, token string) (*Identity, error)
}
