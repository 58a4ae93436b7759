package session

import (
	"errors"

	"github.com/samber/oops"
)

var (
	// ErrIdentityRejected indicates the backend refused an identity token
	ErrIdentityRejected = errors.New("identity rejected")

	// ErrNotStarted indicates Start has not resolved an identity yet
	ErrNotStarted = errors.New("session not started")

	// ErrNotAnonymous indicates registration was attempted from an authenticated session
	ErrNotAnonymous = errors.New("registration requires an anonymous session")
)

// CodeIdentityRejected is the oops code carried by identity failures
const CodeIdentityRejected = "identity_rejected"

func identityRejected(op, userID string, cause error) error {
	b := oops.
		Code(CodeIdentityRejected).
		In("session").
		With("operation", op).
		With("user_id", userID).
		Hint("sign in again or continue anonymously")
	if cause != nil {
		return b.Wrapf(errors.Join(ErrIdentityRejected, cause), "%s failed", op)
	}
	return b.Wrapf(ErrIdentityRejected, "%s failed", op)
}
