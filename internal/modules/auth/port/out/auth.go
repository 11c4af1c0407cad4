package out

import (
	"context"

	"vecino/internal/modules/auth/domain"
)

// CredentialStore persists a single Session. Load reports ErrNoSession when
// nothing, or only part of a session, is stored.
type CredentialStore interface {
	Save(ctx context.Context, session domain.Session) error
	Load(ctx context.Context) (domain.Session, error)
	Clear(ctx context.Context) error
}

type TokenGateway interface {
	Obtain(ctx context.Context, identifier, secret string) (domain.Session, error)
	Register(ctx context.Context, profile domain.RegistrationProfile) (int, error)
}

// IdentifierChecker validates national identifiers (RUT).
type IdentifierChecker interface {
	Valid(identifier string) bool
}
