package auth

import (
	"context"

	"github.com/google/uuid"
)

// Repository abstracts user persistence.
type Repository interface {
	Create(ctx context.Context, email, name string, role Role, passwordHash string) (User, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	GetByID(ctx context.Context, id uuid.UUID) (User, bool, error)
	GetIdentity(ctx context.Context, provider, providerSubject string) (Identity, bool, error)
	GetIdentityByUser(ctx context.Context, userID uuid.UUID, provider string) (Identity, bool, error)
	UpsertIdentity(ctx context.Context, identity Identity) (Identity, error)
}
