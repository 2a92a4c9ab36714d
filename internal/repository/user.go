package repository

import (
	"context"

	"acervo/pkg/model"
)

// Credential pairs a user with its stored password material. It never crosses
// the service boundary.
type Credential struct {
	User         model.User
	PasswordHash []byte
	Salt         []byte
}

// UserStats carries the user-side counters for the admin panel. Active means
// the user has uploaded at least one document.
type UserStats struct {
	Total  int
	Admins int
	Active int
}

// UserRepository defines data access for accounts.
type UserRepository interface {
	// Create inserts a new account with its password material.
	Create(ctx context.Context, cred *Credential) (*model.User, error)

	// FindByID returns a user by its ID.
	FindByID(ctx context.Context, id string) (*model.User, error)

	// FindCredential returns the credential for the given email.
	FindCredential(ctx context.Context, email string) (*Credential, error)

	// List returns users whose name or email contains the search term
	// (case-insensitive), paginated, ordered by creation time descending with
	// id ascending tie-break.
	List(ctx context.Context, search string, pq PageQuery) (*PageResult[model.User], error)

	// UpdateRole sets the user's role and returns the updated row.
	UpdateRole(ctx context.Context, id string, role model.Role) (*model.User, error)

	// Stats returns aggregate account counters.
	Stats(ctx context.Context) (*UserStats, error)
}
