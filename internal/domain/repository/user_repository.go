package repository

import (
	"context"

	"github.com/oksasatya/go-realestate-listings/internal/domain/entity"
)

// UserRepository defines persistence for users. Create is the only way to
// insert a user and always writes the profile in the same transaction.
type UserRepository interface {
	Create(ctx context.Context, acc *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.User, error)
	GetByUsername(ctx context.Context, username string) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	GetAccount(ctx context.Context, id string) (*entity.Account, error)
	Update(ctx context.Context, u *entity.User) error
	UpdatePassword(ctx context.Context, id, hash string) error
	Delete(ctx context.Context, id string) error
}

// ProfileRepository defines persistence for the one-to-one user profile.
type ProfileRepository interface {
	Get(ctx context.Context, userID string) (*entity.Profile, error)
	// EnsureExists returns the existing profile or inserts a buyer profile.
	// created reports whether a row was inserted.
	EnsureExists(ctx context.Context, userID string) (p *entity.Profile, created bool, err error)
	Update(ctx context.Context, p *entity.Profile) error
	SetRole(ctx context.Context, userID string, role entity.Role) error
	UsersWithoutProfile(ctx context.Context) ([]string, error)
}
