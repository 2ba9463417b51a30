package repositories

import (
	"context"

	"mfs-service/internal/core/domain"
)

// UserRepository defines the user store interface.
// Lookups of a missing user return domain.ErrUserNotFound.
type UserRepository interface {
	// Create inserts user and sets user.ID to the store-assigned id
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// FindByContact returns the user whose mobile number OR email matches
	FindByContact(ctx context.Context, mobileNumber, email string) (*domain.User, error)
	List(ctx context.Context, filter domain.UserFilter, offset, limit int) ([]*domain.User, int64, error)
	Count(ctx context.Context, filter domain.UserFilter) (int64, error)
	// UpdateActivation merges patch and sets bonus=true.
	// With a non-nil credit the update only matches while bonus is still false
	// and sets balance to *credit; otherwise balance is left as is.
	UpdateActivation(ctx context.Context, id string, patch domain.UserPatch, credit *float64) (*domain.ActivationResult, error)
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}
