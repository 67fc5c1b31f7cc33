package users

import "context"

// UserRepo stores users. Lookups of unknown users return errors matching apperrors.ErrNotFound;
// store failures match apperrors.ErrStoreUnavailable.
type UserRepo interface {
	Upsert(ctx context.Context, user *User) error
	Delete(ctx context.Context, id string) error
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
}
