package user

import (
	"context"
)

// Repository defines the contract for user storage.
type Repository interface {
	Create(ctx context.Context, nu NewUser) (User, error)
	GetByUsername(ctx context.Context, username string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
}
