package account

import (
	"context"
	"errors"
)

var (
	ErrNotFound  = errors.New("account not found")
	ErrDuplicate = errors.New("username already taken")
)

// Repository persists accounts of every role in one store. Lookups return
// ErrNotFound when nothing matches and Create returns ErrDuplicate when the
// (role, username) pair is taken.
type Repository interface {
	Create(ctx context.Context, a *Account) error
	GetByID(ctx context.Context, role Role, id int64) (*Account, error)
	GetByUsername(ctx context.Context, role Role, username string) (*Account, error)
	ExistsByUsername(ctx context.Context, role Role, username string) (bool, error)
	First(ctx context.Context, role Role) (*Account, error)
	List(ctx context.Context, role Role) ([]*Account, error)
	Update(ctx context.Context, a *Account) error
	DeleteByUsername(ctx context.Context, role Role, username string) error
}
