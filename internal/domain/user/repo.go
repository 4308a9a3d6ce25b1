package user

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrRoleIDTaken reports a uniqueness conflict on a generated patient or
// doctor identifier. The service retries with a fresh identifier.
var ErrRoleIDTaken = errors.New("role identifier already taken")

// Repository persists identity records. Implementations return
// apperr.ErrDuplicateEmail on email conflicts, ErrRoleIDTaken on role
// identifier conflicts and apperr.ErrNotFound for missing users.
type Repository interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmailAndType(ctx context.Context, email, userType string) (*User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd *ProfileUpdate) (*User, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error
	TouchLastLogin(ctx context.Context, id uuid.UUID) error
}
