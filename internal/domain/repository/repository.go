package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/erpsuite/identity/internal/domain/entity"
)

// UserRepository defines the persistence contract for the User aggregate.
// RecordLoginFailure must increment relative to the stored value, not to a
// value the caller read earlier, so concurrent failed logins never lose an
// increment.
type UserRepository interface {
	Create(ctx context.Context, u *entity.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	GetByEmail(ctx context.Context, email string) (*entity.User, error)
	Update(ctx context.Context, u *entity.User) error
	UpdateSecurity(ctx context.Context, u *entity.User) error
	RecordLoginFailure(ctx context.Context, id uuid.UUID, maxAttempts, lockoutMinutes int) (bool, error)
	UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error
	SetVerified(ctx context.Context, id uuid.UUID) error
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, limit, offset int) ([]*entity.User, error)
}

// RoleRepository defines persistence for roles and their permission sets.
type RoleRepository interface {
	Create(ctx context.Context, r *entity.Role) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Role, error)
	GetBySlug(ctx context.Context, slug string) (*entity.Role, error)
	Update(ctx context.Context, r *entity.Role) error
	List(ctx context.Context) ([]*entity.Role, error)
}

// UserRoleRepository defines persistence for role assignments.
type UserRoleRepository interface {
	Assign(ctx context.Context, ur *entity.UserRole) error
	Revoke(ctx context.Context, userID, roleID uuid.UUID) error
	HasRole(ctx context.Context, userID, roleID uuid.UUID) (bool, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.UserRole, error)
}
