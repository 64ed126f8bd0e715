package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/erpsuite/identity/internal/domain/entity"
	"github.com/erpsuite/identity/internal/domain/repository"
)

type UserRoleRepository struct {
	pool *pgxpool.Pool
}

func NewUserRoleRepository(pool *pgxpool.Pool) *UserRoleRepository {
	return &UserRoleRepository{pool: pool}
}

// Assign reactivates a previously revoked assignment instead of inserting a
// duplicate row; (user_id, role_id) is unique.
func (r *UserRoleRepository) Assign(ctx context.Context, ur *entity.UserRole) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO user_roles (id, user_id, role_id, assigned_by, assigned_at, expires_at, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id, role_id) DO UPDATE
		SET assigned_by = EXCLUDED.assigned_by,
			assigned_at = EXCLUDED.assigned_at,
			expires_at  = EXCLUDED.expires_at,
			is_active   = TRUE
	`, ur.ID, ur.UserID, ur.RoleID, ur.AssignedBy, ur.AssignedAt, ur.ExpiresAt, ur.IsActive)
	return err
}

func (r *UserRoleRepository) Revoke(ctx context.Context, userID, roleID uuid.UUID) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE user_roles SET is_active = FALSE WHERE user_id = $1 AND role_id = $2 AND is_active
	`, userID, roleID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRoleRepository) HasRole(ctx context.Context, userID, roleID uuid.UUID) (bool, error) {
	var has bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM user_roles
			WHERE user_id = $1 AND role_id = $2 AND is_active
			  AND (expires_at IS NULL OR expires_at > now())
		)
	`, userID, roleID).Scan(&has)
	return has, err
}

func (r *UserRoleRepository) ListByUser(ctx context.Context, userID uuid.UUID) ([]*entity.UserRole, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, role_id, assigned_by, assigned_at, expires_at, is_active
		FROM user_roles
		WHERE user_id = $1
		ORDER BY assigned_at
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.UserRole
	for rows.Next() {
		ur := &entity.UserRole{}
		if err := rows.Scan(&ur.ID, &ur.UserID, &ur.RoleID, &ur.AssignedBy, &ur.AssignedAt, &ur.ExpiresAt, &ur.IsActive); err != nil {
			return nil, err
		}
		out = append(out, ur)
	}
	return out, rows.Err()
}

var _ repository.UserRoleRepository = (*UserRoleRepository)(nil)
