package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/erpsuite/identity/internal/domain/entity"
	"github.com/erpsuite/identity/internal/domain/repository"
)

const roleColumns = `id, name, slug, description, is_system, is_default, level, parent_id,
	is_active, permissions, created_at, updated_at, created_by`

type RoleRepository struct {
	pool *pgxpool.Pool
}

func NewRoleRepository(pool *pgxpool.Pool) *RoleRepository {
	return &RoleRepository{pool: pool}
}

func scanRole(row pgx.Row) (*entity.Role, error) {
	role := &entity.Role{}
	var perms []string
	var createdAt, updatedAt time.Time
	if err := row.Scan(
		&role.ID, &role.Name, &role.Slug, &role.Description, &role.IsSystem, &role.IsDefault,
		&role.Level, &role.ParentID, &role.IsActive, &perms, &createdAt, &updatedAt, &role.CreatedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	// SetPermissions touches UpdatedAt; restore the stored timestamps after.
	role.SetPermissions(perms)
	role.CreatedAt = createdAt
	role.UpdatedAt = updatedAt
	return role, nil
}

func (r *RoleRepository) Create(ctx context.Context, role *entity.Role) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO roles (id, name, slug, description, is_system, is_default, level, parent_id,
			is_active, permissions, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`, role.ID, role.Name, role.Slug, role.Description, role.IsSystem, role.IsDefault,
		role.Level, role.ParentID, role.IsActive, role.Permissions(), role.CreatedAt, role.UpdatedAt, role.CreatedBy)
	return err
}

func (r *RoleRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

func (r *RoleRepository) GetBySlug(ctx context.Context, slug string) (*entity.Role, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE slug = $1`, slug)
	return scanRole(row)
}

func (r *RoleRepository) Update(ctx context.Context, role *entity.Role) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE roles
		SET name = $1, slug = $2, description = $3, level = $4, is_active = $5,
			permissions = $6, updated_at = $7
		WHERE id = $8
	`, role.Name, role.Slug, role.Description, role.Level, role.IsActive,
		role.Permissions(), role.UpdatedAt, role.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*entity.Role, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+roleColumns+` FROM roles ORDER BY level DESC, slug`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Role
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, role)
	}
	return out, rows.Err()
}

var _ repository.RoleRepository = (*RoleRepository)(nil)
