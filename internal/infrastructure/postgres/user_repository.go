package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/erpsuite/identity/internal/domain/entity"
	"github.com/erpsuite/identity/internal/domain/repository"
	"github.com/erpsuite/identity/internal/domain/valueobject"
)

var ErrNotFound = errors.New("not found")

const userColumns = `id, email, password_hash, first_name, last_name, phone, avatar_url,
	is_active, is_verified, is_superuser, failed_login_attempts, locked_until,
	password_changed_at, last_login_at, created_at, updated_at, created_by`

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func scanUser(row pgx.Row) (*entity.User, error) {
	u := &entity.User{}
	var email string
	if err := row.Scan(
		&u.ID, &email, &u.PasswordHash, &u.FirstName, &u.LastName, &u.Phone, &u.AvatarURL,
		&u.IsActive, &u.IsVerified, &u.IsSuperuser, &u.FailedLoginAttempts, &u.LockedUntil,
		&u.PasswordChangedAt, &u.LastLoginAt, &u.CreatedAt, &u.UpdatedAt, &u.CreatedBy,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	addr, err := valueobject.NewEmail(email)
	if err != nil {
		return nil, err
	}
	u.Email = addr
	return u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *entity.User) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, avatar_url,
			is_active, is_verified, is_superuser, failed_login_attempts, locked_until,
			password_changed_at, last_login_at, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`, u.ID, u.Email.String(), u.PasswordHash, u.FirstName, u.LastName, u.Phone, u.AvatarURL,
		u.IsActive, u.IsVerified, u.IsSuperuser, u.FailedLoginAttempts, u.LockedUntil,
		u.PasswordChangedAt, u.LastLoginAt, u.CreatedAt, u.UpdatedAt, u.CreatedBy)
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *UserRepository) Update(ctx context.Context, u *entity.User) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET first_name = $1, last_name = $2, phone = $3, avatar_url = $4,
			is_active = $5, is_verified = $6, updated_at = $7
		WHERE id = $8
	`, u.FirstName, u.LastName, u.Phone, u.AvatarURL, u.IsActive, u.IsVerified, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// RecordLoginFailure bumps the failure counter in a single statement so the
// increment applies to the stored value, never to a stale read. Reaching
// maxAttempts locks the account and resets the counter, mirroring the
// User aggregate's transition. Returns whether this failure locked the row.
func (r *UserRepository) RecordLoginFailure(ctx context.Context, id uuid.UUID, maxAttempts, lockoutMinutes int) (bool, error) {
	var locked bool
	err := r.pool.QueryRow(ctx, `
		UPDATE users
		SET failed_login_attempts = CASE WHEN failed_login_attempts + 1 >= $2 THEN 0
			ELSE failed_login_attempts + 1 END,
			locked_until = CASE WHEN failed_login_attempts + 1 >= $2 THEN now() + make_interval(mins => $3)
			ELSE locked_until END,
			updated_at = now()
		WHERE id = $1
		RETURNING failed_login_attempts = 0
	`, id, maxAttempts, lockoutMinutes).Scan(&locked)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, ErrNotFound
		}
		return false, err
	}
	return locked, nil
}

// UpdateSecurity writes the lockout fields as absolutes; used for the
// successful-login reset and admin unlock, where last-writer-wins is correct.
// Failure counting goes through RecordLoginFailure.
func (r *UserRepository) UpdateSecurity(ctx context.Context, u *entity.User) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET failed_login_attempts = $1, locked_until = $2, last_login_at = $3, updated_at = $4
		WHERE id = $5
	`, u.FailedLoginAttempts, u.LockedUntil, u.LastLoginAt, u.UpdatedAt, u.ID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, hash string) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users
		SET password_hash = $1, password_changed_at = now(), updated_at = now()
		WHERE id = $2
	`, hash, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) SetVerified(ctx context.Context, id uuid.UUID) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE users SET is_verified = TRUE, updated_at = now() WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *UserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

var _ repository.UserRepository = (*UserRepository)(nil)
