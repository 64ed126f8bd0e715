package application

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/erpsuite/identity/internal/domain/entity"
)

var errNotFound = errors.New("not found")

type fakeUserRepo struct {
	users           map[uuid.UUID]*entity.User
	securityUpdates int
	passwordUpdates int
	loginFailures   int
}

func newFakeUserRepo(users ...*entity.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[uuid.UUID]*entity.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) Create(_ context.Context, u *entity.User) error {
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.User, error) {
	if u, ok := r.users[id]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.users {
		if u.Email.String() == email {
			return u, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeUserRepo) Update(_ context.Context, u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return errNotFound
	}
	r.users[u.ID] = u
	return nil
}

func (r *fakeUserRepo) UpdateSecurity(_ context.Context, u *entity.User) error {
	if _, ok := r.users[u.ID]; !ok {
		return errNotFound
	}
	r.securityUpdates++
	r.users[u.ID] = u
	return nil
}

// RecordLoginFailure operates on the stored user, like the SQL relative
// update does, rather than on whatever copy the caller read earlier.
func (r *fakeUserRepo) RecordLoginFailure(_ context.Context, id uuid.UUID, maxAttempts, lockoutMinutes int) (bool, error) {
	u, ok := r.users[id]
	if !ok {
		return false, errNotFound
	}
	r.loginFailures++
	locked := u.RecordFailedLogin(maxAttempts)
	if locked {
		u.Lock(lockoutMinutes)
	}
	return locked, nil
}

func (r *fakeUserRepo) UpdatePassword(_ context.Context, id uuid.UUID, hash string) error {
	u, ok := r.users[id]
	if !ok {
		return errNotFound
	}
	u.PasswordHash = hash
	r.passwordUpdates++
	return nil
}

func (r *fakeUserRepo) SetVerified(_ context.Context, id uuid.UUID) error {
	u, ok := r.users[id]
	if !ok {
		return errNotFound
	}
	u.Verify()
	return nil
}

func (r *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	u, _ := r.GetByEmail(ctx, email)
	return u != nil, nil
}

func (r *fakeUserRepo) List(_ context.Context, limit, offset int) ([]*entity.User, error) {
	out := make([]*entity.User, 0, len(r.users))
	for _, u := range r.users {
		out = append(out, u)
	}
	return out, nil
}

type fakeRoleRepo struct {
	roles map[uuid.UUID]*entity.Role
}

func newFakeRoleRepo(roles ...*entity.Role) *fakeRoleRepo {
	r := &fakeRoleRepo{roles: make(map[uuid.UUID]*entity.Role)}
	for _, role := range roles {
		r.roles[role.ID] = role
	}
	return r
}

func (r *fakeRoleRepo) Create(_ context.Context, role *entity.Role) error {
	r.roles[role.ID] = role
	return nil
}

func (r *fakeRoleRepo) GetByID(_ context.Context, id uuid.UUID) (*entity.Role, error) {
	if role, ok := r.roles[id]; ok {
		return role, nil
	}
	return nil, errNotFound
}

func (r *fakeRoleRepo) GetBySlug(_ context.Context, slug string) (*entity.Role, error) {
	for _, role := range r.roles {
		if role.Slug == slug {
			return role, nil
		}
	}
	return nil, errNotFound
}

func (r *fakeRoleRepo) Update(_ context.Context, role *entity.Role) error {
	if _, ok := r.roles[role.ID]; !ok {
		return errNotFound
	}
	r.roles[role.ID] = role
	return nil
}

func (r *fakeRoleRepo) List(_ context.Context) ([]*entity.Role, error) {
	out := make([]*entity.Role, 0, len(r.roles))
	for _, role := range r.roles {
		out = append(out, role)
	}
	return out, nil
}

type fakeUserRoleRepo struct {
	assignments []*entity.UserRole
}

func (r *fakeUserRoleRepo) Assign(_ context.Context, ur *entity.UserRole) error {
	r.assignments = append(r.assignments, ur)
	return nil
}

func (r *fakeUserRoleRepo) Revoke(_ context.Context, userID, roleID uuid.UUID) error {
	for _, ur := range r.assignments {
		if ur.UserID == userID && ur.RoleID == roleID && ur.IsActive {
			ur.Revoke()
			return nil
		}
	}
	return errNotFound
}

func (r *fakeUserRoleRepo) HasRole(_ context.Context, userID, roleID uuid.UUID) (bool, error) {
	for _, ur := range r.assignments {
		if ur.UserID == userID && ur.RoleID == roleID && ur.IsActive && !ur.IsExpired() {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeUserRoleRepo) ListByUser(_ context.Context, userID uuid.UUID) ([]*entity.UserRole, error) {
	var out []*entity.UserRole
	for _, ur := range r.assignments {
		if ur.UserID == userID {
			out = append(out, ur)
		}
	}
	return out, nil
}
