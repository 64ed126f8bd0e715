package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpsuite/identity/internal/domain/entity"
	"github.com/erpsuite/identity/internal/domain/service"
	"github.com/erpsuite/identity/internal/domain/valueobject"
)

func testRoleService(users *fakeUserRepo, roles *fakeRoleRepo, userRoles *fakeUserRoleRepo) *RoleService {
	return &RoleService{
		Users:     users,
		Roles:     roles,
		UserRoles: userRoles,
		Perms:     service.NewPermissionService(),
		Policy:    service.NewUserService(),
	}
}

// actorWithLevel wires a user holding an active role at the given level.
func actorWithLevel(t *testing.T, users *fakeUserRepo, roles *fakeRoleRepo, userRoles *fakeUserRoleRepo, level int) *entity.User {
	t.Helper()
	actor := verifiedUser(t, "actor@example.com")
	require.NoError(t, users.Create(context.Background(), actor))
	role := entity.NewRole("Actor Role", "", level, nil, nil)
	require.NoError(t, roles.Create(context.Background(), role))
	require.NoError(t, userRoles.Assign(context.Background(), entity.NewUserRole(actor.ID, role.ID, nil, 0)))
	return actor
}

func TestCreateRole(t *testing.T) {
	ctx := context.Background()

	t.Run("allowed at or below own level", func(t *testing.T) {
		users, roles, userRoles := newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{}
		actor := actorWithLevel(t, users, roles, userRoles, 50)
		svc := testRoleService(users, roles, userRoles)

		role, err := svc.CreateRole(ctx, actor.ID, CreateRoleInput{
			Name: "Sales Clerk", Level: 20, Permissions: []string{"orders.read", "orders.create"},
		})
		require.NoError(t, err)
		assert.Equal(t, "sales_clerk", role.Slug)
		assert.Equal(t, 2, role.PermissionCount())
	})

	t.Run("denied above own level", func(t *testing.T) {
		users, roles, userRoles := newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{}
		actor := actorWithLevel(t, users, roles, userRoles, 50)
		svc := testRoleService(users, roles, userRoles)

		_, err := svc.CreateRole(ctx, actor.ID, CreateRoleInput{Name: "Director", Level: 80})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("invalid permission format", func(t *testing.T) {
		users, roles, userRoles := newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{}
		actor := actorWithLevel(t, users, roles, userRoles, 50)
		svc := testRoleService(users, roles, userRoles)

		_, err := svc.CreateRole(ctx, actor.ID, CreateRoleInput{
			Name: "Broken", Level: 10, Permissions: []string{"orders.read.all"},
		})
		var verr *valueobject.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestUpdatePermissions(t *testing.T) {
	ctx := context.Background()

	t.Run("system role needs superuser tier", func(t *testing.T) {
		users, roles, userRoles := newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{}
		actor := actorWithLevel(t, users, roles, userRoles, 90)
		system := entity.NewRole("System", "", 50, []string{"*"}, nil)
		system.IsSystem = true
		require.NoError(t, roles.Create(ctx, system))
		svc := testRoleService(users, roles, userRoles)

		_, err := svc.UpdatePermissions(ctx, actor.ID, system.ID, []string{"users.read"})
		assert.ErrorIs(t, err, ErrPermissionDenied)
	})

	t.Run("superuser can modify system roles", func(t *testing.T) {
		users, roles, userRoles := newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{}
		root := entity.NewSuperuser(mustEmail(t, "root@example.com"), "hash", "Root", "")
		require.NoError(t, users.Create(ctx, root))
		system := entity.NewRole("System", "", 50, []string{"*"}, nil)
		system.IsSystem = true
		require.NoError(t, roles.Create(ctx, system))
		svc := testRoleService(users, roles, userRoles)

		role, err := svc.UpdatePermissions(ctx, root.ID, system.ID, []string{"users.read", "users.update"})
		require.NoError(t, err)
		assert.Equal(t, []string{"users.read", "users.update"}, role.Permissions())
	})

	t.Run("unknown role", func(t *testing.T) {
		users, roles, userRoles := newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{}
		actor := actorWithLevel(t, users, roles, userRoles, 90)
		svc := testRoleService(users, roles, userRoles)

		_, err := svc.UpdatePermissions(ctx, actor.ID, entity.NewRole("x", "", 1, nil, nil).ID, nil)
		assert.ErrorIs(t, err, ErrRoleNotFound)
	})
}

func TestAssignRole(t *testing.T) {
	ctx := context.Background()

	t.Run("actor must strictly outrank the role", func(t *testing.T) {
		users, roles, userRoles := newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{}
		actor := actorWithLevel(t, users, roles, userRoles, 50)
		target := verifiedUser(t, "target@example.com")
		require.NoError(t, users.Create(ctx, target))
		peer := entity.NewRole("Peer", "", 50, nil, nil)
		require.NoError(t, roles.Create(ctx, peer))
		svc := testRoleService(users, roles, userRoles)

		_, err := svc.AssignRole(ctx, actor.ID, target.ID, peer.ID, 0)
		assert.ErrorIs(t, err, ErrPermissionDenied, "equal level cannot assign")
	})

	t.Run("assign and re-assign", func(t *testing.T) {
		users, roles, userRoles := newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{}
		actor := actorWithLevel(t, users, roles, userRoles, 50)
		target := verifiedUser(t, "target@example.com")
		require.NoError(t, users.Create(ctx, target))
		junior := entity.NewRole("Junior", "", 10, nil, nil)
		require.NoError(t, roles.Create(ctx, junior))
		svc := testRoleService(users, roles, userRoles)

		ur, err := svc.AssignRole(ctx, actor.ID, target.ID, junior.ID, 30)
		require.NoError(t, err)
		require.NotNil(t, ur)
		assert.NotNil(t, ur.ExpiresAt)

		again, err := svc.AssignRole(ctx, actor.ID, target.ID, junior.ID, 30)
		require.NoError(t, err)
		assert.Nil(t, again, "already held roles are a no-op")
	})

	t.Run("superuser can assign anything", func(t *testing.T) {
		users, roles, userRoles := newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{}
		root := entity.NewSuperuser(mustEmail(t, "root@example.com"), "hash", "Root", "")
		require.NoError(t, users.Create(ctx, root))
		target := verifiedUser(t, "target@example.com")
		require.NoError(t, users.Create(ctx, target))
		admin := entity.NewRole("Admin", "", 90, nil, nil)
		require.NoError(t, roles.Create(ctx, admin))
		svc := testRoleService(users, roles, userRoles)

		ur, err := svc.AssignRole(ctx, root.ID, target.ID, admin.ID, 0)
		require.NoError(t, err)
		require.NotNil(t, ur)
		assert.Nil(t, ur.ExpiresAt)
	})
}

func TestRevokeRole(t *testing.T) {
	ctx := context.Background()
	users, roles, userRoles := newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{}
	actor := actorWithLevel(t, users, roles, userRoles, 50)
	target := verifiedUser(t, "target@example.com")
	require.NoError(t, users.Create(ctx, target))
	junior := entity.NewRole("Junior", "", 10, nil, nil)
	require.NoError(t, roles.Create(ctx, junior))
	svc := testRoleService(users, roles, userRoles)

	_, err := svc.AssignRole(ctx, actor.ID, target.ID, junior.ID, 0)
	require.NoError(t, err)

	require.NoError(t, svc.RevokeRole(ctx, actor.ID, target.ID, junior.ID))
	has, err := userRoles.HasRole(ctx, target.ID, junior.ID)
	require.NoError(t, err)
	assert.False(t, has)
}
