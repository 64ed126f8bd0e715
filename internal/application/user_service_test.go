package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpsuite/identity/internal/domain/entity"
	"github.com/erpsuite/identity/internal/domain/service"
)

func testUserService(users *fakeUserRepo, roles *fakeRoleRepo, userRoles *fakeUserRoleRepo) *UserService {
	return &UserService{
		Users:     users,
		Roles:     roles,
		UserRoles: userRoles,
		Policy:    service.NewUserService(),
		Hasher:    testHasher(),
	}
}

func TestRegister(t *testing.T) {
	users := newFakeUserRepo()
	svc := testUserService(users, newFakeRoleRepo(), &fakeUserRoleRepo{})
	ctx := context.Background()

	u, err := svc.Register(ctx, RegisterInput{
		Email:     "Grace@Example.com",
		Password:  testPassword,
		FirstName: "Grace",
		LastName:  "Hopper",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, "grace@example.com", u.Email.String())
	assert.True(t, u.IsActive)
	assert.False(t, u.IsVerified)
	assert.NotEqual(t, testPassword, u.PasswordHash)
	assert.Nil(t, u.PasswordChangedAt, "fresh accounts store no password change timestamp")

	stored, err := users.GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.ID, stored.ID)
}

func TestRegisterAssignsDefaultRole(t *testing.T) {
	basic := entity.NewRole("User", "basic access", 10, []string{"orders.read"}, nil)
	basic.IsDefault = true
	admin := entity.NewRole("Admin", "", 90, nil, nil)
	userRoles := &fakeUserRoleRepo{}
	svc := testUserService(newFakeUserRepo(), newFakeRoleRepo(basic, admin), userRoles)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "grace@example.com",
		Password: testPassword,
	}, nil)
	require.NoError(t, err)

	require.Len(t, userRoles.assignments, 1)
	assert.Equal(t, u.ID, userRoles.assignments[0].UserID)
	assert.Equal(t, basic.ID, userRoles.assignments[0].RoleID)
	assert.Nil(t, userRoles.assignments[0].ExpiresAt)
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	existing := verifiedUser(t, "grace@example.com")
	svc := testUserService(newFakeUserRepo(existing), newFakeRoleRepo(), &fakeUserRoleRepo{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "grace@example.com",
		Password: testPassword,
	}, nil)
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestRegisterRejectsWeakPassword(t *testing.T) {
	svc := testUserService(newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{})

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "grace@example.com",
		Password: "short",
	}, nil)

	var weak *WeakPasswordError
	require.ErrorAs(t, err, &weak)
	assert.NotEmpty(t, weak.Problems)
}

func TestChangePassword(t *testing.T) {
	u := verifiedUser(t, "grace@example.com")
	users := newFakeUserRepo(u)
	svc := testUserService(users, newFakeRoleRepo(), &fakeUserRoleRepo{})
	ctx := context.Background()

	t.Run("wrong current password", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, "Wrong1password", "N3wSecret!pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("weak replacement", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, testPassword, "weak")
		var weak *WeakPasswordError
		assert.ErrorAs(t, err, &weak)
	})

	t.Run("success", func(t *testing.T) {
		err := svc.ChangePassword(ctx, u.ID, testPassword, "N3wSecret!pass")
		require.NoError(t, err)
		assert.Equal(t, 1, users.passwordUpdates)
		assert.NotNil(t, u.PasswordChangedAt)
		assert.True(t, svc.Hasher.Verify("N3wSecret!pass", u.PasswordHash))
	})
}

func TestUpdateProfile(t *testing.T) {
	u := verifiedUser(t, "grace@example.com")
	svc := testUserService(newFakeUserRepo(u), newFakeRoleRepo(), &fakeUserRoleRepo{})

	updated, err := svc.UpdateProfile(context.Background(), u.ID, UpdateProfileInput{FirstName: "Gracie", Phone: "+15550100"})
	require.NoError(t, err)
	assert.Equal(t, "Gracie", updated.FirstName)
	assert.Equal(t, "Hopper", updated.LastName, "empty fields untouched")
	assert.Equal(t, "+15550100", updated.Phone)
}

func TestSetActiveAndUnlock(t *testing.T) {
	u := verifiedUser(t, "grace@example.com")
	users := newFakeUserRepo(u)
	svc := testUserService(users, newFakeRoleRepo(), &fakeUserRoleRepo{})
	ctx := context.Background()

	require.NoError(t, svc.SetActive(ctx, u.ID, false))
	assert.False(t, u.IsActive)
	require.NoError(t, svc.SetActive(ctx, u.ID, true))
	assert.True(t, u.IsActive)

	u.Lock(30)
	require.NoError(t, svc.Unlock(ctx, u.ID))
	assert.False(t, u.IsLocked())
	assert.Equal(t, 1, users.securityUpdates)
}

func TestSecurityInfo(t *testing.T) {
	u := verifiedUser(t, "grace@example.com")
	u.Lock(30)
	svc := testUserService(newFakeUserRepo(u), newFakeRoleRepo(), &fakeUserRoleRepo{})

	info, err := svc.SecurityInfo(context.Background(), u.ID)
	require.NoError(t, err)
	assert.True(t, info.IsLocked)
	assert.Greater(t, info.LockSecondsLeft, 0)
}

func TestEffectivePermissionsForUser(t *testing.T) {
	ctx := context.Background()

	t.Run("superuser collapses to wildcard", func(t *testing.T) {
		su := entity.NewSuperuser(mustEmail(t, "root@example.com"), "hash", "Root", "")
		svc := testUserService(newFakeUserRepo(su), newFakeRoleRepo(), &fakeUserRoleRepo{})

		perms, isSuper, err := svc.EffectivePermissions(ctx, su.ID)
		require.NoError(t, err)
		assert.True(t, isSuper)
		assert.Equal(t, []string{"*"}, perms)
	})

	t.Run("union of direct and role permissions", func(t *testing.T) {
		u := verifiedUser(t, "grace@example.com")
		u.SetPermissions([]string{"reports.export"})
		viewer := entity.NewRole("Viewer", "", 10, []string{"orders.read"}, nil)
		roles := newFakeRoleRepo(viewer)
		userRoles := &fakeUserRoleRepo{}
		require.NoError(t, userRoles.Assign(ctx, entity.NewUserRole(u.ID, viewer.ID, nil, 0)))

		svc := testUserService(newFakeUserRepo(u), roles, userRoles)
		perms, isSuper, err := svc.EffectivePermissions(ctx, u.ID)
		require.NoError(t, err)
		assert.False(t, isSuper)
		assert.Equal(t, []string{"orders.read", "reports.export"}, perms)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc := testUserService(newFakeUserRepo(), newFakeRoleRepo(), &fakeUserRoleRepo{})
		_, _, err := svc.EffectivePermissions(ctx, entity.NewSuperuser(mustEmail(t, "x@example.com"), "h", "", "").ID)
		assert.ErrorIs(t, err, ErrUserNotFound)
	})
}
