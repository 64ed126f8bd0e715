package entity

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erpsuite/identity/internal/domain/valueobject"
)

func newTestUser(t *testing.T) *User {
	t.Helper()
	email, err := valueobject.NewEmail("jane.doe@example.com")
	require.NoError(t, err)
	return NewUser(email, "$2a$10$hash", "Jane", "Doe", nil)
}

func TestNewUserDefaults(t *testing.T) {
	u := newTestUser(t)

	assert.True(t, u.IsActive)
	assert.False(t, u.IsVerified)
	assert.False(t, u.IsSuperuser)
	assert.Zero(t, u.FailedLoginAttempts)
	assert.Nil(t, u.LockedUntil)
	assert.True(t, u.CanLogin())
	assert.NotEqual(t, uuid.Nil, u.ID)
}

func TestNewSuperuser(t *testing.T) {
	email, _ := valueobject.NewEmail("root@example.com")
	u := NewSuperuser(email, "$2a$10$hash", "Admin", "User")

	assert.True(t, u.IsSuperuser)
	assert.True(t, u.IsVerified)
	assert.True(t, u.HasPermission("anything.anything"))
}

func TestActivateDeactivate(t *testing.T) {
	u := newTestUser(t)

	u.Deactivate()
	assert.False(t, u.IsActive)
	assert.False(t, u.CanLogin())

	// idempotent
	u.Deactivate()
	assert.False(t, u.IsActive)

	u.Activate()
	assert.True(t, u.IsActive)
}

func TestLockUnlock(t *testing.T) {
	u := newTestUser(t)
	u.FailedLoginAttempts = 3

	u.Lock(30)
	require.NotNil(t, u.LockedUntil)
	assert.True(t, u.IsLocked())
	assert.False(t, u.CanLogin())
	assert.Zero(t, u.FailedLoginAttempts, "lock resets the counter")

	u.Unlock()
	assert.Nil(t, u.LockedUntil)
	assert.False(t, u.IsLocked())
	assert.True(t, u.CanLogin())
}

func TestIsLockedDerivedFromTimestamp(t *testing.T) {
	u := newTestUser(t)

	past := time.Now().UTC().Add(-time.Second)
	u.LockedUntil = &past
	assert.False(t, u.IsLocked(), "expired lock is no lock")
	assert.True(t, u.CanLogin())

	future := time.Now().UTC().Add(time.Minute)
	u.LockedUntil = &future
	assert.True(t, u.IsLocked())
}

func TestRecordFailedLogin(t *testing.T) {
	u := newTestUser(t)

	for i := 1; i < DefaultMaxLoginAttempts; i++ {
		locked := u.RecordFailedLogin(DefaultMaxLoginAttempts)
		assert.False(t, locked, "attempt %d must not lock", i)
		assert.Equal(t, i, u.FailedLoginAttempts)
	}

	locked := u.RecordFailedLogin(DefaultMaxLoginAttempts)
	assert.True(t, locked, "final attempt locks the account")
	assert.True(t, u.IsLocked())
	assert.False(t, u.CanLogin())
	assert.Zero(t, u.FailedLoginAttempts)
}

func TestRecordSuccessfulLogin(t *testing.T) {
	u := newTestUser(t)
	u.FailedLoginAttempts = 4

	u.RecordSuccessfulLogin()

	assert.Zero(t, u.FailedLoginAttempts)
	require.NotNil(t, u.LastLoginAt)
	assert.WithinDuration(t, time.Now().UTC(), *u.LastLoginAt, time.Second)
}

func TestUpdatePassword(t *testing.T) {
	u := newTestUser(t)
	require.Nil(t, u.PasswordChangedAt)

	u.UpdatePassword("$2a$10$newhash")

	assert.Equal(t, "$2a$10$newhash", u.PasswordHash)
	require.NotNil(t, u.PasswordChangedAt)
}

func TestUpdateProfilePartial(t *testing.T) {
	u := newTestUser(t)

	u.UpdateProfile("", "Smith", "+3312345678")

	assert.Equal(t, "Jane", u.FirstName, "empty fields are ignored")
	assert.Equal(t, "Smith", u.LastName)
	assert.Equal(t, "+3312345678", u.Phone)
}

func TestRoleMembership(t *testing.T) {
	u := newTestUser(t)
	roleID := uuid.New()

	u.AddRole(roleID)
	u.AddRole(roleID) // no duplicates
	assert.True(t, u.HasRole(roleID))
	assert.Len(t, u.Roles(), 1)

	u.RemoveRole(roleID)
	assert.False(t, u.HasRole(roleID))
	assert.Empty(t, u.Roles())

	// removing again is a no-op
	u.RemoveRole(roleID)
}

func TestHasPermission(t *testing.T) {
	u := newTestUser(t)
	u.SetPermissions([]string{"orders.read", "invoices.read"})

	assert.True(t, u.HasPermission("orders.read"))
	assert.False(t, u.HasPermission("orders.delete"))

	// flat lookup: wildcard resolution happens in the domain service
	u.SetPermissions([]string{"orders.*"})
	assert.False(t, u.HasPermission("orders.read"))
}

func TestPermissionsReturnsCopy(t *testing.T) {
	u := newTestUser(t)
	u.SetPermissions([]string{"orders.read"})

	perms := u.Permissions()
	perms[0] = "mutated"

	assert.Equal(t, []string{"orders.read"}, u.Permissions())
}

func TestFullNameAndInitials(t *testing.T) {
	u := newTestUser(t)
	assert.Equal(t, "Jane Doe", u.FullName())
	assert.Equal(t, "JD", u.Initials())

	u.FirstName = ""
	assert.Equal(t, "Doe", u.FullName())
	assert.Equal(t, "D", u.Initials())
}

func TestLockoutScenario(t *testing.T) {
	// A user at four failed attempts: one more locks for 30 minutes, and a
	// correct password during the window must still not permit login.
	u := newTestUser(t)
	u.FailedLoginAttempts = 4

	locked := u.RecordFailedLogin(DefaultMaxLoginAttempts)
	require.True(t, locked)
	require.NotNil(t, u.LockedUntil)
	assert.WithinDuration(t, time.Now().UTC().Add(DefaultLockoutMinutes*time.Minute), *u.LockedUntil, time.Second)

	assert.False(t, u.CanLogin())
}
