package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewRoleSlug(t *testing.T) {
	r := NewRole("Finance Manager", "manages finance", 50, []string{"invoices.read"}, nil)

	assert.Equal(t, "finance_manager", r.Slug)
	assert.True(t, r.IsActive)
	assert.Equal(t, 50, r.Level)
	assert.Equal(t, []string{"invoices.read"}, r.Permissions())
}

func TestRolePermissionSet(t *testing.T) {
	r := NewRole("Clerk", "", 10, nil, nil)

	r.AddPermission("orders.read")
	r.AddPermission("orders.read") // duplicate ignored
	assert.Equal(t, 1, r.PermissionCount())
	assert.True(t, r.HasPermission("orders.read"))

	r.RemovePermission("orders.read")
	assert.False(t, r.HasPermission("orders.read"))
	r.RemovePermission("orders.read") // no-op

	r.SetPermissions([]string{"a.read", "b.read"})
	assert.Equal(t, 2, r.PermissionCount())
}

func TestRoleHasPermissionIsExact(t *testing.T) {
	r := NewRole("Ops", "", 20, []string{"orders.*"}, nil)

	// wildcard expansion is the permission service's job, not the entity's
	assert.True(t, r.HasPermission("orders.*"))
	assert.False(t, r.HasPermission("orders.read"))
}

func TestCanGrantTo(t *testing.T) {
	admin := NewRole("Admin", "", 80, nil, nil)
	manager := NewRole("Manager", "", 50, nil, nil)
	peer := NewRole("Admin Two", "", 80, nil, nil)

	assert.True(t, admin.CanGrantTo(manager))
	assert.False(t, manager.CanGrantTo(admin))
	assert.False(t, admin.CanGrantTo(peer), "equal level cannot grant")
}

func TestRoleActivation(t *testing.T) {
	r := NewRole("Temp", "", 1, nil, nil)
	r.Deactivate()
	assert.False(t, r.IsActive)
	r.Activate()
	assert.True(t, r.IsActive)
}
