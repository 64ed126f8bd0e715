package entity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPermission(t *testing.T) {
	p := NewPermission("orders", "read", "read orders")

	assert.Equal(t, "orders.read", p.Name)
	assert.Equal(t, "orders_read", p.Slug)
	assert.True(t, p.IsCRUD)
	assert.False(t, p.IsSystem)
	assert.False(t, p.IsWildcard())

	exec := NewPermission("reports", "export", "")
	assert.False(t, exec.IsCRUD)
}

func TestPermissionMatches(t *testing.T) {
	p := NewPermission("orders", "read", "")

	assert.True(t, p.Matches("orders", "read"))
	assert.False(t, p.Matches("orders", "delete"))
	assert.False(t, p.Matches("invoices", "read"))
}

func TestCRUDPermissions(t *testing.T) {
	perms := CRUDPermissions("customers")
	require.Len(t, perms, 4)

	names := make([]string, 0, 4)
	for _, p := range perms {
		names = append(names, p.Name)
		assert.True(t, p.IsCRUD)
	}
	assert.ElementsMatch(t, []string{"customers.create", "customers.read", "customers.update", "customers.delete"}, names)
}

func TestDefaultPermissionsCatalogue(t *testing.T) {
	perms := DefaultPermissions()
	// 11 resources x 4 CRUD actions + the wildcard
	require.Len(t, perms, len(CRUDResources())*4+1)

	last := perms[len(perms)-1]
	assert.True(t, last.IsWildcard())
	assert.True(t, last.IsSystem)
	assert.True(t, last.Matches("anything", "anything"))
}
