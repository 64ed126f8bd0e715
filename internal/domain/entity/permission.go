package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/erpsuite/identity/internal/domain/valueobject"
)

var crudActions = []string{"create", "read", "update", "delete"}

// Permission is a catalogued resource+action pair. The permission strings
// carried by roles and users reference these by Name ("resource.action").
type Permission struct {
	ID          uuid.UUID
	Name        string
	Slug        string
	Description string

	Resource string
	Action   string

	IsCRUD   bool
	IsSystem bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPermission builds a permission for a resource/action pair.
func NewPermission(resource, action, description string) *Permission {
	now := time.Now().UTC()
	isCRUD := false
	for _, a := range crudActions {
		if a == action {
			isCRUD = true
			break
		}
	}
	return &Permission{
		ID:          uuid.New(),
		Name:        resource + "." + action,
		Slug:        resource + "_" + action,
		Description: description,
		Resource:    resource,
		Action:      action,
		IsCRUD:      isCRUD,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Matches reports whether this permission covers the given resource/action,
// honoring the wildcard catalogue entry.
func (p *Permission) Matches(resource, action string) bool {
	if p.IsWildcard() {
		return true
	}
	return p.Resource == resource && p.Action == action
}

// IsWildcard reports whether this is the catalogue-wide "*" entry.
func (p *Permission) IsWildcard() bool {
	return p.Name == valueobject.Wildcard || p.Resource == valueobject.Wildcard
}

// CRUDPermissions generates the four standard permissions for a resource.
func CRUDPermissions(resource string) []*Permission {
	out := make([]*Permission, 0, len(crudActions))
	for _, action := range crudActions {
		out = append(out, NewPermission(resource, action, action+" "+resource))
	}
	return out
}

// CRUDResources lists the ERP resources covered by the default catalogue.
func CRUDResources() []string {
	return []string{
		"users", "roles", "permissions",
		"customers", "products", "orders",
		"invoices", "payments", "reports",
		"settings", "logs",
	}
}

// DefaultPermissions returns the immutable seed catalogue: CRUD permissions
// for every default resource plus the system wildcard.
func DefaultPermissions() []*Permission {
	var out []*Permission
	for _, resource := range CRUDResources() {
		out = append(out, CRUDPermissions(resource)...)
	}
	wildcard := &Permission{
		ID:          uuid.New(),
		Name:        valueobject.Wildcard,
		Slug:        valueobject.Wildcard,
		Description: "full access to all resources",
		Resource:    valueobject.Wildcard,
		Action:      valueobject.Wildcard,
		IsSystem:    true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}
	return append(out, wildcard)
}
