package application

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/erpsuite/identity/internal/domain/entity"
	repo "github.com/erpsuite/identity/internal/domain/repository"
	"github.com/erpsuite/identity/internal/domain/service"
	"github.com/erpsuite/identity/internal/domain/valueobject"
)

// RoleService handles role administration: creation, permission grants, and
// assignment to users. Level and system-role rules come from the domain
// services; this layer resolves the acting user's level and persists.
type RoleService struct {
	Users     repo.UserRepository
	Roles     repo.RoleRepository
	UserRoles repo.UserRoleRepository

	Perms  *service.PermissionService
	Policy *service.UserService
	Logger *logrus.Logger
}

type CreateRoleInput struct {
	Name        string
	Description string
	Level       int
	Permissions []string
}

// actorLevel resolves the acting user's highest active role level. Superusers
// act at the superuser tier regardless of assignments.
func (s *RoleService) actorLevel(ctx context.Context, actorID uuid.UUID) (int, error) {
	actor, err := s.Users.GetByID(ctx, actorID)
	if err != nil || actor == nil {
		return 0, ErrUserNotFound
	}
	if actor.IsSuperuser {
		return entity.SuperuserLevel, nil
	}
	assignments, err := s.UserRoles.ListByUser(ctx, actorID)
	if err != nil {
		return 0, err
	}
	level := 0
	for _, ur := range assignments {
		if !ur.IsActive || ur.IsExpired() {
			continue
		}
		role, rErr := s.Roles.GetByID(ctx, ur.RoleID)
		if rErr != nil || role == nil || !role.IsActive {
			continue
		}
		if role.Level > level {
			level = role.Level
		}
	}
	return level, nil
}

// CreateRole creates a role at or below the actor's own level.
func (s *RoleService) CreateRole(ctx context.Context, actorID uuid.UUID, in CreateRoleInput) (*entity.Role, error) {
	level, err := s.actorLevel(ctx, actorID)
	if err != nil {
		return nil, err
	}
	if !s.Perms.CanModifyRole(level, in.Level, false) {
		return nil, ErrPermissionDenied
	}
	for _, p := range in.Permissions {
		if !s.Perms.ValidFormat(p) {
			return nil, &valueobject.ValidationError{Field: "permissions", Message: "invalid permission format: " + p}
		}
	}
	role := entity.NewRole(in.Name, in.Description, in.Level, in.Permissions, &actorID)
	if err := s.Roles.Create(ctx, role); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"role": role.Slug, "level": role.Level}).Info("role created")
	}
	return role, nil
}

// UpdatePermissions replaces a role's permission set. System roles require
// the superuser tier.
func (s *RoleService) UpdatePermissions(ctx context.Context, actorID, roleID uuid.UUID, permissions []string) (*entity.Role, error) {
	level, err := s.actorLevel(ctx, actorID)
	if err != nil {
		return nil, err
	}
	role, err := s.Roles.GetByID(ctx, roleID)
	if err != nil || role == nil {
		return nil, ErrRoleNotFound
	}
	if !s.Perms.CanModifyRole(level, role.Level, role.IsSystem) {
		return nil, ErrPermissionDenied
	}
	for _, p := range permissions {
		if !s.Perms.ValidFormat(p) {
			return nil, &valueobject.ValidationError{Field: "permissions", Message: "invalid permission format: " + p}
		}
	}
	role.SetPermissions(permissions)
	if err := s.Roles.Update(ctx, role); err != nil {
		return nil, err
	}
	return role, nil
}

// AssignRole gives the target user a role; the actor must strictly outrank
// it. Re-assigning an already-held role is a no-op.
func (s *RoleService) AssignRole(ctx context.Context, actorID, userID, roleID uuid.UUID, expiresInDays int) (*entity.UserRole, error) {
	level, err := s.actorLevel(ctx, actorID)
	if err != nil {
		return nil, err
	}
	role, err := s.Roles.GetByID(ctx, roleID)
	if err != nil || role == nil {
		return nil, ErrRoleNotFound
	}
	if !s.Policy.CanAssignRole(level, role.Level) {
		return nil, ErrPermissionDenied
	}
	target, err := s.Users.GetByID(ctx, userID)
	if err != nil || target == nil {
		return nil, ErrUserNotFound
	}

	already, err := s.UserRoles.HasRole(ctx, userID, roleID)
	if err != nil {
		return nil, err
	}
	if already {
		return nil, nil
	}

	ur := entity.NewUserRole(userID, roleID, &actorID, expiresInDays)
	if err := s.UserRoles.Assign(ctx, ur); err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"user_id": userID, "role": role.Slug}).Info("role assigned")
	}
	return ur, nil
}

// RevokeRole removes a role assignment under the same level rule as assign.
func (s *RoleService) RevokeRole(ctx context.Context, actorID, userID, roleID uuid.UUID) error {
	level, err := s.actorLevel(ctx, actorID)
	if err != nil {
		return err
	}
	role, err := s.Roles.GetByID(ctx, roleID)
	if err != nil || role == nil {
		return ErrRoleNotFound
	}
	if !s.Policy.CanAssignRole(level, role.Level) {
		return ErrPermissionDenied
	}
	return s.UserRoles.Revoke(ctx, userID, roleID)
}

func (s *RoleService) GetRole(ctx context.Context, roleID uuid.UUID) (*entity.Role, error) {
	role, err := s.Roles.GetByID(ctx, roleID)
	if err != nil || role == nil {
		return nil, ErrRoleNotFound
	}
	return role, nil
}

func (s *RoleService) ListRoles(ctx context.Context) ([]*entity.Role, error) {
	return s.Roles.List(ctx)
}
