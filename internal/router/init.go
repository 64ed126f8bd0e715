package router

import (
	"github.com/erpsuite/identity/internal/application"
	"github.com/erpsuite/identity/internal/container"
	"github.com/erpsuite/identity/internal/domain/service"
	pginfra "github.com/erpsuite/identity/internal/infrastructure/postgres"
	handlers "github.com/erpsuite/identity/internal/interface/http"
	"github.com/erpsuite/identity/internal/router/modules"
)

// InitModules wires repositories, services, and handlers from the container
// singletons and registers every feature module. Called once at startup.
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	users := pginfra.NewUserRepository(pool)
	roles := pginfra.NewRoleRepository(pool)
	userRoles := pginfra.NewUserRoleRepository(pool)

	policy := service.NewUserService()
	checker := service.NewPermissionService()

	authSvc := application.NewAuthService(
		users, roles, userRoles,
		policy,
		container.GetJWT(),
		container.GetHasher(),
		container.GetRedis(),
		container.GetLogger(),
		container.GetSecurityPub(),
		cfg.MaxLoginAttempts,
		cfg.LockoutMinutes,
		cfg.PasswordMaxAgeDays,
	)

	userSvc := &application.UserService{
		Users:        users,
		Roles:        roles,
		UserRoles:    userRoles,
		Policy:       policy,
		Hasher:       container.GetHasher(),
		Redis:        container.GetRedis(),
		Logger:       container.GetLogger(),
		Events:       container.GetSecurityPub(),
		GCS:          container.GetGCS(),
		GCSBucket:    cfg.GCSBucket,
		ES:           container.GetES(),
		ESUsersIndex: cfg.ESUsersIndex,
	}

	roleSvc := &application.RoleService{
		Users:     users,
		Roles:     roles,
		UserRoles: userRoles,
		Perms:     checker,
		Policy:    policy,
		Logger:    container.GetLogger(),
	}

	authHandler := handlers.NewAuthHandler(authSvc, userSvc, container.GetRedis(), container.GetLogger(), cfg, container.GetEmailPub())
	userHandler := handlers.NewUserHandler(userSvc, container.GetLogger())
	roleHandler := handlers.NewRoleHandler(roleSvc, container.GetLogger())

	r.Add(modules.NewAuthModule(authHandler, userHandler, container.GetJWT()))
	r.Add(modules.NewUserModule(userHandler, userSvc, checker, container.GetJWT()))
	r.Add(modules.NewRoleModule(roleHandler, userSvc, checker, container.GetJWT()))
	if cfg.DebugMetricsEnabled {
		r.Add(modules.NewDebugModule())
	}
}
