package main

import (
	"context"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/erpsuite/identity/config"
	"github.com/erpsuite/identity/internal/domain/entity"
	"github.com/erpsuite/identity/internal/domain/valueobject"
	pginfra "github.com/erpsuite/identity/internal/infrastructure/postgres"
	"github.com/erpsuite/identity/pkg/helpers"
)

// Seeds the permission catalogue, the default roles, and a bootstrap
// superuser. Safe to run repeatedly; everything upserts.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	// Permission catalogue
	for _, p := range entity.DefaultPermissions() {
		if _, err := pool.Exec(ctx, `
			INSERT INTO permissions (id, name, slug, description, resource, action, is_crud, is_system, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
			ON CONFLICT (name) DO UPDATE SET description = EXCLUDED.description, updated_at = now()
		`, p.ID, p.Name, p.Slug, p.Description, p.Resource, p.Action, p.IsCRUD, p.IsSystem, p.CreatedAt, p.UpdatedAt); err != nil {
			log.Fatalf("failed to seed permission %s: %v", p.Name, err)
		}
	}
	fmt.Printf("seeded %d permissions\n", len(entity.DefaultPermissions()))

	// Default roles
	defaults := []*entity.Role{
		entity.NewRole("Superuser", "unrestricted access", entity.SuperuserLevel, []string{valueobject.Wildcard}, nil),
		entity.NewRole("Admin", "manages users and roles", 90, []string{"users.*", "roles.*", "permissions.read", "logs.read", "settings.*"}, nil),
		entity.NewRole("Manager", "runs day-to-day operations", 50, []string{"customers.*", "products.*", "orders.*", "invoices.*", "payments.read", "reports.read"}, nil),
		entity.NewRole("User", "basic access", 10, []string{"orders.read", "products.read", "reports.read"}, nil),
	}
	defaults[0].IsSystem = true
	defaults[3].IsDefault = true

	for _, r := range defaults {
		if _, err := pool.Exec(ctx, `
			INSERT INTO roles (id, name, slug, description, is_system, is_default, level, parent_id, is_active, permissions, created_at, updated_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			ON CONFLICT (slug) DO UPDATE SET permissions = EXCLUDED.permissions, level = EXCLUDED.level, updated_at = now()
		`, r.ID, r.Name, r.Slug, r.Description, r.IsSystem, r.IsDefault, r.Level, r.ParentID, r.IsActive,
			r.Permissions(), r.CreatedAt, r.UpdatedAt, r.CreatedBy); err != nil {
			log.Fatalf("failed to seed role %s: %v", r.Slug, err)
		}
	}
	fmt.Printf("seeded %d roles\n", len(defaults))

	// Bootstrap superuser
	if cfg.SuperuserPassword == "" {
		fmt.Println("SUPERUSER_PASSWORD not set; skipping superuser bootstrap")
		return
	}
	addr, err := valueobject.NewEmail(cfg.SuperuserEmail)
	if err != nil {
		log.Fatalf("invalid SUPERUSER_EMAIL: %v", err)
	}
	if problems := valueobject.ValidateStrength(cfg.SuperuserPassword); len(problems) > 0 {
		log.Fatalf("weak SUPERUSER_PASSWORD: %v", problems)
	}
	hash, err := helpers.HashPassword(cfg.SuperuserPassword)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}
	su := entity.NewSuperuser(addr, hash, "System", "Administrator")
	if _, err := pool.Exec(ctx, `
		INSERT INTO users (id, email, password_hash, first_name, last_name, phone, avatar_url,
			is_active, is_verified, is_superuser, failed_login_attempts, locked_until,
			password_changed_at, last_login_at, created_at, updated_at, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		ON CONFLICT (email) DO NOTHING
	`, su.ID, su.Email.String(), su.PasswordHash, su.FirstName, su.LastName, su.Phone, su.AvatarURL,
		su.IsActive, su.IsVerified, su.IsSuperuser, su.FailedLoginAttempts, su.LockedUntil,
		su.PasswordChangedAt, su.LastLoginAt, su.CreatedAt, su.UpdatedAt, su.CreatedBy); err != nil {
		log.Fatalf("failed to seed superuser: %v", err)
	}
	fmt.Printf("superuser ensured: %s\n", su.Email.String())
}
