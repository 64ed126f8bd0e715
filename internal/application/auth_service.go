package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/erpsuite/identity/internal/domain/entity"
	repo "github.com/erpsuite/identity/internal/domain/repository"
	"github.com/erpsuite/identity/internal/domain/service"
	"github.com/erpsuite/identity/internal/domain/valueobject"
	"github.com/erpsuite/identity/pkg/helpers"
)

// AuthService drives the login, refresh, and logout flows. Account-state
// checks and lockout bookkeeping live in the domain; this layer persists the
// results, issues tokens, and keeps the Redis session in sync.
type AuthService struct {
	Users     repo.UserRepository
	Roles     repo.RoleRepository
	UserRoles repo.UserRoleRepository

	Policy *service.UserService
	JWT    *helpers.JWTManager
	Hasher *helpers.PasswordHasher
	Redis  *redis.Client
	Logger *logrus.Logger
	Events *helpers.RabbitPublisher

	MaxLoginAttempts   int
	LockoutMinutes     int
	PasswordMaxAgeDays int
}

func NewAuthService(users repo.UserRepository, roles repo.RoleRepository, userRoles repo.UserRoleRepository, policy *service.UserService, jwt *helpers.JWTManager, hasher *helpers.PasswordHasher, rdb *redis.Client, logger *logrus.Logger, events *helpers.RabbitPublisher, maxAttempts, lockoutMinutes, passwordMaxAgeDays int) *AuthService {
	return &AuthService{
		Users:              users,
		Roles:              roles,
		UserRoles:          userRoles,
		Policy:             policy,
		JWT:                jwt,
		Hasher:             hasher,
		Redis:              rdb,
		Logger:             logger,
		Events:             events,
		MaxLoginAttempts:   maxAttempts,
		LockoutMinutes:     lockoutMinutes,
		PasswordMaxAgeDays: passwordMaxAgeDays,
	}
}

type TokenPair struct {
	AccessToken        string
	AccessTokenExpiry  time.Time
	RefreshToken       string
	RefreshTokenExpiry time.Time
}

type LoginResult struct {
	UserID             string   `json:"user_id"`
	Email              string   `json:"email"`
	Name               string   `json:"name"`
	Role               string   `json:"role"`
	Permissions        []string `json:"permissions"`
	MustChangePassword bool     `json:"must_change_password"`
}

// SecurityEvent is published to RabbitMQ on noteworthy account transitions.
type SecurityEvent struct {
	Type   string         `json:"type"`
	UserID string         `json:"user_id"`
	Email  string         `json:"email"`
	At     time.Time      `json:"at"`
	Meta   map[string]any `json:"meta,omitempty"`
}

func sessionKey(userID string) string {
	return "user:session:" + userID
}

func nowRFC3339() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// Login authenticates email/password. Unknown email and wrong password are
// indistinguishable to the caller; account-state failures are not, and are
// reported in a fixed order (deactivated, locked, unverified).
func (s *AuthService) Login(ctx context.Context, email, password string) (*LoginResult, TokenPair, error) {
	addr, err := valueobject.NewEmail(email)
	if err != nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	u, err := s.Users.GetByEmail(ctx, addr.String())
	if err != nil || u == nil {
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	if ok, reason := s.Policy.ValidateLoginStatus(u.IsActive, u.IsLocked(), u.IsVerified); !ok {
		return nil, TokenPair{}, loginStatusError(reason)
	}

	if !s.Hasher.Verify(password, u.PasswordHash) {
		// The store owns the counter; incrementing a value read before the
		// hash check would drop failures racing on the same account.
		locked, lErr := s.Users.RecordLoginFailure(ctx, u.ID, s.MaxLoginAttempts, s.LockoutMinutes)
		if lErr != nil && s.Logger != nil {
			s.Logger.WithError(lErr).WithField("user_id", u.ID).Error("persist failed login failed")
		}
		if locked {
			s.publishEvent(ctx, "account_locked", u, map[string]any{"lockout_minutes": s.LockoutMinutes})
		}
		return nil, TokenPair{}, ErrInvalidCredentials
	}

	u.RecordSuccessfulLogin()
	if err := s.Users.UpdateSecurity(ctx, u); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("persist successful login failed")
	}

	roleName, rolePerms, err := s.resolveRoles(ctx, u)
	if err != nil {
		return nil, TokenPair{}, err
	}
	perms := s.Policy.EffectivePermissions(u.Permissions(), rolePerms)
	u.SetPermissions(perms)

	pair, err := s.IssueTokens(ctx, u, roleName)
	if err != nil {
		return nil, TokenPair{}, err
	}

	res := &LoginResult{
		UserID:             u.ID.String(),
		Email:              u.Email.String(),
		Name:               u.FullName(),
		Role:               roleName,
		Permissions:        perms,
		MustChangePassword: s.Policy.ShouldForcePasswordChange(u.PasswordChangedAt, s.PasswordMaxAgeDays),
	}
	return res, pair, nil
}

// resolveRoles collects the user's active, unexpired role assignments and
// returns the highest-level role name plus the union of role permissions.
func (s *AuthService) resolveRoles(ctx context.Context, u *entity.User) (string, []string, error) {
	assignments, err := s.UserRoles.ListByUser(ctx, u.ID)
	if err != nil {
		return "", nil, err
	}

	roleName := ""
	if u.IsSuperuser {
		roleName = "superuser"
	}
	topLevel := -1
	var rolePerms []string
	for _, ur := range assignments {
		if !ur.IsActive || ur.IsExpired() {
			continue
		}
		role, err := s.Roles.GetByID(ctx, ur.RoleID)
		if err != nil || role == nil || !role.IsActive {
			continue
		}
		rolePerms = append(rolePerms, role.Permissions()...)
		if role.Level > topLevel {
			topLevel = role.Level
			roleName = role.Name
		}
	}
	if roleName == "" {
		roleName = "user"
	}
	return roleName, rolePerms, nil
}

// IssueTokens generates an access/refresh pair and records the session hash
// in Redis. The session id ties tokens to the session; a missing or rotated
// sid invalidates outstanding refresh tokens.
func (s *AuthService) IssueTokens(ctx context.Context, u *entity.User, roleName string) (TokenPair, error) {
	sid := uuid.NewString()
	access, aexp, err := s.JWT.GenerateAccessToken(u.ID.String(), u.Email.String(), roleName, sid)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, rexp, err := s.JWT.GenerateRefreshToken(u.ID.String(), u.Email.String(), roleName, sid)
	if err != nil {
		return TokenPair{}, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID.String())
		fields := map[string]any{
			"user_id":    u.ID.String(),
			"email":      u.Email.String(),
			"name":       u.FullName(),
			"role":       roleName,
			"sid":        sid,
			"logged_in":  true,
			"created_at": nowRFC3339(),
		}
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, fields)
		pipe.Expire(ctx, key, 24*time.Hour)
		if _, rErr := pipe.Exec(ctx); rErr != nil && s.Logger != nil {
			s.Logger.WithError(rErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	return TokenPair{AccessToken: access, AccessTokenExpiry: aexp, RefreshToken: refresh, RefreshTokenExpiry: rexp}, nil
}

// Refresh rotates the session id and returns a fresh token pair. The refresh
// token's sid must match the current session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (TokenPair, string, error) {
	claims, err := s.JWT.ParseRefreshToken(refreshToken)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	uid, err := uuid.Parse(claims.UserID)
	if err != nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	u, err := s.Users.GetByID(ctx, uid)
	if err != nil || u == nil {
		return TokenPair{}, "", ErrInvalidCredentials
	}
	if !u.CanLogin() {
		return TokenPair{}, "", ErrInvalidCredentials
	}

	if s.Redis != nil {
		key := sessionKey(u.ID.String())
		data, rErr := s.Redis.HGetAll(ctx, key).Result()
		if rErr != nil || len(data) == 0 || data["sid"] != claims.SessionID {
			return TokenPair{}, "", ErrInvalidCredentials
		}
	}

	pair, err := s.IssueTokens(ctx, u, claims.Role)
	if err != nil {
		return TokenPair{}, "", err
	}
	return pair, u.ID.String(), nil
}

// Logout drops the Redis session, invalidating outstanding refresh tokens.
func (s *AuthService) Logout(ctx context.Context, userID string) error {
	if s.Redis == nil {
		return nil
	}
	return s.Redis.Del(ctx, sessionKey(userID)).Err()
}

func (s *AuthService) publishEvent(ctx context.Context, eventType string, u *entity.User, meta map[string]any) {
	if s.Events == nil {
		return
	}
	ev := SecurityEvent{
		Type:   eventType,
		UserID: u.ID.String(),
		Email:  u.Email.String(),
		At:     time.Now().UTC(),
		Meta:   meta,
	}
	if err := s.Events.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
		s.Logger.WithError(err).WithField("type", eventType).Warn("publish security event failed")
	}
}
