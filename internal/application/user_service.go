package application

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"time"

	"cloud.google.com/go/storage"
	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/erpsuite/identity/internal/domain/entity"
	repo "github.com/erpsuite/identity/internal/domain/repository"
	"github.com/erpsuite/identity/internal/domain/service"
	"github.com/erpsuite/identity/internal/domain/valueobject"
	"github.com/erpsuite/identity/pkg/helpers"
)

// UserService covers account lifecycle outside of login: registration,
// profile, password changes, avatars, and the Elasticsearch user directory.
type UserService struct {
	Users     repo.UserRepository
	Roles     repo.RoleRepository
	UserRoles repo.UserRoleRepository

	Policy *service.UserService
	Hasher *helpers.PasswordHasher
	Redis  *redis.Client
	Logger *logrus.Logger
	Events *helpers.RabbitPublisher

	GCS       *storage.Client
	GCSBucket string

	ES           *elasticsearch.Client
	ESUsersIndex string
}

type RegisterInput struct {
	Email     string
	Password  string
	FirstName string
	LastName  string
	Phone     string
}

// Register creates an active, unverified account. The password must satisfy
// the strength policy; violations are returned together in WeakPasswordError.
func (s *UserService) Register(ctx context.Context, in RegisterInput, createdBy *uuid.UUID) (*entity.User, error) {
	addr, err := valueobject.NewEmail(in.Email)
	if err != nil {
		return nil, err
	}
	taken, err := s.Users.ExistsByEmail(ctx, addr.String())
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrEmailTaken
	}
	if problems := valueobject.ValidateStrength(in.Password); len(problems) > 0 {
		return nil, &WeakPasswordError{Problems: problems}
	}
	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := entity.NewUser(addr, hash, in.FirstName, in.LastName, createdBy)
	u.Phone = in.Phone
	if err := s.Users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.assignDefaultRole(ctx, u)
	_ = s.indexUser(ctx, u)
	return u, nil
}

// assignDefaultRole grants the catalogue's default role to a new account.
// Best effort; a missing default role is not a registration failure.
func (s *UserService) assignDefaultRole(ctx context.Context, u *entity.User) {
	if s.Roles == nil || s.UserRoles == nil {
		return
	}
	roles, err := s.Roles.List(ctx)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).Warn("default role lookup failed")
		}
		return
	}
	for _, r := range roles {
		if r.IsDefault && r.IsActive {
			ur := entity.NewUserRole(u.ID, r.ID, nil, 0)
			if aErr := s.UserRoles.Assign(ctx, ur); aErr != nil && s.Logger != nil {
				s.Logger.WithError(aErr).WithField("role", r.Slug).Warn("default role assignment failed")
			}
			return
		}
	}
}

func (s *UserService) GetProfile(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	return u, nil
}

type UpdateProfileInput struct {
	FirstName string
	LastName  string
	Phone     string
}

func (s *UserService) UpdateProfile(ctx context.Context, userID uuid.UUID, in UpdateProfileInput) (*entity.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, ErrUserNotFound
	}
	u.UpdateProfile(in.FirstName, in.LastName, in.Phone)
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID.String())
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"name":       u.FullName(),
			"updated_at": nowRFC3339(),
		})
		if ttl, tErr := s.Redis.TTL(ctx, key).Result(); tErr == nil && ttl > 0 {
			pipe.Expire(ctx, key, ttl)
		}
		if _, pErr := pipe.Exec(ctx); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).WithField("key", key).Warn("redis pipeline failed")
		}
	}

	_ = s.indexUser(ctx, u)
	return u, nil
}

// ChangePassword verifies the current password before accepting the new one.
// A wrong current password maps to ErrInvalidCredentials, same as login.
func (s *UserService) ChangePassword(ctx context.Context, userID uuid.UUID, current, next string) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	if !s.Hasher.Verify(current, u.PasswordHash) {
		return ErrInvalidCredentials
	}
	if problems := valueobject.ValidateStrength(next); len(problems) > 0 {
		return &WeakPasswordError{Problems: problems}
	}
	hash, err := s.Hasher.Hash(next)
	if err != nil {
		return err
	}
	u.UpdatePassword(hash)
	if err := s.Users.UpdatePassword(ctx, u.ID, hash); err != nil {
		return err
	}

	if s.Events != nil {
		ev := SecurityEvent{Type: "password_changed", UserID: u.ID.String(), Email: u.Email.String(), At: time.Now().UTC()}
		if pErr := s.Events.PublishJSON(ctx, ev); pErr != nil && s.Logger != nil {
			s.Logger.WithError(pErr).Warn("publish security event failed")
		}
	}
	return nil
}

// SetActive toggles the account; deactivation also drops the session so the
// user is cut off immediately.
func (s *UserService) SetActive(ctx context.Context, userID uuid.UUID, active bool) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	if active {
		u.Activate()
	} else {
		u.Deactivate()
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return err
	}
	if !active && s.Redis != nil {
		_ = s.Redis.Del(ctx, sessionKey(u.ID.String())).Err()
	}
	return nil
}

// Unlock clears the lockout state ahead of its natural expiry.
func (s *UserService) Unlock(ctx context.Context, userID uuid.UUID) error {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return ErrUserNotFound
	}
	u.Unlock()
	return s.Users.UpdateSecurity(ctx, u)
}

// SecurityInfo reports lockout state for admin and recovery UX.
func (s *UserService) SecurityInfo(ctx context.Context, userID uuid.UUID) (service.RecoveryInfo, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return service.RecoveryInfo{}, ErrUserNotFound
	}
	return s.Policy.AccountRecoveryInfo(u.FailedLoginAttempts, u.LockedUntil, u.LastLoginAt), nil
}

func (s *UserService) List(ctx context.Context, limit, offset int) ([]*entity.User, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.Users.List(ctx, limit, offset)
}

// EffectivePermissions resolves the user's permission set from direct grants
// and active role assignments. Superusers short-circuit to the wildcard.
func (s *UserService) EffectivePermissions(ctx context.Context, userID uuid.UUID) ([]string, bool, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return nil, false, ErrUserNotFound
	}
	if u.IsSuperuser {
		return []string{valueobject.Wildcard}, true, nil
	}
	assignments, err := s.UserRoles.ListByUser(ctx, u.ID)
	if err != nil {
		return nil, false, err
	}
	var rolePerms []string
	for _, ur := range assignments {
		if !ur.IsActive || ur.IsExpired() {
			continue
		}
		role, rErr := s.Roles.GetByID(ctx, ur.RoleID)
		if rErr != nil || role == nil || !role.IsActive {
			continue
		}
		rolePerms = append(rolePerms, role.Permissions()...)
	}
	return s.Policy.EffectivePermissions(u.Permissions(), rolePerms), false, nil
}

// UploadAvatar stores the image in GCS and saves the public URL.
func (s *UserService) UploadAvatar(ctx context.Context, userID uuid.UUID, r io.Reader, filename, contentType string) (string, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil || u == nil {
		return "", ErrUserNotFound
	}
	if s.GCS == nil || s.GCSBucket == "" {
		return "", errors.New("gcs not configured")
	}
	ext := strings.ToLower(filepath.Ext(filename))
	objectPath := filepath.ToSlash(filepath.Join("avatars", u.ID.String(), uuid.NewString()+ext))
	url, err := helpers.UploadImageToGCS(ctx, s.GCS, s.GCSBucket, objectPath, contentType, r)
	if err != nil {
		return "", err
	}
	u.AvatarURL = url
	if err := s.Users.Update(ctx, u); err != nil {
		return "", err
	}
	_ = s.indexUser(ctx, u)
	return url, nil
}

func (s *UserService) indexUser(ctx context.Context, u *entity.User) error {
	if s.ES == nil || s.ESUsersIndex == "" {
		return nil
	}
	doc := map[string]any{
		"id":         u.ID.String(),
		"email":      u.Email.String(),
		"name":       u.FullName(),
		"first_name": u.FirstName,
		"last_name":  u.LastName,
		"is_active":  u.IsActive,
		"created_at": u.CreatedAt.Format(time.RFC3339Nano),
		"updated_at": u.UpdatedAt.Format(time.RFC3339Nano),
	}
	b, _ := json.Marshal(doc)
	req := esapi.IndexRequest{Index: s.ESUsersIndex, DocumentID: u.ID.String(), Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	res, err := req.Do(c, s.ES)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("es index failed")
		}
		return err
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() && s.Logger != nil {
		s.Logger.WithField("status", res.Status()).WithField("user_id", u.ID).Warn("es index response error")
	}
	return nil
}

// Search performs a multi_match over email and name fields in the directory.
func (s *UserService) Search(ctx context.Context, q string, size int) ([]map[string]any, error) {
	if s.ES == nil || s.ESUsersIndex == "" {
		return []map[string]any{}, nil
	}
	if size <= 0 || size > 50 {
		size = 10
	}
	query := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":  q,
				"fields": []string{"email^2", "name", "first_name", "last_name"},
			},
		},
		"size": size,
	}
	b, _ := json.Marshal(query)

	c, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	res, err := s.ES.Search(s.ES.Search.WithContext(c), s.ES.Search.WithIndex(s.ESUsersIndex), s.ES.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, err
	}
	defer func() { _ = res.Body.Close() }()

	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string         `json:"_id"`
				Source map[string]any `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, err
	}

	out := make([]map[string]any, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		out = append(out, h.Source)
	}
	return out, nil
}
