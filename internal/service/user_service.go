package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"userdir/internal/cache"
	apperrors "userdir/internal/errors"
	"userdir/internal/model"
	"userdir/internal/repository"
)

const (
	bcryptCost   = 10
	userCacheTTL = 5 * time.Minute
)

// UserChanges carries a partial update; nil fields are left untouched.
type UserChanges struct {
	Name     *string `json:"name"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
	Module   *string `json:"module"`
	IsAdmin  *bool   `json:"is_adm"`
}

// DirectoryService exposes user directory operations.
type DirectoryService interface {
	Create(ctx context.Context, name, email, password, module string) (*model.User, error)
	List(ctx context.Context, module string) ([]model.User, error)
	Retrieve(ctx context.Context, id uuid.UUID) (*model.User, error)
	Update(ctx context.Context, id uuid.UUID, changes UserChanges) (*model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type directoryService struct {
	repo  repository.UserRepository
	cache *cache.Client

	// mu serializes mutations; the name-uniqueness check in Create is a
	// check-then-insert and must not race with concurrent writers.
	mu sync.Mutex
}

// NewDirectoryService builds a DirectoryService with repository and cache.
func NewDirectoryService(repo repository.UserRepository, cache *cache.Client) DirectoryService {
	return &directoryService{repo: repo, cache: cache}
}

func (s *directoryService) cacheKey(id uuid.UUID) string {
	return fmt.Sprintf("user:%s", id)
}

// Create registers a new user. Uniqueness is on the display name, not the
// email. The admin flag is always stored false regardless of input; promotion
// happens only through Update.
func (s *directoryService) Create(ctx context.Context, name, email, password, module string) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.repo.FindByName(ctx, name)
	if err == nil && existing != nil {
		return nil, apperrors.ErrUserExists
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, storeError("check name uniqueness", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashed),
		IsAdmin:      false,
		Module:       module,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, storeError("create user", err)
	}
	return user, nil
}

func (s *directoryService) List(ctx context.Context, module string) ([]model.User, error) {
	users, err := s.repo.List(ctx, module)
	if err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}

func (s *directoryService) Retrieve(ctx context.Context, id uuid.UUID) (*model.User, error) {
	if data, _ := s.cache.Get(ctx, s.cacheKey(id)); data != nil {
		var cached model.User
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	}

	user, err := s.repo.FindByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storeError("find user", err)
	}

	if payload, err := json.Marshal(user); err == nil {
		_ = s.cache.Set(ctx, s.cacheKey(id), payload, userCacheTTL)
	}
	return user, nil
}

// Update merges the non-nil fields of changes into the matched record and
// refreshes its update timestamp. A miss is a NotFound, never a silent no-op.
func (s *directoryService) Update(ctx context.Context, id uuid.UUID, changes UserChanges) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, err := s.repo.FindByUUID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, storeError("find user", err)
	}

	if changes.Name != nil {
		user.Name = *changes.Name
	}
	if changes.Email != nil {
		user.Email = *changes.Email
	}
	if changes.Module != nil {
		user.Module = *changes.Module
	}
	if changes.IsAdmin != nil {
		user.IsAdmin = *changes.IsAdmin
	}
	if changes.Password != nil {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*changes.Password), bcryptCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hashed)
	}
	user.UpdatedAt = time.Now()

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, storeError("update user", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return user, nil
}

// Delete removes the record matched by UUID. Deleting an absent identifier is
// a NotFound rather than a silent success.
func (s *directoryService) Delete(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.repo.DeleteByUUID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrUserNotFound
		}
		return storeError("delete user", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

// storeError tags unexpected storage failures so the boundary maps them to 503.
func storeError(op string, err error) error {
	return fmt.Errorf("%s: %w: %v", op, apperrors.ErrStoreUnavailable, err)
}
