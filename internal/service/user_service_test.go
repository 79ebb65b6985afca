package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	apperrors "userdir/internal/errors"
	"userdir/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByUUID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByName(ctx context.Context, name string) (*model.User, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, module string) ([]model.User, error) {
	args := m.Called(ctx, module)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) DeleteByUUID(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func TestDirectoryService_Create(t *testing.T) {
	tests := []struct {
		name          string
		userName      string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name:     "successful registration",
			userName: "alice",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByName", mock.Anything, "alice").Return(nil, gorm.ErrRecordNotFound)
				m.On("Create", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			expectedError: nil,
		},
		{
			name:     "name already taken",
			userName: "alice",
			setupMock: func(m *MockUserRepository) {
				m.On("FindByName", mock.Anything, "alice").Return(&model.User{Name: "alice"}, nil)
			},
			expectedError: apperrors.ErrUserExists,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewDirectoryService(mockRepo, nil)
			user, err := svc.Create(context.Background(), tt.userName, "a@x.com", "secret1", "")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				assert.NotNil(t, user)
				assert.False(t, user.IsAdmin)
				assert.NotEqual(t, "secret1", user.PasswordHash)
				assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("secret1")))
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

// A name conflict wins regardless of differing email or password.
func TestDirectoryService_Create_ConflictIgnoresEmail(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByName", mock.Anything, "alice").Return(&model.User{Name: "alice", Email: "first@x.com"}, nil)

	svc := NewDirectoryService(mockRepo, nil)
	user, err := svc.Create(context.Background(), "alice", "different@x.com", "otherpass", "")

	assert.ErrorIs(t, err, apperrors.ErrUserExists)
	assert.Nil(t, user)
	mockRepo.AssertExpectations(t)
}

func TestDirectoryService_Update(t *testing.T) {
	knownID := uuid.New()
	newName := "renamed"
	promote := true

	tests := []struct {
		name          string
		id            uuid.UUID
		changes       UserChanges
		setupMock     func(*MockUserRepository)
		expectedError error
		check         func(*testing.T, *model.User)
	}{
		{
			name:    "merges fields and promotes",
			id:      knownID,
			changes: UserChanges{Name: &newName, IsAdmin: &promote},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUUID", mock.Anything, knownID).Return(&model.User{
					UUID: knownID, Name: "alice", Email: "a@x.com",
				}, nil)
				m.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)
			},
			check: func(t *testing.T, u *model.User) {
				assert.Equal(t, "renamed", u.Name)
				assert.True(t, u.IsAdmin)
				assert.Equal(t, "a@x.com", u.Email)
				assert.False(t, u.UpdatedAt.IsZero())
			},
		},
		{
			name:    "unknown identifier",
			id:      uuid.New(),
			changes: UserChanges{Name: &newName},
			setupMock: func(m *MockUserRepository) {
				m.On("FindByUUID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewDirectoryService(mockRepo, nil)
			user, err := svc.Update(context.Background(), tt.id, tt.changes)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, user)
			} else {
				assert.NoError(t, err)
				tt.check(t, user)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestDirectoryService_Update_RehashesPassword(t *testing.T) {
	knownID := uuid.New()
	oldHash, _ := bcrypt.GenerateFromPassword([]byte("oldpass"), bcrypt.MinCost)
	newPassword := "newpass1"

	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUUID", mock.Anything, knownID).Return(&model.User{
		UUID: knownID, Name: "alice", PasswordHash: string(oldHash),
	}, nil)
	mockRepo.On("Update", mock.Anything, mock.AnythingOfType("*model.User")).Return(nil)

	svc := NewDirectoryService(mockRepo, nil)
	user, err := svc.Update(context.Background(), knownID, UserChanges{Password: &newPassword})

	assert.NoError(t, err)
	assert.NotEqual(t, string(oldHash), user.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(newPassword)))
}

func TestDirectoryService_Delete(t *testing.T) {
	knownID := uuid.New()

	tests := []struct {
		name          string
		setupMock     func(*MockUserRepository)
		expectedError error
	}{
		{
			name: "removes existing user",
			setupMock: func(m *MockUserRepository) {
				m.On("DeleteByUUID", mock.Anything, knownID).Return(nil)
			},
		},
		{
			name: "unknown identifier",
			setupMock: func(m *MockUserRepository) {
				m.On("DeleteByUUID", mock.Anything, knownID).Return(gorm.ErrRecordNotFound)
			},
			expectedError: apperrors.ErrUserNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockRepo := new(MockUserRepository)
			tt.setupMock(mockRepo)

			svc := NewDirectoryService(mockRepo, nil)
			err := svc.Delete(context.Background(), knownID)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
			} else {
				assert.NoError(t, err)
			}

			mockRepo.AssertExpectations(t)
		})
	}
}

func TestDirectoryService_List_PassesModuleFilter(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("List", mock.Anything, "billing").Return([]model.User{{Name: "alice", Module: "billing"}}, nil)

	svc := NewDirectoryService(mockRepo, nil)
	users, err := svc.List(context.Background(), "billing")

	assert.NoError(t, err)
	assert.Len(t, users, 1)
	mockRepo.AssertExpectations(t)
}

// A repository failure that is not a lookup miss must surface as the
// unavailable kind, never as a conflict or not-found.
func TestDirectoryService_StorageFailure(t *testing.T) {
	connErr := errors.New("dial tcp: connection refused")

	t.Run("create", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByName", mock.Anything, "alice").Return(nil, connErr)

		svc := NewDirectoryService(mockRepo, nil)
		user, err := svc.Create(context.Background(), "alice", "a@x.com", "secret1", "")

		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, apperrors.ErrUserExists)
		assert.Nil(t, user)
	})

	t.Run("retrieve", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("FindByUUID", mock.Anything, mock.Anything).Return(nil, connErr)

		svc := NewDirectoryService(mockRepo, nil)
		user, err := svc.Retrieve(context.Background(), uuid.New())

		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, apperrors.ErrUserNotFound)
		assert.Nil(t, user)
	})

	t.Run("delete", func(t *testing.T) {
		mockRepo := new(MockUserRepository)
		mockRepo.On("DeleteByUUID", mock.Anything, mock.Anything).Return(connErr)

		svc := NewDirectoryService(mockRepo, nil)
		err := svc.Delete(context.Background(), uuid.New())

		assert.ErrorIs(t, err, apperrors.ErrStoreUnavailable)
		assert.NotErrorIs(t, err, apperrors.ErrUserNotFound)
	})
}

func TestDirectoryService_Retrieve_UnknownIdentifier(t *testing.T) {
	mockRepo := new(MockUserRepository)
	mockRepo.On("FindByUUID", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)

	svc := NewDirectoryService(mockRepo, nil)
	user, err := svc.Retrieve(context.Background(), uuid.New())

	assert.ErrorIs(t, err, apperrors.ErrUserNotFound)
	assert.Nil(t, user)
}
