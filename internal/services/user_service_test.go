package services_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"storefront/internal/models"
	"storefront/internal/repositories"
	"storefront/internal/services"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// MockUserRepository is a mock implementation of repositories.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user *models.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func TestUserService_Register(t *testing.T) {
	ctx := context.Background()
	mockRepo := new(MockUserRepository)
	service := services.NewUserService(mockRepo, bcrypt.MinCost, quietLogger())

	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil).Once()

	user, err := service.Register(ctx, services.RegisterInput{Email: "test@example.com", Password: "password123", FirstName: "Test"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.NotEqual(t, "password123", user.PasswordHash)
	assert.True(t, services.CheckPassword(user, "password123"))
	mockRepo.AssertExpectations(t)

	// Early duplicate detection
	mockRepo.On("GetByEmail", ctx, "test@example.com").Return(&models.User{ID: "1"}, nil).Once()
	_, err = service.Register(ctx, services.RegisterInput{Email: "test@example.com", Password: "x"})
	assert.ErrorIs(t, err, services.ErrDuplicateEmail)

	// Lost race: the lookup passes but the insert hits the unique constraint
	mockRepo.On("GetByEmail", ctx, "race@example.com").Return(nil, repositories.ErrNotFound).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(repositories.ErrDuplicateEmail).Once()
	_, err = service.Register(ctx, services.RegisterInput{Email: "race@example.com", Password: "x"})
	assert.ErrorIs(t, err, services.ErrDuplicateEmail)

	// Storage failures are not reported as duplicates
	mockRepo.On("GetByEmail", ctx, "down@example.com").Return(nil, errors.New("connection refused")).Once()
	_, err = service.Register(ctx, services.RegisterInput{Email: "down@example.com", Password: "x"})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, services.ErrDuplicateEmail)
	mockRepo.AssertExpectations(t)
}

func TestUserService_RegisterRequiresEmailAndPassword(t *testing.T) {
	service := services.NewUserService(repositories.NewMockUserRepository(), bcrypt.MinCost, quietLogger())

	_, err := service.Register(context.Background(), services.RegisterInput{Password: "x"})
	assert.ErrorIs(t, err, services.ErrEmailRequired)

	_, err = service.Register(context.Background(), services.RegisterInput{Email: "a@x.com"})
	assert.ErrorIs(t, err, services.ErrPasswordRequired)
}

func TestUserService_ConcurrentRegisterSameEmail(t *testing.T) {
	service := services.NewUserService(repositories.NewMockUserRepository(), bcrypt.MinCost, quietLogger())

	const attempts = 20
	results := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := service.Register(context.Background(), services.RegisterInput{Email: "same@x.com", Password: "P@ss1234"})
			results <- err
		}()
	}
	wg.Wait()
	close(results)

	succeeded := 0
	for err := range results {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, services.ErrDuplicateEmail)
	}
	assert.Equal(t, 1, succeeded)
}

func TestUserService_Verify(t *testing.T) {
	ctx := context.Background()
	service := services.NewUserService(repositories.NewMockUserRepository(), bcrypt.MinCost, quietLogger())

	registered, err := service.Register(ctx, services.RegisterInput{Email: "a@x.com", Password: "P@ss1234"})
	require.NoError(t, err)

	user, err := service.Verify(ctx, "a@x.com", "P@ss1234")
	require.NoError(t, err)
	assert.Equal(t, registered.ID, user.ID)

	_, err = service.Verify(ctx, "a@x.com", "P@ss1235")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials, "one changed character flips the result")

	_, unknownErr := service.Verify(ctx, "nobody@x.com", "P@ss1234")
	assert.ErrorIs(t, unknownErr, services.ErrInvalidCredentials)
	assert.Equal(t, err.Error(), unknownErr.Error(), "unknown email and wrong password are indistinguishable")
}

func TestUserService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	service := services.NewUserService(repositories.NewMockUserRepository(), bcrypt.MinCost, quietLogger())

	user, err := service.Register(ctx, services.RegisterInput{Email: "a@x.com", Password: "P@ss1234", FirstName: "Ada", City: "Paris"})
	require.NoError(t, err)
	_, err = service.Register(ctx, services.RegisterInput{Email: "b@x.com", Password: "secret"})
	require.NoError(t, err)

	updated, err := service.UpdateProfile(ctx, user.ID, services.ProfileUpdate{City: strPtr("Lyon")})
	require.NoError(t, err)
	assert.Equal(t, "Lyon", updated.City)
	assert.Equal(t, "Ada", updated.FirstName, "fields not supplied are unchanged")

	_, err = service.UpdateProfile(ctx, user.ID, services.ProfileUpdate{Email: strPtr("b@x.com"), City: strPtr("Nice")})
	assert.ErrorIs(t, err, services.ErrDuplicateEmail)
	stored, _ := service.GetByID(ctx, user.ID)
	assert.Equal(t, "Lyon", stored.City, "a failed update writes nothing")

	_, err = service.UpdateProfile(ctx, user.ID, services.ProfileUpdate{OldPassword: strPtr("wrong"), NewPassword: strPtr("Q@ss5678")})
	assert.ErrorIs(t, err, services.ErrIncorrectPassword)

	_, err = service.UpdateProfile(ctx, user.ID, services.ProfileUpdate{NewPassword: strPtr("Q@ss5678")})
	assert.ErrorIs(t, err, services.ErrIncorrectPassword, "old password is required")

	_, err = service.UpdateProfile(ctx, user.ID, services.ProfileUpdate{
		OldPassword: strPtr("P@ss1234"), NewPassword: strPtr("Q@ss5678"), ConfirmPassword: strPtr("Q@ss0000"),
	})
	assert.ErrorIs(t, err, services.ErrPasswordMismatch)

	_, err = service.UpdateProfile(ctx, user.ID, services.ProfileUpdate{
		OldPassword: strPtr("P@ss1234"), NewPassword: strPtr("Q@ss5678"), RequireConfirmation: true,
	})
	assert.ErrorIs(t, err, services.ErrPasswordMismatch, "confirmation demanded but missing")

	_, err = service.UpdateProfile(ctx, user.ID, services.ProfileUpdate{
		Email: strPtr("new@x.com"), OldPassword: strPtr("P@ss1234"), NewPassword: strPtr("Q@ss5678"),
	})
	require.NoError(t, err)

	_, err = service.Verify(ctx, "new@x.com", "P@ss1234")
	assert.ErrorIs(t, err, services.ErrInvalidCredentials)
	_, err = service.Verify(ctx, "new@x.com", "Q@ss5678")
	assert.NoError(t, err)

	_, err = service.UpdateProfile(ctx, "missing", services.ProfileUpdate{})
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestUserService_Promote(t *testing.T) {
	ctx := context.Background()
	service := services.NewUserService(repositories.NewMockUserRepository(), bcrypt.MinCost, quietLogger())

	user, err := service.Register(ctx, services.RegisterInput{Email: "a@x.com", Password: "pw"})
	require.NoError(t, err)

	require.NoError(t, service.Promote(ctx, user.ID))
	require.NoError(t, service.Promote(ctx, user.ID), "promoting an admin is a no-op")

	stored, err := service.GetByEmail(ctx, "a@x.com")
	require.NoError(t, err)
	assert.True(t, stored.IsAdmin())

	assert.ErrorIs(t, service.Promote(ctx, "missing"), services.ErrUserNotFound)
}
