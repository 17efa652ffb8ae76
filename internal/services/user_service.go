package services

import (
	"context"
	"errors"
	"fmt"

	"storefront/internal/models"
	"storefront/internal/repositories"

	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email        string
	Password     string
	FirstName    string
	LastName     string
	DisplayName  string
	DateOfBirth  string
	AddressLine1 string
	AddressLine2 string
	City         string
	State        string
	ZipCode      string
	Country      string
	PhoneNumber  string
}

// ProfileUpdate is a partial update: nil fields are left unchanged.
// A password change is requested by setting NewPassword or ConfirmPassword.
type ProfileUpdate struct {
	Email        *string
	FirstName    *string
	LastName     *string
	DisplayName  *string
	DateOfBirth  *string
	AddressLine1 *string
	AddressLine2 *string
	City         *string
	State        *string
	ZipCode      *string
	Country      *string
	PhoneNumber  *string

	OldPassword     *string
	NewPassword     *string
	ConfirmPassword *string

	// RequireConfirmation rejects a password change without ConfirmPassword.
	RequireConfirmation bool
}

// UserService is the credential store: it owns password hashing and every
// write to user records.
type UserService struct {
	repo      repositories.UserRepository
	cost      int
	dummyHash []byte
	log       logrus.FieldLogger
}

// NewUserService creates a UserService hashing with the given bcrypt cost.
func NewUserService(repo repositories.UserRepository, cost int, log logrus.FieldLogger) *UserService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	// Compared against on unknown emails so both failure paths pay for one bcrypt run.
	dummy, _ := bcrypt.GenerateFromPassword([]byte("storefront-unknown-user"), cost)
	return &UserService{
		repo:      repo,
		cost:      cost,
		dummyHash: dummy,
		log:       log,
	}
}

func (s *UserService) hash(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword reports whether password matches the user's stored hash.
func CheckPassword(user *models.User, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil
}

// Register creates a user with role "user". The lookup below only gives a
// friendly early answer; concurrent registrations are settled by the
// repository's uniqueness guarantee.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	if in.Email == "" {
		return nil, ErrEmailRequired
	}
	if in.Password == "" {
		return nil, ErrPasswordRequired
	}

	if _, err := s.repo.GetByEmail(ctx, in.Email); err == nil {
		return nil, ErrDuplicateEmail
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		Email:        in.Email,
		PasswordHash: hashed,
		Role:         models.RoleUser,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		DisplayName:  in.DisplayName,
		DateOfBirth:  in.DateOfBirth,
		AddressLine1: in.AddressLine1,
		AddressLine2: in.AddressLine2,
		City:         in.City,
		State:        in.State,
		ZipCode:      in.ZipCode,
		Country:      in.Country,
		PhoneNumber:  in.PhoneNumber,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, ErrDuplicateEmail
		}
		return nil, fmt.Errorf("failed to register user: %w", err)
	}

	s.log.WithField("user_id", user.ID).Info("user registered")
	return user, nil
}

// Verify returns the user owning email if password matches. An unknown email
// and a wrong password both yield ErrInvalidCredentials.
func (s *UserService) Verify(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if !CheckPassword(user, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// GetByID returns the user with id.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetByEmail returns the user registered with email.
func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateProfile applies a partial update. Every check runs before the single
// write, so a failing field leaves the stored user untouched.
func (s *UserService) UpdateProfile(ctx context.Context, userID string, upd ProfileUpdate) (*models.User, error) {
	current, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	updated := *current

	if upd.Email != nil && *upd.Email != current.Email {
		if *upd.Email == "" {
			return nil, ErrEmailRequired
		}
		if _, err := s.repo.GetByEmail(ctx, *upd.Email); err == nil {
			return nil, ErrDuplicateEmail
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, fmt.Errorf("failed to check email: %w", err)
		}
		updated.Email = *upd.Email
	}

	assign(&updated.FirstName, upd.FirstName)
	assign(&updated.LastName, upd.LastName)
	assign(&updated.DisplayName, upd.DisplayName)
	assign(&updated.DateOfBirth, upd.DateOfBirth)
	assign(&updated.AddressLine1, upd.AddressLine1)
	assign(&updated.AddressLine2, upd.AddressLine2)
	assign(&updated.City, upd.City)
	assign(&updated.State, upd.State)
	assign(&updated.ZipCode, upd.ZipCode)
	assign(&updated.Country, upd.Country)
	assign(&updated.PhoneNumber, upd.PhoneNumber)

	if upd.NewPassword != nil || upd.ConfirmPassword != nil {
		if upd.OldPassword == nil || !CheckPassword(current, *upd.OldPassword) {
			return nil, ErrIncorrectPassword
		}
		if upd.NewPassword == nil || *upd.NewPassword == "" {
			return nil, ErrPasswordRequired
		}
		if upd.ConfirmPassword == nil && upd.RequireConfirmation {
			return nil, ErrPasswordMismatch
		}
		if upd.ConfirmPassword != nil && *upd.ConfirmPassword != *upd.NewPassword {
			return nil, ErrPasswordMismatch
		}
		hashed, err := s.hash(*upd.NewPassword)
		if err != nil {
			return nil, err
		}
		updated.PasswordHash = hashed
	}

	if err := s.repo.Update(ctx, &updated); err != nil {
		switch {
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return nil, ErrDuplicateEmail
		case errors.Is(err, repositories.ErrNotFound):
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}

	s.log.WithField("user_id", userID).Info("profile updated")
	return &updated, nil
}

// Promote grants the admin role. There is no inverse operation.
func (s *UserService) Promote(ctx context.Context, userID string) error {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return err
	}
	if user.IsAdmin() {
		return nil
	}
	user.Role = models.RoleAdmin
	if err := s.repo.Update(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("failed to promote user %s: %w", userID, err)
	}

	s.log.WithFields(logrus.Fields{"user_id": userID, "email": user.Email}).Warn("user promoted to admin")
	return nil
}

func assign(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}
