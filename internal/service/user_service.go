// Package service implements the application's business logic on top of the
// repository layer.
package service

import (
	"context"
	"encoding/json"

	"ripple/internal/cache"
	"ripple/internal/models"
	"ripple/internal/repository"
	"ripple/internal/validation"

	"golang.org/x/crypto/bcrypt"
)

const maxBioLength = 500

// ProfileUpdate carries the mutable profile fields. Nil pointers leave the
// current value unchanged.
type ProfileUpdate struct {
	Bio        *string
	PictureRef *string
	IsPrivate  *bool
}

// UserService handles account and profile operations.
type UserService struct {
	users    repository.UserRepository
	profiles repository.ProfileRepository
}

// NewUserService creates a new user service
func NewUserService(users repository.UserRepository, profiles repository.ProfileRepository) *UserService {
	return &UserService{users: users, profiles: profiles}
}

// Register creates a new account. Username and email uniqueness is enforced
// by the database constraint, not a pre-check, so concurrent registrations
// cannot slip past it.
func (s *UserService) Register(ctx context.Context, username, email, password, confirmPassword string) (*models.User, error) {
	if err := validation.ValidateUsername(username); err != nil {
		return nil, err
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	if password != confirmPassword {
		return nil, models.NewValidationError("Passwords do not match")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	user := &models.User{
		Username: username,
		Email:    email,
		Password: string(hashed),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// Authenticate verifies the email/password pair. The error is identical for
// an unknown email and a wrong password.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, models.NewUnauthorizedError("Invalid credentials")
	}
	return user, nil
}

// GetUser returns a user by ID, consulting the Redis cache first.
func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	key := cache.UserKey(id)
	if client := cache.GetClient(); client != nil {
		if data, err := client.Get(ctx, key).Bytes(); err == nil {
			var cached models.User
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if client := cache.GetClient(); client != nil {
		if data, err := json.Marshal(user); err == nil {
			client.Set(ctx, key, data, cache.UserTTL)
		}
	}
	return user, nil
}

// GetOrCreateProfile returns the user's profile, provisioning the row on
// first access.
func (s *UserService) GetOrCreateProfile(ctx context.Context, userID uint) (*models.Profile, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, err
	}
	return s.profiles.GetOrCreate(ctx, userID)
}

// UpdateProfile applies the given changes to the caller's own profile.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, upd ProfileUpdate) (*models.Profile, error) {
	profile, err := s.GetOrCreateProfile(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Bio != nil {
		if len(*upd.Bio) > maxBioLength {
			return nil, models.NewValidationError("Bio must be at most 500 characters")
		}
		profile.Bio = *upd.Bio
	}
	if upd.PictureRef != nil {
		profile.PictureRef = *upd.PictureRef
	}
	if upd.IsPrivate != nil {
		profile.IsPrivate = *upd.IsPrivate
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	cache.InvalidateUser(ctx, userID)
	return profile, nil
}

// SearchUsers finds users whose username contains the query, case-insensitive.
func (s *UserService) SearchUsers(ctx context.Context, query string, limit, offset int) ([]models.User, error) {
	if query == "" {
		return nil, models.NewValidationError("Search query cannot be empty")
	}
	return s.users.Search(ctx, query, limit, offset)
}
