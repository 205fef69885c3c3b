package service

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/sumire/tracker/internal/domain"
)

// UserService handles the user directory and admin user management.
type UserService struct {
	users UserStore
}

// NewUserService creates a new UserService.
func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// CreateUserInput is the allowed field set for admin user creation.
type CreateUserInput struct {
	Name     string
	Email    string
	Password string
	Role     domain.Role
}

// UpdateUserInput is the allowed field set for admin user updates. Any
// subset may be supplied; a password is rehashed when present. There is no
// guard against demoting the last admin.
type UpdateUserInput struct {
	Name     *string
	Password *string
	Role     *domain.Role
}

// Directory returns the minimal public view of all users, ordered by name.
// Available to any authenticated user for assignee pickers.
func (s *UserService) Directory(ctx context.Context) ([]domain.UserSummary, error) {
	return s.users.ListSummaries(ctx)
}

// List returns all users, newest first.
func (s *UserService) List(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

// Create stores a new user with a bcrypt-hashed password. A duplicate email
// surfaces as a field-level validation error.
func (s *UserService) Create(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, domain.User{
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: string(hash),
		Role:         in.Role,
	})
	if err != nil {
		if errors.Is(err, domain.ErrConflict) {
			return nil, domain.ValidationErrors{"email": {"The email has already been taken."}}
		}
		return nil, err
	}
	return user, nil
}

// Update applies the supplied fields to a user and returns the updated
// record.
func (s *UserService) Update(ctx context.Context, userID int64, in UpdateUserInput) (*domain.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		user.Name = *in.Name
	}
	if in.Role != nil {
		user.Role = *in.Role
	}
	if in.Password != nil {
		hash, err := bcrypt.GenerateFromPassword([]byte(*in.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}

	return s.users.Update(ctx, *user)
}

// Bootstrap creates the initial admin account when the user table is empty.
// It is a no-op when any user already exists.
func (s *UserService) Bootstrap(ctx context.Context, name, email, password string) (bool, error) {
	count, err := s.users.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		return false, nil
	}

	_, err = s.Create(ctx, CreateUserInput{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     domain.RoleAdmin,
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
