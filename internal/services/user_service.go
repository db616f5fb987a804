package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/Arlan-Askar/Messenger_Hub/internal/domain"
	"github.com/Arlan-Askar/Messenger_Hub/internal/models"
	"golang.org/x/crypto/bcrypt"
)

// UserStore is the identity collaborator's storage contract. The messaging
// engines depend on it only to resolve ids into display names.
type UserStore interface {
	CreateUser(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	SearchUsers(ctx context.Context, query, excludeID string) ([]models.User, error)
}

// UserService is the identity collaborator: account registration, login and
// user lookup. It sits outside the messaging core and only supplies trusted
// user identifiers to it.
type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// RegisterUser creates an account with a bcrypt-hashed password.
func (s *UserService) RegisterUser(ctx context.Context, email, password, name string) (*models.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	name = strings.TrimSpace(name)
	if email == "" || password == "" || name == "" {
		return nil, fmt.Errorf("%w: email, password and name are required", domain.ErrValidation)
	}

	if existing, _ := s.users.GetUserByEmail(ctx, email); existing != nil {
		return nil, fmt.Errorf("%w: email already registered", domain.ErrConflict)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %v", err)
	}

	user := &models.User{
		Email:          email,
		Name:           name,
		HashedPassword: string(hashed),
	}
	return s.users.CreateUser(ctx, user)
}

// AuthenticateUser verifies credentials and returns the account.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		return nil, fmt.Errorf("%w: invalid email or password", domain.ErrUnauthorized)
	}
	return user, nil
}

// GetUser resolves a user id.
func (s *UserService) GetUser(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetUserByID(ctx, id)
}

// SearchUsers finds users by name or email fragment, excluding the caller.
func (s *UserService) SearchUsers(ctx context.Context, query, callerID string) ([]models.PublicUser, error) {
	users, err := s.users.SearchUsers(ctx, query, callerID)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %v", err)
	}

	results := make([]models.PublicUser, 0, len(users))
	for i := range users {
		results = append(results, users[i].Public())
	}
	return results, nil
}
