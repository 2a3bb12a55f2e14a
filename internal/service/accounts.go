package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/hongminglow/campuslearn-be/internal/auth"
	"github.com/hongminglow/campuslearn-be/internal/models"
	"github.com/hongminglow/campuslearn-be/internal/storage"
)

// bcrypt rejects input past 72 bytes.
const maxPasswordBytes = 72

// RegisterInput is the client-supplied registration form.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     string
}

// AuthService registers users and exchanges credentials for tokens.
type AuthService struct {
	users  storage.UserStore
	tokens *auth.TokenManager
}

// NewAuthService constructs the service.
func NewAuthService(users storage.UserStore, tokens *auth.TokenManager) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register stores a new user with a freshly hashed password.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return models.User{}, validationf("name, email and password are required")
	}
	if !strings.Contains(email, "@") {
		return models.User{}, validationf("email is invalid")
	}
	if !utf8.ValidString(in.Password) {
		return models.User{}, validationf("password must be valid UTF-8")
	}
	if len(in.Password) > maxPasswordBytes {
		return models.User{}, validationf("password must be at most %d bytes", maxPasswordBytes)
	}
	role, err := models.ParseRole(in.Role)
	if err != nil {
		return models.User{}, validationf("%v", err)
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, fmt.Errorf("hash password: %w", err)
	}

	created, err := s.users.CreateUser(ctx, models.User{
		Name:         name,
		Email:        email,
		Role:         role,
		PasswordHash: hash,
	})
	if errors.Is(err, storage.ErrAlreadyExists) {
		return models.User{}, fmt.Errorf("%w: user already exists", ErrConflict)
	}
	if err != nil {
		return models.User{}, fromStore("create user", err, "user not found")
	}
	return created, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return "", models.User{}, validationf("email and password are required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if err != nil {
		return "", models.User{}, fromStore("find user", err, "user not found")
	}
	if !auth.VerifyPassword(password, user.PasswordHash) {
		return "", models.User{}, fmt.Errorf("%w: invalid password", ErrUnauthorized)
	}

	token, err := s.tokens.Generate(user.ID, user.Role)
	if err != nil {
		return "", models.User{}, fmt.Errorf("generate token: %w", err)
	}
	return token, user, nil
}

// CurrentUser loads the profile behind a verified identity.
func (s *AuthService) CurrentUser(ctx context.Context, id auth.Identity) (models.User, error) {
	user, err := s.users.FindUserByID(ctx, id.UserID)
	if err != nil {
		return models.User{}, fromStore("find user", err, "user not found")
	}
	return user, nil
}
