package services

import (
	"context"
	"errors"
	"strings"

	"github.com/emberwick/storefront/app/models"
	"github.com/emberwick/storefront/app/store"
	"github.com/emberwick/storefront/pkg/auth"
)

// ErrInvalidCredentials is returned for every failed login, whether the
// email is unknown or the password is wrong. Callers must not distinguish
// the two cases; doing so would let an attacker probe which emails have
// accounts.
var ErrInvalidCredentials = errors.New("invalid credentials")

// RegisterInput is the payload for creating an account.
type RegisterInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// AuthService registers and authenticates users.
type AuthService struct {
	store store.Store
}

func NewAuthService(s store.Store) *AuthService {
	return &AuthService{store: s}
}

// Register creates a new account with a bcrypt-hashed password. Returns
// store.ErrConflict when the email is already registered.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (models.User, error) {
	in.Email = strings.TrimSpace(strings.ToLower(in.Email))
	if in.Email == "" || !strings.Contains(in.Email, "@") {
		return models.User{}, store.Validationf("a valid email is required")
	}
	if len(in.Password) < 6 {
		return models.User{}, store.Validationf("password must be at least 6 characters")
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}

	user := models.User{
		Email:     in.Email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	if err := s.store.CreateUser(ctx, &user); err != nil {
		return models.User{}, err
	}
	return user, nil
}

// Login verifies the credentials and returns the user together with a
// signed bearer token. Unknown email and wrong password both yield
// ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password string) (models.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.store.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return models.User{}, "", ErrInvalidCredentials
		}
		return models.User{}, "", err
	}

	if !auth.CheckPassword(user.Password, password) {
		return models.User{}, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken(user.ID, "customer")
	if err != nil {
		return models.User{}, "", err
	}
	return user, token, nil
}

// User loads the account behind an authenticated request.
func (s *AuthService) User(ctx context.Context, id uint) (models.User, error) {
	return s.store.UserByID(ctx, id)
}
