package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/bookshelf/bookshelf-go/internal/crypto"
	"github.com/bookshelf/bookshelf-go/internal/model"
	"github.com/bookshelf/bookshelf-go/internal/repository"
)

var (
	// ErrUnauthenticated is returned by identity-gated operations called without a verified identity.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials covers both an unknown email and a wrong password.
	ErrInvalidCredentials = fmt.Errorf("%w: incorrect credentials", ErrUnauthenticated)

	ErrUsernameRequired = errors.New("username is required")
	ErrEmailRequired    = errors.New("email is required")
	ErrPasswordRequired = errors.New("password is required")
	ErrAccountTaken     = errors.New("email or username already taken")
)

// UserStore persists users and their saved books. PushSavedBook and
// PullSavedBook must each be a single atomic update of one user.
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	GetByID(ctx context.Context, id string) (*model.User, error)
	PushSavedBook(ctx context.Context, userID string, book model.SavedBook) (*model.User, error)
	PullSavedBook(ctx context.Context, userID, bookID string) (*model.User, error)
}

// AuthService handles signup and login.
type AuthService struct {
	store  UserStore
	tokens *crypto.TokenService
}

// NewAuthService creates a new AuthService.
func NewAuthService(store UserStore, tokens *crypto.TokenService) *AuthService {
	return &AuthService{
		store:  store,
		tokens: tokens,
	}
}

// AddUser creates a new account and returns an auth token.
func (s *AuthService) AddUser(ctx context.Context, req model.CreateUserRequest) (model.AuthResponse, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)

	if req.Username == "" {
		return model.AuthResponse{}, ErrUsernameRequired
	}
	if req.Email == "" {
		return model.AuthResponse{}, ErrEmailRequired
	}
	if req.Password == "" {
		return model.AuthResponse{}, ErrPasswordRequired
	}

	hash, err := crypto.HashPassword(req.Password)
	if err != nil {
		return model.AuthResponse{}, err
	}

	user := &model.User{
		Email:        req.Email,
		Username:     req.Username,
		PasswordHash: hash,
	}

	if err := s.store.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateUser) {
			return model.AuthResponse{}, ErrAccountTaken
		}
		return model.AuthResponse{}, err
	}

	return s.authResponse(user)
}

// Login authenticates a user and returns an auth token.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest) (model.AuthResponse, error) {
	user, err := s.store.GetByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Spend the same hashing time as a real comparison.
			crypto.VerifyPassword(req.Password, dummyDigest())
			return model.AuthResponse{}, ErrInvalidCredentials
		}
		return model.AuthResponse{}, err
	}

	if !crypto.VerifyPassword(req.Password, user.PasswordHash) {
		return model.AuthResponse{}, ErrInvalidCredentials
	}

	return s.authResponse(user)
}

func (s *AuthService) authResponse(user *model.User) (model.AuthResponse, error) {
	token, err := s.tokens.Issue(user.Identity())
	if err != nil {
		return model.AuthResponse{}, err
	}

	return model.AuthResponse{
		Token: token,
		User:  model.NewUserResponse(user),
	}, nil
}

var (
	dummyOnce sync.Once
	dummyHash string
)

func dummyDigest() string {
	dummyOnce.Do(func() {
		dummyHash, _ = crypto.HashPassword("bookshelf-dummy-password")
	})
	return dummyHash
}
