package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go-survey-admin/internal/metrics"
	"go-survey-admin/internal/model"
)

// dummyPassword is hashed once at startup so that logins for unknown
// usernames still pay for a bcrypt comparison.
const dummyPassword = "no-such-user-placeholder"

type userLookup interface {
	FindByUsername(ctx context.Context, username string) (model.User, error)
}

type tokenIssuer interface {
	Issue(subjectID int64, username string, role string, ttl time.Duration) (string, error)
}

type AuthService struct {
	users     userLookup
	hasher    PasswordHasher
	tokens    tokenIssuer
	ttl       time.Duration
	dummyHash string
}

func NewAuthService(users userLookup, hasher PasswordHasher, tokens tokenIssuer, ttl time.Duration) (*AuthService, error) {
	dummyHash, err := hasher.Hash(dummyPassword)
	if err != nil {
		return nil, fmt.Errorf("prepare dummy hash: %w", err)
	}

	return &AuthService{
		users:     users,
		hasher:    hasher,
		tokens:    tokens,
		ttl:       ttl,
		dummyHash: dummyHash,
	}, nil
}

// Login verifies the credentials and issues a token carrying the user's
// current role. Unknown users and wrong passwords fail identically.
func (s *AuthService) Login(ctx context.Context, username string, password string) (model.LoginResponse, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, model.ErrUserNotFound) {
			metrics.LoginsTotal.WithLabelValues("error").Inc()
			return model.LoginResponse{}, fmt.Errorf("login lookup: %w", err)
		}
		_ = s.hasher.Compare(s.dummyHash, password)
		metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
		return model.LoginResponse{}, model.ErrInvalidCredentials
	}

	if err := s.hasher.Compare(user.PasswordHash, password); err != nil {
		if errors.Is(err, model.ErrInvalidPassword) {
			metrics.LoginsTotal.WithLabelValues("invalid_credentials").Inc()
			return model.LoginResponse{}, model.ErrInvalidCredentials
		}
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return model.LoginResponse{}, err
	}

	token, err := s.tokens.Issue(user.ID, user.Username, user.Role.Name, s.ttl)
	if err != nil {
		metrics.LoginsTotal.WithLabelValues("error").Inc()
		return model.LoginResponse{}, err
	}

	metrics.LoginsTotal.WithLabelValues("success").Inc()
	return model.LoginResponse{
		Token:    token,
		Role:     user.Role.Name,
		Email:    user.Email,
		FullName: user.FullName,
	}, nil
}

func (s *AuthService) FindByUsername(ctx context.Context, username string) (model.UserResponse, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return model.UserResponse{}, err
	}
	return user.Response(), nil
}

// LoadIdentity rebuilds the request identity from the username carried
// by a verified token.
func (s *AuthService) LoadIdentity(ctx context.Context, username string) (model.Identity, error) {
	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return model.Identity{}, err
	}
	return user.Identity(), nil
}
