package user

import (
	"context"
	"errors"
	"time"

	"bookstore/internal/auth"
)

// ErrInvalidCredentials is returned on login with a bad username or password.
var ErrInvalidCredentials = errors.New("invalid username or password")

const accessTokenTTL = 24 * time.Hour

type Service struct {
	repo   Repository
	secret string
}

func NewService(repo Repository, secret string) *Service {
	return &Service{repo: repo, secret: secret}
}

func (s *Service) Register(ctx context.Context, username, password, firstName, lastName string) (User, error) {
	if err := auth.ValidatePasswordStrength(password); err != nil {
		return User{}, err
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return User{}, err
	}

	return s.repo.Create(ctx, NewUser{
		Username:     username,
		PasswordHash: hash,
		FirstName:    firstName,
		LastName:     lastName,
	})
}

// Login verifies credentials and issues a signed access token.
// The expiry is returned in seconds.
func (s *Service) Login(ctx context.Context, username, password string) (string, int, error) {
	u, err := s.repo.GetByUsername(ctx, username)
	if err != nil || !auth.VerifyPassword(u.PasswordHash, password) {
		return "", 0, ErrInvalidCredentials
	}

	token, _, err := auth.GenerateToken(s.secret, u.ID, u.IsStaff, accessTokenTTL)
	if err != nil {
		return "", 0, err
	}
	return token, int(accessTokenTTL.Seconds()), nil
}

func (s *Service) Get(ctx context.Context, id int64) (User, error) {
	return s.repo.GetByID(ctx, id)
}
