package app

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/user"
)

const minPasswordLength = 8

type TokenIssuer interface {
	Generate(userID common.UUID, role user.Role, ttl time.Duration) (string, time.Time, error)
}

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

type AuthService struct {
	users    user.Repository
	tokens   TokenIssuer
	hasher   PasswordHasher
	tokenTTL time.Duration
}

func NewAuthService(users user.Repository, tokens TokenIssuer, hasher PasswordHasher, tokenTTL time.Duration) *AuthService {
	return &AuthService{users: users, tokens: tokens, hasher: hasher, tokenTTL: tokenTTL}
}

type RegisterInput struct {
	Email           string
	Password        string
	ConfirmPassword string
	FirstName       string
	LastName        string
}

type AuthResult struct {
	AccessToken string     `json:"access_token"`
	ExpiresAt   time.Time  `json:"expires_at"`
	User        *user.User `json:"user"`
}

func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*user.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	fields := map[string]string{}
	if _, err := mail.ParseAddress(email); err != nil {
		fields["email"] = "valid email is required"
	}
	if len(in.Password) < minPasswordLength {
		fields["password"] = "password must be at least 8 characters"
	} else if in.Password != in.ConfirmPassword {
		fields["confirm_password"] = "passwords do not match"
	}
	if len(fields) > 0 {
		return nil, common.NewValidationError("invalid registration", fields)
	}
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to hash password", err)
	}
	return s.users.Create(ctx, user.User{
		Email:        email,
		PasswordHash: hash,
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Role:         user.RoleStandard,
	})
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil, errInvalidCredentials()
		}
		return nil, err
	}
	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, errInvalidCredentials()
	}
	token, expiresAt, err := s.tokens.Generate(u.ID, u.Role, s.tokenTTL)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to issue token", err)
	}
	return &AuthResult{AccessToken: token, ExpiresAt: expiresAt, User: u}, nil
}

func errInvalidCredentials() error {
	return common.NewError(common.CodeUnauthorized, "invalid email or password", errors.New("invalid credentials"))
}
