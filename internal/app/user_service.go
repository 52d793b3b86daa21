package app

import (
	"context"

	"accelerator/internal/common"
	"accelerator/internal/domain/user"
)

type UserService struct {
	users  user.Repository
	logger Logger
}

func NewUserService(users user.Repository, logger Logger) *UserService {
	return &UserService{users: users, logger: loggerOrNop(logger)}
}

func (s *UserService) Get(ctx context.Context, id common.UUID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

func (s *UserService) SetRole(ctx context.Context, id common.UUID, role string) (*user.User, error) {
	normalized := user.NormalizeRole(role)
	if !normalized.Valid() {
		return nil, common.NewValidationError("invalid role", map[string]string{"role": "must be one of standard, staff-acceleration, staff-direction, admin"})
	}
	updated, err := s.users.SetRole(ctx, id, normalized)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user role changed", "user_id", updated.ID, "role", updated.Role)
	return updated, nil
}

func (s *UserService) SetRoleByEmail(ctx context.Context, email, role string) (*user.User, error) {
	u, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	return s.SetRole(ctx, u.ID, role)
}
