package memory

import (
	"context"
	"strings"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/user"
)

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Create(_ context.Context, u user.User) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	for _, existing := range r.s.users.rows {
		if existing.Email == u.Email {
			return nil, common.NewValidationError("account with this email already exists", map[string]string{"email": "already registered"})
		}
	}
	u.ID = common.NewUUID()
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	r.s.users.insert(u.ID, r.s.nextSeq(), u)
	return &u, nil
}

func (r *UserRepository) GetByID(_ context.Context, id common.UUID) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users.get(id)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(_ context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	email = strings.ToLower(strings.TrimSpace(email))
	for _, u := range r.s.users.rows {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "user not found", nil)
}

func (r *UserRepository) SetRole(_ context.Context, id common.UUID, role user.Role) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users.get(id)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "user not found", nil)
	}
	u.Role = role
	u.UpdatedAt = time.Now().UTC()
	r.s.users.set(id, u)
	return &u, nil
}
