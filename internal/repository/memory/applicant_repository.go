package memory

import (
	"context"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
)

type ApplicantRepository struct {
	s *Store
}

func (r *ApplicantRepository) Create(_ context.Context, a applicant.Applicant) (*applicant.Applicant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	jp, ok := r.s.joinPrograms.get(a.JoinProgramID)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "join program or user not found", nil)
	}
	if _, ok := r.s.users.get(a.UserID); !ok {
		return nil, common.NewError(common.CodeNotFound, "join program or user not found", nil)
	}
	for _, existing := range r.s.applicants.rows {
		if existing.JoinProgramID == a.JoinProgramID && existing.UserID == a.UserID {
			return nil, common.NewError(common.CodeDuplicate, "join request already exists", applicant.ErrDuplicateRequest)
		}
	}
	a.ID = common.NewUUID()
	now := time.Now().UTC()
	a.JoinedAt = now
	a.UpdatedAt = now
	r.s.applicants.insert(a.ID, r.s.nextSeq(), a)
	jp.JoinedApplicants++
	r.s.joinPrograms.set(jp.ID, jp)
	return &a, nil
}

func (r *ApplicantRepository) GetByID(_ context.Context, id common.UUID) (*applicant.Applicant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applicants.get(id)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "join request not found", nil)
	}
	return &a, nil
}

func (r *ApplicantRepository) List(_ context.Context) ([]applicant.Applicant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.applicants.filter(nil, true), nil
}

func (r *ApplicantRepository) ListByJoinProgram(_ context.Context, joinProgramID common.UUID) ([]applicant.Applicant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.applicants.filter(func(a applicant.Applicant) bool { return a.JoinProgramID == joinProgramID }, true), nil
}

func (r *ApplicantRepository) ListByUser(_ context.Context, userID common.UUID) ([]applicant.Applicant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.applicants.filter(func(a applicant.Applicant) bool { return a.UserID == userID }, true), nil
}

func (r *ApplicantRepository) UpdateStatus(_ context.Context, id common.UUID, status applicant.RequestStatus) (*applicant.Applicant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.applicants.get(id)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "join request not found", nil)
	}
	a.Status = status
	a.UpdatedAt = time.Now().UTC()
	r.s.applicants.set(id, a)
	return &a, nil
}

func (r *ApplicantRepository) Delete(_ context.Context, id common.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.applicants.get(id); !ok {
		return common.NewError(common.CodeNotFound, "join request not found", nil)
	}
	r.s.applicants.remove(id)
	return nil
}
