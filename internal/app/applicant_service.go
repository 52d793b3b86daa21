package app

import (
	"context"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
	"accelerator/internal/domain/program"
	"accelerator/internal/observability"
)

type ApplicantService struct {
	applicants   applicant.Repository
	joinPrograms program.JoinProgramRepository
	programs     program.Repository
	logger       Logger
}

func NewApplicantService(applicants applicant.Repository, joinPrograms program.JoinProgramRepository, programs program.Repository, logger Logger) *ApplicantService {
	return &ApplicantService{applicants: applicants, joinPrograms: joinPrograms, programs: programs, logger: loggerOrNop(logger)}
}

// SubmitJoinRequest registers userID against a join program of an active
// program. The request starts pending.
func (s *ApplicantService) SubmitJoinRequest(ctx context.Context, joinProgramID, userID common.UUID) (*applicant.Applicant, error) {
	jp, err := s.joinPrograms.GetByID(ctx, joinProgramID)
	if err != nil {
		observability.RecordJoinRequest(ctx, "not_found")
		return nil, err
	}
	p, err := s.programs.GetByID(ctx, jp.ProgramID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		observability.RecordJoinRequest(ctx, "inactive")
		return nil, common.NewError(common.CodeValidation, "program registration is closed", nil)
	}
	created, err := s.applicants.Create(ctx, applicant.Applicant{
		JoinProgramID: jp.ID,
		UserID:        userID,
		Status:        applicant.RequestPending,
	})
	if err != nil {
		if common.Is(err, common.CodeDuplicate) {
			observability.RecordJoinRequest(ctx, "duplicate")
		}
		return nil, err
	}
	observability.RecordJoinRequest(ctx, "created")
	return created, nil
}

// UpdateStatus sets the request status. Any transition is allowed.
func (s *ApplicantService) UpdateStatus(ctx context.Context, id common.UUID, status string) (*applicant.Applicant, error) {
	normalized := applicant.NormalizeRequestStatus(status)
	if !normalized.Valid() {
		return nil, common.NewValidationError("invalid request status", map[string]string{"request_status": "must be one of pending, accepted, rejected"})
	}
	updated, err := s.applicants.UpdateStatus(ctx, id, normalized)
	if err != nil {
		return nil, err
	}
	s.logger.Info("join request status changed", "applicant_id", updated.ID, "user_id", updated.UserID, "status", updated.Status)
	return updated, nil
}

func (s *ApplicantService) Get(ctx context.Context, id common.UUID) (*applicant.Applicant, error) {
	return s.applicants.GetByID(ctx, id)
}

// List returns every join request, or those of one join program when joinProgramID is set.
func (s *ApplicantService) List(ctx context.Context, joinProgramID common.UUID) ([]applicant.Applicant, error) {
	if joinProgramID.IsZero() {
		return s.applicants.List(ctx)
	}
	return s.applicants.ListByJoinProgram(ctx, joinProgramID)
}

func (s *ApplicantService) ListByUser(ctx context.Context, userID common.UUID) ([]applicant.Applicant, error) {
	return s.applicants.ListByUser(ctx, userID)
}

func (s *ApplicantService) Withdraw(ctx context.Context, id common.UUID) error {
	return s.applicants.Delete(ctx, id)
}
