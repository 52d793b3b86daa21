package app

import (
	"context"
	"strings"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
	"accelerator/internal/domain/evaluation"
	"accelerator/internal/observability"
)

type EvaluationService struct {
	evaluations evaluation.Repository
	responses   applicant.ResponseRepository
	logger      Logger
}

func NewEvaluationService(evaluations evaluation.Repository, responses applicant.ResponseRepository, logger Logger) *EvaluationService {
	return &EvaluationService{evaluations: evaluations, responses: responses, logger: loggerOrNop(logger)}
}

type EvaluationInput struct {
	ResponseID  common.UUID
	Kind        string
	Status      string
	Description string
}

type EvaluationPatch struct {
	Kind        *string
	Status      *string
	Description *string
}

// Submit records authorID's verdict on a response. Accepted and rejected
// verdicts are copied onto the response status in the same write, except that
// a draft never overrides a final verdict already given on the response.
func (s *EvaluationService) Submit(ctx context.Context, authorID common.UUID, in EvaluationInput) (*evaluation.Evaluation, error) {
	kind, status, err := checkVerdict(evaluation.NormalizeKind(in.Kind), evaluation.NormalizeStatus(in.Status))
	if err != nil {
		return nil, err
	}
	if _, err := s.responses.GetByID(ctx, in.ResponseID); err != nil {
		return nil, err
	}
	e := evaluation.Evaluation{
		AuthorID:    authorID,
		ResponseID:  in.ResponseID,
		Kind:        kind,
		Status:      status,
		Description: strings.TrimSpace(in.Description),
	}
	others, err := s.evaluations.ListByResponse(ctx, in.ResponseID)
	if err != nil {
		return nil, err
	}
	writeBack := evaluation.WriteBack(e, others)
	created, err := s.evaluations.Create(ctx, e, writeBack)
	if err != nil {
		return nil, err
	}
	s.recordEvaluation(ctx, *created, writeBack)
	return created, nil
}

// Update changes an evaluation owned by authorID and repeats the write-back.
// A final evaluation stays final.
func (s *EvaluationService) Update(ctx context.Context, authorID, id common.UUID, patch EvaluationPatch) (*evaluation.Evaluation, error) {
	current, err := s.evaluations.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.AuthorID != authorID {
		return nil, common.NewError(common.CodeForbidden, evaluation.ErrNotAuthor.Error(), evaluation.ErrNotAuthor)
	}
	kind, status := current.Kind, current.Status
	if patch.Kind != nil {
		kind = evaluation.NormalizeKind(*patch.Kind)
	}
	if patch.Status != nil {
		status = evaluation.NormalizeStatus(*patch.Status)
	}
	kind, status, err = checkVerdict(kind, status)
	if err != nil {
		return nil, err
	}
	if current.Kind == evaluation.KindFinal && kind != evaluation.KindFinal {
		return nil, &common.Error{
			Code:    common.CodeValidation,
			Message: evaluation.ErrFinalDowngrade.Error(),
			Fields:  map[string]string{"kind": "final evaluation cannot become a draft"},
			Err:     evaluation.ErrFinalDowngrade,
		}
	}
	current.Kind = kind
	current.Status = status
	if patch.Description != nil {
		current.Description = strings.TrimSpace(*patch.Description)
	}
	others, err := s.evaluations.ListByResponse(ctx, current.ResponseID)
	if err != nil {
		return nil, err
	}
	writeBack := evaluation.WriteBack(*current, others)
	updated, err := s.evaluations.Update(ctx, *current, writeBack)
	if err != nil {
		return nil, err
	}
	s.recordEvaluation(ctx, *updated, writeBack)
	return updated, nil
}

func (s *EvaluationService) Get(ctx context.Context, id common.UUID) (*evaluation.Evaluation, error) {
	return s.evaluations.GetByID(ctx, id)
}

// List returns every evaluation, or those of one response when responseID is set.
func (s *EvaluationService) List(ctx context.Context, responseID common.UUID) ([]evaluation.Evaluation, error) {
	if responseID.IsZero() {
		return s.evaluations.List(ctx)
	}
	return s.evaluations.ListByResponse(ctx, responseID)
}

func (s *EvaluationService) recordEvaluation(ctx context.Context, e evaluation.Evaluation, writeBack *applicant.ResponseStatus) {
	observability.RecordEvaluation(ctx, string(e.Kind), string(e.Status))
	if writeBack == nil {
		s.logger.Info("response evaluated", "response_id", e.ResponseID, "evaluation_id", e.ID, "kind", e.Kind, "status_kept", true)
		return
	}
	s.logger.Info("response evaluated", "response_id", e.ResponseID, "evaluation_id", e.ID, "kind", e.Kind, "status", *writeBack)
}

func checkVerdict(kind evaluation.Kind, status evaluation.Status) (evaluation.Kind, evaluation.Status, error) {
	fields := map[string]string{}
	if !kind.Valid() {
		fields["kind"] = "kind must be draft or final"
	}
	if !status.Valid() {
		fields["status"] = "status must be one of none, accepted, maybe, rejected"
	}
	if len(fields) > 0 {
		return "", "", common.NewValidationError("invalid evaluation", fields)
	}
	if !kind.Allows(status) {
		return "", "", &common.Error{
			Code:    common.CodeValidation,
			Message: evaluation.ErrUnresolvedFinal.Error(),
			Fields:  map[string]string{"status": "final evaluation must be accepted or rejected"},
			Err:     evaluation.ErrUnresolvedFinal,
		}
	}
	return kind, status, nil
}
