package memory

import (
	"context"
	"errors"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
	"accelerator/internal/domain/evaluation"
)

type EvaluationRepository struct {
	s *Store
}

func (r *EvaluationRepository) Create(_ context.Context, e evaluation.Evaluation, responseStatus *applicant.ResponseStatus) (*evaluation.Evaluation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.responses.get(e.ResponseID); !ok {
		return nil, common.NewError(common.CodeNotFound, "response not found", nil)
	}
	for _, existing := range r.s.evaluations.rows {
		if existing.AuthorID == e.AuthorID && existing.ResponseID == e.ResponseID {
			return nil, common.NewError(common.CodeDuplicate, evaluation.ErrAlreadyEvaluated.Error(), evaluation.ErrAlreadyEvaluated)
		}
	}
	if err := checkResponseStatus(responseStatus); err != nil {
		return nil, err
	}
	e.ID = common.NewUUID()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now
	r.s.evaluations.insert(e.ID, r.s.nextSeq(), e)
	r.s.setResponseStatus(e.ResponseID, responseStatus, now)
	return &e, nil
}

func (r *EvaluationRepository) Update(_ context.Context, e evaluation.Evaluation, responseStatus *applicant.ResponseStatus) (*evaluation.Evaluation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.evaluations.get(e.ID)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "evaluation not found", nil)
	}
	if _, ok := r.s.responses.get(existing.ResponseID); !ok {
		return nil, common.NewError(common.CodeNotFound, "response not found", nil)
	}
	if err := checkResponseStatus(responseStatus); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	existing.Kind = e.Kind
	existing.Description = e.Description
	existing.Status = e.Status
	existing.UpdatedAt = now
	r.s.evaluations.set(e.ID, existing)
	r.s.setResponseStatus(existing.ResponseID, responseStatus, now)
	return &existing, nil
}

// checkResponseStatus mirrors the status CHECK constraint of applicant_responses.
func checkResponseStatus(status *applicant.ResponseStatus) error {
	if status != nil && !status.Valid() {
		return common.NewError(common.CodeInternal, "failed to update response", errors.New("invalid response status "+string(*status)))
	}
	return nil
}

func (r *EvaluationRepository) GetByID(_ context.Context, id common.UUID) (*evaluation.Evaluation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	e, ok := r.s.evaluations.get(id)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "evaluation not found", nil)
	}
	return &e, nil
}

func (r *EvaluationRepository) List(_ context.Context) ([]evaluation.Evaluation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.evaluations.filter(nil, true), nil
}

func (r *EvaluationRepository) ListByResponse(_ context.Context, responseID common.UUID) ([]evaluation.Evaluation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.evaluations.filter(func(e evaluation.Evaluation) bool { return e.ResponseID == responseID }, true), nil
}
