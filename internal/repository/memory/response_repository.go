package memory

import (
	"context"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
)

type ResponseRepository struct {
	s *Store
}

func (r *ResponseRepository) Create(_ context.Context, resp applicant.Response) (*applicant.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stages.get(resp.StageID); !ok {
		return nil, common.NewError(common.CodeNotFound, "stage or direction not found", nil)
	}
	if _, ok := r.s.directions.get(resp.DirectionID); !ok {
		return nil, common.NewError(common.CodeNotFound, "stage or direction not found", nil)
	}
	for _, existing := range r.s.responses.rows {
		if existing.UserID == resp.UserID && existing.StageID == resp.StageID {
			return nil, common.NewError(common.CodeDuplicate, "response for this stage already exists", applicant.ErrDuplicateResponse)
		}
	}
	resp.ID = common.NewUUID()
	now := time.Now().UTC()
	resp.CreatedAt = now
	resp.UpdatedAt = now
	r.s.responses.insert(resp.ID, r.s.nextSeq(), resp)
	return &resp, nil
}

func (r *ResponseRepository) GetByID(_ context.Context, id common.UUID) (*applicant.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	resp, ok := r.s.responses.get(id)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "response not found", nil)
	}
	return &resp, nil
}

func (r *ResponseRepository) List(_ context.Context) ([]applicant.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.responses.filter(nil, true), nil
}

func (r *ResponseRepository) ListByUser(_ context.Context, userID common.UUID) ([]applicant.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.responses.filter(func(resp applicant.Response) bool { return resp.UserID == userID }, true), nil
}

func (r *ResponseRepository) UpdateStatus(_ context.Context, id common.UUID, status applicant.ResponseStatus) (*applicant.Response, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.responses.get(id); !ok {
		return nil, common.NewError(common.CodeNotFound, "response not found", nil)
	}
	if err := checkResponseStatus(&status); err != nil {
		return nil, err
	}
	r.s.setResponseStatus(id, &status, time.Now().UTC())
	resp, _ := r.s.responses.get(id)
	return &resp, nil
}

func (r *ResponseRepository) HasRejectedInActivePrograms(_ context.Context, userID common.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	joined := map[common.UUID]bool{}
	for _, a := range r.s.applicants.rows {
		if a.UserID != userID {
			continue
		}
		jp, ok := r.s.joinPrograms.get(a.JoinProgramID)
		if !ok {
			continue
		}
		if p, ok := r.s.programs.get(jp.ProgramID); ok && p.Active {
			joined[jp.ID] = true
		}
	}
	for _, resp := range r.s.responses.rows {
		if resp.UserID != userID || resp.Status != applicant.ResponseRejected {
			continue
		}
		for _, o := range r.s.orderedStages.rows {
			if o.StageID == resp.StageID && joined[o.JoinProgramID] {
				return true, nil
			}
		}
	}
	return false, nil
}

// deleteResponse cascades to evaluations.
func (s *Store) deleteResponse(id common.UUID) {
	for eID, e := range s.evaluations.rows {
		if e.ResponseID == id {
			s.evaluations.remove(eID)
		}
	}
	s.responses.remove(id)
}

// setResponseStatus runs with s.mu held. A nil status is a no-op.
func (s *Store) setResponseStatus(id common.UUID, status *applicant.ResponseStatus, at time.Time) {
	if status == nil {
		return
	}
	resp, ok := s.responses.get(id)
	if !ok {
		return
	}
	resp.Status = *status
	resp.UpdatedAt = at
	s.responses.set(id, resp)
}
