package app

import (
	"context"
	"errors"
	"strings"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
	"accelerator/internal/domain/program"
	"accelerator/internal/domain/stage"
	"accelerator/internal/observability"
)

type ResponseService struct {
	responses    applicant.ResponseRepository
	applicants   applicant.Repository
	joinPrograms program.JoinProgramRepository
	stages       stage.Repository
	ordered      stage.OrderedRepository
}

func NewResponseService(responses applicant.ResponseRepository, applicants applicant.Repository, joinPrograms program.JoinProgramRepository, stages stage.Repository, ordered stage.OrderedRepository) *ResponseService {
	return &ResponseService{responses: responses, applicants: applicants, joinPrograms: joinPrograms, stages: stages, ordered: ordered}
}

// Submit stores the user's answer to a stage once every gate passes. Gates run
// in a fixed order and the first failing one decides the error.
func (s *ResponseService) Submit(ctx context.Context, userID, stageID, directionID common.UUID, text string) (*applicant.Response, error) {
	resp, err := s.submit(ctx, userID, stageID, directionID, text)
	observability.RecordResponseSubmission(ctx, submissionOutcome(err))
	return resp, err
}

func (s *ResponseService) submit(ctx context.Context, userID, stageID, directionID common.UUID, text string) (*applicant.Response, error) {
	records, err := s.applicants.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, gateError(applicant.ErrNotRegistered)
	}

	st, err := s.stages.GetByID(ctx, stageID)
	if err != nil {
		return nil, err
	}
	bindings, err := s.ordered.ListByStage(ctx, st.ID)
	if err != nil {
		return nil, err
	}
	if len(bindings) == 0 {
		return nil, gateError(applicant.ErrStageNotScheduled)
	}

	current := currentJoinRecord(records, bindings)
	switch current.Status {
	case applicant.RequestPending:
		return nil, gateError(applicant.ErrRequestPending)
	case applicant.RequestRejected:
		return nil, gateError(applicant.ErrRequestRejected)
	}

	matched := false
	for _, record := range records {
		jp, err := s.joinPrograms.GetByID(ctx, record.JoinProgramID)
		if err != nil {
			if common.Is(err, common.CodeNotFound) {
				continue
			}
			return nil, err
		}
		if jp.DirectionID == directionID {
			matched = true
			break
		}
	}
	if !matched {
		return nil, gateError(applicant.ErrDirectionMismatch)
	}

	rejected, err := s.responses.HasRejectedInActivePrograms(ctx, userID)
	if err != nil {
		return nil, err
	}
	if rejected {
		return nil, gateError(applicant.ErrPreviouslyRejected)
	}

	return s.responses.Create(ctx, applicant.Response{
		UserID:      userID,
		StageID:     st.ID,
		DirectionID: directionID,
		Text:        strings.TrimSpace(text),
		Status:      applicant.ResponsePending,
	})
}

// currentJoinRecord picks the newest record whose join program schedules the
// stage, falling back to the newest record overall. records is newest first.
func currentJoinRecord(records []applicant.Applicant, bindings []stage.OrderedStage) applicant.Applicant {
	scheduled := make(map[common.UUID]bool, len(bindings))
	for _, b := range bindings {
		scheduled[b.JoinProgramID] = true
	}
	for _, record := range records {
		if scheduled[record.JoinProgramID] {
			return record
		}
	}
	return records[0]
}

func gateError(sentinel error) error {
	return common.NewError(common.CodeValidation, sentinel.Error(), sentinel)
}

var submissionOutcomes = []struct {
	err   error
	label string
}{
	{applicant.ErrNotRegistered, "not_registered"},
	{applicant.ErrStageNotScheduled, "stage_not_scheduled"},
	{applicant.ErrRequestPending, "request_pending"},
	{applicant.ErrRequestRejected, "request_rejected"},
	{applicant.ErrDirectionMismatch, "direction_mismatch"},
	{applicant.ErrPreviouslyRejected, "previously_rejected"},
	{applicant.ErrDuplicateResponse, "duplicate"},
}

func submissionOutcome(err error) string {
	if err == nil {
		return "created"
	}
	for _, o := range submissionOutcomes {
		if errors.Is(err, o.err) {
			return o.label
		}
	}
	return string(common.CodeOf(err))
}

func (s *ResponseService) Get(ctx context.Context, id common.UUID) (*applicant.Response, error) {
	return s.responses.GetByID(ctx, id)
}

func (s *ResponseService) List(ctx context.Context) ([]applicant.Response, error) {
	return s.responses.List(ctx)
}

func (s *ResponseService) ListByUser(ctx context.Context, userID common.UUID) ([]applicant.Response, error) {
	return s.responses.ListByUser(ctx, userID)
}
