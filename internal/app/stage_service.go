package app

import (
	"context"
	"strings"

	"accelerator/internal/common"
	"accelerator/internal/domain/direction"
	"accelerator/internal/domain/program"
	"accelerator/internal/domain/stage"
)

type StageService struct {
	stages       stage.Repository
	ordered      stage.OrderedRepository
	joinPrograms program.JoinProgramRepository
	directions   direction.Repository
}

func NewStageService(stages stage.Repository, ordered stage.OrderedRepository, joinPrograms program.JoinProgramRepository, directions direction.Repository) *StageService {
	return &StageService{stages: stages, ordered: ordered, joinPrograms: joinPrograms, directions: directions}
}

type StagePatch struct {
	DirectionID *common.UUID
	Type        *string
	Name        *string
	Assignment  *string
}

func (s *StageService) CreateStage(ctx context.Context, st stage.Stage) (*stage.Stage, error) {
	st.Name = strings.TrimSpace(st.Name)
	st.Type = stage.NormalizeType(string(st.Type))
	if err := s.validateStage(ctx, st); err != nil {
		return nil, err
	}
	return s.stages.Create(ctx, st)
}

func (s *StageService) UpdateStage(ctx context.Context, id common.UUID, patch StagePatch) (*stage.Stage, error) {
	st, err := s.stages.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if patch.DirectionID != nil && *patch.DirectionID != st.DirectionID {
		bound, err := s.ordered.ListByStage(ctx, id)
		if err != nil {
			return nil, err
		}
		if len(bound) > 0 {
			return nil, common.NewError(common.CodeValidation, "stage is bound to join programs, unbind it before changing its direction", stage.ErrDirectionMismatch)
		}
		st.DirectionID = *patch.DirectionID
	}
	if patch.Type != nil {
		st.Type = stage.NormalizeType(*patch.Type)
	}
	if patch.Name != nil {
		st.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Assignment != nil {
		st.Assignment = *patch.Assignment
	}
	if err := s.validateStage(ctx, *st); err != nil {
		return nil, err
	}
	return s.stages.Update(ctx, *st)
}

func (s *StageService) DeleteStage(ctx context.Context, id common.UUID) error {
	return s.stages.Delete(ctx, id)
}

func (s *StageService) GetStage(ctx context.Context, id common.UUID) (*stage.Stage, error) {
	return s.stages.GetByID(ctx, id)
}

// ListStages lists every stage, or only those of one direction when directionID is set.
func (s *StageService) ListStages(ctx context.Context, directionID common.UUID) ([]stage.Stage, error) {
	if directionID.IsZero() {
		return s.stages.List(ctx)
	}
	return s.stages.ListByDirection(ctx, directionID)
}

// BindStage schedules a stage inside a join program of the same direction.
func (s *StageService) BindStage(ctx context.Context, joinProgramID, stageID common.UUID, position int) (*stage.OrderedStage, error) {
	if position < 0 {
		return nil, common.NewValidationError("invalid ordered stage", map[string]string{"position": "position must not be negative"})
	}
	jp, err := s.joinPrograms.GetByID(ctx, joinProgramID)
	if err != nil {
		return nil, err
	}
	st, err := s.stages.GetByID(ctx, stageID)
	if err != nil {
		return nil, err
	}
	if st.DirectionID != jp.DirectionID {
		return nil, &common.Error{
			Code:    common.CodeValidation,
			Message: stage.ErrDirectionMismatch.Error(),
			Fields:  map[string]string{"stage": "stage direction differs from the join program direction"},
			Err:     stage.ErrDirectionMismatch,
		}
	}
	return s.ordered.Create(ctx, stage.OrderedStage{JoinProgramID: jp.ID, StageID: st.ID, Position: position})
}

func (s *StageService) UnbindStage(ctx context.Context, id common.UUID) error {
	return s.ordered.Delete(ctx, id)
}

func (s *StageService) GetOrderedStage(ctx context.Context, id common.UUID) (*stage.OrderedStage, error) {
	return s.ordered.GetByID(ctx, id)
}

func (s *StageService) ListOrderedStages(ctx context.Context, joinProgramID common.UUID) ([]stage.OrderedStage, error) {
	if _, err := s.joinPrograms.GetByID(ctx, joinProgramID); err != nil {
		return nil, err
	}
	return s.ordered.ListByJoinProgram(ctx, joinProgramID)
}

func (s *StageService) validateStage(ctx context.Context, st stage.Stage) error {
	fields := map[string]string{}
	if st.Name == "" {
		fields["name"] = "name is required"
	}
	if !st.Type.Valid() {
		fields["type"] = "type must be one of test, task, live-coding, interview"
	}
	if st.DirectionID.IsZero() {
		fields["direction_id"] = "direction_id is required"
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid stage", fields)
	}
	if _, err := s.directions.GetByID(ctx, st.DirectionID); err != nil {
		if common.Is(err, common.CodeNotFound) {
			return common.NewValidationError("invalid stage", map[string]string{"direction_id": "unknown direction"})
		}
		return err
	}
	return nil
}
