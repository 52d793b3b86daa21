package app

import (
	"context"
	"strings"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/direction"
	"accelerator/internal/domain/program"
	"accelerator/internal/observability"
)

type ProgramService struct {
	programs     program.Repository
	joinPrograms program.JoinProgramRepository
	directions   direction.Repository
	logger       Logger
}

func NewProgramService(programs program.Repository, joinPrograms program.JoinProgramRepository, directions direction.Repository, logger Logger) *ProgramService {
	return &ProgramService{programs: programs, joinPrograms: joinPrograms, directions: directions, logger: loggerOrNop(logger)}
}

// ProgramPatch carries the fields of a partial update. Nil fields are left as is.
type ProgramPatch struct {
	Name              *string
	Requirements      *string
	DirectionIDs      []common.UUID
	ProgramStart      *time.Time
	ProgramEnd        *time.Time
	RegistrationStart *time.Time
	RegistrationEnd   *time.Time
	Active            *bool
}

func (s *ProgramService) Create(ctx context.Context, p program.Program) (*program.Program, error) {
	p = normalizeProgram(p)
	if err := s.validate(ctx, p, ""); err != nil {
		return nil, err
	}
	created, err := s.programs.Create(ctx, p)
	if err != nil {
		return nil, err
	}
	s.logger.Info("program created", "program_id", created.ID, "name", created.Name, "directions", len(created.DirectionIDs))
	return created, nil
}

// CreateFromPatch creates a program from the set fields of patch. A program
// is active unless the patch says otherwise.
func (s *ProgramService) CreateFromPatch(ctx context.Context, patch ProgramPatch) (*program.Program, error) {
	return s.Create(ctx, applyProgramPatch(program.Program{Active: true}, patch))
}

func (s *ProgramService) Update(ctx context.Context, id common.UUID, patch ProgramPatch) (*program.Program, error) {
	current, err := s.programs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := applyProgramPatch(*current, patch)
	next = normalizeProgram(next)
	if err := s.validate(ctx, next, id); err != nil {
		return nil, err
	}
	return s.programs.Update(ctx, next)
}

func (s *ProgramService) Get(ctx context.Context, id common.UUID) (*program.Program, error) {
	return s.programs.GetByID(ctx, id)
}

func (s *ProgramService) List(ctx context.Context, activeOnly bool) ([]program.Program, error) {
	if activeOnly {
		return s.programs.ListActive(ctx)
	}
	return s.programs.List(ctx)
}

func (s *ProgramService) Delete(ctx context.Context, id common.UUID) error {
	if err := s.programs.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("program deleted", "program_id", id)
	return nil
}

func (s *ProgramService) ListJoinPrograms(ctx context.Context, programID common.UUID) ([]program.JoinProgram, error) {
	if _, err := s.programs.GetByID(ctx, programID); err != nil {
		return nil, err
	}
	return s.joinPrograms.ListByProgram(ctx, programID)
}

func (s *ProgramService) GetJoinProgram(ctx context.Context, id common.UUID) (*program.JoinProgram, error) {
	return s.joinPrograms.GetByID(ctx, id)
}

func (s *ProgramService) ListAllJoinPrograms(ctx context.Context) ([]program.JoinProgram, error) {
	return s.joinPrograms.List(ctx)
}

// DeactivateExpired closes every active program whose registration end date
// is today or earlier and returns how many were closed.
func (s *ProgramService) DeactivateExpired(ctx context.Context, now time.Time) (int, error) {
	active, err := s.programs.ListActive(ctx)
	if err != nil {
		return 0, err
	}
	count := 0
	for _, p := range active {
		if !program.ShouldDeactivate(p, now) {
			continue
		}
		if err := s.programs.SetActive(ctx, p.ID, false); err != nil {
			if common.Is(err, common.CodeNotFound) {
				continue
			}
			return count, err
		}
		count++
		s.logger.Info("program deactivated", "program_id", p.ID, "name", p.Name, "registration_end", p.RegistrationEnd.Format(time.DateOnly))
	}
	observability.RecordDeactivations(ctx, count)
	return count, nil
}

func (s *ProgramService) validate(ctx context.Context, p program.Program, self common.UUID) error {
	fields := program.WindowErrors(p)
	if p.Name == "" {
		fields["name"] = "name is required"
	}
	if len(p.DirectionIDs) == 0 {
		fields["directions"] = "at least one direction is required"
	}
	for _, directionID := range p.DirectionIDs {
		if _, err := s.directions.GetByID(ctx, directionID); err != nil {
			if common.Is(err, common.CodeNotFound) {
				fields["directions"] = "unknown direction " + directionID.String()
				break
			}
			return err
		}
	}
	if len(fields) > 0 {
		return common.NewValidationError("invalid program", fields)
	}
	if !p.Active {
		return nil
	}
	existing, err := s.programs.FindActiveByName(ctx, p.Name)
	if err != nil {
		if common.Is(err, common.CodeNotFound) {
			return nil
		}
		return err
	}
	if existing.ID != self {
		return &common.Error{
			Code:    common.CodeValidation,
			Message: program.ErrActiveNameTaken.Error(),
			Fields:  map[string]string{"name": "already used by an active program"},
			Err:     program.ErrActiveNameTaken,
		}
	}
	return nil
}

func normalizeProgram(p program.Program) program.Program {
	p.Name = strings.TrimSpace(p.Name)
	p.Requirements = strings.TrimSpace(p.Requirements)
	seen := make(map[common.UUID]bool, len(p.DirectionIDs))
	ids := make([]common.UUID, 0, len(p.DirectionIDs))
	for _, id := range p.DirectionIDs {
		if id.IsZero() || seen[id] {
			continue
		}
		seen[id] = true
		ids = append(ids, id)
	}
	p.DirectionIDs = ids
	for _, t := range []*time.Time{&p.ProgramStart, &p.ProgramEnd, &p.RegistrationStart, &p.RegistrationEnd} {
		if !t.IsZero() {
			*t = program.DateOf(*t)
		}
	}
	return p
}

func applyProgramPatch(p program.Program, patch ProgramPatch) program.Program {
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.Requirements != nil {
		p.Requirements = *patch.Requirements
	}
	if patch.DirectionIDs != nil {
		p.DirectionIDs = patch.DirectionIDs
	}
	if patch.ProgramStart != nil {
		p.ProgramStart = *patch.ProgramStart
	}
	if patch.ProgramEnd != nil {
		p.ProgramEnd = *patch.ProgramEnd
	}
	if patch.RegistrationStart != nil {
		p.RegistrationStart = *patch.RegistrationStart
	}
	if patch.RegistrationEnd != nil {
		p.RegistrationEnd = *patch.RegistrationEnd
	}
	if patch.Active != nil {
		p.Active = *patch.Active
	}
	return p
}
