package memory

import (
	"context"
	"sort"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/program"
)

type ProgramRepository struct {
	s *Store
}

func cloneProgram(p program.Program) program.Program {
	p.DirectionIDs = append(make([]common.UUID, 0, len(p.DirectionIDs)), p.DirectionIDs...)
	return p
}

// activeNameTaken must be called with the store lock held.
func (s *Store) activeNameTaken(name string, except common.UUID) bool {
	for id, p := range s.programs.rows {
		if id != except && p.Active && p.Name == name {
			return true
		}
	}
	return false
}

func (r *ProgramRepository) Create(_ context.Context, p program.Program) (*program.Program, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.Active && r.s.activeNameTaken(p.Name, "") {
		return nil, common.NewError(common.CodeValidation, "an active program with this name already exists", program.ErrActiveNameTaken)
	}
	if err := r.s.checkDirections(p.DirectionIDs); err != nil {
		return nil, err
	}
	p = cloneProgram(p)
	p.ID = common.NewUUID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.s.programs.insert(p.ID, r.s.nextSeq(), p)
	for _, directionID := range p.DirectionIDs {
		r.s.upsertJoinProgram(p.ID, directionID)
	}
	out := cloneProgram(p)
	return &out, nil
}

func (r *ProgramRepository) Update(_ context.Context, p program.Program) (*program.Program, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.programs.get(p.ID)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "program not found", nil)
	}
	if p.Active && r.s.activeNameTaken(p.Name, p.ID) {
		return nil, common.NewError(common.CodeValidation, "an active program with this name already exists", program.ErrActiveNameTaken)
	}
	if err := r.s.checkDirections(p.DirectionIDs); err != nil {
		return nil, err
	}
	p = cloneProgram(p)
	p.CreatedAt = existing.CreatedAt
	p.UpdatedAt = time.Now().UTC()
	r.s.programs.set(p.ID, p)
	for _, directionID := range p.DirectionIDs {
		r.s.upsertJoinProgram(p.ID, directionID)
	}
	out := cloneProgram(p)
	return &out, nil
}

// checkDirections must be called with the store lock held.
func (s *Store) checkDirections(ids []common.UUID) error {
	for _, id := range ids {
		if _, ok := s.directions.get(id); !ok {
			return common.NewError(common.CodeNotFound, "program or direction not found", nil)
		}
	}
	return nil
}

func (r *ProgramRepository) Delete(_ context.Context, id common.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.programs.get(id); !ok {
		return common.NewError(common.CodeNotFound, "program not found", nil)
	}
	for jpID, jp := range r.s.joinPrograms.rows {
		if jp.ProgramID == id {
			r.s.deleteJoinProgram(jpID)
		}
	}
	r.s.programs.remove(id)
	return nil
}

func (r *ProgramRepository) GetByID(_ context.Context, id common.UUID) (*program.Program, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.programs.get(id)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "program not found", nil)
	}
	out := cloneProgram(p)
	return &out, nil
}

func (r *ProgramRepository) FindActiveByName(_ context.Context, name string) (*program.Program, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, p := range r.s.programs.rows {
		if p.Active && p.Name == name {
			out := cloneProgram(p)
			return &out, nil
		}
	}
	return nil, common.NewError(common.CodeNotFound, "program not found", nil)
}

func (r *ProgramRepository) List(_ context.Context) ([]program.Program, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return cloneAll(r.s.programs.filter(nil, true)), nil
}

func (r *ProgramRepository) ListActive(_ context.Context) ([]program.Program, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := cloneAll(r.s.programs.filter(func(p program.Program) bool { return p.Active }, false))
	sort.SliceStable(items, func(i, j int) bool { return items[i].RegistrationEnd.Before(items[j].RegistrationEnd) })
	return items, nil
}

func cloneAll(items []program.Program) []program.Program {
	for i := range items {
		items[i] = cloneProgram(items[i])
	}
	return items
}

func (r *ProgramRepository) SetActive(_ context.Context, id common.UUID, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.programs.get(id)
	if !ok {
		return common.NewError(common.CodeNotFound, "program not found", nil)
	}
	if active && !p.Active && r.s.activeNameTaken(p.Name, id) {
		return common.NewError(common.CodeValidation, "an active program with this name already exists", program.ErrActiveNameTaken)
	}
	p.Active = active
	p.UpdatedAt = time.Now().UTC()
	r.s.programs.set(id, p)
	return nil
}

type JoinProgramRepository struct {
	s *Store
}

func (r *JoinProgramRepository) Upsert(_ context.Context, programID, directionID common.UUID) (*program.JoinProgram, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.programs.get(programID); !ok {
		return nil, common.NewError(common.CodeNotFound, "program or direction not found", nil)
	}
	if err := r.s.checkDirections([]common.UUID{directionID}); err != nil {
		return nil, err
	}
	jp := r.s.upsertJoinProgram(programID, directionID)
	return &jp, nil
}

// upsertJoinProgram must be called with the store lock held.
func (s *Store) upsertJoinProgram(programID, directionID common.UUID) program.JoinProgram {
	for _, jp := range s.joinPrograms.rows {
		if jp.ProgramID == programID && jp.DirectionID == directionID {
			return jp
		}
	}
	jp := program.JoinProgram{
		ID:          common.NewUUID(),
		ProgramID:   programID,
		DirectionID: directionID,
		CreatedAt:   time.Now().UTC(),
	}
	s.joinPrograms.insert(jp.ID, s.nextSeq(), jp)
	return jp
}

func (r *JoinProgramRepository) GetByID(_ context.Context, id common.UUID) (*program.JoinProgram, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	jp, ok := r.s.joinPrograms.get(id)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "join program not found", nil)
	}
	return &jp, nil
}

func (r *JoinProgramRepository) ListByProgram(_ context.Context, programID common.UUID) ([]program.JoinProgram, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.joinPrograms.filter(func(jp program.JoinProgram) bool { return jp.ProgramID == programID }, false), nil
}

func (r *JoinProgramRepository) List(_ context.Context) ([]program.JoinProgram, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.joinPrograms.filter(nil, false), nil
}

// deleteJoinProgram cascades to ordered stages and join requests.
func (s *Store) deleteJoinProgram(id common.UUID) {
	for osID, o := range s.orderedStages.rows {
		if o.JoinProgramID == id {
			s.orderedStages.remove(osID)
		}
	}
	for aID, a := range s.applicants.rows {
		if a.JoinProgramID == id {
			s.applicants.remove(aID)
		}
	}
	s.joinPrograms.remove(id)
}
