package memory

import (
	"context"
	"sort"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/stage"
)

type StageRepository struct {
	s *Store
}

func (r *StageRepository) Create(_ context.Context, st stage.Stage) (*stage.Stage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.directions.get(st.DirectionID); !ok {
		return nil, common.NewError(common.CodeNotFound, "direction not found", nil)
	}
	st.ID = common.NewUUID()
	now := time.Now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now
	r.s.stages.insert(st.ID, r.s.nextSeq(), st)
	return &st, nil
}

func (r *StageRepository) Update(_ context.Context, st stage.Stage) (*stage.Stage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	existing, ok := r.s.stages.get(st.ID)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "stage not found", nil)
	}
	if _, ok := r.s.directions.get(st.DirectionID); !ok {
		return nil, common.NewError(common.CodeNotFound, "direction not found", nil)
	}
	st.CreatedAt = existing.CreatedAt
	st.UpdatedAt = time.Now().UTC()
	r.s.stages.set(st.ID, st)
	return &st, nil
}

func (r *StageRepository) Delete(_ context.Context, id common.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.stages.get(id); !ok {
		return common.NewError(common.CodeNotFound, "stage not found", nil)
	}
	for osID, o := range r.s.orderedStages.rows {
		if o.StageID == id {
			r.s.orderedStages.remove(osID)
		}
	}
	for respID, resp := range r.s.responses.rows {
		if resp.StageID == id {
			r.s.deleteResponse(respID)
		}
	}
	r.s.stages.remove(id)
	return nil
}

func (r *StageRepository) GetByID(_ context.Context, id common.UUID) (*stage.Stage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	st, ok := r.s.stages.get(id)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "stage not found", nil)
	}
	return &st, nil
}

func (r *StageRepository) List(_ context.Context) ([]stage.Stage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.stages.filter(nil, false), nil
}

func (r *StageRepository) ListByDirection(_ context.Context, directionID common.UUID) ([]stage.Stage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.stages.filter(func(st stage.Stage) bool { return st.DirectionID == directionID }, false), nil
}

type OrderedStageRepository struct {
	s *Store
}

func (r *OrderedStageRepository) Create(_ context.Context, o stage.OrderedStage) (*stage.OrderedStage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.joinPrograms.get(o.JoinProgramID); !ok {
		return nil, common.NewError(common.CodeNotFound, "join program or stage not found", nil)
	}
	if _, ok := r.s.stages.get(o.StageID); !ok {
		return nil, common.NewError(common.CodeNotFound, "join program or stage not found", nil)
	}
	for _, existing := range r.s.orderedStages.rows {
		if existing.JoinProgramID == o.JoinProgramID && existing.StageID == o.StageID {
			return nil, common.NewError(common.CodeDuplicate, "stage is already bound to this join program", stage.ErrAlreadyBound)
		}
	}
	o.ID = common.NewUUID()
	o.CreatedAt = time.Now().UTC()
	r.s.orderedStages.insert(o.ID, r.s.nextSeq(), o)
	return &o, nil
}

func (r *OrderedStageRepository) Delete(_ context.Context, id common.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.orderedStages.get(id); !ok {
		return common.NewError(common.CodeNotFound, "ordered stage not found", nil)
	}
	r.s.orderedStages.remove(id)
	return nil
}

func (r *OrderedStageRepository) GetByID(_ context.Context, id common.UUID) (*stage.OrderedStage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.orderedStages.get(id)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "ordered stage not found", nil)
	}
	return &o, nil
}

func (r *OrderedStageRepository) ListByJoinProgram(_ context.Context, joinProgramID common.UUID) ([]stage.OrderedStage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.orderedStages.filter(func(o stage.OrderedStage) bool { return o.JoinProgramID == joinProgramID }, false)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Position < items[j].Position })
	return items, nil
}

func (r *OrderedStageRepository) ListByStage(_ context.Context, stageID common.UUID) ([]stage.OrderedStage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.orderedStages.filter(func(o stage.OrderedStage) bool { return o.StageID == stageID }, false), nil
}
