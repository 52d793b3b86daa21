package memory

import (
	"context"
	"sort"

	"accelerator/internal/common"
	"accelerator/internal/domain/direction"
)

type DirectionRepository struct {
	s *Store
}

func (r *DirectionRepository) Upsert(_ context.Context, d direction.Direction) (*direction.Direction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for id, existing := range r.s.directions.rows {
		if existing.Title == d.Title {
			existing.StageCount = d.StageCount
			r.s.directions.set(id, existing)
			return &existing, nil
		}
	}
	d.ID = common.NewUUID()
	r.s.directions.insert(d.ID, r.s.nextSeq(), d)
	return &d, nil
}

func (r *DirectionRepository) GetByID(_ context.Context, id common.UUID) (*direction.Direction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	d, ok := r.s.directions.get(id)
	if !ok {
		return nil, common.NewError(common.CodeNotFound, "direction not found", nil)
	}
	return &d, nil
}

func (r *DirectionRepository) List(_ context.Context) ([]direction.Direction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	items := r.s.directions.filter(nil, false)
	sort.SliceStable(items, func(i, j int) bool { return items[i].Title < items[j].Title })
	return items, nil
}
