package app

import (
	"context"

	"accelerator/internal/common"
	"accelerator/internal/config"
	"accelerator/internal/domain/direction"
)

type DirectionService struct {
	repo   direction.Repository
	logger Logger
}

func NewDirectionService(repo direction.Repository, logger Logger) *DirectionService {
	return &DirectionService{repo: repo, logger: loggerOrNop(logger)}
}

// Seed upserts the catalog by title. Directions missing from the catalog are left in place.
func (s *DirectionService) Seed(ctx context.Context, seeds []config.DirectionSeed) ([]direction.Direction, error) {
	items := make([]direction.Direction, 0, len(seeds))
	for _, seed := range seeds {
		d, err := s.repo.Upsert(ctx, direction.Direction{Title: seed.Title, StageCount: seed.Stages})
		if err != nil {
			return nil, err
		}
		items = append(items, *d)
	}
	s.logger.Info("direction catalog seeded", "directions", len(items))
	return items, nil
}

func (s *DirectionService) List(ctx context.Context) ([]direction.Direction, error) {
	return s.repo.List(ctx)
}

func (s *DirectionService) Get(ctx context.Context, id common.UUID) (*direction.Direction, error) {
	return s.repo.GetByID(ctx, id)
}
