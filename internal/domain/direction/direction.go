package direction

import (
	"context"

	"accelerator/internal/common"
)

// Direction is a track such as "Backend" or "Design". Rows are reference data
// seeded from the catalog and never edited through the API.
type Direction struct {
	ID         common.UUID `json:"id"`
	Title      string      `json:"title"`
	StageCount int         `json:"stage_count"`
}

type Repository interface {
	Upsert(ctx context.Context, d Direction) (*Direction, error)
	GetByID(ctx context.Context, id common.UUID) (*Direction, error)
	List(ctx context.Context) ([]Direction, error)
}
