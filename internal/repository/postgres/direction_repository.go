package postgres

import (
	"context"
	"database/sql"
	"errors"

	"accelerator/internal/common"
	"accelerator/internal/domain/direction"
)

type DirectionRepository struct {
	db *sql.DB
}

func NewDirectionRepository(db *sql.DB) *DirectionRepository {
	return &DirectionRepository{db: db}
}

// Upsert keys directions by title so reseeding the catalog keeps ids stable.
func (r *DirectionRepository) Upsert(ctx context.Context, d direction.Direction) (*direction.Direction, error) {
	row := r.db.QueryRowContext(ctx, `INSERT INTO directions (id, title, stage_count) VALUES ($1, $2, $3)
		ON CONFLICT (title) DO UPDATE SET stage_count = EXCLUDED.stage_count
		RETURNING id, title, stage_count`, common.NewUUID(), d.Title, d.StageCount)
	var out direction.Direction
	if err := row.Scan(&out.ID, &out.Title, &out.StageCount); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to upsert direction", err)
	}
	return &out, nil
}

func (r *DirectionRepository) GetByID(ctx context.Context, id common.UUID) (*direction.Direction, error) {
	var d direction.Direction
	err := r.db.QueryRowContext(ctx, `SELECT id, title, stage_count FROM directions WHERE id = $1`, id).Scan(&d.ID, &d.Title, &d.StageCount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "direction not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load direction", err)
	}
	return &d, nil
}

func (r *DirectionRepository) List(ctx context.Context) ([]direction.Direction, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, title, stage_count FROM directions ORDER BY title`)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list directions", err)
	}
	defer rows.Close()
	items := []direction.Direction{}
	for rows.Next() {
		var d direction.Direction
		if err := rows.Scan(&d.ID, &d.Title, &d.StageCount); err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan direction", err)
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list directions", err)
	}
	return items, nil
}
