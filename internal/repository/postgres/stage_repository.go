package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/stage"
)

type StageRepository struct {
	db *sql.DB
}

func NewStageRepository(db *sql.DB) *StageRepository {
	return &StageRepository{db: db}
}

const stageColumns = `id, direction_id, stage_type, name, assignment, created_at, updated_at`

func scanStage(row rowScanner) (*stage.Stage, error) {
	var s stage.Stage
	if err := row.Scan(&s.ID, &s.DirectionID, &s.Type, &s.Name, &s.Assignment, &s.CreatedAt, &s.UpdatedAt); err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *StageRepository) Create(ctx context.Context, s stage.Stage) (*stage.Stage, error) {
	s.ID = common.NewUUID()
	now := time.Now().UTC()
	s.CreatedAt = now
	s.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO stages (`+stageColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		s.ID, s.DirectionID, s.Type, s.Name, s.Assignment, s.CreatedAt, s.UpdatedAt)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, common.NewError(common.CodeNotFound, "direction not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create stage", err)
	}
	return &s, nil
}

func (r *StageRepository) Update(ctx context.Context, s stage.Stage) (*stage.Stage, error) {
	s.UpdatedAt = time.Now().UTC()
	result, err := r.db.ExecContext(ctx, `UPDATE stages SET direction_id = $1, stage_type = $2, name = $3, assignment = $4, updated_at = $5 WHERE id = $6`,
		s.DirectionID, s.Type, s.Name, s.Assignment, s.UpdatedAt, s.ID)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, common.NewError(common.CodeNotFound, "direction not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to update stage", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "stage not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, s.ID)
}

func (r *StageRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM stages WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete stage", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "stage not found", sql.ErrNoRows)
	}
	return nil
}

func (r *StageRepository) GetByID(ctx context.Context, id common.UUID) (*stage.Stage, error) {
	s, err := scanStage(r.db.QueryRowContext(ctx, `SELECT `+stageColumns+` FROM stages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "stage not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load stage", err)
	}
	return s, nil
}

func (r *StageRepository) List(ctx context.Context) ([]stage.Stage, error) {
	return r.list(ctx, `SELECT `+stageColumns+` FROM stages ORDER BY created_at`)
}

func (r *StageRepository) ListByDirection(ctx context.Context, directionID common.UUID) ([]stage.Stage, error) {
	return r.list(ctx, `SELECT `+stageColumns+` FROM stages WHERE direction_id = $1 ORDER BY created_at`, directionID)
}

func (r *StageRepository) list(ctx context.Context, query string, args ...any) ([]stage.Stage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list stages", err)
	}
	defer rows.Close()
	items := []stage.Stage{}
	for rows.Next() {
		s, err := scanStage(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan stage", err)
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list stages", err)
	}
	return items, nil
}

type OrderedStageRepository struct {
	db *sql.DB
}

func NewOrderedStageRepository(db *sql.DB) *OrderedStageRepository {
	return &OrderedStageRepository{db: db}
}

const orderedStageColumns = `id, join_program_id, stage_id, position, created_at`

func scanOrderedStage(row rowScanner) (*stage.OrderedStage, error) {
	var o stage.OrderedStage
	if err := row.Scan(&o.ID, &o.JoinProgramID, &o.StageID, &o.Position, &o.CreatedAt); err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *OrderedStageRepository) Create(ctx context.Context, o stage.OrderedStage) (*stage.OrderedStage, error) {
	o.ID = common.NewUUID()
	o.CreatedAt = time.Now().UTC()
	_, err := r.db.ExecContext(ctx, `INSERT INTO ordered_stages (`+orderedStageColumns+`) VALUES ($1, $2, $3, $4, $5)`,
		o.ID, o.JoinProgramID, o.StageID, o.Position, o.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeDuplicate, "stage is already bound to this join program", stage.ErrAlreadyBound)
		}
		if isForeignKeyViolation(err) {
			return nil, common.NewError(common.CodeNotFound, "join program or stage not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to bind stage", err)
	}
	return &o, nil
}

func (r *OrderedStageRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM ordered_stages WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to unbind stage", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "ordered stage not found", sql.ErrNoRows)
	}
	return nil
}

func (r *OrderedStageRepository) GetByID(ctx context.Context, id common.UUID) (*stage.OrderedStage, error) {
	o, err := scanOrderedStage(r.db.QueryRowContext(ctx, `SELECT `+orderedStageColumns+` FROM ordered_stages WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "ordered stage not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load ordered stage", err)
	}
	return o, nil
}

func (r *OrderedStageRepository) ListByJoinProgram(ctx context.Context, joinProgramID common.UUID) ([]stage.OrderedStage, error) {
	return r.list(ctx, `SELECT `+orderedStageColumns+` FROM ordered_stages WHERE join_program_id = $1 ORDER BY position, created_at`, joinProgramID)
}

func (r *OrderedStageRepository) ListByStage(ctx context.Context, stageID common.UUID) ([]stage.OrderedStage, error) {
	return r.list(ctx, `SELECT `+orderedStageColumns+` FROM ordered_stages WHERE stage_id = $1 ORDER BY created_at`, stageID)
}

func (r *OrderedStageRepository) list(ctx context.Context, query string, args ...any) ([]stage.OrderedStage, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list ordered stages", err)
	}
	defer rows.Close()
	items := []stage.OrderedStage{}
	for rows.Next() {
		o, err := scanOrderedStage(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan ordered stage", err)
		}
		items = append(items, *o)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list ordered stages", err)
	}
	return items, nil
}
