package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
	"accelerator/internal/domain/evaluation"
)

type EvaluationRepository struct {
	db *sql.DB
}

func NewEvaluationRepository(db *sql.DB) *EvaluationRepository {
	return &EvaluationRepository{db: db}
}

const evaluationColumns = `id, author_id, response_id, kind, description, status, created_at, updated_at`

func scanEvaluation(row rowScanner) (*evaluation.Evaluation, error) {
	var e evaluation.Evaluation
	if err := row.Scan(&e.ID, &e.AuthorID, &e.ResponseID, &e.Kind, &e.Description, &e.Status, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EvaluationRepository) Create(ctx context.Context, e evaluation.Evaluation, responseStatus *applicant.ResponseStatus) (*evaluation.Evaluation, error) {
	e.ID = common.NewUUID()
	now := time.Now().UTC()
	e.CreatedAt = now
	e.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO staff_evaluations (`+evaluationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		e.ID, e.AuthorID, e.ResponseID, e.Kind, e.Description, e.Status, e.CreatedAt, e.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeDuplicate, evaluation.ErrAlreadyEvaluated.Error(), evaluation.ErrAlreadyEvaluated)
		}
		if isForeignKeyViolation(err) {
			return nil, common.NewError(common.CodeNotFound, "response not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create evaluation", err)
	}
	if responseStatus != nil {
		if err := setResponseStatus(ctx, tx, e.ResponseID, *responseStatus); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to commit evaluation", err)
	}
	return &e, nil
}

func (r *EvaluationRepository) Update(ctx context.Context, e evaluation.Evaluation, responseStatus *applicant.ResponseStatus) (*evaluation.Evaluation, error) {
	e.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE staff_evaluations SET kind = $1, description = $2, status = $3, updated_at = $4 WHERE id = $5`,
		e.Kind, e.Description, e.Status, e.UpdatedAt, e.ID)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update evaluation", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "evaluation not found", sql.ErrNoRows)
	}
	if responseStatus != nil {
		if err := setResponseStatus(ctx, tx, e.ResponseID, *responseStatus); err != nil {
			return nil, err
		}
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to commit evaluation", err)
	}
	return r.GetByID(ctx, e.ID)
}

func (r *EvaluationRepository) GetByID(ctx context.Context, id common.UUID) (*evaluation.Evaluation, error) {
	e, err := scanEvaluation(r.db.QueryRowContext(ctx, `SELECT `+evaluationColumns+` FROM staff_evaluations WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "evaluation not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load evaluation", err)
	}
	return e, nil
}

func (r *EvaluationRepository) List(ctx context.Context) ([]evaluation.Evaluation, error) {
	return r.list(ctx, `SELECT `+evaluationColumns+` FROM staff_evaluations ORDER BY created_at DESC`)
}

func (r *EvaluationRepository) ListByResponse(ctx context.Context, responseID common.UUID) ([]evaluation.Evaluation, error) {
	return r.list(ctx, `SELECT `+evaluationColumns+` FROM staff_evaluations WHERE response_id = $1 ORDER BY created_at DESC`, responseID)
}

func (r *EvaluationRepository) list(ctx context.Context, query string, args ...any) ([]evaluation.Evaluation, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list evaluations", err)
	}
	defer rows.Close()
	items := []evaluation.Evaluation{}
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan evaluation", err)
		}
		items = append(items, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list evaluations", err)
	}
	return items, nil
}
