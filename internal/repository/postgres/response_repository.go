package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
)

type ResponseRepository struct {
	db *sql.DB
}

func NewResponseRepository(db *sql.DB) *ResponseRepository {
	return &ResponseRepository{db: db}
}

const responseColumns = `id, user_id, stage_id, direction_id, response, status, created_at, updated_at`

func scanResponse(row rowScanner) (*applicant.Response, error) {
	var resp applicant.Response
	if err := row.Scan(&resp.ID, &resp.UserID, &resp.StageID, &resp.DirectionID, &resp.Text, &resp.Status, &resp.CreatedAt, &resp.UpdatedAt); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *ResponseRepository) Create(ctx context.Context, resp applicant.Response) (*applicant.Response, error) {
	resp.ID = common.NewUUID()
	now := time.Now().UTC()
	resp.CreatedAt = now
	resp.UpdatedAt = now
	_, err := r.db.ExecContext(ctx, `INSERT INTO applicant_responses (`+responseColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		resp.ID, resp.UserID, resp.StageID, resp.DirectionID, resp.Text, resp.Status, resp.CreatedAt, resp.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeDuplicate, "response for this stage already exists", applicant.ErrDuplicateResponse)
		}
		if isForeignKeyViolation(err) {
			return nil, common.NewError(common.CodeNotFound, "stage or direction not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create response", err)
	}
	return &resp, nil
}

func (r *ResponseRepository) GetByID(ctx context.Context, id common.UUID) (*applicant.Response, error) {
	resp, err := scanResponse(r.db.QueryRowContext(ctx, `SELECT `+responseColumns+` FROM applicant_responses WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "response not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load response", err)
	}
	return resp, nil
}

func (r *ResponseRepository) List(ctx context.Context) ([]applicant.Response, error) {
	return r.list(ctx, `SELECT `+responseColumns+` FROM applicant_responses ORDER BY created_at DESC`)
}

func (r *ResponseRepository) ListByUser(ctx context.Context, userID common.UUID) ([]applicant.Response, error) {
	return r.list(ctx, `SELECT `+responseColumns+` FROM applicant_responses WHERE user_id = $1 ORDER BY created_at DESC`, userID)
}

func (r *ResponseRepository) list(ctx context.Context, query string, args ...any) ([]applicant.Response, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list responses", err)
	}
	defer rows.Close()
	items := []applicant.Response{}
	for rows.Next() {
		resp, err := scanResponse(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan response", err)
		}
		items = append(items, *resp)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list responses", err)
	}
	return items, nil
}

func (r *ResponseRepository) UpdateStatus(ctx context.Context, id common.UUID, status applicant.ResponseStatus) (*applicant.Response, error) {
	if err := setResponseStatus(ctx, r.db, id, status); err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func setResponseStatus(ctx context.Context, q querier, id common.UUID, status applicant.ResponseStatus) error {
	result, err := q.ExecContext(ctx, `UPDATE applicant_responses SET status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to update response", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "response not found", sql.ErrNoRows)
	}
	return nil
}

func (r *ResponseRepository) HasRejectedInActivePrograms(ctx context.Context, userID common.UUID) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `SELECT EXISTS (
		SELECT 1
		FROM applicant_responses r
		JOIN ordered_stages os ON os.stage_id = r.stage_id
		JOIN join_programs jp ON jp.id = os.join_program_id
		JOIN programs p ON p.id = jp.program_id
		JOIN applicants a ON a.join_program_id = jp.id AND a.user_id = r.user_id
		WHERE r.user_id = $1 AND r.status = $2 AND p.is_active
	)`, userID, applicant.ResponseRejected).Scan(&exists)
	if err != nil {
		return false, common.NewError(common.CodeInternal, "failed to check rejected responses", err)
	}
	return exists, nil
}
