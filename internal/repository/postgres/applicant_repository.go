package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
)

type ApplicantRepository struct {
	db *sql.DB
}

func NewApplicantRepository(db *sql.DB) *ApplicantRepository {
	return &ApplicantRepository{db: db}
}

const applicantColumns = `id, join_program_id, user_id, request_status, joined_at, updated_at`

func scanApplicant(row rowScanner) (*applicant.Applicant, error) {
	var a applicant.Applicant
	if err := row.Scan(&a.ID, &a.JoinProgramID, &a.UserID, &a.Status, &a.JoinedAt, &a.UpdatedAt); err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *ApplicantRepository) Create(ctx context.Context, a applicant.Applicant) (*applicant.Applicant, error) {
	a.ID = common.NewUUID()
	now := time.Now().UTC()
	a.JoinedAt = now
	a.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO applicants (`+applicantColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		a.ID, a.JoinProgramID, a.UserID, a.Status, a.JoinedAt, a.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeDuplicate, "join request already exists", applicant.ErrDuplicateRequest)
		}
		if isForeignKeyViolation(err) {
			return nil, common.NewError(common.CodeNotFound, "join program or user not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create join request", err)
	}
	if _, err := tx.ExecContext(ctx, `UPDATE join_programs SET joined_applicants = joined_applicants + 1 WHERE id = $1`, a.JoinProgramID); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update join program counter", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to commit join request", err)
	}
	return &a, nil
}

func (r *ApplicantRepository) GetByID(ctx context.Context, id common.UUID) (*applicant.Applicant, error) {
	a, err := scanApplicant(r.db.QueryRowContext(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "join request not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load join request", err)
	}
	return a, nil
}

func (r *ApplicantRepository) List(ctx context.Context) ([]applicant.Applicant, error) {
	return r.list(ctx, `SELECT `+applicantColumns+` FROM applicants ORDER BY joined_at DESC`)
}

func (r *ApplicantRepository) ListByJoinProgram(ctx context.Context, joinProgramID common.UUID) ([]applicant.Applicant, error) {
	return r.list(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE join_program_id = $1 ORDER BY joined_at DESC`, joinProgramID)
}

func (r *ApplicantRepository) ListByUser(ctx context.Context, userID common.UUID) ([]applicant.Applicant, error) {
	return r.list(ctx, `SELECT `+applicantColumns+` FROM applicants WHERE user_id = $1 ORDER BY joined_at DESC`, userID)
}

func (r *ApplicantRepository) list(ctx context.Context, query string, args ...any) ([]applicant.Applicant, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list join requests", err)
	}
	defer rows.Close()
	items := []applicant.Applicant{}
	for rows.Next() {
		a, err := scanApplicant(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan join request", err)
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list join requests", err)
	}
	return items, nil
}

func (r *ApplicantRepository) UpdateStatus(ctx context.Context, id common.UUID, status applicant.RequestStatus) (*applicant.Applicant, error) {
	result, err := r.db.ExecContext(ctx, `UPDATE applicants SET request_status = $1, updated_at = $2 WHERE id = $3`, status, time.Now().UTC(), id)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to update join request", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "join request not found", sql.ErrNoRows)
	}
	return r.GetByID(ctx, id)
}

// Delete withdraws a join request. The join program counter is cumulative and
// is left as is.
func (r *ApplicantRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM applicants WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete join request", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "join request not found", sql.ErrNoRows)
	}
	return nil
}
