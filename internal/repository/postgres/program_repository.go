package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"accelerator/internal/common"
	"accelerator/internal/domain/program"
)

type ProgramRepository struct {
	db *sql.DB
}

func NewProgramRepository(db *sql.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

const programColumns = `id, name, requirements, direction_ids, program_start, program_end, registration_start, registration_end, is_active, created_at, updated_at`

func scanProgram(row rowScanner) (*program.Program, error) {
	var p program.Program
	var directionIDs []string
	if err := row.Scan(&p.ID, &p.Name, &p.Requirements, pq.Array(&directionIDs), &p.ProgramStart, &p.ProgramEnd, &p.RegistrationStart, &p.RegistrationEnd, &p.Active, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	p.DirectionIDs = toUUIDs(directionIDs)
	return &p, nil
}

func toUUIDs(values []string) []common.UUID {
	ids := make([]common.UUID, 0, len(values))
	for _, v := range values {
		ids = append(ids, common.UUID(v))
	}
	return ids
}

func fromUUIDs(ids []common.UUID) []string {
	values := make([]string, 0, len(ids))
	for _, id := range ids {
		values = append(values, id.String())
	}
	return values
}

func (r *ProgramRepository) Create(ctx context.Context, p program.Program) (*program.Program, error) {
	p.ID = common.NewUUID()
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `INSERT INTO programs (`+programColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		p.ID, p.Name, p.Requirements, pq.Array(fromUUIDs(p.DirectionIDs)), p.ProgramStart, p.ProgramEnd, p.RegistrationStart, p.RegistrationEnd, p.Active, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeValidation, "an active program with this name already exists", program.ErrActiveNameTaken)
		}
		return nil, common.NewError(common.CodeInternal, "failed to create program", err)
	}
	if err := upsertJoinPrograms(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to commit program", err)
	}
	return &p, nil
}

func (r *ProgramRepository) Update(ctx context.Context, p program.Program) (*program.Program, error) {
	p.UpdatedAt = time.Now().UTC()

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to begin transaction", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `UPDATE programs SET name = $1, requirements = $2, direction_ids = $3, program_start = $4, program_end = $5,
		registration_start = $6, registration_end = $7, is_active = $8, updated_at = $9 WHERE id = $10`,
		p.Name, p.Requirements, pq.Array(fromUUIDs(p.DirectionIDs)), p.ProgramStart, p.ProgramEnd, p.RegistrationStart, p.RegistrationEnd, p.Active, p.UpdatedAt, p.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, common.NewError(common.CodeValidation, "an active program with this name already exists", program.ErrActiveNameTaken)
		}
		return nil, common.NewError(common.CodeInternal, "failed to update program", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return nil, common.NewError(common.CodeNotFound, "program not found", sql.ErrNoRows)
	}
	if err := upsertJoinPrograms(ctx, tx, p); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to commit program", err)
	}
	return r.GetByID(ctx, p.ID)
}

func upsertJoinPrograms(ctx context.Context, q querier, p program.Program) error {
	for _, directionID := range p.DirectionIDs {
		if _, err := upsertJoinProgram(ctx, q, p.ID, directionID); err != nil {
			return err
		}
	}
	return nil
}

func (r *ProgramRepository) Delete(ctx context.Context, id common.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM programs WHERE id = $1`, id)
	if err != nil {
		return common.NewError(common.CodeInternal, "failed to delete program", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "program not found", sql.ErrNoRows)
	}
	return nil
}

func (r *ProgramRepository) GetByID(ctx context.Context, id common.UUID) (*program.Program, error) {
	p, err := scanProgram(r.db.QueryRowContext(ctx, `SELECT `+programColumns+` FROM programs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "program not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load program", err)
	}
	return p, nil
}

func (r *ProgramRepository) FindActiveByName(ctx context.Context, name string) (*program.Program, error) {
	p, err := scanProgram(r.db.QueryRowContext(ctx, `SELECT `+programColumns+` FROM programs WHERE name = $1 AND is_active LIMIT 1`, name))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "program not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load program", err)
	}
	return p, nil
}

func (r *ProgramRepository) List(ctx context.Context) ([]program.Program, error) {
	return r.list(ctx, `SELECT `+programColumns+` FROM programs ORDER BY created_at DESC`)
}

func (r *ProgramRepository) ListActive(ctx context.Context) ([]program.Program, error) {
	return r.list(ctx, `SELECT `+programColumns+` FROM programs WHERE is_active ORDER BY registration_end`)
}

func (r *ProgramRepository) list(ctx context.Context, query string, args ...any) ([]program.Program, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list programs", err)
	}
	defer rows.Close()
	items := []program.Program{}
	for rows.Next() {
		p, err := scanProgram(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan program", err)
		}
		items = append(items, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list programs", err)
	}
	return items, nil
}

func (r *ProgramRepository) SetActive(ctx context.Context, id common.UUID, active bool) error {
	result, err := r.db.ExecContext(ctx, `UPDATE programs SET is_active = $1, updated_at = $2 WHERE id = $3`, active, time.Now().UTC(), id)
	if err != nil {
		if isUniqueViolation(err) {
			return common.NewError(common.CodeValidation, "an active program with this name already exists", program.ErrActiveNameTaken)
		}
		return common.NewError(common.CodeInternal, "failed to update program", err)
	}
	if rows, err := result.RowsAffected(); err == nil && rows == 0 {
		return common.NewError(common.CodeNotFound, "program not found", sql.ErrNoRows)
	}
	return nil
}

type JoinProgramRepository struct {
	db *sql.DB
}

func NewJoinProgramRepository(db *sql.DB) *JoinProgramRepository {
	return &JoinProgramRepository{db: db}
}

const joinProgramColumns = `id, program_id, direction_id, joined_applicants, created_at`

func scanJoinProgram(row rowScanner) (*program.JoinProgram, error) {
	var jp program.JoinProgram
	if err := row.Scan(&jp.ID, &jp.ProgramID, &jp.DirectionID, &jp.JoinedApplicants, &jp.CreatedAt); err != nil {
		return nil, err
	}
	return &jp, nil
}

// Upsert never touches the counter of an existing row.
func (r *JoinProgramRepository) Upsert(ctx context.Context, programID, directionID common.UUID) (*program.JoinProgram, error) {
	return upsertJoinProgram(ctx, r.db, programID, directionID)
}

func upsertJoinProgram(ctx context.Context, q querier, programID, directionID common.UUID) (*program.JoinProgram, error) {
	row := q.QueryRowContext(ctx, `INSERT INTO join_programs (id, program_id, direction_id, joined_applicants, created_at)
		VALUES ($1, $2, $3, 0, $4)
		ON CONFLICT (program_id, direction_id) DO UPDATE SET program_id = EXCLUDED.program_id
		RETURNING `+joinProgramColumns, common.NewUUID(), programID, directionID, time.Now().UTC())
	jp, err := scanJoinProgram(row)
	if err != nil {
		if isForeignKeyViolation(err) {
			return nil, common.NewError(common.CodeNotFound, "program or direction not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to upsert join program", err)
	}
	return jp, nil
}

func (r *JoinProgramRepository) GetByID(ctx context.Context, id common.UUID) (*program.JoinProgram, error) {
	jp, err := scanJoinProgram(r.db.QueryRowContext(ctx, `SELECT `+joinProgramColumns+` FROM join_programs WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.NewError(common.CodeNotFound, "join program not found", err)
		}
		return nil, common.NewError(common.CodeInternal, "failed to load join program", err)
	}
	return jp, nil
}

func (r *JoinProgramRepository) ListByProgram(ctx context.Context, programID common.UUID) ([]program.JoinProgram, error) {
	return r.list(ctx, `SELECT `+joinProgramColumns+` FROM join_programs WHERE program_id = $1 ORDER BY created_at`, programID)
}

func (r *JoinProgramRepository) List(ctx context.Context) ([]program.JoinProgram, error) {
	return r.list(ctx, `SELECT `+joinProgramColumns+` FROM join_programs ORDER BY created_at`)
}

func (r *JoinProgramRepository) list(ctx context.Context, query string, args ...any) ([]program.JoinProgram, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list join programs", err)
	}
	defer rows.Close()
	items := []program.JoinProgram{}
	for rows.Next() {
		jp, err := scanJoinProgram(rows)
		if err != nil {
			return nil, common.NewError(common.CodeInternal, "failed to scan join program", err)
		}
		items = append(items, *jp)
	}
	if err := rows.Err(); err != nil {
		return nil, common.NewError(common.CodeInternal, "failed to list join programs", err)
	}
	return items, nil
}
