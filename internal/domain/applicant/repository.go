package applicant

import (
	"context"

	"accelerator/internal/common"
)

type Repository interface {
	// Create inserts a join request and increments the join program counter in
	// the same write. A duplicate (join program, user) pair fails with
	// ErrDuplicateRequest and leaves the counter untouched.
	Create(ctx context.Context, a Applicant) (*Applicant, error)
	GetByID(ctx context.Context, id common.UUID) (*Applicant, error)
	List(ctx context.Context) ([]Applicant, error)
	ListByJoinProgram(ctx context.Context, joinProgramID common.UUID) ([]Applicant, error)
	// ListByUser is sorted by join date, newest first.
	ListByUser(ctx context.Context, userID common.UUID) ([]Applicant, error)
	UpdateStatus(ctx context.Context, id common.UUID, status RequestStatus) (*Applicant, error)
	Delete(ctx context.Context, id common.UUID) error
}

type ResponseRepository interface {
	// Create fails with ErrDuplicateResponse when the user already answered the stage.
	Create(ctx context.Context, r Response) (*Response, error)
	GetByID(ctx context.Context, id common.UUID) (*Response, error)
	List(ctx context.Context) ([]Response, error)
	ListByUser(ctx context.Context, userID common.UUID) ([]Response, error)
	UpdateStatus(ctx context.Context, id common.UUID, status ResponseStatus) (*Response, error)
	// HasRejectedInActivePrograms reports whether the user holds a rejected
	// response on a stage scheduled in an active program they joined.
	HasRejectedInActivePrograms(ctx context.Context, userID common.UUID) (bool, error)
}
