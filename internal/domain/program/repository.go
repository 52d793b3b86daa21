package program

import (
	"context"

	"accelerator/internal/common"
)

type Repository interface {
	// Create and Update also upsert one join program per listed direction.
	// Both writes succeed together or not at all.
	Create(ctx context.Context, p Program) (*Program, error)
	Update(ctx context.Context, p Program) (*Program, error)
	Delete(ctx context.Context, id common.UUID) error
	GetByID(ctx context.Context, id common.UUID) (*Program, error)
	List(ctx context.Context) ([]Program, error)
	ListActive(ctx context.Context) ([]Program, error)
	FindActiveByName(ctx context.Context, name string) (*Program, error)
	SetActive(ctx context.Context, id common.UUID, active bool) error
}

type JoinProgramRepository interface {
	// Upsert returns the existing row for (programID, directionID) or creates
	// one with a zero counter.
	Upsert(ctx context.Context, programID, directionID common.UUID) (*JoinProgram, error)
	GetByID(ctx context.Context, id common.UUID) (*JoinProgram, error)
	ListByProgram(ctx context.Context, programID common.UUID) ([]JoinProgram, error)
	List(ctx context.Context) ([]JoinProgram, error)
}
