package stage

import (
	"context"
	"errors"
	"strings"
	"time"

	"accelerator/internal/common"
)

var (
	ErrDirectionMismatch = errors.New("stage direction does not match the join program direction")
	ErrAlreadyBound      = errors.New("stage is already bound to this join program")
)

type Type string

const (
	TypeTest       Type = "test"
	TypeTask       Type = "task"
	TypeLiveCoding Type = "live-coding"
	TypeInterview  Type = "interview"
)

func NormalizeType(value string) Type {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.ReplaceAll(normalized, "_", "-")
	if normalized == "livecoding" || normalized == "live coding" {
		return TypeLiveCoding
	}
	return Type(normalized)
}

func (t Type) Valid() bool {
	switch t {
	case TypeTest, TypeTask, TypeLiveCoding, TypeInterview:
		return true
	default:
		return false
	}
}

type Stage struct {
	ID          common.UUID `json:"id"`
	DirectionID common.UUID `json:"direction_id"`
	Type        Type        `json:"type"`
	Name        string      `json:"name"`
	Assignment  string      `json:"assignment"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// OrderedStage places a stage at a position inside a join program's sequence.
type OrderedStage struct {
	ID            common.UUID `json:"id"`
	JoinProgramID common.UUID `json:"join_program_id"`
	StageID       common.UUID `json:"stage_id"`
	Position      int         `json:"position"`
	CreatedAt     time.Time   `json:"created_at"`
}

type Repository interface {
	Create(ctx context.Context, s Stage) (*Stage, error)
	Update(ctx context.Context, s Stage) (*Stage, error)
	Delete(ctx context.Context, id common.UUID) error
	GetByID(ctx context.Context, id common.UUID) (*Stage, error)
	List(ctx context.Context) ([]Stage, error)
	ListByDirection(ctx context.Context, directionID common.UUID) ([]Stage, error)
}

type OrderedRepository interface {
	// Create fails with ErrAlreadyBound when the (join program, stage) pair exists.
	Create(ctx context.Context, o OrderedStage) (*OrderedStage, error)
	Delete(ctx context.Context, id common.UUID) error
	GetByID(ctx context.Context, id common.UUID) (*OrderedStage, error)
	// ListByJoinProgram is sorted by position, then creation time.
	ListByJoinProgram(ctx context.Context, joinProgramID common.UUID) ([]OrderedStage, error)
	ListByStage(ctx context.Context, stageID common.UUID) ([]OrderedStage, error)
}
