package evaluation

import (
	"context"
	"errors"
	"strings"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
)

var (
	ErrAlreadyEvaluated = errors.New("response already evaluated by this staff member, update the existing evaluation instead")
	ErrUnresolvedFinal  = errors.New("final evaluation must be accepted or rejected")
	ErrNotAuthor        = errors.New("evaluation belongs to another staff member")
	ErrFinalDowngrade   = errors.New("a final evaluation cannot be turned back into a draft")
)

// Kind tags an evaluation as a working note or the deciding verdict.
type Kind string

const (
	KindDraft Kind = "draft"
	KindFinal Kind = "final"
)

func NormalizeKind(value string) Kind {
	normalized := Kind(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return KindDraft
	}
	return normalized
}

func (k Kind) Valid() bool {
	return k == KindDraft || k == KindFinal
}

type Status string

const (
	StatusNone     Status = "none"
	StatusAccepted Status = "accepted"
	StatusMaybe    Status = "maybe"
	StatusRejected Status = "rejected"
)

func NormalizeStatus(value string) Status {
	normalized := Status(strings.ToLower(strings.TrimSpace(value)))
	if normalized == "" {
		return StatusNone
	}
	return normalized
}

func (s Status) Valid() bool {
	switch s {
	case StatusNone, StatusAccepted, StatusMaybe, StatusRejected:
		return true
	default:
		return false
	}
}

// Allows reports whether an evaluation of kind k may carry status s.
func (k Kind) Allows(s Status) bool {
	if k == KindFinal {
		return s == StatusAccepted || s == StatusRejected
	}
	return s.Valid()
}

// Verdict maps s onto a response status. Only accepted and rejected decide
// anything; none and maybe leave the response as it is.
func (s Status) Verdict() (applicant.ResponseStatus, bool) {
	switch s {
	case StatusAccepted:
		return applicant.ResponseAccepted, true
	case StatusRejected:
		return applicant.ResponseRejected, true
	default:
		return "", false
	}
}

type Evaluation struct {
	ID          common.UUID `json:"id"`
	AuthorID    common.UUID `json:"author_id"`
	ResponseID  common.UUID `json:"applicant_response_id"`
	Kind        Kind        `json:"kind"`
	Description string      `json:"description"`
	Status      Status      `json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

// WriteBack returns the response status that writing e decides, or nil when
// the response keeps its status. others are the evaluations already stored
// for the same response. A final verdict always decides. A draft decides only
// with accepted or rejected, and only while no final verdict exists.
func WriteBack(e Evaluation, others []Evaluation) *applicant.ResponseStatus {
	status, ok := e.Status.Verdict()
	if !ok {
		return nil
	}
	if e.Kind != KindFinal {
		for _, o := range others {
			if o.ID != e.ID && o.Kind == KindFinal {
				return nil
			}
		}
	}
	return &status
}

// Repository writes an evaluation and its response write-back atomically: a
// non-nil responseStatus is stored on the evaluated response in the same
// transaction, and a failure of either write leaves neither behind.
type Repository interface {
	// Create fails with ErrAlreadyEvaluated when the author already evaluated the response.
	Create(ctx context.Context, e Evaluation, responseStatus *applicant.ResponseStatus) (*Evaluation, error)
	Update(ctx context.Context, e Evaluation, responseStatus *applicant.ResponseStatus) (*Evaluation, error)
	GetByID(ctx context.Context, id common.UUID) (*Evaluation, error)
	List(ctx context.Context) ([]Evaluation, error)
	ListByResponse(ctx context.Context, responseID common.UUID) ([]Evaluation, error)
}
