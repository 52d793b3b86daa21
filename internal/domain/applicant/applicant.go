package applicant

import (
	"errors"
	"strings"
	"time"

	"accelerator/internal/common"
)

var (
	ErrDuplicateRequest   = errors.New("join request already exists")
	ErrDuplicateResponse  = errors.New("response for this stage already exists")
	ErrNotRegistered      = errors.New("user is not registered in any program")
	ErrStageNotScheduled  = errors.New("stage is not scheduled in any join program")
	ErrRequestPending     = errors.New("join request is still pending")
	ErrRequestRejected    = errors.New("join request was rejected")
	ErrDirectionMismatch  = errors.New("response direction does not match the joined direction")
	ErrPreviouslyRejected = errors.New("a previous response was rejected")
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestAccepted RequestStatus = "accepted"
	RequestRejected RequestStatus = "rejected"
)

func NormalizeRequestStatus(value string) RequestStatus {
	return RequestStatus(strings.ToLower(strings.TrimSpace(value)))
}

func (s RequestStatus) Valid() bool {
	return s == RequestPending || s == RequestAccepted || s == RequestRejected
}

// Applicant is a user's join request against one join program.
type Applicant struct {
	ID            common.UUID   `json:"id"`
	JoinProgramID common.UUID   `json:"join_program_id"`
	UserID        common.UUID   `json:"applicant_id"`
	Status        RequestStatus `json:"request_status"`
	JoinedAt      time.Time     `json:"join_request_date"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

type ResponseStatus string

const (
	ResponsePending  ResponseStatus = "pending"
	ResponseAccepted ResponseStatus = "accepted"
	ResponseRejected ResponseStatus = "rejected"
)

func (s ResponseStatus) Valid() bool {
	return s == ResponsePending || s == ResponseAccepted || s == ResponseRejected
}

// Response is an applicant's submission for one stage. Its status is only
// changed by staff evaluations.
type Response struct {
	ID          common.UUID    `json:"id"`
	UserID      common.UUID    `json:"applicant_id"`
	StageID     common.UUID    `json:"stage_id"`
	DirectionID common.UUID    `json:"direction_id"`
	Text        string         `json:"response"`
	Status      ResponseStatus `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}
