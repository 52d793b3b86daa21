package program

import (
	"errors"
	"time"

	"accelerator/internal/common"
)

var ErrActiveNameTaken = errors.New("an active program with this name already exists")

type Program struct {
	ID                common.UUID   `json:"id"`
	Name              string        `json:"name"`
	Requirements      string        `json:"requirements"`
	DirectionIDs      []common.UUID `json:"directions"`
	ProgramStart      time.Time     `json:"program_start"`
	ProgramEnd        time.Time     `json:"program_end"`
	RegistrationStart time.Time     `json:"registration_start"`
	RegistrationEnd   time.Time     `json:"registration_end"`
	Active            bool          `json:"is_active"`
	CreatedAt         time.Time     `json:"created_at"`
	UpdatedAt         time.Time     `json:"updated_at"`
}

// JoinProgram is the (program, direction) pair applicants register against.
type JoinProgram struct {
	ID               common.UUID `json:"id"`
	ProgramID        common.UUID `json:"program_id"`
	DirectionID      common.UUID `json:"direction_id"`
	JoinedApplicants int         `json:"joined_applicants"`
	CreatedAt        time.Time   `json:"created_at"`
}

// ShouldDeactivate reports whether the registration window of p has closed as
// of today. Only the calendar date of today is considered.
func ShouldDeactivate(p Program, today time.Time) bool {
	if !p.Active {
		return false
	}
	return !DateOf(today).Before(DateOf(p.RegistrationEnd))
}

// DateOf truncates t to midnight UTC of its calendar date.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// WindowErrors returns field errors for date windows that are out of order.
func WindowErrors(p Program) map[string]string {
	fields := map[string]string{}
	if p.RegistrationStart.IsZero() {
		fields["registration_start"] = "registration_start is required"
	}
	if p.RegistrationEnd.IsZero() {
		fields["registration_end"] = "registration_end is required"
	}
	if p.ProgramStart.IsZero() {
		fields["program_start"] = "program_start is required"
	}
	if p.ProgramEnd.IsZero() {
		fields["program_end"] = "program_end is required"
	}
	if len(fields) > 0 {
		return fields
	}
	if p.RegistrationEnd.Before(p.RegistrationStart) {
		fields["registration_end"] = "registration_end must not be before registration_start"
	}
	if p.ProgramEnd.Before(p.ProgramStart) {
		fields["program_end"] = "program_end must not be before program_start"
	}
	if p.ProgramStart.Before(p.RegistrationEnd) {
		fields["program_start"] = "registration window must close before the program starts"
	}
	return fields
}
