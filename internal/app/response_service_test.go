package app

import (
	"context"
	"errors"
	"testing"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
	"accelerator/internal/domain/stage"
	"accelerator/internal/domain/user"
)

func TestSubmitResponseNotRegistered(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProgram(t, "Spring2023", env.backend.ID)
	jp := env.joinProgram(t, p.ID, env.backend.ID)
	st := env.scheduledStage(t, jp, "S1", 0)
	u := env.createUser(t, "ann@example.com", user.RoleStandard)

	_, err := env.responses.Submit(context.Background(), u.ID, st.ID, env.backend.ID, "answer")
	if !errors.Is(err, applicant.ErrNotRegistered) {
		t.Fatalf("expected ErrNotRegistered, got %v", err)
	}
}

func TestSubmitResponseStageNotScheduled(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProgram(t, "Spring2023", env.backend.ID)
	jp := env.joinProgram(t, p.ID, env.backend.ID)
	u := env.createUser(t, "ann@example.com", user.RoleStandard)
	env.join(t, jp.ID, u.ID, applicant.RequestAccepted)

	loose, err := env.stages.CreateStage(ctx, stage.Stage{DirectionID: env.backend.ID, Type: stage.TypeTest, Name: "Unscheduled"})
	if err != nil {
		t.Fatalf("CreateStage: %v", err)
	}
	if _, err := env.responses.Submit(ctx, u.ID, loose.ID, env.backend.ID, "answer"); !errors.Is(err, applicant.ErrStageNotScheduled) {
		t.Fatalf("expected ErrStageNotScheduled, got %v", err)
	}
	if _, err := env.responses.Submit(ctx, u.ID, common.NewUUID(), env.backend.ID, "answer"); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not found for unknown stage, got %v", err)
	}
}

func TestSubmitResponsePendingRequestAlwaysFails(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProgram(t, "Spring2023", env.backend.ID)
	jp := env.joinProgram(t, p.ID, env.backend.ID)
	st := env.scheduledStage(t, jp, "S1", 0)
	u := env.createUser(t, "ann@example.com", user.RoleStandard)
	env.join(t, jp.ID, u.ID, applicant.RequestPending)

	for _, directionID := range []common.UUID{env.backend.ID, env.design.ID, common.NewUUID()} {
		if _, err := env.responses.Submit(ctx, u.ID, st.ID, directionID, "answer"); !errors.Is(err, applicant.ErrRequestPending) {
			t.Fatalf("expected ErrRequestPending for direction %s, got %v", directionID, err)
		}
	}
}

func TestSubmitResponseRejectedRequest(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProgram(t, "Spring2023", env.backend.ID)
	jp := env.joinProgram(t, p.ID, env.backend.ID)
	st := env.scheduledStage(t, jp, "S1", 0)
	u := env.createUser(t, "ann@example.com", user.RoleStandard)
	env.join(t, jp.ID, u.ID, applicant.RequestRejected)

	_, err := env.responses.Submit(context.Background(), u.ID, st.ID, env.backend.ID, "answer")
	if !errors.Is(err, applicant.ErrRequestRejected) {
		t.Fatalf("expected ErrRequestRejected, got %v", err)
	}
}

func TestSubmitResponseDirectionMismatch(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProgram(t, "Spring2023", env.backend.ID)
	jp := env.joinProgram(t, p.ID, env.backend.ID)
	st := env.scheduledStage(t, jp, "S1", 0)
	u := env.createUser(t, "ann@example.com", user.RoleStandard)
	env.join(t, jp.ID, u.ID, applicant.RequestAccepted)

	_, err := env.responses.Submit(context.Background(), u.ID, st.ID, env.design.ID, "answer")
	if !errors.Is(err, applicant.ErrDirectionMismatch) {
		t.Fatalf("expected ErrDirectionMismatch, got %v", err)
	}
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation code, got %v", err)
	}
}

func TestSubmitResponseUsesRecordOfSchedulingJoinProgram(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProgram(t, "Spring2023", env.backend.ID, env.design.ID)
	backendJP := env.joinProgram(t, p.ID, env.backend.ID)
	designJP := env.joinProgram(t, p.ID, env.design.ID)
	st := env.scheduledStage(t, backendJP, "S1", 0)
	u := env.createUser(t, "ann@example.com", user.RoleStandard)
	env.join(t, backendJP.ID, u.ID, applicant.RequestAccepted)
	env.join(t, designJP.ID, u.ID, applicant.RequestPending)

	if _, err := env.responses.Submit(context.Background(), u.ID, st.ID, env.backend.ID, "answer"); err != nil {
		t.Fatalf("expected accepted backend record to gate the backend stage, got %v", err)
	}
}

func TestSubmitResponseDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProgram(t, "Spring2023", env.backend.ID)
	jp := env.joinProgram(t, p.ID, env.backend.ID)
	st := env.scheduledStage(t, jp, "S1", 0)
	u := env.createUser(t, "ann@example.com", user.RoleStandard)
	env.join(t, jp.ID, u.ID, applicant.RequestAccepted)

	resp, err := env.responses.Submit(ctx, u.ID, st.ID, env.backend.ID, "  answer  ")
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if resp.Status != applicant.ResponsePending || resp.Text != "answer" {
		t.Fatalf("unexpected response %+v", resp)
	}
	_, err = env.responses.Submit(ctx, u.ID, st.ID, env.backend.ID, "again")
	if !errors.Is(err, applicant.ErrDuplicateResponse) || !common.Is(err, common.CodeDuplicate) {
		t.Fatalf("expected ErrDuplicateResponse, got %v", err)
	}
}

func TestStageProgressionAfterEvaluation(t *testing.T) {
	for _, tc := range []struct {
		name    string
		verdict string
		wantErr error
	}{
		{name: "accepted S1 unlocks S2", verdict: "accepted"},
		{name: "rejected S1 blocks S2", verdict: "rejected", wantErr: applicant.ErrPreviouslyRejected},
	} {
		t.Run(tc.name, func(t *testing.T) {
			env := newTestEnv(t)
			ctx := context.Background()
			p := env.createProgram(t, "Spring2023", env.backend.ID)
			jp := env.joinProgram(t, p.ID, env.backend.ID)
			s1 := env.scheduledStage(t, jp, "S1", 0)
			s2 := env.scheduledStage(t, jp, "S2", 1)
			u := env.createUser(t, "ann@example.com", user.RoleStandard)
			staff := env.createUser(t, "staff@example.com", user.RoleStaffDirection)
			env.join(t, jp.ID, u.ID, applicant.RequestAccepted)

			first, err := env.responses.Submit(ctx, u.ID, s1.ID, env.backend.ID, "S1 answer")
			if err != nil {
				t.Fatalf("submit S1: %v", err)
			}
			if _, err := env.evaluations.Submit(ctx, staff.ID, EvaluationInput{ResponseID: first.ID, Kind: "final", Status: tc.verdict}); err != nil {
				t.Fatalf("evaluate S1: %v", err)
			}

			_, err = env.responses.Submit(ctx, u.ID, s2.ID, env.backend.ID, "S2 answer")
			if tc.wantErr == nil && err != nil {
				t.Fatalf("expected S2 submission to succeed, got %v", err)
			}
			if tc.wantErr != nil && !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestPreviousRejectionIgnoredOnceProgramInactive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	old := env.createProgram(t, "Spring2023", env.backend.ID)
	oldJP := env.joinProgram(t, old.ID, env.backend.ID)
	s1 := env.scheduledStage(t, oldJP, "S1", 0)
	u := env.createUser(t, "ann@example.com", user.RoleStandard)
	staff := env.createUser(t, "staff@example.com", user.RoleAdmin)
	env.join(t, oldJP.ID, u.ID, applicant.RequestAccepted)
	first, err := env.responses.Submit(ctx, u.ID, s1.ID, env.backend.ID, "answer")
	if err != nil {
		t.Fatalf("submit S1: %v", err)
	}
	if _, err := env.evaluations.Submit(ctx, staff.ID, EvaluationInput{ResponseID: first.ID, Kind: "final", Status: "rejected"}); err != nil {
		t.Fatalf("evaluate S1: %v", err)
	}
	if _, err := env.programs.DeactivateExpired(ctx, date(2023, 1, 1)); err != nil {
		t.Fatalf("DeactivateExpired: %v", err)
	}

	next := env.createProgram(t, "Autumn2023", env.backend.ID)
	nextJP := env.joinProgram(t, next.ID, env.backend.ID)
	s2 := env.scheduledStage(t, nextJP, "S2", 0)
	env.join(t, nextJP.ID, u.ID, applicant.RequestAccepted)

	if _, err := env.responses.Submit(ctx, u.ID, s2.ID, env.backend.ID, "answer"); err != nil {
		t.Fatalf("expected rejection in closed program to be ignored, got %v", err)
	}
}
