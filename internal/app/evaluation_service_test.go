package app

import (
	"context"
	"errors"
	"testing"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
	"accelerator/internal/domain/evaluation"
	"accelerator/internal/domain/user"
)

func newEvaluatedResponse(t *testing.T) (*testEnv, *applicant.Response) {
	t.Helper()
	env := newTestEnv(t)
	p := env.createProgram(t, "Spring2023", env.backend.ID)
	jp := env.joinProgram(t, p.ID, env.backend.ID)
	st := env.scheduledStage(t, jp, "S1", 0)
	u := env.createUser(t, "ann@example.com", user.RoleStandard)
	env.join(t, jp.ID, u.ID, applicant.RequestAccepted)
	resp, err := env.responses.Submit(context.Background(), u.ID, st.ID, env.backend.ID, "answer")
	if err != nil {
		t.Fatalf("Submit response: %v", err)
	}
	return env, resp
}

func TestFinalEvaluationRejectsUnresolvedStatus(t *testing.T) {
	env, resp := newEvaluatedResponse(t)
	ctx := context.Background()
	staff := env.createUser(t, "staff@example.com", user.RoleStaffDirection)

	for _, status := range []string{"none", "", "maybe"} {
		_, err := env.evaluations.Submit(ctx, staff.ID, EvaluationInput{ResponseID: resp.ID, Kind: "final", Status: status})
		if !errors.Is(err, evaluation.ErrUnresolvedFinal) {
			t.Fatalf("expected ErrUnresolvedFinal for %q, got %v", status, err)
		}
	}

	draft, err := env.evaluations.Submit(ctx, staff.ID, EvaluationInput{ResponseID: resp.ID, Status: "none", Description: "first look"})
	if err != nil {
		t.Fatalf("expected draft with none to succeed, got %v", err)
	}
	if draft.Kind != evaluation.KindDraft || draft.Status != evaluation.StatusNone {
		t.Fatalf("unexpected draft %+v", draft)
	}
	if draft.AuthorID != staff.ID {
		t.Fatalf("expected author %s, got %s", staff.ID, draft.AuthorID)
	}
}

func TestEvaluationWritesBackResponseStatus(t *testing.T) {
	env, resp := newEvaluatedResponse(t)
	ctx := context.Background()
	first := env.createUser(t, "first@example.com", user.RoleStaffDirection)
	second := env.createUser(t, "second@example.com", user.RoleAdmin)

	if _, err := env.evaluations.Submit(ctx, first.ID, EvaluationInput{ResponseID: resp.ID, Kind: "final", Status: "accepted"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	assertResponseStatus(t, env, resp.ID, applicant.ResponseAccepted)

	if _, err := env.evaluations.Submit(ctx, second.ID, EvaluationInput{ResponseID: resp.ID, Status: "maybe"}); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	assertResponseStatus(t, env, resp.ID, applicant.ResponseAccepted)

	if _, err := env.evaluations.Submit(ctx, second.ID, EvaluationInput{ResponseID: resp.ID, Status: "rejected"}); !errors.Is(err, evaluation.ErrAlreadyEvaluated) {
		t.Fatalf("expected ErrAlreadyEvaluated, got %v", err)
	}
	assertResponseStatus(t, env, resp.ID, applicant.ResponseAccepted)
}

func TestDraftEvaluationKeepsResponseStatusUntilResolved(t *testing.T) {
	env, resp := newEvaluatedResponse(t)
	ctx := context.Background()
	staff := env.createUser(t, "staff@example.com", user.RoleStaffDirection)

	e, err := env.evaluations.Submit(ctx, staff.ID, EvaluationInput{ResponseID: resp.ID, Status: "maybe"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	assertResponseStatus(t, env, resp.ID, applicant.ResponsePending)

	accepted := "accepted"
	if _, err := env.evaluations.Update(ctx, staff.ID, e.ID, EvaluationPatch{Status: &accepted}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertResponseStatus(t, env, resp.ID, applicant.ResponseAccepted)

	none := "none"
	if _, err := env.evaluations.Update(ctx, staff.ID, e.ID, EvaluationPatch{Status: &none}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	assertResponseStatus(t, env, resp.ID, applicant.ResponseAccepted)
}

func TestDraftAfterFinalRejectionKeepsApplicantBlocked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProgram(t, "Spring2023", env.backend.ID)
	jp := env.joinProgram(t, p.ID, env.backend.ID)
	s1 := env.scheduledStage(t, jp, "S1", 0)
	s2 := env.scheduledStage(t, jp, "S2", 1)
	u := env.createUser(t, "ann@example.com", user.RoleStandard)
	staffA := env.createUser(t, "a@example.com", user.RoleStaffDirection)
	staffB := env.createUser(t, "b@example.com", user.RoleStaffDirection)
	env.join(t, jp.ID, u.ID, applicant.RequestAccepted)

	first, err := env.responses.Submit(ctx, u.ID, s1.ID, env.backend.ID, "S1 answer")
	if err != nil {
		t.Fatalf("submit S1: %v", err)
	}
	if _, err := env.evaluations.Submit(ctx, staffA.ID, EvaluationInput{ResponseID: first.ID, Kind: "final", Status: "rejected"}); err != nil {
		t.Fatalf("final evaluation: %v", err)
	}
	draft, err := env.evaluations.Submit(ctx, staffB.ID, EvaluationInput{ResponseID: first.ID, Status: "maybe"})
	if err != nil {
		t.Fatalf("draft evaluation: %v", err)
	}
	assertResponseStatus(t, env, first.ID, applicant.ResponseRejected)

	accepted := "accepted"
	if _, err := env.evaluations.Update(ctx, staffB.ID, draft.ID, EvaluationPatch{Status: &accepted}); err != nil {
		t.Fatalf("Update draft: %v", err)
	}
	assertResponseStatus(t, env, first.ID, applicant.ResponseRejected)

	if _, err := env.responses.Submit(ctx, u.ID, s2.ID, env.backend.ID, "S2 answer"); !errors.Is(err, applicant.ErrPreviouslyRejected) {
		t.Fatalf("expected ErrPreviouslyRejected, got %v", err)
	}
}

func TestFinalEvaluationCannotBecomeDraft(t *testing.T) {
	env, resp := newEvaluatedResponse(t)
	ctx := context.Background()
	staff := env.createUser(t, "staff@example.com", user.RoleStaffDirection)

	e, err := env.evaluations.Submit(ctx, staff.ID, EvaluationInput{ResponseID: resp.ID, Kind: "final", Status: "rejected"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	draft := "draft"
	maybe := "maybe"
	_, err = env.evaluations.Update(ctx, staff.ID, e.ID, EvaluationPatch{Kind: &draft, Status: &maybe})
	if !errors.Is(err, evaluation.ErrFinalDowngrade) || !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected ErrFinalDowngrade, got %v", err)
	}
	assertResponseStatus(t, env, resp.ID, applicant.ResponseRejected)

	accepted := "accepted"
	if _, err := env.evaluations.Update(ctx, staff.ID, e.ID, EvaluationPatch{Status: &accepted}); err != nil {
		t.Fatalf("expected final verdict to be revisable, got %v", err)
	}
	assertResponseStatus(t, env, resp.ID, applicant.ResponseAccepted)
}

func TestUpdateEvaluationOnlyByAuthor(t *testing.T) {
	env, resp := newEvaluatedResponse(t)
	ctx := context.Background()
	author := env.createUser(t, "author@example.com", user.RoleStaffDirection)
	other := env.createUser(t, "other@example.com", user.RoleStaffDirection)

	e, err := env.evaluations.Submit(ctx, author.ID, EvaluationInput{ResponseID: resp.ID, Status: "maybe"})
	if err != nil {
		t.Fatalf("Submit: %v", err)
	}
	rejected := "rejected"
	if _, err := env.evaluations.Update(ctx, other.ID, e.ID, EvaluationPatch{Status: &rejected}); !common.Is(err, common.CodeForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	final := "final"
	none := "none"
	if _, err := env.evaluations.Update(ctx, author.ID, e.ID, EvaluationPatch{Kind: &final, Status: &none}); !errors.Is(err, evaluation.ErrUnresolvedFinal) {
		t.Fatalf("expected ErrUnresolvedFinal, got %v", err)
	}

	updated, err := env.evaluations.Update(ctx, author.ID, e.ID, EvaluationPatch{Kind: &final, Status: &rejected})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.ID != e.ID || updated.Status != evaluation.StatusRejected || updated.Kind != evaluation.KindFinal {
		t.Fatalf("unexpected evaluation %+v", updated)
	}
	assertResponseStatus(t, env, resp.ID, applicant.ResponseRejected)

	items, err := env.evaluations.List(ctx, resp.ID)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected the existing row reused, got %d rows", len(items))
	}
}

func TestSubmitEvaluationUnknownResponse(t *testing.T) {
	env := newTestEnv(t)
	staff := env.createUser(t, "staff@example.com", user.RoleStaffDirection)
	_, err := env.evaluations.Submit(context.Background(), staff.ID, EvaluationInput{ResponseID: common.NewUUID(), Status: "accepted"})
	if !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func assertResponseStatus(t *testing.T, env *testEnv, id common.UUID, want applicant.ResponseStatus) {
	t.Helper()
	resp, err := env.responses.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get response: %v", err)
	}
	if resp.Status != want {
		t.Fatalf("expected response status %s, got %s", want, resp.Status)
	}
}
