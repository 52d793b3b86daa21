package memory

import (
	"context"
	"errors"
	"testing"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
	"accelerator/internal/domain/direction"
	"accelerator/internal/domain/evaluation"
	"accelerator/internal/domain/program"
	"accelerator/internal/domain/stage"
	"accelerator/internal/domain/user"
)

type fixture struct {
	store *Store
	dir   *direction.Direction
	user  *user.User
	prog  *program.Program
	jp    *program.JoinProgram
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	ctx := context.Background()
	store := NewStore()
	dir, err := store.Directions().Upsert(ctx, direction.Direction{Title: "Backend", StageCount: 4})
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	u, err := store.Users().Create(ctx, user.User{Email: "Ann@Example.com", Role: user.RoleStandard})
	if err != nil {
		t.Fatalf("Create user: %v", err)
	}
	p, err := store.Programs().Create(ctx, program.Program{Name: "Spring2023", DirectionIDs: []common.UUID{dir.ID}, Active: true})
	if err != nil {
		t.Fatalf("Create program: %v", err)
	}
	jp, err := store.JoinPrograms().Upsert(ctx, p.ID, dir.ID)
	if err != nil {
		t.Fatalf("Upsert join program: %v", err)
	}
	return fixture{store: store, dir: dir, user: u, prog: p, jp: jp}
}

func TestUserEmailIsNormalizedAndUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if f.user.Email != "ann@example.com" {
		t.Fatalf("expected lowercased email, got %q", f.user.Email)
	}
	_, err := f.store.Users().Create(ctx, user.User{Email: "ann@example.com "})
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestActiveProgramNameIsUnique(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.store.Programs().Create(ctx, program.Program{Name: "Spring2023", Active: true})
	if !errors.Is(err, program.ErrActiveNameTaken) {
		t.Fatalf("expected ErrActiveNameTaken, got %v", err)
	}
	if err := f.store.Programs().SetActive(ctx, f.prog.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	if _, err := f.store.Programs().Create(ctx, program.Program{Name: "Spring2023", Active: true}); err != nil {
		t.Fatalf("expected name to be free after deactivation, got %v", err)
	}
}

func TestJoinProgramUpsertKeepsCounter(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	if _, err := f.store.Applicants().Create(ctx, applicant.Applicant{JoinProgramID: f.jp.ID, UserID: f.user.ID, Status: applicant.RequestPending}); err != nil {
		t.Fatalf("Create applicant: %v", err)
	}
	again, err := f.store.JoinPrograms().Upsert(ctx, f.prog.ID, f.dir.ID)
	if err != nil {
		t.Fatalf("Upsert: %v", err)
	}
	if again.ID != f.jp.ID || again.JoinedApplicants != 1 {
		t.Fatalf("expected existing row with counter 1, got %+v", again)
	}
}

func TestApplicantCreateIncrementsOnceAndRejectsDuplicate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := f.store.Applicants()
	if _, err := repo.Create(ctx, applicant.Applicant{JoinProgramID: f.jp.ID, UserID: f.user.ID, Status: applicant.RequestPending}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, err := repo.Create(ctx, applicant.Applicant{JoinProgramID: f.jp.ID, UserID: f.user.ID, Status: applicant.RequestPending})
	if !errors.Is(err, applicant.ErrDuplicateRequest) || !common.Is(err, common.CodeDuplicate) {
		t.Fatalf("expected duplicate request error, got %v", err)
	}
	jp, err := f.store.JoinPrograms().GetByID(ctx, f.jp.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if jp.JoinedApplicants != 1 {
		t.Fatalf("expected counter 1, got %d", jp.JoinedApplicants)
	}
}

func TestProgramDeleteCascades(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st, err := f.store.Stages().Create(ctx, stage.Stage{DirectionID: f.dir.ID, Type: stage.TypeTest, Name: "Quiz"})
	if err != nil {
		t.Fatalf("Create stage: %v", err)
	}
	bound, err := f.store.OrderedStages().Create(ctx, stage.OrderedStage{JoinProgramID: f.jp.ID, StageID: st.ID})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	a, err := f.store.Applicants().Create(ctx, applicant.Applicant{JoinProgramID: f.jp.ID, UserID: f.user.ID, Status: applicant.RequestPending})
	if err != nil {
		t.Fatalf("Create applicant: %v", err)
	}
	if err := f.store.Programs().Delete(ctx, f.prog.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := f.store.JoinPrograms().GetByID(ctx, f.jp.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected join program removed, got %v", err)
	}
	if _, err := f.store.OrderedStages().GetByID(ctx, bound.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected ordered stage removed, got %v", err)
	}
	if _, err := f.store.Applicants().GetByID(ctx, a.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected applicant removed, got %v", err)
	}
	if _, err := f.store.Stages().GetByID(ctx, st.ID); err != nil {
		t.Fatalf("expected stage to survive, got %v", err)
	}
}

func TestOrderedStagesSortedByPosition(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	var ids []common.UUID
	for _, pos := range []int{2, 0, 1} {
		st, err := f.store.Stages().Create(ctx, stage.Stage{DirectionID: f.dir.ID, Type: stage.TypeTask, Name: "Task"})
		if err != nil {
			t.Fatalf("Create stage: %v", err)
		}
		if _, err := f.store.OrderedStages().Create(ctx, stage.OrderedStage{JoinProgramID: f.jp.ID, StageID: st.ID, Position: pos}); err != nil {
			t.Fatalf("bind: %v", err)
		}
		ids = append(ids, st.ID)
	}
	items, err := f.store.OrderedStages().ListByJoinProgram(ctx, f.jp.ID)
	if err != nil {
		t.Fatalf("ListByJoinProgram: %v", err)
	}
	if len(items) != 3 || items[0].StageID != ids[1] || items[1].StageID != ids[2] || items[2].StageID != ids[0] {
		t.Fatalf("unexpected order: %+v", items)
	}
}

func TestHasRejectedInActivePrograms(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st, err := f.store.Stages().Create(ctx, stage.Stage{DirectionID: f.dir.ID, Type: stage.TypeTask, Name: "S1"})
	if err != nil {
		t.Fatalf("Create stage: %v", err)
	}
	if _, err := f.store.OrderedStages().Create(ctx, stage.OrderedStage{JoinProgramID: f.jp.ID, StageID: st.ID}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	if _, err := f.store.Applicants().Create(ctx, applicant.Applicant{JoinProgramID: f.jp.ID, UserID: f.user.ID, Status: applicant.RequestAccepted}); err != nil {
		t.Fatalf("Create applicant: %v", err)
	}
	resp, err := f.store.Responses().Create(ctx, applicant.Response{UserID: f.user.ID, StageID: st.ID, DirectionID: f.dir.ID, Status: applicant.ResponsePending})
	if err != nil {
		t.Fatalf("Create response: %v", err)
	}
	rejected, _ := f.store.Responses().HasRejectedInActivePrograms(ctx, f.user.ID)
	if rejected {
		t.Fatal("expected no rejection while pending")
	}
	if _, err := f.store.Responses().UpdateStatus(ctx, resp.ID, applicant.ResponseRejected); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	rejected, _ = f.store.Responses().HasRejectedInActivePrograms(ctx, f.user.ID)
	if !rejected {
		t.Fatal("expected rejection in active program")
	}
	if err := f.store.Programs().SetActive(ctx, f.prog.ID, false); err != nil {
		t.Fatalf("SetActive: %v", err)
	}
	rejected, _ = f.store.Responses().HasRejectedInActivePrograms(ctx, f.user.ID)
	if rejected {
		t.Fatal("expected inactive program to be ignored")
	}
}

func TestEvaluationWriteBackIsAtomic(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	st, err := f.store.Stages().Create(ctx, stage.Stage{DirectionID: f.dir.ID, Type: stage.TypeTask, Name: "S1"})
	if err != nil {
		t.Fatalf("Create stage: %v", err)
	}
	resp, err := f.store.Responses().Create(ctx, applicant.Response{UserID: f.user.ID, StageID: st.ID, DirectionID: f.dir.ID, Status: applicant.ResponsePending})
	if err != nil {
		t.Fatalf("Create response: %v", err)
	}
	e := evaluation.Evaluation{AuthorID: f.user.ID, ResponseID: resp.ID, Kind: evaluation.KindFinal, Status: evaluation.StatusAccepted}

	broken := applicant.ResponseStatus("waitlisted")
	if _, err := f.store.Evaluations().Create(ctx, e, &broken); !common.Is(err, common.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	items, _ := f.store.Evaluations().ListByResponse(ctx, resp.ID)
	if len(items) != 0 {
		t.Fatalf("expected no evaluation after failed write-back, got %d", len(items))
	}

	accepted := applicant.ResponseAccepted
	created, err := f.store.Evaluations().Create(ctx, e, &accepted)
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	got, _ := f.store.Responses().GetByID(ctx, resp.ID)
	if got.Status != applicant.ResponseAccepted {
		t.Fatalf("expected accepted, got %s", got.Status)
	}

	created.Status = evaluation.StatusRejected
	if _, err := f.store.Evaluations().Update(ctx, *created, &broken); !common.Is(err, common.CodeInternal) {
		t.Fatalf("expected internal error, got %v", err)
	}
	stored, _ := f.store.Evaluations().GetByID(ctx, created.ID)
	if stored.Status != evaluation.StatusAccepted {
		t.Fatalf("expected evaluation unchanged, got %s", stored.Status)
	}
	got, _ = f.store.Responses().GetByID(ctx, resp.ID)
	if got.Status != applicant.ResponseAccepted {
		t.Fatalf("expected response unchanged, got %s", got.Status)
	}
}

func TestProgramCreateWithUnknownDirectionLeavesNothingBehind(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	repo := f.store.Programs()
	_, err := repo.Create(ctx, program.Program{Name: "Autumn", DirectionIDs: []common.UUID{f.dir.ID, common.NewUUID()}, Active: true})
	if !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if _, err := repo.FindActiveByName(ctx, "Autumn"); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected no program after failed create, got %v", err)
	}
	all, _ := f.store.JoinPrograms().List(ctx)
	if len(all) != 1 {
		t.Fatalf("expected only the fixture join program, got %d", len(all))
	}

	p, err := repo.Create(ctx, program.Program{Name: "Autumn", DirectionIDs: []common.UUID{f.dir.ID}, Active: true})
	if err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	items, _ := f.store.JoinPrograms().ListByProgram(ctx, p.ID)
	if len(items) != 1 || items[0].DirectionID != f.dir.ID {
		t.Fatalf("expected one join program for the direction, got %+v", items)
	}

	p.Name = "Autumn renamed"
	p.DirectionIDs = append(p.DirectionIDs, common.NewUUID())
	if _, err := repo.Update(ctx, *p); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	stored, _ := repo.GetByID(ctx, p.ID)
	if stored.Name != "Autumn" || len(stored.DirectionIDs) != 1 {
		t.Fatalf("expected program unchanged, got %+v", stored)
	}
}
