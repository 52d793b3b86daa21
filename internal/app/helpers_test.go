package app

import (
	"context"
	"testing"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/applicant"
	"accelerator/internal/domain/direction"
	"accelerator/internal/domain/program"
	"accelerator/internal/domain/stage"
	"accelerator/internal/domain/user"
	"accelerator/internal/repository/memory"
)

type testEnv struct {
	store       *memory.Store
	programs    *ProgramService
	stages      *StageService
	applicants  *ApplicantService
	responses   *ResponseService
	evaluations *EvaluationService
	backend     *direction.Direction
	design      *direction.Direction
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	store := memory.NewStore()
	env := &testEnv{
		store:       store,
		programs:    NewProgramService(store.Programs(), store.JoinPrograms(), store.Directions(), nil),
		stages:      NewStageService(store.Stages(), store.OrderedStages(), store.JoinPrograms(), store.Directions()),
		applicants:  NewApplicantService(store.Applicants(), store.JoinPrograms(), store.Programs(), nil),
		responses:   NewResponseService(store.Responses(), store.Applicants(), store.JoinPrograms(), store.Stages(), store.OrderedStages()),
		evaluations: NewEvaluationService(store.Evaluations(), store.Responses(), nil),
	}
	var err error
	if env.backend, err = store.Directions().Upsert(ctx, direction.Direction{Title: "Backend", StageCount: 4}); err != nil {
		t.Fatalf("seed Backend: %v", err)
	}
	if env.design, err = store.Directions().Upsert(ctx, direction.Direction{Title: "Design", StageCount: 3}); err != nil {
		t.Fatalf("seed Design: %v", err)
	}
	return env
}

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func (e *testEnv) createProgram(t *testing.T, name string, directions ...common.UUID) *program.Program {
	t.Helper()
	p, err := e.programs.Create(context.Background(), program.Program{
		Name:              name,
		DirectionIDs:      directions,
		RegistrationStart: date(2022, 1, 1),
		RegistrationEnd:   date(2022, 12, 31),
		ProgramStart:      date(2023, 1, 1),
		ProgramEnd:        date(2023, 6, 30),
		Active:            true,
	})
	if err != nil {
		t.Fatalf("create program %s: %v", name, err)
	}
	return p
}

func (e *testEnv) joinProgram(t *testing.T, programID, directionID common.UUID) *program.JoinProgram {
	t.Helper()
	items, err := e.programs.ListJoinPrograms(context.Background(), programID)
	if err != nil {
		t.Fatalf("ListJoinPrograms: %v", err)
	}
	for _, jp := range items {
		if jp.DirectionID == directionID {
			found := jp
			return &found
		}
	}
	t.Fatalf("no join program for direction %s", directionID)
	return nil
}

func (e *testEnv) createUser(t *testing.T, email string, role user.Role) *user.User {
	t.Helper()
	u, err := e.store.Users().Create(context.Background(), user.User{Email: email, PasswordHash: "x", Role: role})
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return u
}

func (e *testEnv) scheduledStage(t *testing.T, jp *program.JoinProgram, name string, position int) *stage.Stage {
	t.Helper()
	ctx := context.Background()
	st, err := e.stages.CreateStage(ctx, stage.Stage{DirectionID: jp.DirectionID, Type: stage.TypeTask, Name: name})
	if err != nil {
		t.Fatalf("create stage: %v", err)
	}
	if _, err := e.stages.BindStage(ctx, jp.ID, st.ID, position); err != nil {
		t.Fatalf("bind stage: %v", err)
	}
	return st
}

func (e *testEnv) join(t *testing.T, jpID, userID common.UUID, status applicant.RequestStatus) *applicant.Applicant {
	t.Helper()
	ctx := context.Background()
	a, err := e.applicants.SubmitJoinRequest(ctx, jpID, userID)
	if err != nil {
		t.Fatalf("SubmitJoinRequest: %v", err)
	}
	if status != applicant.RequestPending {
		if a, err = e.applicants.UpdateStatus(ctx, a.ID, string(status)); err != nil {
			t.Fatalf("UpdateStatus: %v", err)
		}
	}
	return a
}
