package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"accelerator/internal/common"
	"accelerator/internal/domain/program"
)

func TestCreateProgramMaterializesJoinPrograms(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProgram(t, "Spring2023", env.backend.ID, env.design.ID, env.backend.ID)

	if len(p.DirectionIDs) != 2 {
		t.Fatalf("expected duplicate direction collapsed, got %v", p.DirectionIDs)
	}
	items, err := env.programs.ListJoinPrograms(context.Background(), p.ID)
	if err != nil {
		t.Fatalf("ListJoinPrograms: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 join programs, got %d", len(items))
	}
	for _, jp := range items {
		if jp.JoinedApplicants != 0 {
			t.Fatalf("expected zero counter, got %d", jp.JoinedApplicants)
		}
	}
}

func TestCreateProgramRejectsActiveNameClash(t *testing.T) {
	env := newTestEnv(t)
	env.createProgram(t, "Spring2023", env.backend.ID)

	_, err := env.programs.Create(context.Background(), program.Program{
		Name:              " Spring2023 ",
		DirectionIDs:      []common.UUID{env.design.ID},
		RegistrationStart: date(2022, 1, 1),
		RegistrationEnd:   date(2022, 12, 31),
		ProgramStart:      date(2023, 1, 1),
		ProgramEnd:        date(2023, 6, 30),
		Active:            true,
	})
	if !errors.Is(err, program.ErrActiveNameTaken) {
		t.Fatalf("expected ErrActiveNameTaken, got %v", err)
	}
	if !common.Is(err, common.CodeValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestCreateProgramValidatesWindowsAndDirections(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.programs.Create(context.Background(), program.Program{
		Name:              "Autumn",
		DirectionIDs:      []common.UUID{common.NewUUID()},
		RegistrationStart: date(2022, 5, 1),
		RegistrationEnd:   date(2022, 4, 1),
		ProgramStart:      date(2022, 4, 15),
		ProgramEnd:        date(2022, 8, 1),
		Active:            true,
	})
	var appErr *common.Error
	if !errors.As(err, &appErr) || appErr.Code != common.CodeValidation {
		t.Fatalf("expected validation error, got %v", err)
	}
	for _, field := range []string{"registration_end", "directions"} {
		if _, ok := appErr.Fields[field]; !ok {
			t.Fatalf("expected field error for %s, got %v", field, appErr.Fields)
		}
	}
}

func TestUpdateProgramReconcilesWithoutPruning(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProgram(t, "Spring2023", env.backend.ID)
	backendJP := env.joinProgram(t, p.ID, env.backend.ID)

	updated, err := env.programs.Update(ctx, p.ID, ProgramPatch{DirectionIDs: []common.UUID{env.design.ID}})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if len(updated.DirectionIDs) != 1 || updated.DirectionIDs[0] != env.design.ID {
		t.Fatalf("expected directions [Design], got %v", updated.DirectionIDs)
	}
	items, err := env.programs.ListJoinPrograms(ctx, p.ID)
	if err != nil {
		t.Fatalf("ListJoinPrograms: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 join programs after adding a direction, got %d", len(items))
	}
	if _, err := env.programs.GetJoinProgram(ctx, backendJP.ID); err != nil {
		t.Fatalf("expected removed direction row kept, got %v", err)
	}
}

func TestUpdateProgramKeepsOwnName(t *testing.T) {
	env := newTestEnv(t)
	p := env.createProgram(t, "Spring2023", env.backend.ID)
	requirements := "Go basics"
	updated, err := env.programs.Update(context.Background(), p.ID, ProgramPatch{Requirements: &requirements})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Requirements != requirements || updated.Name != "Spring2023" {
		t.Fatalf("unexpected program after update: %+v", updated)
	}
}

func TestDeactivateExpiredOnRegistrationEnd(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProgram(t, "Spring2023", env.backend.ID)

	n, err := env.programs.DeactivateExpired(ctx, date(2022, 12, 30))
	if err != nil {
		t.Fatalf("DeactivateExpired: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no deactivation before registration end, got %d", n)
	}

	n, err = env.programs.DeactivateExpired(ctx, date(2022, 12, 31).Add(9*time.Hour))
	if err != nil {
		t.Fatalf("DeactivateExpired: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 deactivation, got %d", n)
	}
	got, err := env.programs.Get(ctx, p.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Active {
		t.Fatal("expected program to be inactive")
	}

	n, err = env.programs.DeactivateExpired(ctx, date(2022, 12, 31))
	if err != nil {
		t.Fatalf("second DeactivateExpired: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected idempotent run, got %d", n)
	}
	got, _ = env.programs.Get(ctx, p.ID)
	if got.Active {
		t.Fatal("expected program to stay inactive")
	}
}

func TestDeleteProgramCascadesJoinPrograms(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.createProgram(t, "Spring2023", env.backend.ID)
	jp := env.joinProgram(t, p.ID, env.backend.ID)

	if err := env.programs.Delete(ctx, p.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := env.programs.GetJoinProgram(ctx, jp.ID); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestCreateProgramFromPatchDefaultsToActive(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	name := " Autumn "
	start, end := date(2022, 1, 1), date(2022, 12, 31)
	progStart, progEnd := date(2023, 1, 1), date(2023, 6, 30)
	patch := ProgramPatch{
		Name:              &name,
		DirectionIDs:      []common.UUID{env.backend.ID},
		RegistrationStart: &start,
		RegistrationEnd:   &end,
		ProgramStart:      &progStart,
		ProgramEnd:        &progEnd,
	}
	p, err := env.programs.CreateFromPatch(ctx, patch)
	if err != nil {
		t.Fatalf("CreateFromPatch: %v", err)
	}
	if !p.Active || p.Name != "Autumn" || !p.ProgramEnd.Equal(progEnd) {
		t.Fatalf("unexpected program %+v", p)
	}

	inactive := false
	other := "Winter"
	patch.Name, patch.Active = &other, &inactive
	p, err = env.programs.CreateFromPatch(ctx, patch)
	if err != nil {
		t.Fatalf("CreateFromPatch: %v", err)
	}
	if p.Active {
		t.Fatal("expected explicit is_active=false to be kept")
	}
}
