package app

import (
	"context"
	"testing"

	"accelerator/internal/common"
	"accelerator/internal/config"
	"accelerator/internal/repository/memory"
)

func TestDirectionSeedIsIdempotent(t *testing.T) {
	ctx := context.Background()
	svc := NewDirectionService(memory.NewStore().Directions(), nil)

	first, err := svc.Seed(ctx, []config.DirectionSeed{{Title: "Backend", Stages: 4}, {Title: "Design", Stages: 3}})
	if err != nil {
		t.Fatalf("Seed: %v", err)
	}
	second, err := svc.Seed(ctx, []config.DirectionSeed{{Title: "Backend", Stages: 5}})
	if err != nil {
		t.Fatalf("Seed again: %v", err)
	}
	if second[0].ID != first[0].ID {
		t.Fatalf("expected reseed to keep id %s, got %s", first[0].ID, second[0].ID)
	}

	items, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 directions, got %d", len(items))
	}
	got, err := svc.Get(ctx, first[0].ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.StageCount != 5 {
		t.Fatalf("expected stage count 5 after reseed, got %d", got.StageCount)
	}
	if _, err := svc.Get(ctx, common.NewUUID()); !common.Is(err, common.CodeNotFound) {
		t.Fatalf("expected not_found, got %v", err)
	}
}
