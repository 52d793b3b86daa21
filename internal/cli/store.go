package cli

import (
	"context"
	"log/slog"

	"accelerator/internal/app"
	"accelerator/internal/config"
	"accelerator/internal/database"
	"accelerator/internal/domain/applicant"
	"accelerator/internal/domain/direction"
	"accelerator/internal/domain/evaluation"
	"accelerator/internal/domain/program"
	"accelerator/internal/domain/stage"
	"accelerator/internal/domain/user"
	"accelerator/internal/observability"
	"accelerator/internal/repository/memory"
	"accelerator/internal/repository/postgres"
)

type repositories struct {
	users         user.Repository
	directions    direction.Repository
	programs      program.Repository
	joinPrograms  program.JoinProgramRepository
	stages        stage.Repository
	orderedStages stage.OrderedRepository
	applicants    applicant.Repository
	responses     applicant.ResponseRepository
	evaluations   evaluation.Repository
	close         func()
}

// openRepositories migrates and connects to Postgres when DATABASE_URL is set
// and falls back to process memory otherwise.
func openRepositories(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*repositories, error) {
	if cfg.PostgresDSN == "" {
		logger.Warn("DATABASE_URL is empty, using in-memory storage")
		store := memory.NewStore()
		return &repositories{
			users:         store.Users(),
			directions:    store.Directions(),
			programs:      store.Programs(),
			joinPrograms:  store.JoinPrograms(),
			stages:        store.Stages(),
			orderedStages: store.OrderedStages(),
			applicants:    store.Applicants(),
			responses:     store.Responses(),
			evaluations:   store.Evaluations(),
			close:         func() {},
		}, nil
	}

	if err := database.Migrate(ctx, cfg.PostgresDSN); err != nil {
		return nil, err
	}
	db, err := database.NewPostgres(ctx, database.PostgresConfig{
		DSN:             cfg.PostgresDSN,
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxIdle:     cfg.DBConnMaxIdle,
		ConnMaxLifetime: cfg.DBConnMaxLife,
	})
	if err != nil {
		return nil, err
	}
	return &repositories{
		users:         postgres.NewUserRepository(db),
		directions:    postgres.NewDirectionRepository(db),
		programs:      postgres.NewProgramRepository(db),
		joinPrograms:  postgres.NewJoinProgramRepository(db),
		stages:        postgres.NewStageRepository(db),
		orderedStages: postgres.NewOrderedStageRepository(db),
		applicants:    postgres.NewApplicantRepository(db),
		responses:     postgres.NewResponseRepository(db),
		evaluations:   postgres.NewEvaluationRepository(db),
		close:         func() { _ = db.Close() },
	}, nil
}

// seedDirections loads the direction catalog into the repository.
func seedDirections(ctx context.Context, cfg *config.Config, repos *repositories, logger *slog.Logger) error {
	seeds, err := config.LoadDirectionCatalog(cfg.DirectionsFile)
	if err != nil {
		return err
	}
	_, err = app.NewDirectionService(repos.directions, logger).Seed(ctx, seeds)
	return err
}

func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	return cfg, observability.NewLogger(cfg.LogLevel), nil
}
