package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"accelerator/internal/app"
	"accelerator/internal/config"
	apphttp "accelerator/internal/http"
	"accelerator/internal/http/handlers"
	httpmw "accelerator/internal/http/middleware"
	"accelerator/internal/observability"
	"accelerator/internal/scheduler"
	"accelerator/internal/security"
)

func newServeCmd() *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the deactivation scheduler",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			if port != "" {
				cfg.HTTPPort = port
			}
			slog.SetDefault(logger)
			return serve(cmd.Context(), cfg, logger)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (overrides HTTP_PORT)")
	return cmd
}

func serve(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	repos, err := openRepositories(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()
	if err := seedDirections(ctx, cfg, repos, logger); err != nil {
		return err
	}

	var metricsHandler http.Handler
	if cfg.MetricsEnabled {
		metricsHandler, err = observability.InitMeterProvider(ctx, "accelerator")
		if err != nil {
			return fmt.Errorf("init metrics: %w", err)
		}
	}

	limiter, closeLimiter, err := newLimiter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLimiter()

	tokens := security.NewTokenProvider(cfg.JWTSecret)
	hasher := security.NewPasswordHasher(0)

	programService := app.NewProgramService(repos.programs, repos.joinPrograms, repos.directions, logger)
	stageService := app.NewStageService(repos.stages, repos.orderedStages, repos.joinPrograms, repos.directions)
	applicantService := app.NewApplicantService(repos.applicants, repos.joinPrograms, repos.programs, logger)
	responseService := app.NewResponseService(repos.responses, repos.applicants, repos.joinPrograms, repos.stages, repos.orderedStages)
	evaluationService := app.NewEvaluationService(repos.evaluations, repos.responses, logger)
	authService := app.NewAuthService(repos.users, tokens, hasher, cfg.AccessTokenTTL)
	userService := app.NewUserService(repos.users, logger)
	directionService := app.NewDirectionService(repos.directions, logger)

	router := apphttp.NewRouter(apphttp.RouterDependencies{
		AuthHandler:       handlers.NewAuthHandler(authService, limiter),
		UserHandler:       handlers.NewUserHandler(userService),
		DirectionHandler:  handlers.NewDirectionHandler(directionService),
		ProgramHandler:    handlers.NewProgramHandler(programService, stageService),
		StageHandler:      handlers.NewStageHandler(stageService),
		ApplicantHandler:  handlers.NewApplicantHandler(applicantService, limiter),
		ResponseHandler:   handlers.NewResponseHandler(responseService, limiter),
		EvaluationHandler: handlers.NewEvaluationHandler(evaluationService),
		MetricsHandler:    metricsHandler,
		AuthMiddleware:    httpmw.NewAuthMiddleware(tokens, repos.users),
		RequestTimeout:    cfg.RequestTimeout,
	})
	server := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      router,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		scheduler.Run(runCtx, programService, cfg.DeactivationInterval, time.Now, logger)
	}()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("API started", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		cancel()
		<-schedulerDone
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	cancel()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-schedulerDone
	return nil
}

// newLimiter prefers Redis so limits hold across instances.
func newLimiter(ctx context.Context, cfg *config.Config, logger *slog.Logger) (httpmw.Limiter, func(), error) {
	if cfg.RedisURL == "" {
		return httpmw.NewRateLimiter(), func() {}, nil
	}
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unavailable, using in-process rate limiter", slog.String("error", err.Error()))
		_ = client.Close()
		return httpmw.NewRateLimiter(), func() {}, nil
	}
	return httpmw.NewRedisLimiter(client, logger), func() { _ = client.Close() }, nil
}
