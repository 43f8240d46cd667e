package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/strategiert/lernwelt-api/internal/config"
	"github.com/strategiert/lernwelt-api/internal/events"
	"github.com/strategiert/lernwelt-api/internal/platform/gemini"
	"github.com/strategiert/lernwelt-api/internal/platform/postgres"
	"github.com/strategiert/lernwelt-api/internal/service"
	"github.com/strategiert/lernwelt-api/internal/service/auth"
	"github.com/strategiert/lernwelt-api/internal/store"
	"github.com/strategiert/lernwelt-api/internal/task"
)

// application holds all the shared application dependencies to simplify
// management and ensure proper cleanup on shutdown.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	// Stores
	userStore     store.UserStore
	worldStore    store.WorldStore
	progressStore store.ProgressStore
	designStore   store.DesignStore
	ratingStore   store.RatingStore
	taskStore     task.TaskStore

	// Services
	jwtService    auth.JWTService
	userService   service.UserService
	worldService  service.WorldService
	ratingService service.RatingService
	generator     *gemini.GeminiDesignGenerator

	// Event system
	eventEmitter events.EventEmitter

	// Task handling
	taskRunner *task.TaskRunner
}

// newApplication creates a new application instance with all
// dependencies initialized. It accepts core dependencies like
// configuration, logger, and database connection that must be
// established before application initialization.
func newApplication(
	ctx context.Context,
	cfg *config.Config,
	logger *slog.Logger,
	db *sql.DB,
) (*application, error) {
	app := &application{
		config: cfg,
		logger: logger,
		db:     db,
	}

	var err error
	app.jwtService, err = auth.NewJWTService(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}
	logger.Info("JWT authentication service initialized",
		"token_lifetime_minutes", cfg.Auth.TokenLifetimeMinutes)

	// Stores
	app.userStore = postgres.NewPostgresUserStore(db, logger)
	app.worldStore = postgres.NewPostgresWorldStore(db, logger)
	app.progressStore = postgres.NewPostgresProgressStore(db, logger)
	app.designStore = postgres.NewPostgresDesignStore(db, logger)
	app.ratingStore = postgres.NewPostgresRatingStore(db, logger)
	app.taskStore = postgres.NewPostgresTaskStore(db, logger)

	// Gemini-backed design generator
	app.generator, err = gemini.NewDesignGenerator(
		ctx,
		logger.With("component", "design_generator"),
		cfg.LLM,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize design generator: %w", err)
	}
	logger.Info("design generator initialized", "model", cfg.LLM.ModelName)

	// Task runner for background design generation
	app.taskRunner = task.NewTaskRunner(app.taskStore, task.TaskRunnerConfig{
		QueueSize:    cfg.Task.QueueSize,
		WorkerCount:  cfg.Task.WorkerCount,
		StuckTaskAge: time.Duration(cfg.Task.StuckTaskAgeMin) * time.Minute,
	}, logger)
	if err := app.taskRunner.Start(); err != nil {
		return nil, fmt.Errorf("failed to start task runner: %w", err)
	}

	// Event emitter connecting world creation to design generation
	emitter := events.NewInMemoryEventEmitter(logger)
	app.eventEmitter = emitter

	// Services
	passwords := auth.NewBcryptVerifier()
	app.userService = service.NewUserService(
		app.userStore,
		passwords,
		passwords,
		logger,
	)

	worldRepo := service.NewWorldRepositoryAdapter(app.worldStore, db)
	app.worldService, err = service.NewWorldService(
		worldRepo,
		app.progressStore,
		app.designStore,
		app.eventEmitter,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create world service: %w", err)
	}

	app.ratingService, err = service.NewRatingService(app.ratingStore, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create rating service: %w", err)
	}

	// Wire design generation: world creation emits an event, the
	// handler builds a task from the factory and submits it.
	taskFactory := task.NewDesignGenerationTaskFactory(
		app.worldStore,
		app.generator,
		app.designStore,
		logger,
	)
	emitter.RegisterHandler(task.NewTaskFactoryEventHandler(
		taskFactory,
		app.taskRunner,
		logger,
	))

	logger.Info("application initialized successfully")
	return app, nil
}

// Run starts the application server, handling lifecycle and cleanup.
func (app *application) Run(ctx context.Context) error {
	router := app.setupRouter()

	if err := app.startHTTPServer(ctx, router); err != nil {
		return fmt.Errorf("server error: %w", err)
	}

	return nil
}

// cleanup handles graceful shutdown of application resources.
func (app *application) cleanup() {
	if app.taskRunner != nil {
		app.taskRunner.Stop()
	}

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
