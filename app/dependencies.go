package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/upb/taskboard-api/auth"
	"github.com/upb/taskboard-api/config"
	"github.com/upb/taskboard-api/handlers"
	"github.com/upb/taskboard-api/middleware"
	"github.com/upb/taskboard-api/repositories"
	"github.com/upb/taskboard-api/repositories/postgres"
	"github.com/upb/taskboard-api/services/tasks"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies.
// This is the central wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *postgres.DB
	Logger *zap.Logger

	// Repository Factory
	RepoFactory *postgres.RepositoryFactory

	// Repositories
	Tasks     repositories.TaskRepository
	TxManager repositories.TransactionManager

	// Services
	TaskService *tasks.TaskService

	// Auth
	Verifier       *auth.Verifier
	Clock          auth.Clock
	ErrorWriter    middleware.ErrorWriter
	AuthMiddleware *middleware.AuthMiddleware
}

// Option customises dependency wiring
type Option func(*Dependencies)

// WithClock overrides the clock used for token expiry checks
func WithClock(clock auth.Clock) Option {
	return func(d *Dependencies) {
		d.Clock = clock
	}
}

// NewDependencies connects to PostgreSQL, creates the schema and wires up
// all application dependencies.
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger, opts ...Option) (*Dependencies, error) {
	// Fail on a bad secret before touching the database
	if _, err := auth.NewVerifier([]byte(cfg.Auth.Secret)); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	factory, err := postgres.NewRepositoryFactory(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps, err := NewDependenciesWithFactory(ctx, cfg, logger, factory, opts...)
	if err != nil {
		_ = factory.Close()
		return nil, err
	}
	return deps, nil
}

// NewDependenciesWithFactory wires everything on top of an open repository factory
func NewDependenciesWithFactory(ctx context.Context, cfg *config.Config, logger *zap.Logger, factory *postgres.RepositoryFactory, opts ...Option) (*Dependencies, error) {
	deps := &Dependencies{
		Config:      cfg,
		Logger:      logger,
		RepoFactory: factory,
		DB:          factory.GetDB(),
		Clock:       time.Now,
	}
	for _, opt := range opts {
		opt(deps)
	}

	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()
	deps.initServices()

	if err := deps.initAuth(cfg); err != nil {
		return nil, fmt.Errorf("failed to initialize auth: %w", err)
	}

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

// initDatabase creates the schema
func (d *Dependencies) initDatabase(ctx context.Context) error {
	if err := d.RepoFactory.InitSchema(ctx); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// initRepositories initializes all repository instances
func (d *Dependencies) initRepositories() {
	repos := d.RepoFactory.NewRepositories()

	d.Tasks = repos.Tasks
	d.TxManager = d.RepoFactory.GetTransactionManager()

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initServices() {
	d.TaskService = tasks.NewTaskService(d.Tasks, d.TxManager, d.Logger)
}

// initAuth copies the secret into the verifier once. The verifier is
// read-only from here on and shared by all requests.
func (d *Dependencies) initAuth(cfg *config.Config) error {
	verifier, err := auth.NewVerifier([]byte(cfg.Auth.Secret))
	if err != nil {
		return err
	}
	d.Verifier = verifier
	d.ErrorWriter = handlers.NewErrorWriter(d.Logger)
	d.AuthMiddleware = middleware.NewAuthMiddleware(verifier, d.Clock, d.ErrorWriter, d.Logger)
	d.Logger.Info("token verifier initialized", zap.String("algorithm", auth.SigningMethod))
	return nil
}

// Close gracefully shuts down all dependencies
func (d *Dependencies) Close(ctx context.Context) error {
	d.Logger.Info("shutting down dependencies")

	var errs []error

	if d.RepoFactory != nil {
		if err := d.RepoFactory.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		} else {
			d.Logger.Info("database connection closed")
		}
	}

	if d.Logger != nil {
		_ = d.Logger.Sync()
	}

	return errors.Join(errs...)
}
