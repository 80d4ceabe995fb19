package container

import (
	"context"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/garyjia/claimflow/internal/application/dispatcher"
	"github.com/garyjia/claimflow/internal/application/export"
	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/application/service"
	"github.com/garyjia/claimflow/internal/application/view"
	"github.com/garyjia/claimflow/internal/application/workflow"
	"github.com/garyjia/claimflow/internal/auth"
	"github.com/garyjia/claimflow/internal/infrastructure/persistence/repository"
	"github.com/garyjia/claimflow/internal/infrastructure/persistence/sqlite"
	"github.com/garyjia/claimflow/pkg/database"
)

// DatabaseBundle holds database-related components.
type DatabaseBundle struct {
	DB             *database.DB
	TransactionMgr *sqlite.DB
}

// DomainBundle holds the stateless engines shared by services and handlers.
type DomainBundle struct {
	Workflow  *workflow.Engine
	Query     *query.Engine
	Catalog   *view.Catalog
	Exporters *export.Registry
	Tokens    *auth.TokenService
}

// ProvideDatabase opens the database and applies pending migrations.
// The embedded schema is used unless cfg.MigrationsDir points elsewhere.
func ProvideDatabase(ctx context.Context, cfg *DatabaseConfig, logger *zap.Logger) (*DatabaseBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	db, err := database.New(database.Config{
		Path:            cfg.Path,
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
		BusyTimeout:     cfg.BusyTimeout,
	}, logger)
	if err != nil {
		return nil, err
	}

	var migrations fs.FS = database.BundledMigrations()
	if cfg.MigrationsDir != "" {
		migrations = os.DirFS(cfg.MigrationsDir)
	}
	if err := database.NewMigrator(db, logger).Run(ctx, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &DatabaseBundle{
		DB:             db,
		TransactionMgr: sqlite.NewDB(db.DB, logger),
	}, nil
}

// ProvideRepositories creates all repositories from a database connection.
func ProvideRepositories(db *database.DB, logger *zap.Logger) (*RepositoryBundle, error) {
	if db == nil {
		return nil, fmt.Errorf("database connection is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return &RepositoryBundle{
		Claim:        repository.NewClaimRepository(db.DB, logger),
		History:      repository.NewHistoryRepository(db.DB, logger),
		Notification: repository.NewNotificationRepository(db.DB, logger),
		Staff:        repository.NewStaffRepository(db.DB, logger),
		Project:      repository.NewProjectRepository(db.DB, logger),
	}, nil
}

// ProvideDispatcher creates the event dispatcher.
func ProvideDispatcher(logger *zap.Logger) (dispatcher.Dispatcher, error) {
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	return dispatcher.NewDispatcher(
		dispatcher.WithLogger(&zapLoggerAdapter{logger: logger}),
	), nil
}

// ProvideDomain builds the transition engine, query engine, label catalog,
// download renderers and token service.
func ProvideDomain(cfg *Config, logger *zap.Logger) (*DomainBundle, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	tag, err := language.Parse(cfg.Locale)
	if err != nil {
		logger.Warn("Unknown locale, collating as English", zap.String("locale", cfg.Locale))
		tag = language.English
	}

	catalog, err := view.NewCatalog(cfg.Locale)
	if err != nil {
		return nil, fmt.Errorf("failed to load view labels: %w", err)
	}

	tokens, err := auth.NewTokenService(cfg.Auth.Secret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}

	return &DomainBundle{
		Workflow: workflow.NewEngine(),
		Query:    query.NewEngine(logger.Named("query"), tag),
		Catalog:  catalog,
		Exporters: export.NewRegistry(
			export.NewExcelExporter(logger),
			export.NewPDFExporter(cfg.ExportTitle, logger),
		),
		Tokens: tokens,
	}, nil
}

// ServiceDeps holds dependencies required for creating services.
type ServiceDeps struct {
	Repos      *RepositoryBundle
	TxManager  port.TransactionManager
	Domain     *DomainBundle
	Dispatcher dispatcher.Dispatcher
	Logger     *zap.Logger
}

// ProvideServices creates all application services and subscribes the
// notification service to status changes.
func ProvideServices(deps *ServiceDeps) (*ServiceBundle, error) {
	if deps == nil {
		return nil, fmt.Errorf("service dependencies are required")
	}
	if deps.Repos == nil {
		return nil, fmt.Errorf("repositories are required")
	}
	if deps.TxManager == nil {
		return nil, fmt.Errorf("transaction manager is required")
	}
	if deps.Domain == nil {
		return nil, fmt.Errorf("domain bundle is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}

	serviceLogger := &zapLoggerAdapter{logger: deps.Logger}

	notifications := service.NewNotificationService(deps.Repos.Notification, serviceLogger)
	notifications.Register(deps.Dispatcher)

	return &ServiceBundle{
		Claim: service.NewClaimService(
			deps.Repos.Claim,
			deps.Repos.History,
			deps.Repos.Project,
			deps.TxManager,
			deps.Domain.Workflow,
			deps.Domain.Query,
			deps.Dispatcher,
			serviceLogger,
		),
		Notification: notifications,
		Directory: service.NewDirectoryService(
			deps.Repos.Staff,
			deps.Repos.Project,
			serviceLogger,
		),
	}, nil
}
