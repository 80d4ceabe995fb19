package container

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/garyjia/claimflow/internal/application/dispatcher"
	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/application/service"
	"github.com/garyjia/claimflow/internal/infrastructure/persistence/sqlite"
	httpapi "github.com/garyjia/claimflow/internal/interfaces/http"
	"github.com/garyjia/claimflow/pkg/database"
)

var (
	errStarted = errors.New("container already started")
	errClosed  = errors.New("container closed")
)

// Container owns the claim store, the event dispatcher, the services built on
// them and the HTTP API. Start brings them up in that order; Close tears them
// down in reverse.
type Container struct {
	config *Config
	logger *zap.Logger

	mu      sync.RWMutex
	state   lifecycle
	cancel  context.CancelFunc
	closers []namedCloser

	database     *database.DB
	tx           *sqlite.DB
	repositories *RepositoryBundle
	dispatcher   dispatcher.Dispatcher
	domain       *DomainBundle
	services     *ServiceBundle
	server       *httpapi.Server
}

type lifecycle int

const (
	stateNew lifecycle = iota
	stateRunning
	stateClosed
)

type namedCloser struct {
	name  string
	close func() error
}

// RepositoryBundle groups all repositories for convenient access.
type RepositoryBundle struct {
	Claim        port.ClaimStore
	History      port.HistoryRepository
	Notification port.NotificationRepository
	Staff        port.StaffRepository
	Project      port.ProjectRepository
}

// ServiceBundle groups all application services.
type ServiceBundle struct {
	Claim        service.ClaimService
	Notification service.NotificationService
	Directory    service.DirectoryService
}

// HealthStatus represents the health of all components.
type HealthStatus struct {
	Overall    bool                       `json:"overall"`
	Components map[string]ComponentHealth `json:"components"`
}

// ComponentHealth represents health of a single component.
type ComponentHealth struct {
	Healthy bool   `json:"healthy"`
	Message string `json:"message,omitempty"`
}

// NewContainer validates cfg. Nothing is opened until Start.
func NewContainer(cfg *Config, logger *zap.Logger) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &Container{config: cfg, logger: logger}, nil
}

// Start runs each stage in order. When a stage fails, everything already
// started is closed again and the container stays unstarted.
func (c *Container) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.state {
	case stateRunning:
		return errStarted
	case stateClosed:
		return errClosed
	}

	ctx, c.cancel = context.WithCancel(ctx)
	stages := []struct {
		name string
		run  func(context.Context) error
	}{
		{"claim store", c.startStore},
		{"dispatcher", c.startDispatcher},
		{"domain", c.startDomain},
		{"services", c.startServices},
		{"http api", c.startServer},
	}
	for _, s := range stages {
		if err := s.run(ctx); err != nil {
			c.logger.Error("Container stage failed", zap.String("stage", s.name), zap.Error(err))
			c.cancel()
			if unwindErr := c.unwind(); unwindErr != nil {
				c.logger.Error("Cleanup after failed start", zap.Error(unwindErr))
			}
			return fmt.Errorf("start %s: %w", s.name, err)
		}
		c.logger.Debug("Container stage ready", zap.String("stage", s.name))
	}

	c.state = stateRunning
	c.logger.Info("Container started",
		zap.String("database", c.config.Database.Path),
		zap.String("locale", c.config.Locale))
	return nil
}

// Serve runs the HTTP API until ctx is cancelled.
func (c *Container) Serve(ctx context.Context) error {
	c.mu.RLock()
	server := c.server
	c.mu.RUnlock()

	if server == nil {
		return fmt.Errorf("container not started")
	}
	return server.Start(ctx)
}

// Close stops the API, drains pending claim events into the store and then
// closes the store.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == stateClosed {
		return errClosed
	}
	if c.cancel != nil {
		c.cancel()
	}
	err := c.unwind()
	c.state = stateClosed

	if err != nil {
		c.logger.Error("Container closed with errors", zap.Error(err))
		return err
	}
	c.logger.Info("Container closed")
	return nil
}

// unwind runs the registered closers newest first
func (c *Container) unwind() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		cl := c.closers[i]
		if err := cl.close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s: %w", cl.name, err))
			continue
		}
		c.logger.Debug("Component closed", zap.String("component", cl.name))
	}
	c.closers = nil
	return errors.Join(errs...)
}

func (c *Container) onClose(name string, fn func() error) {
	c.closers = append(c.closers, namedCloser{name: name, close: fn})
}

// Ready reports whether Start completed and Close has not run.
func (c *Container) Ready() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state == stateRunning
}

// Health pings the claim store and reports which components are up.
func (c *Container) Health(ctx context.Context) *HealthStatus {
	c.mu.RLock()
	defer c.mu.RUnlock()

	status := &HealthStatus{Overall: true, Components: make(map[string]ComponentHealth)}
	set := func(name string, up bool, msg string) {
		status.Components[name] = ComponentHealth{Healthy: up, Message: msg}
		status.Overall = status.Overall && up
	}

	if c.database == nil {
		set("database", false, "not initialized")
	} else if err := c.database.PingContext(ctx); err != nil {
		set("database", false, fmt.Sprintf("ping failed: %v", err))
	} else {
		set("database", true, "")
	}
	set("dispatcher", c.dispatcher != nil, notInitialized(c.dispatcher != nil))
	set("services", c.services != nil, notInitialized(c.services != nil))
	return status
}

func notInitialized(up bool) string {
	if up {
		return ""
	}
	return "not initialized"
}

func (c *Container) startStore(ctx context.Context) error {
	bundle, err := ProvideDatabase(ctx, &c.config.Database, c.logger)
	if err != nil {
		return err
	}
	c.database, c.tx = bundle.DB, bundle.TransactionMgr
	c.onClose("claim store", c.database.Close)

	c.repositories, err = ProvideRepositories(c.database, c.logger)
	return err
}

func (c *Container) startDispatcher(context.Context) error {
	d, err := ProvideDispatcher(c.logger)
	if err != nil {
		return err
	}
	c.dispatcher = d
	// closed after the API and before the store, so queued notifications land
	c.onClose("dispatcher", d.Close)
	return nil
}

func (c *Container) startDomain(context.Context) (err error) {
	c.domain, err = ProvideDomain(c.config, c.logger)
	return err
}

func (c *Container) startServices(context.Context) (err error) {
	c.services, err = ProvideServices(&ServiceDeps{
		Repos:      c.repositories,
		TxManager:  c.tx,
		Domain:     c.domain,
		Dispatcher: c.dispatcher,
		Logger:     c.logger,
	})
	return err
}

func (c *Container) startServer(context.Context) error {
	srv := c.config.Server
	c.server = httpapi.NewServer(httpapi.ServerConfig{
		Host:            srv.Host,
		Port:            srv.Port,
		ReadTimeout:     srv.ReadTimeout,
		WriteTimeout:    srv.WriteTimeout,
		ShutdownTimeout: srv.ShutdownTimeout,
		CORSOrigins:     srv.CORSOrigins,
		DefaultLocale:   c.config.Locale,
	}, httpapi.Dependencies{
		Claims:        c.services.Claim,
		Notifications: c.services.Notification,
		Directory:     c.services.Directory,
		Catalog:       c.domain.Catalog,
		Query:         c.domain.Query,
		Exporters:     c.domain.Exporters,
		Tokens:        c.domain.Tokens,
		Probe:         c.database.PingContext,
	}, &zapLoggerAdapter{logger: c.logger.Named("http")})
	c.onClose("http api", c.server.Stop)
	return nil
}

// Repositories returns all repositories.
func (c *Container) Repositories() *RepositoryBundle {
	return c.repositories
}

// Services returns all application services.
func (c *Container) Services() *ServiceBundle {
	return c.services
}

// Domain returns the shared engines.
func (c *Container) Domain() *DomainBundle {
	return c.domain
}

// zapLoggerAdapter adapts zap.Logger to the small Info/Error logger interfaces
// the service, dispatcher and http packages accept.
type zapLoggerAdapter struct {
	logger *zap.Logger
}

func (a *zapLoggerAdapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info(msg, convertToZapFields(keysAndValues...)...)
}

func (a *zapLoggerAdapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error(msg, convertToZapFields(keysAndValues...)...)
}

// convertToZapFields converts key-value pairs to zap fields; errors keep
// their key through zap.NamedError.
func convertToZapFields(keysAndValues ...interface{}) []zap.Field {
	fields := make([]zap.Field, 0, len(keysAndValues)/2)
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		key, ok := keysAndValues[i].(string)
		if !ok {
			continue
		}
		if err, isErr := keysAndValues[i+1].(error); isErr {
			fields = append(fields, zap.NamedError(key, err))
			continue
		}
		fields = append(fields, zap.Any(key, keysAndValues[i+1]))
	}
	return fields
}
