package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/language"

	"github.com/garyjia/claimflow/internal/application/export"
	"github.com/garyjia/claimflow/internal/application/orchestrator"
	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/application/service"
	"github.com/garyjia/claimflow/internal/application/view"
	"github.com/garyjia/claimflow/internal/application/workflow"
	"github.com/garyjia/claimflow/internal/auth"
	"github.com/garyjia/claimflow/internal/config"
	"github.com/garyjia/claimflow/internal/container"
	"github.com/garyjia/claimflow/internal/domain/entity"
	"github.com/garyjia/claimflow/internal/infrastructure/client"
	"github.com/garyjia/claimflow/internal/infrastructure/storage"
	"github.com/garyjia/claimflow/pkg/utils"
)

// inbox is the caller's notification feed
type inbox interface {
	Notifications(ctx context.Context, unreadOnly bool) ([]*entity.Notification, error)
	MarkRead(ctx context.Context, ids []int64) (int64, error)
}

// localInbox reads the inbox straight from the notification service
type localInbox struct {
	svc   service.NotificationService
	actor entity.Actor
}

func (l localInbox) Notifications(ctx context.Context, unreadOnly bool) ([]*entity.Notification, error) {
	return l.svc.List(ctx, l.actor, unreadOnly)
}

func (l localInbox) MarkRead(ctx context.Context, ids []int64) (int64, error) {
	return l.svc.MarkRead(ctx, l.actor, ids)
}

type globalOptions struct {
	configPath string
	token      string
	server     string
	lang       string
	local      bool
	verbose    bool
}

// app is everything a command needs for one invocation
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	actor     entity.Actor
	repo      port.ClaimRepository
	inbox     inbox
	views     *view.Registry
	query     *query.Engine
	engine    *workflow.Engine
	exporters *export.Registry
	files     *storage.LocalFileStorage
	console   *console

	closeFn func() error
}

func newApp(ctx context.Context, opts globalOptions, out io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	level := "warn"
	if opts.verbose {
		level = "debug"
	}
	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      level,
		OutputPath: "stderr",
		Format:     "console",
		Service:    "claimctl",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	locale := firstNonEmpty(opts.lang, cfg.Client.Locale)
	catalog, err := view.NewCatalog(locale)
	if err != nil {
		return nil, err
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.English
	}

	a := &app{
		cfg:    cfg,
		logger: logger,
		views:  view.NewRegistry(catalog, locale),
		query:  query.NewEngine(logger.Named("query"), tag),
		engine: workflow.NewEngine(),
		exporters: export.NewRegistry(
			export.NewExcelExporter(logger),
			export.NewPDFExporter("Claims", logger),
		),
		files:   storage.NewLocalFileStorage(cfg.Client.DownloadDir, logger),
		console: newConsole(out),
		closeFn: func() error { return nil },
	}

	token := strings.TrimSpace(firstNonEmpty(opts.token, cfg.Client.Token))
	if token == "" {
		return nil, fmt.Errorf("no token: pass --token or set CLAIMFLOW_TOKEN")
	}

	if opts.local {
		err = a.openLocal(ctx, token)
	} else {
		err = a.openRemote(token, firstNonEmpty(opts.server, cfg.Client.BaseURL))
	}
	if err != nil {
		_ = logger.Sync()
		return nil, err
	}
	return a, nil
}

// openRemote talks to a running API server
func (a *app) openRemote(token, baseURL string) error {
	actor, err := auth.Peek(token)
	if err != nil {
		return err
	}

	cl := client.New(client.Config{
		BaseURL: baseURL,
		Token:   token,
		Timeout: a.cfg.Client.Timeout,
	}, a.logger)

	a.actor = actor
	a.repo = cl
	a.inbox = cl
	return nil
}

// openLocal opens the database directly, acting as the token's actor
func (a *app) openLocal(ctx context.Context, token string) error {
	c, err := container.NewContainer(a.cfg.ToContainerConfig(), a.logger)
	if err != nil {
		return err
	}
	if err := c.Start(ctx); err != nil {
		return err
	}

	actor, err := c.Domain().Tokens.Parse(token)
	if err != nil {
		_ = c.Close()
		return err
	}

	a.actor = actor
	a.repo = service.NewActorRepository(c.Services().Claim, actor)
	a.inbox = localInbox{svc: c.Services().Notification, actor: actor}
	a.closeFn = c.Close
	return nil
}

// openView resolves the named view (the role's first view when empty) and
// wires an orchestrator to it
func (a *app) openView(name string) (*orchestrator.Orchestrator, error) {
	var (
		proj *view.Projection
		err  error
	)
	if strings.TrimSpace(name) == "" {
		proj, err = a.views.Default(a.actor)
	} else {
		proj, err = a.views.Resolve(a.actor, name)
	}
	if err != nil {
		return nil, err
	}

	session := orchestrator.NewSession(a.repo, proj, a.query, a.logger)
	return orchestrator.New(session, a.engine, a.repo, a.console, a.console, a.logger), nil
}

// viewFor picks the first of the actor's views exposing the action
func (a *app) viewFor(action view.Action) (string, error) {
	for _, p := range a.views.For(a.actor) {
		if p.Allows(action) {
			return string(p.Name), nil
		}
	}
	return "", fmt.Errorf("%w: no %s view for role %s", orchestrator.ErrActionNotAllowed, action, a.actor.Role)
}

func (a *app) Close() error {
	err := a.closeFn()
	_ = a.logger.Sync()
	return err
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
