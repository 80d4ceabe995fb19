package http

import (
	"bytes"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/garyjia/claimflow/internal/application/export"
	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/application/service"
	"github.com/garyjia/claimflow/internal/application/view"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	deps          Dependencies
	defaultLocale string
	logger        Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, defaultLocale string, logger Logger) *Handlers {
	return &Handlers{deps: deps, defaultLocale: defaultLocale, logger: logger}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version"`
}

// StatusRequest is the body of POST /claims/status
type StatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
	Reason string   `json:"reason"`
}

// ActionResponse is a button a view exposes
type ActionResponse struct {
	Name  view.Action `json:"name"`
	Label string      `json:"label"`
}

// ViewResponse describes a view and, for GET /views/:name, its current page
type ViewResponse struct {
	Name    view.Name        `json:"name"`
	Title   string           `json:"title"`
	Actions []ActionResponse `json:"actions"`
	Page    *query.Page      `json:"page,omitempty"`
	// Query is the shareable query string of the page
	Query string `json:"query,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	status, code := "healthy", http.StatusOK
	if h.deps.Probe != nil {
		if err := h.deps.Probe(c.Request.Context()); err != nil {
			h.logger.Error("Health probe failed", "error", err)
			status, code = "degraded", http.StatusServiceUnavailable
		}
	}
	ok(c, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Version:   "1.0.0",
	})
}

// ListClaims handles GET /api/v1/claims
func (h *Handlers) ListClaims(c *gin.Context) {
	actor := currentActor(c)
	params := query.FromValues(c.Request.URL.Query())

	statuses, err := parseStatuses(c.Query("statuses"))
	if err != nil {
		h.fail(c, "list claims", err)
		return
	}

	claims, err := h.deps.Claims.List(c.Request.Context(), actor, port.ListFilter{
		Statuses: statuses,
		StaffID:  strings.TrimSpace(c.Query("staffId")),
		Criteria: params.Criteria,
	})
	if err != nil {
		h.fail(c, "list claims", err)
		return
	}

	if name := c.Query("view"); name != "" {
		proj, err := h.registry(c).Resolve(actor, name)
		if err != nil {
			h.fail(c, "list claims", err)
			return
		}
		claims = h.deps.Query.Filter(claims, query.Criteria{}, proj.Predicate())
	}

	ok(c, http.StatusOK, h.deps.Query.Sort(claims, params.Sort))
}

// GetClaim handles GET /api/v1/claims/:id
func (h *Handlers) GetClaim(c *gin.Context) {
	claim, err := h.deps.Claims.Get(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		h.fail(c, "get claim", err)
		return
	}
	ok(c, http.StatusOK, claim)
}

// ClaimHistory handles GET /api/v1/claims/:id/history
func (h *Handlers) ClaimHistory(c *gin.Context) {
	history, err := h.deps.Claims.History(c.Request.Context(), currentActor(c), c.Param("id"))
	if err != nil {
		h.fail(c, "claim history", err)
		return
	}
	ok(c, http.StatusOK, history)
}

// CreateClaim handles POST /api/v1/claims
func (h *Handlers) CreateClaim(c *gin.Context) {
	var input service.CreateClaimInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abort(c, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}

	claim, err := h.deps.Claims.Create(c.Request.Context(), currentActor(c), input)
	if err != nil {
		h.fail(c, "create claim", err)
		return
	}
	ok(c, http.StatusCreated, claim)
}

// UpdateClaim handles PUT /api/v1/claims/:id
func (h *Handlers) UpdateClaim(c *gin.Context) {
	var input service.ClaimInput
	if err := c.ShouldBindJSON(&input); err != nil {
		abort(c, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}

	claim, err := h.deps.Claims.UpdateDraft(c.Request.Context(), currentActor(c), c.Param("id"), input)
	if err != nil {
		h.fail(c, "update claim", err)
		return
	}
	ok(c, http.StatusOK, claim)
}

// UpdateStatus handles POST /api/v1/claims/status
func (h *Handlers) UpdateStatus(c *gin.Context) {
	var req StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abort(c, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}

	target, valid := entity.ParseStatus(req.Status)
	if !valid {
		abort(c, http.StatusBadRequest, codeValidation, fmt.Sprintf("unknown status %q", req.Status))
		return
	}

	claims, err := h.deps.Claims.UpdateStatus(c.Request.Context(), currentActor(c), req.IDs, target, req.Reason)
	if err != nil {
		h.fail(c, "update status", err)
		return
	}
	ok(c, http.StatusOK, claims)
}

// ExportClaims handles GET /api/v1/claims/export?format=&ids=&view=
func (h *Handlers) ExportClaims(c *gin.Context) {
	actor := currentActor(c)
	exporter, err := h.deps.Exporters.Get(c.DefaultQuery("format", "xlsx"))
	if err != nil {
		h.fail(c, "export claims", err)
		return
	}

	params := query.FromValues(c.Request.URL.Query())
	claims, err := h.deps.Claims.List(c.Request.Context(), actor, port.ListFilter{Criteria: params.Criteria})
	if err != nil {
		h.fail(c, "export claims", err)
		return
	}

	name := "claims"
	if v := c.Query("view"); v != "" {
		proj, err := h.registry(c).Resolve(actor, v)
		if err != nil {
			h.fail(c, "export claims", err)
			return
		}
		claims = h.deps.Query.Filter(claims, query.Criteria{}, proj.Predicate())
		name = string(proj.Name)
	}
	claims = h.deps.Query.Sort(selectIDs(claims, c.Query("ids")), params.Sort)

	var buf bytes.Buffer
	if err := exporter.Export(c.Request.Context(), claims, &buf); err != nil {
		h.fail(c, "export claims", err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, export.Filename(name, exporter)))
	c.Data(http.StatusOK, exporter.ContentType(), buf.Bytes())
}

// ListViews handles GET /api/v1/views
func (h *Handlers) ListViews(c *gin.Context) {
	projections := h.registry(c).For(currentActor(c))
	out := make([]ViewResponse, 0, len(projections))
	for _, p := range projections {
		out = append(out, describe(p))
	}
	ok(c, http.StatusOK, out)
}

// GetView handles GET /api/v1/views/:name
func (h *Handlers) GetView(c *gin.Context) {
	actor := currentActor(c)
	proj, err := h.registry(c).Resolve(actor, c.Param("name"))
	if err != nil {
		h.fail(c, "get view", err)
		return
	}

	filter := port.ListFilter{}
	if proj.OwnOnly {
		filter.StaffID = actor.ID
	}
	claims, err := h.deps.Claims.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.fail(c, "get view", err)
		return
	}

	params := query.FromValues(c.Request.URL.Query())
	page := h.deps.Query.Run(claims, proj.Predicate(), params)
	params.Page = page.Number

	resp := describe(proj)
	resp.Page = &page
	resp.Query = params.Values().Encode()
	ok(c, http.StatusOK, resp)
}

// ListProjects handles GET /api/v1/projects and /api/v1/admin/projects
func (h *Handlers) ListProjects(c *gin.Context) {
	projects, err := h.deps.Directory.ListProjects(c.Request.Context())
	if err != nil {
		h.fail(c, "list projects", err)
		return
	}
	ok(c, http.StatusOK, projects)
}

// CreateProject handles POST /api/v1/admin/projects
func (h *Handlers) CreateProject(c *gin.Context) {
	var project entity.Project
	if err := c.ShouldBindJSON(&project); err != nil {
		abort(c, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}
	if err := h.deps.Directory.CreateProject(c.Request.Context(), currentActor(c), &project); err != nil {
		h.fail(c, "create project", err)
		return
	}
	ok(c, http.StatusCreated, project)
}

// ListStaff handles GET /api/v1/admin/staff
func (h *Handlers) ListStaff(c *gin.Context) {
	staff, err := h.deps.Directory.ListStaff(c.Request.Context(), currentActor(c))
	if err != nil {
		h.fail(c, "list staff", err)
		return
	}
	ok(c, http.StatusOK, staff)
}

// CreateStaff handles POST /api/v1/admin/staff
func (h *Handlers) CreateStaff(c *gin.Context) {
	var staff entity.Staff
	if err := c.ShouldBindJSON(&staff); err != nil {
		abort(c, http.StatusBadRequest, codeValidation, "invalid request body")
		return
	}
	if err := h.deps.Directory.CreateStaff(c.Request.Context(), currentActor(c), &staff); err != nil {
		h.fail(c, "create staff", err)
		return
	}
	ok(c, http.StatusCreated, staff)
}

// ListNotifications handles GET /api/v1/notifications
func (h *Handlers) ListNotifications(c *gin.Context) {
	items, err := h.deps.Notifications.List(c.Request.Context(), currentActor(c), c.Query("unread") == "true")
	if err != nil {
		h.fail(c, "list notifications", err)
		return
	}
	ok(c, http.StatusOK, items)
}

// MarkNotificationsRead handles POST /api/v1/notifications/read
func (h *Handlers) MarkNotificationsRead(c *gin.Context) {
	var req struct {
		IDs []int64 `json:"ids"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			abort(c, http.StatusBadRequest, codeValidation, "invalid request body")
			return
		}
	}

	n, err := h.deps.Notifications.MarkRead(c.Request.Context(), currentActor(c), req.IDs)
	if err != nil {
		h.fail(c, "mark notifications read", err)
		return
	}
	ok(c, http.StatusOK, gin.H{"updated": n})
}

// registry renders labels in the caller's language: ?lang= first, then Accept-Language
func (h *Handlers) registry(c *gin.Context) *view.Registry {
	locale := c.Query("lang")
	if locale == "" {
		locale = c.GetHeader("Accept-Language")
	}
	if locale == "" {
		locale = h.defaultLocale
	}
	return view.NewRegistry(h.deps.Catalog, locale)
}

func describe(p *view.Projection) ViewResponse {
	resp := ViewResponse{Name: p.Name, Title: p.Title}
	for _, a := range p.Actions {
		resp.Actions = append(resp.Actions, ActionResponse{Name: a, Label: p.Labels[a]})
	}
	return resp
}

func parseStatuses(raw string) ([]entity.Status, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var out []entity.Status
	for _, part := range strings.Split(raw, ",") {
		s, valid := entity.ParseStatus(part)
		if !valid {
			return nil, fmt.Errorf("%w: unknown status %q", service.ErrValidation, part)
		}
		out = append(out, s)
	}
	return out, nil
}

// selectIDs keeps the claims named in a comma separated list, or all when empty
func selectIDs(claims []*entity.Claim, raw string) []*entity.Claim {
	if strings.TrimSpace(raw) == "" {
		return claims
	}
	want := make(map[string]bool)
	for _, id := range strings.Split(raw, ",") {
		if id = strings.TrimSpace(id); id != "" {
			want[id] = true
		}
	}
	out := make([]*entity.Claim, 0, len(want))
	for _, c := range claims {
		if want[c.ID] {
			out = append(out, c)
		}
	}
	return out
}
