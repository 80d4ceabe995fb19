// Package client talks to the claims API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

const apiPrefix = "/api/v1"

// envelope mirrors the server's response wrapper
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Code    string          `json:"code,omitempty"`
}

// Config configures the API client
type Config struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

// Client is the HTTP implementation of the claims repository
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *zap.Logger
}

// New creates a client for the API at cfg.BaseURL
func New(cfg Config, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// List fetches claims visible to the caller
func (c *Client) List(ctx context.Context, filter port.ListFilter) ([]*entity.Claim, error) {
	q := criteriaValues(filter)
	var claims []*entity.Claim
	if err := c.do(ctx, "list claims", http.MethodGet, "/claims", q, nil, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Get fetches one claim
func (c *Client) Get(ctx context.Context, id string) (*entity.Claim, error) {
	var claim entity.Claim
	if err := c.do(ctx, "get claim", http.MethodGet, "/claims/"+url.PathEscape(id), nil, nil, &claim); err != nil {
		return nil, err
	}
	return &claim, nil
}

type createRequest struct {
	ProjectID     string        `json:"projectId"`
	Period        entity.Period `json:"period"`
	Hours         float64       `json:"hours"`
	ReasonClaimer string        `json:"reasonClaimer"`
	Submit        bool          `json:"submit"`
}

// Create stores a claim. A claim passed in as Pending is submitted on create.
func (c *Client) Create(ctx context.Context, claim *entity.Claim) (*entity.Claim, error) {
	body := createRequest{
		ProjectID:     claim.ProjectID,
		Period:        claim.Period,
		Hours:         claim.Hours,
		ReasonClaimer: claim.ReasonClaimer,
		Submit:        claim.Status == entity.StatusPending,
	}
	var created entity.Claim
	if err := c.do(ctx, "create claim", http.MethodPost, "/claims", nil, body, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

type statusRequest struct {
	IDs    []string      `json:"ids"`
	Status entity.Status `json:"status"`
	Reason string        `json:"reason,omitempty"`
}

// UpdateStatus moves the claims in one server-side transaction
func (c *Client) UpdateStatus(ctx context.Context, ids []string, status entity.Status, reason string) ([]*entity.Claim, error) {
	var claims []*entity.Claim
	body := statusRequest{IDs: ids, Status: status, Reason: reason}
	if err := c.do(ctx, "update status", http.MethodPost, "/claims/status", nil, body, &claims); err != nil {
		return nil, err
	}
	return claims, nil
}

// Notifications lists the caller's inbox
func (c *Client) Notifications(ctx context.Context, unreadOnly bool) ([]*entity.Notification, error) {
	q := url.Values{}
	if unreadOnly {
		q.Set("unread", "true")
	}
	var items []*entity.Notification
	if err := c.do(ctx, "list notifications", http.MethodGet, "/notifications", q, nil, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// MarkRead marks inbox entries read. No ids marks everything.
func (c *Client) MarkRead(ctx context.Context, ids []int64) (int64, error) {
	var out struct {
		Updated int64 `json:"updated"`
	}
	body := map[string][]int64{"ids": ids}
	if err := c.do(ctx, "mark notifications read", http.MethodPost, "/notifications/read", nil, body, &out); err != nil {
		return 0, err
	}
	return out.Updated, nil
}

func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	endpoint := c.baseURL + apiPrefix + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("Request failed", zap.String("op", op), zap.String("url", endpoint), zap.Error(err))
		return &port.RepositoryError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return &port.RepositoryError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return &port.RepositoryError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Message:    "malformed response: " + strconv.Quote(truncate(string(raw), 120)),
		}
	}

	if resp.StatusCode >= http.StatusBadRequest || !env.Success {
		c.logger.Warn("API returned error",
			zap.String("op", op),
			zap.Int("status", resp.StatusCode),
			zap.String("code", env.Code),
			zap.String("error", env.Error))
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(resp.StatusCode)
		}
		return &port.RepositoryError{Op: op, StatusCode: resp.StatusCode, Message: msg}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return &port.RepositoryError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode data: %w", err)}
	}
	return nil
}

func criteriaValues(f port.ListFilter) url.Values {
	q := query.Params{Criteria: f.Criteria}.Values()
	if f.StaffID != "" {
		q.Set("staffId", f.StaffID)
	}
	if len(f.Statuses) > 0 {
		parts := make([]string, len(f.Statuses))
		for i, s := range f.Statuses {
			parts[i] = string(s)
		}
		q.Set("statuses", strings.Join(parts, ","))
	}
	return q
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

var _ port.ClaimRepository = (*Client)(nil)
