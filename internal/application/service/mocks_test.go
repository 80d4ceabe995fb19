package service

import (
	"context"
	"sort"
	"sync"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

type nopLogger struct{}

func (nopLogger) Info(msg string, keysAndValues ...interface{})  {}
func (nopLogger) Error(msg string, keysAndValues ...interface{}) {}

// passthroughTx runs fn without a real transaction
type passthroughTx struct{ calls int }

func (p *passthroughTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	p.calls++
	return fn(ctx)
}

type memClaimStore struct {
	mu          sync.Mutex
	claims      map[string]*entity.Claim
	getByIDsHit int
}

func newMemClaimStore(claims ...*entity.Claim) *memClaimStore {
	m := &memClaimStore{claims: make(map[string]*entity.Claim)}
	for _, c := range claims {
		m.claims[c.ID] = c.Clone()
	}
	return m
}

func (m *memClaimStore) Create(ctx context.Context, claim *entity.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims[claim.ID] = claim.Clone()
	return nil
}

func (m *memClaimStore) GetByID(ctx context.Context, id string) (*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims[id].Clone(), nil
}

func (m *memClaimStore) GetByIDs(ctx context.Context, ids []string) ([]*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getByIDsHit++
	var out []*entity.Claim
	for _, id := range ids {
		if c, ok := m.claims[id]; ok {
			out = append(out, c.Clone())
		}
	}
	return out, nil
}

func (m *memClaimStore) List(ctx context.Context, filter port.StoreFilter) ([]*entity.Claim, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	statuses := make(map[entity.Status]bool)
	for _, s := range filter.Statuses {
		statuses[s] = true
	}
	out := []*entity.Claim{}
	for _, c := range m.claims {
		if filter.StaffID != "" && c.StaffID != filter.StaffID {
			continue
		}
		if len(statuses) > 0 && !statuses[c.Status] {
			continue
		}
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memClaimStore) Update(ctx context.Context, claim *entity.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.claims[claim.ID] = claim.Clone()
	return nil
}

func (m *memClaimStore) UpdateStatus(ctx context.Context, claim *entity.Claim) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored := m.claims[claim.ID]
	stored.Status = claim.Status
	stored.ReasonApprover = claim.ReasonApprover
	stored.UpdatedAt = claim.UpdatedAt
	return nil
}

func (m *memClaimStore) status(id string) entity.Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.claims[id].Status
}

type memHistory struct {
	mu   sync.Mutex
	rows []*entity.ClaimHistory
}

func (m *memHistory) Create(ctx context.Context, h *entity.ClaimHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.ID = int64(len(m.rows) + 1)
	m.rows = append(m.rows, h)
	return nil
}

func (m *memHistory) GetByClaimID(ctx context.Context, claimID string) ([]*entity.ClaimHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.ClaimHistory{}
	for _, h := range m.rows {
		if h.ClaimID == claimID {
			out = append(out, h)
		}
	}
	return out, nil
}

type memProjects struct {
	projects map[string]*entity.Project
}

func (m *memProjects) Create(ctx context.Context, p *entity.Project) error {
	m.projects[p.ID] = p
	return nil
}

func (m *memProjects) GetByID(ctx context.Context, id string) (*entity.Project, error) {
	return m.projects[id], nil
}

func (m *memProjects) List(ctx context.Context) ([]*entity.Project, error) {
	out := []*entity.Project{}
	for _, p := range m.projects {
		out = append(out, p)
	}
	return out, nil
}

type memNotifications struct {
	mu    sync.Mutex
	items []*entity.Notification
}

func (m *memNotifications) Create(ctx context.Context, n *entity.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n.ID = int64(len(m.items) + 1)
	n.Status = entity.NotificationStatusUnread
	m.items = append(m.items, n)
	return nil
}

func (m *memNotifications) ListByRecipient(ctx context.Context, recipientID string, unreadOnly bool) ([]*entity.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []*entity.Notification{}
	for _, n := range m.items {
		if n.RecipientID == recipientID && (!unreadOnly || n.Status == entity.NotificationStatusUnread) {
			out = append(out, n)
		}
	}
	return out, nil
}

func (m *memNotifications) MarkRead(ctx context.Context, recipientID string, ids []int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var n int64
	for _, item := range m.items {
		if item.RecipientID == recipientID && item.Status == entity.NotificationStatusUnread {
			item.Status = entity.NotificationStatusRead
			n++
		}
	}
	return n, nil
}
