package orchestrator

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/garyjia/claimflow/internal/application/port"
	"github.com/garyjia/claimflow/internal/application/query"
	"github.com/garyjia/claimflow/internal/application/view"
	"github.com/garyjia/claimflow/internal/domain/entity"
)

const loadKey = "load"

// Session holds the local claim list of one open view. All list mutations
// happen under the write lock so readers never see a half-applied change.
type Session struct {
	repo   port.ClaimRepository
	proj   *view.Projection
	query  *query.Engine
	logger *zap.Logger

	mu     sync.RWMutex
	claims []*entity.Claim
	params query.Params
	// hidden holds ids removed optimistically while their update is in flight
	hidden map[string]struct{}
	epoch  uint64
	closed bool
	loaded bool

	group singleflight.Group
}

// NewSession opens a session for a projection
func NewSession(repo port.ClaimRepository, proj *view.Projection, queryEngine *query.Engine, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Session{
		repo:   repo,
		proj:   proj,
		query:  queryEngine,
		logger: logger.With(zap.String("view", string(proj.Name))),
		params: query.Params{Page: 1},
		hidden: make(map[string]struct{}),
	}
}

// Projection returns the view the session renders
func (s *Session) Projection() *view.Projection {
	return s.proj
}

// Load fetches the authoritative list. Concurrent callers share one request.
func (s *Session) Load(ctx context.Context) error {
	_, err, _ := s.group.Do(loadKey, func() (interface{}, error) {
		return nil, s.load(ctx)
	})
	return err
}

// Reconcile forces a fresh fetch that does not join a request started
// before the caller's mutation
func (s *Session) Reconcile(ctx context.Context) error {
	s.group.Forget(loadKey)
	return s.Load(ctx)
}

func (s *Session) load(ctx context.Context) error {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return ErrViewClosed
	}
	epoch := s.epoch
	s.mu.RUnlock()

	filter := port.ListFilter{}
	if s.proj.OwnOnly {
		filter.StaffID = s.proj.Actor.ID
	}
	claims, err := s.repo.List(ctx, filter)
	if err != nil {
		s.logger.Error("Failed to load claims", zap.Error(err))
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		s.logger.Debug("Dropping load result after view closed")
		return nil
	}
	if s.epoch != epoch {
		s.logger.Debug("Dropping load result overtaken by a local change")
		return nil
	}

	scope := s.proj.Predicate()
	local := make([]*entity.Claim, 0, len(claims))
	for _, c := range claims {
		if _, gone := s.hidden[c.ID]; gone {
			continue
		}
		if scope(c) {
			local = append(local, c)
		}
	}
	s.claims = local
	s.loaded = true

	s.logger.Debug("Claims loaded", zap.Int("count", len(local)))
	return nil
}

// Loaded reports whether a load has completed
func (s *Session) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Params returns the current filter, sort and page state
func (s *Session) Params() query.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// SetParams replaces the filter, sort and page state
func (s *Session) SetParams(p query.Params) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.params = p
}

// Rows returns the current page of the view
func (s *Session) Rows() query.Page {
	s.mu.RLock()
	claims, params := s.snapshot(), s.params
	s.mu.RUnlock()
	return s.query.Run(claims, s.proj.Predicate(), params)
}

// Visible returns every claim the current criteria and sort select, unpaged
func (s *Session) Visible() []*entity.Claim {
	s.mu.RLock()
	claims, params := s.snapshot(), s.params
	s.mu.RUnlock()
	return s.query.Sort(s.query.Filter(claims, params.Criteria, s.proj.Predicate()), params.Sort)
}

// Snapshot returns a copy of the local list
func (s *Session) Snapshot() []*entity.Claim {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot()
}

func (s *Session) snapshot() []*entity.Claim {
	out := make([]*entity.Claim, len(s.claims))
	for i, c := range s.claims {
		out[i] = c.Clone()
	}
	return out
}

// Lookup resolves a claim in the local list
func (s *Session) Lookup(id string) (*entity.Claim, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, c := range s.claims {
		if c.ID == id {
			return c.Clone(), true
		}
	}
	return nil, false
}

// removal remembers where an optimistically removed claim sat
type removal struct {
	index int
	claim *entity.Claim
}

// remove drops the claims from the local list and hides them from loads
// until settle or restore is called
func (s *Session) remove(ids []string) []removal {
	s.mu.Lock()
	defer s.mu.Unlock()

	var removed []removal
	kept := s.claims[:0:0]
	for i, c := range s.claims {
		if slices.Contains(ids, c.ID) {
			removed = append(removed, removal{index: i, claim: c})
			continue
		}
		kept = append(kept, c)
	}
	for _, id := range ids {
		s.hidden[id] = struct{}{}
	}
	s.claims = kept
	s.epoch++
	return removed
}

// restore puts removed claims back at their original positions
func (s *Session) restore(removed []removal) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range removed {
		delete(s.hidden, r.claim.ID)
	}
	if s.closed {
		return
	}
	for _, r := range removed {
		idx := min(r.index, len(s.claims))
		s.claims = slices.Insert(s.claims, idx, r.claim)
	}
	s.epoch++
}

// settle stops hiding ids whose update the server accepted. Loads started
// before this point may predate the update and are dropped.
func (s *Session) settle(ids []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range ids {
		delete(s.hidden, id)
	}
	s.epoch++
}

// Closed reports whether the view has been torn down
func (s *Session) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// Close tears the view down. Requests already in flight complete but their
// results are no longer applied.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.claims = nil
}
