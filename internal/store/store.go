package store

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/pharmadesk/pharmadesk/internal/catalog"
	"github.com/pharmadesk/pharmadesk/internal/inventory"
)

var (
	// ErrNotFound is returned when a record id does not resolve.
	ErrNotFound = errors.New("store: record not found")
	// ErrInsufficientStock is returned when a sale draws more units than a batch holds.
	ErrInsufficientStock = errors.New("store: insufficient stock")
)

// SystemUser attributes activity entries recorded without an operator.
const SystemUser = "system"

// Snapshot is an immutable view of every collection. Slices and maps held by a
// snapshot are never written after publication.
type Snapshot struct {
	Medicines       []catalog.Medicine      `json:"medicines"`
	Batches         []catalog.Batch         `json:"batches"`
	Suppliers       []catalog.Supplier      `json:"suppliers"`
	Orders          []catalog.PurchaseOrder `json:"orders"`
	Sales           []catalog.Sale          `json:"sales"`
	Activity        []catalog.ActivityItem  `json:"activity"`
	ReadAlerts      map[string]bool         `json:"read_alerts,omitempty"`
	DismissedAlerts map[string]bool         `json:"dismissed_alerts,omitempty"`
}

// Alerts derives the current alerts and applies read and dismissed state.
func (s Snapshot) Alerts(asOf time.Time, policy inventory.Policy) []catalog.StockAlert {
	derived := inventory.DeriveAlerts(s.Medicines, s.Batches, asOf, policy)
	out := derived[:0]
	for _, a := range derived {
		if s.DismissedAlerts[a.ID] {
			continue
		}
		a.IsRead = s.ReadAlerts[a.ID]
		out = append(out, a)
	}
	return out
}

// ChangeHook runs after every committed mutation.
type ChangeHook func(ctx context.Context) error

// Option customises a Store.
type Option func(*Store)

// WithClock overrides the store clock.
func WithClock(fn func() time.Time) Option {
	return func(s *Store) {
		if fn != nil {
			s.now = fn
		}
	}
}

// WithIDs overrides record id generation.
func WithIDs(fn func() string) Option {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// WithLogger attaches a logger used for hook failures.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Store keeps the working data set in memory and publishes copy-on-write snapshots.
type Store struct {
	mu     sync.RWMutex
	snap   Snapshot
	hooks  []ChangeHook
	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

// New constructs a store seeded with the given snapshot.
func New(seed Snapshot, opts ...Option) *Store {
	s := &Store{
		snap:   seed,
		now:    time.Now,
		newID:  uuid.NewString,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.snap.ReadAlerts == nil {
		s.snap.ReadAlerts = map[string]bool{}
	}
	if s.snap.DismissedAlerts == nil {
		s.snap.DismissedAlerts = map[string]bool{}
	}
	return s
}

// Snapshot returns the current published view.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// OnChange registers a hook executed after each mutation.
func (s *Store) OnChange(hook ChangeHook) {
	if hook == nil {
		return
	}
	s.mu.Lock()
	s.hooks = append(s.hooks, hook)
	s.mu.Unlock()
}

// change describes the activity entry recorded with a mutation.
const hookTimeout = 5 * time.Second

type change struct {
	kind        catalog.ActivityType
	description string
}

// mutate applies fn to the current snapshot under the write lock, publishes the
// result with an activity entry and fires hooks after the lock is released.
func (s *Store) mutate(ctx context.Context, fn func(cur Snapshot) (Snapshot, change, error)) error {
	s.mu.Lock()
	next, c, err := fn(s.snap)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	entry := catalog.ActivityItem{
		ID:          s.newID(),
		Type:        c.kind,
		Description: c.description,
		Timestamp:   s.now().UTC(),
		UserID:      SystemUser,
	}
	activity := make([]catalog.ActivityItem, 0, len(next.Activity)+1)
	activity = append(activity, next.Activity...)
	next.Activity = append(activity, entry)
	s.snap = next
	hooks := append([]ChangeHook(nil), s.hooks...)
	s.mu.Unlock()

	// The write is committed; hooks must not be cut short by the caller going away.
	hookCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), hookTimeout)
	defer cancel()
	for _, hook := range hooks {
		if err := hook(hookCtx); err != nil {
			s.logger.Warn("store change hook failed", slog.Any("error", err))
		}
	}
	return nil
}

func cloneFlags(in map[string]bool) map[string]bool {
	if in == nil {
		return map[string]bool{}
	}
	return maps.Clone(in)
}
