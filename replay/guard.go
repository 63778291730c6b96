// Package replay prevents a signed login message from being consumed more
// than once. Consumed signatures are held in a bounded, time-expiring store
// shared by all request handlers.
package replay

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// DefaultTTL is how long a consumed signature stays blocked.
	DefaultTTL = 5 * time.Minute

	// DefaultCapacity is the soft cap on stored signatures.
	DefaultCapacity = 10_000

	// DefaultEvictBatch is how many oldest-by-expiry records are dropped when
	// an insert would push the store past capacity.
	DefaultEvictBatch = 1_000

	// DefaultSweepInterval is how often expired records are removed.
	DefaultSweepInterval = time.Minute
)

type record struct {
	address   string
	expiresAt time.Time
}

// Guard is a lock-guarded store of consumed signatures. The capacity check
// runs on every insert, under the same lock as the admit check, so two
// concurrent callers can never both admit the same signature.
type Guard struct {
	mu            sync.Mutex
	records       map[string]record
	capacity      int
	evictBatch    int
	sweepInterval time.Duration
	logger        *zap.Logger

	now func() time.Time // test hook
}

// Option configures a Guard.
type Option func(*Guard)

// WithCapacity overrides the soft cap and eviction batch size.
func WithCapacity(capacity, evictBatch int) Option {
	return func(g *Guard) {
		g.capacity = capacity
		g.evictBatch = evictBatch
	}
}

// WithSweepInterval overrides the sweep cadence.
func WithSweepInterval(d time.Duration) Option {
	return func(g *Guard) { g.sweepInterval = d }
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Guard) { g.now = now }
}

// NewGuard creates a replay guard.
func NewGuard(logger *zap.Logger, opts ...Option) *Guard {
	g := &Guard{
		records:       make(map[string]record),
		capacity:      DefaultCapacity,
		evictBatch:    DefaultEvictBatch,
		sweepInterval: DefaultSweepInterval,
		logger:        logger,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Admit records the signature if it has not been seen before and reports
// whether it was accepted. A signature already present is rejected regardless
// of its remaining TTL.
func (g *Guard) Admit(signature, address string, ttl time.Duration) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, seen := g.records[signature]; seen {
		return false
	}

	if len(g.records)+1 > g.capacity {
		g.evictOldestLocked(g.evictBatch)
	}

	g.records[signature] = record{
		address:   address,
		expiresAt: g.now().Add(ttl),
	}
	return true
}

// Len returns the number of stored signatures.
func (g *Guard) Len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.records)
}

// Sweep removes all records whose expiry has passed and returns how many were
// dropped.
func (g *Guard) Sweep() int {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	removed := 0
	for sig, rec := range g.records {
		if rec.expiresAt.Before(now) {
			delete(g.records, sig)
			removed++
		}
	}
	return removed
}

// Run sweeps expired records at a fixed interval until ctx is cancelled.
func (g *Guard) Run(ctx context.Context) {
	ticker := time.NewTicker(g.sweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := g.Sweep(); removed > 0 {
				g.logger.Debug("swept expired signatures", zap.Int("removed", removed))
			}
		}
	}
}

// evictOldestLocked drops the n records closest to expiry. Caller holds g.mu.
func (g *Guard) evictOldestLocked(n int) {
	type entry struct {
		sig       string
		expiresAt time.Time
	}
	entries := make([]entry, 0, len(g.records))
	for sig, rec := range g.records {
		entries = append(entries, entry{sig: sig, expiresAt: rec.expiresAt})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].expiresAt.Before(entries[j].expiresAt)
	})

	if n > len(entries) {
		n = len(entries)
	}
	for _, e := range entries[:n] {
		delete(g.records, e.sig)
	}
	g.logger.Warn("replay store over capacity, evicted oldest records", zap.Int("evicted", n))
}
