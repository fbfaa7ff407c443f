// Package throttle decides whether a post view should be counted.
//
// A view is counted at most once per cooldown for each (viewer, post) pair,
// where the viewer is a user id or, for anonymous readers, a client IP.
// State is process-local and lost on restart.
package throttle

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
)

const (
	DefaultCooldown   = 20 * time.Minute
	DefaultMaxEntries = 100_000
)

// ViewThrottle remembers when each (viewer, post) pair was last counted
type ViewThrottle struct {
	mu         sync.Mutex
	seen       map[uint64]time.Time
	cooldown   time.Duration
	maxEntries int
	now        func() time.Time
}

// Option configures a ViewThrottle
type Option func(*ViewThrottle)

// WithClock replaces time.Now, mostly for tests
func WithClock(now func() time.Time) Option {
	return func(t *ViewThrottle) { t.now = now }
}

// WithMaxEntries bounds the number of remembered pairs. Zero or less disables the bound.
func WithMaxEntries(n int) Option {
	return func(t *ViewThrottle) { t.maxEntries = n }
}

// New creates a throttle with the given cooldown; non-positive means DefaultCooldown
func New(cooldown time.Duration, opts ...Option) *ViewThrottle {
	if cooldown <= 0 {
		cooldown = DefaultCooldown
	}
	t := &ViewThrottle{
		seen:       make(map[uint64]time.Time),
		cooldown:   cooldown,
		maxEntries: DefaultMaxEntries,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func key(viewer, postID string) uint64 {
	d := xxhash.New()
	_, _ = d.WriteString(viewer)
	_, _ = d.WriteString("\x00")
	_, _ = d.WriteString(postID)
	return d.Sum64()
}

// Allow reports whether this view should increment the counter and, if so,
// records it. Calls for the same pair within the cooldown return false.
func (t *ViewThrottle) Allow(viewer, postID string) bool {
	k := key(viewer, postID)
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	if last, ok := t.seen[k]; ok && now.Sub(last) < t.cooldown {
		return false
	}
	if _, ok := t.seen[k]; !ok && t.maxEntries > 0 && len(t.seen) >= t.maxEntries {
		t.sweepLocked(now)
		if len(t.seen) >= t.maxEntries {
			t.evictOldestLocked(len(t.seen) - t.maxEntries + 1)
		}
	}
	t.seen[k] = now
	return true
}

// Forget drops the record for a pair so its next view counts again
func (t *ViewThrottle) Forget(viewer, postID string) {
	k := key(viewer, postID)
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.seen, k)
}

// Sweep drops entries whose cooldown has elapsed and returns how many were removed
func (t *ViewThrottle) Sweep() int {
	now := t.now()
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.sweepLocked(now)
}

func (t *ViewThrottle) sweepLocked(now time.Time) int {
	removed := 0
	for k, last := range t.seen {
		if now.Sub(last) >= t.cooldown {
			delete(t.seen, k)
			removed++
		}
	}
	return removed
}

func (t *ViewThrottle) evictOldestLocked(n int) {
	type entry struct {
		k  uint64
		at time.Time
	}
	entries := make([]entry, 0, len(t.seen))
	for k, at := range t.seen {
		entries = append(entries, entry{k, at})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })
	for i := 0; i < n && i < len(entries); i++ {
		delete(t.seen, entries[i].k)
	}
}

// Len returns the number of remembered pairs
func (t *ViewThrottle) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.seen)
}

// Run sweeps expired entries every interval until ctx is done
func (t *ViewThrottle) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = t.cooldown
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			t.Sweep()
		}
	}
}
