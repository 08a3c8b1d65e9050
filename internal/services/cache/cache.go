// Package cache keeps the last profile snapshot for instant paint. The
// snapshot is never used for a money-moving decision.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/findosh/wiprox/internal/models"
	"github.com/findosh/wiprox/internal/storage"
)

// Store persists the encoded snapshot
type Store interface {
	Get(key string) (*storage.Entry, error)
	Set(key, value string) error
	Delete(key string) error
}

// Fetcher reads the authoritative profile
type Fetcher interface {
	Me(ctx context.Context) (*models.UserProfile, error)
}

// Snapshot is a cached profile with its age
type Snapshot struct {
	Profile   *models.UserProfile `json:"profile"`
	FetchedAt time.Time           `json:"fetched_at"`
	Stale     bool                `json:"stale"` // invalidated by a mutation since it was fetched
}

// Age returns how long ago the snapshot was fetched
func (s *Snapshot) Age(now time.Time) time.Duration {
	return now.Sub(s.FetchedAt)
}

// ProfileCache holds the profile snapshot in memory and in the state store
type ProfileCache struct {
	store  Store
	ttl    time.Duration
	now    func() time.Time
	mu     sync.RWMutex
	mem    *Snapshot
	loaded bool
	gen    uint64 // bumped by Clear
}

// NewProfileCache creates a cache whose entries go stale after ttl
func NewProfileCache(store Store, ttl time.Duration) *ProfileCache {
	if ttl == 0 {
		ttl = 5 * time.Minute
	}
	return &ProfileCache{store: store, ttl: ttl, now: time.Now}
}

// Get returns the snapshot, if any. Snapshots older than the TTL come back
// marked stale.
func (c *ProfileCache) Get() (*Snapshot, bool) {
	c.mu.RLock()
	if c.loaded {
		snap := c.view(c.mem)
		c.mu.RUnlock()
		return snap, snap != nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.mem = c.load()
		c.loaded = true
	}
	snap := c.view(c.mem)
	return snap, snap != nil
}

func (c *ProfileCache) view(s *Snapshot) *Snapshot {
	if s == nil {
		return nil
	}
	cp := *s
	if cp.Age(c.now()) >= c.ttl {
		cp.Stale = true
	}
	return &cp
}

func (c *ProfileCache) load() *Snapshot {
	entry, err := c.store.Get(storage.ProfileSnapshotKey)
	if err != nil || entry == nil {
		return nil
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(entry.Value), &snap); err != nil || snap.Profile == nil {
		// Unreadable snapshots are treated as absent
		return nil
	}
	return &snap
}

// Put stores a freshly fetched profile
func (c *ProfileCache) Put(p *models.UserProfile) error {
	if p == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.put(p)
}

// put must be called with mu held
func (c *ProfileCache) put(p *models.UserProfile) error {
	snap := &Snapshot{Profile: p, FetchedAt: c.now()}
	c.mem = snap
	c.loaded = true
	return c.persist(snap)
}

// Invalidate marks the snapshot stale after a mutation changed balances. The
// profile is kept for painting until the next fetch replaces it.
func (c *ProfileCache) Invalidate() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.loaded {
		c.mem = c.load()
		c.loaded = true
	}
	if c.mem == nil {
		return nil
	}
	c.mem.Stale = true
	return c.persist(c.mem)
}

// Clear drops the snapshot entirely
func (c *ProfileCache) Clear() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.mem = nil
	c.loaded = true
	c.gen++
	return c.store.Delete(storage.ProfileSnapshotKey)
}

// Refresh fetches the authoritative profile and caches it. A profile whose
// fetch overlapped a Clear is returned but not cached.
func (c *ProfileCache) Refresh(ctx context.Context, f Fetcher) (*models.UserProfile, error) {
	c.mu.RLock()
	gen := c.gen
	c.mu.RUnlock()

	p, err := f.Me(ctx)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return p, nil
	}
	// The snapshot is only for painting; a failed write must not fail the read
	_ = c.put(p)
	return p, nil
}

func (c *ProfileCache) persist(s *Snapshot) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	return c.store.Set(storage.ProfileSnapshotKey, string(data))
}
