package cache

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/findosh/wiprox/internal/models"
	"github.com/findosh/wiprox/internal/storage"
	"github.com/shopspring/decimal"
)

func newTestStore(t *testing.T) *storage.StateRepository {
	t.Helper()
	db, err := storage.New(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := db.Migrate(); err != nil {
		t.Fatalf("Migrate failed: %v", err)
	}
	return storage.NewStateRepository(db)
}

type fakeFetcher struct {
	profile *models.UserProfile
	err     error
	calls   int
}

func (f *fakeFetcher) Me(ctx context.Context) (*models.UserProfile, error) {
	f.calls++
	return f.profile, f.err
}

func TestProfileCache_PutGet(t *testing.T) {
	store := newTestStore(t)
	c := NewProfileCache(store, time.Hour)

	if _, ok := c.Get(); ok {
		t.Fatal("Expected empty cache")
	}

	p := &models.UserProfile{ID: "1", Phone: "9999999999", Balance: decimal.NewFromInt(500)}
	if err := c.Put(p); err != nil {
		t.Fatalf("Put failed: %v", err)
	}

	snap, ok := c.Get()
	if !ok {
		t.Fatal("Expected cached snapshot")
	}
	if snap.Stale {
		t.Error("Expected fresh snapshot")
	}
	if !snap.Profile.Balance.Equal(decimal.NewFromInt(500)) {
		t.Errorf("Expected balance 500, got %s", snap.Profile.Balance)
	}

	// A new cache over the same store sees the persisted snapshot
	reloaded := NewProfileCache(store, time.Hour)
	snap, ok = reloaded.Get()
	if !ok || snap.Profile.Phone != "9999999999" {
		t.Errorf("Expected persisted snapshot, got %+v", snap)
	}
}

func TestProfileCache_TTL(t *testing.T) {
	c := NewProfileCache(newTestStore(t), time.Minute)
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	c.Put(&models.UserProfile{ID: "1"})
	now = now.Add(2 * time.Minute)

	snap, ok := c.Get()
	if !ok {
		t.Fatal("Expected snapshot")
	}
	if !snap.Stale {
		t.Error("Expected snapshot older than TTL to be stale")
	}
}

func TestProfileCache_InvalidateAndClear(t *testing.T) {
	store := newTestStore(t)
	c := NewProfileCache(store, time.Hour)
	c.Put(&models.UserProfile{ID: "1"})

	if err := c.Invalidate(); err != nil {
		t.Fatalf("Invalidate failed: %v", err)
	}
	snap, ok := c.Get()
	if !ok || !snap.Stale {
		t.Errorf("Expected stale snapshot after invalidate, got %+v", snap)
	}

	if err := c.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if _, ok := c.Get(); ok {
		t.Error("Expected empty cache after clear")
	}
	entry, _ := store.Get(storage.ProfileSnapshotKey)
	if entry != nil {
		t.Error("Expected persisted snapshot to be removed")
	}
}

func TestProfileCache_Refresh(t *testing.T) {
	c := NewProfileCache(newTestStore(t), time.Hour)
	f := &fakeFetcher{profile: &models.UserProfile{ID: "1", Balance: decimal.NewFromInt(42)}}

	p, err := c.Refresh(context.Background(), f)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if !p.Balance.Equal(decimal.NewFromInt(42)) {
		t.Errorf("Expected balance 42, got %s", p.Balance)
	}
	if snap, ok := c.Get(); !ok || snap.Stale {
		t.Error("Expected refresh to store a fresh snapshot")
	}

	f.err = errors.New("boom")
	if _, err := c.Refresh(context.Background(), f); err == nil {
		t.Error("Expected fetch error to be returned")
	}
	if snap, ok := c.Get(); !ok || !snap.Profile.Balance.Equal(decimal.NewFromInt(42)) {
		t.Error("Expected failed refresh to keep the previous snapshot")
	}
}

// clearingFetcher simulates a logout landing while the profile is in flight
type clearingFetcher struct {
	cache   *ProfileCache
	profile *models.UserProfile
}

func (f *clearingFetcher) Me(ctx context.Context) (*models.UserProfile, error) {
	f.cache.Clear()
	return f.profile, nil
}

func TestProfileCache_RefreshAfterClearNotCached(t *testing.T) {
	store := newTestStore(t)
	c := NewProfileCache(store, time.Hour)
	f := &clearingFetcher{cache: c, profile: &models.UserProfile{ID: "1", Balance: decimal.NewFromInt(42)}}

	p, err := c.Refresh(context.Background(), f)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if p == nil || p.ID != "1" {
		t.Errorf("Expected fetched profile to be returned, got %+v", p)
	}
	if _, ok := c.Get(); ok {
		t.Error("Expected no snapshot after a clear during refresh")
	}
	if entry, _ := store.Get(storage.ProfileSnapshotKey); entry != nil {
		t.Error("Expected no persisted snapshot after a clear during refresh")
	}

	if _, err := c.Refresh(context.Background(), &fakeFetcher{profile: f.profile}); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if _, ok := c.Get(); !ok {
		t.Error("Expected a later refresh to cache again")
	}
}
