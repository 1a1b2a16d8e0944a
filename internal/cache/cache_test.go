package cache_test

import (
	"testing"
	"time"

	"github.com/subnetscope/subnetscope/internal/cache"
	"github.com/subnetscope/subnetscope/internal/testutil"
	"github.com/subnetscope/subnetscope/pkg/models"
)

func newStore(t *testing.T) (*cache.Store, *testutil.Clock) {
	t.Helper()
	clock := testutil.NewClock()
	return cache.NewStoreWithClock(300*time.Second, clock.Now), clock
}

func TestGetMissOnEmpty(t *testing.T) {
	store, _ := newStore(t)
	if _, ok := store.Snapshots.Get(8); ok {
		t.Error("Get on empty cache reported a hit")
	}
}

func TestSetGetRoundTrip(t *testing.T) {
	store, _ := newStore(t)
	snap := &models.Snapshot{Subnet: models.SubnetMeta{Netuid: 8}}

	store.Snapshots.Set(8, snap)
	got, ok := store.Snapshots.Get(8)
	if !ok {
		t.Fatal("Get after Set reported a miss")
	}
	if got != snap {
		t.Error("Get returned a different value than Set stored")
	}
}

func TestTTLExpiry(t *testing.T) {
	store, clock := newStore(t)
	store.Snapshots.Set(8, &models.Snapshot{})

	clock.Advance(299 * time.Second)
	if _, ok := store.Snapshots.Get(8); !ok {
		t.Error("entry expired before TTL elapsed")
	}

	clock.Advance(2 * time.Second)
	if _, ok := store.Snapshots.Get(8); ok {
		t.Error("entry still live after TTL elapsed")
	}
}

func TestSetResetsTTL(t *testing.T) {
	store, clock := newStore(t)
	store.Snapshots.Set(8, &models.Snapshot{})

	clock.Advance(200 * time.Second)
	store.Snapshots.Set(8, &models.Snapshot{})

	clock.Advance(200 * time.Second)
	if _, ok := store.Snapshots.Get(8); !ok {
		t.Error("re-Set did not reset the TTL")
	}
}

func TestSlotsAreIndependent(t *testing.T) {
	store, _ := newStore(t)
	store.Snapshots.Set(8, &models.Snapshot{})

	if _, ok := store.Analyses.Get(8); ok {
		t.Error("analysis slot hit from a snapshot-only key")
	}
}

func TestClearAll(t *testing.T) {
	store, _ := newStore(t)
	store.Snapshots.Set(8, &models.Snapshot{})
	store.Analyses.Set(8, &models.AnalysisReport{})

	if got := store.KeyCount(); got != 2 {
		t.Fatalf("KeyCount() = %d, want 2", got)
	}

	store.ClearAll()
	if got := store.KeyCount(); got != 0 {
		t.Errorf("KeyCount() after ClearAll = %d, want 0", got)
	}
}

func TestKeysSortedAndLive(t *testing.T) {
	store, clock := newStore(t)
	store.Snapshots.Set(19, &models.Snapshot{})
	clock.Advance(100 * time.Second)
	store.Snapshots.Set(8, &models.Snapshot{})

	keys := store.Snapshots.Keys()
	if len(keys) != 2 || keys[0] != 8 || keys[1] != 19 {
		t.Fatalf("Keys() = %v, want [8 19]", keys)
	}

	// First entry expires, second survives.
	clock.Advance(250 * time.Second)
	keys = store.Snapshots.Keys()
	if len(keys) != 1 || keys[0] != 8 {
		t.Errorf("Keys() after partial expiry = %v, want [8]", keys)
	}
}
