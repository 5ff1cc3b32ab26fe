package wishlist

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/aureliajewels/storefront-core/pkg/shopapi"
	"github.com/aureliajewels/storefront-core/pkg/statestore"
)

type memPersister struct {
	mu    sync.Mutex
	blobs map[string][]Entry
	saves int
}

func newMemPersister() *memPersister {
	return &memPersister{blobs: map[string][]Entry{}}
}

func (p *memPersister) Save(ctx context.Context, name string, v any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.saves++
	p.blobs[name] = append([]Entry(nil), v.([]Entry)...)
	return nil
}

func (p *memPersister) Load(ctx context.Context, name string, out any) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	entries, ok := p.blobs[name]
	if !ok {
		return statestore.ErrNotFound
	}
	*(out.(*[]Entry)) = append([]Entry(nil), entries...)
	return nil
}

func (p *memPersister) Delete(ctx context.Context, name string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.blobs, name)
	return nil
}

func (p *memPersister) has(name string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.blobs[name]
	return ok
}

type stubRemote struct {
	mu      sync.Mutex
	added   []string
	removed []string
	addErr  error

	syncErr      error
	syncResponse []shopapi.WishlistEntryPayload
	syncCalls    int
	syncIDs      []string
}

func (r *stubRemote) AddWishlistItem(ctx context.Context, token, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.addErr != nil {
		return r.addErr
	}
	r.added = append(r.added, productID)
	return nil
}

func (r *stubRemote) RemoveWishlistItem(ctx context.Context, token, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.removed = append(r.removed, productID)
	return nil
}

func (r *stubRemote) SyncWishlist(ctx context.Context, token string, productIDs []string) ([]shopapi.WishlistEntryPayload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.syncCalls++
	r.syncIDs = append([]string(nil), productIDs...)
	if r.syncErr != nil {
		return nil, r.syncErr
	}
	return r.syncResponse, nil
}

func newTestStore(t *testing.T, persist Persister, remote Remote) *Store {
	t.Helper()
	store, err := NewStore(StoreParams{Persister: persist, Remote: remote})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	return store
}

func entry(productID string) Entry {
	return Entry{ProductID: productID, Name: "Solitaire Ring", AddedAt: time.Unix(1700000000, 0).UTC()}
}

func TestToggleIsIdempotentPair(t *testing.T) {
	store := newTestStore(t, newMemPersister(), &stubRemote{})
	ctx := context.Background()

	store.Add(ctx, entry("p1"))
	before := store.Entries()

	store.Toggle(ctx, entry("p2"))
	store.Toggle(ctx, entry("p2"))

	if !reflect.DeepEqual(store.Entries(), before) {
		t.Fatalf("toggle pair must restore prior state: %+v", store.Entries())
	}
}

func TestAddTwiceIsNoop(t *testing.T) {
	store := newTestStore(t, newMemPersister(), &stubRemote{})
	ctx := context.Background()

	first := entry("p1")
	second := entry("p1")
	second.Name = "Renamed"

	store.Add(ctx, first)
	store.Add(ctx, second)

	entries := store.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected one entry, got %d", len(entries))
	}
	if entries[0].Name != "Solitaire Ring" {
		t.Fatalf("first add must win: %+v", entries[0])
	}
}

func TestRemoveNonMemberIsNoop(t *testing.T) {
	persist := newMemPersister()
	store := newTestStore(t, persist, &stubRemote{})

	store.Remove(context.Background(), "ghost")
	if persist.saves != 0 {
		t.Fatalf("no-op remove must not persist, saves=%d", persist.saves)
	}
}

func TestAnonymousModePersistsEveryMutation(t *testing.T) {
	persist := newMemPersister()
	store := newTestStore(t, persist, &stubRemote{})
	ctx := context.Background()

	store.Add(ctx, entry("p1"))
	store.Add(ctx, entry("p2"))
	store.Remove(ctx, "p1")

	if persist.saves != 3 {
		t.Fatalf("expected 3 snapshot writes, got %d", persist.saves)
	}
	got := persist.blobs["wishlist"]
	if len(got) != 1 || got[0].ProductID != "p2" {
		t.Fatalf("unexpected durable state: %+v", got)
	}
}

func TestAuthenticatedModeSkipsDurableWrites(t *testing.T) {
	persist := newMemPersister()
	remote := &stubRemote{}
	store := newTestStore(t, persist, remote)
	ctx := context.Background()

	store.StartSession(ctx, "tok")
	store.Add(ctx, entry("p1"))
	store.Close()

	if persist.saves != 0 {
		t.Fatalf("authenticated mutations must not write local storage, saves=%d", persist.saves)
	}
	if len(remote.added) != 1 || remote.added[0] != "p1" {
		t.Fatalf("expected remote add, got %v", remote.added)
	}
}

func TestRemoteFailureKeepsOptimisticState(t *testing.T) {
	remote := &stubRemote{addErr: errors.New("refused")}
	store := newTestStore(t, newMemPersister(), remote)
	ctx := context.Background()

	store.StartSession(ctx, "tok")
	store.Add(ctx, entry("p1"))
	store.Close()

	if !store.IsMember("p1") {
		t.Fatal("optimistic entry must survive remote failure")
	}
}

func TestSessionStartSyncsPreLoginEntries(t *testing.T) {
	persist := newMemPersister()
	remote := &stubRemote{syncResponse: []shopapi.WishlistEntryPayload{
		{ProductID: "p1", Name: "Solitaire Ring"},
		{ProductID: "p9", Name: "Server Side Chain"},
	}}
	store := newTestStore(t, persist, remote)
	ctx := context.Background()

	store.Add(ctx, entry("p1"))
	if !persist.has("wishlist") {
		t.Fatal("pre-login entry should be durable")
	}

	store.StartSession(ctx, "tok")

	if remote.syncCalls != 1 {
		t.Fatalf("expected one sync, got %d", remote.syncCalls)
	}
	if len(remote.syncIDs) != 1 || remote.syncIDs[0] != "p1" {
		t.Fatalf("sync must send local product ids, got %v", remote.syncIDs)
	}

	entries := store.Entries()
	if len(entries) != 2 {
		t.Fatalf("canonical list must replace local state: %+v", entries)
	}
	if persist.has("wishlist") {
		t.Fatal("durable pre-login copy must be cleared after sync")
	}
}

func TestSessionStartWithoutLocalEntriesSkipsSync(t *testing.T) {
	remote := &stubRemote{}
	store := newTestStore(t, newMemPersister(), remote)

	store.StartSession(context.Background(), "tok")
	if remote.syncCalls != 0 {
		t.Fatalf("no local entries: sync must not run, got %d calls", remote.syncCalls)
	}
}

func TestSyncFailureLeavesStateUntouched(t *testing.T) {
	persist := newMemPersister()
	remote := &stubRemote{syncErr: errors.New("502")}
	store := newTestStore(t, persist, remote)
	ctx := context.Background()

	store.Add(ctx, entry("p1"))
	store.StartSession(ctx, "tok")

	if !store.IsMember("p1") {
		t.Fatal("failed sync must not drop local entries")
	}
	if !persist.has("wishlist") {
		t.Fatal("failed sync must not clear durable copy")
	}
}

func TestSubscribeReceivesEvents(t *testing.T) {
	store := newTestStore(t, newMemPersister(), &stubRemote{})
	ctx := context.Background()

	var got []Event
	cancel := store.Subscribe(func(ev Event) { got = append(got, ev) })
	defer cancel()

	store.Add(ctx, entry("p1"))
	store.Remove(ctx, "p1")

	if len(got) != 2 {
		t.Fatalf("expected 2 events, got %d", len(got))
	}
	if got[0].Op != OpAdd || got[0].Count != 1 {
		t.Fatalf("unexpected add event: %+v", got[0])
	}
	if got[1].Op != OpRemove || got[1].Count != 0 {
		t.Fatalf("unexpected remove event: %+v", got[1])
	}
}

func TestHydrateRestoresSnapshot(t *testing.T) {
	persist := newMemPersister()
	persist.blobs["wishlist"] = []Entry{entry("p1")}

	store := newTestStore(t, persist, &stubRemote{})
	store.Hydrate(context.Background())

	if !store.IsMember("p1") {
		t.Fatal("expected hydrated membership")
	}
	if store.Count() != 1 {
		t.Fatalf("expected count 1, got %d", store.Count())
	}
}
