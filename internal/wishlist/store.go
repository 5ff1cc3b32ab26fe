// Package wishlist mirrors the cart store's local-first design with a
// simpler payload: the product id is both the natural key and the remote
// key. Anonymous sessions live entirely in durable local storage; once
// authenticated the backend list is authoritative and local storage is no
// longer written.
package wishlist

import (
	"context"
	"errors"
	"sync"
	"time"

	pkgerrors "github.com/aureliajewels/storefront-core/pkg/errors"

	"github.com/aureliajewels/storefront-core/pkg/events"
	"github.com/aureliajewels/storefront-core/pkg/logger"
	"github.com/aureliajewels/storefront-core/pkg/metrics"
	"github.com/aureliajewels/storefront-core/pkg/shopapi"
	"github.com/aureliajewels/storefront-core/pkg/statestore"
)

const snapshotName = "wishlist"
const metricStore = "wishlist"

// Entry is one wishlist row. Display fields are denormalized at add-time so
// the list renders without a catalog fetch.
type Entry struct {
	ProductID string    `json:"product_id"`
	Name      string    `json:"name,omitempty"`
	Price     *int64    `json:"price,omitempty"`
	ImageURL  string    `json:"image_url,omitempty"`
	AddedAt   time.Time `json:"added_at"`
}

// Operation names the mutation that produced an Event.
type Operation string

const (
	OpAdd    Operation = "add"
	OpRemove Operation = "remove"
	OpClear  Operation = "clear"
	OpSync   Operation = "sync"
)

// Event is broadcast after every mutation.
type Event struct {
	Op        Operation
	ProductID string
	Count     int
}

// Remote is the backend wishlist surface.
type Remote interface {
	AddWishlistItem(ctx context.Context, token, productID string) error
	RemoveWishlistItem(ctx context.Context, token, productID string) error
	SyncWishlist(ctx context.Context, token string, productIDs []string) ([]shopapi.WishlistEntryPayload, error)
}

// Persister is the durable local storage surface.
type Persister interface {
	Save(ctx context.Context, name string, v any) error
	Load(ctx context.Context, name string, out any) error
	Delete(ctx context.Context, name string) error
}

// StoreParams groups dependencies for the wishlist store.
type StoreParams struct {
	Persister Persister
	Remote    Remote
	Logger    *logger.Logger
	Metrics   *metrics.StoreMetrics
}

// Store owns the current user's wishlist.
type Store struct {
	persist Persister
	remote  Remote
	logg    *logger.Logger
	metrics *metrics.StoreMetrics
	feed    *events.Feed[Event]

	mu      sync.Mutex
	entries []Entry
	token   string

	inflight sync.WaitGroup
}

// NewStore builds a wishlist store backed by the provided stack.
func NewStore(params StoreParams) (*Store, error) {
	if params.Persister == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist persister is required")
	}
	if params.Remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "wishlist remote client is required")
	}
	return &Store{
		persist: params.Persister,
		remote:  params.Remote,
		logg:    params.Logger,
		metrics: params.Metrics,
		feed:    events.NewFeed[Event](),
	}, nil
}

// Hydrate loads the persisted snapshot; a missing or unreadable one means
// an empty wishlist.
func (s *Store) Hydrate(ctx context.Context) {
	var entries []Entry
	if err := s.persist.Load(ctx, snapshotName, &entries); err != nil {
		if !errors.Is(err, statestore.ErrNotFound) {
			s.warn(ctx, "wishlist.hydrate.failed", err)
		}
		return
	}
	s.mu.Lock()
	s.entries = entries
	s.mu.Unlock()
}

// Subscribe registers a change listener and returns its unsubscribe func.
func (s *Store) Subscribe(fn func(Event)) func() {
	return s.feed.Subscribe(fn)
}

// Entries returns a copy of the current wishlist.
func (s *Store) Entries() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyEntriesLocked()
}

// Count reports the number of wishlist rows.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// IsMember reports whether the product is on the wishlist.
func (s *Store) IsMember(productID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.indexOfLocked(productID) >= 0
}

// Add records the entry. Adding a member product is a no-op; the first add
// wins, including its captured display fields.
func (s *Store) Add(ctx context.Context, entry Entry) {
	if entry.ProductID == "" {
		s.warn(ctx, "wishlist.add.ignored_missing_product_id", nil)
		return
	}
	if entry.AddedAt.IsZero() {
		entry.AddedAt = time.Now().UTC()
	}

	s.mu.Lock()
	if s.indexOfLocked(entry.ProductID) >= 0 {
		s.mu.Unlock()
		return
	}
	s.entries = append(s.entries, entry)
	token := s.token
	snapshot := s.copyEntriesLocked()
	s.mu.Unlock()

	s.afterMutation(ctx, OpAdd, entry.ProductID, token, snapshot)
	if token != "" {
		s.inflight.Add(1)
		go s.mirror(token, entry.ProductID, OpAdd)
	}
}

// Remove drops the product. Removing a non-member is a no-op.
func (s *Store) Remove(ctx context.Context, productID string) {
	s.mu.Lock()
	idx := s.indexOfLocked(productID)
	if idx < 0 {
		s.mu.Unlock()
		return
	}
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	token := s.token
	snapshot := s.copyEntriesLocked()
	s.mu.Unlock()

	s.afterMutation(ctx, OpRemove, productID, token, snapshot)
	if token != "" {
		s.inflight.Add(1)
		go s.mirror(token, productID, OpRemove)
	}
}

// Toggle adds the entry when absent and removes it when present. Two
// consecutive toggles return the wishlist to its prior state.
func (s *Store) Toggle(ctx context.Context, entry Entry) {
	if s.IsMember(entry.ProductID) {
		s.Remove(ctx, entry.ProductID)
		return
	}
	s.Add(ctx, entry)
}

// Clear empties the wishlist and the durable copy.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.entries = nil
	s.mu.Unlock()

	if err := s.persist.Delete(ctx, snapshotName); err != nil {
		s.warn(ctx, "wishlist.clear.persist_failed", err)
	}
	s.metrics.IncMutation(metricStore, string(OpClear))
	s.feed.Publish(Event{Op: OpClear})
}

// StartSession installs the session token. When pre-login entries exist
// they are synced as a batch of product ids: the server's canonical list
// replaces local state and the durable pre-login copy is cleared.
func (s *Store) StartSession(ctx context.Context, token string) {
	s.mu.Lock()
	wasAnonymous := s.token == ""
	s.token = token
	s.mu.Unlock()

	if wasAnonymous && token != "" {
		s.SyncWithRemote(ctx)
	}
}

// EndSession returns the store to anonymous mode.
func (s *Store) EndSession() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// SyncWithRemote sends the locally-held product ids and accepts the
// server's canonical list wholesale. Runs only when pre-login entries
// exist; on failure local state is untouched.
func (s *Store) SyncWithRemote(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	local := s.copyEntriesLocked()
	s.mu.Unlock()

	if token == "" || len(local) == 0 {
		return
	}

	ids := make([]string, 0, len(local))
	for _, entry := range local {
		ids = append(ids, entry.ProductID)
	}

	canonical, err := s.remote.SyncWishlist(ctx, token, ids)
	s.metrics.IncSync(metricStore, err)
	if err != nil {
		s.warn(ctx, "wishlist.sync.failed", err)
		return
	}

	merged := fromPayloads(canonical)
	s.mu.Lock()
	s.entries = merged
	s.mu.Unlock()

	// Remote is authoritative from here on; the pre-login copy is done.
	if err := s.persist.Delete(ctx, snapshotName); err != nil {
		s.warn(ctx, "wishlist.sync.clear_local_failed", err)
	}
	s.feed.Publish(Event{Op: OpSync, Count: len(merged)})
}

// Close waits for in-flight remote mirror calls to settle.
func (s *Store) Close() {
	s.inflight.Wait()
}

// afterMutation applies the persistence discipline: anonymous sessions
// write the durable snapshot, authenticated ones rely on the remote list.
func (s *Store) afterMutation(ctx context.Context, op Operation, productID, token string, snapshot []Entry) {
	if token == "" {
		if err := s.persist.Save(ctx, snapshotName, snapshot); err != nil {
			s.warn(ctx, "wishlist.persist.failed", err)
		}
	}
	s.metrics.IncMutation(metricStore, string(op))
	s.feed.Publish(Event{Op: op, ProductID: productID, Count: len(snapshot)})
}

func (s *Store) mirror(token, productID string, op Operation) {
	defer s.inflight.Done()

	// Same policy as the cart: no timeout, no rollback, no retry.
	ctx := context.Background()
	var err error
	switch op {
	case OpAdd:
		err = s.remote.AddWishlistItem(ctx, token, productID)
	case OpRemove:
		err = s.remote.RemoveWishlistItem(ctx, token, productID)
	}
	s.metrics.IncRemote(metricStore, string(op), err)
	if err != nil {
		s.warn(ctx, "wishlist.remote.mirror_failed", err)
	}
}

func (s *Store) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	if err != nil {
		ctx = s.logg.WithField(ctx, "error", err.Error())
	}
	s.logg.Warn(s.logg.WithComponent(ctx, "wishlist"), msg)
}

func (s *Store) indexOfLocked(productID string) int {
	for i := range s.entries {
		if s.entries[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func (s *Store) copyEntriesLocked() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

func fromPayloads(payloads []shopapi.WishlistEntryPayload) []Entry {
	entries := make([]Entry, 0, len(payloads))
	for _, payload := range payloads {
		if payload.ProductID == "" {
			continue
		}
		entries = append(entries, Entry{
			ProductID: payload.ProductID,
			Name:      payload.Name,
			Price:     payload.Price,
			ImageURL:  payload.ImageURL,
			AddedAt:   payload.AddedAt,
		})
	}
	return entries
}
