// Package cart owns the shopping-cart line items. The store is local-first:
// every mutation lands in memory and in the durable snapshot immediately,
// and the remote mirror is updated on a best-effort basis when a session
// token is present. Remote failures are logged and swallowed; local state is
// never rolled back.
package cart

import (
	"context"
	"errors"
	"sync"

	pkgerrors "github.com/aureliajewels/storefront-core/pkg/errors"

	"github.com/aureliajewels/storefront-core/pkg/events"
	"github.com/aureliajewels/storefront-core/pkg/logger"
	"github.com/aureliajewels/storefront-core/pkg/metrics"
	"github.com/aureliajewels/storefront-core/pkg/shopapi"
	"github.com/aureliajewels/storefront-core/pkg/statestore"
)

const snapshotName = "cart"
const metricStore = "cart"

// Remote is the backend surface the store mirrors itself to.
type Remote interface {
	AddCartItem(ctx context.Context, token string, item shopapi.CartItemPayload) (shopapi.CartItemPayload, error)
	RemoveCartItem(ctx context.Context, token, remoteID string) error
	UpdateCartItemQuantity(ctx context.Context, token, remoteID string, quantity int) error
	SyncCart(ctx context.Context, token string, items []shopapi.CartItemPayload) ([]shopapi.CartItemPayload, error)
}

// Persister is the durable local storage surface.
type Persister interface {
	Save(ctx context.Context, name string, v any) error
	Load(ctx context.Context, name string, out any) error
	Delete(ctx context.Context, name string) error
}

// StoreParams groups dependencies for the cart store.
type StoreParams struct {
	Persister Persister
	Remote    Remote
	Logger    *logger.Logger
	Metrics   *metrics.StoreMetrics
}

// Store is the single source of truth for the current user's cart.
type Store struct {
	persist Persister
	remote  Remote
	logg    *logger.Logger
	metrics *metrics.StoreMetrics
	feed    *events.Feed[Event]

	mu    sync.Mutex
	items []LineItem
	token string

	inflight sync.WaitGroup
}

// NewStore builds a cart store backed by the provided stack.
func NewStore(params StoreParams) (*Store, error) {
	if params.Persister == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart persister is required")
	}
	if params.Remote == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart remote client is required")
	}
	return &Store{
		persist: params.Persister,
		remote:  params.Remote,
		logg:    params.Logger,
		metrics: params.Metrics,
		feed:    events.NewFeed[Event](),
	}, nil
}

// Hydrate loads the persisted snapshot. A missing or unreadable snapshot is
// "no prior state", never fatal.
func (s *Store) Hydrate(ctx context.Context) {
	var items []LineItem
	if err := s.persist.Load(ctx, snapshotName, &items); err != nil {
		if !errors.Is(err, statestore.ErrNotFound) {
			s.warn(ctx, "cart.hydrate.failed", err)
		}
		return
	}
	s.mu.Lock()
	s.items = items
	s.mu.Unlock()
}

// Subscribe registers a change listener and returns its unsubscribe func.
func (s *Store) Subscribe(fn func(Event)) func() {
	return s.feed.Subscribe(fn)
}

// Items returns a copy of the current line items.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.copyItemsLocked()
}

// Count is the sum of quantities across all line items.
func (s *Store) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return countOf(s.items)
}

// Subtotal is the sum of unit price times quantity, in whole rupees.
func (s *Store) Subtotal() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return subtotalOf(s.items)
}

// AddItem merges the item into the cart by variant SKU: an existing row has
// its quantity incremented, otherwise the row is appended. The mutation is
// applied and persisted immediately regardless of network state; when a
// session token is present the backend is mirrored in the background.
func (s *Store) AddItem(ctx context.Context, item LineItem) {
	if item.VariantSKU == "" || item.Quantity <= 0 {
		s.warn(ctx, "cart.add.ignored_invalid_item", nil)
		return
	}
	item.RemoteID = ""

	s.mu.Lock()
	merged := false
	for i := range s.items {
		if s.items[i].VariantSKU == item.VariantSKU {
			s.items[i].Quantity += item.Quantity
			merged = true
			break
		}
	}
	if !merged {
		s.items = append(s.items, item)
	}
	token := s.token
	snapshot := s.copyItemsLocked()
	s.mu.Unlock()

	s.persistSnapshot(ctx, snapshot)
	s.count(OpAdd)
	s.publish(OpAdd, item.VariantSKU, snapshot)

	if token != "" {
		s.inflight.Add(1)
		go s.mirrorAdd(token, item)
	}
}

// RemoveItem drops any line item matching the given remote id or variant
// SKU; callers supply whichever they have. When the removed row was
// confirmed server-side and a token is present, the backend delete is fired
// and forgotten.
func (s *Store) RemoveItem(ctx context.Context, variantSKU, remoteID string) {
	s.mu.Lock()
	var removed *LineItem
	kept := s.items[:0]
	for _, item := range s.items {
		match := (remoteID != "" && item.RemoteID == remoteID) ||
			(variantSKU != "" && item.VariantSKU == variantSKU)
		if match && removed == nil {
			row := item
			removed = &row
			continue
		}
		kept = append(kept, item)
	}
	s.items = kept
	token := s.token
	snapshot := s.copyItemsLocked()
	s.mu.Unlock()

	if removed == nil {
		return
	}

	s.persistSnapshot(ctx, snapshot)
	s.count(OpRemove)
	s.publish(OpRemove, removed.VariantSKU, snapshot)

	if token != "" && removed.RemoteID != "" {
		s.inflight.Add(1)
		go s.mirrorRemove(token, removed.RemoteID)
	}
}

// UpdateQuantity sets the quantity of the row matched by variant SKU or
// remote id. A quantity at or below zero removes the row entirely; the cart
// never stores a non-positive quantity. The backend PATCH is attempted only
// for rows that already carry a remote id.
func (s *Store) UpdateQuantity(ctx context.Context, variantSKU string, quantity int, remoteID string) {
	if quantity <= 0 {
		s.RemoveItem(ctx, variantSKU, remoteID)
		return
	}

	s.mu.Lock()
	var updated *LineItem
	for i := range s.items {
		match := (variantSKU != "" && s.items[i].VariantSKU == variantSKU) ||
			(remoteID != "" && s.items[i].RemoteID == remoteID)
		if match {
			s.items[i].Quantity = quantity
			row := s.items[i]
			updated = &row
			break
		}
	}
	token := s.token
	snapshot := s.copyItemsLocked()
	s.mu.Unlock()

	if updated == nil {
		return
	}

	s.persistSnapshot(ctx, snapshot)
	s.count(OpUpdate)
	s.publish(OpUpdate, updated.VariantSKU, snapshot)

	if token != "" && updated.RemoteID != "" {
		s.inflight.Add(1)
		go s.mirrorUpdate(token, updated.RemoteID, quantity)
	}
}

// Clear empties the in-memory collection and the durable copy. The remote
// cart is left alone: a local clear is a UI convenience, not a
// server-authoritative action.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.items = nil
	s.mu.Unlock()

	if err := s.persist.Delete(ctx, snapshotName); err != nil {
		s.warn(ctx, "cart.clear.persist_failed", err)
	}
	s.count(OpClear)
	s.publish(OpClear, "", nil)
}

// StartSession installs the session token. The batch sync runs once per
// transition from anonymous to authenticated.
func (s *Store) StartSession(ctx context.Context, token string) {
	s.mu.Lock()
	wasAnonymous := s.token == ""
	s.token = token
	s.mu.Unlock()

	if wasAnonymous && token != "" {
		s.SyncWithRemote(ctx)
	}
}

// EndSession returns the store to anonymous mode. Local state is kept.
func (s *Store) EndSession() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}

// SyncWithRemote sends the entire local collection to the backend's sync
// endpoint. The server is the merge authority: on success the local
// collection is replaced wholesale with the canonical response, even when
// the merge dropped or mutated items. On failure local state is untouched.
func (s *Store) SyncWithRemote(ctx context.Context) {
	s.mu.Lock()
	token := s.token
	local := s.copyItemsLocked()
	s.mu.Unlock()

	if token == "" {
		return
	}

	canonical, err := s.remote.SyncCart(ctx, token, toPayloads(local))
	s.metrics.IncSync(metricStore, err)
	if err != nil {
		s.warn(ctx, "cart.sync.failed", err)
		return
	}

	merged := fromPayloads(canonical)
	s.mu.Lock()
	s.items = merged
	snapshot := s.copyItemsLocked()
	s.mu.Unlock()

	s.persistSnapshot(ctx, snapshot)
	s.publish(OpSync, "", snapshot)
}

// Close waits for in-flight remote mirror calls to settle.
func (s *Store) Close() {
	s.inflight.Wait()
}

func (s *Store) mirrorAdd(token string, item LineItem) {
	defer s.inflight.Done()

	// No timeout and no cancellation: a hung call just never confirms the
	// row, and the item stays cart-local.
	ctx := context.Background()
	confirmed, err := s.remote.AddCartItem(ctx, token, toPayload(item))
	s.metrics.IncRemote(metricStore, string(OpAdd), err)
	if err != nil {
		s.warn(ctx, "cart.remote.add_failed", err)
		return
	}
	if confirmed.RemoteID == "" {
		return
	}

	// Match by variant SKU, not index: concurrent mutations may have
	// reordered the collection since the request was issued.
	s.mu.Lock()
	attached := false
	for i := range s.items {
		if s.items[i].VariantSKU == item.VariantSKU {
			s.items[i].RemoteID = confirmed.RemoteID
			attached = true
			break
		}
	}
	snapshot := s.copyItemsLocked()
	s.mu.Unlock()

	if attached {
		s.persistSnapshot(ctx, snapshot)
		s.publish(OpConfirm, item.VariantSKU, snapshot)
	}
}

func (s *Store) mirrorRemove(token, remoteID string) {
	defer s.inflight.Done()

	ctx := context.Background()
	err := s.remote.RemoveCartItem(ctx, token, remoteID)
	s.metrics.IncRemote(metricStore, string(OpRemove), err)
	if err != nil {
		s.warn(ctx, "cart.remote.remove_failed", err)
	}
}

func (s *Store) mirrorUpdate(token, remoteID string, quantity int) {
	defer s.inflight.Done()

	ctx := context.Background()
	err := s.remote.UpdateCartItemQuantity(ctx, token, remoteID, quantity)
	s.metrics.IncRemote(metricStore, string(OpUpdate), err)
	if err != nil {
		s.warn(ctx, "cart.remote.update_failed", err)
	}
}

func (s *Store) persistSnapshot(ctx context.Context, snapshot []LineItem) {
	if err := s.persist.Save(ctx, snapshotName, snapshot); err != nil {
		s.warn(ctx, "cart.persist.failed", err)
	}
}

func (s *Store) publish(op Operation, variantSKU string, snapshot []LineItem) {
	s.feed.Publish(Event{
		Op:         op,
		VariantSKU: variantSKU,
		Count:      countOf(snapshot),
		Subtotal:   subtotalOf(snapshot),
	})
}

func (s *Store) count(op Operation) {
	s.metrics.IncMutation(metricStore, string(op))
}

func (s *Store) warn(ctx context.Context, msg string, err error) {
	if s.logg == nil {
		return
	}
	if err != nil {
		ctx = s.logg.WithField(ctx, "error", err.Error())
	}
	s.logg.Warn(s.logg.WithComponent(ctx, "cart"), msg)
}

func (s *Store) copyItemsLocked() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func countOf(items []LineItem) int {
	total := 0
	for _, item := range items {
		total += item.Quantity
	}
	return total
}

func subtotalOf(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

func toPayload(item LineItem) shopapi.CartItemPayload {
	return shopapi.CartItemPayload{
		RemoteID:  item.RemoteID,
		SKU:       item.VariantSKU,
		ProductID: item.ProductID,
		Name:      item.ProductName,
		UnitPrice: item.UnitPrice,
		Quantity:  item.Quantity,
		ImageURL:  item.ImageURL,
	}
}

func toPayloads(items []LineItem) []shopapi.CartItemPayload {
	payloads := make([]shopapi.CartItemPayload, 0, len(items))
	for _, item := range items {
		payloads = append(payloads, toPayload(item))
	}
	return payloads
}

func fromPayloads(payloads []shopapi.CartItemPayload) []LineItem {
	items := make([]LineItem, 0, len(payloads))
	for _, payload := range payloads {
		if payload.Quantity <= 0 {
			continue
		}
		items = append(items, LineItem{
			VariantSKU:  payload.SKU,
			ProductID:   payload.ProductID,
			ProductName: payload.Name,
			UnitPrice:   payload.UnitPrice,
			Quantity:    payload.Quantity,
			ImageURL:    payload.ImageURL,
			RemoteID:    payload.RemoteID,
		})
	}
	return items
}
