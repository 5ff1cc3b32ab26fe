package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	pkgerrors "github.com/aureliajewels/storefront-core/pkg/errors"

	"github.com/aureliajewels/storefront-core/pkg/logger"
	"github.com/aureliajewels/storefront-core/pkg/redis"
	"github.com/aureliajewels/storefront-core/pkg/shopapi"
)

const cacheScope = "catalog"
const cacheID = "products"

type catalogLister interface {
	ListProducts(ctx context.Context) ([]shopapi.ProductPayload, error)
}

// ServiceParams groups dependencies for the catalog service.
type ServiceParams struct {
	API      catalogLister
	Cache    *redis.Client // optional
	CacheTTL time.Duration
	Logger   *logger.Logger
}

// Service fetches the product list once per cache window, normalizes it at
// the ingestion boundary and serves filtered views of it. The fetched list
// is immutable; only Criteria changes between calls.
type Service struct {
	api   catalogLister
	cache *redis.Client
	ttl   time.Duration
	logg  *logger.Logger

	mu     sync.Mutex
	memo   []Product
	memoAt time.Time
}

func NewService(params ServiceParams) (*Service, error) {
	if params.API == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "catalog api client is required")
	}
	ttl := params.CacheTTL
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Service{
		api:   params.API,
		cache: params.Cache,
		ttl:   ttl,
		logg:  params.Logger,
	}, nil
}

// List returns the visible products for the given criteria.
func (s *Service) List(ctx context.Context, criteria Criteria) ([]Product, error) {
	products, err := s.Products(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(products, criteria), nil
}

// Products returns the normalized full catalog, served from the in-process
// memo, then the redis cache, then the remote catalog endpoint.
func (s *Service) Products(ctx context.Context) ([]Product, error) {
	s.mu.Lock()
	if s.memo != nil && time.Since(s.memoAt) < s.ttl {
		cached := s.memo
		s.mu.Unlock()
		return cached, nil
	}
	s.mu.Unlock()

	if products, ok := s.fromCache(ctx); ok {
		s.remember(products)
		return products, nil
	}

	payloads, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "fetch catalog")
	}
	products := Normalize(payloads)

	s.remember(products)
	s.toCache(ctx, products)
	return products, nil
}

func (s *Service) remember(products []Product) {
	s.mu.Lock()
	s.memo = products
	s.memoAt = time.Now()
	s.mu.Unlock()
}

func (s *Service) fromCache(ctx context.Context) ([]Product, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.Get(ctx, s.cache.CacheKey(cacheScope, cacheID))
	if err != nil {
		if !errors.Is(err, redis.ErrCacheMiss) && s.logg != nil {
			s.logg.Warn(ctx, "catalog.cache.read_failed")
		}
		return nil, false
	}
	var products []Product
	if err := json.Unmarshal([]byte(raw), &products); err != nil {
		// Stale or corrupt entry; refetch instead.
		return nil, false
	}
	return products, true
}

func (s *Service) toCache(ctx context.Context, products []Product) {
	if s.cache == nil {
		return
	}
	encoded, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, s.cache.CacheKey(cacheScope, cacheID), string(encoded), s.ttl); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "catalog.cache.write_failed")
	}
}
