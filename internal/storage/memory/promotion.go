package memory

import (
	"context"
	"sync"

	"github.com/bits-and-blooms/bloom/v3"

	"github.com/yuki/checkout-server/internal/domain/promotion"
)

// Sizing for the discount-code bloom filter. Promotion catalogs are small
// today, but discount-code lookups happen on every priced basket read, and
// most lookups with user-supplied codes miss.
const (
	promoFilterCapacity = 1 << 16
	promoFilterFPR      = 0.001
)

var _ promotion.Repository = (*PromotionStore)(nil)

// PromotionStore holds the promotion catalog keyed by discount code. A bloom
// filter short-circuits negative lookups before touching the map. The filter
// is add-only, which is fine: promotions are load-time data and are never
// deleted.
type PromotionStore struct {
	mu         sync.RWMutex
	promotions map[string]promotion.Promotion
	filter     *bloom.BloomFilter
}

// NewPromotionStore returns an empty PromotionStore.
func NewPromotionStore() *PromotionStore {
	return &PromotionStore{
		promotions: make(map[string]promotion.Promotion),
		filter:     bloom.NewWithEstimates(promoFilterCapacity, promoFilterFPR),
	}
}

// Save stores the promotion under its code, replacing any previous entry.
func (s *PromotionStore) Save(_ context.Context, p promotion.Promotion) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.promotions[p.Code] = p
	s.filter.AddString(p.Code)
	return nil
}

// FindByCode returns the promotion for the given discount code, or
// promotion.ErrNotFound.
func (s *PromotionStore) FindByCode(_ context.Context, code string) (*promotion.Promotion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.filter.TestString(code) {
		return nil, promotion.ErrNotFound
	}
	p, ok := s.promotions[code]
	if !ok {
		return nil, promotion.ErrNotFound
	}
	return &p, nil
}

// FindAll returns a snapshot copy of the promotion catalog.
func (s *PromotionStore) FindAll(_ context.Context) (map[string]promotion.Promotion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snapshot := make(map[string]promotion.Promotion, len(s.promotions))
	for code, p := range s.promotions {
		snapshot[code] = p
	}
	return snapshot, nil
}
