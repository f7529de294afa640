package ttlcache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"

	"veritas/contexts/knowledge-curation/promotion-engine/domain/entities"
	"veritas/contexts/knowledge-curation/promotion-engine/ports"
)

// EligibilityCacheTTL bounds staleness for display reads.
const EligibilityCacheTTL = 5 * time.Minute

// Cache is the read-through eligibility cache. Every mutating operation that
// feeds the evaluator calls Invalidate; promotion bypasses the cache
// entirely.
type Cache struct {
	inner *gocache.Cache
	ttl   time.Duration
}

func New(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = EligibilityCacheTTL
	}
	return &Cache{
		inner: gocache.New(ttl, 2*ttl),
		ttl:   ttl,
	}
}

func (c *Cache) Get(graphID string) (entities.PromotionEligibility, bool) {
	value, found := c.inner.Get(graphID)
	if !found {
		return entities.PromotionEligibility{}, false
	}
	eligibility, ok := value.(entities.PromotionEligibility)
	if !ok {
		c.inner.Delete(graphID)
		return entities.PromotionEligibility{}, false
	}
	return eligibility, true
}

func (c *Cache) Set(graphID string, eligibility entities.PromotionEligibility) {
	c.inner.Set(graphID, eligibility, c.ttl)
}

func (c *Cache) Invalidate(graphID string) {
	c.inner.Delete(graphID)
}

var _ ports.EligibilityCache = (*Cache)(nil)
