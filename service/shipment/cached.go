package shipment

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"problemsolving.GO/core/cache"
	"problemsolving.GO/service/shortfall"
)

// CachedProvider keeps successful, non-empty shipment answers for a short TTL, in Redis when a client
// is given and in the process cache otherwise.
type CachedProvider struct {
	next  Provider
	rdb   *redis.Client
	local *cache.Cache
	ttl   time.Duration
}

func NewCachedProvider(next Provider, rdb *redis.Client, local *cache.Cache, ttl time.Duration) *CachedProvider {
	if local == nil {
		local = cache.GetInstance()
	}
	return &CachedProvider{next: next, rdb: rdb, local: local, ttl: ttl}
}

func cacheKey(company, basket string) string {
	return fmt.Sprintf("shipped:%s:%s", company, basket)
}

func companyTag(company string) string {
	return "shipped:" + company
}

func (p *CachedProvider) Shipped(ctx context.Context, company, basket string) ([]shortfall.ShippedRecord, error) {
	if p.ttl <= 0 {
		return p.next.Shipped(ctx, company, basket)
	}
	key := cacheKey(company, basket)
	if recs, ok := p.get(ctx, key); ok {
		return recs, nil
	}
	recs, err := p.next.Shipped(ctx, company, basket)
	if err != nil || len(recs) == 0 {
		return recs, err
	}
	p.set(ctx, company, key, recs)
	return recs, nil
}

func (p *CachedProvider) get(ctx context.Context, key string) ([]shortfall.ShippedRecord, bool) {
	if p.rdb != nil {
		b, err := p.rdb.Get(ctx, key).Bytes()
		if err != nil {
			if err != redis.Nil {
				log.Printf("[shipment] redis get %s: %v", key, err)
			}
			return nil, false
		}
		var recs []shortfall.ShippedRecord
		if err := json.Unmarshal(b, &recs); err != nil {
			return nil, false
		}
		return recs, true
	}
	v, ok := p.local.Get(key)
	if !ok {
		return nil, false
	}
	recs, ok := v.([]shortfall.ShippedRecord)
	return recs, ok
}

func (p *CachedProvider) set(ctx context.Context, company, key string, recs []shortfall.ShippedRecord) {
	if p.rdb != nil {
		b, err := json.Marshal(recs)
		if err != nil {
			return
		}
		if err := p.rdb.Set(ctx, key, b, p.ttl).Err(); err != nil {
			log.Printf("[shipment] redis set %s: %v", key, err)
		}
		return
	}
	p.local.Set(key, recs, p.ttl, []string{companyTag(company)})
}

// Invalidate drops every cached answer of the company and returns how many entries were removed.
func (p *CachedProvider) Invalidate(ctx context.Context, company string) (int, error) {
	if p.rdb == nil {
		return p.local.DeleteByTag(companyTag(company)), nil
	}
	n := 0
	iter := p.rdb.Scan(ctx, 0, cacheKey(company, "*"), 100).Iterator()
	for iter.Next(ctx) {
		if err := p.rdb.Del(ctx, iter.Val()).Err(); err != nil {
			return n, err
		}
		n++
	}
	return n, iter.Err()
}
