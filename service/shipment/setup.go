package shipment

import (
	"github.com/redis/go-redis/v9"

	"problemsolving.GO/config"
)

// FromConfig builds the vendor client, with each company's own token when configured, behind the
// shipment cache. rdb may be nil.
func FromConfig(cfg *config.Config, companies []config.Company, rdb *redis.Client) *CachedProvider {
	client := NewClient(cfg.VendorAPIURL, cfg.VendorAPIToken, cfg.VendorAPITimeout)
	for _, c := range companies {
		client.WithCompanyToken(c.Key, config.VendorTokenFor(companies, c.Key, ""))
	}
	return NewCachedProvider(client, rdb, nil, cfg.ShipmentCacheTTL)
}
