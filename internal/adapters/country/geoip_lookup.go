package country

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/oschwald/geoip2-golang"
	"go.uber.org/zap"
)

type geoCacheEntry struct {
	code    string
	expires time.Time
}

// GeoIPLookup infers a domain's country by resolving its A record and
// locating the address in a GeoLite2 country database. Results are cached
// per domain; DNS failures surface as errors so the caller can treat the
// country as absent.
type GeoIPLookup struct {
	db         *geoip2.Reader
	resolver   *net.Resolver
	dnsTimeout time.Duration
	cache      sync.Map
	cacheTTL   time.Duration
	logger     *zap.Logger
}

// NewGeoIPLookup opens the GeoLite2 database at dbPath.
func NewGeoIPLookup(dbPath string, dnsTimeout time.Duration, logger *zap.Logger) (*GeoIPLookup, error) {
	db, err := geoip2.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open GeoLite2 database: %w", err)
	}

	return &GeoIPLookup{
		db:         db,
		resolver:   net.DefaultResolver,
		dnsTimeout: dnsTimeout,
		cacheTTL:   12 * time.Hour,
		logger:     logger,
	}, nil
}

// Country resolves the domain and returns the ISO code of the first
// routable address, or "" when the database has no record for it.
func (l *GeoIPLookup) Country(ctx context.Context, domain string) (string, error) {
	if domain == "" {
		return "", nil
	}

	now := time.Now()
	if cached, ok := l.cache.Load(domain); ok {
		entry := cached.(geoCacheEntry)
		if now.Before(entry.expires) {
			return entry.code, nil
		}
	}

	lookupCtx, cancel := context.WithTimeout(ctx, l.dnsTimeout)
	defer cancel()

	ips, err := l.resolver.LookupIP(lookupCtx, "ip", domain)
	if err != nil {
		return "", fmt.Errorf("failed to resolve domain %s: %w", domain, err)
	}

	code := ""
	for _, ip := range ips {
		record, err := l.db.Country(ip)
		if err != nil {
			l.logger.Debug("GeoLite2 lookup failed for address",
				zap.String("domain", domain),
				zap.String("ip", ip.String()),
				zap.Error(err))
			continue
		}
		if record.Country.IsoCode != "" {
			code = record.Country.IsoCode
			break
		}
	}

	l.cache.Store(domain, geoCacheEntry{code: code, expires: now.Add(l.cacheTTL)})
	return code, nil
}

// Close releases the GeoLite2 database
func (l *GeoIPLookup) Close() error {
	return l.db.Close()
}
