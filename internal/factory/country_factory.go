package factory

import (
	"fmt"

	"github.com/premql/lead-triage/internal/adapters/country"
	"github.com/premql/lead-triage/internal/config"
	"github.com/premql/lead-triage/internal/core"
	"go.uber.org/zap"
)

// CountryFactory creates country lookups based on configuration
type CountryFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewCountryFactory creates a new country lookup factory
func NewCountryFactory(cfg *config.Config, logger *zap.Logger) *CountryFactory {
	return &CountryFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateCountryLookup creates a country lookup based on the configuration
func (f *CountryFactory) CreateCountryLookup() (core.CountryLookup, error) {
	lookupType := f.cfg.GetString("country.type")

	switch lookupType {
	case "static":
		return country.NewStaticLookup(
			f.cfg.GetStringMapString("country.static_table"),
			f.cfg.GetBool("country.cctld_fallback"),
			f.logger,
		), nil
	case "geoip":
		dnsTimeout, err := f.cfg.GetDuration("country.dns_timeout")
		if err != nil {
			return nil, fmt.Errorf("invalid DNS timeout: %w", err)
		}
		return country.NewGeoIPLookup(
			f.cfg.GetString("country.geoip_db_path"),
			dnsTimeout,
			f.logger,
		)
	default:
		return nil, fmt.Errorf("unsupported country lookup type: %s", lookupType)
	}
}
