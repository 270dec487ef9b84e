package di

import (
	"time"

	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/premql/lead-triage/internal/config"
	"github.com/premql/lead-triage/internal/core"
	"github.com/premql/lead-triage/internal/factory"
	"github.com/premql/lead-triage/internal/logging"
	"github.com/premql/lead-triage/internal/rules"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register factories
	if err := container.Provide(factory.NewSourceFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewCountryFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewDedupFactory); err != nil {
		return nil, err
	}
	if err := container.Provide(factory.NewSinkFactory); err != nil {
		return nil, err
	}

	// Register rule lists: configured defaults merged with any list files
	// from the rules directory
	if err := container.Provide(func(cfg *config.Config, logger *zap.Logger) (rules.Lists, error) {
		lists := rules.Lists{
			AcademicSuffixes:     cfg.GetStringSlice("rules.academic_suffixes"),
			AcademicKeywords:     cfg.GetStringSlice("rules.academic_keywords"),
			CommercialMarkers:    cfg.GetStringSlice("rules.commercial_markers"),
			DirectAccounts:       cfg.GetStringSlice("rules.direct_accounts"),
			ExcludedAddresses:    cfg.GetStringSlice("rules.excluded_addresses"),
			BlacklistedCountries: cfg.GetStringSlice("rules.blacklisted_countries"),
			FreemailDomains:      cfg.GetStringSlice("rules.freemail_domains"),
		}
		if dir := cfg.GetString("rules.dir"); dir != "" {
			return rules.Load(dir, lists, logger)
		}
		return lists, nil
	}); err != nil {
		return nil, err
	}

	// Register rule set
	if err := container.Provide(rules.New); err != nil {
		return nil, err
	}

	// Register country lookup
	if err := container.Provide(func(f *factory.CountryFactory) (core.CountryLookup, error) {
		return f.CreateCountryLookup()
	}); err != nil {
		return nil, err
	}

	// Register dedup repository and suppression window
	if err := container.Provide(func(f *factory.DedupFactory) (core.DedupRepository, error) {
		return f.CreateDedupRepository()
	}); err != nil {
		return nil, err
	}
	if err := container.Provide(func(f *factory.DedupFactory) (time.Duration, error) {
		return f.GetDedupTTL()
	}); err != nil {
		return nil, err
	}

	// Register pipeline stages
	if err := container.Provide(core.NewNormalizer); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewDeduplicator); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewClassifier); err != nil {
		return nil, err
	}
	if err := container.Provide(core.NewPipeline); err != nil {
		return nil, err
	}

	// Register mail source
	if err := container.Provide(func(f *factory.SourceFactory) (core.MailSource, error) {
		return f.CreateMailSource()
	}); err != nil {
		return nil, err
	}

	// Register sinks
	if err := container.Provide(func(f *factory.SinkFactory) (core.Sinks, error) {
		return f.CreateSinks()
	}); err != nil {
		return nil, err
	}

	return container, nil
}
