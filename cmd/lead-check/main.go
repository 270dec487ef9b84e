package main

import (
	"context"
	"flag"
	"fmt"
	"net/mail"
	"os"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/premql/lead-triage/internal/adapters/country"
	"github.com/premql/lead-triage/internal/adapters/mailsource"
	"github.com/premql/lead-triage/internal/config"
	"github.com/premql/lead-triage/internal/core"
	"github.com/premql/lead-triage/internal/logging"
	"github.com/premql/lead-triage/internal/rules"
	"go.uber.org/zap"
)

var (
	// Lead flags
	address      = flag.String("address", "", "Email address to classify")
	organization = flag.String("org", "", "Organization name reported by the lead")
	leadCountry  = flag.String("country", "", "Self-reported country code")

	// Input flags
	inputFile = flag.String("file", "", "Notification .eml file to classify instead of -address")
	rulesDir  = flag.String("rules-dir", "", "Directory with rule list files (overrides config)")
	verbose   = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog   = flag.Bool("json-log", false, "Output logs in JSON format")
)

func main() {
	flag.Parse()

	// Initialize logger
	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.New()
	if err != nil {
		logger.Fatal("Failed to load configuration", zap.Error(err))
	}

	lists := rules.Lists{
		AcademicSuffixes:     cfg.GetStringSlice("rules.academic_suffixes"),
		AcademicKeywords:     cfg.GetStringSlice("rules.academic_keywords"),
		CommercialMarkers:    cfg.GetStringSlice("rules.commercial_markers"),
		DirectAccounts:       cfg.GetStringSlice("rules.direct_accounts"),
		ExcludedAddresses:    cfg.GetStringSlice("rules.excluded_addresses"),
		BlacklistedCountries: cfg.GetStringSlice("rules.blacklisted_countries"),
		FreemailDomains:      cfg.GetStringSlice("rules.freemail_domains"),
	}

	dir := *rulesDir
	if dir == "" {
		dir = cfg.GetString("rules.dir")
	}
	if dir != "" {
		lists, err = rules.Load(dir, lists, logger)
		if err != nil {
			logger.Fatal("Failed to load rule lists", zap.Error(err))
		}
	}

	raw, err := buildLead()
	if err != nil {
		logger.Fatal("Failed to build lead", zap.Error(err))
	}

	lookup := country.NewStaticLookup(
		cfg.GetStringMapString("country.static_table"),
		cfg.GetBool("country.cctld_fallback"),
		logger,
	)

	ctx := context.Background()
	normalizer := core.NewNormalizer(lookup, logger)
	classifier := core.NewClassifier(rules.New(lists, logger), logger)

	lead := normalizer.Normalize(ctx, &raw)

	// Print lead summary
	fmt.Printf("\n=== Lead ===\n")
	fmt.Printf("Address: %s\n", lead.Address)
	fmt.Printf("Domain: %s\n", lead.Domain)
	fmt.Printf("Country: %s\n", orDash(lead.Country))
	fmt.Printf("Organization: %s\n", orDash(raw.Organization))
	fmt.Printf("Form link: %s\n", orDash(raw.FormURL))

	// Walk the rule chain so the operator sees the precedence at work
	fmt.Printf("\n=== Rule chain ===\n")
	for i, rule := range classifier.Chain() {
		matched := rule.Matches(lead, false)
		marker := " "
		if matched {
			marker = "*"
		}
		fmt.Printf("%s %d. %-25s -> %s\n", marker, i+1, rule.Reason, rule.Outcome)
	}

	startTime := time.Now()
	verdict := classifier.Classify(lead, false)

	// Print results
	fmt.Printf("\n=== Verdict ===\n")
	fmt.Printf("Outcome: %s\n", verdict.Outcome)
	fmt.Printf("Reason: %s\n", verdict.Reason)
	fmt.Printf("Processing time: %v\n", time.Since(startTime))
}

// buildLead assembles the lead under test from the flags or an .eml file
func buildLead() (core.RawLead, error) {
	if *inputFile != "" {
		return leadFromFile(*inputFile)
	}
	if *address == "" {
		return core.RawLead{}, fmt.Errorf("either -address or -file is required")
	}
	return core.RawLead{
		Address:      *address,
		Organization: *organization,
		Country:      *leadCountry,
		ReceivedAt:   time.Now(),
	}, nil
}

func leadFromFile(path string) (core.RawLead, error) {
	file, err := os.Open(path)
	if err != nil {
		return core.RawLead{}, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	envelope, err := enmime.ReadEnvelope(file)
	if err != nil {
		return core.RawLead{}, fmt.Errorf("failed to decode message: %w", err)
	}

	receivedAt := time.Now()
	if date, err := mail.ParseDate(envelope.GetHeader("Date")); err == nil {
		receivedAt = date
	}

	fields := mailsource.ParseNotification(envelope.Text)
	fields["Subject"] = envelope.GetHeader("Subject")

	var senderName, senderAddress string
	if parsed, err := mail.ParseAddress(envelope.GetHeader("From")); err == nil {
		senderName = parsed.Name
		senderAddress = parsed.Address
	}

	return mailsource.BuildRawLead(senderName, senderAddress, receivedAt, fields, path), nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
