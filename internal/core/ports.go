package core

import (
	"context"
)

// MailSource produces a finite batch of candidate leads. Iteration order is
// arrival order; the pipeline preserves it through to the report.
type MailSource interface {
	// FetchLeads reads all pending lead notifications and returns them
	// in arrival order, each with an opaque MessageRef for later filing.
	FetchLeads(ctx context.Context) ([]RawLead, error)

	// Close releases any connection held by the source.
	Close() error
}

// CountryLookup infers the country a domain is operated from. It is pure
// and total from the core's perspective: an unresolvable domain yields an
// empty code, and a lookup error is treated as "country absent" by callers.
type CountryLookup interface {
	// Country returns an ISO 3166-1 alpha-2 code, or "" when unknown.
	Country(ctx context.Context, domain string) (string, error)
}

// DedupRepository is an optional cross-run store of addresses already
// triaged. The in-run Deduplicator consults it so that an address validated
// in a previous batch is still flagged as a repeat.
type DedupRepository interface {
	// Seen reports whether the address has a live (unexpired) record.
	Seen(ctx context.Context, address string) (bool, error)

	// Record stores a dedup entry, replacing any previous one.
	Record(ctx context.Context, entry *DedupEntry) error

	// Cleanup removes expired entries.
	Cleanup(ctx context.Context) error
}

// ReportSink renders the batch partition into the two logical report
// sheets: Validation (valid + rejected) and Review.
type ReportSink interface {
	WriteReport(ctx context.Context, result *BatchResult) error
}

// FormSubmitter pushes a single valid lead through its review/validation
// web form. Per-lead failure is reported back but never alters the verdict.
type FormSubmitter interface {
	// Submit files the lead's form. It returns ErrNoFormLink when the
	// lead carries no usable link, which the pipeline counts as skipped
	// rather than failed.
	Submit(ctx context.Context, verdict *Verdict) error

	// Close shuts down any browser or connection held by the submitter.
	Close() error
}

// MailMover files the original message into the folder configured for the
// outcome. It is invoked per lead once the full batch partition is known.
type MailMover interface {
	// Move files the message identified by the opaque ref. It returns
	// ErrNoFolderMapping when no folder is configured for the outcome,
	// which the pipeline counts as skipped rather than failed.
	Move(ctx context.Context, messageRef string, outcome Outcome) error

	// Close releases the mover's mail store connection.
	Close() error
}
