package core

import (
	"time"
)

// Outcome is the bucket a classified lead lands in.
type Outcome string

const (
	// OutcomeValid leads go to form submission and the Validation sheet.
	OutcomeValid Outcome = "valid"
	// OutcomeReview leads need human eyes and go to the Review sheet.
	OutcomeReview Outcome = "review"
	// OutcomeRejected leads are recorded on the Validation sheet with
	// their rejection reason.
	OutcomeRejected Outcome = "rejected"
)

// ReasonCode identifies the rule that produced a verdict. It is carried
// into the report for audit.
type ReasonCode string

const (
	ReasonAcademicDomainMatch   ReasonCode = "academic_domain_match"
	ReasonAcademicNameMatch     ReasonCode = "academic_name_match"
	ReasonExplicitExclusion     ReasonCode = "explicit_exclusion"
	ReasonCountryBlacklist      ReasonCode = "country_blacklist"
	ReasonDirectAccount         ReasonCode = "direct_account"
	ReasonDuplicateAddress      ReasonCode = "duplicate_address"
	ReasonMalformedAddress      ReasonCode = "malformed_address"
	ReasonFreemailDomain        ReasonCode = "freemail_domain"
	ReasonCompanyDomainMismatch ReasonCode = "company_domain_mismatch"
	ReasonNoRuleMatched         ReasonCode = "no_rule_matched"
)

// InvalidDomain is the sentinel domain assigned to leads whose address
// cannot be split into local part and domain. Such leads are routed to
// review, never dropped.
const InvalidDomain = "invalid"

// RawLead is a candidate lead as delivered by a mail source. The address
// may be malformed; normalization decides what to do with it.
type RawLead struct {
	// SenderName is the display name on the notification email.
	SenderName string
	// Address is the lead's email address as found in the notification.
	Address string
	// Organization is the company or institution name, if the
	// notification carried one.
	Organization string
	// Country is the country as self-reported in the notification body.
	// It is a fallback only; domain-based inference takes precedence.
	Country string
	// FormURL is the review/validation form link extracted from the
	// notification, used by the form submitter for valid leads.
	FormURL string
	// ReceivedAt is the arrival timestamp of the notification.
	ReceivedAt time.Time
	// MessageRef is an opaque handle back to the mail store, consumed
	// only by the mail mover. The core never interprets it.
	MessageRef string
	// Fields holds any remaining parsed notification fields, carried
	// through to the report unchanged.
	Fields map[string]string
}

// NormalizedLead is the canonical form a RawLead is classified under. It
// references its RawLead for traceability but does not own it.
type NormalizedLead struct {
	// Address is lower-cased and trimmed.
	Address string
	// Domain is the part after the last '@', lower-cased, or
	// InvalidDomain when the address cannot be split.
	Domain string
	// Country is the inferred ISO 3166-1 alpha-2 code, or empty when no
	// inference succeeded.
	Country string
	// Raw is the originating lead record.
	Raw *RawLead
}

// Malformed reports whether normalization flagged the address as unusable.
func (l *NormalizedLead) Malformed() bool {
	return l.Domain == InvalidDomain
}

// Verdict is the immutable classification result for one lead. It is
// created once per lead per run and never mutated downstream; sink
// failures do not alter it.
type Verdict struct {
	Outcome   Outcome
	Reason    ReasonCode
	Lead      *NormalizedLead
	DecidedAt time.Time
}

// DedupEntry is a record in a cross-run dedup store.
type DedupEntry struct {
	Address   string
	Outcome   Outcome
	LastSeen  time.Time
	ExpiresAt time.Time
}

// BatchResult is the stable partition of a batch: each verdict appears in
// exactly one bucket, and every bucket preserves the relative input order
// of the leads assigned to it.
type BatchResult struct {
	Valid    []*Verdict
	Review   []*Verdict
	Rejected []*Verdict
}

// Total returns the number of verdicts across all buckets.
func (r *BatchResult) Total() int {
	return len(r.Valid) + len(r.Review) + len(r.Rejected)
}

// All yields every verdict in bucket order (valid, review, rejected),
// each bucket in input order.
func (r *BatchResult) All() []*Verdict {
	all := make([]*Verdict, 0, r.Total())
	all = append(all, r.Valid...)
	all = append(all, r.Review...)
	all = append(all, r.Rejected...)
	return all
}

// DispatchStats summarizes sink activity after a batch partition has been
// handed downstream.
type DispatchStats struct {
	ReportWritten   bool
	FormsSubmitted  int
	FormsSkipped    int
	FormFailures    int
	MessagesMoved   int
	MoveFailures    int
	MovesSkipped    int
	ReportFailure   error
}
