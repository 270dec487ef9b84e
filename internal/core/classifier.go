package core

import (
	"time"

	"go.uber.org/zap"

	"github.com/premql/lead-triage/internal/rules"
)

// Rule is one predicate in the classification chain. The chain is an
// explicit ordered slice so that precedence is visible data, not control
// flow buried in if/else.
type Rule struct {
	Reason  ReasonCode
	Outcome Outcome
	Matches func(lead *NormalizedLead, isDuplicate bool) bool
}

// Classifier assigns a verdict to a normalized lead by evaluating its rule
// chain first-match-wins. Classify is pure given its inputs and total:
// every lead reaches exactly one verdict.
type Classifier struct {
	chain  []Rule
	logger *zap.Logger
}

// NewClassifier builds the classifier over an immutable rule set. The
// chain order is deliberate: malformed and duplicate leads always demand
// human eyes, exclusion, country blacklist and known direct accounts take
// precedence over academic acceptance, and unknown domains default to
// review. The engine never invents certainty it doesn't have.
func NewClassifier(ruleSet *rules.RuleSet, logger *zap.Logger) *Classifier {
	chain := []Rule{
		{
			Reason:  ReasonMalformedAddress,
			Outcome: OutcomeReview,
			Matches: func(l *NormalizedLead, _ bool) bool {
				return l.Malformed()
			},
		},
		{
			Reason:  ReasonDuplicateAddress,
			Outcome: OutcomeReview,
			Matches: func(_ *NormalizedLead, isDuplicate bool) bool {
				return isDuplicate
			},
		},
		{
			Reason:  ReasonExplicitExclusion,
			Outcome: OutcomeRejected,
			Matches: func(l *NormalizedLead, _ bool) bool {
				return ruleSet.IsExcluded(l.Address, l.Domain)
			},
		},
		{
			Reason:  ReasonCountryBlacklist,
			Outcome: OutcomeRejected,
			Matches: func(l *NormalizedLead, _ bool) bool {
				return ruleSet.IsCountryBlacklisted(l.Country)
			},
		},
		{
			Reason:  ReasonDirectAccount,
			Outcome: OutcomeRejected,
			Matches: func(l *NormalizedLead, _ bool) bool {
				return ruleSet.IsDirectAccount(l.Raw.Organization)
			},
		},
		{
			Reason:  ReasonAcademicDomainMatch,
			Outcome: OutcomeValid,
			Matches: func(l *NormalizedLead, _ bool) bool {
				return ruleSet.IsAcademicDomain(l.Domain)
			},
		},
		{
			Reason:  ReasonAcademicNameMatch,
			Outcome: OutcomeValid,
			Matches: func(l *NormalizedLead, _ bool) bool {
				return ruleSet.IsAcademicName(l.Raw.Organization)
			},
		},
		{
			Reason:  ReasonFreemailDomain,
			Outcome: OutcomeReview,
			Matches: func(l *NormalizedLead, _ bool) bool {
				return ruleSet.IsFreemail(l.Domain)
			},
		},
		{
			Reason:  ReasonCompanyDomainMismatch,
			Outcome: OutcomeReview,
			Matches: func(l *NormalizedLead, _ bool) bool {
				return ruleSet.IsDomainMismatch(l.Raw.Organization, l.Domain)
			},
		},
	}

	return &Classifier{
		chain:  chain,
		logger: logger,
	}
}

// Classify evaluates the rule chain and returns the verdict for the first
// matching rule, or the review/no-rule-matched default.
func (c *Classifier) Classify(lead *NormalizedLead, isDuplicate bool) *Verdict {
	for _, rule := range c.chain {
		if rule.Matches(lead, isDuplicate) {
			c.logger.Debug("Lead classified",
				zap.String("address", lead.Address),
				zap.String("outcome", string(rule.Outcome)),
				zap.String("reason", string(rule.Reason)))
			return &Verdict{
				Outcome:   rule.Outcome,
				Reason:    rule.Reason,
				Lead:      lead,
				DecidedAt: time.Now(),
			}
		}
	}

	return &Verdict{
		Outcome:   OutcomeReview,
		Reason:    ReasonNoRuleMatched,
		Lead:      lead,
		DecidedAt: time.Now(),
	}
}

// Chain exposes the ordered rule list for audit output.
func (c *Classifier) Chain() []Rule {
	chain := make([]Rule, len(c.chain))
	copy(chain, c.chain)
	return chain
}
