package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/premql/lead-triage/internal/rules"
)

func testPipeline(lookup CountryLookup) *Pipeline {
	logger := zap.NewNop()
	rs := rules.New(rules.Lists{
		AcademicSuffixes:     []string{".edu"},
		AcademicKeywords:     []string{"university"},
		BlacklistedCountries: []string{"KP"},
		FreemailDomains:      []string{"gmail.com"},
	}, logger)

	return NewPipeline(
		NewNormalizer(lookup, logger),
		NewDeduplicator(nil, 0, logger),
		NewClassifier(rs, logger),
		logger,
	)
}

func TestRunPartitionsBatch(t *testing.T) {
	p := testPipeline(nil)

	leads := []RawLead{
		{Address: "a@school.edu", Country: "US"},
		{Address: "b@school.edu", Country: "KP"},
		{Address: "a@school.edu", Country: "US"},
	}

	result, err := p.Run(context.Background(), leads)
	require.NoError(t, err)

	require.Len(t, result.Valid, 1)
	assert.Equal(t, "a@school.edu", result.Valid[0].Lead.Address)
	assert.Equal(t, ReasonAcademicDomainMatch, result.Valid[0].Reason)

	require.Len(t, result.Rejected, 1)
	assert.Equal(t, "b@school.edu", result.Rejected[0].Lead.Address)
	assert.Equal(t, ReasonCountryBlacklist, result.Rejected[0].Reason)

	require.Len(t, result.Review, 1)
	assert.Equal(t, "a@school.edu", result.Review[0].Lead.Address)
	assert.Equal(t, ReasonDuplicateAddress, result.Review[0].Reason)

	assert.Equal(t, 3, result.Total())
}

func TestRunPreservesInputOrderPerBucket(t *testing.T) {
	p := testPipeline(nil)

	leads := []RawLead{
		{Address: "first@school.edu"},
		{Address: "one@corp.example"},
		{Address: "second@school.edu"},
		{Address: "two@corp.example"},
		{Address: "third@school.edu"},
	}

	result, err := p.Run(context.Background(), leads)
	require.NoError(t, err)

	var validAddrs []string
	for _, v := range result.Valid {
		validAddrs = append(validAddrs, v.Lead.Address)
	}
	assert.Equal(t, []string{"first@school.edu", "second@school.edu", "third@school.edu"}, validAddrs)

	var reviewAddrs []string
	for _, v := range result.Review {
		reviewAddrs = append(reviewAddrs, v.Lead.Address)
	}
	assert.Equal(t, []string{"one@corp.example", "two@corp.example"}, reviewAddrs)
}

func TestRunEveryLeadGetsExactlyOneVerdict(t *testing.T) {
	p := testPipeline(nil)

	leads := []RawLead{
		{Address: "a@school.edu"},
		{Address: "broken"},
		{Address: ""},
		{Address: "jane@gmail.com"},
		{Address: "a@school.edu"},
	}

	result, err := p.Run(context.Background(), leads)
	require.NoError(t, err)
	assert.Equal(t, len(leads), result.Total())
}

func TestRunHonorsCancellation(t *testing.T) {
	p := testPipeline(nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Run(ctx, []RawLead{{Address: "a@school.edu"}})
	assert.ErrorIs(t, err, context.Canceled)
}

type fakeReportSink struct {
	err    error
	writes int
}

func (f *fakeReportSink) WriteReport(ctx context.Context, result *BatchResult) error {
	f.writes++
	return f.err
}

type fakeFormSubmitter struct {
	errs      map[string]error
	submitted []string
}

func (f *fakeFormSubmitter) Submit(ctx context.Context, verdict *Verdict) error {
	if err, ok := f.errs[verdict.Lead.Address]; ok {
		return err
	}
	f.submitted = append(f.submitted, verdict.Lead.Address)
	return nil
}

func (f *fakeFormSubmitter) Close() error { return nil }

type fakeMailMover struct {
	errs  map[string]error
	moved []string
}

func (f *fakeMailMover) Move(ctx context.Context, messageRef string, outcome Outcome) error {
	if err, ok := f.errs[messageRef]; ok {
		return err
	}
	f.moved = append(f.moved, messageRef)
	return nil
}

func (f *fakeMailMover) Close() error { return nil }

func dispatchFixture(t *testing.T, p *Pipeline) *BatchResult {
	t.Helper()
	result, err := p.Run(context.Background(), []RawLead{
		{Address: "a@school.edu", MessageRef: "INBOX;1", FormURL: "https://crm.example/form/1"},
		{Address: "b@school.edu", MessageRef: "INBOX;2"},
		{Address: "jane@gmail.com", MessageRef: "INBOX;3"},
	})
	require.NoError(t, err)
	return result
}

func TestDispatchRoutesBuckets(t *testing.T) {
	p := testPipeline(nil)
	result := dispatchFixture(t, p)

	report := &fakeReportSink{}
	form := &fakeFormSubmitter{errs: map[string]error{"b@school.edu": ErrNoFormLink}}
	mover := &fakeMailMover{}

	stats := p.Dispatch(context.Background(), result, Sinks{Report: report, Form: form, Mover: mover})

	assert.True(t, stats.ReportWritten)
	assert.Equal(t, 1, report.writes)

	// Only valid leads reach the form submitter.
	assert.Equal(t, []string{"a@school.edu"}, form.submitted)
	assert.Equal(t, 1, stats.FormsSubmitted)
	assert.Equal(t, 1, stats.FormsSkipped)

	assert.ElementsMatch(t, []string{"INBOX;1", "INBOX;2", "INBOX;3"}, mover.moved)
	assert.Equal(t, 3, stats.MessagesMoved)
}

func TestDispatchSinkFailuresNeverAbort(t *testing.T) {
	p := testPipeline(nil)
	result := dispatchFixture(t, p)

	report := &fakeReportSink{err: errors.New("disk full")}
	form := &fakeFormSubmitter{errs: map[string]error{"a@school.edu": errors.New("browser crashed")}}
	mover := &fakeMailMover{errs: map[string]error{"INBOX;2": errors.New("connection reset")}}

	stats := p.Dispatch(context.Background(), result, Sinks{Report: report, Form: form, Mover: mover})

	assert.False(t, stats.ReportWritten)
	assert.Error(t, stats.ReportFailure)
	assert.Equal(t, 1, stats.FormFailures)
	assert.Equal(t, 1, stats.MoveFailures)
	// The other messages were still moved.
	assert.Equal(t, 2, stats.MessagesMoved)
	// Verdicts are untouched by sink failures.
	assert.Equal(t, 3, result.Total())
}

func TestDispatchSkipsLeadsWithoutMessageRef(t *testing.T) {
	p := testPipeline(nil)
	result, err := p.Run(context.Background(), []RawLead{
		{Address: "a@school.edu"},
		{Address: "b@school.edu", MessageRef: "INBOX;2"},
	})
	require.NoError(t, err)

	mover := &fakeMailMover{}
	stats := p.Dispatch(context.Background(), result, Sinks{Mover: mover})

	assert.Equal(t, []string{"INBOX;2"}, mover.moved)
	assert.Equal(t, 1, stats.MessagesMoved)
	assert.Equal(t, 1, stats.MovesSkipped)
}

func TestDispatchWithNoSinks(t *testing.T) {
	p := testPipeline(nil)
	result := dispatchFixture(t, p)

	stats := p.Dispatch(context.Background(), result, Sinks{})
	assert.False(t, stats.ReportWritten)
	assert.Zero(t, stats.FormsSubmitted)
	assert.Zero(t, stats.MessagesMoved)
}
