package core

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Pipeline orchestrates normalize -> dedup -> classify over a batch of raw
// leads and partitions the verdicts into outcome buckets. Processing is
// strictly sequential per lead and buckets preserve input order, so report
// rows are reproducible and diffable across runs.
type Pipeline struct {
	normalizer *Normalizer
	dedup      *Deduplicator
	classifier *Classifier
	logger     *zap.Logger
}

// NewPipeline creates a batch pipeline.
func NewPipeline(
	normalizer *Normalizer,
	dedup *Deduplicator,
	classifier *Classifier,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		normalizer: normalizer,
		dedup:      dedup,
		classifier: classifier,
		logger:     logger,
	}
}

// Run classifies every lead and returns the stable partition. The only
// error condition is context cancellation; classification itself is total.
func (p *Pipeline) Run(ctx context.Context, leads []RawLead) (*BatchResult, error) {
	result := &BatchResult{}

	for i := range leads {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		raw := &leads[i]
		lead := p.normalizer.Normalize(ctx, raw)
		isDuplicate := !p.dedup.CheckAndRecord(ctx, lead.Address)
		verdict := p.classifier.Classify(lead, isDuplicate)
		p.dedup.RecordOutcome(ctx, verdict)

		switch verdict.Outcome {
		case OutcomeValid:
			result.Valid = append(result.Valid, verdict)
		case OutcomeReview:
			result.Review = append(result.Review, verdict)
		case OutcomeRejected:
			result.Rejected = append(result.Rejected, verdict)
		}
	}

	p.logger.Info("Batch classified",
		zap.Int("total", result.Total()),
		zap.Int("valid", len(result.Valid)),
		zap.Int("review", len(result.Review)),
		zap.Int("rejected", len(result.Rejected)))

	return result, nil
}

// Sinks bundles the downstream collaborators a batch is handed to. Any of
// them may be nil when the corresponding action is disabled.
type Sinks struct {
	Report ReportSink
	Form   FormSubmitter
	Mover  MailMover
}

// Dispatch hands the partition to the sinks: the report sink gets all
// buckets, the form submitter gets valid leads only, and the mover files
// every message by its bucket. A single lead's downstream failure is
// logged and counted but never aborts the batch or touches the verdicts.
func (p *Pipeline) Dispatch(ctx context.Context, result *BatchResult, sinks Sinks) *DispatchStats {
	stats := &DispatchStats{}

	if sinks.Report != nil {
		if err := sinks.Report.WriteReport(ctx, result); err != nil {
			p.logger.Error("Report sink failed", zap.Error(err))
			stats.ReportFailure = err
		} else {
			stats.ReportWritten = true
		}
	}

	if sinks.Form != nil {
		for _, verdict := range result.Valid {
			err := sinks.Form.Submit(ctx, verdict)
			switch {
			case err == nil:
				stats.FormsSubmitted++
			case errors.Is(err, ErrNoFormLink):
				stats.FormsSkipped++
				p.logger.Debug("No form link for lead, skipping submission",
					zap.String("address", verdict.Lead.Address))
			default:
				stats.FormFailures++
				p.logger.Error("Form submission failed",
					zap.String("address", verdict.Lead.Address),
					zap.Error(err))
			}
		}
	}

	if sinks.Mover != nil {
		for _, verdict := range result.All() {
			ref := verdict.Lead.Raw.MessageRef
			if ref == "" {
				stats.MovesSkipped++
				continue
			}
			err := sinks.Mover.Move(ctx, ref, verdict.Outcome)
			switch {
			case err == nil:
				stats.MessagesMoved++
			case errors.Is(err, ErrNoFolderMapping):
				stats.MovesSkipped++
			default:
				stats.MoveFailures++
				p.logger.Error("Failed to move message",
					zap.String("address", verdict.Lead.Address),
					zap.String("outcome", string(verdict.Outcome)),
					zap.Error(err))
			}
		}
	}

	p.logger.Info("Batch dispatched",
		zap.Bool("report_written", stats.ReportWritten),
		zap.Int("forms_submitted", stats.FormsSubmitted),
		zap.Int("form_failures", stats.FormFailures),
		zap.Int("messages_moved", stats.MessagesMoved),
		zap.Int("move_failures", stats.MoveFailures))

	return stats
}
