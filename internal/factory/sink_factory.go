package factory

import (
	"fmt"

	"github.com/premql/lead-triage/internal/adapters/form"
	"github.com/premql/lead-triage/internal/adapters/mailmover"
	"github.com/premql/lead-triage/internal/adapters/report"
	"github.com/premql/lead-triage/internal/config"
	"github.com/premql/lead-triage/internal/core"
	"go.uber.org/zap"
)

// SinkFactory creates the outbound sinks based on configuration. Disabled
// sinks come back nil; the dispatcher treats a nil sink as absent.
type SinkFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSinkFactory creates a new sink factory
func NewSinkFactory(cfg *config.Config, logger *zap.Logger) *SinkFactory {
	return &SinkFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateSinks creates the configured sinks
func (f *SinkFactory) CreateSinks() (core.Sinks, error) {
	var sinks core.Sinks

	reportCfg := f.cfg.GetReport()
	if reportCfg.Enabled {
		sinks.Report = report.NewExcelSink(reportCfg.OutputDir, reportCfg.FilePrefix, f.logger)
	}

	formCfg := f.cfg.GetForm()
	if formCfg.Enabled {
		pageTimeout, err := f.cfg.GetDuration("form.page_timeout")
		if err != nil {
			return core.Sinks{}, fmt.Errorf("invalid form page timeout: %w", err)
		}
		sinks.Form = form.NewRodSubmitter(
			formCfg.Headless,
			pageTimeout,
			formCfg.ActionSelector,
			formCfg.ActionValue,
			formCfg.SubmitSelector,
			f.logger,
		)
	}

	if f.cfg.GetBool("mover.enabled") {
		imapCfg := f.cfg.GetIMAP()
		folders := make(map[core.Outcome]string)
		for key, folder := range f.cfg.GetStringMapString("mover.folders") {
			switch key {
			case "valid":
				folders[core.OutcomeValid] = folder
			case "review":
				folders[core.OutcomeReview] = folder
			case "rejected":
				folders[core.OutcomeRejected] = folder
			default:
				return core.Sinks{}, fmt.Errorf("unknown mover folder key: %s", key)
			}
		}
		sinks.Mover = mailmover.NewIMAPMover(
			imapCfg.Address,
			imapCfg.Username,
			imapCfg.Password,
			imapCfg.TLS,
			folders,
			f.logger,
		)
	}

	return sinks, nil
}
