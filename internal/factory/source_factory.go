package factory

import (
	"fmt"

	"github.com/premql/lead-triage/internal/adapters/mailsource"
	"github.com/premql/lead-triage/internal/config"
	"github.com/premql/lead-triage/internal/core"
	"go.uber.org/zap"
)

// SourceFactory creates mail sources based on configuration
type SourceFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewSourceFactory creates a new mail source factory
func NewSourceFactory(cfg *config.Config, logger *zap.Logger) *SourceFactory {
	return &SourceFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateMailSource creates a mail source based on the configuration.
// The SMTP ingest source is returned started.
func (f *SourceFactory) CreateMailSource() (core.MailSource, error) {
	sourceCfg := f.cfg.GetSource()

	switch sourceCfg.Type {
	case "imap":
		imapCfg := f.cfg.GetIMAP()
		return mailsource.NewIMAPSource(
			imapCfg.Address,
			imapCfg.Username,
			imapCfg.Password,
			imapCfg.Folder,
			imapCfg.TLS,
			imapCfg.SinceDays,
			sourceCfg.SubjectFilters,
			f.logger,
		), nil
	case "smtp":
		smtpCfg := f.cfg.GetSMTPIngest()
		source := mailsource.NewSMTPIngestSource(
			smtpCfg.ListenAddress,
			int64(smtpCfg.MaxMessageBytes),
			sourceCfg.SubjectFilters,
			f.logger,
		)
		if err := source.Start(); err != nil {
			return nil, fmt.Errorf("failed to start SMTP ingest: %w", err)
		}
		return source, nil
	case "dir":
		return mailsource.NewDirSource(
			f.cfg.GetString("dir_source.path"),
			sourceCfg.SubjectFilters,
			f.logger,
		), nil
	default:
		return nil, fmt.Errorf("unsupported mail source type: %s", sourceCfg.Type)
	}
}
