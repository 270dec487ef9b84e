package mailsource

import (
	"context"
	"fmt"
	"io"
	"net/mail"
	"sync"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/jhillyerd/enmime"
	"github.com/premql/lead-triage/internal/core"
	"go.uber.org/zap"
)

// SMTPIngestSource accepts lead notifications pushed over SMTP, for
// deployments where the marketing system delivers directly instead of the
// triage tool polling a mailbox. Accepted messages accumulate until the
// next FetchLeads drains them.
type SMTPIngestSource struct {
	listenAddr     string
	maxMessageSize int64
	subjectFilters []string
	server         *smtp.Server
	logger         *zap.Logger

	mu      sync.Mutex
	pending []core.RawLead
}

// NewSMTPIngestSource creates an SMTP ingest source listening on listenAddr.
func NewSMTPIngestSource(
	listenAddr string,
	maxMessageSize int64,
	subjectFilters []string,
	logger *zap.Logger,
) *SMTPIngestSource {
	return &SMTPIngestSource{
		listenAddr:     listenAddr,
		maxMessageSize: maxMessageSize,
		subjectFilters: subjectFilters,
		logger:         logger,
	}
}

// Start starts the SMTP server
func (s *SMTPIngestSource) Start() error {
	s.server = smtp.NewServer(&ingestBackend{source: s})

	s.server.Addr = s.listenAddr
	s.server.Domain = "localhost"
	s.server.ReadTimeout = 30 * time.Second
	s.server.WriteTimeout = 30 * time.Second
	s.server.MaxMessageBytes = s.maxMessageSize
	s.server.MaxRecipients = 10
	s.server.AllowInsecureAuth = true

	s.logger.Info("SMTP ingest starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				s.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// FetchLeads drains the messages accepted since the previous fetch, in
// arrival order.
func (s *SMTPIngestSource) FetchLeads(ctx context.Context) ([]core.RawLead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	leads := s.pending
	s.pending = nil
	return leads, nil
}

// Close shuts down the SMTP server
func (s *SMTPIngestSource) Close() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

func (s *SMTPIngestSource) accept(envelope *enmime.Envelope, from string) {
	subject := envelope.GetHeader("Subject")
	if !matchesSubject(subject, s.subjectFilters) {
		s.logger.Debug("Ignoring message, subject does not match filters",
			zap.String("subject", subject))
		return
	}

	receivedAt := time.Now()
	if date, err := mail.ParseDate(envelope.GetHeader("Date")); err == nil {
		receivedAt = date
	}

	fields := ParseNotification(envelope.Text)
	fields["Subject"] = subject

	// No mailbox to file into on this path, so there is no message ref.
	lead := BuildRawLead("", from, receivedAt, fields, "")

	s.mu.Lock()
	s.pending = append(s.pending, lead)
	s.mu.Unlock()

	s.logger.Debug("Accepted lead notification over SMTP",
		zap.String("address", lead.Address))
}

// ingestBackend implements the go-smtp Backend interface
type ingestBackend struct {
	source *SMTPIngestSource
}

// NewSession creates a new SMTP session
func (b *ingestBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &ingestSession{source: b.source}, nil
}

// ingestSession implements the go-smtp Session interface
type ingestSession struct {
	source *SMTPIngestSource
	from   string
}

func (s *ingestSession) Mail(from string, opts *smtp.MailOptions) error {
	s.from = from
	return nil
}

func (s *ingestSession) Rcpt(to string, opts *smtp.RcptOptions) error {
	return nil
}

func (s *ingestSession) Data(r io.Reader) error {
	envelope, err := enmime.ReadEnvelope(r)
	if err != nil {
		return fmt.Errorf("failed to decode message: %w", err)
	}

	s.source.accept(envelope, s.from)
	return nil
}

func (s *ingestSession) Reset() {
	s.from = ""
}

func (s *ingestSession) Logout() error {
	return nil
}
