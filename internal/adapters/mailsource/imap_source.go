package mailsource

import (
	"context"
	"fmt"
	"time"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/jhillyerd/enmime"
	"github.com/premql/lead-triage/internal/core"
	"go.uber.org/zap"
)

// IMAPSource reads Pre-MQL notifications from an IMAP folder. Message refs
// take the form "folder;uid" and are only ever decoded by the IMAP mover.
type IMAPSource struct {
	address        string
	username       string
	password       string
	folder         string
	useTLS         bool
	sinceDays      int
	subjectFilters []string
	client         *client.Client
	logger         *zap.Logger
}

// NewIMAPSource creates an IMAP mail source. The connection is established
// lazily on the first fetch.
func NewIMAPSource(
	address, username, password, folder string,
	useTLS bool,
	sinceDays int,
	subjectFilters []string,
	logger *zap.Logger,
) *IMAPSource {
	return &IMAPSource{
		address:        address,
		username:       username,
		password:       password,
		folder:         folder,
		useTLS:         useTLS,
		sinceDays:      sinceDays,
		subjectFilters: subjectFilters,
		logger:         logger,
	}
}

func (s *IMAPSource) connect() error {
	if s.client != nil {
		return nil
	}

	var c *client.Client
	var err error
	if s.useTLS {
		c, err = client.DialTLS(s.address, nil)
	} else {
		c, err = client.Dial(s.address)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(s.username, s.password); err != nil {
		c.Logout()
		return fmt.Errorf("IMAP login failed: %w", err)
	}

	s.client = c
	s.logger.Info("Connected to IMAP server",
		zap.String("address", s.address),
		zap.String("folder", s.folder))
	return nil
}

// FetchLeads selects the folder, searches for messages in the configured
// window, and parses each matching notification into a RawLead. Messages
// that fail MIME decoding are logged and skipped; one broken message must
// not sink the batch.
func (s *IMAPSource) FetchLeads(ctx context.Context) ([]core.RawLead, error) {
	if err := s.connect(); err != nil {
		return nil, err
	}

	if _, err := s.client.Select(s.folder, false); err != nil {
		return nil, fmt.Errorf("failed to select folder %s: %w", s.folder, err)
	}

	criteria := imap.NewSearchCriteria()
	if s.sinceDays > 0 {
		criteria.Since = time.Now().AddDate(0, 0, -s.sinceDays)
	}
	ids, err := s.client.Search(criteria)
	if err != nil {
		return nil, fmt.Errorf("IMAP search failed: %w", err)
	}
	if len(ids) == 0 {
		return nil, nil
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(ids...)

	section := &imap.BodySectionName{Peek: true}
	items := []imap.FetchItem{imap.FetchEnvelope, imap.FetchUid, section.FetchItem()}

	messages := make(chan *imap.Message, 10)
	done := make(chan error, 1)
	go func() {
		done <- s.client.Fetch(seqset, items, messages)
	}()

	var leads []core.RawLead
	for msg := range messages {
		if err := ctx.Err(); err != nil {
			// Drain the channel so the fetch goroutine can finish.
			for range messages {
			}
			<-done
			return nil, err
		}

		lead, ok := s.leadFromMessage(msg, section)
		if ok {
			leads = append(leads, lead)
		}
	}
	if err := <-done; err != nil {
		return nil, fmt.Errorf("IMAP fetch failed: %w", err)
	}

	s.logger.Info("Fetched leads from IMAP folder",
		zap.String("folder", s.folder),
		zap.Int("count", len(leads)))
	return leads, nil
}

func (s *IMAPSource) leadFromMessage(msg *imap.Message, section *imap.BodySectionName) (core.RawLead, bool) {
	env := msg.Envelope
	if env == nil || !matchesSubject(env.Subject, s.subjectFilters) {
		return core.RawLead{}, false
	}

	body := msg.GetBody(section)
	if body == nil {
		s.logger.Warn("Message has no body section", zap.Uint32("uid", msg.Uid))
		return core.RawLead{}, false
	}

	envelope, err := enmime.ReadEnvelope(body)
	if err != nil {
		s.logger.Warn("Failed to decode message",
			zap.Uint32("uid", msg.Uid),
			zap.Error(err))
		return core.RawLead{}, false
	}

	var senderName, senderAddress string
	if len(env.From) > 0 {
		senderName = env.From[0].PersonalName
		senderAddress = env.From[0].Address()
	}

	fields := ParseNotification(envelope.Text)
	fields["Subject"] = env.Subject

	ref := fmt.Sprintf("%s;%d", s.folder, msg.Uid)
	return BuildRawLead(senderName, senderAddress, env.Date, fields, ref), true
}

// Close logs out of the IMAP session
func (s *IMAPSource) Close() error {
	if s.client == nil {
		return nil
	}
	err := s.client.Logout()
	s.client = nil
	return err
}
