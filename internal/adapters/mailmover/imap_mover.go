package mailmover

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/emersion/go-imap"
	"github.com/emersion/go-imap/client"
	"github.com/premql/lead-triage/internal/core"
	"go.uber.org/zap"
)

// IMAPMover files messages into the folder configured for their outcome.
// It decodes the "folder;uid" refs produced by the IMAP source; no other
// component interprets them.
type IMAPMover struct {
	address  string
	username string
	password string
	useTLS   bool
	folders  map[core.Outcome]string
	client   *client.Client
	created  map[string]bool
	logger   *zap.Logger
}

// NewIMAPMover creates a mover over its own IMAP connection, so that moves
// never race the source's fetch state.
func NewIMAPMover(
	address, username, password string,
	useTLS bool,
	folders map[core.Outcome]string,
	logger *zap.Logger,
) *IMAPMover {
	return &IMAPMover{
		address:  address,
		username: username,
		password: password,
		useTLS:   useTLS,
		folders:  folders,
		created:  make(map[string]bool),
		logger:   logger,
	}
}

func (m *IMAPMover) connect() error {
	if m.client != nil {
		return nil
	}

	var c *client.Client
	var err error
	if m.useTLS {
		c, err = client.DialTLS(m.address, nil)
	} else {
		c, err = client.Dial(m.address)
	}
	if err != nil {
		return fmt.Errorf("failed to connect to IMAP server: %w", err)
	}

	if err := c.Login(m.username, m.password); err != nil {
		c.Logout()
		return fmt.Errorf("IMAP login failed: %w", err)
	}

	m.client = c
	return nil
}

// Move files the message behind ref into the outcome's folder, creating the
// folder on first use.
func (m *IMAPMover) Move(ctx context.Context, messageRef string, outcome core.Outcome) error {
	target, ok := m.folders[outcome]
	if !ok || target == "" {
		return core.ErrNoFolderMapping
	}

	folder, uid, err := decodeRef(messageRef)
	if err != nil {
		return err
	}

	if err := m.connect(); err != nil {
		return err
	}
	if err := m.ensureFolder(target); err != nil {
		return err
	}

	if _, err := m.client.Select(folder, false); err != nil {
		return fmt.Errorf("failed to select folder %s: %w", folder, err)
	}

	seqset := new(imap.SeqSet)
	seqset.AddNum(uid)

	if err := m.client.UidMove(seqset, target); err != nil {
		// Servers without MOVE get copy + delete + expunge.
		return m.copyAndDelete(seqset, target, err)
	}

	m.logger.Debug("Moved message",
		zap.String("ref", messageRef),
		zap.String("target", target))
	return nil
}

func (m *IMAPMover) copyAndDelete(seqset *imap.SeqSet, target string, moveErr error) error {
	if err := m.client.UidCopy(seqset, target); err != nil {
		return fmt.Errorf("move failed (%v) and copy fallback failed: %w", moveErr, err)
	}

	item := imap.FormatFlagsOp(imap.AddFlags, true)
	flags := []interface{}{imap.DeletedFlag}
	if err := m.client.UidStore(seqset, item, flags, nil); err != nil {
		return fmt.Errorf("failed to flag message deleted after copy: %w", err)
	}
	if err := m.client.Expunge(nil); err != nil {
		return fmt.Errorf("failed to expunge after copy: %w", err)
	}

	return nil
}

func (m *IMAPMover) ensureFolder(name string) error {
	if m.created[name] {
		return nil
	}

	// Create is idempotent enough for our purposes: an AlreadyExists
	// error just means another run won the race.
	if err := m.client.Create(name); err != nil {
		m.logger.Debug("Folder create returned error, assuming it exists",
			zap.String("folder", name),
			zap.Error(err))
	}
	m.created[name] = true
	return nil
}

func decodeRef(ref string) (folder string, uid uint32, err error) {
	sep := strings.LastIndex(ref, ";")
	if sep <= 0 || sep == len(ref)-1 {
		return "", 0, fmt.Errorf("malformed message ref %q", ref)
	}

	parsed, err := strconv.ParseUint(ref[sep+1:], 10, 32)
	if err != nil {
		return "", 0, fmt.Errorf("malformed message ref %q: %w", ref, err)
	}

	return ref[:sep], uint32(parsed), nil
}

// Close logs out of the IMAP session
func (m *IMAPMover) Close() error {
	if m.client == nil {
		return nil
	}
	err := m.client.Logout()
	m.client = nil
	return err
}
