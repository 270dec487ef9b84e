package mailsource

import (
	"context"
	"fmt"
	"net/mail"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/jhillyerd/enmime"
	"github.com/premql/lead-triage/internal/core"
	"go.uber.org/zap"
)

// DirSource reads .eml files from a directory, mainly for offline runs and
// reprocessing exported notifications. Files are processed in name order.
type DirSource struct {
	path           string
	subjectFilters []string
	logger         *zap.Logger
}

// NewDirSource creates a directory-backed mail source
func NewDirSource(path string, subjectFilters []string, logger *zap.Logger) *DirSource {
	return &DirSource{
		path:           path,
		subjectFilters: subjectFilters,
		logger:         logger,
	}
}

// FetchLeads parses every .eml file in the directory into a RawLead.
// Unreadable files are logged and skipped.
func (s *DirSource) FetchLeads(ctx context.Context) ([]core.RawLead, error) {
	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read source directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".eml") {
			continue
		}
		names = append(names, entry.Name())
	}
	sort.Strings(names)

	var leads []core.RawLead
	for _, name := range names {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		path := filepath.Join(s.path, name)
		lead, ok := s.leadFromFile(path)
		if ok {
			leads = append(leads, lead)
		}
	}

	s.logger.Info("Fetched leads from directory",
		zap.String("path", s.path),
		zap.Int("count", len(leads)))
	return leads, nil
}

func (s *DirSource) leadFromFile(path string) (core.RawLead, bool) {
	file, err := os.Open(path)
	if err != nil {
		s.logger.Warn("Failed to open message file", zap.String("file", path), zap.Error(err))
		return core.RawLead{}, false
	}
	defer file.Close()

	envelope, err := enmime.ReadEnvelope(file)
	if err != nil {
		s.logger.Warn("Failed to decode message file", zap.String("file", path), zap.Error(err))
		return core.RawLead{}, false
	}

	subject := envelope.GetHeader("Subject")
	if !matchesSubject(subject, s.subjectFilters) {
		return core.RawLead{}, false
	}

	receivedAt := time.Now()
	if date, err := mail.ParseDate(envelope.GetHeader("Date")); err == nil {
		receivedAt = date
	}

	fields := ParseNotification(envelope.Text)
	fields["Subject"] = subject

	senderName, senderAddress := splitFromHeader(envelope.GetHeader("From"))
	return BuildRawLead(senderName, senderAddress, receivedAt, fields, path), true
}

func splitFromHeader(from string) (name, address string) {
	parsed, err := mail.ParseAddress(strings.TrimSpace(from))
	if err != nil {
		return "", strings.TrimSpace(from)
	}
	return parsed.Name, parsed.Address
}

// Close is a no-op for the directory source
func (s *DirSource) Close() error {
	return nil
}
