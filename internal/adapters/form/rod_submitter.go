package form

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/premql/lead-triage/internal/core"
	"go.uber.org/zap"
)

// RodSubmitter confirms validated leads by driving the review form in a
// headless browser: open the lead's form link, pick the approval option,
// click submit. The browser is launched lazily on the first submission.
type RodSubmitter struct {
	headless       bool
	timeout        time.Duration
	actionSelector string
	actionOption   string
	submitSelector string
	browser        *rod.Browser
	logger         *zap.Logger
}

// NewRodSubmitter creates a browser-backed form submitter.
func NewRodSubmitter(
	headless bool,
	timeout time.Duration,
	actionSelector, actionOption, submitSelector string,
	logger *zap.Logger,
) *RodSubmitter {
	return &RodSubmitter{
		headless:       headless,
		timeout:        timeout,
		actionSelector: actionSelector,
		actionOption:   actionOption,
		submitSelector: submitSelector,
		logger:         logger,
	}
}

func (s *RodSubmitter) connect() error {
	if s.browser != nil {
		return nil
	}

	url, err := launcher.New().Headless(s.headless).Launch()
	if err != nil {
		return fmt.Errorf("failed to launch browser: %w", err)
	}

	b := rod.New().ControlURL(url)
	if err := b.Connect(); err != nil {
		return fmt.Errorf("failed to connect to browser: %w", err)
	}

	s.browser = b
	s.logger.Info("Browser launched for form submissions", zap.Bool("headless", s.headless))
	return nil
}

// Submit opens the verdict's form link and confirms it. Leads without a
// form link return ErrNoFormLink so the dispatcher can count them as
// skipped rather than failed.
func (s *RodSubmitter) Submit(ctx context.Context, verdict *core.Verdict) error {
	formURL := verdict.Lead.Raw.FormURL
	if formURL == "" {
		return core.ErrNoFormLink
	}

	if err := s.connect(); err != nil {
		return err
	}

	page, err := s.browser.Page(proto.TargetCreateTarget{URL: ""})
	if err != nil {
		return fmt.Errorf("failed to open page: %w", err)
	}
	defer func() {
		_ = rod.Try(func() { page.MustClose() })
	}()

	page = page.Context(ctx).Timeout(s.timeout)

	if err := page.Navigate(formURL); err != nil {
		return fmt.Errorf("failed to open form %s: %w", formURL, err)
	}
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("form did not finish loading: %w", err)
	}

	if s.actionSelector != "" {
		action, err := page.Element(s.actionSelector)
		if err != nil {
			return fmt.Errorf("action control %q not found: %w", s.actionSelector, err)
		}
		if err := action.Select([]string{s.actionOption}, true, rod.SelectorTypeText); err != nil {
			return fmt.Errorf("failed to pick option %q: %w", s.actionOption, err)
		}
	}

	submit, err := page.Element(s.submitSelector)
	if err != nil {
		return fmt.Errorf("submit control %q not found: %w", s.submitSelector, err)
	}
	if err := submit.Click(proto.InputMouseButtonLeft, 1); err != nil {
		return fmt.Errorf("failed to click submit: %w", err)
	}

	// Give the form's own request time to land before the page closes.
	if err := page.WaitLoad(); err != nil {
		s.logger.Debug("Post-submit load wait ended early", zap.Error(err))
	}

	s.logger.Info("Submitted validation form",
		zap.String("address", verdict.Lead.Address))
	return nil
}

// Close shuts down the browser
func (s *RodSubmitter) Close() error {
	if s.browser == nil {
		return nil
	}
	err := rod.Try(func() { s.browser.MustClose() })
	s.browser = nil
	return err
}
