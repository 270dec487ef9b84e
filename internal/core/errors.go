package core

import (
	"errors"
)

var (
	// ErrNoFormLink is returned by a FormSubmitter when the lead's
	// notification carried no usable form URL.
	ErrNoFormLink = errors.New("lead has no form link")

	// ErrNoFolderMapping is returned by a MailMover when no target
	// folder is configured for the verdict's outcome.
	ErrNoFolderMapping = errors.New("no folder mapping for outcome")
)
