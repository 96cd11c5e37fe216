package convert

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is matched by errors.Is for any *FormatError.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrCapabilityUnavailable is matched by errors.Is for any *CapabilityError.
	ErrCapabilityUnavailable = errors.New("capability unavailable")
)

// FormatError reports an extension outside the recognized formats.
type FormatError struct {
	Op  string // "import" or "export"
	Ext string
}

func (e *FormatError) Error() string {
	ext := e.Ext
	if ext == "" {
		ext = "(no extension)"
	}
	if e.Op == "export" {
		return fmt.Sprintf("unsupported export format: %s", ext)
	}
	return fmt.Sprintf("unsupported file format: %s", ext)
}

func (e *FormatError) Unwrap() error { return ErrUnsupportedFormat }

// CapabilityError reports a recognized format that this converter cannot
// process.
type CapabilityError struct {
	Format Format
	Op     string
	Reason string
}

func (e *CapabilityError) Error() string {
	msg := fmt.Sprintf("%s %s is not available", e.Format, e.Op)
	if e.Reason != "" {
		msg += ": " + e.Reason
	}
	return msg
}

func (e *CapabilityError) Unwrap() error { return ErrCapabilityUnavailable }
