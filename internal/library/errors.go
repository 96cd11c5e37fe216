package library

import (
	"errors"

	"github.com/HendryAvila/storybook/internal/convert"
	"github.com/HendryAvila/storybook/internal/projects"
)

// Kind classifies an error for front ends that report a status code.
type Kind string

const (
	KindInternal    Kind = "internal"
	KindNotFound    Kind = "not_found"
	KindInvalid     Kind = "invalid"
	KindUnsupported Kind = "unsupported_format"
	KindUnavailable Kind = "capability_unavailable"
)

// Classify maps an error returned by the library to its Kind. Errors that
// match no sentinel are internal.
func Classify(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, projects.ErrNotFound), errors.Is(err, ErrNoEntry), errors.Is(err, projects.ErrSourceNotFound):
		return KindNotFound
	case errors.Is(err, ErrInvalid), errors.Is(err, projects.ErrAmbiguous):
		return KindInvalid
	case errors.Is(err, convert.ErrUnsupportedFormat):
		return KindUnsupported
	case errors.Is(err, convert.ErrCapabilityUnavailable):
		return KindUnavailable
	default:
		return KindInternal
	}
}
