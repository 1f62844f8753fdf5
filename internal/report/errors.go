package report

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformedReport marks a numeric summary that does not decompose into the
// fields its layout requires. It is fatal.
var ErrMalformedReport = errors.New("malformed report")

// ErrModelSectionNotFound marks a capture in which the model listing could not
// be located. It is recovered by treating the section as empty.
var ErrModelSectionNotFound = errors.New("model section not found")

// MalformedReportError carries the offending line for diagnosis.
type MalformedReportError struct {
	LineNo int // 1-based, relative to the parsed section
	Line   string
	Err    error
}

func (e *MalformedReportError) Error() string {
	return fmt.Sprintf("line %d: %v: %q", e.LineNo, e.Err, strings.TrimSpace(e.Line))
}

func (e *MalformedReportError) Unwrap() error {
	return e.Err
}

func malformedf(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrMalformedReport}, args...)...)
}
