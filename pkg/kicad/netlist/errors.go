package netlist

import (
	"fmt"

	"github.com/cockroachdb/errors"
)

// Diagnostic codes for netlist format errors.
const (
	CodeUnreadable      = "NETLIST:001"
	CodeSectionCount    = "NETLIST:002"
	CodeUnbalanced      = "NETLIST:003"
	CodeComponentRecord = "COMPS:001"
	CodeDuplicateRef    = "COMPS:002"
	CodePinWidth        = "LIBPART:001"
	CodeTypeConflict    = "LIBPART:002"
	CodePinNumber       = "LIBPART:003"
	CodeLibPartRecord   = "LIBPART:004"
	CodeNetNode         = "NETS:001"
	CodeNetPinNumber    = "NETS:002"
	CodeNetRecord       = "NETS:003"
)

// ErrIO marks errors caused by an unreadable source document.
// Test with errors.Is(err, ErrIO).
var ErrIO = errors.New("netlist document unreadable")

// FormatError reports a malformed or inconsistent netlist. Every FormatError
// aborts the conversion; there is no partial result.
type FormatError struct {
	Code      string // stable diagnostic code, e.g. "NETS:002"
	Message   string // human readable description
	Reference string // component reference or type name the error belongs to, if known
}

func (e *FormatError) Error() string {
	if e.Reference != "" {
		return fmt.Sprintf("(%s) %s: %s", e.Code, e.Reference, e.Message)
	}
	return fmt.Sprintf("(%s) %s", e.Code, e.Message)
}

// NewFormatError builds a FormatError with a stack trace attached.
func NewFormatError(code, ref, format string, args ...any) error {
	return errors.WithStack(&FormatError{
		Code:      code,
		Reference: ref,
		Message:   fmt.Sprintf(format, args...),
	})
}

// AsFormatError extracts the FormatError from err's chain.
func AsFormatError(err error) (*FormatError, bool) {
	var fe *FormatError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}

// ioError wraps a read failure and marks it with ErrIO.
func ioError(err error, what string) error {
	wrapped := errors.Wrapf(err, "(%s) %s", CodeUnreadable, what)
	return errors.Mark(wrapped, ErrIO)
}
