// Package bioalignerr defines the error kinds of the alignment core (spec
// §7). Fatal kinds abort the current query and propagate to the driver;
// locally-recovered kinds never leave the stage that produced them.
package bioalignerr

import (
	"github.com/pkg/errors"
)

// Kind classifies an error by how the driver must react to it.
type Kind int

const (
	// InvalidInput covers malformed pack files, bridging extraction,
	// out-of-range indices, and invalid query symbols. Fatal.
	InvalidInput Kind = iota
	// ResourceExhaustion covers allocation failure and DP score overflow. Fatal.
	ResourceExhaustion
	// AmbiguitySkipped means an SA interval exceeded the enumeration cap.
	// Locally recovered by dropping the skipped occurrences.
	AmbiguitySkipped
	// EmptyResult means harmonization produced no surviving seeds. Locally
	// recovered by trying the next strip.
	EmptyResult
	// Cancelled means a cooperative cancel was observed. The caller returns
	// the partial result accumulated so far.
	Cancelled
)

func (k Kind) String() string {
	switch k {
	case InvalidInput:
		return "InvalidInput"
	case ResourceExhaustion:
		return "ResourceExhaustion"
	case AmbiguitySkipped:
		return "AmbiguitySkipped"
	case EmptyResult:
		return "EmptyResult"
	case Cancelled:
		return "Cancelled"
	default:
		return "Unknown"
	}
}

// Fatal reports whether errors of this kind must abort the current query.
func (k Kind) Fatal() bool {
	return k == InvalidInput || k == ResourceExhaustion
}

// Error is a typed error carrying a Kind alongside the wrapped cause.
type Error struct {
	Kind Kind
	msg  string
	// cause is the wrapped underlying error, preserved for %+v stack traces
	// the way encoding/fasta and encoding/bamprovider wrap with pkg/errors.
	cause error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return e.msg + ": " + e.cause.Error()
	}
	return e.msg
}

// Cause supports github.com/pkg/errors.Cause(err).
func (e *Error) Cause() error { return e.cause }

// Unwrap supports errors.Is/errors.As from the standard library.
func (e *Error) Unwrap() error { return e.cause }

// New creates an *Error of the given kind with a formatted message.
func New(kind Kind, format string, args ...interface{}) error {
	return &Error{Kind: kind, msg: errors.Errorf(format, args...).Error()}
}

// Wrap attaches a Kind to an existing error, preserving it as the cause.
func Wrap(kind Kind, cause error, msg string) error {
	if cause == nil {
		return nil
	}
	return &Error{Kind: kind, msg: msg, cause: cause}
}

// Is reports whether err is a *Error of the given kind.
func Is(err error, kind Kind) bool {
	e, ok := err.(*Error)
	return ok && e.Kind == kind
}
