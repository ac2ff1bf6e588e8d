package skema

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/skema/nodepath"
)

// Error is a single instance validation failure.
type Error struct {
	// Keyword that failed, e.g. "type" or "additionalProperties".
	Keyword string
	// EvaluationPath is the schema-side path including traversed references,
	// ending with the keyword.
	EvaluationPath *nodepath.Path
	// SchemaLocation is the canonical location of the failing keyword.
	SchemaLocation SchemaLocation
	// SchemaNode is the raw keyword value.
	SchemaNode any
	// InstanceLocation points at the offending value.
	InstanceLocation *nodepath.Path
	// InstanceNode is the offending value.
	InstanceNode any
	Message      string
	// MessageKey selects the message template.
	MessageKey string
	// Property names the offending member for object keywords
	// (required, additionalProperties, ...).
	Property *string
	// Arguments fill the message template after the instance location.
	Arguments []any

	node *Evaluation
}

func (e *Error) Error() string { return e.Message }

// Errors is a collection of validation errors that implements error.
type Errors []*Error

// Error summarizes the first few errors.
func (es Errors) Error() string {
	if len(es) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(es)
	lim := n
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		e := es[i]
		// e.g. required at /a
		fmt.Fprintf(b, "%s at %s", e.Keyword, e.InstanceLocation.Pointer())
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Err returns es as an error, or nil when empty.
func (es Errors) Err() error {
	if len(es) == 0 {
		return nil
	}
	return es
}

// Keywords lists the failing keywords in order.
func (es Errors) Keywords() []string {
	out := make([]string, len(es))
	for i, e := range es {
		out[i] = e.Keyword
	}
	return out
}

// AsErrors extracts Errors from an error using errors.As internally.
func AsErrors(err error) (Errors, bool) {
	if err == nil {
		return nil, false
	}
	var es Errors
	if errors.As(err, &es) {
		return es, true
	}
	var ff *FailFastError
	if errors.As(err, &ff) {
		return Errors{ff.Err}, true
	}
	return nil, false
}

// Sentinels for errors.Is.
var (
	ErrResourceNotFound = errors.New("skema: resource not found")
	ErrFailFast         = errors.New("skema: validation stopped at first error")
	// ErrRefCycle reports references that re-apply a schema to the same
	// instance location without descending.
	ErrRefCycle         = errors.New("skema: reference cycle without progress")
	// ErrResourceTooLarge reports a fetched document over the loader limit.
	ErrResourceTooLarge = errors.New("skema: resource exceeds size limit")
)

// InvalidSchemaError reports a malformed schema value or schema IRI.
type InvalidSchemaError struct {
	Location SchemaLocation
	Reason   string
	Err      error
}

func (e *InvalidSchemaError) Error() string {
	msg := fmt.Sprintf("skema: invalid schema at %s: %s", e.Location, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *InvalidSchemaError) Unwrap() error { return e.Err }

// RefResolutionError reports a $ref, $dynamicRef or $recursiveRef whose
// target cannot be found.
type RefResolutionError struct {
	Keyword string
	Ref     string
	From    SchemaLocation
	Err     error
}

func (e *RefResolutionError) Error() string {
	msg := fmt.Sprintf("skema: cannot resolve %s %q from %s", e.Keyword, e.Ref, e.From)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *RefResolutionError) Unwrap() error { return e.Err }

// UnknownKeywordError is returned for unknown keywords under UnknownFail.
type UnknownKeywordError struct {
	Keyword  string
	Location SchemaLocation
}

func (e *UnknownKeywordError) Error() string {
	return fmt.Sprintf("skema: unknown keyword %q at %s", e.Keyword, e.Location)
}

// MissingDialectError is returned when a schema has no $schema and no
// default dialect is configured.
type MissingDialectError struct {
	Location SchemaLocation
}

func (e *MissingDialectError) Error() string {
	return fmt.Sprintf("skema: no $schema at %s and no default dialect configured", e.Location)
}

// VocabularyError reports a dialect requiring a vocabulary this package does
// not implement, or an unresolvable dialect.
type VocabularyError struct {
	Dialect    string
	Vocabulary string
	Err        error
}

func (e *VocabularyError) Error() string {
	if e.Vocabulary == "" {
		msg := fmt.Sprintf("skema: cannot build dialect %s", e.Dialect)
		if e.Err != nil {
			msg += ": " + e.Err.Error()
		}
		return msg
	}
	return fmt.Sprintf("skema: dialect %s requires unknown vocabulary %s", e.Dialect, e.Vocabulary)
}

func (e *VocabularyError) Unwrap() error { return e.Err }

// ResourceNotFoundError reports that no loader produced a document.
type ResourceNotFoundError struct {
	IRI string
	Err error
}

func (e *ResourceNotFoundError) Error() string {
	msg := "skema: resource not found: " + e.IRI
	if e.Err != nil && !errors.Is(e.Err, ErrResourceNotFound) {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ResourceNotFoundError) Unwrap() []error { return []error{ErrResourceNotFound, e.Err} }

// FailFastError carries the first error of a fail-fast run.
type FailFastError struct {
	Err *Error
}

func (e *FailFastError) Error() string { return "skema: " + e.Err.Message }

func (e *FailFastError) Unwrap() []error { return []error{ErrFailFast, e.Err} }
