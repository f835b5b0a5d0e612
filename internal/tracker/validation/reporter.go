package validation

import (
	"errors"
	"reflect"

	"golang.org/x/text/language"

	"tracker/internal/tracker/models"
)

// ErrFailFast is returned once a fail-fast Reporter has recorded its first error.
// Runners propagate it to stop executing rules; Service treats it as a normal stop.
var ErrFailFast = errors.New("validation stopped after first error")

// Reporter collects the errors and warnings of one validation pass and tracks
// which records are invalid. A Reporter is used for exactly one bundle.
//
// In fail-fast mode the first error is recorded, the Reporter stops, and every
// later Add call is ignored and returns ErrFailFast.
type Reporter struct {
	idSchemes models.IdSchemeParams
	formatter MessageFormatter
	failFast  bool
	stopped   bool

	errors   issueSet
	warnings issueSet
	invalid  models.IdentitySet
}

type ReporterOption func(*Reporter)

// WithFormatter replaces the default English catalog formatter.
func WithFormatter(f MessageFormatter) ReporterOption {
	return func(r *Reporter) {
		if f != nil {
			r.formatter = f
		}
	}
}

// WithReporterLocale selects the catalog language for messages.
func WithReporterLocale(tag language.Tag) ReporterOption {
	return func(r *Reporter) {
		r.formatter = NewCatalogFormatter(tag, r.idSchemes)
	}
}

// NewReporter creates a Reporter for one validation pass.
func NewReporter(idSchemes models.IdSchemeParams, failFast bool, opts ...ReporterOption) *Reporter {
	r := &Reporter{
		idSchemes: idSchemes,
		failFast:  failFast,
		invalid:   make(models.IdentitySet),
	}
	r.formatter = NewCatalogFormatter(defaultLocale, idSchemes)
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// AddError records an error against rec and marks it invalid.
// The returned error is ErrFailFast when rule execution must stop, nil otherwise.
func (r *Reporter) AddError(rec models.Record, code ErrorCode, args ...any) error {
	if r.stopped {
		return ErrFailFast
	}
	id := rec.Identity()
	r.errors.add(r.issue(id, code, args))
	r.invalid.Add(id)
	if r.failFast {
		r.stopped = true
		return ErrFailFast
	}
	return nil
}

// AddErrorIf records an error when cond holds and returns cond. A stopped
// Reporter still returns cond but records nothing.
func (r *Reporter) AddErrorIf(cond bool, rec models.Record, code ErrorCode, args ...any) bool {
	if cond {
		_ = r.AddError(rec, code, args...)
	}
	return cond
}

// AddErrorIfNil records an error when value is nil, including typed nil pointers,
// maps and slices.
func (r *Reporter) AddErrorIfNil(value any, rec models.Record, code ErrorCode, args ...any) bool {
	return r.AddErrorIf(isNil(value), rec, code, args...)
}

// AddErrorIfEmpty records an error when value is the empty string.
func (r *Reporter) AddErrorIfEmpty(value string, rec models.Record, code ErrorCode, args ...any) bool {
	return r.AddErrorIf(value == "", rec, code, args...)
}

// AddWarning records a warning. Warnings never mark a record invalid or stop execution.
func (r *Reporter) AddWarning(rec models.Record, code ErrorCode, args ...any) {
	if r.stopped {
		return
	}
	r.warnings.add(r.issue(rec.Identity(), code, args))
}

// AddWarningIf records a warning when cond holds and returns cond.
func (r *Reporter) AddWarningIf(cond bool, rec models.Record, code ErrorCode, args ...any) bool {
	if cond {
		r.AddWarning(rec, code, args...)
	}
	return cond
}

func (r *Reporter) issue(id models.Identity, code ErrorCode, args []any) Issue {
	return newIssue(r.formatter, r.idSchemes, id, code, args)
}

func newIssue(f MessageFormatter, idSchemes models.IdSchemeParams, id models.Identity, code ErrorCode, args []any) Issue {
	return Issue{
		Code:    code,
		Kind:    id.Kind,
		UID:     id.UID,
		Message: f.Format(code, args...),
		Args:    RenderArgs(idSchemes, args...),
	}
}

// Err returns ErrFailFast once the Reporter has stopped, nil otherwise.
func (r *Reporter) Err() error {
	if r.stopped {
		return ErrFailFast
	}
	return nil
}

func (r *Reporter) IsFailFast() bool { return r.failFast }
func (r *Reporter) HasErrors() bool { return r.errors.len() > 0 }
func (r *Reporter) HasWarnings() bool { return r.warnings.len() > 0 }
func (r *Reporter) ErrorCount() int { return r.errors.len() }
func (r *Reporter) Errors() []Issue { return append([]Issue(nil), r.errors.items...) }
func (r *Reporter) Warnings() []Issue { return append([]Issue(nil), r.warnings.items...) }

// IsInvalid reports whether at least one error was recorded against rec.
func (r *Reporter) IsInvalid(rec models.Record) bool {
	return r.invalid.Contains(rec.Identity())
}

// InvalidIdentities returns a copy of the invalid records seen so far.
func (r *Reporter) InvalidIdentities() models.IdentitySet {
	return r.invalid.Clone()
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
