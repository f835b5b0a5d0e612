package validation

import (
	"slices"
	"strings"

	"tracker/internal/tracker/models"
)

// Issue is one error or warning attributed to a single record.
type Issue struct {
	Code    ErrorCode         `json:"errorCode"`
	Kind    models.RecordKind `json:"trackerType"`
	UID     string            `json:"uid"`
	Message string            `json:"message"`
	Args    []string          `json:"args,omitempty"`
}

// Identity returns the record the issue is attributed to.
func (i Issue) Identity() models.Identity {
	return models.NewIdentity(i.Kind, i.UID)
}

type issueKey struct {
	code ErrorCode
	id   models.Identity
	args string
}

// key ignores the message text so locales without a translation never merge
// findings that differ only in their arguments.
func (i Issue) key() issueKey {
	return issueKey{code: i.Code, id: i.Identity(), args: strings.Join(i.Args, "\x1f")}
}

// issueSet keeps the first occurrence of each (code, record, args) in insertion order.
type issueSet struct {
	items []Issue
	seen  map[issueKey]struct{}
}

func (s *issueSet) add(issue Issue) bool {
	if s.seen == nil {
		s.seen = make(map[issueKey]struct{})
	}
	k := issue.key()
	if _, dup := s.seen[k]; dup {
		return false
	}
	s.seen[k] = struct{}{}
	s.items = append(s.items, issue)
	return true
}

func (s *issueSet) len() int {
	return len(s.items)
}

// Result is the outcome of one validation call: what may be persisted and why
// anything else was rejected. A Result is never modified after construction.
type Result struct {
	roots         []*models.Root
	enrollments   []*models.Enrollment
	events        []*models.Event
	relationships []*models.Relationship
	errors        []Issue
	warnings      []Issue
}

// EmptyResult is the result of a skipped validation: nothing persistable, nothing reported.
func EmptyResult() *Result {
	return &Result{}
}

func newResult(p PersistablesResult, errors, warnings []Issue) *Result {
	return &Result{
		roots:         p.Roots,
		enrollments:   p.Enrollments,
		events:        p.Events,
		relationships: p.Relationships,
		errors:        errors,
		warnings:      warnings,
	}
}

func (r *Result) Roots() []*models.Root { return slices.Clone(r.roots) }
func (r *Result) Enrollments() []*models.Enrollment { return slices.Clone(r.enrollments) }
func (r *Result) Events() []*models.Event { return slices.Clone(r.events) }
func (r *Result) Relationships() []*models.Relationship { return slices.Clone(r.relationships) }

// Errors returns the deduplicated errors in the order they were reported.
func (r *Result) Errors() []Issue { return slices.Clone(r.errors) }

// Warnings returns the deduplicated warnings in the order they were reported.
func (r *Result) Warnings() []Issue { return slices.Clone(r.warnings) }

func (r *Result) HasErrors() bool { return len(r.errors) > 0 }
func (r *Result) HasWarnings() bool { return len(r.warnings) > 0 }

// IsEmpty reports whether nothing is persistable and nothing was reported.
func (r *Result) IsEmpty() bool {
	return r.PersistableCount() == 0 && !r.HasErrors() && !r.HasWarnings()
}

// PersistableCount is the total number of persistable records across all kinds.
func (r *Result) PersistableCount() int {
	return len(r.roots) + len(r.enrollments) + len(r.events) + len(r.relationships)
}

// Persistable returns the identities of persistable records of kind, in output order.
func (r *Result) Persistable(kind models.RecordKind) []models.Identity {
	var ids []models.Identity
	switch kind {
	case models.KindRoot:
		ids = identities(r.roots)
	case models.KindEnrollment:
		ids = identities(r.enrollments)
	case models.KindEvent:
		ids = identities(r.events)
	case models.KindRelationship:
		ids = identities(r.relationships)
	}
	return ids
}

func identities[T models.Record](records []T) []models.Identity {
	ids := make([]models.Identity, len(records))
	for i, r := range records {
		ids[i] = r.Identity()
	}
	return ids
}
