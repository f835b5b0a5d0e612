package audit

import (
	"context"
	"time"
)

// EventCategory classifies audit events by their primary purpose.
// Sinks use it to pick a topic and retention.
type EventCategory string

const (
	// CategorySecurity covers events relevant to security monitoring, such as
	// a superuser bypassing import validation.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine import activity. These can be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	// ActorID is the user that submitted the bundle.
	ActorID string
	// Subject is a short description of the affected import (strategy, mode).
	Subject   string
	Action    string
	Decision  string
	Reason    string
	RequestID string
	// Counts carries per-outcome totals such as "errors" or "persistable".
	Counts map[string]int
}

type AuditEvent string

const (
	EventValidationSkipped AuditEvent = "validation_skipped"
	EventImportValidated   AuditEvent = "import_validated"
	EventImportRejected    AuditEvent = "import_rejected"
	EventFailFastAborted   AuditEvent = "fail_fast_aborted"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventValidationSkipped: CategorySecurity,

	EventImportValidated: CategoryOperations,
	EventImportRejected:  CategoryOperations,
	EventFailFastAborted: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists or forwards audit events.
type Store interface {
	Append(ctx context.Context, event Event) error
}
