package models

import "time"

// Record is implemented by every bundle entry. Records are only ever read by
// validation; the persistable output holds the same pointers the caller supplied.
type Record interface {
	Identity() Identity
}

// Status is the lifecycle state of an enrollment or event.
type Status string

const (
	StatusActive    Status = "ACTIVE"
	StatusCompleted Status = "COMPLETED"
	StatusCancelled Status = "CANCELLED"
	StatusScheduled Status = "SCHEDULE"
)

// Root is a tracked entity, the top of the record hierarchy.
type Root struct {
	UID               string
	TrackedEntityType string
	OrgUnit           string
}

func (r *Root) Identity() Identity {
	return Identity{Kind: KindRoot, UID: r.UID}
}

// Enrollment places a root into a tracked program.
type Enrollment struct {
	UID        string
	Root       string
	Program    string
	OrgUnit    string
	Status     Status
	EnrolledAt *time.Time
}

func (e *Enrollment) Identity() Identity {
	return Identity{Kind: KindEnrollment, UID: e.UID}
}

// Parent returns the root the enrollment belongs to.
func (e *Enrollment) Parent() Identity {
	return Identity{Kind: KindRoot, UID: e.Root}
}

// DataValue is one captured value on an event.
type DataValue struct {
	DataElement string
	Value       string
}

// Event is a single program stage occurrence within an enrollment.
type Event struct {
	UID          string
	Enrollment   string
	Program      string
	ProgramStage string
	OrgUnit      string
	Status       Status
	OccurredAt   *time.Time
	DataValues   []DataValue
}

func (e *Event) Identity() Identity {
	return Identity{Kind: KindEvent, UID: e.UID}
}

// Parent returns the enrollment the event belongs to.
func (e *Event) Parent() Identity {
	return Identity{Kind: KindEnrollment, UID: e.Enrollment}
}

// DataValue returns the value captured for dataElement, if any.
func (e *Event) DataValue(dataElement string) (string, bool) {
	for _, dv := range e.DataValues {
		if dv.DataElement == dataElement {
			return dv.Value, true
		}
	}
	return "", false
}

// Relationship links two records of any kind.
type Relationship struct {
	UID              string
	RelationshipType string
	From             Endpoint
	To               Endpoint
	Bidirectional    bool
}

func (r *Relationship) Identity() Identity {
	return Identity{Kind: KindRelationship, UID: r.UID}
}
