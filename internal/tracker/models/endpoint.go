package models

import (
	"fmt"

	dErrors "tracker/pkg/domain-errors"
)

// Endpoint is one side of a relationship. It references exactly one record of
// kind Root, Enrollment or Event; the zero value references nothing and is
// reported as unresolvable.
type Endpoint struct {
	kind RecordKind
	uid  string
}

func RootEndpoint(uid string) Endpoint {
	return Endpoint{kind: KindRoot, uid: uid}
}

func EnrollmentEndpoint(uid string) Endpoint {
	return Endpoint{kind: KindEnrollment, uid: uid}
}

func EventEndpoint(uid string) Endpoint {
	return Endpoint{kind: KindEvent, uid: uid}
}

// ParseEndpoint converts the wire shape (three optional references) into an
// Endpoint. Exactly one of the references must be non-empty.
func ParseEndpoint(root, enrollment, event string) (Endpoint, error) {
	var set []Endpoint
	if root != "" {
		set = append(set, RootEndpoint(root))
	}
	if enrollment != "" {
		set = append(set, EnrollmentEndpoint(enrollment))
	}
	if event != "" {
		set = append(set, EventEndpoint(event))
	}
	switch len(set) {
	case 0:
		return Endpoint{}, dErrors.New(dErrors.CodeInvalidInput, "relationship item must reference a trackedEntity, enrollment or event")
	case 1:
		return set[0], nil
	default:
		return Endpoint{}, dErrors.New(dErrors.CodeInvalidInput,
			fmt.Sprintf("relationship item must reference only one record, got %d", len(set)))
	}
}

// Identity resolves the endpoint. ok is false for the zero Endpoint.
func (e Endpoint) Identity() (Identity, bool) {
	switch e.kind {
	case KindRoot, KindEnrollment, KindEvent:
		if e.uid == "" {
			return Identity{}, false
		}
		return Identity{Kind: e.kind, UID: e.uid}, true
	}
	return Identity{}, false
}

// Fields returns the wire shape, with only the referenced slot populated.
func (e Endpoint) Fields() (root, enrollment, event string) {
	switch e.kind {
	case KindRoot:
		root = e.uid
	case KindEnrollment:
		enrollment = e.uid
	case KindEvent:
		event = e.uid
	}
	return root, enrollment, event
}

func (e Endpoint) String() string {
	if id, ok := e.Identity(); ok {
		return id.String()
	}
	return "unresolved endpoint"
}
