package models

import (
	"fmt"
	"regexp"
	"slices"
)

// RecordKind is the closed set of record types a bundle can carry.
// Declaration order matches structural depth; Relationship is cross-cutting.
type RecordKind int

const (
	KindRoot RecordKind = iota + 1
	KindEnrollment
	KindEvent
	KindRelationship
)

// TopDownKinds is the traversal order used when creating or updating.
var TopDownKinds = []RecordKind{KindRoot, KindEnrollment, KindEvent, KindRelationship}

// BottomUpKinds is the traversal order used when deleting.
var BottomUpKinds = []RecordKind{KindRelationship, KindEvent, KindEnrollment, KindRoot}

// IsValid checks if the kind is one of the four supported values.
func (k RecordKind) IsValid() bool {
	switch k {
	case KindRoot, KindEnrollment, KindEvent, KindRelationship:
		return true
	}
	return false
}

// String returns the display name used in messages and reports.
func (k RecordKind) String() string {
	switch k {
	case KindRoot:
		return "TrackedEntity"
	case KindEnrollment:
		return "Enrollment"
	case KindEvent:
		return "Event"
	case KindRelationship:
		return "Relationship"
	}
	return fmt.Sprintf("RecordKind(%d)", int(k))
}

// MarshalText renders the kind as its display name so reports stay readable.
func (k RecordKind) MarshalText() ([]byte, error) {
	if !k.IsValid() {
		return nil, fmt.Errorf("unknown record kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// Identity names one record without carrying its content. Used as a map key.
type Identity struct {
	Kind RecordKind
	UID  string
}

// NewIdentity builds an identity for the given kind and uid.
func NewIdentity(kind RecordKind, uid string) Identity {
	return Identity{Kind: kind, UID: uid}
}

func (i Identity) String() string {
	return i.Kind.String() + " " + i.UID
}

var uidPattern = regexp.MustCompile(`^[a-zA-Z][a-zA-Z0-9]{10}$`)

// IsValidUID reports whether uid has the 11 character form issued by the tracker:
// a leading letter followed by ten alphanumerics.
func IsValidUID(uid string) bool {
	return uidPattern.MatchString(uid)
}

// IdentitySet is an insertion-agnostic set of identities.
type IdentitySet map[Identity]struct{}

// NewIdentitySet returns a set containing ids.
func NewIdentitySet(ids ...Identity) IdentitySet {
	s := make(IdentitySet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

func (s IdentitySet) Add(id Identity) {
	s[id] = struct{}{}
}

// Contains is safe on a nil set.
func (s IdentitySet) Contains(id Identity) bool {
	_, ok := s[id]
	return ok
}

// UIDs returns the uids of the given kind in sorted order.
func (s IdentitySet) UIDs(kind RecordKind) []string {
	var uids []string
	for id := range s {
		if id.Kind == kind {
			uids = append(uids, id.UID)
		}
	}
	slices.Sort(uids)
	return uids
}

// Clone returns an independent copy.
func (s IdentitySet) Clone() IdentitySet {
	c := make(IdentitySet, len(s))
	for id := range s {
		c[id] = struct{}{}
	}
	return c
}

// Identity lets an identity stand in for its record wherever only the identity is read.
func (i Identity) Identity() Identity {
	return i
}
