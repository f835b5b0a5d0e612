package models

import (
	"strings"

	dErrors "tracker/pkg/domain-errors"
)

// ImportStrategy is the intent of an import.
type ImportStrategy string

const (
	StrategyCreate          ImportStrategy = "CREATE"
	StrategyUpdate          ImportStrategy = "UPDATE"
	StrategyCreateAndUpdate ImportStrategy = "CREATE_AND_UPDATE"
	StrategyDelete          ImportStrategy = "DELETE"
)

// ParseImportStrategy validates s case-insensitively. Empty input defaults to
// CREATE_AND_UPDATE.
func ParseImportStrategy(s string) (ImportStrategy, error) {
	if s == "" {
		return StrategyCreateAndUpdate, nil
	}
	st := ImportStrategy(strings.ToUpper(s))
	if !st.IsValid() {
		return "", dErrors.New(dErrors.CodeInvalidInput, "invalid importStrategy: "+s)
	}
	return st, nil
}

func (s ImportStrategy) IsValid() bool {
	switch s {
	case StrategyCreate, StrategyUpdate, StrategyCreateAndUpdate, StrategyDelete:
		return true
	}
	return false
}

func (s ImportStrategy) IsDelete() bool {
	return s == StrategyDelete
}

// Resolve returns the concrete strategy for one record. CREATE_AND_UPDATE becomes
// UPDATE for stored records and CREATE otherwise.
func (s ImportStrategy) Resolve(stored bool) ImportStrategy {
	if s != StrategyCreateAndUpdate {
		return s
	}
	if stored {
		return StrategyUpdate
	}
	return StrategyCreate
}

// ValidationMode controls how rule execution reacts to errors.
type ValidationMode string

const (
	ValidationFull     ValidationMode = "FULL"
	ValidationFailFast ValidationMode = "FAIL_FAST"
	ValidationSkip     ValidationMode = "SKIP"
)

// ParseValidationMode validates s case-insensitively. Empty input defaults to FULL.
func ParseValidationMode(s string) (ValidationMode, error) {
	if s == "" {
		return ValidationFull, nil
	}
	m := ValidationMode(strings.ToUpper(s))
	switch m {
	case ValidationFull, ValidationFailFast, ValidationSkip:
		return m, nil
	}
	return "", dErrors.New(dErrors.CodeInvalidInput, "invalid validationMode: "+s)
}

// User is the actor submitting the bundle.
type User struct {
	UID       string
	Username  string
	Superuser bool
}

func (u *User) IsSuperuser() bool {
	return u != nil && u.Superuser
}

// Existence answers whether a record was persisted by an earlier, committed import.
type Existence interface {
	Exists(id Identity) bool
}

// Bundle is the batch of records submitted together for one import.
type Bundle struct {
	User           *User
	ImportStrategy ImportStrategy
	ValidationMode ValidationMode
	IdSchemes      IdSchemeParams

	Roots         []*Root
	Enrollments   []*Enrollment
	Events        []*Event
	Relationships []*Relationship

	// Existing is the storage snapshot loaded before validation. Nil means nothing
	// in the bundle is stored yet.
	Existing Existence

	index IdentitySet
}

// Exists is nil-safe access to the storage snapshot.
func (b *Bundle) Exists(id Identity) bool {
	if b.Existing == nil {
		return false
	}
	return b.Existing.Exists(id)
}

// Strategy resolves the import strategy for one record against storage.
func (b *Bundle) Strategy(id Identity) ImportStrategy {
	return b.ImportStrategy.Resolve(b.Exists(id))
}

// Contains reports whether a record with id is part of this bundle. The lookup
// index is built on first use; record lists must not change afterwards.
func (b *Bundle) Contains(id Identity) bool {
	if b.index == nil {
		b.index = make(IdentitySet, b.Size())
		for _, kind := range TopDownKinds {
			for _, r := range b.Records(kind) {
				b.index.Add(r.Identity())
			}
		}
	}
	return b.index.Contains(id)
}

// Size is the total number of records across all kinds.
func (b *Bundle) Size() int {
	return len(b.Roots) + len(b.Enrollments) + len(b.Events) + len(b.Relationships)
}

// Records returns the bundle entries of kind as Records, in input order.
func (b *Bundle) Records(kind RecordKind) []Record {
	switch kind {
	case KindRoot:
		return toRecords(b.Roots)
	case KindEnrollment:
		return toRecords(b.Enrollments)
	case KindEvent:
		return toRecords(b.Events)
	case KindRelationship:
		return toRecords(b.Relationships)
	}
	return nil
}

func toRecords[T Record](in []T) []Record {
	out := make([]Record, len(in))
	for i, r := range in {
		out[i] = r
	}
	return out
}
