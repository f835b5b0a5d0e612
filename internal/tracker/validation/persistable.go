package validation

import (
	"tracker/internal/tracker/models"
)

// PersistablesResult is the output of the persistability filter: the records safe
// to write under the import strategy, plus the errors raised purely because a
// required parent is not persistable.
type PersistablesResult struct {
	Roots         []*models.Root
	Enrollments   []*models.Enrollment
	Events        []*models.Event
	Relationships []*models.Relationship
	Errors        []Issue
}

// FilterPersistable partitions the bundle into persistable records and dependency
// rejections.
//
// Create and update walk Root, Enrollment, Event, Relationship and keep a valid
// record only when each parent is either kept earlier in this call or already
// stored. Delete walks the reverse order and keeps every valid record; removing a
// child never depends on its parent. Records listed in invalid are never kept and
// never receive a dependency error, their own error already explains the omission.
func FilterPersistable(bundle *models.Bundle, invalid models.IdentitySet, formatter MessageFormatter) PersistablesResult {
	f := &persistablesFilter{
		bundle:    bundle,
		invalid:   invalid,
		formatter: formatter,
		marked:    make(models.IdentitySet, bundle.Size()),
		rejected:  make(map[dependency]struct{}),
	}
	if formatter == nil {
		f.formatter = NewCatalogFormatter(defaultLocale, bundle.IdSchemes)
	}

	if bundle.ImportStrategy.IsDelete() {
		f.bottomUp()
	} else {
		f.topDown()
	}
	f.result.Errors = f.errors.items
	return f.result
}

// dependency is a (record, rejecting parent) pair; at most one E5000 per pair.
type dependency struct {
	child  models.Identity
	parent models.Identity
}

type persistablesFilter struct {
	bundle    *models.Bundle
	invalid   models.IdentitySet
	formatter MessageFormatter

	marked   models.IdentitySet
	rejected map[dependency]struct{}
	errors   issueSet
	result   PersistablesResult
}

func (f *persistablesFilter) topDown() {
	for _, kind := range models.TopDownKinds {
		for _, rec := range f.bundle.Records(kind) {
			if f.invalid.Contains(rec.Identity()) {
				continue
			}
			parents, ok := parentsOf(rec)
			if !ok {
				if rel, isRel := rec.(*models.Relationship); isRel {
					f.rejectUnresolvable(rel)
				}
				continue
			}
			failing := f.unsatisfied(parents)
			if len(failing) == 0 {
				f.persist(rec)
				continue
			}
			for _, parent := range failing {
				f.rejectDependency(rec.Identity(), parent)
			}
		}
	}
}

func (f *persistablesFilter) bottomUp() {
	for _, kind := range models.BottomUpKinds {
		for _, rec := range f.bundle.Records(kind) {
			if f.invalid.Contains(rec.Identity()) {
				continue
			}
			f.persist(rec)
		}
	}
}

// unsatisfied returns the parents that are neither kept in this call nor stored.
func (f *persistablesFilter) unsatisfied(parents []models.Identity) []models.Identity {
	var failing []models.Identity
	for _, p := range parents {
		if f.marked.Contains(p) || f.bundle.Exists(p) {
			continue
		}
		failing = append(failing, p)
	}
	return failing
}

func (f *persistablesFilter) persist(rec models.Record) {
	f.marked.Add(rec.Identity())
	switch r := rec.(type) {
	case *models.Root:
		f.result.Roots = append(f.result.Roots, r)
	case *models.Enrollment:
		f.result.Enrollments = append(f.result.Enrollments, r)
	case *models.Event:
		f.result.Events = append(f.result.Events, r)
	case *models.Relationship:
		f.result.Relationships = append(f.result.Relationships, r)
	}
}

func (f *persistablesFilter) rejectDependency(child, parent models.Identity) {
	dep := dependency{child: child, parent: parent}
	if _, seen := f.rejected[dep]; seen {
		return
	}
	f.rejected[dep] = struct{}{}
	f.errors.add(newIssue(f.formatter, f.bundle.IdSchemes, child, E5000,
		[]any{child.Kind, child.UID, parent.Kind, parent.UID}))
}

// rejectUnresolvable handles a relationship whose endpoint escaped boundary
// validation. It is excluded with an E4001 rather than treated as parentless.
func (f *persistablesFilter) rejectUnresolvable(rel *models.Relationship) {
	for _, side := range []struct {
		name string
		ep   models.Endpoint
	}{{"from", rel.From}, {"to", rel.To}} {
		if _, ok := side.ep.Identity(); !ok {
			f.errors.add(newIssue(f.formatter, f.bundle.IdSchemes, rel.Identity(), E4001,
				[]any{side.name, rel.UID}))
		}
	}
}

// parentsOf returns the identities rec depends on. ok is false only for a
// relationship with an unresolvable endpoint.
func parentsOf(rec models.Record) (parents []models.Identity, ok bool) {
	switch r := rec.(type) {
	case *models.Root:
		return nil, true
	case *models.Enrollment:
		return []models.Identity{r.Parent()}, true
	case *models.Event:
		return []models.Identity{r.Parent()}, true
	case *models.Relationship:
		from, fromOK := r.From.Identity()
		to, toOK := r.To.Identity()
		if !fromOK || !toOK {
			return nil, false
		}
		return []models.Identity{from, to}, true
	}
	return nil, false
}
