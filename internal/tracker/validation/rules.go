package validation

import (
	"context"

	"tracker/internal/tracker/models"
)

// NewDefaultRunner returns the built-in rule set: uid shape, payload duplicates,
// existence against storage for the resolved strategy, required properties and
// parent references. Rules carrying per-call state are rebuilt on every Run.
func NewDefaultRunner() Runner {
	return RunnerFunc(func(ctx context.Context, r *Reporter, bundle *models.Bundle) error {
		return defaultRules().Run(ctx, r, bundle)
	})
}

func defaultRules() BundleValidator {
	seen := make(models.IdentitySet)
	return BundleValidator{
		Roots: Seq[*models.Root](
			validUID[*models.Root](),
			unique[*models.Root](seen),
			existence[*models.Root](E1002, E1063),
			When(NotDeleting[*models.Root], Func[*models.Root](requiredRootProperties)),
		),
		Enrollments: Seq[*models.Enrollment](
			validUID[*models.Enrollment](),
			unique[*models.Enrollment](seen),
			existence[*models.Enrollment](E1080, E1081),
			When(NotDeleting[*models.Enrollment], Seq[*models.Enrollment](
				Func[*models.Enrollment](requiredEnrollmentProperties),
				Func[*models.Enrollment](enrollmentRootExists),
			)),
		),
		Events: Seq[*models.Event](
			validUID[*models.Event](),
			unique[*models.Event](seen),
			existence[*models.Event](E1030, E1032),
			When(NotDeleting[*models.Event], Seq[*models.Event](
				Func[*models.Event](requiredEventProperties),
				Func[*models.Event](eventEnrollmentExists),
				Func[*models.Event](uniqueDataElements),
			)),
		),
		Relationships: Seq[*models.Relationship](
			validUID[*models.Relationship](),
			unique[*models.Relationship](seen),
			existence[*models.Relationship](E4015, E4016),
			When(NotDeleting[*models.Relationship], Seq[*models.Relationship](
				Func[*models.Relationship](requiredRelationshipProperties),
				Each(endpoints, resolvableEndpoint),
				Func[*models.Relationship](notSelfLinked),
				Each(endpoints, endpointExists),
			)),
		),
	}
}

func validUID[T models.Record]() Validator[T] {
	return Func[T](func(r *Reporter, _ *models.Bundle, rec T) {
		id := rec.Identity()
		r.AddErrorIf(!models.IsValidUID(id.UID), rec, E1048, id.Kind, id.UID)
	})
}

// unique flags the second and later occurrences of an identity in the payload.
func unique[T models.Record](seen models.IdentitySet) Validator[T] {
	return Func[T](func(r *Reporter, _ *models.Bundle, rec T) {
		id := rec.Identity()
		if seen.Contains(id) {
			_ = r.AddError(rec, E1007, id.Kind, id.UID)
			return
		}
		seen.Add(id)
	})
}

// existence checks storage against the strategy resolved for the record:
// creating requires absence, updating and deleting require presence.
func existence[T models.Record](alreadyExists, notFound ErrorCode) Validator[T] {
	return Func[T](func(r *Reporter, bundle *models.Bundle, rec T) {
		id := rec.Identity()
		stored := bundle.Exists(id)
		if bundle.Strategy(id) == models.StrategyCreate {
			r.AddErrorIf(stored, rec, alreadyExists, id.UID)
			return
		}
		r.AddErrorIf(!stored, rec, notFound, id.UID)
	})
}

func requiredRootProperties(r *Reporter, _ *models.Bundle, root *models.Root) {
	r.AddErrorIfEmpty(root.TrackedEntityType, root, E1121, "trackedEntityType")
	r.AddErrorIfEmpty(root.OrgUnit, root, E1121, "orgUnit")
}

func requiredEnrollmentProperties(r *Reporter, _ *models.Bundle, e *models.Enrollment) {
	r.AddErrorIfEmpty(e.Root, e, E1122, "trackedEntity")
	r.AddErrorIfEmpty(e.Program, e, E1122, "program")
	r.AddErrorIfEmpty(e.OrgUnit, e, E1122, "orgUnit")
}

func requiredEventProperties(r *Reporter, _ *models.Bundle, e *models.Event) {
	r.AddErrorIfEmpty(e.Enrollment, e, E1123, "enrollment")
	r.AddErrorIfEmpty(e.ProgramStage, e, E1123, "programStage")
	r.AddErrorIfEmpty(e.OrgUnit, e, E1123, "orgUnit")
}

func requiredRelationshipProperties(r *Reporter, _ *models.Bundle, rel *models.Relationship) {
	r.AddErrorIfEmpty(rel.RelationshipType, rel, E4002, "relationshipType")
}

// available reports whether id is part of the payload or already stored.
func available(bundle *models.Bundle, id models.Identity) bool {
	return bundle.Contains(id) || bundle.Exists(id)
}

func enrollmentRootExists(r *Reporter, bundle *models.Bundle, e *models.Enrollment) {
	r.AddErrorIf(!available(bundle, e.Parent()), e, E1068, e.Root)
}

func eventEnrollmentExists(r *Reporter, bundle *models.Bundle, e *models.Event) {
	r.AddErrorIf(!available(bundle, e.Parent()), e, E1033, e.UID, e.Enrollment)
}

func uniqueDataElements(r *Reporter, _ *models.Bundle, e *models.Event) {
	seen := make(map[string]struct{}, len(e.DataValues))
	for _, dv := range e.DataValues {
		if _, dup := seen[dv.DataElement]; dup {
			if err := r.AddError(e, E1304, dv.DataElement, e.UID); err != nil {
				return
			}
			continue
		}
		seen[dv.DataElement] = struct{}{}
	}
}

type endpointSide struct {
	name     string
	endpoint models.Endpoint
}

func endpoints(rel *models.Relationship) []endpointSide {
	return []endpointSide{{"from", rel.From}, {"to", rel.To}}
}

func resolvableEndpoint(r *Reporter, _ *models.Bundle, rel *models.Relationship, side endpointSide) {
	_, ok := side.endpoint.Identity()
	r.AddErrorIf(!ok, rel, E4001, side.name, rel.UID)
}

func notSelfLinked(r *Reporter, _ *models.Bundle, rel *models.Relationship) {
	from, _ := rel.From.Identity()
	to, _ := rel.To.Identity()
	r.AddErrorIf(from == to, rel, E4000, rel.UID)
}

func endpointExists(r *Reporter, bundle *models.Bundle, rel *models.Relationship, side endpointSide) {
	id, ok := side.endpoint.Identity()
	if !ok {
		return
	}
	r.AddErrorIf(!available(bundle, id), rel, E4012, id.Kind, id.UID)
}
