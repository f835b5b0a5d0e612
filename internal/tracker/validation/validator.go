package validation

import (
	"context"

	"tracker/internal/tracker/models"
)

// Runner executes a rule set against a bundle, reporting into r.
// The only error a Runner returns is ErrFailFast.
type Runner interface {
	Run(ctx context.Context, r *Reporter, bundle *models.Bundle) error
}

// RunnerFunc adapts a function to Runner.
type RunnerFunc func(ctx context.Context, r *Reporter, bundle *models.Bundle) error

func (f RunnerFunc) Run(ctx context.Context, r *Reporter, bundle *models.Bundle) error {
	return f(ctx, r, bundle)
}

// Validator checks one record of type T.
type Validator[T models.Record] interface {
	Validate(r *Reporter, bundle *models.Bundle, rec T)
}

// Func adapts a function to Validator.
type Func[T models.Record] func(r *Reporter, bundle *models.Bundle, rec T)

func (f Func[T]) Validate(r *Reporter, bundle *models.Bundle, rec T) {
	f(r, bundle, rec)
}

type all[T models.Record] []Validator[T]

// All runs every validator, collecting all of their findings.
func All[T models.Record](validators ...Validator[T]) Validator[T] {
	return all[T](validators)
}

func (vs all[T]) Validate(r *Reporter, bundle *models.Bundle, rec T) {
	for _, v := range vs {
		if r.Err() != nil {
			return
		}
		v.Validate(r, bundle, rec)
	}
}

type seq[T models.Record] []Validator[T]

// Seq runs validators in order and stops after the first one that reports an
// error. Later validators may then assume the earlier checks passed.
func Seq[T models.Record](validators ...Validator[T]) Validator[T] {
	return seq[T](validators)
}

func (vs seq[T]) Validate(r *Reporter, bundle *models.Bundle, rec T) {
	for _, v := range vs {
		before := r.ErrorCount()
		v.Validate(r, bundle, rec)
		if r.Err() != nil || r.ErrorCount() > before {
			return
		}
	}
}

// Each runs check for every item extracted from the record.
func Each[T models.Record, S any](items func(T) []S, check func(r *Reporter, bundle *models.Bundle, rec T, item S)) Validator[T] {
	return Func[T](func(r *Reporter, bundle *models.Bundle, rec T) {
		for _, item := range items(rec) {
			if r.Err() != nil {
				return
			}
			check(r, bundle, rec, item)
		}
	})
}

// When runs v only for records matching cond.
func When[T models.Record](cond func(bundle *models.Bundle, rec T) bool, v Validator[T]) Validator[T] {
	return Func[T](func(r *Reporter, bundle *models.Bundle, rec T) {
		if cond(bundle, rec) {
			v.Validate(r, bundle, rec)
		}
	})
}

// Deleting matches records imported with the DELETE strategy.
func Deleting[T models.Record](bundle *models.Bundle, _ T) bool {
	return bundle.ImportStrategy.IsDelete()
}

// NotDeleting matches records imported with any strategy but DELETE.
func NotDeleting[T models.Record](bundle *models.Bundle, _ T) bool {
	return !bundle.ImportStrategy.IsDelete()
}

// BundleValidator runs one validator per record kind, in dependency order.
// A nil validator skips its kind.
type BundleValidator struct {
	Roots         Validator[*models.Root]
	Enrollments   Validator[*models.Enrollment]
	Events        Validator[*models.Event]
	Relationships Validator[*models.Relationship]
}

func (v BundleValidator) Run(_ context.Context, r *Reporter, bundle *models.Bundle) error {
	if err := validateEach(r, bundle, bundle.Roots, v.Roots); err != nil {
		return err
	}
	if err := validateEach(r, bundle, bundle.Enrollments, v.Enrollments); err != nil {
		return err
	}
	if err := validateEach(r, bundle, bundle.Events, v.Events); err != nil {
		return err
	}
	return validateEach(r, bundle, bundle.Relationships, v.Relationships)
}

func validateEach[T models.Record](r *Reporter, bundle *models.Bundle, records []T, v Validator[T]) error {
	if v == nil {
		return nil
	}
	for _, rec := range records {
		v.Validate(r, bundle, rec)
		if err := r.Err(); err != nil {
			return err
		}
	}
	return nil
}

// Chain runs runners in order, stopping at the first error.
type Chain []Runner

func (c Chain) Run(ctx context.Context, r *Reporter, bundle *models.Bundle) error {
	for _, runner := range c {
		if err := runner.Run(ctx, r, bundle); err != nil {
			return err
		}
	}
	return nil
}
