package ruleengine

import (
	"context"
	"errors"
	"log/slog"

	"tracker/internal/tracker/models"
	"tracker/internal/tracker/validation"
)

// Runner applies engine effects to a validation Reporter. Records already
// marked invalid are not evaluated. Rules never apply to deletions.
type Runner struct {
	engine Engine
	logger *slog.Logger
}

type Option func(*Runner)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		r.logger = logger
	}
}

func NewRunner(engine Engine, opts ...Option) (*Runner, error) {
	if engine == nil {
		return nil, errors.New("engine is required")
	}
	r := &Runner{engine: engine, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

func (r *Runner) Run(ctx context.Context, rep *validation.Reporter, bundle *models.Bundle) error {
	if bundle.ImportStrategy.IsDelete() {
		return nil
	}
	for _, enrollment := range bundle.Enrollments {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rep.IsInvalid(enrollment) {
			continue
		}
		effects, err := r.engine.EvaluateEnrollment(ctx, bundle, enrollment)
		if err := r.apply(ctx, rep, enrollment, enrollment.Status, nil, effects, err); err != nil {
			return err
		}
	}
	for _, event := range bundle.Events {
		if err := ctx.Err(); err != nil {
			return err
		}
		if rep.IsInvalid(event) {
			continue
		}
		effects, err := r.engine.EvaluateEvent(ctx, bundle, event)
		if err := r.apply(ctx, rep, event, event.Status, event, effects, err); err != nil {
			return err
		}
	}
	return rep.Err()
}

// apply reports effects for rec. event is nil for enrollments.
func (r *Runner) apply(ctx context.Context, rep *validation.Reporter, rec models.Record, status models.Status,
	event *models.Event, effects []Effect, evalErr error) error {
	if evalErr != nil {
		r.logger.WarnContext(ctx, "rule engine evaluation failed",
			"record", rec.Identity().String(),
			"error", evalErr,
		)
		return rep.AddError(rec, validation.E1200, evalErr.Error())
	}

	completed := status == models.StatusCompleted
	for _, effect := range effects {
		switch effect.Kind {
		case ShowError:
			if err := rep.AddError(rec, validation.E1300, effect.RuleUID, effect.Message); err != nil {
				return err
			}
		case ShowWarning:
			rep.AddWarning(rec, validation.E1301, effect.RuleUID, effect.Message)
		case ErrorOnComplete:
			rep.AddErrorIf(completed, rec, validation.E1302, effect.RuleUID, effect.Message)
		case WarningOnComplete:
			rep.AddWarningIf(completed, rec, validation.E1303, effect.RuleUID, effect.Message)
		case SetMandatoryField:
			if event == nil {
				continue
			}
			value, ok := event.DataValue(effect.DataElement)
			rep.AddErrorIf(!ok || value == "", rec, validation.E1305, effect.RuleUID, effect.DataElement)
		default:
			r.logger.DebugContext(ctx, "ignoring unsupported rule effect",
				"kind", string(effect.Kind),
				"rule", effect.RuleUID,
			)
		}
		if err := rep.Err(); err != nil {
			return err
		}
	}
	return nil
}
