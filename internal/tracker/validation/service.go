package validation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/text/language"

	"tracker/internal/tracker/metrics"
	"tracker/internal/tracker/models"
	"tracker/pkg/platform/audit"
	"tracker/pkg/requestcontext"
)

const (
	passDefault    = "default"
	passRuleEngine = "rule_engine"
)

// AuditPublisher emits audit events for import outcomes.
type AuditPublisher interface {
	Emit(ctx context.Context, base audit.Event) error
}

// Service validates bundles and computes which records can be persisted.
// It holds no per-call state; concurrent calls are safe when the configured
// runners are.
type Service struct {
	runner         Runner
	ruleEngine     Runner
	logger         *slog.Logger
	metrics        *metrics.Metrics
	tracer         trace.Tracer
	auditPublisher AuditPublisher
	locale         language.Tag
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRuleEngine sets the runner used by ValidateWithRuleEngine.
func WithRuleEngine(runner Runner) Option {
	return func(s *Service) {
		s.ruleEngine = runner
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tracer
	}
}

// WithLocale selects the message catalog language for findings.
func WithLocale(tag language.Tag) Option {
	return func(s *Service) {
		s.locale = tag
	}
}

// New constructs a Service around the default-pass runner.
func New(runner Runner, opts ...Option) (*Service, error) {
	if runner == nil {
		return nil, errors.New("runner is required")
	}
	s := &Service{
		runner: runner,
		logger: slog.Default(),
		tracer: otel.Tracer("tracker/validation"),
		locale: defaultLocale,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.ruleEngine == nil {
		s.ruleEngine = s.runner
	}
	return s, nil
}

// Validate runs the default rule runner followed by the persistability filter.
func (s *Service) Validate(ctx context.Context, bundle *models.Bundle) *Result {
	return s.validate(ctx, bundle, s.runner, passDefault)
}

// ValidateWithRuleEngine is Validate using the rule-engine runner.
func (s *Service) ValidateWithRuleEngine(ctx context.Context, bundle *models.Bundle) *Result {
	return s.validate(ctx, bundle, s.ruleEngine, passRuleEngine)
}

func (s *Service) validate(ctx context.Context, bundle *models.Bundle, runner Runner, pass string) *Result {
	if bundle == nil {
		return EmptyResult()
	}

	ctx, span := s.tracer.Start(ctx, "validation."+pass, trace.WithAttributes(
		attribute.String("tracker.import_strategy", string(bundle.ImportStrategy)),
		attribute.String("tracker.validation_mode", string(bundle.ValidationMode)),
		attribute.Int("tracker.bundle_size", bundle.Size()),
	))
	defer span.End()

	if bundle.ValidationMode == models.ValidationSkip && bundle.User.IsSuperuser() {
		s.skip(ctx, bundle)
		span.SetAttributes(attribute.Bool("tracker.validation_skipped", true))
		return EmptyResult()
	}

	start := time.Now()
	formatter := NewCatalogFormatter(s.locale, bundle.IdSchemes)
	reporter := NewReporter(bundle.IdSchemes, bundle.ValidationMode == models.ValidationFailFast,
		WithFormatter(formatter))

	err := runner.Run(ctx, reporter, bundle)
	switch {
	case errors.Is(err, ErrFailFast):
		s.metrics.IncrementFailFast()
		s.logger.InfoContext(ctx, "validation stopped on first error",
			"pass", pass,
			"request_id", requestcontext.RequestID(ctx),
		)
	case err != nil:
		span.RecordError(err)
		s.logger.ErrorContext(ctx, "rule runner failed, continuing with collected findings",
			"pass", pass,
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}

	persistables := FilterPersistable(bundle, reporter.InvalidIdentities(), formatter)

	var merged issueSet
	for _, issue := range reporter.Errors() {
		merged.add(issue)
	}
	for _, issue := range persistables.Errors {
		merged.add(issue)
	}
	result := newResult(persistables, merged.items, reporter.Warnings())

	s.metrics.ObserveValidateLatency(pass, time.Since(start))
	s.record(result, persistables)
	if result.HasErrors() {
		span.SetStatus(codes.Error, "bundle has validation errors")
	}
	span.SetAttributes(
		attribute.Int("tracker.errors", len(result.errors)),
		attribute.Int("tracker.warnings", len(result.warnings)),
		attribute.Int("tracker.persistable", result.PersistableCount()),
	)

	s.logger.InfoContext(ctx, "bundle validated",
		"pass", pass,
		"import_strategy", bundle.ImportStrategy,
		"validation_mode", bundle.ValidationMode,
		"records", bundle.Size(),
		"persistable", result.PersistableCount(),
		"errors", len(result.errors),
		"warnings", len(result.warnings),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.auditOutcome(ctx, bundle, result, errors.Is(err, ErrFailFast))
	return result
}

func (s *Service) skip(ctx context.Context, bundle *models.Bundle) {
	s.metrics.IncrementSkipped()
	s.logger.WarnContext(ctx, "validation skipped by superuser",
		"user", bundle.User.Username,
		"user_id", bundle.User.UID,
		"records", bundle.Size(),
		"request_id", requestcontext.RequestID(ctx),
	)
	s.emit(ctx, bundle, audit.EventValidationSkipped, "skipped", map[string]int{
		"records": bundle.Size(),
	})
}

func (s *Service) record(result *Result, persistables PersistablesResult) {
	if s.metrics == nil {
		return
	}
	for _, issue := range result.errors {
		s.metrics.IncrementFinding("error", string(issue.Code))
	}
	for _, issue := range result.warnings {
		s.metrics.IncrementFinding("warning", string(issue.Code))
	}
	for _, issue := range persistables.Errors {
		if issue.Code == E5000 {
			s.metrics.IncrementDependencyRejection(issue.Kind.String())
		}
	}
	for _, kind := range models.TopDownKinds {
		s.metrics.AddPersistable(kind.String(), len(result.Persistable(kind)))
	}
}

func (s *Service) auditOutcome(ctx context.Context, bundle *models.Bundle, result *Result, failFast bool) {
	event, decision := audit.EventImportValidated, "accepted"
	switch {
	case failFast:
		event, decision = audit.EventFailFastAborted, "aborted"
	case result.HasErrors() && result.PersistableCount() == 0:
		event, decision = audit.EventImportRejected, "rejected"
	case result.HasErrors():
		decision = "partial"
	}
	s.emit(ctx, bundle, event, decision, map[string]int{
		"records":     bundle.Size(),
		"persistable": result.PersistableCount(),
		"errors":      len(result.errors),
		"warnings":    len(result.warnings),
	})
}

func (s *Service) emit(ctx context.Context, bundle *models.Bundle, event audit.AuditEvent, decision string, counts map[string]int) {
	if s.auditPublisher == nil {
		return
	}
	actorID := ""
	if bundle.User != nil {
		actorID = bundle.User.UID
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Category:  event.Category(),
		Timestamp: requestcontext.Now(ctx),
		ActorID:   actorID,
		Subject:   string(bundle.ImportStrategy) + "/" + string(bundle.ValidationMode),
		Action:    string(event),
		Decision:  decision,
		RequestID: requestcontext.RequestID(ctx),
		Counts:    counts,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"event", string(event),
			"error", err,
			"request_id", requestcontext.RequestID(ctx),
		)
	}
}
