// Package ruleengine adapts program-rule evaluation into validation findings.
package ruleengine

import (
	"context"

	"tracker/internal/tracker/models"
)

//go:generate mockgen -source=engine.go -destination=mocks/mocks.go -package=mocks Engine

// EffectKind is the action a program rule requests.
type EffectKind string

const (
	ShowError         EffectKind = "SHOW_ERROR"
	ShowWarning       EffectKind = "SHOW_WARNING"
	ErrorOnComplete   EffectKind = "ERROR_ON_COMPLETE"
	WarningOnComplete EffectKind = "WARNING_ON_COMPLETE"
	SetMandatoryField EffectKind = "SET_MANDATORY_FIELD"
)

func (k EffectKind) IsValid() bool {
	switch k {
	case ShowError, ShowWarning, ErrorOnComplete, WarningOnComplete, SetMandatoryField:
		return true
	}
	return false
}

// Effect is one triggered rule action for a record.
type Effect struct {
	Kind    EffectKind
	RuleUID string
	Message string
	// DataElement is set for SET_MANDATORY_FIELD.
	DataElement string
}

// Engine evaluates program rules for enrollments and events. Implementations
// must be safe for concurrent use.
type Engine interface {
	EvaluateEnrollment(ctx context.Context, bundle *models.Bundle, enrollment *models.Enrollment) ([]Effect, error)
	EvaluateEvent(ctx context.Context, bundle *models.Bundle, event *models.Event) ([]Effect, error)
}
