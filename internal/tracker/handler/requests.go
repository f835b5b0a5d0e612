package handler

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"tracker/internal/tracker/models"
	dErrors "tracker/pkg/domain-errors"
)

// maxBundleRecords bounds a single import payload.
const maxBundleRecords = 50000

// ValidateRequest is the HTTP request body for POST /tracker/validate.
type ValidateRequest struct {
	TrackedEntities []TrackedEntityRequest `json:"trackedEntities"`
	Enrollments     []EnrollmentRequest    `json:"enrollments"`
	Events          []EventRequest         `json:"events"`
	Relationships   []RelationshipRequest  `json:"relationships"`

	// Parsed values (populated by Validate)
	parsedRelationships []*models.Relationship
}

type TrackedEntityRequest struct {
	TrackedEntity     string `json:"trackedEntity"`
	TrackedEntityType string `json:"trackedEntityType"`
	OrgUnit           string `json:"orgUnit"`
}

type EnrollmentRequest struct {
	Enrollment    string     `json:"enrollment"`
	TrackedEntity string     `json:"trackedEntity"`
	Program       string     `json:"program"`
	OrgUnit       string     `json:"orgUnit"`
	Status        string     `json:"status"`
	EnrolledAt    *time.Time `json:"enrolledAt"`
}

type EventRequest struct {
	Event        string             `json:"event"`
	Enrollment   string             `json:"enrollment"`
	Program      string             `json:"program"`
	ProgramStage string             `json:"programStage"`
	OrgUnit      string             `json:"orgUnit"`
	Status       string             `json:"status"`
	OccurredAt   *time.Time         `json:"occurredAt"`
	DataValues   []DataValueRequest `json:"dataValues"`
}

type DataValueRequest struct {
	DataElement string `json:"dataElement"`
	Value       string `json:"value"`
}

type RelationshipRequest struct {
	Relationship     string                  `json:"relationship"`
	RelationshipType string                  `json:"relationshipType"`
	Bidirectional    bool                    `json:"bidirectional"`
	From             RelationshipItemRequest `json:"from"`
	To               RelationshipItemRequest `json:"to"`
}

// RelationshipItemRequest must name exactly one record.
type RelationshipItemRequest struct {
	TrackedEntity string `json:"trackedEntity"`
	Enrollment    string `json:"enrollment"`
	Event         string `json:"event"`
}

// Normalize trims identifiers and upper-cases statuses.
func (r *ValidateRequest) Normalize() {
	for i := range r.TrackedEntities {
		te := &r.TrackedEntities[i]
		te.TrackedEntity = strings.TrimSpace(te.TrackedEntity)
	}
	for i := range r.Enrollments {
		e := &r.Enrollments[i]
		e.Enrollment = strings.TrimSpace(e.Enrollment)
		e.TrackedEntity = strings.TrimSpace(e.TrackedEntity)
		e.Status = strings.ToUpper(strings.TrimSpace(e.Status))
	}
	for i := range r.Events {
		e := &r.Events[i]
		e.Event = strings.TrimSpace(e.Event)
		e.Enrollment = strings.TrimSpace(e.Enrollment)
		e.Status = strings.ToUpper(strings.TrimSpace(e.Status))
	}
	for i := range r.Relationships {
		rel := &r.Relationships[i]
		rel.Relationship = strings.TrimSpace(rel.Relationship)
		rel.From.normalize()
		rel.To.normalize()
	}
}

func (i *RelationshipItemRequest) normalize() {
	i.TrackedEntity = strings.TrimSpace(i.TrackedEntity)
	i.Enrollment = strings.TrimSpace(i.Enrollment)
	i.Event = strings.TrimSpace(i.Event)
}

// Validate checks the payload shape. Record-level problems are left to the
// validation rules; only payloads that cannot be represented are rejected.
func (r *ValidateRequest) Validate() error {
	if r == nil {
		return dErrors.New(dErrors.CodeBadRequest, "request body is required")
	}
	total := len(r.TrackedEntities) + len(r.Enrollments) + len(r.Events) + len(r.Relationships)
	if total > maxBundleRecords {
		return dErrors.New(dErrors.CodeValidation,
			fmt.Sprintf("bundle must contain at most %d records, got %d", maxBundleRecords, total))
	}

	r.parsedRelationships = make([]*models.Relationship, 0, len(r.Relationships))
	for i, rel := range r.Relationships {
		from, err := rel.From.endpoint()
		if err != nil {
			return fieldError(fmt.Sprintf("relationships[%d].from", i), err)
		}
		to, err := rel.To.endpoint()
		if err != nil {
			return fieldError(fmt.Sprintf("relationships[%d].to", i), err)
		}
		r.parsedRelationships = append(r.parsedRelationships, &models.Relationship{
			UID:              rel.Relationship,
			RelationshipType: rel.RelationshipType,
			From:             from,
			To:               to,
			Bidirectional:    rel.Bidirectional,
		})
	}
	return nil
}

func fieldError(field string, err error) error {
	msg := err.Error()
	var de *dErrors.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	return dErrors.New(dErrors.CodeValidation, field+": "+msg)
}

func (i RelationshipItemRequest) endpoint() (models.Endpoint, error) {
	return models.ParseEndpoint(i.TrackedEntity, i.Enrollment, i.Event)
}

// ToBundle builds the records of a bundle. Call after Validate.
func (r *ValidateRequest) ToBundle(params ImportParams, user *models.User) *models.Bundle {
	b := &models.Bundle{
		User:           user,
		ImportStrategy: params.ImportStrategy,
		ValidationMode: params.ValidationMode,
		IdSchemes:      params.IdSchemes,
		Roots:          make([]*models.Root, 0, len(r.TrackedEntities)),
		Enrollments:    make([]*models.Enrollment, 0, len(r.Enrollments)),
		Events:         make([]*models.Event, 0, len(r.Events)),
		Relationships:  r.parsedRelationships,
	}
	for _, te := range r.TrackedEntities {
		b.Roots = append(b.Roots, &models.Root{
			UID:               te.TrackedEntity,
			TrackedEntityType: te.TrackedEntityType,
			OrgUnit:           te.OrgUnit,
		})
	}
	for _, e := range r.Enrollments {
		b.Enrollments = append(b.Enrollments, &models.Enrollment{
			UID:        e.Enrollment,
			Root:       e.TrackedEntity,
			Program:    e.Program,
			OrgUnit:    e.OrgUnit,
			Status:     models.Status(e.Status),
			EnrolledAt: e.EnrolledAt,
		})
	}
	for _, e := range r.Events {
		event := &models.Event{
			UID:          e.Event,
			Enrollment:   e.Enrollment,
			Program:      e.Program,
			ProgramStage: e.ProgramStage,
			OrgUnit:      e.OrgUnit,
			Status:       models.Status(e.Status),
			OccurredAt:   e.OccurredAt,
		}
		for _, dv := range e.DataValues {
			event.DataValues = append(event.DataValues, models.DataValue{DataElement: dv.DataElement, Value: dv.Value})
		}
		b.Events = append(b.Events, event)
	}
	return b
}

// ImportParams are the query parameters of an import.
type ImportParams struct {
	ImportStrategy models.ImportStrategy
	ValidationMode models.ValidationMode
	RuleEngine     bool
	IdSchemes      models.IdSchemeParams
}

// ParseImportParams reads importStrategy, validationMode, ruleEngine and the
// idScheme family from the query string.
func ParseImportParams(q url.Values) (ImportParams, error) {
	var (
		p   ImportParams
		err error
	)
	if p.ImportStrategy, err = models.ParseImportStrategy(q.Get("importStrategy")); err != nil {
		return ImportParams{}, err
	}
	if p.ValidationMode, err = models.ParseValidationMode(q.Get("validationMode")); err != nil {
		return ImportParams{}, err
	}
	if v := q.Get("ruleEngine"); v != "" {
		if p.RuleEngine, err = strconv.ParseBool(v); err != nil {
			return ImportParams{}, dErrors.New(dErrors.CodeInvalidInput, "invalid ruleEngine: "+v)
		}
	}

	schemes := []struct {
		param string
		dst   *models.IdScheme
	}{
		{"idScheme", &p.IdSchemes.Default},
		{"orgUnitIdScheme", &p.IdSchemes.OrgUnit},
		{"programIdScheme", &p.IdSchemes.Program},
		{"programStageIdScheme", &p.IdSchemes.ProgramStage},
		{"dataElementIdScheme", &p.IdSchemes.DataElement},
	}
	for _, s := range schemes {
		v := q.Get(s.param)
		if v == "" {
			continue
		}
		if *s.dst, err = models.ParseIdScheme(v); err != nil {
			return ImportParams{}, err
		}
	}
	return p, nil
}
