package handler

import (
	"tracker/internal/tracker/models"
	"tracker/internal/tracker/validation"
	audit "tracker/pkg/platform/audit"
)

const (
	StatusOK      = "OK"
	StatusWarning = "WARNING"
	StatusError   = "ERROR"
	StatusSkipped = "SKIPPED"
)

// ValidateResponse is the HTTP response for POST /tracker/validate.
type ValidateResponse struct {
	Status      string              `json:"status"`
	Stats       StatsResponse       `json:"stats"`
	Persistable PersistableResponse `json:"persistable"`
	Errors      []validation.Issue  `json:"errors"`
	Warnings    []validation.Issue  `json:"warnings"`
}

type StatsResponse struct {
	Total       int `json:"total"`
	Persistable int `json:"persistable"`
	Ignored     int `json:"ignored"`
}

// PersistableResponse lists persistable uids per record type in output order.
type PersistableResponse struct {
	TrackedEntities []string `json:"trackedEntities"`
	Enrollments     []string `json:"enrollments"`
	Events          []string `json:"events"`
	Relationships   []string `json:"relationships"`
}

// FromResult converts a validation result into the HTTP response.
func FromResult(bundle *models.Bundle, result *validation.Result, skipped bool) *ValidateResponse {
	resp := &ValidateResponse{
		Status: StatusOK,
		Stats: StatsResponse{
			Total:       bundle.Size(),
			Persistable: result.PersistableCount(),
			Ignored:     bundle.Size() - result.PersistableCount(),
		},
		Persistable: PersistableResponse{
			TrackedEntities: uids(result.Persistable(models.KindRoot)),
			Enrollments:     uids(result.Persistable(models.KindEnrollment)),
			Events:          uids(result.Persistable(models.KindEvent)),
			Relationships:   uids(result.Persistable(models.KindRelationship)),
		},
		Errors:   nonNil(result.Errors()),
		Warnings: nonNil(result.Warnings()),
	}
	switch {
	case skipped:
		resp.Status = StatusSkipped
		resp.Stats.Ignored = 0
	case result.HasErrors():
		resp.Status = StatusError
	case result.HasWarnings():
		resp.Status = StatusWarning
	}
	return resp
}

func uids(ids []models.Identity) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.UID
	}
	return out
}

func nonNil(issues []validation.Issue) []validation.Issue {
	if issues == nil {
		return []validation.Issue{}
	}
	return issues
}

// AuditEventResponse is one entry of GET /admin/audit/{actorID}.
type AuditEventResponse struct {
	Category  string         `json:"category"`
	Timestamp string         `json:"timestamp"`
	Subject   string         `json:"subject"`
	Action    string         `json:"action"`
	Decision  string         `json:"decision,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
	Counts    map[string]int `json:"counts,omitempty"`
}

func fromAuditEvents(events []audit.Event) []AuditEventResponse {
	out := make([]AuditEventResponse, 0, len(events))
	for _, e := range events {
		out = append(out, AuditEventResponse{
			Category:  string(e.Category),
			Timestamp: e.Timestamp.UTC().Format(audit.TimestampFormat),
			Subject:   e.Subject,
			Action:    e.Action,
			Decision:  e.Decision,
			RequestID: e.RequestID,
			Counts:    e.Counts,
		})
	}
	return out
}
