package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"tracker/internal/tracker/models"
	"tracker/internal/tracker/validation"
	dErrors "tracker/pkg/domain-errors"
	audit "tracker/pkg/platform/audit"
	"tracker/pkg/platform/httputil"
	"tracker/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Service,Preheater,AuditLister

// Service defines the interface for bundle validation.
type Service interface {
	Validate(ctx context.Context, bundle *models.Bundle) *validation.Result
	ValidateWithRuleEngine(ctx context.Context, bundle *models.Bundle) *validation.Result
}

// Preheater attaches stored-record existence to a bundle before validation.
type Preheater interface {
	Preheat(ctx context.Context, bundle *models.Bundle) error
}

// AuditLister reads back audit events for an actor.
type AuditLister interface {
	List(ctx context.Context, actorID string) ([]audit.Event, error)
}

// Handler wires tracker endpoints to the validation service.
type Handler struct {
	service   Service
	preheater Preheater
	audit     AuditLister
	logger    *slog.Logger
}

// New constructs a tracker handler. audit may be nil when no readable audit
// store is configured.
func New(service Service, preheater Preheater, audit AuditLister, logger *slog.Logger) *Handler {
	return &Handler{
		service:   service,
		preheater: preheater,
		audit:     audit,
		logger:    logger,
	}
}

// Register mounts tracker endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/tracker/validate", h.HandleValidate)
}

// RegisterAdmin mounts operator endpoints. Callers guard the router.
func (h *Handler) RegisterAdmin(r chi.Router) {
	r.Get("/admin/audit/{actorID}", h.HandleListAudit)
}

// HandleValidate handles POST /tracker/validate requests.
func (h *Handler) HandleValidate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	// Require authenticated user
	actor, ok := requestcontext.Actor(ctx)
	if !ok || actor.UserID == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
		return
	}

	params, err := ParseImportParams(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	req, ok := httputil.DecodeAndPrepare[ValidateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	bundle := req.ToBundle(params, &models.User{
		UID:       actor.UserID,
		Username:  actor.Username,
		Superuser: actor.Superuser,
	})
	skipped := bundle.ValidationMode == models.ValidationSkip && bundle.User.IsSuperuser()

	if !skipped {
		if err := h.preheater.Preheat(ctx, bundle); err != nil {
			h.logger.ErrorContext(ctx, "failed to preheat bundle",
				"request_id", requestID,
				"user_id", actor.UserID,
				"records", bundle.Size(),
				"error", err,
			)
			httputil.WriteError(w, err)
			return
		}
	}

	var result *validation.Result
	if params.RuleEngine {
		result = h.service.ValidateWithRuleEngine(ctx, bundle)
	} else {
		result = h.service.Validate(ctx, bundle)
	}

	resp := FromResult(bundle, result, skipped)
	h.logger.InfoContext(ctx, "tracker bundle validated",
		"request_id", requestID,
		"user_id", actor.UserID,
		"status", resp.Status,
		"records", resp.Stats.Total,
		"persistable", resp.Stats.Persistable,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	status := http.StatusOK
	if resp.Status == StatusError {
		status = http.StatusConflict
	}
	httputil.WriteJSON(w, status, resp)
}

// HandleListAudit handles GET /admin/audit/{actorID} requests.
func (h *Handler) HandleListAudit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	if h.audit == nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeNotFound, "audit store is not readable"))
		return
	}

	actorID := chi.URLParam(r, "actorID")
	if !models.IsValidUID(actorID) {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "invalid actor id"))
		return
	}

	events, err := h.audit.List(ctx, actorID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list audit events",
			"request_id", requestcontext.RequestID(ctx),
			"actor_id", actorID,
			"error", err,
		)
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeUnavailable, "failed to list audit events"))
		return
	}
	httputil.WriteJSON(w, http.StatusOK, fromAuditEvents(events))
}
