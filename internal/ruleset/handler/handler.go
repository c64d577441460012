package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"taxsafe/internal/compliance/models"
	"taxsafe/internal/ruleset/loader"
	"taxsafe/internal/ruleset/service"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
	"taxsafe/pkg/platform/httputil"
	"taxsafe/pkg/requestcontext"
)

const maxBundleBytes = 1 << 20

// Service defines the rule-set administration operations.
type Service interface {
	CreateRuleSet(ctx context.Context, in service.CreateRuleSetInput) (*models.RuleSet, error)
	AddRule(ctx context.Context, ruleSetID id.RuleSetID, in service.RuleInput) (*models.RuleSet, error)
	AddDeadlineTemplate(ctx context.Context, ruleSetID id.RuleSetID, tmpl models.DeadlineTemplate) (*models.RuleSet, error)
	Activate(ctx context.Context, ruleSetID id.RuleSetID) (*models.RuleSet, error)
	Archive(ctx context.Context, ruleSetID id.RuleSetID) (*models.RuleSet, error)
	Get(ctx context.Context, ruleSetID id.RuleSetID) (*models.RuleSet, error)
	List(ctx context.Context) ([]*models.RuleSet, error)
	Active(ctx context.Context) (*models.RuleSet, error)
	Import(ctx context.Context, bundle *loader.Bundle, activate bool) (*models.RuleSet, error)
}

// Handler serves the admin rule-set endpoints. Callers mount it behind the
// admin token middleware.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts the admin endpoints under /admin/rulesets.
func (h *Handler) Register(r chi.Router) {
	r.Route("/admin/rulesets", func(r chi.Router) {
		r.Post("/", h.HandleCreate)
		r.Get("/", h.HandleList)
		r.Get("/active", h.HandleActive)
		r.Post("/import", h.HandleImport)
		r.Get("/{ruleSetID}", h.HandleGet)
		r.Post("/{ruleSetID}/rules", h.HandleAddRule)
		r.Post("/{ruleSetID}/deadlines", h.HandleAddDeadline)
		r.Post("/{ruleSetID}/activate", h.HandleActivate)
		r.Post("/{ruleSetID}/archive", h.HandleArchive)
	})
}

// HandleCreate handles POST /admin/rulesets.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[CreateRuleSetRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	rs, err := h.service.CreateRuleSet(ctx, req.Input())
	if err != nil {
		h.fail(ctx, w, "failed to create rule set", err, "version", req.Version)
		return
	}
	h.logger.InfoContext(ctx, "rule set created",
		"request_id", requestID,
		"rule_set_id", rs.ID.String(),
		"version", rs.Version,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRuleSet(rs))
}

// HandleList handles GET /admin/rulesets.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sets, err := h.service.List(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to list rule sets", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRuleSets(sets))
}

// HandleActive handles GET /admin/rulesets/active.
func (h *Handler) HandleActive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	rs, err := h.service.Active(ctx)
	if err != nil {
		h.fail(ctx, w, "failed to load active rule set", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRuleSet(rs))
}

// HandleGet handles GET /admin/rulesets/{ruleSetID}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleSetID, ok := h.ruleSetID(w, r)
	if !ok {
		return
	}
	rs, err := h.service.Get(ctx, ruleSetID)
	if err != nil {
		h.fail(ctx, w, "failed to load rule set", err, "rule_set_id", ruleSetID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRuleSet(rs))
}

// HandleAddRule handles POST /admin/rulesets/{ruleSetID}/rules.
func (h *Handler) HandleAddRule(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	ruleSetID, ok := h.ruleSetID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddRuleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	rs, err := h.service.AddRule(ctx, ruleSetID, req.Input())
	if err != nil {
		h.fail(ctx, w, "failed to add rule", err, "rule_set_id", ruleSetID.String(), "rule_key", req.Key)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromRuleSet(rs))
}

// HandleAddDeadline handles POST /admin/rulesets/{ruleSetID}/deadlines.
func (h *Handler) HandleAddDeadline(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	ruleSetID, ok := h.ruleSetID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[AddDeadlineRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	rs, err := h.service.AddDeadlineTemplate(ctx, ruleSetID, req.Template())
	if err != nil {
		h.fail(ctx, w, "failed to add deadline template", err, "rule_set_id", ruleSetID.String(), "template_key", req.Key)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, FromRuleSet(rs))
}

// HandleActivate handles POST /admin/rulesets/{ruleSetID}/activate.
func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleSetID, ok := h.ruleSetID(w, r)
	if !ok {
		return
	}
	rs, err := h.service.Activate(ctx, ruleSetID)
	if err != nil {
		h.fail(ctx, w, "failed to activate rule set", err, "rule_set_id", ruleSetID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRuleSet(rs))
}

// HandleArchive handles POST /admin/rulesets/{ruleSetID}/archive.
func (h *Handler) HandleArchive(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	ruleSetID, ok := h.ruleSetID(w, r)
	if !ok {
		return
	}
	rs, err := h.service.Archive(ctx, ruleSetID)
	if err != nil {
		h.fail(ctx, w, "failed to archive rule set", err, "rule_set_id", ruleSetID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRuleSet(rs))
}

// HandleImport handles POST /admin/rulesets/import. The body is a YAML
// bundle; ?activate=true activates it in the same unit of work.
func (h *Handler) HandleImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	activate := false
	if raw := r.URL.Query().Get("activate"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "activate must be a boolean"))
			return
		}
		activate = v
	}

	bundle, err := loader.Load(io.LimitReader(r.Body, maxBundleBytes))
	if err != nil {
		h.logger.WarnContext(ctx, "invalid rule set bundle",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	rs, err := h.service.Import(ctx, bundle, activate)
	if err != nil {
		h.fail(ctx, w, "failed to import rule set", err, "version", bundle.Version)
		return
	}
	h.logger.InfoContext(ctx, "rule set imported",
		"request_id", requestID,
		"rule_set_id", rs.ID.String(),
		"version", rs.Version,
		"activated", activate,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusCreated, FromRuleSet(rs))
}

func (h *Handler) ruleSetID(w http.ResponseWriter, r *http.Request) (id.RuleSetID, bool) {
	ruleSetID, err := id.ParseRuleSetID(chi.URLParam(r, "ruleSetID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.RuleSetID{}, false
	}
	return ruleSetID, true
}

// fail logs client errors at warn and everything else at error.
func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	args := append([]any{"request_id", requestcontext.RequestID(ctx), "error", err}, attrs...)
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}
