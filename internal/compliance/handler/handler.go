package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"taxsafe/internal/compliance/models"
	"taxsafe/internal/compliance/service"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
	"taxsafe/pkg/platform/httputil"
	"taxsafe/pkg/requestcontext"
)

// Service defines the compliance engine operations exposed over HTTP.
type Service interface {
	Evaluate(ctx context.Context, businessID id.BusinessID, taxYear int) (*models.Evaluation, error)
	DryRun(ctx context.Context, req service.DryRunRequest) (*models.Evaluation, error)
	Score(ctx context.Context, businessID id.BusinessID, taxYear int) (*models.TaxSafetyScore, error)
	LatestScore(ctx context.Context, businessID id.BusinessID, taxYear int) (*models.TaxSafetyScore, error)
	Scan(ctx context.Context, businessID id.BusinessID, taxYear int) ([]models.ReviewIssue, error)
	ListIssues(ctx context.Context, businessID id.BusinessID, taxYear int) ([]models.ReviewIssue, error)
	DismissIssue(ctx context.Context, issueID id.IssueID) (*models.ReviewIssue, error)
	Refresh(ctx context.Context, businessIDs []id.BusinessID, taxYear int) ([]service.RefreshResult, error)
}

// Handler wires compliance endpoints to the engine service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts compliance endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/compliance/evaluate", h.HandleEvaluate)
	r.Post("/compliance/dry-run", h.HandleDryRun)
	r.Post("/compliance/refresh", h.HandleRefresh)
	r.Get("/businesses/{businessID}/score", h.HandleScore)
	r.Get("/businesses/{businessID}/score/latest", h.HandleLatestScore)
	r.Post("/businesses/{businessID}/scan", h.HandleScan)
	r.Get("/businesses/{businessID}/issues", h.HandleListIssues)
	r.Post("/issues/{issueID}/dismiss", h.HandleDismiss)
}

// HandleEvaluate handles POST /compliance/evaluate.
func (h *Handler) HandleEvaluate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[EvaluateRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	businessID := req.ParsedBusinessID()
	eval, err := h.service.Evaluate(ctx, businessID, req.TaxYear)
	if err != nil {
		h.fail(ctx, w, "compliance evaluation failed", err, "business_id", businessID.String(), "tax_year", req.TaxYear)
		return
	}

	h.logger.InfoContext(ctx, "compliance evaluated",
		"request_id", requestID,
		"business_id", businessID.String(),
		"tax_year", req.TaxYear,
		"rule_set_version", eval.RuleSetVersion,
		"obligations", len(eval.Obligations),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, eval)
}

// HandleDryRun handles POST /compliance/dry-run. Nothing is persisted.
func (h *Handler) HandleDryRun(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[DryRunRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	eval, err := h.service.DryRun(ctx, req.ServiceRequest())
	if err != nil {
		h.fail(ctx, w, "dry run failed", err, "tax_year", req.TaxYear)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, eval)
}

// HandleRefresh handles POST /compliance/refresh.
func (h *Handler) HandleRefresh(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	req, ok := httputil.DecodeAndPrepare[RefreshRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}
	results, err := h.service.Refresh(ctx, req.ParsedBusinessIDs(), req.TaxYear)
	if err != nil {
		h.fail(ctx, w, "refresh failed", err, "tax_year", req.TaxYear)
		return
	}
	resp := FromRefresh(results)
	h.logger.InfoContext(ctx, "refresh served",
		"request_id", requestID,
		"businesses", len(results),
		"failures", resp.Failures,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, resp)
}

// HandleScore handles GET /businesses/{businessID}/score?tax_year=. The
// score is recomputed from current data and stored as the latest snapshot.
func (h *Handler) HandleScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	businessID, taxYear, ok := h.businessYear(w, r)
	if !ok {
		return
	}
	score, err := h.service.Score(ctx, businessID, taxYear)
	if err != nil {
		h.fail(ctx, w, "scoring failed", err, "business_id", businessID.String(), "tax_year", taxYear)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, score)
}

// HandleLatestScore handles GET /businesses/{businessID}/score/latest?tax_year=.
func (h *Handler) HandleLatestScore(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	businessID, taxYear, ok := h.businessYear(w, r)
	if !ok {
		return
	}
	score, err := h.service.LatestScore(ctx, businessID, taxYear)
	if err != nil {
		h.fail(ctx, w, "failed to load score", err, "business_id", businessID.String(), "tax_year", taxYear)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, score)
}

// HandleScan handles POST /businesses/{businessID}/scan?tax_year= and
// returns the issues open after the scan.
func (h *Handler) HandleScan(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	businessID, taxYear, ok := h.businessYear(w, r)
	if !ok {
		return
	}
	issues, err := h.service.Scan(ctx, businessID, taxYear)
	if err != nil {
		h.fail(ctx, w, "review scan failed", err, "business_id", businessID.String(), "tax_year", taxYear)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromIssues(issues))
}

// HandleListIssues handles GET /businesses/{businessID}/issues?tax_year=.
func (h *Handler) HandleListIssues(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	businessID, taxYear, ok := h.businessYear(w, r)
	if !ok {
		return
	}
	issues, err := h.service.ListIssues(ctx, businessID, taxYear)
	if err != nil {
		h.fail(ctx, w, "failed to list review issues", err, "business_id", businessID.String(), "tax_year", taxYear)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromIssues(issues))
}

// HandleDismiss handles POST /issues/{issueID}/dismiss.
func (h *Handler) HandleDismiss(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	issueID, err := id.ParseIssueID(chi.URLParam(r, "issueID"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	issue, err := h.service.DismissIssue(ctx, issueID)
	if err != nil {
		h.fail(ctx, w, "failed to dismiss review issue", err, "issue_id", issueID.String())
		return
	}
	httputil.WriteJSON(w, http.StatusOK, issue)
}

func (h *Handler) businessYear(w http.ResponseWriter, r *http.Request) (id.BusinessID, int, bool) {
	businessID, err := id.ParseBusinessID(chi.URLParam(r, "businessID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.BusinessID{}, 0, false
	}
	taxYear, err := id.ParseTaxYear(r.URL.Query().Get("tax_year"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.BusinessID{}, 0, false
	}
	return businessID, taxYear.Int(), true
}

func (h *Handler) fail(ctx context.Context, w http.ResponseWriter, msg string, err error, attrs ...any) {
	args := append([]any{"request_id", requestcontext.RequestID(ctx), "error", err}, attrs...)
	if httputil.StatusFor(dErrors.CodeOf(err)) >= http.StatusInternalServerError {
		h.logger.ErrorContext(ctx, msg, args...)
	} else {
		h.logger.WarnContext(ctx, msg, args...)
	}
	httputil.WriteError(w, err)
}

func errorCode(err error) string {
	return string(dErrors.CodeOf(err))
}
