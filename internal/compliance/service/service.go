package service

import (
	"context"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"taxsafe/internal/compliance/metrics"
	"taxsafe/internal/compliance/ports"
	id "taxsafe/pkg/domain"
	"taxsafe/pkg/platform/audit"
	"taxsafe/pkg/requestcontext"
)

const defaultRefreshConcurrency = 8

// Dependencies groups the collaborators the engine reads from and writes to.
// ExpansionCache is optional.
type Dependencies struct {
	Profiles       ports.ProfileReader
	Transactions   ports.TransactionReader
	Tasks          ports.TaskReader
	Fulfillments   ports.FulfillmentReader
	RuleSets       ports.RuleSetReader
	Evaluations    ports.EvaluationStore
	Obligations    ports.ObligationStore
	Issues         ports.IssueStore
	Scores         ports.ScoreStore
	ExpansionCache ports.ExpansionCache
}

// Service orchestrates the compliance engine: it loads collaborator data,
// runs the pure components and persists their snapshots.
type Service struct {
	deps               Dependencies
	logger             *slog.Logger
	auditor            ports.AuditPort
	metrics            *metrics.Metrics
	tracer             trace.Tracer
	refreshConcurrency int
	newIssueID         func() id.IssueID
	newEvaluationID    func() id.EvaluationID
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher ports.AuditPort) Option {
	return func(s *Service) {
		s.auditor = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithRefreshConcurrency bounds the number of businesses refreshed at once.
func WithRefreshConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.refreshConcurrency = n
		}
	}
}

// WithIDGenerators replaces random ID generation, mainly for tests.
func WithIDGenerators(issues func() id.IssueID, evaluations func() id.EvaluationID) Option {
	return func(s *Service) {
		if issues != nil {
			s.newIssueID = issues
		}
		if evaluations != nil {
			s.newEvaluationID = evaluations
		}
	}
}

// New constructs a Service.
func New(deps Dependencies, opts ...Option) *Service {
	s := &Service{
		deps:               deps,
		logger:             slog.Default(),
		tracer:             otel.Tracer("taxsafe/compliance"),
		refreshConcurrency: defaultRefreshConcurrency,
		newIssueID:         id.NewIssueID,
		newEvaluationID:    id.NewEvaluationID,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// track starts a span for an operation. The returned func ends it and
// records err when non-nil.
func (s *Service) track(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, func(error)) {
	ctx, span := s.tracer.Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}
}

func businessAttrs(businessID id.BusinessID, taxYear int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String("business_id", businessID.String()),
		attribute.Int("tax_year", taxYear),
	}
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, ev audit.Event, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditor == nil {
		return
	}
	ev.Action = string(event)
	ev.RequestID = requestID
	ev.ActorID = requestcontext.Actor(ctx)
	if err := s.auditor.Emit(ctx, ev); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

func (s *Service) now(ctx context.Context) time.Time {
	return requestcontext.Now(ctx).UTC()
}
