package service

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"taxsafe/internal/compliance/condition"
	"taxsafe/internal/compliance/models"
	"taxsafe/internal/ruleset/loader"
	"taxsafe/internal/ruleset/metrics"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
	"taxsafe/pkg/platform/audit"
	"taxsafe/pkg/platform/sentinel"
	"taxsafe/pkg/requestcontext"
)

// Store persists rule sets. Activate must archive the previous active rule
// set atomically; Update applies fn to a working copy and persists it only
// when fn succeeds.
type Store interface {
	Create(ctx context.Context, rs *models.RuleSet) error
	FindByID(ctx context.Context, ruleSetID id.RuleSetID) (*models.RuleSet, error)
	Active(ctx context.Context) (*models.RuleSet, error)
	List(ctx context.Context) ([]*models.RuleSet, error)
	Update(ctx context.Context, ruleSetID id.RuleSetID, fn func(*models.RuleSet) error) (*models.RuleSet, error)
	Activate(ctx context.Context, ruleSetID id.RuleSetID, now time.Time) (*models.RuleSet, error)
}

// StoreTx groups store calls into one unit of work.
type StoreTx interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service administers versioned rule sets.
type Service struct {
	store          Store
	tx             StoreTx
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithTx makes Import atomic across create and activate.
func WithTx(tx StoreTx) Option {
	return func(s *Service) {
		s.tx = tx
	}
}

func New(store Store, opts ...Option) *Service {
	s := &Service{store: store, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	if s.tx == nil {
		s.tx = &lockTx{}
	}
	return s
}

// CreateRuleSetInput describes a new draft rule set.
type CreateRuleSetInput struct {
	Version       string
	Name          string
	EffectiveFrom time.Time
	EffectiveTo   *time.Time
	Description   string
}

// RuleInput describes a rule to add to a draft. A nil Conditions tree
// matches every profile.
type RuleInput struct {
	Key         string
	Type        models.RuleType
	Priority    int
	Conditions  condition.Node
	Outcome     models.OutcomePatch
	Explanation string
}

func (s *Service) CreateRuleSet(ctx context.Context, in CreateRuleSetInput) (*models.RuleSet, error) {
	now := requestcontext.Now(ctx)
	rs, err := models.NewRuleSet(id.NewRuleSetID(), in.Version, in.Name, in.EffectiveFrom, in.EffectiveTo, in.Description, now)
	if err != nil {
		return nil, asValidation(err)
	}
	if err := s.store.Create(ctx, rs); err != nil {
		return nil, wrapStoreErr(err, "failed to create rule set")
	}

	s.logAudit(ctx, audit.EventRuleSetCreated, audit.Event{Subject: rs.ID.String(), RuleSetVersion: rs.Version},
		"rule_set_id", rs.ID.String(), "version", rs.Version)
	s.metrics.IncrementCreated()
	return rs, nil
}

// AddRule validates the rule and appends it to a draft rule set.
func (s *Service) AddRule(ctx context.Context, ruleSetID id.RuleSetID, in RuleInput) (*models.RuleSet, error) {
	rule, err := models.NewRule(uuid.New(), in.Key, in.Type, in.Priority, in.Conditions, in.Outcome, in.Explanation)
	if err != nil {
		return nil, asValidation(err)
	}
	now := requestcontext.Now(ctx)
	rs, err := s.store.Update(ctx, ruleSetID, func(rs *models.RuleSet) error {
		return rs.AddRule(rule, now)
	})
	if err != nil {
		return nil, wrapStoreErr(err, "failed to add rule")
	}

	s.logAudit(ctx, audit.EventRuleAdded, audit.Event{Subject: rs.ID.String(), RuleSetVersion: rs.Version, Detail: rule.Key},
		"rule_set_id", rs.ID.String(), "rule_key", rule.Key, "rule_type", string(rule.Type))
	s.metrics.IncrementRuleAdded(string(rule.Type))
	return rs, nil
}

// AddDeadlineTemplate validates the template shape and appends it to a draft.
func (s *Service) AddDeadlineTemplate(ctx context.Context, ruleSetID id.RuleSetID, tmpl models.DeadlineTemplate) (*models.RuleSet, error) {
	tmpl.ID = uuid.New()
	tmpl, err := models.NewDeadlineTemplate(tmpl)
	if err != nil {
		return nil, asValidation(err)
	}
	now := requestcontext.Now(ctx)
	rs, err := s.store.Update(ctx, ruleSetID, func(rs *models.RuleSet) error {
		return rs.AddDeadline(tmpl, now)
	})
	if err != nil {
		return nil, wrapStoreErr(err, "failed to add deadline template")
	}

	s.logAudit(ctx, audit.EventDeadlineTemplateAdded, audit.Event{Subject: rs.ID.String(), RuleSetVersion: rs.Version, Detail: tmpl.Key},
		"rule_set_id", rs.ID.String(), "template_key", tmpl.Key, "frequency", string(tmpl.Frequency))
	s.metrics.IncrementTemplateAdded(string(tmpl.Frequency))
	return rs, nil
}

// Activate makes the rule set the one in force; the previous active rule
// set is archived by the store in the same step.
func (s *Service) Activate(ctx context.Context, ruleSetID id.RuleSetID) (*models.RuleSet, error) {
	rs, err := s.store.Activate(ctx, ruleSetID, requestcontext.Now(ctx))
	if err != nil {
		return nil, wrapStoreErr(err, "failed to activate rule set")
	}

	s.logAudit(ctx, audit.EventRuleSetActivated, audit.Event{Subject: rs.ID.String(), RuleSetVersion: rs.Version},
		"rule_set_id", rs.ID.String(), "version", rs.Version)
	s.metrics.IncrementActivated()
	return rs, nil
}

// Archive retires a rule set. Archiving the active rule set leaves the
// engine on the baseline outcome until another set is activated.
func (s *Service) Archive(ctx context.Context, ruleSetID id.RuleSetID) (*models.RuleSet, error) {
	now := requestcontext.Now(ctx)
	rs, err := s.store.Update(ctx, ruleSetID, func(rs *models.RuleSet) error {
		if err := rs.CanArchive(); err != nil {
			return err
		}
		rs.Status = models.RuleSetStatusArchived
		rs.UpdatedAt = now
		return nil
	})
	if err != nil {
		return nil, wrapStoreErr(err, "failed to archive rule set")
	}

	s.logAudit(ctx, audit.EventRuleSetArchived, audit.Event{Subject: rs.ID.String(), RuleSetVersion: rs.Version},
		"rule_set_id", rs.ID.String(), "version", rs.Version)
	s.metrics.IncrementArchived()
	return rs, nil
}

func (s *Service) Get(ctx context.Context, ruleSetID id.RuleSetID) (*models.RuleSet, error) {
	rs, err := s.store.FindByID(ctx, ruleSetID)
	if err != nil {
		return nil, wrapStoreErr(err, "failed to load rule set")
	}
	return rs, nil
}

func (s *Service) List(ctx context.Context) ([]*models.RuleSet, error) {
	sets, err := s.store.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list rule sets")
	}
	return sets, nil
}

// Active returns the rule set in force, or CodeNotFound when none is.
func (s *Service) Active(ctx context.Context) (*models.RuleSet, error) {
	rs, err := s.store.Active(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no active rule set")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load active rule set")
	}
	return rs, nil
}

// Import builds a rule set from a bundle and stores it as a draft, or as
// the active rule set when activate is set.
func (s *Service) Import(ctx context.Context, bundle *loader.Bundle, activate bool) (*models.RuleSet, error) {
	now := requestcontext.Now(ctx)
	rs, err := bundle.Build(id.NewRuleSetID(), now)
	if err != nil {
		s.metrics.IncrementImport(false)
		return nil, err
	}

	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.store.Create(txCtx, rs); err != nil {
			return wrapStoreErr(err, "failed to import rule set")
		}
		if !activate {
			return nil
		}
		activated, err := s.store.Activate(txCtx, rs.ID, now)
		if err != nil {
			return wrapStoreErr(err, "failed to activate imported rule set")
		}
		rs = activated
		return nil
	})
	if err != nil {
		s.metrics.IncrementImport(false)
		return nil, err
	}

	s.logAudit(ctx, audit.EventRuleSetImported, audit.Event{Subject: rs.ID.String(), RuleSetVersion: rs.Version, Detail: string(rs.Status)},
		"rule_set_id", rs.ID.String(), "version", rs.Version, "rules", len(rs.Rules), "deadlines", len(rs.Deadlines), "activated", activate)
	s.metrics.IncrementImport(true)
	return rs, nil
}

func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, ev audit.Event, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		attributes = append(attributes, "client_ip", ip)
	}
	if client := requestcontext.Client(ctx); client != "" {
		attributes = append(attributes, "client", client)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	ev.Action = string(event)
	ev.RequestID = requestID
	ev.ActorID = requestcontext.Actor(ctx)
	if err := s.auditPublisher.Emit(ctx, ev); err != nil && s.logger != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event", "event", string(event), "error", err)
	}
}

// asValidation turns model invariant failures into validation errors.
func asValidation(err error) error {
	if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
		return dErrors.New(dErrors.CodeValidation, dErrors.MessageOf(err))
	}
	return err
}

func wrapStoreErr(err error, msg string) error {
	switch {
	case errors.Is(err, sentinel.ErrNotFound):
		return dErrors.New(dErrors.CodeNotFound, "rule set not found")
	case errors.Is(err, sentinel.ErrConflict):
		return dErrors.New(dErrors.CodeConflict, "rule set version already exists")
	case errors.Is(err, sentinel.ErrInvalidState):
		return dErrors.Wrap(err, dErrors.CodeInvalidState, "rule set is not in a state that allows this change")
	case dErrors.HasCode(err, dErrors.CodeConflict), dErrors.HasCode(err, dErrors.CodeInvalidState),
		dErrors.HasCode(err, dErrors.CodeValidation), dErrors.HasCode(err, dErrors.CodeNotFound):
		return err
	default:
		return dErrors.Wrap(err, dErrors.CodeInternal, msg)
	}
}

// lockTx serializes units of work for stores without transactions. It does
// not roll back partial writes.
type lockTx struct {
	mu sync.Mutex
}

func (t *lockTx) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return fn(ctx)
}
