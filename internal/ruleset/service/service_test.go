package service

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"taxsafe/internal/compliance/condition"
	"taxsafe/internal/compliance/models"
	"taxsafe/internal/ruleset/loader"
	"taxsafe/internal/ruleset/service/mocks"
	"taxsafe/internal/ruleset/store/memory"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
	"taxsafe/pkg/platform/audit"
	"taxsafe/pkg/platform/sentinel"
	"taxsafe/pkg/requestcontext"
)

// ServiceSuite runs the admin service against the in-memory store; store
// failures are driven through a gomock Store.
type ServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	store   *memory.Store
	auditor *mocks.MockAuditPublisher
	service *Service
	ctx     context.Context
	now     time.Time
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.store = memory.New()
	s.auditor = mocks.NewMockAuditPublisher(s.ctrl)
	s.auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	s.service = New(s.store, WithAuditPublisher(s.auditor))
	s.now = time.Date(2025, 1, 2, 8, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(requestcontext.WithRequestID(context.Background(), "req-1"), s.now)
}

func (s *ServiceSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *ServiceSuite) createDraft(version string) *models.RuleSet {
	rs, err := s.service.CreateRuleSet(s.ctx, CreateRuleSetInput{
		Version:       version,
		Name:          "Rules " + version,
		EffectiveFrom: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	s.Require().NoError(err)
	return rs
}

func exemptRule(key string) RuleInput {
	exempt := "exempt"
	return RuleInput{
		Key:        key,
		Type:       models.RuleTypeEligibility,
		Priority:   10,
		Conditions: condition.Leaf{Field: "annualTurnoverNGN", Op: condition.OpLte, Value: 25_000_000},
		Outcome:    models.OutcomePatch{CITStatus: &exempt},
	}
}

// =============================================================================
// CreateRuleSet
// =============================================================================

func (s *ServiceSuite) TestCreateRuleSet() {
	s.Run("creates a draft", func() {
		rs := s.createDraft("2025.1")
		s.Equal(models.RuleSetStatusDraft, rs.Status)
		s.Equal(s.now, rs.CreatedAt)
	})

	s.Run("duplicate version is a conflict", func() {
		_, err := s.service.CreateRuleSet(s.ctx, CreateRuleSetInput{
			Version: "2025.1", Name: "again", EffectiveFrom: s.now,
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("invalid header is a validation error", func() {
		_, err := s.service.CreateRuleSet(s.ctx, CreateRuleSetInput{Version: "", Name: "n", EffectiveFrom: s.now})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("emits an audit event with the request id", func() {
		auditor := mocks.NewMockAuditPublisher(s.ctrl)
		svc := New(s.store, WithAuditPublisher(auditor))
		auditor.EXPECT().Emit(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, ev audit.Event) error {
			s.Equal(string(audit.EventRuleSetCreated), ev.Action)
			s.Equal("2025.9", ev.RuleSetVersion)
			s.Equal("req-1", ev.RequestID)
			return nil
		})
		_, err := svc.CreateRuleSet(s.ctx, CreateRuleSetInput{Version: "2025.9", Name: "n", EffectiveFrom: s.now})
		s.Require().NoError(err)
	})
}

// =============================================================================
// AddRule / AddDeadlineTemplate
// =============================================================================

func (s *ServiceSuite) TestAddRule() {
	rs := s.createDraft("2025.1")

	s.Run("appends to a draft", func() {
		got, err := s.service.AddRule(s.ctx, rs.ID, exemptRule("cit_exempt"))
		s.Require().NoError(err)
		s.Require().Len(got.Rules, 1)
		s.Equal("cit_exempt", got.Rules[0].Key)
	})

	s.Run("duplicate key conflicts", func() {
		_, err := s.service.AddRule(s.ctx, rs.ID, exemptRule("cit_exempt"))
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("invalid rule is a validation error", func() {
		in := exemptRule("Bad Key")
		_, err := s.service.AddRule(s.ctx, rs.ID, in)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("active rule set rejects edits", func() {
		_, err := s.service.Activate(s.ctx, rs.ID)
		s.Require().NoError(err)
		_, err = s.service.AddRule(s.ctx, rs.ID, exemptRule("another"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("referenced draft rejects edits", func() {
		draft := s.createDraft("2025.2")
		s.Require().NoError(s.store.MarkReferenced(s.ctx, draft.ID))
		_, err := s.service.AddRule(s.ctx, draft.ID, exemptRule("another"))
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("unknown rule set", func() {
		_, err := s.service.AddRule(s.ctx, id.NewRuleSetID(), exemptRule("x"))
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *ServiceSuite) TestAddDeadlineTemplate() {
	rs := s.createDraft("2025.1")
	day := 21

	got, err := s.service.AddDeadlineTemplate(s.ctx, rs.ID, models.DeadlineTemplate{
		Key: "vat_monthly", TaxType: "VAT", Frequency: models.FrequencyMonthly, DueDayOfMonth: &day, Title: "VAT return",
	})
	s.Require().NoError(err)
	s.Require().Len(got.Deadlines, 1)
	s.NotEqual(uuid.Nil, got.Deadlines[0].ID)

	_, err = s.service.AddDeadlineTemplate(s.ctx, rs.ID, models.DeadlineTemplate{
		Key: "cit", TaxType: "CIT", Frequency: models.FrequencyAnnual, Title: "CIT",
	})
	s.True(dErrors.HasCode(err, dErrors.CodeValidation), "annual template needs a month and day")
}

// =============================================================================
// Lifecycle
// =============================================================================

func (s *ServiceSuite) TestLifecycle() {
	s.Run("no active rule set", func() {
		_, err := s.service.Active(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	first := s.createDraft("2025.1")
	second := s.createDraft("2025.2")

	s.Run("activation swaps the active rule set", func() {
		_, err := s.service.Activate(s.ctx, first.ID)
		s.Require().NoError(err)
		_, err = s.service.Activate(s.ctx, second.ID)
		s.Require().NoError(err)

		active, err := s.service.Active(s.ctx)
		s.Require().NoError(err)
		s.Equal(second.ID, active.ID)

		prev, err := s.service.Get(s.ctx, first.ID)
		s.Require().NoError(err)
		s.Equal(models.RuleSetStatusArchived, prev.Status)
	})

	s.Run("activating twice is an invalid state", func() {
		_, err := s.service.Activate(s.ctx, second.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("archiving the active rule set leaves none active", func() {
		archived, err := s.service.Archive(s.ctx, second.ID)
		s.Require().NoError(err)
		s.Equal(models.RuleSetStatusArchived, archived.Status)

		_, err = s.service.Active(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("archiving twice is an invalid state", func() {
		_, err := s.service.Archive(s.ctx, second.ID)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	s.Run("archived rule sets can be reactivated", func() {
		_, err := s.service.Activate(s.ctx, first.ID)
		s.NoError(err)
	})

	s.Run("list returns every version", func() {
		sets, err := s.service.List(s.ctx)
		s.Require().NoError(err)
		s.Len(sets, 2)
	})
}

// =============================================================================
// Import
// =============================================================================

const bundleYAML = `
version: "2025.1"
name: Imported
effective_from: 2025-01-01
rules:
  - key: cit_exempt
    type: eligibility
    conditions: {field: annualTurnoverNGN, op: lte, value: 25000000}
    outcome: {cit_status: exempt}
deadlines:
  - {key: cit_annual, tax_type: CIT, frequency: annual, due_month: 6, due_day: 30, title: CIT return}
`

func (s *ServiceSuite) TestImport() {
	s.Run("imports and activates", func() {
		bundle, err := loader.Load(strings.NewReader(bundleYAML))
		s.Require().NoError(err)

		rs, err := s.service.Import(s.ctx, bundle, true)
		s.Require().NoError(err)
		s.Equal(models.RuleSetStatusActive, rs.Status)
		s.Len(rs.Rules, 1)
		s.Len(rs.Deadlines, 1)

		active, err := s.service.Active(s.ctx)
		s.Require().NoError(err)
		s.Equal(rs.ID, active.ID)
	})

	s.Run("reimporting the same version conflicts", func() {
		bundle, err := loader.Load(strings.NewReader(bundleYAML))
		s.Require().NoError(err)
		_, err = s.service.Import(s.ctx, bundle, false)
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("invalid bundle is rejected before the store", func() {
		store := mocks.NewMockStore(s.ctrl)
		svc := New(store)
		bundle := &loader.Bundle{Version: "v1", Name: "n", EffectiveFrom: "not-a-date"}
		_, err := svc.Import(s.ctx, bundle, true)
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("runs inside the configured transaction", func() {
		store := mocks.NewMockStore(s.ctrl)
		tx := mocks.NewMockStoreTx(s.ctrl)
		svc := New(store, WithTx(tx))
		bundle, err := loader.Load(strings.NewReader(bundleYAML))
		s.Require().NoError(err)

		boom := errors.New("activate failed")
		tx.EXPECT().RunInTx(gomock.Any(), gomock.Any()).DoAndReturn(func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		})
		store.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil)
		store.EXPECT().Activate(gomock.Any(), gomock.Any(), s.now).Return(nil, boom)

		_, err = svc.Import(s.ctx, bundle, true)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
		s.ErrorIs(err, boom)
	})
}

// =============================================================================
// Store failures
// =============================================================================

func (s *ServiceSuite) TestStoreFailures() {
	store := mocks.NewMockStore(s.ctrl)
	svc := New(store)
	ruleSetID := id.NewRuleSetID()

	s.Run("lookup of a missing rule set", func() {
		store.EXPECT().FindByID(gomock.Any(), ruleSetID).Return(nil, sentinel.ErrNotFound)
		_, err := svc.Get(s.ctx, ruleSetID)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("unexpected store error is internal", func() {
		store.EXPECT().List(gomock.Any()).Return(nil, errors.New("connection reset"))
		_, err := svc.List(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})

	s.Run("active lookup failure is internal", func() {
		store.EXPECT().Active(gomock.Any()).Return(nil, errors.New("connection reset"))
		_, err := svc.Active(s.ctx)
		s.True(dErrors.HasCode(err, dErrors.CodeInternal))
	})
}
