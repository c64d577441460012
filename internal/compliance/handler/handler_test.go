package handler

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"taxsafe/internal/compliance/handler/mocks"
	"taxsafe/internal/compliance/models"
	"taxsafe/internal/compliance/service"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
	"taxsafe/pkg/testutil"
)

type HandlerSuite struct {
	suite.Suite
	ctrl       *gomock.Controller
	service    *mocks.MockService
	router     http.Handler
	businessID id.BusinessID
}

func TestHandlerSuite(t *testing.T) {
	suite.Run(t, new(HandlerSuite))
}

func (s *HandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r := chi.NewRouter()
	New(s.service, logger).Register(r)
	s.router = r
	s.businessID = id.BusinessID(uuid.New())
}

func (s *HandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func (s *HandlerSuite) TestEvaluate() {
	s.Run("returns the evaluation", func() {
		s.service.EXPECT().Evaluate(gomock.Any(), s.businessID, 2025).Return(&models.Evaluation{
			ID:             id.NewEvaluationID(),
			BusinessID:     s.businessID,
			TaxYear:        2025,
			RuleSetVersion: "ng-2025.1",
			Outcome:        models.BaselineOutcome(),
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/compliance/evaluate",
			map[string]any{"business_id": s.businessID.String(), "tax_year": 2025}))
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
		got := testutil.UnmarshalResponse[models.Evaluation](s.T(), rr)
		s.Equal("ng-2025.1", got.RuleSetVersion)
		s.Equal(models.StatusUnknown, got.Outcome.CITStatus)
	})

	s.Run("rejects a bad business id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/compliance/evaluate",
			map[string]any{"business_id": "nope", "tax_year": 2025}))
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("rejects an out of range tax year", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/compliance/evaluate",
			map[string]any{"business_id": s.businessID.String(), "tax_year": 1999}))
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("unknown business", func() {
		s.service.EXPECT().Evaluate(gomock.Any(), s.businessID, 2025).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "business profile not found"))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/compliance/evaluate",
			map[string]any{"business_id": s.businessID.String(), "tax_year": 2025}))
		testutil.AssertAPIError(s.T(), rr, http.StatusNotFound, "not_found")
	})

	s.Run("internal errors hide their description", func() {
		s.service.EXPECT().Evaluate(gomock.Any(), s.businessID, 2025).
			Return(nil, dErrors.Wrap(errors.New("pq: connection refused"), dErrors.CodeInternal, "failed to save evaluation"))
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/compliance/evaluate",
			map[string]any{"business_id": s.businessID.String(), "tax_year": 2025}))
		s.Require().Equal(http.StatusInternalServerError, rr.Code)
		body := testutil.UnmarshalErrorResponse(s.T(), rr)
		s.NotContains(body, "error_description")
	})
}

func (s *HandlerSuite) TestDryRun() {
	ruleSetID := id.NewRuleSetID()

	s.Run("passes the synthetic profile through", func() {
		s.service.EXPECT().DryRun(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req service.DryRunRequest) (*models.Evaluation, error) {
				s.Equal(2025, req.TaxYear)
				s.Require().NotNil(req.RuleSetID)
				s.Equal(ruleSetID, *req.RuleSetID)
				s.Equal("company", req.Profile["businessType"])
				s.EqualValues(40_000_000, req.Profile["annualTurnoverNGN"])
				return &models.Evaluation{ID: id.NewEvaluationID(), BusinessID: s.businessID, TaxYear: 2025, DryRun: true}, nil
			})

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/compliance/dry-run", map[string]any{
			"profile":     map[string]any{"businessType": "company", "annualTurnoverNGN": 40_000_000},
			"tax_year":    2025,
			"rule_set_id": ruleSetID.String(),
		}))
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
		s.True(testutil.UnmarshalResponse[models.Evaluation](s.T(), rr).DryRun)
	})

	s.Run("empty profile is allowed", func() {
		s.service.EXPECT().DryRun(gomock.Any(), gomock.Any()).Return(&models.Evaluation{ID: id.NewEvaluationID(), BusinessID: s.businessID, DryRun: true}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/compliance/dry-run",
			map[string]any{"tax_year": 2025}))
		s.Equal(http.StatusOK, rr.Code)
	})

	s.Run("bad rule set id", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/compliance/dry-run",
			map[string]any{"tax_year": 2025, "rule_set_id": "x"}))
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}

func (s *HandlerSuite) TestScoreAndIssues() {
	base := "/businesses/" + s.businessID.String()

	s.Run("score requires a tax year", func() {
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, base+"/score"))
		s.Equal(http.StatusBadRequest, rr.Code)
	})

	s.Run("score", func() {
		s.service.EXPECT().Score(gomock.Any(), s.businessID, 2025).
			Return(&models.TaxSafetyScore{BusinessID: s.businessID, TaxYear: 2025, Score: 80, Band: models.BandMedium}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, base+"/score?tax_year=2025"))
		s.Require().Equal(http.StatusOK, rr.Code)
		got := testutil.UnmarshalResponse[models.TaxSafetyScore](s.T(), rr)
		s.Equal(80, got.Score)
	})

	s.Run("latest score not yet computed", func() {
		s.service.EXPECT().LatestScore(gomock.Any(), s.businessID, 2025).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "score not found"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, base+"/score/latest?tax_year=2025"))
		s.Equal(http.StatusNotFound, rr.Code)
	})

	s.Run("scan returns open issues", func() {
		issue := models.ReviewIssue{ID: id.NewIssueID(), BusinessID: s.businessID, TaxYear: 2025,
			Type: models.IssueMissingEvidence, Status: models.IssueOpen, EntityKey: "tx-1",
			CreatedAt: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)}
		s.service.EXPECT().Scan(gomock.Any(), s.businessID, 2025).Return([]models.ReviewIssue{issue}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, base+"/scan?tax_year=2025"))
		s.Require().Equal(http.StatusOK, rr.Code)
		got := testutil.UnmarshalResponse[IssuesResponse](s.T(), rr)
		s.Require().Len(got.Issues, 1)
		s.Equal(issue.ID, got.Issues[0].ID)
	})

	s.Run("issues list is never null", func() {
		s.service.EXPECT().ListIssues(gomock.Any(), s.businessID, 2025).Return(nil, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, base+"/issues?tax_year=2025"))
		s.Require().Equal(http.StatusOK, rr.Code)
		s.JSONEq(`{"issues":[]}`, rr.Body.String())
	})
}

func (s *HandlerSuite) TestDismiss() {
	issueID := id.NewIssueID()

	s.Run("dismisses an open issue", func() {
		s.service.EXPECT().DismissIssue(gomock.Any(), issueID).
			Return(&models.ReviewIssue{ID: issueID, BusinessID: s.businessID, Status: models.IssueDismissed}, nil)
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/issues/"+issueID.String()+"/dismiss"))
		s.Require().Equal(http.StatusOK, rr.Code)
		s.Equal(models.IssueDismissed, testutil.UnmarshalResponse[models.ReviewIssue](s.T(), rr).Status)
	})

	s.Run("already closed", func() {
		s.service.EXPECT().DismissIssue(gomock.Any(), issueID).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "only open issues can be dismissed"))
		rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodPost, "/issues/"+issueID.String()+"/dismiss"))
		testutil.AssertAPIError(s.T(), rr, http.StatusConflict, "invalid_state")
	})
}

func (s *HandlerSuite) TestRefresh() {
	other := id.BusinessID(uuid.New())

	s.Run("reports per-business failures", func() {
		s.service.EXPECT().Refresh(gomock.Any(), []id.BusinessID{s.businessID, other}, 2025).Return([]service.RefreshResult{
			{BusinessID: s.businessID, Score: &models.TaxSafetyScore{BusinessID: s.businessID, Score: 100}, OpenIssues: 0},
			{BusinessID: other, Err: dErrors.New(dErrors.CodeNotFound, "business profile not found")},
		}, nil)

		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/compliance/refresh", map[string]any{
			"business_ids": []string{s.businessID.String(), other.String(), s.businessID.String()},
			"tax_year":     2025,
		}))
		s.Require().Equal(http.StatusOK, rr.Code, rr.Body.String())
		got := testutil.UnmarshalResponse[RefreshResponse](s.T(), rr)
		s.Equal(1, got.Failures)
		s.Require().Len(got.Results, 2)
		s.Equal(string(dErrors.CodeNotFound), got.Results[1].Error)
	})

	s.Run("requires business ids", func() {
		rr := testutil.DoRequest(s.router, testutil.NewJSONRequest(s.T(), http.MethodPost, "/compliance/refresh",
			map[string]any{"tax_year": 2025}))
		s.Equal(http.StatusBadRequest, rr.Code)
	})
}
