package handler

import (
	"taxsafe/internal/compliance/models"
	"taxsafe/internal/compliance/service"
)

type IssuesResponse struct {
	Issues []models.ReviewIssue `json:"issues"`
}

type RefreshItem struct {
	BusinessID string                 `json:"business_id"`
	Score      *models.TaxSafetyScore `json:"score,omitempty"`
	OpenIssues int                    `json:"open_issues"`
	Error      string                 `json:"error,omitempty"`
}

type RefreshResponse struct {
	Results  []RefreshItem `json:"results"`
	Failures int           `json:"failures"`
}

func FromIssues(issues []models.ReviewIssue) *IssuesResponse {
	if issues == nil {
		issues = []models.ReviewIssue{}
	}
	return &IssuesResponse{Issues: issues}
}

// FromRefresh renders per-business results. Only the error code is exposed.
func FromRefresh(results []service.RefreshResult) *RefreshResponse {
	resp := &RefreshResponse{Results: make([]RefreshItem, 0, len(results))}
	for _, r := range results {
		item := RefreshItem{
			BusinessID: r.BusinessID.String(),
			Score:      r.Score,
			OpenIssues: r.OpenIssues,
		}
		if r.Err != nil {
			item.Error = errorCode(r.Err)
			resp.Failures++
		}
		resp.Results = append(resp.Results, item)
	}
	return resp
}
