// Package review scans bookkeeping data for defects that would undermine a
// filing and reconciles the findings against previously raised issues.
//
// Issues are keyed by (type, entity key). Reconciliation rules:
//   - an open issue that is still detected is updated in place
//   - an open issue that is no longer detected is resolved
//   - a dismissed issue stays dismissed while its affected data is unchanged;
//     new affected data raises a fresh issue
//   - a resolved issue is never reopened; detection raises a fresh issue
package review

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
)

// Input is the data scanned for one business and tax year. Existing holds the
// issues previously raised for the same business and year.
type Input struct {
	BusinessID   id.BusinessID
	TaxYear      int
	Transactions []models.Transaction
	Tasks        []models.ComplianceTask
	Existing     []models.ReviewIssue
	Now          time.Time
	NewID        func() id.IssueID
}

// Result splits the reconciled issues by what happened to them. Open lists
// every issue open after the scan, sorted by type then entity key.
type Result struct {
	Open     []models.ReviewIssue
	Created  []models.ReviewIssue
	Updated  []models.ReviewIssue
	Resolved []models.ReviewIssue
}

// Changed reports whether anything needs to be persisted.
func (r Result) Changed() bool {
	return len(r.Created)+len(r.Updated)+len(r.Resolved) > 0
}

type issueKey struct {
	Type      models.IssueType
	EntityKey string
}

type history struct {
	open      *models.ReviewIssue
	dismissed []models.ReviewIssue
}

// Scan detects issues and reconciles them. Input slices are not modified.
func Scan(in Input) Result {
	newID := in.NewID
	if newID == nil {
		newID = func() id.IssueID { return id.IssueID(uuid.New()) }
	}

	histories := make(map[issueKey]*history)
	for _, existing := range in.Existing {
		if existing.TaxYear != in.TaxYear {
			continue
		}
		k := issueKey{Type: existing.Type, EntityKey: existing.EntityKey}
		h := histories[k]
		if h == nil {
			h = &history{}
			histories[k] = h
		}
		switch existing.Status {
		case models.IssueOpen:
			issue := existing.Clone()
			h.open = &issue
		case models.IssueDismissed:
			h.dismissed = append(h.dismissed, existing)
		}
	}

	var res Result
	detected := make(map[issueKey]bool)
	for _, f := range detect(in) {
		k := f.key()
		detected[k] = true
		h := histories[k]

		if h != nil && h.open != nil {
			if refresh(h.open, f, in.Now) {
				res.Updated = append(res.Updated, *h.open)
			}
			res.Open = append(res.Open, *h.open)
			continue
		}
		if h != nil && coveredByDismissal(h.dismissed, f) {
			continue
		}
		issue := newIssue(newID(), in.BusinessID, in.TaxYear, f, in.Now)
		res.Created = append(res.Created, issue)
		res.Open = append(res.Open, issue)
	}

	for k, h := range histories {
		if h.open == nil || detected[k] {
			continue
		}
		h.open.ApplyResolution(in.Now)
		res.Resolved = append(res.Resolved, *h.open)
	}

	sortIssues(res.Open)
	sortIssues(res.Resolved)
	return res
}

func newIssue(issueID id.IssueID, businessID id.BusinessID, taxYear int, f finding, now time.Time) models.ReviewIssue {
	return models.ReviewIssue{
		ID:          issueID,
		BusinessID:  businessID,
		TaxYear:     taxYear,
		Type:        f.Type,
		Severity:    f.Severity,
		Status:      models.IssueOpen,
		EntityKey:   f.EntityKey,
		Fingerprint: f.fingerprint(),
		Title:       f.Title,
		Description: f.Description,
		Meta:        f.Meta,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// refresh copies the finding onto an open issue and reports whether anything
// changed.
func refresh(issue *models.ReviewIssue, f finding, now time.Time) bool {
	fp := f.fingerprint()
	if issue.Fingerprint == fp && issue.Severity == f.Severity &&
		issue.Title == f.Title && issue.Description == f.Description {
		return false
	}
	issue.Fingerprint = fp
	issue.Severity = f.Severity
	issue.Title = f.Title
	issue.Description = f.Description
	issue.Meta = f.Meta
	issue.UpdatedAt = now
	return true
}

// coveredByDismissal reports whether some dismissed issue already accounted
// for every id the finding is about.
func coveredByDismissal(dismissed []models.ReviewIssue, f finding) bool {
	fp := f.fingerprint()
	for _, d := range dismissed {
		if d.Fingerprint == fp {
			return true
		}
		if covers(affectedBy(d), f.Affected) {
			return true
		}
	}
	return false
}

func affectedBy(issue models.ReviewIssue) []string {
	switch {
	case len(issue.Meta.TransactionIDs) > 0:
		return issue.Meta.TransactionIDs
	case issue.Meta.Month != "":
		return []string{issue.Meta.Month}
	case issue.Meta.TaskID != "":
		return []string{issue.Meta.TaskID}
	}
	return nil
}

func covers(known, affected []string) bool {
	if len(known) == 0 {
		return false
	}
	set := make(map[string]struct{}, len(known))
	for _, k := range known {
		set[k] = struct{}{}
	}
	for _, a := range affected {
		if _, ok := set[a]; !ok {
			return false
		}
	}
	return true
}

func sortIssues(issues []models.ReviewIssue) {
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].Type != issues[j].Type {
			return issues[i].Type < issues[j].Type
		}
		return issues[i].EntityKey < issues[j].EntityKey
	})
}
