package review

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/agnivade/levenshtein"

	"taxsafe/internal/compliance/models"
	strutil "taxsafe/pkg/platform/strings"
)

const (
	uncategorizedEntity  = "uncategorized"
	uncategorizedHighMin = 10
	duplicateWindowDays  = 2
	minEditDistance      = 2
	editDistanceShare    = 0.2
)

// finding is a detected issue before reconciliation. Affected holds the ids
// the finding is about; the fingerprint is derived from them.
type finding struct {
	Type        models.IssueType
	EntityKey   string
	Severity    models.Severity
	Title       string
	Description string
	Meta        models.IssueMeta
	Affected    []string
}

func (f finding) key() issueKey {
	return issueKey{Type: f.Type, EntityKey: f.EntityKey}
}

func (f finding) fingerprint() string {
	return Fingerprint(f.Affected)
}

// Fingerprint digests a set of affected ids independent of their order.
func Fingerprint(affected []string) string {
	ids := append([]string(nil), affected...)
	sort.Strings(ids)
	sum := sha256.Sum256([]byte(strings.Join(ids, "\n")))
	return hex.EncodeToString(sum[:])
}

func detect(in Input) []finding {
	txs := inYear(in.Transactions, in.TaxYear)

	var out []finding
	if f, ok := detectUncategorized(txs); ok {
		out = append(out, f)
	}
	out = append(out, detectUnknownClassification(txs)...)
	out = append(out, detectMissingMonths(txs, in.TaxYear, models.CompletedMonths(in.TaxYear, in.Now))...)
	out = append(out, detectMissingEvidence(in.Tasks, in.TaxYear)...)
	out = append(out, detectDuplicates(txs)...)
	return out
}

func inYear(txs []models.Transaction, taxYear int) []models.Transaction {
	out := make([]models.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.Date.UTC().Year() == taxYear {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func detectUncategorized(txs []models.Transaction) (finding, bool) {
	var ids []string
	for _, tx := range txs {
		if tx.Kind != models.KindIncome && tx.Kind != models.KindExpense {
			continue
		}
		if strings.TrimSpace(tx.Category) == "" {
			ids = append(ids, tx.ID)
		}
	}
	if len(ids) == 0 {
		return finding{}, false
	}
	severity := models.SeverityMedium
	if len(ids) >= uncategorizedHighMin {
		severity = models.SeverityHigh
	}
	return finding{
		Type:        models.IssueUncategorized,
		EntityKey:   uncategorizedEntity,
		Severity:    severity,
		Title:       "Uncategorized transactions",
		Description: fmt.Sprintf("%d transaction(s) have no category assigned", len(ids)),
		Meta:        models.IssueMeta{TransactionIDs: ids},
		Affected:    ids,
	}, true
}

func detectUnknownClassification(txs []models.Transaction) []finding {
	var out []finding
	for _, tx := range txs {
		if tx.Classification != models.ClassificationUnknown {
			continue
		}
		out = append(out, finding{
			Type:        models.IssueUnknownClassification,
			EntityKey:   "tx:" + tx.ID,
			Severity:    models.SeverityLow,
			Title:       "Business or personal?",
			Description: fmt.Sprintf("Transaction %q on %s is not classified as business or personal", tx.Description, tx.Date.UTC().Format(time.DateOnly)),
			Meta:        models.IssueMeta{TransactionIDs: []string{tx.ID}},
			Affected:    []string{tx.ID},
		})
	}
	return out
}

func detectMissingMonths(txs []models.Transaction, taxYear, completed int) []finding {
	seen := make(map[time.Month]bool)
	for _, tx := range txs {
		seen[tx.Date.UTC().Month()] = true
	}
	var out []finding
	for m := time.January; int(m) <= completed; m++ {
		if seen[m] {
			continue
		}
		month := fmt.Sprintf("%04d-%02d", taxYear, int(m))
		out = append(out, finding{
			Type:        models.IssueMissingMonth,
			EntityKey:   "month:" + month,
			Severity:    models.SeverityMedium,
			Title:       "No transactions recorded for " + m.String(),
			Description: fmt.Sprintf("No transactions were recorded in %s %d", m, taxYear),
			Meta:        models.IssueMeta{Month: month},
			Affected:    []string{month},
		})
	}
	return out
}

func detectMissingEvidence(tasks []models.ComplianceTask, taxYear int) []finding {
	var out []finding
	for _, task := range tasks {
		if task.TaxYear != taxYear || !task.EvidenceRequired {
			continue
		}
		if strutil.AnyNonBlank(task.DocumentIDs) {
			continue
		}
		out = append(out, finding{
			Type:        models.IssueMissingEvidence,
			EntityKey:   "task:" + task.ID,
			Severity:    models.SeverityHigh,
			Title:       "Missing evidence",
			Description: fmt.Sprintf("Task %q requires a supporting document", task.Title),
			Meta:        models.IssueMeta{TaskID: task.ID},
			Affected:    []string{task.ID},
		})
	}
	return out
}

func detectDuplicates(txs []models.Transaction) []finding {
	normalized := make([]string, len(txs))
	for i, tx := range txs {
		normalized[i] = strutil.NormalizeText(tx.Description)
	}

	var out []finding
	for i := 0; i < len(txs); i++ {
		for j := i + 1; j < len(txs); j++ {
			a, b := txs[i], txs[j]
			// txs is sorted by date, so later pairs are further apart.
			if daysApart(a.Date, b.Date) > duplicateWindowDays {
				break
			}
			if a.Kind != b.Kind || !a.Amount.Abs().Equal(b.Amount.Abs()) {
				continue
			}
			if !similar(normalized[i], normalized[j]) {
				continue
			}
			out = append(out, duplicateFinding(a, b, sameDay(a.Date, b.Date) && normalized[i] == normalized[j]))
		}
	}
	return out
}

func duplicateFinding(a, b models.Transaction, exact bool) finding {
	ids := []string{a.ID, b.ID}
	sort.Strings(ids)
	severity := models.SeverityMedium
	if exact {
		severity = models.SeverityHigh
	}
	return finding{
		Type:        models.IssuePossibleDuplicate,
		EntityKey:   "dup:" + ids[0] + ":" + ids[1],
		Severity:    severity,
		Title:       "Possible duplicate transaction",
		Description: fmt.Sprintf("Two %s transactions of %s look like the same payment", a.Kind, a.Amount.Abs().StringFixed(2)),
		Meta:        models.IssueMeta{TransactionIDs: ids, Amount: a.Amount.Abs().String(), Exact: exact},
		Affected:    ids,
	}
}

// similar reports whether two normalized descriptions plausibly describe
// the same payment.
func similar(a, b string) bool {
	if a == "" || b == "" {
		return a == b
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	longer := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	threshold := max(minEditDistance, int(float64(longer)*editDistanceShare))
	return levenshtein.ComputeDistance(a, b) <= threshold
}

func sameDay(a, b time.Time) bool {
	return daysApart(a, b) == 0
}

// daysApart counts UTC calendar days from a to b, ignoring the time of day.
func daysApart(a, b time.Time) int {
	return int(utcDay(b).Sub(utcDay(a)).Hours() / 24)
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
