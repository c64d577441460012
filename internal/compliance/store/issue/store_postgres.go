package issue

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	"taxsafe/pkg/platform/sentinel"
	txcontext "taxsafe/pkg/platform/tx"
)

const uniqueViolation = "23505"

const issueColumns = `id, business_id, tax_year, type, severity, status, entity_key, fingerprint,
	title, description, meta, created_at, updated_at, resolved_at`

// PostgresStore persists review issues in PostgreSQL. The partial unique
// index review_issues_open_entity keeps one open issue per entity.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) runInTx(ctx context.Context, fn func(q txcontext.Querier) error) error {
	return txcontext.Run(ctx, s.db, "issue", fn)
}

func (s *PostgresStore) ListByYear(ctx context.Context, businessID id.BusinessID, taxYear int) ([]models.ReviewIssue, error) {
	query := `SELECT ` + issueColumns + `
		FROM review_issues
		WHERE business_id = $1 AND tax_year = $2
		ORDER BY created_at, id`
	rows, err := txcontext.Conn(ctx, s.db).QueryContext(ctx, query, uuid.UUID(businessID), taxYear)
	if err != nil {
		return nil, fmt.Errorf("list review issues: %w", err)
	}
	defer rows.Close()

	out := []models.ReviewIssue{}
	for rows.Next() {
		issue, err := scanIssue(rows)
		if err != nil {
			return nil, fmt.Errorf("scan review issue: %w", err)
		}
		out = append(out, *issue)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate review issues: %w", err)
	}
	return out, nil
}

// ApplyScan writes one scan outcome in a single transaction. Updates run
// before inserts so a resolved issue releases its entity first.
func (s *PostgresStore) ApplyScan(ctx context.Context, created, changed []models.ReviewIssue) error {
	return s.runInTx(ctx, func(q txcontext.Querier) error {
		for i := range changed {
			if err := updateIssue(ctx, q, &changed[i]); err != nil {
				return err
			}
		}
		for i := range created {
			if err := insertIssue(ctx, q, &created[i]); err != nil {
				return err
			}
		}
		return nil
	})
}

// Execute locks the row, validates, mutates and writes it back.
func (s *PostgresStore) Execute(ctx context.Context, issueID id.IssueID, validate func(*models.ReviewIssue) error, mutate func(*models.ReviewIssue)) (*models.ReviewIssue, error) {
	var result *models.ReviewIssue
	err := s.runInTx(ctx, func(q txcontext.Querier) error {
		row := q.QueryRowContext(ctx, `SELECT `+issueColumns+` FROM review_issues WHERE id = $1 FOR UPDATE`, uuid.UUID(issueID))
		issue, err := scanIssue(row)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return sentinel.ErrNotFound
			}
			return fmt.Errorf("find review issue: %w", err)
		}
		if err := validate(issue); err != nil {
			return err
		}
		mutate(issue)
		if err := updateIssue(ctx, q, issue); err != nil {
			return err
		}
		result = issue
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func insertIssue(ctx context.Context, q txcontext.Querier, issue *models.ReviewIssue) error {
	meta, err := json.Marshal(issue.Meta)
	if err != nil {
		return fmt.Errorf("marshal issue meta: %w", err)
	}
	_, err = q.ExecContext(ctx, `
		INSERT INTO review_issues (`+issueColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		uuid.UUID(issue.ID), uuid.UUID(issue.BusinessID), issue.TaxYear,
		string(issue.Type), string(issue.Severity), string(issue.Status),
		issue.EntityKey, issue.Fingerprint, issue.Title, issue.Description, string(meta),
		issue.CreatedAt, issue.UpdatedAt, issue.ResolvedAt,
	)
	if err != nil {
		return translate(err, "insert review issue")
	}
	return nil
}

func updateIssue(ctx context.Context, q txcontext.Querier, issue *models.ReviewIssue) error {
	meta, err := json.Marshal(issue.Meta)
	if err != nil {
		return fmt.Errorf("marshal issue meta: %w", err)
	}
	res, err := q.ExecContext(ctx, `
		UPDATE review_issues SET
			severity = $2, status = $3, fingerprint = $4, title = $5,
			description = $6, meta = $7, updated_at = $8, resolved_at = $9
		WHERE id = $1`,
		uuid.UUID(issue.ID), string(issue.Severity), string(issue.Status),
		issue.Fingerprint, issue.Title, issue.Description, string(meta),
		issue.UpdatedAt, issue.ResolvedAt,
	)
	if err != nil {
		return translate(err, "update review issue")
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update review issue rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("update review issue %s: %w", issue.ID, sentinel.ErrNotFound)
	}
	return nil
}

func translate(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIssue(row rowScanner) (*models.ReviewIssue, error) {
	var (
		issueID, businessID         uuid.UUID
		issueType, severity, status string
		meta                        []byte
		resolvedAt                  sql.NullTime
		createdAt, updatedAt        time.Time
		issue                       models.ReviewIssue
	)
	err := row.Scan(&issueID, &businessID, &issue.TaxYear, &issueType, &severity, &status,
		&issue.EntityKey, &issue.Fingerprint, &issue.Title, &issue.Description, &meta,
		&createdAt, &updatedAt, &resolvedAt)
	if err != nil {
		return nil, err
	}
	if len(meta) > 0 {
		if err := json.Unmarshal(meta, &issue.Meta); err != nil {
			return nil, fmt.Errorf("unmarshal issue meta: %w", err)
		}
	}
	issue.ID = id.IssueID(issueID)
	issue.BusinessID = id.BusinessID(businessID)
	issue.Type = models.IssueType(issueType)
	issue.Severity = models.Severity(severity)
	issue.Status = models.IssueStatus(status)
	issue.CreatedAt = createdAt.UTC()
	issue.UpdatedAt = updatedAt.UTC()
	if resolvedAt.Valid {
		t := resolvedAt.Time.UTC()
		issue.ResolvedAt = &t
	}
	return &issue, nil
}
