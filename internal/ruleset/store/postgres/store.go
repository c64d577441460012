// Package postgres persists rule sets in PostgreSQL. Condition trees are
// stored as JSONB and parsed leniently on read, so a malformed stored tree
// degrades to a never-matching node instead of failing the whole rule set.
package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"taxsafe/internal/compliance/condition"
	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	"taxsafe/pkg/platform/sentinel"
	txcontext "taxsafe/pkg/platform/tx"
)

const uniqueViolation = "23505"

// activationLock serializes activations through a transaction-scoped
// advisory lock.
const activationLock = 0x7461787361666501

const ruleSetColumns = `id, version, name, status, effective_from, effective_to, description, referenced, created_at, updated_at`

type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) runInTx(ctx context.Context, fn func(q txcontext.Querier) error) error {
	return txcontext.Run(ctx, s.db, "rule set", fn)
}

func (s *Store) Create(ctx context.Context, rs *models.RuleSet) error {
	return s.runInTx(ctx, func(q txcontext.Querier) error {
		_, err := q.ExecContext(ctx, `
			INSERT INTO rule_sets (`+ruleSetColumns+`)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			uuid.UUID(rs.ID), rs.Version, rs.Name, string(rs.Status), rs.EffectiveFrom, rs.EffectiveTo,
			rs.Description, rs.Referenced, rs.CreatedAt, rs.UpdatedAt,
		)
		if err != nil {
			return translate(err, "insert rule set")
		}
		return writeChildren(ctx, q, rs)
	})
}

func (s *Store) FindByID(ctx context.Context, ruleSetID id.RuleSetID) (*models.RuleSet, error) {
	return s.load(ctx, txcontext.Conn(ctx, s.db), `SELECT `+ruleSetColumns+` FROM rule_sets WHERE id = $1`, uuid.UUID(ruleSetID))
}

// Active returns sentinel.ErrNotFound when no rule set is active.
func (s *Store) Active(ctx context.Context) (*models.RuleSet, error) {
	return s.load(ctx, txcontext.Conn(ctx, s.db), `SELECT `+ruleSetColumns+` FROM rule_sets WHERE status = 'active'`)
}

func (s *Store) List(ctx context.Context) ([]*models.RuleSet, error) {
	q := txcontext.Conn(ctx, s.db)
	rows, err := q.QueryContext(ctx, `SELECT `+ruleSetColumns+` FROM rule_sets ORDER BY effective_from DESC, version DESC`)
	if err != nil {
		return nil, fmt.Errorf("list rule sets: %w", err)
	}
	var out []*models.RuleSet
	for rows.Next() {
		rs, err := scanRuleSet(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan rule set: %w", err)
		}
		out = append(out, rs)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate rule sets: %w", err)
	}
	_ = rows.Close()

	for _, rs := range out {
		if err := loadChildren(ctx, q, rs); err != nil {
			return nil, err
		}
	}
	if out == nil {
		out = []*models.RuleSet{}
	}
	return out, nil
}

// Update locks the rule set, applies fn and rewrites it. Children are
// replaced wholesale; only drafts gain children so the rewrite stays small.
func (s *Store) Update(ctx context.Context, ruleSetID id.RuleSetID, fn func(*models.RuleSet) error) (*models.RuleSet, error) {
	var result *models.RuleSet
	err := s.runInTx(ctx, func(q txcontext.Querier) error {
		rs, err := s.load(ctx, q, `SELECT `+ruleSetColumns+` FROM rule_sets WHERE id = $1 FOR UPDATE`, uuid.UUID(ruleSetID))
		if err != nil {
			return err
		}
		wasActive := rs.IsActive()
		if err := fn(rs); err != nil {
			return err
		}
		if rs.IsActive() && !wasActive {
			return fmt.Errorf("rule set %s cannot become active through update: %w", ruleSetID, sentinel.ErrInvalidState)
		}
		if err := updateHeader(ctx, q, rs); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM rules WHERE rule_set_id = $1`, uuid.UUID(rs.ID)); err != nil {
			return fmt.Errorf("clear rules: %w", err)
		}
		if _, err := q.ExecContext(ctx, `DELETE FROM deadline_templates WHERE rule_set_id = $1`, uuid.UUID(rs.ID)); err != nil {
			return fmt.Errorf("clear deadline templates: %w", err)
		}
		if err := writeChildren(ctx, q, rs); err != nil {
			return err
		}
		result = rs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Activate archives the current active rule set and activates ruleSetID in
// one transaction. The partial unique index rule_sets_single_active backs
// the advisory lock.
func (s *Store) Activate(ctx context.Context, ruleSetID id.RuleSetID, now time.Time) (*models.RuleSet, error) {
	var result *models.RuleSet
	err := s.runInTx(ctx, func(q txcontext.Querier) error {
		if _, err := q.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(activationLock)); err != nil {
			return fmt.Errorf("acquire activation lock: %w", err)
		}
		rs, err := s.load(ctx, q, `SELECT `+ruleSetColumns+` FROM rule_sets WHERE id = $1 FOR UPDATE`, uuid.UUID(ruleSetID))
		if err != nil {
			return err
		}
		if err := rs.CanActivate(); err != nil {
			return err
		}
		if _, err := q.ExecContext(ctx,
			`UPDATE rule_sets SET status = 'archived', updated_at = $1 WHERE status = 'active'`, now); err != nil {
			return fmt.Errorf("archive active rule set: %w", err)
		}
		rs.Status = models.RuleSetStatusActive
		rs.UpdatedAt = now
		if err := updateHeader(ctx, q, rs); err != nil {
			return err
		}
		result = rs
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Store) MarkReferenced(ctx context.Context, ruleSetID id.RuleSetID) error {
	res, err := txcontext.Conn(ctx, s.db).ExecContext(ctx, `UPDATE rule_sets SET referenced = TRUE WHERE id = $1`, uuid.UUID(ruleSetID))
	if err != nil {
		return fmt.Errorf("mark rule set referenced: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark rule set referenced rows affected: %w", err)
	}
	if rows == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *Store) load(ctx context.Context, q txcontext.Querier, query string, args ...any) (*models.RuleSet, error) {
	rs, err := scanRuleSet(q.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find rule set: %w", err)
	}
	if err := loadChildren(ctx, q, rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func updateHeader(ctx context.Context, q txcontext.Querier, rs *models.RuleSet) error {
	_, err := q.ExecContext(ctx, `
		UPDATE rule_sets SET
			name = $2, status = $3, effective_from = $4, effective_to = $5,
			description = $6, referenced = $7, updated_at = $8
		WHERE id = $1`,
		uuid.UUID(rs.ID), rs.Name, string(rs.Status), rs.EffectiveFrom, rs.EffectiveTo,
		rs.Description, rs.Referenced, rs.UpdatedAt,
	)
	if err != nil {
		return translate(err, "update rule set")
	}
	return nil
}

func writeChildren(ctx context.Context, q txcontext.Querier, rs *models.RuleSet) error {
	for i, r := range rs.Rules {
		conditions, err := condition.Marshal(r.Conditions)
		if err != nil {
			return fmt.Errorf("marshal rule %s conditions: %w", r.Key, err)
		}
		outcome, err := json.Marshal(r.Outcome)
		if err != nil {
			return fmt.Errorf("marshal rule %s outcome: %w", r.Key, err)
		}
		_, err = q.ExecContext(ctx, `
			INSERT INTO rules (id, rule_set_id, key, type, priority, conditions, outcome, explanation, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			r.ID, uuid.UUID(rs.ID), r.Key, string(r.Type), r.Priority, string(conditions), string(outcome), r.Explanation, i,
		)
		if err != nil {
			return translate(err, "insert rule")
		}
	}
	for i, d := range rs.Deadlines {
		var appliesWhen sql.NullString
		if d.AppliesWhen != nil {
			raw, err := condition.Marshal(d.AppliesWhen)
			if err != nil {
				return fmt.Errorf("marshal template %s applies_when: %w", d.Key, err)
			}
			appliesWhen = sql.NullString{String: string(raw), Valid: true}
		}
		_, err := q.ExecContext(ctx, `
			INSERT INTO deadline_templates (id, rule_set_id, key, tax_type, frequency, due_day_of_month,
				due_month, due_day, due_year, offset_days, applies_when, title, description, position)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
			d.ID, uuid.UUID(rs.ID), d.Key, d.TaxType, string(d.Frequency), d.DueDayOfMonth,
			d.DueMonth, d.DueDay, d.DueYear, d.OffsetDays, appliesWhen, d.Title, d.Description, i,
		)
		if err != nil {
			return translate(err, "insert deadline template")
		}
	}
	return nil
}

func loadChildren(ctx context.Context, q txcontext.Querier, rs *models.RuleSet) error {
	rules, err := q.QueryContext(ctx, `
		SELECT id, key, type, priority, conditions, outcome, explanation
		FROM rules WHERE rule_set_id = $1 ORDER BY position`, uuid.UUID(rs.ID))
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	defer rules.Close()
	rs.Rules = []models.Rule{}
	for rules.Next() {
		var (
			r                   models.Rule
			ruleType            string
			conditions, outcome []byte
		)
		if err := rules.Scan(&r.ID, &r.Key, &ruleType, &r.Priority, &conditions, &outcome, &r.Explanation); err != nil {
			return fmt.Errorf("scan rule: %w", err)
		}
		r.Type = models.RuleType(ruleType)
		r.Conditions = condition.ParseLenient(conditions)
		if err := json.Unmarshal(outcome, &r.Outcome); err != nil {
			return fmt.Errorf("unmarshal rule %s outcome: %w", r.Key, err)
		}
		rs.Rules = append(rs.Rules, r)
	}
	if err := rules.Err(); err != nil {
		return fmt.Errorf("iterate rules: %w", err)
	}

	templates, err := q.QueryContext(ctx, `
		SELECT id, key, tax_type, frequency, due_day_of_month, due_month, due_day, due_year,
			offset_days, applies_when, title, description
		FROM deadline_templates WHERE rule_set_id = $1 ORDER BY position`, uuid.UUID(rs.ID))
	if err != nil {
		return fmt.Errorf("load deadline templates: %w", err)
	}
	defer templates.Close()
	rs.Deadlines = []models.DeadlineTemplate{}
	for templates.Next() {
		var (
			d                                    models.DeadlineTemplate
			frequency                            string
			dayOfMonth, month, day, year, offset sql.NullInt64
			appliesWhen                          []byte
		)
		if err := templates.Scan(&d.ID, &d.Key, &d.TaxType, &frequency, &dayOfMonth, &month, &day, &year,
			&offset, &appliesWhen, &d.Title, &d.Description); err != nil {
			return fmt.Errorf("scan deadline template: %w", err)
		}
		d.Frequency = models.Frequency(frequency)
		d.DueDayOfMonth = intPtr(dayOfMonth)
		d.DueMonth = intPtr(month)
		d.DueDay = intPtr(day)
		d.DueYear = intPtr(year)
		d.OffsetDays = intPtr(offset)
		if appliesWhen != nil {
			d.AppliesWhen = condition.ParseLenient(appliesWhen)
		}
		rs.Deadlines = append(rs.Deadlines, d)
	}
	if err := templates.Err(); err != nil {
		return fmt.Errorf("iterate deadline templates: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRuleSet(row rowScanner) (*models.RuleSet, error) {
	var (
		rs          models.RuleSet
		ruleSetID   uuid.UUID
		status      string
		effectiveTo sql.NullTime
	)
	if err := row.Scan(&ruleSetID, &rs.Version, &rs.Name, &status, &rs.EffectiveFrom, &effectiveTo,
		&rs.Description, &rs.Referenced, &rs.CreatedAt, &rs.UpdatedAt); err != nil {
		return nil, err
	}
	rs.ID = id.RuleSetID(ruleSetID)
	rs.Status = models.RuleSetStatus(status)
	rs.EffectiveFrom = rs.EffectiveFrom.UTC()
	rs.CreatedAt = rs.CreatedAt.UTC()
	rs.UpdatedAt = rs.UpdatedAt.UTC()
	if effectiveTo.Valid {
		t := effectiveTo.Time.UTC()
		rs.EffectiveTo = &t
	}
	return &rs, nil
}

func intPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}

func translate(err error, op string) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return fmt.Errorf("%s: %w", op, sentinel.ErrConflict)
	}
	return fmt.Errorf("%s: %w", op, err)
}
