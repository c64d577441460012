package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"taxsafe/internal/compliance/models"
	id "taxsafe/pkg/domain"
	dErrors "taxsafe/pkg/domain-errors"
	strutil "taxsafe/pkg/platform/strings"
)

// Fixtures is a YAML document of sample businesses used to seed the
// in-memory store.
type Fixtures struct {
	Businesses []BusinessDoc `yaml:"businesses"`
}

type BusinessDoc struct {
	ID           string           `yaml:"id"`
	Profile      map[string]any   `yaml:"profile"`
	Transactions []TransactionDoc `yaml:"transactions,omitempty"`
	Tasks        []TaskDoc        `yaml:"tasks,omitempty"`
	Fulfilled    []FulfilledDoc   `yaml:"fulfilled,omitempty"`
}

type TransactionDoc struct {
	ID             string   `yaml:"id"`
	Date           string   `yaml:"date"`
	Amount         string   `yaml:"amount"`
	Kind           string   `yaml:"kind"`
	Category       string   `yaml:"category,omitempty"`
	Classification string   `yaml:"classification,omitempty"`
	Description    string   `yaml:"description,omitempty"`
	EvidenceIDs    []string `yaml:"evidence_ids,omitempty"`
}

type TaskDoc struct {
	ID               string   `yaml:"id"`
	TaxYear          int      `yaml:"tax_year"`
	Title            string   `yaml:"title"`
	EvidenceRequired bool     `yaml:"evidence_required,omitempty"`
	DocumentIDs      []string `yaml:"document_ids,omitempty"`
}

type FulfilledDoc struct {
	TemplateKey string `yaml:"template_key"`
	PeriodStart string `yaml:"period_start"`
}

// LoadFixtures decodes fixtures and writes them into s. Nothing is written
// when any entry is invalid.
func LoadFixtures(ctx context.Context, s *InMemory, r io.Reader) (int, error) {
	var doc Fixtures
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, dErrors.Wrap(err, dErrors.CodeValidation, "invalid fixtures document")
	}

	type parsed struct {
		businessID id.BusinessID
		profile    models.Profile
		txs        []models.Transaction
		tasks      []models.ComplianceTask
		fulfilled  []models.PeriodKey
	}
	all := make([]parsed, 0, len(doc.Businesses))
	for i, b := range doc.Businesses {
		where := fmt.Sprintf("businesses[%d]", i)
		businessID, err := id.ParseBusinessID(b.ID)
		if err != nil {
			return 0, fixtureErr(where, err)
		}
		p := parsed{businessID: businessID, profile: models.Profile(b.Profile)}
		if p.profile == nil {
			p.profile = models.Profile{}
		}
		for j, t := range b.Transactions {
			tx, err := t.build()
			if err != nil {
				return 0, fixtureErr(fmt.Sprintf("%s.transactions[%d]", where, j), err)
			}
			p.txs = append(p.txs, tx)
		}
		for j, t := range b.Tasks {
			if strings.TrimSpace(t.ID) == "" {
				return 0, fixtureErr(fmt.Sprintf("%s.tasks[%d]", where, j), errors.New("id is required"))
			}
			p.tasks = append(p.tasks, models.ComplianceTask{
				ID:               t.ID,
				TaxYear:          t.TaxYear,
				Title:            t.Title,
				EvidenceRequired: t.EvidenceRequired,
				DocumentIDs:      strutil.DedupeAndTrim(t.DocumentIDs),
			})
		}
		for j, f := range b.Fulfilled {
			start, err := time.Parse(time.DateOnly, f.PeriodStart)
			if err != nil || strings.TrimSpace(f.TemplateKey) == "" {
				return 0, fixtureErr(fmt.Sprintf("%s.fulfilled[%d]", where, j), errors.New("template_key and a YYYY-MM-DD period_start are required"))
			}
			p.fulfilled = append(p.fulfilled, models.NewPeriodKey(f.TemplateKey, start))
		}
		all = append(all, p)
	}

	for _, p := range all {
		if err := s.PutProfile(ctx, p.businessID, p.profile); err != nil {
			return 0, err
		}
		if err := s.PutTransactions(ctx, p.businessID, p.txs...); err != nil {
			return 0, err
		}
		if err := s.PutTasks(ctx, p.businessID, p.tasks...); err != nil {
			return 0, err
		}
		if err := s.MarkFulfilled(ctx, p.businessID, p.fulfilled...); err != nil {
			return 0, err
		}
	}
	return len(all), nil
}

// LoadFixturesFile reads fixtures from path.
func LoadFixturesFile(ctx context.Context, s *InMemory, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open fixtures: %w", err)
	}
	defer f.Close()
	return LoadFixtures(ctx, s, f)
}

func (t TransactionDoc) build() (models.Transaction, error) {
	if strings.TrimSpace(t.ID) == "" {
		return models.Transaction{}, errors.New("id is required")
	}
	date, err := time.Parse(time.DateOnly, strings.TrimSpace(t.Date))
	if err != nil {
		return models.Transaction{}, errors.New("date must be a YYYY-MM-DD date")
	}
	amount, err := decimal.NewFromString(strings.TrimSpace(t.Amount))
	if err != nil {
		return models.Transaction{}, errors.New("amount must be a decimal string")
	}
	kind := models.TransactionKind(t.Kind)
	switch kind {
	case models.KindIncome, models.KindExpense, models.KindTransfer:
	default:
		return models.Transaction{}, errors.New("kind must be one of income, expense, transfer")
	}
	classification := models.Classification(t.Classification)
	if classification == "" {
		classification = models.ClassificationUnknown
	}
	return models.Transaction{
		ID:             t.ID,
		Date:           date,
		Amount:         amount,
		Kind:           kind,
		Category:       t.Category,
		Classification: classification,
		Description:    t.Description,
		EvidenceIDs:    strutil.DedupeAndTrim(t.EvidenceIDs),
	}, nil
}

func fixtureErr(where string, err error) error {
	msg := dErrors.MessageOf(err)
	if msg == "" {
		msg = err.Error()
	}
	return dErrors.Wrap(err, dErrors.CodeValidation, where+": "+msg)
}
