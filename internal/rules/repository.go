package rules

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	pkgerrors "authrules/pkg/errors"
)

type Repository interface {
	CreateRule(ctx context.Context, rule *Rule) error
	ListRules(ctx context.Context) ([]Rule, error)
	GetRule(ctx context.Context, id string) (*Rule, error)
	UpdateRule(ctx context.Context, rule *Rule) error
	DeleteRule(ctx context.Context, id string) error
}

type PostgresRepository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &PostgresRepository{db: db}
}

// Criteria, actions, and turnaround parameters are stored as JSONB. The
// rule engine reads them as documents; nothing queries inside them, so
// relational decomposition would buy nothing.
func (r *PostgresRepository) CreateRule(ctx context.Context, rule *Rule) error {
	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if rule.Code == "" {
		rule.Code = generateRuleCode()
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now

	standardJSON, customJSON, actionsJSON, turnaroundJSON, err := marshalRuleDocs(rule)
	if err != nil {
		return fmt.Errorf("failed to encode rule: %w", err)
	}

	query := `
		INSERT INTO auth_rules (
			id, code, rule_desc, category,
			standard_field_criteria, custom_field_criteria,
			weight, status, activation_date, expiration_date,
			trigger_events, request_type_filter, fire_once,
			actions, turnaround, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
	`

	_, err = r.db.ExecContext(ctx, query,
		rule.ID, rule.Code, rule.RuleDesc, rule.Category,
		standardJSON, customJSON,
		boundWeight(rule.Weight), rule.Status, nullable(rule.ActivationDate), nullable(rule.ExpirationDate),
		pq.Array(rule.TriggerEvents), rule.RequestTypeFilter, rule.FireOnce,
		actionsJSON, turnaroundJSON, rule.CreatedAt, rule.UpdatedAt,
	)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok {
			if pqErr.Code == "23505" {
				return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("rule with code '%s' already exists", rule.Code))
			}
		}
		if strings.Contains(err.Error(), "duplicate key") || strings.Contains(err.Error(), "unique constraint") {
			return pkgerrors.ErrConflict.WithCause(err).WithDetail("message", fmt.Sprintf("rule with code '%s' already exists", rule.Code))
		}
		return fmt.Errorf("failed to create rule: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetRule(ctx context.Context, id string) (*Rule, error) {
	query := selectRuleColumns + ` WHERE id = $1`

	row := r.db.QueryRowContext(ctx, query, id)

	rule, err := scanRule(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("rule not found: %w", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rule: %w", err)
	}

	return rule, nil
}

func (r *PostgresRepository) ListRules(ctx context.Context) ([]Rule, error) {
	query := selectRuleColumns + ` ORDER BY weight DESC, created_at DESC`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list rules: %w", err)
	}
	defer rows.Close()

	var rules []Rule
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("context cancelled: %w", ctx.Err())
		default:
		}

		rule, err := scanRule(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan rule: %w", err)
		}
		rules = append(rules, *rule)
	}

	return rules, nil
}

func (r *PostgresRepository) UpdateRule(ctx context.Context, rule *Rule) error {
	rule.UpdatedAt = time.Now()

	standardJSON, customJSON, actionsJSON, turnaroundJSON, err := marshalRuleDocs(rule)
	if err != nil {
		return fmt.Errorf("failed to encode rule: %w", err)
	}

	query := `
		UPDATE auth_rules
		SET rule_desc = $1, category = $2,
			standard_field_criteria = $3, custom_field_criteria = $4,
			weight = $5, status = $6, activation_date = $7, expiration_date = $8,
			trigger_events = $9, request_type_filter = $10, fire_once = $11,
			actions = $12, turnaround = $13, updated_at = $14
		WHERE id = $15
	`

	res, err := r.db.ExecContext(ctx, query,
		rule.RuleDesc, rule.Category,
		standardJSON, customJSON,
		boundWeight(rule.Weight), rule.Status, nullable(rule.ActivationDate), nullable(rule.ExpirationDate),
		pq.Array(rule.TriggerEvents), rule.RequestTypeFilter, rule.FireOnce,
		actionsJSON, turnaroundJSON, rule.UpdatedAt, rule.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update rule: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rule not found")
	}

	return nil
}

func (r *PostgresRepository) DeleteRule(ctx context.Context, id string) error {
	query := `DELETE FROM auth_rules WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete rule: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("rule not found")
	}

	return nil
}

const selectRuleColumns = `
	SELECT id, code, rule_desc, category,
		standard_field_criteria, custom_field_criteria,
		weight, status, activation_date, expiration_date,
		trigger_events, request_type_filter, fire_once,
		actions, turnaround, created_at, updated_at
	FROM auth_rules
`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRule(row rowScanner) (*Rule, error) {
	var (
		rule           Rule
		standardJSON   []byte
		customJSON     []byte
		actionsJSON    []byte
		turnaroundJSON []byte
		activation     sql.NullString
		expiration     sql.NullString
	)

	err := row.Scan(
		&rule.ID, &rule.Code, &rule.RuleDesc, &rule.Category,
		&standardJSON, &customJSON,
		&rule.Weight, &rule.Status, &activation, &expiration,
		pq.Array(&rule.TriggerEvents), &rule.RequestTypeFilter, &rule.FireOnce,
		&actionsJSON, &turnaroundJSON, &rule.CreatedAt, &rule.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	rule.ActivationDate = activation.String
	rule.ExpirationDate = expiration.String

	if len(standardJSON) > 0 {
		if err := json.Unmarshal(standardJSON, &rule.StandardFieldCriteria); err != nil {
			return nil, fmt.Errorf("failed to decode standard criteria: %w", err)
		}
	}
	if len(customJSON) > 0 {
		if err := json.Unmarshal(customJSON, &rule.CustomFieldCriteria); err != nil {
			return nil, fmt.Errorf("failed to decode custom criteria: %w", err)
		}
	}
	if len(actionsJSON) > 0 {
		if err := json.Unmarshal(actionsJSON, &rule.Actions); err != nil {
			return nil, fmt.Errorf("failed to decode actions: %w", err)
		}
	}
	if len(turnaroundJSON) > 0 {
		if err := json.Unmarshal(turnaroundJSON, &rule.Turnaround); err != nil {
			return nil, fmt.Errorf("failed to decode turnaround: %w", err)
		}
	}

	return &rule, nil
}

func marshalRuleDocs(rule *Rule) (standard, custom, actions, turnaround []byte, err error) {
	standard, err = json.Marshal(rule.StandardFieldCriteria)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	custom, err = json.Marshal(rule.CustomFieldCriteria)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if rule.Actions != nil {
		actions, err = json.Marshal(rule.Actions)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}
	if rule.Turnaround != nil {
		turnaround, err = json.Marshal(rule.Turnaround)
		if err != nil {
			return nil, nil, nil, nil, err
		}
	}
	return standard, custom, actions, turnaround, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// boundWeight materializes an absent weight before binding. The weight
// column is NOT NULL, and an explicitly bound NULL bypasses the column
// default, so a weightless rule would be rejected rather than defaulted.
func boundWeight(w *int) int {
	if w == nil {
		return DefaultWeight
	}
	return *w
}

// generateRuleCode mints a short, human-quotable rule code. Uniqueness is
// enforced by the database; a collision surfaces as a conflict error.
func generateRuleCode() string {
	id := uuid.New().String()
	return "AR-" + strings.ToUpper(id[:8])
}
