package rules

import (
	"context"
)

type Service interface {
	CreateRule(ctx context.Context, req CreateRuleRequest) (*Rule, error)
	ListRules(ctx context.Context) ([]Rule, error)
	GetRule(ctx context.Context, id string) (*Rule, error)
	UpdateRule(ctx context.Context, id string, req UpdateRuleRequest) (*Rule, error)
	DeleteRule(ctx context.Context, id string) error
	GetRuleVersions(ctx context.Context, ruleID string) ([]RuleVersion, error)
	GetAuditLogs(ctx context.Context, ruleID *string, ruleType string, limit int) ([]AuditLog, error)

	ExportWorkflowRules(ctx context.Context) (AutoWorkflowEnvelope, error)
	ImportWorkflowRules(ctx context.Context, env AutoWorkflowEnvelope) (*ImportResult, error)
	ExportTATRules(ctx context.Context) (TATRuleEnvelope, error)
	ImportTATRules(ctx context.Context, env TATRuleEnvelope) (*ImportResult, error)
}
