package rules

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "authrules/pkg/errors"
)

type fakeRepository struct {
	rules     map[string]*Rule
	nextID    int
	createErr error
}

func newFakeRepository() *fakeRepository {
	return &fakeRepository{rules: make(map[string]*Rule)}
}

func (f *fakeRepository) CreateRule(ctx context.Context, rule *Rule) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.nextID++
	if rule.ID == "" {
		rule.ID = fmt.Sprintf("rule-%d", f.nextID)
	}
	if rule.Code == "" {
		rule.Code = fmt.Sprintf("AR-%04d", f.nextID)
	}
	now := time.Now()
	rule.CreatedAt = now
	rule.UpdatedAt = now
	copied := *rule
	f.rules[rule.ID] = &copied
	return nil
}

func (f *fakeRepository) ListRules(ctx context.Context) ([]Rule, error) {
	var out []Rule
	for _, r := range f.rules {
		out = append(out, *r)
	}
	return out, nil
}

func (f *fakeRepository) GetRule(ctx context.Context, id string) (*Rule, error) {
	r, ok := f.rules[id]
	if !ok {
		return nil, fmt.Errorf("rule not found")
	}
	copied := *r
	return &copied, nil
}

func (f *fakeRepository) UpdateRule(ctx context.Context, rule *Rule) error {
	if _, ok := f.rules[rule.ID]; !ok {
		return fmt.Errorf("rule not found")
	}
	rule.UpdatedAt = time.Now()
	copied := *rule
	f.rules[rule.ID] = &copied
	return nil
}

func (f *fakeRepository) DeleteRule(ctx context.Context, id string) error {
	if _, ok := f.rules[id]; !ok {
		return fmt.Errorf("rule not found")
	}
	delete(f.rules, id)
	return nil
}

func validCreateRequest() CreateRuleRequest {
	return CreateRuleRequest{
		RuleDesc: "Route urgent requests",
		StandardFieldCriteria: []StandardFieldCriteria{
			{Field: FieldRequestUrgency, Operator: OperatorEquals, Values: []string{"URGENT"}},
		},
		Status: StatusActive,
	}
}

func TestServiceCreateRule(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	rule, err := svc.CreateRule(context.Background(), validCreateRequest())
	require.NoError(t, err)
	assert.NotEmpty(t, rule.ID)
	assert.NotEmpty(t, rule.Code)
	assert.Equal(t, StatusActive, rule.Status)
}

func TestServiceCreateRuleValidationFailure(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	req := validCreateRequest()
	req.RuleDesc = "  "
	req.StandardFieldCriteria = nil

	_, err := svc.CreateRule(context.Background(), req)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
	assert.Empty(t, repo.rules)
}

func TestServiceGetRuleNotFound(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.GetRule(context.Background(), "missing")
	require.Error(t, err)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestServiceUpdateRuleRevalidates(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	rule, err := svc.CreateRule(context.Background(), validCreateRequest())
	require.NoError(t, err)

	badDesc := " "
	_, err = svc.UpdateRule(context.Background(), rule.ID, UpdateRuleRequest{RuleDesc: &badDesc})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))

	newDesc := "Route standard requests"
	updated, err := svc.UpdateRule(context.Background(), rule.ID, UpdateRuleRequest{RuleDesc: &newDesc})
	require.NoError(t, err)
	assert.Equal(t, newDesc, updated.RuleDesc)
}

func TestServiceDeleteRule(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	rule, err := svc.CreateRule(context.Background(), validCreateRequest())
	require.NoError(t, err)

	require.NoError(t, svc.DeleteRule(context.Background(), rule.ID))
	err = svc.DeleteRule(context.Background(), rule.ID)
	assert.True(t, pkgerrors.IsNotFound(err))
}

func TestServiceExportWorkflowRules(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	_, err := svc.CreateRule(context.Background(), validCreateRequest())
	require.NoError(t, err)

	tatReq := CreateRuleRequest{
		RuleDesc: "urgent turnaround",
		StandardFieldCriteria: []StandardFieldCriteria{
			{Field: FieldRequestUrgency, Values: []string{"URGENT"}},
		},
		Turnaround: &TurnaroundParams{
			Units:               24,
			UnitsOfMeasure:      UnitsHours,
			SourceDateTimeField: "requestReceivedDateTime",
		},
	}
	_, err = svc.CreateRule(context.Background(), tatReq)
	require.NoError(t, err)

	env, err := svc.ExportWorkflowRules(context.Background())
	require.NoError(t, err)
	assert.Equal(t, EnvelopeTypeAutoWorkflowRules, env.Type)
	require.Len(t, env.Rules, 1)
	assert.Equal(t, "Route urgent requests", env.Rules[0].RuleDesc)

	tatEnv, err := svc.ExportTATRules(context.Background())
	require.NoError(t, err)
	require.Len(t, tatEnv.Rules, 1)
	assert.Equal(t, "urgent turnaround", tatEnv.Rules[0].RuleDesc)
}

func TestServiceImportWorkflowRules(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	env := WrapRules([]RuleExport{
		{
			RuleDesc: "good rule",
			StandardFieldCriteria: []StandardCriteriaExport{
				{Operator: OperatorEquals, Field: FieldMemberClient, Values: []string{"ACME"}},
			},
			IsActive: true,
			Weight:   100,
		},
		{
			RuleDesc: "bad rule",
			StandardFieldCriteria: []StandardCriteriaExport{
				{Operator: OperatorEquals, Field: "NOT_A_FIELD", Values: []string{"X"}},
			},
			Weight: 100,
		},
		{
			RuleDesc: "another good rule",
			StandardFieldCriteria: []StandardCriteriaExport{
				{Operator: OperatorIn, Field: FieldRequestUrgency, Values: []string{"URGENT"}},
			},
			Weight: 100,
		},
	})

	result, err := svc.ImportWorkflowRules(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 2, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, "bad rule", result.Errors[0].RuleDesc)
	require.NotEmpty(t, result.Errors[0].Errors)
	assert.Equal(t, "Invalid field: NOT_A_FIELD", result.Errors[0].Errors[0].Message)
	assert.Len(t, repo.rules, 2)
}

func TestServiceImportWrongEnvelopeType(t *testing.T) {
	svc := NewService(newFakeRepository())

	_, err := svc.ImportWorkflowRules(context.Background(), AutoWorkflowEnvelope{
		Type:  "TAT_RULES",
		Rules: []RuleExport{{RuleDesc: "x"}},
	})
	require.Error(t, err)
	assert.True(t, pkgerrors.IsValidation(err))
}

func TestServiceImportPersistenceFailure(t *testing.T) {
	repo := newFakeRepository()
	repo.createErr = fmt.Errorf("connection refused")
	svc := NewService(repo)

	env := WrapRules([]RuleExport{
		{
			RuleDesc: "good rule",
			StandardFieldCriteria: []StandardCriteriaExport{
				{Operator: OperatorEquals, Field: FieldMemberClient, Values: []string{"ACME"}},
			},
			Weight: 100,
		},
	})

	result, err := svc.ImportWorkflowRules(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Message, "connection refused")
}

func TestServiceImportTATRules(t *testing.T) {
	repo := newFakeRepository()
	svc := NewService(repo)

	env := WrapTATRules([]TATRuleExport{
		{
			RuleDesc: "urgent turnaround",
			Criteria: []TATCriteriaExport{
				{Field: FieldRequestUrgency, Values: []string{"URGENT"}},
			},
			IsActive:            true,
			Units:               24,
			UnitsOfMeasure:      UnitsHours,
			SourceDateTimeField: "requestReceivedDateTime",
		},
		{
			RuleDesc: "missing parameters",
			Criteria: []TATCriteriaExport{
				{Field: FieldRequestUrgency, Values: []string{"URGENT"}},
			},
		},
	})

	result, err := svc.ImportTATRules(context.Background(), env)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)

	for _, r := range repo.rules {
		assert.True(t, r.IsTurnaround())
	}
}

func TestServiceVersioning(t *testing.T) {
	repo := newFakeRepository()
	versioning := &fakeVersioningRepository{}
	svc := NewService(repo, WithVersioning(versioning))

	rule, err := svc.CreateRule(context.Background(), validCreateRequest())
	require.NoError(t, err)

	newDesc := "updated"
	_, err = svc.UpdateRule(context.Background(), rule.ID, UpdateRuleRequest{RuleDesc: &newDesc})
	require.NoError(t, err)

	versions, err := svc.GetRuleVersions(context.Background(), rule.ID)
	require.NoError(t, err)
	require.Len(t, versions, 2)
	assert.Equal(t, RuleTypeWorkflow, versions[0].RuleType)

	logs, err := svc.GetAuditLogs(context.Background(), &rule.ID, "", 10)
	require.NoError(t, err)
	assert.Len(t, logs, 2)
}

type fakeVersioningRepository struct {
	versions []RuleVersion
	logs     []AuditLog
}

func (f *fakeVersioningRepository) CreateVersion(ctx context.Context, version *RuleVersion) error {
	f.versions = append(f.versions, *version)
	return nil
}

func (f *fakeVersioningRepository) GetVersions(ctx context.Context, ruleID string) ([]RuleVersion, error) {
	var out []RuleVersion
	for _, v := range f.versions {
		if v.RuleID == ruleID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (f *fakeVersioningRepository) GetVersion(ctx context.Context, ruleID string, version int) (*RuleVersion, error) {
	for _, v := range f.versions {
		if v.RuleID == ruleID && v.Version == version {
			copied := v
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeVersioningRepository) CreateAuditLog(ctx context.Context, log *AuditLog) error {
	f.logs = append(f.logs, *log)
	return nil
}

func (f *fakeVersioningRepository) GetAuditLogs(ctx context.Context, ruleID *string, ruleType string, limit int) ([]AuditLog, error) {
	var out []AuditLog
	for _, l := range f.logs {
		if ruleID != nil && (l.RuleID == nil || *l.RuleID != *ruleID) {
			continue
		}
		if ruleType != "" && l.RuleType != ruleType {
			continue
		}
		out = append(out, l)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeVersioningRepository) GetNextVersion(ctx context.Context, ruleID string) (int, error) {
	max := 0
	for _, v := range f.versions {
		if v.RuleID == ruleID && v.Version > max {
			max = v.Version
		}
	}
	return max + 1, nil
}
