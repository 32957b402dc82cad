package rules

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportRule(t *testing.T) {
	weight := 250
	rule := &Rule{
		ID:       "d4f0c1f2-0000-0000-0000-000000000000",
		Code:     "AR-ABCD1234",
		RuleDesc: "Route urgent requests",
		Category: "routing",
		StandardFieldCriteria: []StandardFieldCriteria{
			{Field: FieldRequestUrgency, Operator: OperatorEquals, Values: []string{"URGENT"}},
			{
				Field:           FieldProviderAlternateID,
				Operator:        OperatorEquals,
				Values:          []string{"99887"},
				ProviderRole:    ProviderRoleServicing,
				AlternateIDType: "NPI",
			},
		},
		CustomFieldCriteria: []CustomFieldCriteria{
			{Association: AssociationMember, TemplateID: "tpl-7", Operator: OperatorIn, Values: []string{"GOLD"}},
		},
		Weight: &weight,
		Status: StatusActive,
		Actions: &RuleActions{
			DepartmentRouting: &DepartmentRoutingAction{DepartmentCode: "UM"},
		},
	}

	exp := ExportRule(rule)

	assert.Equal(t, "Route urgent requests", exp.RuleDesc)
	assert.True(t, exp.IsActive)
	assert.Equal(t, 250, exp.Weight)
	require.Len(t, exp.StandardFieldCriteria, 2)
	assert.Equal(t, OperatorEquals, exp.StandardFieldCriteria[0].Operator)
	assert.Equal(t, "NPI", exp.StandardFieldCriteria[1].AlternateIDType)
	require.Len(t, exp.CustomFieldCriteria, 1)
	assert.Equal(t, AssociationMember, exp.CustomFieldCriteria[0].Association)

	// Internal bookkeeping never leaks into the export.
	raw, err := json.Marshal(exp)
	require.NoError(t, err)
	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.NotContains(t, keys, "id")
	assert.NotContains(t, keys, "code")
	assert.NotContains(t, keys, "category")
	assert.NotContains(t, keys, "createdAt")
	assert.NotContains(t, keys, "updatedAt")
}

func TestExportRuleDefaults(t *testing.T) {
	rule := &Rule{
		RuleDesc: "minimal",
		Status:   StatusInactive,
		StandardFieldCriteria: []StandardFieldCriteria{
			{Field: FieldMemberClient, Operator: OperatorEquals, Values: []string{"ACME"}},
		},
	}

	exp := ExportRule(rule)
	assert.False(t, exp.IsActive)
	assert.Equal(t, DefaultWeight, exp.Weight)

	raw, err := json.Marshal(exp)
	require.NoError(t, err)
	var keys map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &keys))
	assert.NotContains(t, keys, "customFieldCriteria")
	assert.NotContains(t, keys, "actions")
}

func TestStandardCriteriaExportKeyOrder(t *testing.T) {
	full := StandardCriteriaExport{
		Operator:        OperatorEquals,
		Field:           FieldProviderAlternateID,
		ProviderRole:    ProviderRoleServicing,
		AlternateIDType: "NPI",
		Values:          []string{"99887"},
	}
	raw, err := json.Marshal(full)
	require.NoError(t, err)
	assert.Equal(t, `{"operator":"EQUALS","field":"PROVIDER_ALTERNATE_ID","providerRole":"SERVICING","alternateIdType":"NPI","values":["99887"]}`, string(raw))

	plain := StandardCriteriaExport{
		Operator: OperatorIn,
		Field:    FieldRequestUrgency,
		Values:   []string{"URGENT"},
	}
	raw, err = json.Marshal(plain)
	require.NoError(t, err)
	assert.Equal(t, `{"operator":"IN","field":"REQUEST_URGENCY","values":["URGENT"]}`, string(raw))
}

func TestRuleExportRoundTrip(t *testing.T) {
	weight := 50
	original := &Rule{
		RuleDesc: "round trip",
		StandardFieldCriteria: []StandardFieldCriteria{
			{Field: FieldRequestUrgency, Operator: OperatorIn, Values: []string{"URGENT", "STANDARD"}},
		},
		CustomFieldCriteria: []CustomFieldCriteria{
			{Association: AssociationRequest, TemplateID: "tpl-1", Operator: OperatorNotIn, Values: []string{"X"}},
		},
		Weight:            &weight,
		Status:            StatusActive,
		TriggerEvents:     []string{TriggerCreateRequest},
		RequestTypeFilter: "INPATIENT",
		FireOnce:          true,
		Actions: &RuleActions{
			Close: &CloseAction{DispositionCode: "APPROVED"},
		},
	}

	exp := ExportRule(original)

	raw, err := json.Marshal(exp)
	require.NoError(t, err)
	var decoded RuleExport
	require.NoError(t, json.Unmarshal(raw, &decoded))

	restored := RuleFromExport(decoded)

	assert.Equal(t, original.RuleDesc, restored.RuleDesc)
	assert.Equal(t, original.Status, restored.Status)
	require.NotNil(t, restored.Weight)
	assert.Equal(t, *original.Weight, *restored.Weight)
	assert.Equal(t, original.StandardFieldCriteria, restored.StandardFieldCriteria)
	assert.Equal(t, original.CustomFieldCriteria, restored.CustomFieldCriteria)
	assert.Equal(t, original.TriggerEvents, restored.TriggerEvents)
	assert.Equal(t, original.RequestTypeFilter, restored.RequestTypeFilter)
	assert.Equal(t, original.FireOnce, restored.FireOnce)
	assert.Equal(t, original.Actions, restored.Actions)
	assert.True(t, IsRuleValid(restored))
}

func TestTATRuleRoundTrip(t *testing.T) {
	offset := 1
	original := &Rule{
		RuleDesc: "urgent turnaround",
		Status:   StatusActive,
		StandardFieldCriteria: []StandardFieldCriteria{
			{Field: FieldRequestUrgency, Values: []string{"URGENT"}},
			{Field: FieldServiceReviewType, Values: []string{"PROSPECTIVE", "CONCURRENT"}},
		},
		Turnaround: &TurnaroundParams{
			Units:               72,
			UnitsOfMeasure:      UnitsHours,
			SourceDateTimeField: "requestReceivedDateTime",
			DueTime:             "17:00",
			HolidayDates:        []string{"2026-01-01", "2026-12-25"},
			HolidayOffset:       &offset,
			AutoExtend:          true,
			ExtendStatusReason:  "HOLIDAY",
		},
	}

	exp := ExportTATRule(original)
	assert.Equal(t, 72, exp.Units)
	assert.Equal(t, UnitsHours, exp.UnitsOfMeasure)
	require.Len(t, exp.Criteria, 2)

	// TAT criteria never carry an operator key.
	raw, err := json.Marshal(exp.Criteria[0])
	require.NoError(t, err)
	assert.Equal(t, `{"field":"REQUEST_URGENCY","values":["URGENT"]}`, string(raw))

	restored := TATRuleFromExport(exp)
	require.True(t, restored.IsTurnaround())
	assert.Equal(t, original.RuleDesc, restored.RuleDesc)
	assert.Equal(t, original.Status, restored.Status)
	assert.Equal(t, original.StandardFieldCriteria, restored.StandardFieldCriteria)
	assert.Equal(t, original.Turnaround, restored.Turnaround)
	assert.True(t, IsRuleValid(restored))
}

func TestEnvelopes(t *testing.T) {
	env := WrapRules([]RuleExport{{RuleDesc: "a"}})
	assert.Equal(t, EnvelopeTypeAutoWorkflowRules, env.Type)

	rules, err := UnwrapRules(env)
	require.NoError(t, err)
	assert.Len(t, rules, 1)

	_, err = UnwrapRules(AutoWorkflowEnvelope{Type: "TAT_RULES"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AUTO_WORKFLOW_RULES")

	tatEnv := WrapTATRules(nil)
	assert.Equal(t, EnvelopeTypeTATRules, tatEnv.Type)

	_, err = UnwrapTATRules(TATRuleEnvelope{Type: "AUTO_WORKFLOW_RULES"})
	assert.Error(t, err)
}

func TestEnvelopeJSONShape(t *testing.T) {
	env := WrapRules([]RuleExport{})
	raw, err := json.Marshal(env)
	require.NoError(t, err)
	assert.Equal(t, `{"type":"AUTO_WORKFLOW_RULES","rules":[]}`, string(raw))
}
