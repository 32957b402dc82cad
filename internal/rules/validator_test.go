package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateStandardCriteria(t *testing.T) {
	tests := []struct {
		name         string
		criteria     StandardFieldCriteria
		wantErrors   int
		wantMessages []string
	}{
		{
			name: "valid equals",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberClient,
				Operator: OperatorEquals,
				Values:   []string{"ACME"},
			},
			wantErrors: 0,
		},
		{
			name: "valid in with several values",
			criteria: StandardFieldCriteria{
				Field:    FieldRequestUrgency,
				Operator: OperatorIn,
				Values:   []string{"URGENT", "STANDARD"},
			},
			wantErrors: 0,
		},
		{
			name: "unknown field stops further checks",
			criteria: StandardFieldCriteria{
				Field:    "NOT_A_FIELD",
				Operator: OperatorEquals,
				Values:   nil,
			},
			wantErrors:   1,
			wantMessages: []string{"Invalid field: NOT_A_FIELD"},
		},
		{
			name: "operator not allowed for field",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberClient,
				Operator: OperatorGreaterThan,
				Values:   []string{"ACME"},
			},
			wantErrors:   1,
			wantMessages: []string{"Operator GREATER_THAN is not allowed for field MEMBER_CLIENT"},
		},
		{
			name: "equals with two values",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberClient,
				Operator: OperatorEquals,
				Values:   []string{"A", "B"},
			},
			wantErrors:   1,
			wantMessages: []string{"Operator EQUALS requires exactly 1 value"},
		},
		{
			name: "valued with values",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberClient,
				Operator: OperatorValued,
				Values:   []string{"A"},
			},
			wantErrors:   1,
			wantMessages: []string{"Operator VALUED should not have any values"},
		},
		{
			name: "not_valued with no values is valid",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberClient,
				Operator: OperatorNotValued,
			},
			wantErrors: 0,
		},
		{
			name: "in with no values",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberClient,
				Operator: OperatorIn,
				Values:   []string{},
			},
			wantErrors:   1,
			wantMessages: []string{"At least one value is required"},
		},
		{
			name: "between with one value",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberAge,
				Operator: OperatorBetween,
				Values:   []string{"10"},
			},
			wantErrors:   1,
			wantMessages: []string{"Operator BETWEEN requires exactly 2 values"},
		},
		{
			name: "integer value not numeric",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberAge,
				Operator: OperatorEquals,
				Values:   []string{"ten"},
			},
			wantErrors:   1,
			wantMessages: []string{"Value 'ten' is not a valid integer"},
		},
		{
			name: "negative integer is valid",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberAge,
				Operator: OperatorEquals,
				Values:   []string{"-5"},
			},
			wantErrors: 0,
		},
		{
			name: "between out of order",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberAge,
				Operator: OperatorBetween,
				Values:   []string{"65", "18"},
			},
			wantErrors:   1,
			wantMessages: []string{"Lower bound must be less than or equal to upper bound"},
		},
		{
			name: "between with malformed bound yields type error only",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberAge,
				Operator: OperatorBetween,
				Values:   []string{"abc", "18"},
			},
			wantErrors:   1,
			wantMessages: []string{"Value 'abc' is not a valid integer"},
		},
		{
			name: "impossible calendar date",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberDateOfBirth,
				Operator: OperatorEquals,
				Values:   []string{"2023-02-30"},
			},
			wantErrors:   1,
			wantMessages: []string{"Value '2023-02-30' is not a valid date (expected YYYY-MM-DD)"},
		},
		{
			name: "leap day is valid",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberDateOfBirth,
				Operator: OperatorEquals,
				Values:   []string{"2024-02-29"},
			},
			wantErrors: 0,
		},
		{
			name: "year out of range",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberDateOfBirth,
				Operator: OperatorEquals,
				Values:   []string{"1899-12-31"},
			},
			wantErrors:   1,
			wantMessages: []string{"Value '1899-12-31' is not a valid date (expected YYYY-MM-DD)"},
		},
		{
			name: "date range out of order",
			criteria: StandardFieldCriteria{
				Field:    FieldRequestReceivedDate,
				Operator: OperatorBetween,
				Values:   []string{"2024-06-01", "2024-01-01"},
			},
			wantErrors:   1,
			wantMessages: []string{"Start date must be on or before end date"},
		},
		{
			name: "boolean value must be lowercase literal",
			criteria: StandardFieldCriteria{
				Field:    FieldMemberIsSubscriber,
				Operator: OperatorEquals,
				Values:   []string{"True"},
			},
			wantErrors:   1,
			wantMessages: []string{"Value 'True' is not a valid boolean (expected true or false)"},
		},
		{
			name: "provider field missing role",
			criteria: StandardFieldCriteria{
				Field:    FieldProviderSpecialty,
				Operator: OperatorIn,
				Values:   []string{"CARDIOLOGY"},
			},
			wantErrors:   1,
			wantMessages: []string{"Provider role is required for field PROVIDER_SPECIALTY"},
		},
		{
			name: "alternate ID missing type",
			criteria: StandardFieldCriteria{
				Field:        FieldProviderAlternateID,
				Operator:     OperatorEquals,
				Values:       []string{"12345"},
				ProviderRole: ProviderRoleServicing,
			},
			wantErrors:   1,
			wantMessages: []string{"Alternate ID type is required for field PROVIDER_ALTERNATE_ID"},
		},
		{
			name: "errors accumulate",
			criteria: StandardFieldCriteria{
				Field:    FieldProviderSpecialty,
				Operator: OperatorGreaterThan,
				Values:   []string{"A", "B"},
			},
			wantErrors: 3,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateStandardCriteria(tt.criteria)
			require.Len(t, errs, tt.wantErrors)
			for i, want := range tt.wantMessages {
				assert.Equal(t, want, errs[i].Message)
			}
		})
	}
}

func TestValidateImplicitInCriteria(t *testing.T) {
	// Turnaround criteria carry no operator; they behave as IN and the
	// allowed-operator check is skipped.
	errs := ValidateImplicitInCriteria(StandardFieldCriteria{
		Field:  FieldServiceReviewType,
		Values: []string{"PROSPECTIVE"},
	})
	assert.Empty(t, errs)

	// Even on fields that do not list IN as an allowed operator.
	errs = ValidateImplicitInCriteria(StandardFieldCriteria{
		Field:  FieldMemberDateOfBirth,
		Values: []string{"2000-01-01"},
	})
	assert.Empty(t, errs)

	errs = ValidateImplicitInCriteria(StandardFieldCriteria{
		Field:  FieldServiceReviewType,
		Values: nil,
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "At least one value is required", errs[0].Message)
}

func TestValidateCustomCriteria(t *testing.T) {
	tests := []struct {
		name       string
		criteria   CustomFieldCriteria
		wantErrors int
	}{
		{
			name: "valid",
			criteria: CustomFieldCriteria{
				Association: AssociationMember,
				TemplateID:  "tpl-1",
				Operator:    OperatorIn,
				Values:      []string{"A"},
			},
			wantErrors: 0,
		},
		{
			name: "bad association",
			criteria: CustomFieldCriteria{
				Association: "PROVIDER",
				TemplateID:  "tpl-1",
				Operator:    OperatorIn,
				Values:      []string{"A"},
			},
			wantErrors: 1,
		},
		{
			name: "operator must be membership",
			criteria: CustomFieldCriteria{
				Association: AssociationRequest,
				TemplateID:  "tpl-1",
				Operator:    OperatorEquals,
				Values:      []string{"A"},
			},
			wantErrors: 1,
		},
		{
			name: "empty values",
			criteria: CustomFieldCriteria{
				Association: AssociationRequest,
				TemplateID:  "tpl-1",
				Operator:    OperatorNotIn,
			},
			wantErrors: 1,
		},
		{
			name: "bad association stops further checks",
			criteria: CustomFieldCriteria{
				Association: "PROVIDER",
				TemplateID:  "tpl-9",
				Operator:    OperatorEquals,
				Values:      nil,
			},
			wantErrors: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateCustomCriteria(tt.criteria)
			assert.Len(t, errs, tt.wantErrors)
		})
	}

	// An unknown association is reported alone, even when the operator and
	// values would fail their own checks too.
	errs := ValidateCustomCriteria(CustomFieldCriteria{
		Association: "PROVIDER",
		TemplateID:  "tpl-9",
		Operator:    OperatorEquals,
	})
	require.Len(t, errs, 1)
	assert.Equal(t, "Invalid association: PROVIDER", errs[0].Message)

	// Implicit-IN variant ignores the stored operator.
	errs = ValidateImplicitInCustomCriteria(CustomFieldCriteria{
		Association: AssociationEnrollment,
		TemplateID:  "tpl-2",
		Values:      []string{"X"},
	})
	assert.Empty(t, errs)
}

func TestValidateActions(t *testing.T) {
	assert.Empty(t, ValidateActions(nil))

	tests := []struct {
		name       string
		actions    *RuleActions
		wantFields []string
	}{
		{
			name: "valid actions",
			actions: &RuleActions{
				AssignSkill:       &AssignSkillAction{SkillCode: "RN"},
				DepartmentRouting: &DepartmentRoutingAction{DepartmentCode: "UM"},
				Close:             &CloseAction{DispositionCode: "APPROVED"},
				GenerateLetters:   []GenerateLetterAction{{LetterName: "APPROVAL"}},
			},
			wantFields: nil,
		},
		{
			name: "missing department code",
			actions: &RuleActions{
				DepartmentRouting: &DepartmentRoutingAction{},
			},
			wantFields: []string{"actions.departmentRouting.departmentCode"},
		},
		{
			name: "missing disposition code",
			actions: &RuleActions{
				Close: &CloseAction{},
			},
			wantFields: []string{"actions.close.dispositionCode"},
		},
		{
			name: "empty letters list",
			actions: &RuleActions{
				GenerateLetters: []GenerateLetterAction{},
			},
			wantFields: []string{"actions.generateLetters"},
		},
		{
			name: "blank letter name reported per index",
			actions: &RuleActions{
				GenerateLetters: []GenerateLetterAction{{LetterName: "APPROVAL"}, {LetterName: " "}},
			},
			wantFields: []string{"actions.generateLetters[1].letterName"},
		},
		{
			name: "missing task type",
			actions: &RuleActions{
				CreateTask: &CreateTaskAction{TaskReason: "review"},
			},
			wantFields: []string{"actions.createTask.taskType"},
		},
		{
			name: "missing transfer target and program name",
			actions: &RuleActions{
				TransferOwnership: &TransferOwnershipAction{},
				CreateProgram:     &CreateProgramAction{},
			},
			wantFields: []string{"actions.transferOwnership.transferTo", "actions.createProgram.programName"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs := ValidateActions(tt.actions)
			require.Len(t, errs, len(tt.wantFields))
			for i, want := range tt.wantFields {
				assert.Equal(t, want, errs[i].Field)
			}
		})
	}
}

func TestValidateRule(t *testing.T) {
	valid := &Rule{
		RuleDesc: "Route urgent inpatient requests",
		StandardFieldCriteria: []StandardFieldCriteria{
			{Field: FieldRequestUrgency, Operator: OperatorEquals, Values: []string{"URGENT"}},
		},
		Actions: &RuleActions{
			DepartmentRouting: &DepartmentRoutingAction{DepartmentCode: "UM"},
		},
	}
	assert.Empty(t, ValidateRule(valid))
	assert.True(t, IsRuleValid(valid))

	t.Run("description and criteria required", func(t *testing.T) {
		errs := ValidateRule(&Rule{RuleDesc: "   "})
		require.Len(t, errs, 2)
		assert.Equal(t, "Rule description is required", errs[0].Message)
		assert.Equal(t, "At least one criterion is required", errs[1].Message)
	})

	t.Run("negative weight", func(t *testing.T) {
		weight := -1
		rule := &Rule{
			RuleDesc: "weighted",
			StandardFieldCriteria: []StandardFieldCriteria{
				{Field: FieldMemberClient, Operator: OperatorEquals, Values: []string{"A"}},
			},
			Weight: &weight,
		}
		errs := ValidateRule(rule)
		require.Len(t, errs, 1)
		assert.Equal(t, "Weight must be non-negative", errs[0].Message)
	})

	t.Run("bad activation date", func(t *testing.T) {
		rule := &Rule{
			RuleDesc: "dated",
			StandardFieldCriteria: []StandardFieldCriteria{
				{Field: FieldMemberClient, Operator: OperatorEquals, Values: []string{"A"}},
			},
			ActivationDate: "01/02/2024",
		}
		errs := ValidateRule(rule)
		require.Len(t, errs, 1)
		assert.Equal(t, "activationDate", errs[0].Field)
	})

	t.Run("criterion errors accumulate across criteria", func(t *testing.T) {
		rule := &Rule{
			RuleDesc: "broken",
			StandardFieldCriteria: []StandardFieldCriteria{
				{Field: "NOT_A_FIELD", Operator: OperatorEquals, Values: []string{"A"}},
				{Field: FieldMemberAge, Operator: OperatorEquals, Values: []string{"ten"}},
			},
		}
		errs := ValidateRule(rule)
		assert.Len(t, errs, 2)
	})

	t.Run("turnaround rule validates criteria as implicit IN", func(t *testing.T) {
		rule := &Rule{
			RuleDesc: "urgent TAT",
			StandardFieldCriteria: []StandardFieldCriteria{
				{Field: FieldRequestUrgency, Values: []string{"URGENT"}},
			},
			Turnaround: &TurnaroundParams{
				Units:               24,
				UnitsOfMeasure:      UnitsHours,
				SourceDateTimeField: "requestReceivedDateTime",
			},
		}
		assert.Empty(t, ValidateRule(rule))
	})

	t.Run("turnaround parameters checked", func(t *testing.T) {
		rule := &Rule{
			RuleDesc: "bad TAT",
			StandardFieldCriteria: []StandardFieldCriteria{
				{Field: FieldRequestUrgency, Values: []string{"URGENT"}},
			},
			Turnaround: &TurnaroundParams{
				UnitsOfMeasure: "FORTNIGHTS",
			},
		}
		errs := ValidateRule(rule)
		require.Len(t, errs, 3)
		fields := []string{errs[0].Field, errs[1].Field, errs[2].Field}
		assert.Contains(t, fields, "turnaround.units")
		assert.Contains(t, fields, "turnaround.unitsOfMeasure")
		assert.Contains(t, fields, "turnaround.sourceDateTimeField")
	})
}
