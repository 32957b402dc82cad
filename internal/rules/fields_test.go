package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLookupField(t *testing.T) {
	def, ok := LookupField(FieldMemberClient)
	require.True(t, ok)
	assert.Equal(t, FieldMemberClient, def.Name)
	assert.Equal(t, CategoryMember, def.Category)
	assert.Equal(t, DataTypeString, def.DataType)

	_, ok = LookupField("NOT_A_FIELD")
	assert.False(t, ok)
}

func TestFieldDefinitions(t *testing.T) {
	tests := []struct {
		name         string
		field        FieldName
		dataType     DataType
		allowed      []Operator
		notAllowed   []Operator
		providerRole bool
		altIDType    bool
	}{
		{
			name:       "code field accepts membership operators only",
			field:      FieldRequestUrgency,
			dataType:   DataTypeString,
			allowed:    []Operator{OperatorEquals, OperatorIn, OperatorNotIn, OperatorValued, OperatorNotValued},
			notAllowed: []Operator{OperatorGreaterThan, OperatorBetween, OperatorLessThanOrEqualTo},
		},
		{
			name:       "integer field accepts comparisons",
			field:      FieldMemberAge,
			dataType:   DataTypeInteger,
			allowed:    []Operator{OperatorEquals, OperatorGreaterThan, OperatorBetween, OperatorIn},
			notAllowed: nil,
		},
		{
			name:       "date field accepts range but not membership",
			field:      FieldMemberDateOfBirth,
			dataType:   DataTypeDate,
			allowed:    []Operator{OperatorBetween, OperatorLessThan, OperatorValued},
			notAllowed: []Operator{OperatorIn, OperatorNotIn},
		},
		{
			name:       "boolean field accepts equals and presence",
			field:      FieldMemberIsSubscriber,
			dataType:   DataTypeBoolean,
			allowed:    []Operator{OperatorEquals, OperatorValued, OperatorNotValued},
			notAllowed: []Operator{OperatorIn, OperatorGreaterThan, OperatorBetween},
		},
		{
			name:         "provider field requires role",
			field:        FieldProviderSpecialty,
			dataType:     DataTypeString,
			allowed:      []Operator{OperatorIn},
			providerRole: true,
		},
		{
			name:         "alternate ID requires role and type",
			field:        FieldProviderAlternateID,
			dataType:     DataTypeString,
			allowed:      []Operator{OperatorEquals},
			providerRole: true,
			altIDType:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, ok := LookupField(tt.field)
			require.True(t, ok)
			assert.Equal(t, tt.dataType, def.DataType)
			assert.Equal(t, tt.providerRole, def.RequiresProviderRole)
			assert.Equal(t, tt.altIDType, def.RequiresAlternateIDType)
			for _, op := range tt.allowed {
				assert.True(t, def.AllowsOperator(op), "expected %s to allow %s", tt.field, op)
			}
			for _, op := range tt.notAllowed {
				assert.False(t, def.AllowsOperator(op), "expected %s to reject %s", tt.field, op)
			}
		})
	}
}

func TestStandardFields(t *testing.T) {
	defs := StandardFields()
	require.Len(t, defs, len(fieldCatalog))

	// Grouped by category in fixed order, sorted by name within a group.
	categoryOrder := map[string]int{
		CategoryMember: 0, CategoryEnrollment: 1, CategoryProvider: 2,
		CategoryRequest: 3, CategoryService: 4, CategoryReview: 5,
	}
	for i := 1; i < len(defs); i++ {
		prev, cur := defs[i-1], defs[i]
		require.LessOrEqual(t, categoryOrder[prev.Category], categoryOrder[cur.Category])
		if prev.Category == cur.Category {
			assert.Less(t, string(prev.Name), string(cur.Name))
		}
	}
}
