package rules

import "sort"

// DataType describes the value type a standard field carries. Criterion
// values are transported as strings on the wire; the data type determines
// how each value is checked during validation.
type DataType string

const (
	DataTypeString  DataType = "STRING"
	DataTypeInteger DataType = "INTEGER"
	DataTypeDate    DataType = "DATE"
	DataTypeBoolean DataType = "BOOLEAN"
)

type Operator string

const (
	OperatorEquals               Operator = "EQUALS"
	OperatorGreaterThan          Operator = "GREATER_THAN"
	OperatorGreaterThanOrEqualTo Operator = "GREATER_THAN_OR_EQUAL_TO"
	OperatorLessThan             Operator = "LESS_THAN"
	OperatorLessThanOrEqualTo    Operator = "LESS_THAN_OR_EQUAL_TO"
	OperatorBetween              Operator = "BETWEEN"
	OperatorIn                   Operator = "IN"
	OperatorNotIn                Operator = "NOT_IN"
	OperatorValued               Operator = "VALUED"
	OperatorNotValued            Operator = "NOT_VALUED"
)

type FieldName string

const (
	FieldMemberClient       FieldName = "MEMBER_CLIENT"
	FieldMemberState        FieldName = "MEMBER_STATE"
	FieldMemberAge          FieldName = "MEMBER_AGE"
	FieldMemberDateOfBirth  FieldName = "MEMBER_DATE_OF_BIRTH"
	FieldMemberIsSubscriber FieldName = "MEMBER_IS_SUBSCRIBER"

	FieldEnrollmentGroupID        FieldName = "ENROLLMENT_GROUP_ID"
	FieldEnrollmentLineOfBusiness FieldName = "ENROLLMENT_LINE_OF_BUSINESS"
	FieldEnrollmentPlan           FieldName = "ENROLLMENT_PLAN"
	FieldEnrollmentEffectiveDate  FieldName = "ENROLLMENT_EFFECTIVE_DATE"

	FieldProviderSpecialty     FieldName = "PROVIDER_SPECIALTY"
	FieldProviderState         FieldName = "PROVIDER_STATE"
	FieldProviderNetworkStatus FieldName = "PROVIDER_NETWORK_STATUS"
	FieldProviderAlternateID   FieldName = "PROVIDER_ALTERNATE_ID"

	FieldRequestType                    FieldName = "REQUEST_TYPE"
	FieldRequestUrgency                 FieldName = "REQUEST_URGENCY"
	FieldRequestClassification          FieldName = "REQUEST_CLASSIFICATION"
	FieldRequestStatus                  FieldName = "REQUEST_STATUS"
	FieldRequestTreatmentSetting        FieldName = "REQUEST_TREATMENT_SETTING"
	FieldRequestOriginatingSystemSource FieldName = "REQUEST_ORIGINATING_SYSTEM_SOURCE"
	FieldRequestDiagnosisCode           FieldName = "REQUEST_DIAGNOSIS_CODE"
	FieldRequestReceivedDate            FieldName = "REQUEST_RECEIVED_DATE"
	FieldRequestUnitsRequested          FieldName = "REQUEST_UNITS_REQUESTED"

	FieldServiceCode          FieldName = "SERVICE_CODE"
	FieldServiceReviewType    FieldName = "SERVICE_REVIEW_TYPE"
	FieldServiceTreatmentType FieldName = "SERVICE_TREATMENT_TYPE"
	FieldServiceFromDate      FieldName = "SERVICE_FROM_DATE"

	FieldReviewOutcomeStatus       FieldName = "REVIEW_OUTCOME_STATUS"
	FieldReviewOutcomeStatusReason FieldName = "REVIEW_OUTCOME_STATUS_REASON"
)

const (
	CategoryMember     = "MEMBER"
	CategoryEnrollment = "ENROLLMENT"
	CategoryProvider   = "PROVIDER"
	CategoryRequest    = "REQUEST"
	CategoryService    = "SERVICE"
	CategoryReview     = "REVIEW"
)

// FieldDefinition describes what is legal for one standard field: which
// operators it accepts, how its values are typed, and whether a criterion on
// it must name a provider role or an alternate ID type.
type FieldDefinition struct {
	Name                    FieldName  `json:"name"`
	Category                string     `json:"category"`
	DataType                DataType   `json:"dataType"`
	AllowedOperators        []Operator `json:"allowedOperators"`
	RequiresProviderRole    bool       `json:"requiresProviderRole"`
	RequiresAlternateIDType bool       `json:"requiresAlternateIdType"`
}

func (d FieldDefinition) AllowsOperator(op Operator) bool {
	for _, allowed := range d.AllowedOperators {
		if allowed == op {
			return true
		}
	}
	return false
}

var (
	codeOperators = []Operator{
		OperatorEquals, OperatorIn, OperatorNotIn,
		OperatorValued, OperatorNotValued,
	}
	numericOperators = []Operator{
		OperatorEquals, OperatorGreaterThan, OperatorGreaterThanOrEqualTo,
		OperatorLessThan, OperatorLessThanOrEqualTo, OperatorBetween,
		OperatorIn, OperatorNotIn, OperatorValued, OperatorNotValued,
	}
	dateOperators = []Operator{
		OperatorEquals, OperatorGreaterThan, OperatorGreaterThanOrEqualTo,
		OperatorLessThan, OperatorLessThanOrEqualTo, OperatorBetween,
		OperatorValued, OperatorNotValued,
	}
	booleanOperators = []Operator{
		OperatorEquals, OperatorValued, OperatorNotValued,
	}
)

var fieldCatalog = map[FieldName]FieldDefinition{
	FieldMemberClient:       {Name: FieldMemberClient, Category: CategoryMember, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldMemberState:        {Name: FieldMemberState, Category: CategoryMember, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldMemberAge:          {Name: FieldMemberAge, Category: CategoryMember, DataType: DataTypeInteger, AllowedOperators: numericOperators},
	FieldMemberDateOfBirth:  {Name: FieldMemberDateOfBirth, Category: CategoryMember, DataType: DataTypeDate, AllowedOperators: dateOperators},
	FieldMemberIsSubscriber: {Name: FieldMemberIsSubscriber, Category: CategoryMember, DataType: DataTypeBoolean, AllowedOperators: booleanOperators},

	FieldEnrollmentGroupID:        {Name: FieldEnrollmentGroupID, Category: CategoryEnrollment, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldEnrollmentLineOfBusiness: {Name: FieldEnrollmentLineOfBusiness, Category: CategoryEnrollment, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldEnrollmentPlan:           {Name: FieldEnrollmentPlan, Category: CategoryEnrollment, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldEnrollmentEffectiveDate:  {Name: FieldEnrollmentEffectiveDate, Category: CategoryEnrollment, DataType: DataTypeDate, AllowedOperators: dateOperators},

	FieldProviderSpecialty:     {Name: FieldProviderSpecialty, Category: CategoryProvider, DataType: DataTypeString, AllowedOperators: codeOperators, RequiresProviderRole: true},
	FieldProviderState:         {Name: FieldProviderState, Category: CategoryProvider, DataType: DataTypeString, AllowedOperators: codeOperators, RequiresProviderRole: true},
	FieldProviderNetworkStatus: {Name: FieldProviderNetworkStatus, Category: CategoryProvider, DataType: DataTypeString, AllowedOperators: codeOperators, RequiresProviderRole: true},
	FieldProviderAlternateID:   {Name: FieldProviderAlternateID, Category: CategoryProvider, DataType: DataTypeString, AllowedOperators: codeOperators, RequiresProviderRole: true, RequiresAlternateIDType: true},

	FieldRequestType:                    {Name: FieldRequestType, Category: CategoryRequest, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldRequestUrgency:                 {Name: FieldRequestUrgency, Category: CategoryRequest, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldRequestClassification:          {Name: FieldRequestClassification, Category: CategoryRequest, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldRequestStatus:                  {Name: FieldRequestStatus, Category: CategoryRequest, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldRequestTreatmentSetting:        {Name: FieldRequestTreatmentSetting, Category: CategoryRequest, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldRequestOriginatingSystemSource: {Name: FieldRequestOriginatingSystemSource, Category: CategoryRequest, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldRequestDiagnosisCode:           {Name: FieldRequestDiagnosisCode, Category: CategoryRequest, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldRequestReceivedDate:            {Name: FieldRequestReceivedDate, Category: CategoryRequest, DataType: DataTypeDate, AllowedOperators: dateOperators},
	FieldRequestUnitsRequested:          {Name: FieldRequestUnitsRequested, Category: CategoryRequest, DataType: DataTypeInteger, AllowedOperators: numericOperators},

	FieldServiceCode:          {Name: FieldServiceCode, Category: CategoryService, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldServiceReviewType:    {Name: FieldServiceReviewType, Category: CategoryService, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldServiceTreatmentType: {Name: FieldServiceTreatmentType, Category: CategoryService, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldServiceFromDate:      {Name: FieldServiceFromDate, Category: CategoryService, DataType: DataTypeDate, AllowedOperators: dateOperators},

	FieldReviewOutcomeStatus:       {Name: FieldReviewOutcomeStatus, Category: CategoryReview, DataType: DataTypeString, AllowedOperators: codeOperators},
	FieldReviewOutcomeStatusReason: {Name: FieldReviewOutcomeStatusReason, Category: CategoryReview, DataType: DataTypeString, AllowedOperators: codeOperators},
}

// LookupField resolves a standard field name against the catalog. Unknown
// names return ok=false; the validator turns that into a criterion error
// rather than failing the whole rule or batch.
func LookupField(name FieldName) (FieldDefinition, bool) {
	def, ok := fieldCatalog[name]
	return def, ok
}

// StandardFields returns the full catalog, grouped by category in a stable
// order. Used by the dictionary endpoints that back the rule builder UI.
func StandardFields() []FieldDefinition {
	categories := []string{
		CategoryMember, CategoryEnrollment, CategoryProvider,
		CategoryRequest, CategoryService, CategoryReview,
	}

	byCategory := make(map[string][]FieldDefinition)
	for _, def := range fieldCatalog {
		byCategory[def.Category] = append(byCategory[def.Category], def)
	}

	var defs []FieldDefinition
	for _, cat := range categories {
		fields := byCategory[cat]
		sort.Slice(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
		defs = append(defs, fields...)
	}
	return defs
}
