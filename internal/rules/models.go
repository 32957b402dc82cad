package rules

import "time"

type RuleStatus string

const (
	StatusActive   RuleStatus = "active"
	StatusInactive RuleStatus = "inactive"
)

// Association scopes a custom field criterion to the entity its template is
// defined on.
type Association string

const (
	AssociationMember     Association = "MEMBER"
	AssociationEnrollment Association = "ENROLLMENT"
	AssociationRequest    Association = "REQUEST"
)

// Provider roles accepted on provider-scoped criteria.
const (
	ProviderRoleServicing = "SERVICING"
	ProviderRoleReferring = "REFERRING"
	ProviderRoleOrdering  = "ORDERING"
	ProviderRoleRendering = "RENDERING"
)

// StandardFieldCriteria is one field/operator/values condition over a
// standard field. Turnaround rules store criteria without an operator; for
// them the operator is implicitly IN and Operator is left empty.
type StandardFieldCriteria struct {
	Field           FieldName `json:"field"`
	Operator        Operator  `json:"operator,omitempty"`
	Values          []string  `json:"values"`
	ProviderRole    string    `json:"providerRole,omitempty"`
	AlternateIDType string    `json:"alternateIdType,omitempty"`
}

// CustomFieldCriteria targets a client-defined field. The template catalog
// is open-ended, so only association, operator, and value presence are
// constrained; values are untyped strings.
type CustomFieldCriteria struct {
	Association Association `json:"association"`
	TemplateID  string      `json:"templateId"`
	Operator    Operator    `json:"operator,omitempty"`
	Values      []string    `json:"values"`
}

type AssignSkillAction struct {
	SkillCode string `json:"skillCode"`
}

type AssignLicenseAction struct {
	LicenseCodes []string `json:"licenseCodes"`
}

type ReassignAction struct {
	DepartmentCode string `json:"departmentCode"`
}

type DepartmentRoutingAction struct {
	DepartmentCode string `json:"departmentCode"`
}

type GenerateLetterAction struct {
	LetterName string `json:"letterName"`
}

type CloseAction struct {
	DispositionCode string `json:"dispositionCode"`
}

type HintsAction struct {
	Message string `json:"message"`
}

type CreateTaskAction struct {
	TaskType     string `json:"taskType"`
	TaskReason   string `json:"taskReason,omitempty"`
	DaysUntilDue int    `json:"daysUntilDue,omitempty"`
	TaskOwner    string `json:"taskOwner,omitempty"`
	AutoClose    bool   `json:"autoClose,omitempty"`
}

type TransferOwnershipAction struct {
	TransferTo string `json:"transferTo"`
}

type CreateProgramAction struct {
	ProgramName string `json:"programName"`
}

// RuleActions bundles the workflow actions a matching rule fires. Every
// section is optional and independently present.
type RuleActions struct {
	AssignSkill       *AssignSkillAction       `json:"assignSkill,omitempty"`
	AssignLicense     *AssignLicenseAction     `json:"assignLicense,omitempty"`
	Reassign          *ReassignAction          `json:"reassign,omitempty"`
	DepartmentRouting *DepartmentRoutingAction `json:"departmentRouting,omitempty"`
	GenerateLetters   []GenerateLetterAction   `json:"generateLetters,omitempty"`
	Close             *CloseAction             `json:"close,omitempty"`
	Hints             *HintsAction             `json:"hints,omitempty"`
	CreateTask        *CreateTaskAction        `json:"createTask,omitempty"`
	TransferOwnership *TransferOwnershipAction `json:"transferOwnership,omitempty"`
	CreateProgram     *CreateProgramAction     `json:"createProgram,omitempty"`
}

// TurnaroundParams carries the due-date calculation parameters of a TAT
// (turnaround-time) rule. A rule with a non-nil Turnaround section stores
// its criteria without operators; they match as implicit IN.
type TurnaroundParams struct {
	Units               int      `json:"units"`
	UnitsOfMeasure      string   `json:"unitsOfMeasure"`
	SourceDateTimeField string   `json:"sourceDateTimeField"`
	DueTime             string   `json:"dueTime,omitempty"`
	HolidayDates        []string `json:"holidayDates,omitempty"`
	HolidayCategory     string   `json:"holidayCategory,omitempty"`
	HolidayOffset       *int     `json:"holidayOffset,omitempty"`
	AutoExtend          bool     `json:"autoExtend,omitempty"`
	ExtendStatusReason  string   `json:"extendStatusReason,omitempty"`
}

const (
	UnitsHours        = "HOURS"
	UnitsBusinessDays = "BUSINESS_DAYS"
	UnitsCalendarDays = "CALENDAR_DAYS"
)

// Trigger events a workflow rule can subscribe to.
const (
	TriggerCreateRequest     = "CREATE_REQUEST"
	TriggerEditRequest       = "EDIT_REQUEST"
	TriggerExtendRequest     = "EXTEND_REQUEST"
	TriggerCreateService     = "CREATE_SERVICE"
	TriggerEditService       = "EDIT_SERVICE"
	TriggerExtendService     = "EXTEND_SERVICE"
	TriggerSaveQuestionnaire = "SAVE_QUESTIONNAIRE"
)

// Rule is the persisted aggregate. ID, Code, and timestamps are assigned by
// the repository on create; the validator and serializer never mutate a Rule.
type Rule struct {
	ID                    string                  `json:"id" db:"id"`
	Code                  string                  `json:"code" db:"code"`
	RuleDesc              string                  `json:"ruleDesc" db:"rule_desc"`
	Category              string                  `json:"category,omitempty" db:"category"`
	StandardFieldCriteria []StandardFieldCriteria `json:"standardFieldCriteria" db:"standard_field_criteria"`
	CustomFieldCriteria   []CustomFieldCriteria   `json:"customFieldCriteria,omitempty" db:"custom_field_criteria"`
	Weight                *int                    `json:"weight,omitempty" db:"weight"`
	Status                RuleStatus              `json:"status" db:"status"`
	ActivationDate        string                  `json:"activationDate,omitempty" db:"activation_date"`
	ExpirationDate        string                  `json:"expirationDate,omitempty" db:"expiration_date"`
	TriggerEvents         []string                `json:"triggerEvents,omitempty" db:"trigger_events"`
	RequestTypeFilter     string                  `json:"requestTypeFilter,omitempty" db:"request_type_filter"`
	FireOnce              bool                    `json:"fireOnce,omitempty" db:"fire_once"`
	Actions               *RuleActions            `json:"actions,omitempty" db:"actions"`
	Turnaround            *TurnaroundParams       `json:"turnaround,omitempty" db:"turnaround"`
	CreatedAt             time.Time               `json:"createdAt" db:"created_at"`
	UpdatedAt             time.Time               `json:"updatedAt" db:"updated_at"`
}

// IsTurnaround reports whether the rule carries TAT parameters and therefore
// validates its criteria with the implicit IN operator.
func (r *Rule) IsTurnaround() bool {
	return r.Turnaround != nil
}

type CreateRuleRequest struct {
	RuleDesc              string                  `json:"ruleDesc" binding:"required"`
	Category              string                  `json:"category"`
	StandardFieldCriteria []StandardFieldCriteria `json:"standardFieldCriteria"`
	CustomFieldCriteria   []CustomFieldCriteria   `json:"customFieldCriteria"`
	Weight                *int                    `json:"weight"`
	Status                RuleStatus              `json:"status"`
	ActivationDate        string                  `json:"activationDate"`
	ExpirationDate        string                  `json:"expirationDate"`
	TriggerEvents         []string                `json:"triggerEvents"`
	RequestTypeFilter     string                  `json:"requestTypeFilter"`
	FireOnce              bool                    `json:"fireOnce"`
	Actions               *RuleActions            `json:"actions"`
	Turnaround            *TurnaroundParams       `json:"turnaround"`
}

type UpdateRuleRequest struct {
	RuleDesc              *string                  `json:"ruleDesc"`
	Category              *string                  `json:"category"`
	StandardFieldCriteria *[]StandardFieldCriteria `json:"standardFieldCriteria"`
	CustomFieldCriteria   *[]CustomFieldCriteria   `json:"customFieldCriteria"`
	Weight                *int                     `json:"weight"`
	Status                *RuleStatus              `json:"status"`
	ActivationDate        *string                  `json:"activationDate"`
	ExpirationDate        *string                  `json:"expirationDate"`
	TriggerEvents         *[]string                `json:"triggerEvents"`
	RequestTypeFilter     *string                  `json:"requestTypeFilter"`
	FireOnce              *bool                    `json:"fireOnce"`
	Actions               *RuleActions             `json:"actions"`
	Turnaround            *TurnaroundParams        `json:"turnaround"`
}
