package rules

import (
	"fmt"
)

// Envelope types recognized on rule files. The type discriminates whole
// files, not individual rules: a workflow envelope never carries TAT rules
// and vice versa.
const (
	EnvelopeTypeAutoWorkflowRules = "AUTO_WORKFLOW_RULES"
	EnvelopeTypeTATRules          = "TAT_RULES"
)

// StandardCriteriaExport is the wire shape of a standard-field criterion.
// Field declaration order fixes the JSON key order the rule engine expects.
type StandardCriteriaExport struct {
	Operator        Operator  `json:"operator"`
	Field           FieldName `json:"field"`
	ProviderRole    string    `json:"providerRole,omitempty"`
	AlternateIDType string    `json:"alternateIdType,omitempty"`
	Values          []string  `json:"values"`
}

type CustomCriteriaExport struct {
	Operator    Operator    `json:"operator"`
	Association Association `json:"association"`
	TemplateID  string      `json:"templateId"`
	Values      []string    `json:"values"`
}

// RuleExport is the canonical export shape of a workflow rule. Internal
// bookkeeping (id, code, category, timestamps) never appears here; the
// export is the portable identity of the rule.
type RuleExport struct {
	RuleDesc              string                   `json:"ruleDesc"`
	StandardFieldCriteria []StandardCriteriaExport `json:"standardFieldCriteria"`
	CustomFieldCriteria   []CustomCriteriaExport   `json:"customFieldCriteria,omitempty"`
	IsActive              bool                     `json:"isActive"`
	Weight                int                      `json:"weight"`
	TriggerEvents         []string                 `json:"triggerEvents,omitempty"`
	RequestTypeFilter     string                   `json:"requestTypeFilter,omitempty"`
	FireOnce              bool                     `json:"fireOnce,omitempty"`
	ActivationDate        string                   `json:"activationDate,omitempty"`
	ExpirationDate        string                   `json:"expirationDate,omitempty"`
	Actions               *RuleActions             `json:"actions,omitempty"`
}

// TATCriteriaExport is a criterion on a turnaround rule. The engine treats
// every TAT criterion as IN, so no operator is carried.
type TATCriteriaExport struct {
	Field  FieldName `json:"field"`
	Values []string  `json:"values"`
}

// TATRuleExport is the flat export shape of a turnaround rule: criteria
// plus the due-date parameters at the top level.
type TATRuleExport struct {
	RuleDesc            string              `json:"ruleDesc"`
	Criteria            []TATCriteriaExport `json:"criteria"`
	IsActive            bool                `json:"isActive"`
	Units               int                 `json:"units"`
	UnitsOfMeasure      string              `json:"unitsOfMeasure"`
	SourceDateTimeField string              `json:"sourceDateTimeField"`
	DueTime             string              `json:"dueTime,omitempty"`
	HolidayDates        []string            `json:"holidayDates,omitempty"`
	HolidayCategory     string              `json:"holidayCategory,omitempty"`
	HolidayOffset       *int                `json:"holidayOffset,omitempty"`
	AutoExtend          bool                `json:"autoExtend,omitempty"`
	ExtendStatusReason  string              `json:"extendStatusReason,omitempty"`
}

type AutoWorkflowEnvelope struct {
	Type  string       `json:"type"`
	Rules []RuleExport `json:"rules"`
}

type TATRuleEnvelope struct {
	Type  string          `json:"type"`
	Rules []TATRuleExport `json:"rules"`
}

// Default weight assigned when a rule carries none. Higher weights take
// precedence when several rules match the same transaction.
const DefaultWeight = 100

// ExportRule produces the canonical export of a workflow rule.
func ExportRule(r *Rule) RuleExport {
	exp := RuleExport{
		RuleDesc:              r.RuleDesc,
		StandardFieldCriteria: make([]StandardCriteriaExport, 0, len(r.StandardFieldCriteria)),
		IsActive:              r.Status == StatusActive,
		Weight:                DefaultWeight,
		TriggerEvents:         r.TriggerEvents,
		RequestTypeFilter:     r.RequestTypeFilter,
		FireOnce:              r.FireOnce,
		ActivationDate:        r.ActivationDate,
		ExpirationDate:        r.ExpirationDate,
		Actions:               r.Actions,
	}
	if r.Weight != nil {
		exp.Weight = *r.Weight
	}

	for _, c := range r.StandardFieldCriteria {
		exp.StandardFieldCriteria = append(exp.StandardFieldCriteria, StandardCriteriaExport{
			Operator:        c.Operator,
			Field:           c.Field,
			ProviderRole:    c.ProviderRole,
			AlternateIDType: c.AlternateIDType,
			Values:          c.Values,
		})
	}

	if len(r.CustomFieldCriteria) > 0 {
		exp.CustomFieldCriteria = make([]CustomCriteriaExport, 0, len(r.CustomFieldCriteria))
		for _, c := range r.CustomFieldCriteria {
			exp.CustomFieldCriteria = append(exp.CustomFieldCriteria, CustomCriteriaExport{
				Operator:    c.Operator,
				Association: c.Association,
				TemplateID:  c.TemplateID,
				Values:      c.Values,
			})
		}
	}

	return exp
}

// RuleFromExport builds a rule candidate from an export. The result has no
// id, code, or timestamps; those are assigned when the candidate is
// persisted through the create path, which also validates it.
func RuleFromExport(exp RuleExport) *Rule {
	r := &Rule{
		RuleDesc:          exp.RuleDesc,
		Status:            StatusInactive,
		TriggerEvents:     exp.TriggerEvents,
		RequestTypeFilter: exp.RequestTypeFilter,
		FireOnce:          exp.FireOnce,
		ActivationDate:    exp.ActivationDate,
		ExpirationDate:    exp.ExpirationDate,
		Actions:           exp.Actions,
	}
	if exp.IsActive {
		r.Status = StatusActive
	}

	weight := exp.Weight
	r.Weight = &weight

	for _, c := range exp.StandardFieldCriteria {
		r.StandardFieldCriteria = append(r.StandardFieldCriteria, StandardFieldCriteria{
			Field:           c.Field,
			Operator:        c.Operator,
			Values:          c.Values,
			ProviderRole:    c.ProviderRole,
			AlternateIDType: c.AlternateIDType,
		})
	}
	for _, c := range exp.CustomFieldCriteria {
		r.CustomFieldCriteria = append(r.CustomFieldCriteria, CustomFieldCriteria{
			Association: c.Association,
			TemplateID:  c.TemplateID,
			Operator:    c.Operator,
			Values:      c.Values,
		})
	}

	return r
}

// ExportTATRule flattens a turnaround rule into its export shape. The
// caller is responsible for only passing rules with a turnaround section;
// a rule without one exports zero-valued due-date parameters.
func ExportTATRule(r *Rule) TATRuleExport {
	exp := TATRuleExport{
		RuleDesc: r.RuleDesc,
		Criteria: make([]TATCriteriaExport, 0, len(r.StandardFieldCriteria)),
		IsActive: r.Status == StatusActive,
	}

	for _, c := range r.StandardFieldCriteria {
		exp.Criteria = append(exp.Criteria, TATCriteriaExport{
			Field:  c.Field,
			Values: c.Values,
		})
	}

	if t := r.Turnaround; t != nil {
		exp.Units = t.Units
		exp.UnitsOfMeasure = t.UnitsOfMeasure
		exp.SourceDateTimeField = t.SourceDateTimeField
		exp.DueTime = t.DueTime
		exp.HolidayDates = t.HolidayDates
		exp.HolidayCategory = t.HolidayCategory
		exp.HolidayOffset = t.HolidayOffset
		exp.AutoExtend = t.AutoExtend
		exp.ExtendStatusReason = t.ExtendStatusReason
	}

	return exp
}

// TATRuleFromExport rebuilds a turnaround rule candidate. Criteria come
// back operator-less; IsTurnaround() on the result is always true.
func TATRuleFromExport(exp TATRuleExport) *Rule {
	r := &Rule{
		RuleDesc: exp.RuleDesc,
		Status:   StatusInactive,
		Turnaround: &TurnaroundParams{
			Units:               exp.Units,
			UnitsOfMeasure:      exp.UnitsOfMeasure,
			SourceDateTimeField: exp.SourceDateTimeField,
			DueTime:             exp.DueTime,
			HolidayDates:        exp.HolidayDates,
			HolidayCategory:     exp.HolidayCategory,
			HolidayOffset:       exp.HolidayOffset,
			AutoExtend:          exp.AutoExtend,
			ExtendStatusReason:  exp.ExtendStatusReason,
		},
	}
	if exp.IsActive {
		r.Status = StatusActive
	}

	for _, c := range exp.Criteria {
		r.StandardFieldCriteria = append(r.StandardFieldCriteria, StandardFieldCriteria{
			Field:  c.Field,
			Values: c.Values,
		})
	}

	return r
}

// WrapRules builds the file-level envelope around a batch of exports.
func WrapRules(rules []RuleExport) AutoWorkflowEnvelope {
	return AutoWorkflowEnvelope{Type: EnvelopeTypeAutoWorkflowRules, Rules: rules}
}

// UnwrapRules checks the envelope discriminator and yields the batch. A
// wrong type fails the whole file; unlike per-rule problems it is never
// skipped past.
func UnwrapRules(env AutoWorkflowEnvelope) ([]RuleExport, error) {
	if env.Type != EnvelopeTypeAutoWorkflowRules {
		return nil, fmt.Errorf("unexpected envelope type %q, expected %q", env.Type, EnvelopeTypeAutoWorkflowRules)
	}
	return env.Rules, nil
}

func WrapTATRules(rules []TATRuleExport) TATRuleEnvelope {
	return TATRuleEnvelope{Type: EnvelopeTypeTATRules, Rules: rules}
}

func UnwrapTATRules(env TATRuleEnvelope) ([]TATRuleExport, error) {
	if env.Type != EnvelopeTypeTATRules {
		return nil, fmt.Errorf("unexpected envelope type %q, expected %q", env.Type, EnvelopeTypeTATRules)
	}
	return env.Rules, nil
}

// ImportError records why one rule in a batch was skipped.
type ImportError struct {
	Index    int               `json:"index"`
	RuleDesc string            `json:"ruleDesc"`
	Errors   []ValidationError `json:"errors,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// ImportResult summarizes a batch import. Imported+Skipped always equals
// the number of rules in the envelope; Errors has one entry per skip.
type ImportResult struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Errors   []ImportError `json:"errors,omitempty"`
}
