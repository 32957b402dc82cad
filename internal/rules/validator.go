package rules

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ValidationError is one problem found in a rule. Field names the offending
// part (a criterion field name, "ruleDesc", "actions.close.dispositionCode",
// ...); Message is suitable for direct display in the rule builder UI.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

var (
	integerPattern = regexp.MustCompile(`^-?\d+$`)
	datePattern    = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

const dateLayout = "2006-01-02"

// Calendar years accepted on DATE values and activation/expiration dates.
// The round-trip parse alone would admit any year the platform can
// represent; business dates outside this window are always data errors.
const (
	minDateYear = 1900
	maxDateYear = 2199
)

// ValidateStandardCriteria checks one standard-field criterion whose
// operator is stored on the criterion itself.
func ValidateStandardCriteria(c StandardFieldCriteria) []ValidationError {
	return validateStandardCriteria(c, c.Operator, true)
}

// ValidateImplicitInCriteria checks a standard-field criterion belonging to
// a turnaround rule. Such criteria do not store an operator: they match as
// IN, and the allowed-operator check is skipped. Having a separate entry
// point (rather than a flag on ValidateStandardCriteria) keeps the two
// criterion shapes from being confused at call sites.
func ValidateImplicitInCriteria(c StandardFieldCriteria) []ValidationError {
	return validateStandardCriteria(c, OperatorIn, false)
}

func validateStandardCriteria(c StandardFieldCriteria, op Operator, checkAllowed bool) []ValidationError {
	var errs []ValidationError

	def, ok := LookupField(c.Field)
	if !ok {
		// Nothing else is meaningful without a field definition.
		return []ValidationError{{
			Field:   string(c.Field),
			Message: fmt.Sprintf("Invalid field: %s", c.Field),
		}}
	}

	if checkAllowed && !def.AllowsOperator(op) {
		errs = append(errs, ValidationError{
			Field:   string(c.Field),
			Message: fmt.Sprintf("Operator %s is not allowed for field %s", op, c.Field),
		})
	}

	errs = append(errs, validateValueCount(string(c.Field), op, c.Values)...)

	if op != OperatorValued && op != OperatorNotValued {
		errs = append(errs, validateValueTypes(string(c.Field), def.DataType, c.Values)...)

		if op == OperatorBetween && len(c.Values) == 2 {
			errs = append(errs, validateRange(string(c.Field), def.DataType, c.Values[0], c.Values[1])...)
		}
	}

	if def.RequiresProviderRole && strings.TrimSpace(c.ProviderRole) == "" {
		errs = append(errs, ValidationError{
			Field:   string(c.Field),
			Message: fmt.Sprintf("Provider role is required for field %s", c.Field),
		})
	}

	if def.RequiresAlternateIDType && strings.TrimSpace(c.AlternateIDType) == "" {
		errs = append(errs, ValidationError{
			Field:   string(c.Field),
			Message: fmt.Sprintf("Alternate ID type is required for field %s", c.Field),
		})
	}

	return errs
}

func validateValueCount(field string, op Operator, values []string) []ValidationError {
	switch op {
	case OperatorValued, OperatorNotValued:
		if len(values) > 0 {
			return []ValidationError{{
				Field:   field,
				Message: fmt.Sprintf("Operator %s should not have any values", op),
			}}
		}
	case OperatorEquals, OperatorGreaterThan, OperatorGreaterThanOrEqualTo,
		OperatorLessThan, OperatorLessThanOrEqualTo:
		if len(values) == 0 {
			return []ValidationError{{
				Field:   field,
				Message: "At least one value is required",
			}}
		}
		if len(values) != 1 {
			return []ValidationError{{
				Field:   field,
				Message: fmt.Sprintf("Operator %s requires exactly 1 value", op),
			}}
		}
	case OperatorBetween:
		if len(values) == 0 {
			return []ValidationError{{
				Field:   field,
				Message: "At least one value is required",
			}}
		}
		if len(values) != 2 {
			return []ValidationError{{
				Field:   field,
				Message: "Operator BETWEEN requires exactly 2 values",
			}}
		}
	case OperatorIn, OperatorNotIn:
		if len(values) == 0 {
			return []ValidationError{{
				Field:   field,
				Message: "At least one value is required",
			}}
		}
	default:
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("Unknown operator: %s", op),
		}}
	}
	return nil
}

func validateValueTypes(field string, dataType DataType, values []string) []ValidationError {
	var errs []ValidationError
	for _, v := range values {
		switch dataType {
		case DataTypeInteger:
			if !integerPattern.MatchString(v) {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("Value '%s' is not a valid integer", v),
				})
			}
		case DataTypeDate:
			if !isValidDate(v) {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("Value '%s' is not a valid date (expected YYYY-MM-DD)", v),
				})
			}
		case DataTypeBoolean:
			if v != "true" && v != "false" {
				errs = append(errs, ValidationError{
					Field:   field,
					Message: fmt.Sprintf("Value '%s' is not a valid boolean (expected true or false)", v),
				})
			}
		}
	}
	return errs
}

// isValidDate accepts YYYY-MM-DD strings that survive a parse/format round
// trip, which rejects impossible calendar dates such as 2023-02-30 while
// keeping real leap days.
func isValidDate(v string) bool {
	if !datePattern.MatchString(v) {
		return false
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		return false
	}
	if t.Format(dateLayout) != v {
		return false
	}
	year := t.Year()
	return year >= minDateYear && year <= maxDateYear
}

// validateRange assumes BETWEEN with exactly two values. The ordering check
// only fires when both bounds independently parse, so a malformed bound
// yields its type error without a misleading ordering error on top.
func validateRange(field string, dataType DataType, lower, upper string) []ValidationError {
	switch dataType {
	case DataTypeInteger:
		lo, errLo := strconv.Atoi(lower)
		hi, errHi := strconv.Atoi(upper)
		if errLo == nil && errHi == nil && lo > hi {
			return []ValidationError{{
				Field:   field,
				Message: "Lower bound must be less than or equal to upper bound",
			}}
		}
	case DataTypeDate:
		if isValidDate(lower) && isValidDate(upper) && lower > upper {
			return []ValidationError{{
				Field:   field,
				Message: "Start date must be on or before end date",
			}}
		}
	}
	return nil
}

// ValidateCustomCriteria checks a custom-field criterion carrying its own
// operator. Custom field values are untyped strings, so there is no
// data-type checking.
func ValidateCustomCriteria(c CustomFieldCriteria) []ValidationError {
	return validateCustomCriteria(c, true)
}

// ValidateImplicitInCustomCriteria is the turnaround-rule variant: the
// stored operator is ignored and not checked.
func ValidateImplicitInCustomCriteria(c CustomFieldCriteria) []ValidationError {
	return validateCustomCriteria(c, false)
}

func validateCustomCriteria(c CustomFieldCriteria, checkOperator bool) []ValidationError {
	switch c.Association {
	case AssociationMember, AssociationEnrollment, AssociationRequest:
	default:
		// An unknown association leaves the criterion meaningless, like an
		// unknown standard field; nothing else about it is worth checking.
		return []ValidationError{{
			Field:   c.TemplateID,
			Message: fmt.Sprintf("Invalid association: %s", c.Association),
		}}
	}

	var errs []ValidationError

	if checkOperator && c.Operator != OperatorIn && c.Operator != OperatorNotIn {
		errs = append(errs, ValidationError{
			Field:   c.TemplateID,
			Message: "Custom field criteria operator must be IN or NOT_IN",
		})
	}

	if len(c.Values) == 0 {
		errs = append(errs, ValidationError{
			Field:   c.TemplateID,
			Message: "At least one value is required",
		})
	}

	return errs
}

// ValidateActions checks every populated action section for its required
// scalar fields. A nil actions bundle is valid.
func ValidateActions(actions *RuleActions) []ValidationError {
	if actions == nil {
		return nil
	}

	var errs []ValidationError

	if actions.DepartmentRouting != nil && strings.TrimSpace(actions.DepartmentRouting.DepartmentCode) == "" {
		errs = append(errs, ValidationError{
			Field:   "actions.departmentRouting.departmentCode",
			Message: "Department code is required",
		})
	}

	if actions.Reassign != nil && strings.TrimSpace(actions.Reassign.DepartmentCode) == "" {
		errs = append(errs, ValidationError{
			Field:   "actions.reassign.departmentCode",
			Message: "Department code is required",
		})
	}

	if actions.Close != nil && strings.TrimSpace(actions.Close.DispositionCode) == "" {
		errs = append(errs, ValidationError{
			Field:   "actions.close.dispositionCode",
			Message: "Disposition code is required",
		})
	}

	if actions.GenerateLetters != nil {
		if len(actions.GenerateLetters) == 0 {
			errs = append(errs, ValidationError{
				Field:   "actions.generateLetters",
				Message: "At least one letter is required",
			})
		}
		for i, letter := range actions.GenerateLetters {
			if strings.TrimSpace(letter.LetterName) == "" {
				errs = append(errs, ValidationError{
					Field:   fmt.Sprintf("actions.generateLetters[%d].letterName", i),
					Message: "Letter name is required",
				})
			}
		}
	}

	if actions.CreateTask != nil && strings.TrimSpace(actions.CreateTask.TaskType) == "" {
		errs = append(errs, ValidationError{
			Field:   "actions.createTask.taskType",
			Message: "Task type is required",
		})
	}

	if actions.TransferOwnership != nil && strings.TrimSpace(actions.TransferOwnership.TransferTo) == "" {
		errs = append(errs, ValidationError{
			Field:   "actions.transferOwnership.transferTo",
			Message: "Transfer target is required",
		})
	}

	if actions.CreateProgram != nil && strings.TrimSpace(actions.CreateProgram.ProgramName) == "" {
		errs = append(errs, ValidationError{
			Field:   "actions.createProgram.programName",
			Message: "Program name is required",
		})
	}

	return errs
}

// ValidateRule runs every check over the whole rule and returns the full
// accumulated error list; an empty list means the rule is valid. Checks are
// additive and never short-circuit each other, so a UI can surface every
// problem in a single pass.
func ValidateRule(r *Rule) []ValidationError {
	var errs []ValidationError

	if strings.TrimSpace(r.RuleDesc) == "" {
		errs = append(errs, ValidationError{
			Field:   "ruleDesc",
			Message: "Rule description is required",
		})
	}

	if len(r.StandardFieldCriteria) == 0 && len(r.CustomFieldCriteria) == 0 {
		errs = append(errs, ValidationError{
			Field:   "criteria",
			Message: "At least one criterion is required",
		})
	}

	implicitIn := r.IsTurnaround()

	for _, c := range r.StandardFieldCriteria {
		if implicitIn {
			errs = append(errs, ValidateImplicitInCriteria(c)...)
		} else {
			errs = append(errs, ValidateStandardCriteria(c)...)
		}
	}

	for _, c := range r.CustomFieldCriteria {
		if implicitIn {
			errs = append(errs, ValidateImplicitInCustomCriteria(c)...)
		} else {
			errs = append(errs, ValidateCustomCriteria(c)...)
		}
	}

	errs = append(errs, ValidateActions(r.Actions)...)

	if r.Weight != nil && *r.Weight < 0 {
		errs = append(errs, ValidationError{
			Field:   "weight",
			Message: "Weight must be non-negative",
		})
	}

	if r.ActivationDate != "" && !isValidDate(r.ActivationDate) {
		errs = append(errs, ValidationError{
			Field:   "activationDate",
			Message: fmt.Sprintf("Value '%s' is not a valid date (expected YYYY-MM-DD)", r.ActivationDate),
		})
	}

	if r.ExpirationDate != "" && !isValidDate(r.ExpirationDate) {
		errs = append(errs, ValidationError{
			Field:   "expirationDate",
			Message: fmt.Sprintf("Value '%s' is not a valid date (expected YYYY-MM-DD)", r.ExpirationDate),
		})
	}

	if r.Turnaround != nil {
		errs = append(errs, validateTurnaround(r.Turnaround)...)
	}

	return errs
}

func validateTurnaround(t *TurnaroundParams) []ValidationError {
	var errs []ValidationError

	if t.Units <= 0 {
		errs = append(errs, ValidationError{
			Field:   "turnaround.units",
			Message: "Units must be positive",
		})
	}

	switch t.UnitsOfMeasure {
	case UnitsHours, UnitsBusinessDays, UnitsCalendarDays:
	default:
		errs = append(errs, ValidationError{
			Field:   "turnaround.unitsOfMeasure",
			Message: fmt.Sprintf("Invalid units of measure: %s", t.UnitsOfMeasure),
		})
	}

	if strings.TrimSpace(t.SourceDateTimeField) == "" {
		errs = append(errs, ValidationError{
			Field:   "turnaround.sourceDateTimeField",
			Message: "Source date/time field is required",
		})
	}

	for _, d := range t.HolidayDates {
		if !isValidDate(d) {
			errs = append(errs, ValidationError{
				Field:   "turnaround.holidayDates",
				Message: fmt.Sprintf("Value '%s' is not a valid date (expected YYYY-MM-DD)", d),
			})
		}
	}

	return errs
}

// IsRuleValid reports whether ValidateRule finds no problems.
func IsRuleValid(r *Rule) bool {
	return len(ValidateRule(r)) == 0
}
