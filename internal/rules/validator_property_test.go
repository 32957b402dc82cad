package rules

import (
	"strconv"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestValueCountProperties(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	properties := gopter.NewProperties(parameters)

	genValues := gen.SliceOf(gen.AlphaString())

	properties.Property("single-value operators accept exactly one value", prop.ForAll(
		func(values []string) bool {
			ops := []Operator{
				OperatorEquals, OperatorGreaterThan, OperatorGreaterThanOrEqualTo,
				OperatorLessThan, OperatorLessThanOrEqualTo,
			}
			for _, op := range ops {
				errs := validateValueCount("MEMBER_CLIENT", op, values)
				if (len(errs) == 0) != (len(values) == 1) {
					return false
				}
			}
			return true
		},
		genValues,
	))

	properties.Property("presence operators reject any values", prop.ForAll(
		func(values []string) bool {
			for _, op := range []Operator{OperatorValued, OperatorNotValued} {
				errs := validateValueCount("MEMBER_CLIENT", op, values)
				if (len(errs) == 0) != (len(values) == 0) {
					return false
				}
			}
			return true
		},
		genValues,
	))

	properties.Property("membership operators need at least one value", prop.ForAll(
		func(values []string) bool {
			for _, op := range []Operator{OperatorIn, OperatorNotIn} {
				errs := validateValueCount("MEMBER_CLIENT", op, values)
				if (len(errs) == 0) != (len(values) >= 1) {
					return false
				}
			}
			return true
		},
		genValues,
	))

	properties.Property("between needs exactly two values", prop.ForAll(
		func(values []string) bool {
			errs := validateValueCount("MEMBER_AGE", OperatorBetween, values)
			return (len(errs) == 0) == (len(values) == 2)
		},
		genValues,
	))

	properties.TestingRun(t)
}

func TestIntegerValueProperty(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	properties := gopter.NewProperties(parameters)

	properties.Property("any int64 formats to an accepted integer value", prop.ForAll(
		func(n int64) bool {
			errs := validateValueTypes("MEMBER_AGE", DataTypeInteger, []string{strconv.FormatInt(n, 10)})
			return len(errs) == 0
		},
		gen.Int64(),
	))

	properties.TestingRun(t)
}
